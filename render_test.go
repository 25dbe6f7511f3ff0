package topicquiz

import "testing"

func TestRenderLoading(t *testing.T) {
	s := NewState(true)
	s.enterLoading()

	v := Render(s, true)
	if !v.ShowLoading || v.StatusText != StatusGenerating {
		t.Errorf("Expected loading indicator with status, got %+v", v)
	}
	if v.ShowForm || len(v.Cards) > 0 || v.ShowSubmit {
		t.Error("Form and quiz should be hidden while loading")
	}
}

func TestRenderIdleForm(t *testing.T) {
	s := NewState(true)
	v := Render(s, true)
	if !v.ShowForm || v.GenerateDisabled {
		t.Errorf("Expected enabled form, got %+v", v)
	}
	if v.MinQuestions != 1 || v.MaxQuestions != 10 || v.NumQuestions != 5 {
		t.Errorf("Unexpected count bounds %d-%d (%d)", v.MinQuestions, v.MaxQuestions, v.NumQuestions)
	}

	s.Topic = "  "
	if !Render(s, true).GenerateDisabled {
		t.Error("Generate should be disabled for a blank topic")
	}

	unconfigured := NewState(false)
	v = Render(unconfigured, false)
	if !v.GenerateDisabled || v.Error != MsgNotConfigured {
		t.Errorf("Expected disabled generate with configuration error, got %+v", v)
	}
}

func TestRenderIdleWithError(t *testing.T) {
	s := NewState(true)
	s.enterIdle(MsgEmptyQuiz)

	v := Render(s, true)
	if !v.ShowForm || v.Error != MsgEmptyQuiz {
		t.Errorf("Expected form with error panel, got %+v", v)
	}
	if len(v.Cards) != 0 {
		t.Error("Error and quiz should not be shown together")
	}
}

func TestRenderDisplaying(t *testing.T) {
	s := NewState(true)
	s.enterDisplaying(makeQuiz(2))
	key := OptionB
	s.Answers[0] = &key

	v := Render(s, true)
	if v.ShowForm || v.ShowLoading || v.Summary != nil {
		t.Errorf("Unexpected sections for displaying: %+v", v)
	}
	if len(v.Cards) != 2 || !v.ShowSubmit {
		t.Fatalf("Expected 2 cards and a submit control, got %d/%v", len(v.Cards), v.ShowSubmit)
	}

	card := v.Cards[0]
	if card.Number != 1 || card.Explanation != "" {
		t.Errorf("Unexpected card %+v", card)
	}
	for _, opt := range card.Options {
		if opt.Selected != (opt.Key == OptionB) {
			t.Errorf("Option %s selected=%v", opt.Key, opt.Selected)
		}
		if opt.Disabled || opt.Correct || opt.Incorrect {
			t.Errorf("Option %s should not be marked before submit", opt.Key)
		}
	}
}

func TestRenderSubmitted(t *testing.T) {
	quiz := makeQuiz(2) // correct answers A then B
	s := NewState(true)
	s.enterDisplaying(quiz)
	right, wrong := OptionA, OptionD
	s.Answers[0] = &right
	s.Answers[1] = &wrong
	s.enterSubmitted()

	v := Render(s, true)
	if v.Summary == nil || v.Summary.Score != 1 || v.Summary.Total != 2 || v.Summary.Percent != 50 {
		t.Fatalf("Unexpected summary %+v", v.Summary)
	}
	if v.Summary.Message != MsgMid {
		t.Errorf("Expected mid tier, got %q", v.Summary.Message)
	}
	if v.ShowSubmit || !v.ShowReset || !v.ShowExplanations {
		t.Errorf("Unexpected controls %+v", v)
	}

	second := v.Cards[1]
	if second.Explanation != quiz[1].Explanation {
		t.Errorf("Expected explanation %q, got %q", quiz[1].Explanation, second.Explanation)
	}
	for _, opt := range second.Options {
		if !opt.Disabled {
			t.Errorf("Option %s should be disabled", opt.Key)
		}
		if opt.Correct != (opt.Key == OptionB) {
			t.Errorf("Option %s correct=%v", opt.Key, opt.Correct)
		}
		if opt.Incorrect != (opt.Key == OptionD) {
			t.Errorf("Option %s incorrect=%v", opt.Key, opt.Incorrect)
		}
	}

	for _, opt := range v.Cards[0].Options {
		if opt.Incorrect {
			t.Errorf("Correct pick should not mark %s incorrect", opt.Key)
		}
	}
}

func TestScoreMessageTiers(t *testing.T) {
	cases := []struct {
		score, total int
		want         string
	}{
		{5, 5, MsgPerfect},
		{4, 5, MsgHigh},
		{9, 10, MsgHigh},
		{1, 2, MsgMid},
		{3, 5, MsgMid},
		{2, 5, MsgLow},
		{0, 5, MsgLow},
	}
	for _, tc := range cases {
		if got := ScoreMessage(Percent(tc.score, tc.total)); got != tc.want {
			t.Errorf("%d/%d: got %q, want %q", tc.score, tc.total, got, tc.want)
		}
	}
}

func TestPercentRounds(t *testing.T) {
	if got := Percent(2, 3); got != 67 {
		t.Errorf("Percent(2,3) = %d, want 67", got)
	}
	if got := Percent(0, 0); got != 0 {
		t.Errorf("Percent(0,0) = %d, want 0", got)
	}
}
