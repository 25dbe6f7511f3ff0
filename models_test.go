package topicquiz

import (
	"fmt"
	"testing"
)

// makeQuiz builds n valid questions whose correct answers cycle A, B, C, D
func makeQuiz(n int) Quiz {
	quiz := make(Quiz, n)
	for i := range quiz {
		quiz[i] = Question{
			Question: fmt.Sprintf("Question %d?", i+1),
			Options: Options{
				A: fmt.Sprintf("A%d", i),
				B: fmt.Sprintf("B%d", i),
				C: fmt.Sprintf("C%d", i),
				D: fmt.Sprintf("D%d", i),
			},
			CorrectAnswer: OptionKeys[i%len(OptionKeys)],
			Explanation:   fmt.Sprintf("Because %d", i),
		}
	}
	return quiz
}

func wrongKey(k OptionKey) OptionKey {
	if k == OptionA {
		return OptionB
	}
	return OptionA
}

func TestParseOptionKey(t *testing.T) {
	for _, in := range []string{"A", "b", " c ", "D"} {
		if _, err := ParseOptionKey(in); err != nil {
			t.Errorf("ParseOptionKey(%q) returned error: %v", in, err)
		}
	}
	for _, in := range []string{"", "E", "AB", "1"} {
		if _, err := ParseOptionKey(in); err == nil {
			t.Errorf("ParseOptionKey(%q) expected error", in)
		}
	}
}

func TestQuestionValidate(t *testing.T) {
	q := makeQuiz(1)[0]
	if err := q.Validate(); err != nil {
		t.Fatalf("Expected valid question, got %v", err)
	}

	missing := q
	missing.Options.C = "  "
	if err := missing.Validate(); err == nil {
		t.Error("Expected error for missing option C")
	}

	badKey := q
	badKey.CorrectAnswer = "E"
	if err := badKey.Validate(); err == nil {
		t.Error("Expected error for correct answer E")
	}
}

func TestOptionsGet(t *testing.T) {
	o := Options{A: "one", B: "two", C: "three", D: "four"}
	want := map[OptionKey]string{OptionA: "one", OptionB: "two", OptionC: "three", OptionD: "four", "X": ""}
	for key, text := range want {
		if got := o.Get(key); got != text {
			t.Errorf("Get(%s) = %q, want %q", key, got, text)
		}
	}
}

func TestNewUserAnswers(t *testing.T) {
	answers := NewUserAnswers(3)
	if len(answers) != 3 {
		t.Fatalf("Expected 3 slots, got %d", len(answers))
	}
	for i := 0; i < 3; i++ {
		slot, ok := answers[i]
		if !ok || slot != nil {
			t.Errorf("Slot %d should exist and be nil", i)
		}
	}
}

func TestScore(t *testing.T) {
	const n = 6
	quiz := makeQuiz(n)

	for k := 0; k <= n; k++ {
		answers := NewUserAnswers(n)
		for i := 0; i < n; i++ {
			var key OptionKey
			if i < k {
				key = quiz[i].CorrectAnswer
			} else if i%2 == 0 {
				key = wrongKey(quiz[i].CorrectAnswer)
			} else {
				continue // leave unanswered
			}
			answers[i] = &key
		}
		if got := Score(quiz, answers); got != k {
			t.Errorf("Score with %d correct = %d", k, got)
		}
	}
}

func TestUserAnswersCloneIsDeep(t *testing.T) {
	key := OptionA
	answers := UserAnswers{0: &key, 1: nil}
	clone := answers.Clone()

	*clone[0] = OptionD
	if *answers[0] != OptionA {
		t.Error("Clone shares answer pointers with the original")
	}
	if _, ok := clone[1]; !ok {
		t.Error("Clone dropped the nil slot")
	}
}
