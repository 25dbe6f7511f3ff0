package topicquiz

import (
	"math"
	"strings"

	"github.com/samber/lo"
)

// StatusGenerating is announced to assistive technology while loading
const StatusGenerating = "Generating your quiz..."

// Score tier messages
const (
	MsgPerfect = "Perfect score! You're a true expert!"
	MsgHigh    = "Great job! You really know your stuff!"
	MsgMid     = "Good effort! Keep learning and try again!"
	MsgLow     = "Keep practicing! Every quiz makes you smarter!"
)

// View is the full description of what the page shows for a state
type View struct {
	ShowForm         bool
	ShowLoading      bool
	StatusText       string
	Error            string
	GenerateDisabled bool
	Topic            string
	NumQuestions     int
	MinQuestions     int
	MaxQuestions     int

	Cards            []Card
	ShowSubmit       bool
	ShowExplanations bool
	Summary          *ScoreSummary
	ShowReset        bool
	ScrollTop        bool
}

// Card is one rendered question
type Card struct {
	Index       int
	Number      int
	Question    string
	Options     []OptionView
	Explanation string
}

// OptionView is one answer control
type OptionView struct {
	Key       OptionKey
	Text      string
	Selected  bool
	Correct   bool
	Incorrect bool
	Disabled  bool
}

// ScoreSummary is shown above the cards once answers are submitted
type ScoreSummary struct {
	Score   int
	Total   int
	Percent int
	Message string
}

// Render describes the page for a state. It has no side effects.
func Render(s State, configured bool) View {
	v := View{
		Topic:        s.Topic,
		NumQuestions: s.NumQuestions,
		MinQuestions: MinQuestions,
		MaxQuestions: MaxQuestions,
		ScrollTop:    s.ScrollTop,
	}

	switch s.Phase {
	case PhaseLoading:
		v.ShowLoading = true
		v.StatusText = StatusGenerating
		return v

	case PhaseIdle:
		v.ShowForm = true
		v.Error = s.Error
		v.GenerateDisabled = strings.TrimSpace(s.Topic) == "" || !configured
		return v
	}

	submitted := s.Phase == PhaseSubmitted
	v.Cards = renderCards(s.Quiz, s.Answers, submitted)
	v.ShowExplanations = submitted
	v.ShowSubmit = !submitted && len(s.Quiz) > 0
	if submitted {
		v.Summary = summarize(s.Score, len(s.Quiz))
		v.ShowReset = true
	}
	return v
}

func renderCards(quiz Quiz, answers UserAnswers, submitted bool) []Card {
	return lo.Map(quiz, func(q Question, i int) Card {
		selected, answered := answers.Selected(i)
		options := lo.Map(OptionKeys, func(key OptionKey, _ int) OptionView {
			ov := OptionView{
				Key:      key,
				Text:     q.Options.Get(key),
				Selected: answered && selected == key,
				Disabled: submitted,
			}
			if submitted {
				ov.Correct = key == q.CorrectAnswer
				ov.Incorrect = ov.Selected && !ov.Correct
			}
			return ov
		})
		card := Card{
			Index:    i,
			Number:   i + 1,
			Question: q.Question,
			Options:  options,
		}
		if submitted {
			card.Explanation = q.Explanation
		}
		return card
	})
}

func summarize(score, total int) *ScoreSummary {
	percent := Percent(score, total)
	return &ScoreSummary{
		Score:   score,
		Total:   total,
		Percent: percent,
		Message: ScoreMessage(percent),
	}
}

// Percent returns score/total as a rounded percentage
func Percent(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// ScoreMessage picks the encouragement message for a percentage
func ScoreMessage(percent int) string {
	switch {
	case percent >= 100:
		return MsgPerfect
	case percent >= 80:
		return MsgHigh
	case percent >= 50:
		return MsgMid
	default:
		return MsgLow
	}
}
