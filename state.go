package topicquiz

import (
	"errors"
	"strconv"
	"strings"
)

const (
	DefaultTopic        = "World Capitals"
	DefaultNumQuestions = 5
	MinQuestions        = 1
	MaxQuestions        = 10
)

// User-facing error messages
const (
	MsgNotConfigured    = "OpenAI API key is not configured. Set OPENAI_API_KEY to enable quiz generation."
	MsgEmptyQuiz        = "The generated quiz was empty. Please try a different topic."
	MsgGenerationFailed = "Failed to generate quiz. Please try again."
)

// Phase is the state machine position
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseDisplaying
	PhaseSubmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseDisplaying:
		return "displaying"
	case PhaseSubmitted:
		return "submitted"
	}
	return "unknown"
}

// State is the application state of one quiz session.
//
// Phase tags which of the other fields are meaningful: Error only in PhaseIdle,
// Quiz and Answers only in PhaseDisplaying and PhaseSubmitted, Score only in
// PhaseSubmitted. The enter* methods are the only writers and keep the rest zeroed.
type State struct {
	Topic        string
	NumQuestions int
	Phase        Phase
	Quiz         Quiz
	Error        string
	Answers      UserAnswers
	Score        int
	// ScrollTop asks the next render to scroll to the top of the page
	ScrollTop bool
}

// NewState returns the initial state
func NewState(configured bool) State {
	s := State{}
	s.reset(configured)
	return s
}

// Submitted reports whether answers have been scored
func (s State) Submitted() bool {
	return s.Phase == PhaseSubmitted
}

// Loading reports whether a generation request is in flight
func (s State) Loading() bool {
	return s.Phase == PhaseLoading
}

// Clone returns a copy that shares nothing mutable with s
func (s State) Clone() State {
	out := s
	if s.Quiz != nil {
		out.Quiz = append(Quiz(nil), s.Quiz...)
	}
	out.Answers = s.Answers.Clone()
	return out
}

func (s *State) reset(configured bool) {
	*s = State{
		Topic:        DefaultTopic,
		NumQuestions: DefaultNumQuestions,
		Answers:      UserAnswers{},
	}
	s.enterIdle("")
	if !configured {
		s.Error = MsgNotConfigured
	}
}

func (s *State) enterIdle(errMsg string) {
	s.Phase = PhaseIdle
	s.Quiz = nil
	s.Answers = UserAnswers{}
	s.Score = 0
	s.Error = errMsg
}

func (s *State) enterLoading() {
	s.enterIdle("")
	s.Phase = PhaseLoading
}

func (s *State) enterDisplaying(quiz Quiz) {
	s.Phase = PhaseDisplaying
	s.Quiz = quiz
	s.Answers = NewUserAnswers(len(quiz))
	s.Score = 0
	s.Error = ""
}

func (s *State) enterSubmitted() {
	s.Phase = PhaseSubmitted
	s.Score = Score(s.Quiz, s.Answers)
	s.ScrollTop = true
}

// ArchivedState is the submitted state for a quiz answered earlier
func ArchivedState(topic string, quiz Quiz, answers UserAnswers) State {
	s := State{Topic: topic, NumQuestions: clamp(len(quiz))}
	s.enterDisplaying(quiz)
	for i := range quiz {
		if key, ok := answers.Selected(i); ok {
			k := key
			s.Answers[i] = &k
		}
	}
	s.enterSubmitted()
	s.ScrollTop = false
	return s
}

// ClampQuestionCount parses the question count field. The leading integer is
// used ("3.7" is 3); input with no leading digits becomes 1.
func ClampQuestionCount(raw string) int {
	digits := leadingInt(strings.TrimSpace(raw))
	n, err := strconv.Atoi(digits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(digits, "-") {
			return MaxQuestions
		}
		return MinQuestions
	}
	return clamp(n)
}

// leadingInt returns the optional sign and digits that start s
func leadingInt(s string) string {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

func clamp(n int) int {
	if n < MinQuestions {
		return MinQuestions
	}
	if n > MaxQuestions {
		return MaxQuestions
	}
	return n
}
