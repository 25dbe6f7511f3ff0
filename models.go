package topicquiz

import (
	"fmt"
	"strings"
)

// OptionKey identifies one of the four multiple choice options
type OptionKey string

const (
	OptionA OptionKey = "A"
	OptionB OptionKey = "B"
	OptionC OptionKey = "C"
	OptionD OptionKey = "D"
)

// OptionKeys lists the option keys in display order
var OptionKeys = []OptionKey{OptionA, OptionB, OptionC, OptionD}

// ParseOptionKey converts user input such as "b" into an OptionKey
func ParseOptionKey(s string) (OptionKey, error) {
	key := OptionKey(strings.ToUpper(strings.TrimSpace(s)))
	if !key.Valid() {
		return "", fmt.Errorf("invalid option key: %q", s)
	}
	return key, nil
}

// Valid reports whether the key is one of A, B, C or D
func (k OptionKey) Valid() bool {
	switch k {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// Options holds the text of the four answer options
type Options struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

// Get returns the option text for a key
func (o Options) Get(key OptionKey) string {
	switch key {
	case OptionA:
		return o.A
	case OptionB:
		return o.B
	case OptionC:
		return o.C
	case OptionD:
		return o.D
	}
	return ""
}

// Validate checks that all four options are present
func (o Options) Validate() error {
	for _, key := range OptionKeys {
		if strings.TrimSpace(o.Get(key)) == "" {
			return fmt.Errorf("option %s is missing", key)
		}
	}
	return nil
}

// Question represents a single quiz question with multiple choice answers
type Question struct {
	Question      string    `json:"question"`
	Options       Options   `json:"options"`
	CorrectAnswer OptionKey `json:"correctAnswer"`
	Explanation   string    `json:"explanation"`
}

// Validate checks the shape invariants of a question
func (q Question) Validate() error {
	if err := q.Options.Validate(); err != nil {
		return err
	}
	if !q.CorrectAnswer.Valid() {
		return fmt.Errorf("invalid correct answer: %q", q.CorrectAnswer)
	}
	return nil
}

// Quiz is the ordered list of generated questions. Positions are the answer indices.
type Quiz []Question

// UserAnswers maps a question index to the selected option, nil when unanswered
type UserAnswers map[int]*OptionKey

// NewUserAnswers creates one empty answer slot per question
func NewUserAnswers(n int) UserAnswers {
	answers := make(UserAnswers, n)
	for i := 0; i < n; i++ {
		answers[i] = nil
	}
	return answers
}

// Clone returns a deep copy of the answers
func (ua UserAnswers) Clone() UserAnswers {
	if ua == nil {
		return nil
	}
	out := make(UserAnswers, len(ua))
	for i, key := range ua {
		if key == nil {
			out[i] = nil
			continue
		}
		k := *key
		out[i] = &k
	}
	return out
}

// Selected returns the chosen key for question i and whether one was chosen
func (ua UserAnswers) Selected(i int) (OptionKey, bool) {
	key, ok := ua[i]
	if !ok || key == nil {
		return "", false
	}
	return *key, true
}

// Score counts the questions whose answer matches the correct option
func Score(quiz Quiz, answers UserAnswers) int {
	score := 0
	for i, q := range quiz {
		if key, ok := answers.Selected(i); ok && key == q.CorrectAnswer {
			score++
		}
	}
	return score
}
