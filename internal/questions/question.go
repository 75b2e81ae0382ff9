// Package questions produces the multiple-choice economics questions that
// gate every player hit, and keeps a small prefetched queue per category so
// gameplay never waits on a slow generator.
package questions

import (
	"errors"
	"fmt"
	"strings"
)

// ChoiceCount is the number of answer choices every question carries
const ChoiceCount = 4

var (
	ErrInvalidQuestion = errors.New("invalid question")
	ErrUnknownCategory = errors.New("unknown question category")
)

// Category selects which generator (and which queue) a question comes from.
// Each monster type maps to exactly one category.
type Category uint8

const (
	CategoryTrivia Category = iota
	CategoryCauseEffect
)

// Categories lists every category in a stable order
var Categories = []Category{CategoryTrivia, CategoryCauseEffect}

// String returns the wire name of the category
func (c Category) String() string {
	switch c {
	case CategoryTrivia:
		return "trivia"
	case CategoryCauseEffect:
		return "cause_effect"
	default:
		return "unknown"
	}
}

// ParseCategory is the inverse of String
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trivia":
		return CategoryTrivia, nil
	case "cause_effect", "cause-effect", "causeeffect":
		return CategoryCauseEffect, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Question is immutable once produced. Shuffle returns a new value.
type Question struct {
	Text         string   `json:"question" yaml:"question" msgpack:"question"`
	Choices      []string `json:"choices" yaml:"choices" msgpack:"choices"`
	CorrectIndex int      `json:"correctAnswerIndex" yaml:"correctAnswerIndex" msgpack:"correctAnswerIndex"`
	Explanation  string   `json:"explanation,omitempty" yaml:"explanation,omitempty" msgpack:"explanation,omitempty"`
}

// Validate checks the shape guaranteed by every generator
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: empty question text", ErrInvalidQuestion)
	}
	if len(q.Choices) != ChoiceCount {
		return fmt.Errorf("%w: want %d choices, got %d", ErrInvalidQuestion, ChoiceCount, len(q.Choices))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Choices) {
		return fmt.Errorf("%w: correct index %d out of range", ErrInvalidQuestion, q.CorrectIndex)
	}
	return nil
}

// IsCorrect reports whether choice i is the right answer
func (q Question) IsCorrect(i int) bool {
	return i == q.CorrectIndex
}

// CorrectText returns the text of the correct choice, or "" for a malformed question
func (q Question) CorrectText() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Choices) {
		return ""
	}
	return q.Choices[q.CorrectIndex]
}

// Clone returns a deep copy so callers never share the choices slice
func (q Question) Clone() Question {
	out := q
	out.Choices = append([]string(nil), q.Choices...)
	return out
}
