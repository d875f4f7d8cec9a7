package domain

import (
	"fmt"
	"strings"
)

// Letter identifies one of the four answer options.
type Letter string

const (
	LetterA Letter = "A"
	LetterB Letter = "B"
	LetterC Letter = "C"
	LetterD Letter = "D"

	// NoLetter is the empty answer recorded for a skip or an expired timer.
	NoLetter Letter = ""
)

// Letters lists the option keys in display order.
var Letters = []Letter{LetterA, LetterB, LetterC, LetterD}

// Valid reports whether l is one of A, B, C or D.
func (l Letter) Valid() bool {
	switch l {
	case LetterA, LetterB, LetterC, LetterD:
		return true
	}
	return false
}

// ParseLetter normalizes raw player input. The returned letter is always the
// trimmed, upper-cased input; ok is false when it is not one of A-D.
func ParseLetter(raw string) (Letter, bool) {
	l := Letter(strings.ToUpper(strings.TrimSpace(raw)))
	return l, l.Valid()
}

// Question is an immutable multiple-choice question with exactly four options.
type Question struct {
	text    string
	options map[Letter]string
	correct Letter
}

// NewQuestion validates and builds a question. The options map is copied.
func NewQuestion(text string, options map[Letter]string, correct Letter) (Question, error) {
	if strings.TrimSpace(text) == "" {
		return Question{}, fmt.Errorf("%w: empty text", ErrInvalidQuestion)
	}
	if len(options) != len(Letters) {
		return Question{}, fmt.Errorf("%w: want %d options, got %d", ErrInvalidQuestion, len(Letters), len(options))
	}
	copied := make(map[Letter]string, len(Letters))
	for _, l := range Letters {
		opt, ok := options[l]
		if !ok {
			return Question{}, fmt.Errorf("%w: missing option %s", ErrInvalidQuestion, l)
		}
		copied[l] = opt
	}
	if !correct.Valid() {
		return Question{}, fmt.Errorf("%w: correct option %q", ErrInvalidQuestion, string(correct))
	}
	return Question{text: text, options: copied, correct: correct}, nil
}

// MustQuestion is like NewQuestion but panics on invalid input. Intended for
// static fixtures.
func MustQuestion(text string, options map[Letter]string, correct Letter) Question {
	q, err := NewQuestion(text, options, correct)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Question) Text() string { return q.text }

func (q Question) Correct() Letter { return q.correct }

// Option returns the text of option l, or "" for an unknown letter.
func (q Question) Option(l Letter) string { return q.options[l] }

// Options returns a copy of the letter-keyed options.
func (q Question) Options() map[Letter]string {
	out := make(map[Letter]string, len(q.options))
	for k, v := range q.options {
		out[k] = v
	}
	return out
}

// IsZero reports whether q was never constructed.
func (q Question) IsZero() bool { return q.options == nil }

// Equal reports whether two questions carry the same text, options and answer.
func (q Question) Equal(other Question) bool {
	if q.text != other.text || q.correct != other.correct || len(q.options) != len(other.options) {
		return false
	}
	for k, v := range q.options {
		if other.options[k] != v {
			return false
		}
	}
	return true
}
