package questionbank

import (
	_ "embed"
	"sync"

	"quiz-engine/internal/domain"
)

// SampleBankID names the built-in bank.
const SampleBankID = "default"

//go:embed sample.json
var sampleJSON []byte

var (
	sampleOnce sync.Once
	sample     []domain.Question
)

// Sample returns the built-in question bank used when no bank is configured.
func Sample() []domain.Question {
	sampleOnce.Do(func() {
		qs, err := DecodeJSON(sampleJSON)
		if err != nil {
			panic("questionbank: embedded sample is invalid: " + err.Error())
		}
		sample = qs
	})
	out := make([]domain.Question, len(sample))
	copy(out, sample)
	return out
}
