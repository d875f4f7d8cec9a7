// Package scoring turns a classified answer and its latency into points.
package scoring

import (
	"fmt"
	"math"
	"time"
)

// Rules holds the scoring constants.
type Rules struct {
	// MaxPoints is awarded for a correct answer given instantly.
	MaxPoints int
	// MinPoints is the floor for a correct answer given at the budget boundary.
	MinPoints int
	// WrongPenalty is applied to wrong, skipped and timed-out answers. Never positive.
	WrongPenalty int
}

// DefaultRules returns the production defaults.
func DefaultRules() Rules {
	return Rules{
		MaxPoints:    10,
		MinPoints:    1,
		WrongPenalty: 0,
	}
}

// Validate checks the rule bounds.
func (r Rules) Validate() error {
	if r.MinPoints < 1 {
		return fmt.Errorf("scoring: min points must be at least 1, got %d", r.MinPoints)
	}
	if r.MaxPoints < r.MinPoints {
		return fmt.Errorf("scoring: max points %d below min points %d", r.MaxPoints, r.MinPoints)
	}
	if r.WrongPenalty > 0 {
		return fmt.Errorf("scoring: wrong penalty must not be positive, got %d", r.WrongPenalty)
	}
	return nil
}

// Compute scores one answer.
// - incorrect: WrongPenalty
// - correct: linear decay from MaxPoints at zero elapsed to MinPoints at the budget
// Elapsed is clamped to [0, budget] first.
func (r Rules) Compute(isCorrect bool, elapsed, budget time.Duration) int {
	if !isCorrect {
		return r.WrongPenalty
	}
	if budget <= 0 {
		return r.MinPoints
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > budget {
		elapsed = budget
	}
	remaining := 1 - float64(elapsed)/float64(budget)
	bonus := int(math.Round(float64(r.MaxPoints-r.MinPoints) * remaining))
	return r.MinPoints + bonus
}

// ComputeScore scores one answer with DefaultRules.
func ComputeScore(isCorrect bool, elapsed, budget time.Duration) int {
	return DefaultRules().Compute(isCorrect, elapsed, budget)
}
