package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeScoreCorrectIsPositiveAndNonIncreasing(t *testing.T) {
	budgets := []time.Duration{5 * time.Second, 10 * time.Second, 15 * time.Second}
	for _, budget := range budgets {
		prev := ComputeScore(true, 0, budget)
		assert.Equal(t, 10, prev, "instant answer earns full credit")
		for elapsed := time.Duration(0); elapsed < budget; elapsed += 50 * time.Millisecond {
			got := ComputeScore(true, elapsed, budget)
			require.Positive(t, got, "elapsed=%v budget=%v", elapsed, budget)
			require.LessOrEqual(t, got, prev, "elapsed=%v budget=%v", elapsed, budget)
			prev = got
		}
	}
}

func TestComputeScoreBoundaryFloor(t *testing.T) {
	assert.Equal(t, 1, ComputeScore(true, 10*time.Second, 10*time.Second))
}

func TestComputeScoreClampsElapsed(t *testing.T) {
	budget := 10 * time.Second
	assert.Equal(t, ComputeScore(true, 0, budget), ComputeScore(true, -3*time.Second, budget))
	assert.Equal(t, ComputeScore(true, budget, budget), ComputeScore(true, time.Hour, budget))
}

func TestComputeScoreIncorrectIsNonPositive(t *testing.T) {
	for _, elapsed := range []time.Duration{0, time.Second, 10 * time.Second, time.Minute} {
		assert.LessOrEqual(t, ComputeScore(false, elapsed, 10*time.Second), 0)
	}
}

func TestRulesPenalty(t *testing.T) {
	rules := Rules{MaxPoints: 20, MinPoints: 2, WrongPenalty: -3}
	require.NoError(t, rules.Validate())
	assert.Equal(t, -3, rules.Compute(false, time.Second, 5*time.Second))
	assert.Equal(t, 20, rules.Compute(true, 0, 5*time.Second))
	assert.Equal(t, 2, rules.Compute(true, 5*time.Second, 5*time.Second))
	assert.Equal(t, 11, rules.Compute(true, 2500*time.Millisecond, 5*time.Second))
}

func TestRulesZeroBudget(t *testing.T) {
	assert.Equal(t, 1, DefaultRules().Compute(true, time.Second, 0))
}

func TestRulesValidate(t *testing.T) {
	tests := []struct {
		name  string
		rules Rules
		ok    bool
	}{
		{"defaults", DefaultRules(), true},
		{"zero floor", Rules{MaxPoints: 10, MinPoints: 0}, false},
		{"max below min", Rules{MaxPoints: 1, MinPoints: 2}, false},
		{"positive penalty", Rules{MaxPoints: 10, MinPoints: 1, WrongPenalty: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rules.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
