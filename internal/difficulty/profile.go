// Package difficulty maps a difficulty choice to question count and time budget.
package difficulty

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"quiz-engine/internal/domain"
)

// Level identifies a difficulty preset. Values match the menu numbering.
type Level int

const (
	Easy   Level = 1
	Medium Level = 2
	Hard   Level = 3
)

// DefaultLevel is used when no valid selection is made.
const DefaultLevel = Medium

// MaxSelectionAttempts bounds interactive difficulty prompts.
const MaxSelectionAttempts = 3

// Profile is a named preset controlling session length and per-question budget.
type Profile struct {
	Level         Level         `json:"level"`
	Name          string        `json:"name"`
	QuestionCount int           `json:"questionCount"`
	TimeBudget    time.Duration `json:"timeBudget"`
}

var profiles = map[Level]Profile{
	Easy:   {Level: Easy, Name: "facile", QuestionCount: 5, TimeBudget: 15 * time.Second},
	Medium: {Level: Medium, Name: "medio", QuestionCount: 10, TimeBudget: 10 * time.Second},
	Hard:   {Level: Hard, Name: "difficile", QuestionCount: 15, TimeBudget: 5 * time.Second},
}

var aliases = map[string]Level{
	"facile":    Easy,
	"easy":      Easy,
	"medio":     Medium,
	"medium":    Medium,
	"difficile": Hard,
	"hard":      Hard,
}

// Lookup returns the profile for a level.
func Lookup(level Level) (Profile, bool) {
	p, ok := profiles[level]
	return p, ok
}

// ByIndex resolves a menu index (1-3).
func ByIndex(idx int) (Profile, bool) {
	return Lookup(Level(idx))
}

// ByName resolves a difficulty name or menu number, case-insensitively.
func ByName(name string) (Profile, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if level, ok := aliases[key]; ok {
		return Lookup(level)
	}
	if idx, err := strconv.Atoi(key); err == nil {
		return ByIndex(idx)
	}
	return Profile{}, false
}

// Parse is ByName with an error for unknown selections.
func Parse(name string) (Profile, error) {
	p, ok := ByName(name)
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", domain.ErrUnknownDifficulty, name)
	}
	return p, nil
}

// Default returns the fallback profile.
func Default() Profile {
	return profiles[DefaultLevel]
}

// All returns the profiles in menu order.
func All() []Profile {
	return []Profile{profiles[Easy], profiles[Medium], profiles[Hard]}
}

// Choose asks next for a selection up to maxAttempts times. It returns the
// first valid profile with chosen=true, or Default with chosen=false when the
// attempts run out or next reports no more input.
func Choose(next func() (string, bool), maxAttempts int) (p Profile, chosen bool) {
	for i := 0; i < maxAttempts; i++ {
		raw, ok := next()
		if !ok {
			break
		}
		if p, ok := ByName(raw); ok {
			return p, true
		}
	}
	return Default(), false
}
