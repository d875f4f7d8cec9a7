// Package leaderboard holds the validation and ranking rules shared by every
// leaderboard store.
package leaderboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"quiz-engine/internal/domain"
)

// InitialsLength is the exact number of letters a player signs with.
const InitialsLength = 3

// DefaultTop is the leaderboard size front-ends show.
const DefaultTop = 10

// Resolution is the precision averages are stored and ranked at.
const Resolution = time.Microsecond

// NormalizeInitials trims and upper-cases raw initials, rejecting anything
// that is not exactly three ASCII letters.
func NormalizeInitials(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if len(s) != InitialsLength {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidInitials, raw)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return "", fmt.Errorf("%w: %q", domain.ErrInvalidInitials, raw)
		}
	}
	return s, nil
}

// NewEntry builds a validated entry.
func NewEntry(initials string, score int, avg time.Duration, at time.Time) (domain.LeaderboardEntry, error) {
	return Normalize(domain.LeaderboardEntry{
		Initials:            initials,
		Score:               score,
		AverageResponseTime: avg,
		Timestamp:           at,
	})
}

// Normalize validates e and returns it with upper-cased initials and the
// average rounded to Resolution.
func Normalize(e domain.LeaderboardEntry) (domain.LeaderboardEntry, error) {
	initials, err := NormalizeInitials(e.Initials)
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}
	if e.AverageResponseTime < 0 {
		return domain.LeaderboardEntry{}, fmt.Errorf("%w: negative average response time %v", domain.ErrInvalidEntry, e.AverageResponseTime)
	}
	if e.Timestamp.IsZero() {
		return domain.LeaderboardEntry{}, fmt.Errorf("%w: missing timestamp", domain.ErrInvalidEntry)
	}
	e.Initials = initials
	e.AverageResponseTime = e.AverageResponseTime.Round(Resolution)
	return e, nil
}

// Less orders by score descending, then average response time ascending.
func Less(a, b domain.LeaderboardEntry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.AverageResponseTime < b.AverageResponseTime
}

// Rank sorts entries in place. Entries that tie on both keys keep insertion order.
func Rank(entries []domain.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Less(entries[i], entries[j])
	})
}

// Top ranks a copy of entries and returns at most n of them.
func Top(entries []domain.LeaderboardEntry, n int) ([]domain.LeaderboardEntry, error) {
	if err := CheckLimit(n); err != nil {
		return nil, err
	}
	ranked := make([]domain.LeaderboardEntry, len(entries))
	copy(ranked, entries)
	Rank(ranked)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// CheckLimit validates a requested leaderboard size.
func CheckLimit(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidLimit, n)
	}
	return nil
}
