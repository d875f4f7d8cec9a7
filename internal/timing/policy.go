// Package timing is the single notion of "how long is too long" shared by
// every front-end. The engine never reads a clock; front-ends measure with a
// Stopwatch and hand the elapsed duration to the session.
package timing

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock (with its monotonic reading).
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Expired reports whether elapsed has reached the budget.
func Expired(elapsed, budget time.Duration) bool {
	return elapsed >= budget
}

// Band is a coarse urgency level for countdown rendering.
type Band int

const (
	BandCalm Band = iota
	BandWarning
	BandCritical
)

func (b Band) String() string {
	switch b {
	case BandCalm:
		return "calm"
	case BandWarning:
		return "warning"
	case BandCritical:
		return "critical"
	}
	return "unknown"
}

// Policy binds a budget to a clock.
type Policy struct {
	Budget time.Duration
	clock  Clock
}

// NewPolicy returns a policy; a nil clock falls back to SystemClock.
func NewPolicy(budget time.Duration, clock Clock) Policy {
	if clock == nil {
		clock = SystemClock{}
	}
	return Policy{Budget: budget, clock: clock}
}

// Start opens a stopwatch with the reference point set to now.
func (p Policy) Start() Stopwatch {
	clock := p.clock
	if clock == nil {
		clock = SystemClock{}
	}
	return Stopwatch{started: clock.Now(), budget: p.Budget, clock: clock}
}

// Stopwatch measures one question's elapsed time against the budget.
type Stopwatch struct {
	started time.Time
	budget  time.Duration
	clock   Clock
}

// StartedAt is the reference point.
func (s Stopwatch) StartedAt() time.Time { return s.started }

// Budget is the allowance the stopwatch was opened with.
func (s Stopwatch) Budget() time.Duration { return s.budget }

// Elapsed is now minus the reference point.
func (s Stopwatch) Elapsed() time.Duration {
	return s.clock.Now().Sub(s.started)
}

// Expired reports whether the budget is used up.
func (s Stopwatch) Expired() bool {
	return Expired(s.Elapsed(), s.budget)
}

// Remaining is the unused budget, never negative.
func (s Stopwatch) Remaining() time.Duration {
	left := s.budget - s.Elapsed()
	if left < 0 {
		return 0
	}
	return left
}

// Fraction is the remaining share of the budget in [0, 1].
func (s Stopwatch) Fraction() float64 {
	if s.budget <= 0 {
		return 0
	}
	return float64(s.Remaining()) / float64(s.budget)
}

// Band maps the remaining share onto calm (>60%), warning (>30%) and critical.
func (s Stopwatch) Band() Band {
	f := s.Fraction()
	switch {
	case f > 0.60:
		return BandCalm
	case f > 0.30:
		return BandWarning
	default:
		return BandCritical
	}
}
