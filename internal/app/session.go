package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"quiz-engine/internal/difficulty"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/scoring"
)

// State is the session's position in its two-state lifecycle.
type State int

const (
	StateActive State = iota
	StateFinished
)

func (s State) String() string {
	if s == StateFinished {
		return "finished"
	}
	return "active"
}

// Session is one play-through. It is owned by a single front-end, is not
// safe for concurrent use, and is discarded after the recap.
type Session struct {
	id            string
	profile       difficulty.Profile
	rules         scoring.Rules
	questions     []domain.Question
	budget        time.Duration
	cursor        int
	score         int
	counters      domain.Counters
	responseTimes []time.Duration
}

// NewSession fixes the question sequence and budget for a play-through.
func NewSession(questions []domain.Question, profile difficulty.Profile, rules scoring.Rules) *Session {
	qs := make([]domain.Question, len(questions))
	copy(qs, questions)
	return &Session{
		id:            uuid.NewString(),
		profile:       profile,
		rules:         rules,
		questions:     qs,
		budget:        profile.TimeBudget,
		responseTimes: make([]time.Duration, 0, len(qs)),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Profile() difficulty.Profile { return s.profile }

// Budget is the per-question allowance, fixed for the session.
func (s *Session) Budget() time.Duration { return s.budget }

// Len is the number of questions in the session.
func (s *Session) Len() int { return len(s.questions) }

// Cursor is the index of the current question; equals Len once finished.
func (s *Session) Cursor() int { return s.cursor }

func (s *Session) Score() int { return s.score }

func (s *Session) Counters() domain.Counters { return s.counters }

func (s *Session) State() State {
	if s.cursor >= len(s.questions) {
		return StateFinished
	}
	return StateActive
}

func (s *Session) Finished() bool { return s.State() == StateFinished }

// NextQuestion returns the current question without advancing. Repeated calls
// return the same question until an answer is recorded; ok is false once the
// session is finished.
func (s *Session) NextQuestion() (domain.Question, bool) {
	if s.Finished() {
		return domain.Question{}, false
	}
	return s.questions[s.cursor], true
}

// RecordAnswer scores the answer to the current question and advances.
// An empty letter is a skip; a letter outside A-D counts as incorrect.
// Answers at or past the budget are timed out and never score as correct.
// Recording after the session finished or for a question other than the
// current one is a caller bug: the session is left untouched and an error
// wrapping ErrSessionFinished or ErrStaleQuestion is returned.
func (s *Session) RecordAnswer(q domain.Question, letter domain.Letter, elapsed time.Duration) (domain.AnswerResult, error) {
	if s.Finished() {
		return domain.AnswerResult{}, fmt.Errorf("record answer on session %s: %w", s.id, domain.ErrSessionFinished)
	}
	current := s.questions[s.cursor]
	if !q.Equal(current) {
		return domain.AnswerResult{}, fmt.Errorf("record answer at position %d: %w", s.cursor, domain.ErrStaleQuestion)
	}

	isCorrect := letter.Valid() && letter == current.Correct()
	timedOut := elapsed >= s.budget
	skipped := letter == domain.NoLetter

	var points int
	if timedOut || skipped {
		points = s.rules.Compute(false, elapsed, s.budget)
	} else {
		points = s.rules.Compute(isCorrect, elapsed, s.budget)
	}

	outcome := domain.OutcomeIncorrect
	switch {
	case isCorrect && !timedOut:
		outcome = domain.OutcomeCorrect
		s.counters.Correct++
	case skipped:
		outcome = domain.OutcomeSkipped
		s.counters.Skipped++
	default:
		s.counters.Incorrect++
	}

	recorded := clamp(elapsed, s.budget)
	s.responseTimes = append(s.responseTimes, recorded)
	s.score += points
	s.cursor++

	return domain.AnswerResult{
		Points:   points,
		Correct:  isCorrect,
		TimedOut: timedOut,
		Outcome:  outcome,
		Elapsed:  recorded,
	}, nil
}

// Stats returns a snapshot; the response-time slice is a copy.
func (s *Session) Stats() domain.Stats {
	times := make([]time.Duration, len(s.responseTimes))
	copy(times, s.responseTimes)
	return domain.Stats{
		Score:         s.score,
		Counters:      s.counters,
		ResponseTimes: times,
		Total:         len(s.questions),
	}
}

func clamp(elapsed, budget time.Duration) time.Duration {
	if elapsed < 0 {
		return 0
	}
	if elapsed > budget {
		return budget
	}
	return elapsed
}
