package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"quiz-engine/internal/difficulty"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/leaderboard"
	"quiz-engine/internal/scoring"
)

// QuestionRepository supplies validated questions (from cache/backing store).
type QuestionRepository interface {
	GetQuestions(ctx context.Context, bankID string) ([]domain.Question, error)
}

// LeaderboardRepository abstracts the append-only score ledger (memory, file, Redis, etc).
type LeaderboardRepository interface {
	Append(ctx context.Context, entry domain.LeaderboardEntry) error
	TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
}

// QuizService contains the quiz use cases shared by every front-end.
type QuizService struct {
	questions   QuestionRepository
	leaderboard LeaderboardRepository
	rules       scoring.Rules
	now         func() time.Time
	logger      *slog.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithRules overrides the default scoring rules.
func WithRules(rules scoring.Rules) Option {
	return func(s *QuizService) { s.rules = rules }
}

// WithClock is test-only for deterministic leaderboard timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithRand fixes the shuffle source.
func WithRand(rnd *rand.Rand) Option {
	return func(s *QuizService) { s.rnd = rnd }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *QuizService) { s.logger = logger }
}

func NewQuizService(questions QuestionRepository, board LeaderboardRepository, opts ...Option) *QuizService {
	s := &QuizService{
		questions:   questions,
		leaderboard: board,
		rules:       scoring.DefaultRules(),
		now:         time.Now,
		logger:      slog.Default(),
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns the scoring rules new sessions use.
func (s *QuizService) Rules() scoring.Rules {
	return s.rules
}

// StartSession draws a shuffled subset of the bank sized by the profile.
// A pool smaller than the profile's count yields a shorter session.
func (s *QuizService) StartSession(ctx context.Context, bankID string, profile difficulty.Profile) (*Session, error) {
	pool, err := s.questions.GetQuestions(ctx, bankID)
	if err != nil {
		return nil, fmt.Errorf("load question bank %q: %w", bankID, err)
	}

	picked := make([]domain.Question, len(pool))
	copy(picked, pool)
	s.rndMu.Lock()
	s.rnd.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	s.rndMu.Unlock()
	if len(picked) > profile.QuestionCount {
		picked = picked[:profile.QuestionCount]
	}

	session := NewSession(picked, profile, s.rules)
	s.logger.Info("session started",
		"session_id", session.ID(),
		"bank", bankID,
		"difficulty", profile.Name,
		"questions", session.Len(),
		"budget", profile.TimeBudget,
	)
	return session, nil
}

// StartSessionByName resolves a difficulty name before starting.
func (s *QuizService) StartSessionByName(ctx context.Context, bankID, name string) (*Session, error) {
	profile, err := difficulty.Parse(name)
	if err != nil {
		return nil, err
	}
	return s.StartSession(ctx, bankID, profile)
}

// SaveResult appends the finished session to the leaderboard. A validation
// failure leaves the session intact so the caller can retry with new initials.
func (s *QuizService) SaveResult(ctx context.Context, session *Session, initials string) (domain.LeaderboardEntry, error) {
	if !session.Finished() {
		return domain.LeaderboardEntry{}, domain.ErrSessionNotFinished
	}
	stats := session.Stats()
	entry, err := leaderboard.NewEntry(initials, stats.Score, stats.AverageResponseTime(), s.now())
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}
	if err := s.leaderboard.Append(ctx, entry); err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("append leaderboard entry: %w", err)
	}
	s.logger.Info("result saved",
		"session_id", session.ID(),
		"initials", entry.Initials,
		"score", entry.Score,
		"avg_response_ms", entry.AverageResponseTime.Milliseconds(),
	)
	return entry, nil
}

// TopScores returns the best n leaderboard entries.
func (s *QuizService) TopScores(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if err := leaderboard.CheckLimit(n); err != nil {
		return nil, err
	}
	return s.leaderboard.TopN(ctx, n)
}
