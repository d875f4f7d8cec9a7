package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/questionbank"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches a question bank from the source of truth (files, Postgres, ...).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, bankID string) ([]domain.Question, error)
}

// QuestionRepository caches question banks in Redis and falls back to a loader on cache miss.
// Each bank is stored as a JSON array of records under quiz:bank:{bankID}.
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	logger *slog.Logger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration, logger *slog.Logger) *QuestionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetQuestions(ctx context.Context, bankID string) ([]domain.Question, error) {
	if qs, ok := r.cached(ctx, bankID); ok {
		return qs, nil
	}

	result, err, _ := r.sf.Do(bankID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if qs, ok := r.cached(ctx, bankID); ok {
			return qs, nil
		}

		qs, err := r.loader.LoadQuestions(ctx, bankID)
		if err != nil {
			return nil, err
		}
		if len(qs) == 0 {
			return nil, fmt.Errorf("bank %q: %w", bankID, domain.ErrNoValidQuestions)
		}

		payload, err := questionbank.EncodeJSON(qs)
		if err != nil {
			return nil, err
		}
		if err := r.client.Set(ctx, bankKey(bankID), payload, r.ttlWithJitter()).Err(); err != nil {
			r.logger.Warn("cache question bank", "bank", bankID, "error", err)
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	qs := result.([]domain.Question)
	out := make([]domain.Question, len(qs))
	copy(out, qs)
	return out, nil
}

// cached reports a hit only for a readable, non-empty bank. A corrupt value is
// treated as a miss and reloaded.
func (r *QuestionRepository) cached(ctx context.Context, bankID string) ([]domain.Question, bool) {
	data, err := r.client.Get(ctx, bankKey(bankID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("read cached question bank", "bank", bankID, "error", err)
		}
		return nil, false
	}
	qs, err := questionbank.DecodeJSON(data)
	if err != nil {
		r.logger.Debug("discarding corrupt cached bank", "bank", bankID, "error", err)
		return nil, false
	}
	return qs, true
}

func bankKey(bankID string) string {
	return "quiz:bank:" + bankID
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
