package memory

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"quiz-engine/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches a question bank from a backing store (files, Postgres, ...).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, bankID string) ([]domain.Question, error)
}

// QuestionRepository caches question banks with TTL to avoid repeated loads.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedBank
}

type cachedBank struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedBank),
	}
}

// GetQuestions returns a copy of the bank so callers may shuffle freely.
func (r *QuestionRepository) GetQuestions(ctx context.Context, bankID string) ([]domain.Question, error) {
	if qs, ok := r.lookup(bankID); ok {
		return qs, nil
	}

	result, err, _ := r.sf.Do(bankID, func() (interface{}, error) {
		if qs, ok := r.lookup(bankID); ok {
			return qs, nil
		}

		qs, err := r.loader.LoadQuestions(ctx, bankID)
		if err != nil {
			return nil, err
		}
		if len(qs) == 0 {
			return nil, fmt.Errorf("bank %q: %w", bankID, domain.ErrNoValidQuestions)
		}

		r.mu.Lock()
		r.cache[bankID] = cachedBank{
			questions: qs,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneQuestions(result.([]domain.Question)), nil
}

func (r *QuestionRepository) lookup(bankID string) ([]domain.Question, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[bankID]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return cloneQuestions(entry.questions), true
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func cloneQuestions(qs []domain.Question) []domain.Question {
	out := make([]domain.Question, len(qs))
	copy(out, qs)
	return out
}

// StaticQuestionLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticQuestionLoader struct {
	banks map[string][]domain.Question
}

func NewStaticQuestionLoader(banks map[string][]domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{banks: banks}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context, bankID string) ([]domain.Question, error) {
	if qs, ok := l.banks[bankID]; ok {
		return cloneQuestions(qs), nil
	}
	return nil, fmt.Errorf("bank %q: %w", bankID, domain.ErrQuestionBankNotFound)
}

// ChainLoader tries loaders in order, moving on only when a loader does not
// know the bank.
type ChainLoader []QuestionLoader

func (c ChainLoader) LoadQuestions(ctx context.Context, bankID string) ([]domain.Question, error) {
	for _, l := range c {
		qs, err := l.LoadQuestions(ctx, bankID)
		if errors.Is(err, domain.ErrQuestionBankNotFound) {
			continue
		}
		return qs, err
	}
	return nil, fmt.Errorf("bank %q: %w", bankID, domain.ErrQuestionBankNotFound)
}
