package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/leaderboard"

	"github.com/redis/go-redis/v9"
)

// DefaultLeaderboardKey is the list holding the ledger.
const DefaultLeaderboardKey = "quiz:leaderboard"

// LeaderboardStore appends entries to a Redis list, one JSON document per
// element. Ranking happens on read so the list stays an append-only ledger.
type LeaderboardStore struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

func NewLeaderboardStore(client *redis.Client, key string, logger *slog.Logger) *LeaderboardStore {
	if key == "" {
		key = DefaultLeaderboardKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardStore{client: client, key: key, logger: logger}
}

func (s *LeaderboardStore) Append(ctx context.Context, entry domain.LeaderboardEntry) error {
	entry, err := leaderboard.Normalize(entry)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode leaderboard entry: %w", err)
	}
	if err := s.client.RPush(ctx, s.key, payload).Err(); err != nil {
		return fmt.Errorf("append leaderboard entry: %w", err)
	}
	return nil
}

func (s *LeaderboardStore) TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if err := leaderboard.CheckLimit(n); err != nil {
		return nil, err
	}
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(raw))
	for i, item := range raw {
		var e domain.LeaderboardEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			s.logger.Debug("skipping leaderboard record", "index", i, "error", err)
			continue
		}
		e, err = leaderboard.Normalize(e)
		if err != nil {
			s.logger.Debug("skipping leaderboard record", "index", i, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return leaderboard.Top(entries, n)
}
