package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/leaderboard"

	"github.com/jackc/pgx/v4/pgxpool"
)

// LeaderboardStore persists entries in the leaderboard_entries table.
type LeaderboardStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewLeaderboardStore(pool *pgxpool.Pool, logger *slog.Logger) *LeaderboardStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardStore{pool: pool, logger: logger}
}

func (s *LeaderboardStore) Append(ctx context.Context, entry domain.LeaderboardEntry) error {
	entry, err := leaderboard.Normalize(entry)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO leaderboard_entries (initials, score, avg_response_us, created_at) VALUES ($1, $2, $3, $4)`,
		entry.Initials, entry.Score, entry.AverageResponseTime.Microseconds(), entry.Timestamp)
	if err != nil {
		return fmt.Errorf("insert leaderboard entry: %w", err)
	}
	return nil
}

// TopN reads rows in rank order, skipping rows that no longer validate.
func (s *LeaderboardStore) TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if err := leaderboard.CheckLimit(n); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, initials, score, avg_response_us, created_at
		 FROM leaderboard_entries
		 ORDER BY score DESC, avg_response_us ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, min(n, leaderboard.DefaultTop))
	for rows.Next() {
		var (
			id        int64
			initials  string
			score     int
			avgUS     int64
			createdAt time.Time
		)
		if err := rows.Scan(&id, &initials, &score, &avgUS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		entry, err := leaderboard.NewEntry(initials, score, time.Duration(avgUS)*time.Microsecond, createdAt.UTC())
		if err != nil {
			s.logger.Debug("skipping leaderboard row", "id", id, "error", err)
			continue
		}
		entries = append(entries, entry)
		if len(entries) == n {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan leaderboard: %w", err)
	}
	return entries, nil
}
