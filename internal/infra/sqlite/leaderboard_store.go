package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/leaderboard"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// LeaderboardStore keeps the ledger in a local SQLite table.
type LeaderboardStore struct {
	db     *sql.DB
	logger *slog.Logger
	mu     sync.Mutex
}

// Open connects to the SQLite database at dsn and ensures the schema exists.
func Open(dsn string, logger *slog.Logger) (*LeaderboardStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &LeaderboardStore{db: db, logger: logger}, nil
}

func (s *LeaderboardStore) Close() error {
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS leaderboard_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			initials TEXT NOT NULL,
			score INTEGER NOT NULL,
			avg_response_us INTEGER NOT NULL,
			created_at_unix_nano INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboard_rank ON leaderboard_entries(score DESC, avg_response_us ASC, id ASC);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *LeaderboardStore) Append(ctx context.Context, entry domain.LeaderboardEntry) error {
	entry, err := leaderboard.Normalize(entry)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leaderboard_entries (initials, score, avg_response_us, created_at_unix_nano) VALUES (?, ?, ?, ?)`,
		entry.Initials, entry.Score, entry.AverageResponseTime.Microseconds(), entry.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert leaderboard entry: %w", err)
	}
	return nil
}

// TopN scans rows in rank order and stops after n valid entries; rows that
// fail validation are skipped.
func (s *LeaderboardStore) TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if err := leaderboard.CheckLimit(n); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, initials, score, avg_response_us, created_at_unix_nano
		 FROM leaderboard_entries
		 ORDER BY score DESC, avg_response_us ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, min(n, leaderboard.DefaultTop))
	for rows.Next() && len(entries) < n {
		var (
			id       int64
			initials sql.NullString
			score    sql.NullInt64
			avgUS    sql.NullInt64
			created  sql.NullInt64
		)
		if err := rows.Scan(&id, &initials, &score, &avgUS, &created); err != nil {
			s.logger.Debug("skipping leaderboard row", "id", id, "error", err)
			continue
		}
		entry, err := leaderboard.Normalize(domain.LeaderboardEntry{
			Initials:            initials.String,
			Score:               int(score.Int64),
			AverageResponseTime: time.Duration(avgUS.Int64) * time.Microsecond,
			Timestamp:           time.Unix(0, created.Int64).UTC(),
		})
		if err != nil || !initials.Valid || !score.Valid || !avgUS.Valid || !created.Valid {
			s.logger.Debug("skipping leaderboard row", "id", id, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan leaderboard: %w", err)
	}
	return entries, nil
}
