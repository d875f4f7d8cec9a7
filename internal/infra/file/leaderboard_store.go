package file

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/leaderboard"
)

// LeaderboardStore is an append-only CSV ledger, one line per play-through:
//
//	timestamp,initials,score,avg_seconds
//
// Lines that fail to parse or validate are skipped on read.
type LeaderboardStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

func NewLeaderboardStore(path string, logger *slog.Logger) *LeaderboardStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardStore{path: path, logger: logger}
}

func (s *LeaderboardStore) Append(_ context.Context, entry domain.LeaderboardEntry) error {
	entry, err := leaderboard.Normalize(entry)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create leaderboard dir: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open leaderboard: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(formatRecord(entry)); err != nil {
		return fmt.Errorf("write leaderboard entry: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush leaderboard entry: %w", err)
	}
	return f.Sync()
}

func (s *LeaderboardStore) TopN(_ context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if err := leaderboard.CheckLimit(n); err != nil {
		return nil, err
	}

	s.mu.Lock()
	entries, err := s.readAll()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return leaderboard.Top(entries, n)
}

func (s *LeaderboardStore) readAll() ([]domain.LeaderboardEntry, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open leaderboard: %w", err)
	}
	defer f.Close()

	var entries []domain.LeaderboardEntry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry, err := parseLine(line)
		if err != nil {
			s.logger.Debug("skipping leaderboard line", "path", s.path, "line", lineNo, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan leaderboard: %w", err)
	}
	return entries, nil
}

func formatRecord(e domain.LeaderboardEntry) []string {
	return []string{
		e.Timestamp.Format(time.RFC3339Nano),
		e.Initials,
		strconv.Itoa(e.Score),
		strconv.FormatFloat(e.AverageResponseTime.Seconds(), 'f', 6, 64),
	}
}

func parseLine(line string) (domain.LeaderboardEntry, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = 4
	fields, err := r.Read()
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}
	ts, err := parseTimestamp(strings.TrimSpace(fields[0]))
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("timestamp: %w", err)
	}
	score, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("score: %w", err)
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("average: %w", err)
	}
	return leaderboard.Normalize(domain.LeaderboardEntry{
		Initials:            fields[1],
		Score:               score,
		AverageResponseTime: time.Duration(secs * float64(time.Second)),
		Timestamp:           ts,
	})
}

// parseTimestamp accepts RFC 3339 and zone-less ISO timestamps from older ledgers.
func parseTimestamp(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05.999999999", raw, time.Local)
}
