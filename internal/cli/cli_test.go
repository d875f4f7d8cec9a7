package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quiz-engine/internal/config"
	"quiz-engine/internal/infra/file"
	"quiz-engine/internal/infra/memory"
	"quiz-engine/internal/infra/sqlite"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestPlayCommandRunsASession(t *testing.T) {
	path := writeConfig(t, "leaderboard:\n  backend: memory\nlog:\n  level: error\n")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader("1\n\n\n\n\n\n\nn\n"))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "play", "--no-color"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("play: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "facile: 5 questions") {
		t.Fatalf("expected an easy session, got:\n%s", text)
	}
	if !strings.Contains(text, "Correct: 0  Wrong: 0  Skipped: 5") {
		t.Fatalf("expected five skips, got:\n%s", text)
	}
	if !strings.Contains(text, "Thanks for playing!") {
		t.Fatalf("expected a clean exit, got:\n%s", text)
	}
}

func TestLeaderboardCommandEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, "leaderboard:\n  backend: file\n  file: "+filepath.Join(dir, "scores.csv")+"\n")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "leaderboard", "--top", "3"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if strings.TrimSpace(out.String()) != "No scores yet." {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestBuildLeaderboardBackends(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Leaderboard.Backend = config.BackendMemory
	board, closer, err := buildLeaderboard(cfg, nil, nil, logger)
	if err != nil || closer != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if _, ok := board.(*memory.LeaderboardStore); !ok {
		t.Fatalf("expected memory store, got %T", board)
	}

	cfg.Leaderboard.Backend = config.BackendFile
	cfg.Leaderboard.File = filepath.Join(dir, "scores.csv")
	board, _, err = buildLeaderboard(cfg, nil, nil, logger)
	if err != nil {
		t.Fatalf("file backend: %v", err)
	}
	if _, ok := board.(*file.LeaderboardStore); !ok {
		t.Fatalf("expected file store, got %T", board)
	}

	cfg.Leaderboard.Backend = config.BackendSQLite
	cfg.Leaderboard.SQLitePath = filepath.Join(dir, "scores.db")
	board, closer, err = buildLeaderboard(cfg, nil, nil, logger)
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	defer closer()
	if _, ok := board.(*sqlite.LeaderboardStore); !ok {
		t.Fatalf("expected sqlite store, got %T", board)
	}

	cfg.Leaderboard.Backend = "mongo"
	if _, _, err := buildLeaderboard(cfg, nil, nil, logger); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestQuestionRepositoryFallsBackToSample(t *testing.T) {
	cfg := config.Default()
	cfg.Quiz.QuestionsDir = t.TempDir()
	repo := buildQuestionRepository(cfg, nil, nil, slog.Default())

	qs, err := repo.GetQuestions(context.Background(), "default")
	if err != nil {
		t.Fatalf("get sample bank: %v", err)
	}
	if len(qs) < 15 {
		t.Fatalf("expected the embedded sample bank, got %d questions", len(qs))
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for raw, want := range cases {
		if got := parseLevel(raw); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}
