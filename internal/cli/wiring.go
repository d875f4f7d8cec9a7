package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"quiz-engine/internal/app"
	"quiz-engine/internal/config"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/file"
	"quiz-engine/internal/infra/memory"
	"quiz-engine/internal/infra/postgres"
	infraredis "quiz-engine/internal/infra/redis"
	"quiz-engine/internal/infra/sqlite"
	"quiz-engine/internal/questionbank"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// runtime holds the wired engine and everything that must be closed with it.
type runtime struct {
	cfg     config.Config
	logger  *slog.Logger
	service *app.QuizService
	closers []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func newLogger(cfg config.Config, w io.Writer, floor slog.Level) *slog.Logger {
	level := parseLevel(cfg.Log.Level)
	if level < floor {
		level = floor
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// buildRuntime connects the configured backends and assembles the quiz service.
func buildRuntime(ctx context.Context, cfg config.Config, logger *slog.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { redisClient.Close() })
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			rt.Close()
			return nil, err
		}
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
	}

	board, closeBoard, err := buildLeaderboard(cfg, redisClient, pool, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if closeBoard != nil {
		rt.closers = append(rt.closers, closeBoard)
	}

	rt.service = app.NewQuizService(
		buildQuestionRepository(cfg, redisClient, pool, logger),
		board,
		app.WithRules(cfg.Rules()),
		app.WithLogger(logger),
	)
	return rt, nil
}

// buildQuestionRepository chains Postgres, the questions directory and the
// embedded sample bank, cached in Redis when configured.
func buildQuestionRepository(cfg config.Config, redisClient *redis.Client, pool *pgxpool.Pool, logger *slog.Logger) app.QuestionRepository {
	var chain memory.ChainLoader
	if pool != nil {
		chain = append(chain, postgres.NewQuestionLoader(pool))
	}
	if cfg.Quiz.QuestionsDir != "" {
		chain = append(chain, file.NewQuestionLoader(cfg.Quiz.QuestionsDir))
	}
	chain = append(chain, memory.NewStaticQuestionLoader(map[string][]domain.Question{
		questionbank.SampleBankID: questionbank.Sample(),
	}))

	ttl := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if redisClient != nil {
		return infraredis.NewQuestionRepository(redisClient, chain, ttl, logger)
	}
	return memory.NewQuestionRepository(chain, ttl)
}

func buildLeaderboard(cfg config.Config, redisClient *redis.Client, pool *pgxpool.Pool, logger *slog.Logger) (app.LeaderboardRepository, func(), error) {
	switch cfg.Leaderboard.Backend {
	case config.BackendMemory:
		return memory.NewLeaderboardStore(), nil, nil
	case config.BackendFile:
		return file.NewLeaderboardStore(cfg.Leaderboard.File, logger), nil, nil
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.Leaderboard.SQLitePath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite leaderboard: %w", err)
		}
		return store, func() { store.Close() }, nil
	case config.BackendRedis:
		return infraredis.NewLeaderboardStore(redisClient, cfg.Leaderboard.RedisKey, logger), nil, nil
	case config.BackendPostgres:
		return postgres.NewLeaderboardStore(pool, logger), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown leaderboard backend %q", cfg.Leaderboard.Backend)
}
