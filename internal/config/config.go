package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"quiz-engine/internal/difficulty"
	"quiz-engine/internal/leaderboard"
	"quiz-engine/internal/questionbank"
	"quiz-engine/internal/scoring"

	"gopkg.in/yaml.v3"
)

// Leaderboard backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Quiz struct {
		Bank              string `yaml:"bank"`
		QuestionsDir      string `yaml:"questions_dir"`
		TTL               string `yaml:"ttl"`
		DefaultDifficulty string `yaml:"default_difficulty"`
	} `yaml:"quiz"`
	Scoring struct {
		MaxPoints    int `yaml:"max_points"`
		MinPoints    int `yaml:"min_points"`
		WrongPenalty int `yaml:"wrong_penalty"`
	} `yaml:"scoring"`
	Leaderboard struct {
		Backend    string `yaml:"backend"`
		File       string `yaml:"file"`
		SQLitePath string `yaml:"sqlite_path"`
		RedisKey   string `yaml:"redis_key"`
		Top        int    `yaml:"top"`
	} `yaml:"leaderboard"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
}

// Default returns the built-in configuration: sample bank, CSV ledger, no external services.
func Default() Config {
	var cfg Config
	cfg.Server.Port = "8080"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Quiz.Bank = questionbank.SampleBankID
	cfg.Quiz.TTL = "10m"
	cfg.Quiz.DefaultDifficulty = difficulty.Default().Name
	rules := scoring.DefaultRules()
	cfg.Scoring.MaxPoints = rules.MaxPoints
	cfg.Scoring.MinPoints = rules.MinPoints
	cfg.Scoring.WrongPenalty = rules.WrongPenalty
	cfg.Leaderboard.Backend = BackendFile
	cfg.Leaderboard.File = "scores.csv"
	cfg.Leaderboard.SQLitePath = "scores.db"
	cfg.Leaderboard.Top = leaderboard.DefaultTop
	return cfg
}

// Load reads YAML config from path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns Default when path does not exist.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Rules returns the scoring section as scoring rules.
func (c Config) Rules() scoring.Rules {
	return scoring.Rules{
		MaxPoints:    c.Scoring.MaxPoints,
		MinPoints:    c.Scoring.MinPoints,
		WrongPenalty: c.Scoring.WrongPenalty,
	}
}

// DefaultProfile resolves quiz.default_difficulty.
func (c Config) DefaultProfile() (difficulty.Profile, error) {
	if c.Quiz.DefaultDifficulty == "" {
		return difficulty.Default(), nil
	}
	return difficulty.Parse(c.Quiz.DefaultDifficulty)
}

func (c Config) Validate() error {
	if err := c.Rules().Validate(); err != nil {
		return err
	}
	if _, err := c.DefaultProfile(); err != nil {
		return err
	}
	if c.Leaderboard.Top <= 0 {
		return fmt.Errorf("leaderboard: top must be positive, got %d", c.Leaderboard.Top)
	}
	switch c.Leaderboard.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Leaderboard.File == "" {
			return errors.New("leaderboard: file backend needs leaderboard.file")
		}
	case BackendSQLite:
		if c.Leaderboard.SQLitePath == "" {
			return errors.New("leaderboard: sqlite backend needs leaderboard.sqlite_path")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("leaderboard: redis backend needs redis.addr")
		}
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return errors.New("leaderboard: postgres backend needs postgres.url")
		}
	default:
		return fmt.Errorf("leaderboard: unknown backend %q", c.Leaderboard.Backend)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log: unknown format %q", c.Log.Format)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
