package cli

import (
	"fmt"
	"log/slog"
	"os"

	"quiz-engine/internal/infra/file"
	"quiz-engine/internal/infra/postgres"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewImportCmd loads a JSON or CSV bank file into Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <bank-id> <file>",
		Short: "Import a question bank file (.json or .csv) into Postgres",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, os.Stderr, slog.LevelDebug)
			ctx := cmd.Context()

			questions, err := file.LoadFile(args[1])
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
				return err
			}
			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			if err := postgres.NewQuestionLoader(pool).SaveQuestions(ctx, args[0], questions); err != nil {
				return err
			}
			logger.Info("question bank imported", "bank", args[0], "questions", len(questions))
			return nil
		},
	}
}
