package postgres

import (
	"context"
	"errors"
	"fmt"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/questionbank"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader loads question bank JSONB from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context, bankID string) ([]domain.Question, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_banks WHERE id=$1`, bankID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("bank %q: %w", bankID, domain.ErrQuestionBankNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	qs, err := questionbank.DecodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("bank %q: %w", bankID, err)
	}
	return qs, nil
}

// SaveQuestions upserts a bank, replacing any previous content.
func (l *QuestionLoader) SaveQuestions(ctx context.Context, bankID string, qs []domain.Question) error {
	data, err := questionbank.EncodeJSON(qs)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO question_banks (id, data) VALUES ($1, $2::jsonb)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		bankID, string(data))
	if err != nil {
		return fmt.Errorf("save question bank: %w", err)
	}
	return nil
}
