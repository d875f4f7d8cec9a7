package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/questionbank"
)

// QuestionLoader reads banks from <dir>/<bankID>.json or <dir>/<bankID>.csv.
type QuestionLoader struct {
	dir string
}

func NewQuestionLoader(dir string) *QuestionLoader {
	return &QuestionLoader{dir: dir}
}

func (l *QuestionLoader) LoadQuestions(_ context.Context, bankID string) ([]domain.Question, error) {
	if bankID == "" || strings.ContainsAny(bankID, `/\`) || strings.Contains(bankID, "..") {
		return nil, fmt.Errorf("bank %q: %w", bankID, domain.ErrQuestionBankNotFound)
	}
	for _, ext := range []string{".json", ".csv"} {
		path := filepath.Join(l.dir, bankID+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read bank %s: %w", path, err)
		}
		qs, err := decode(ext, data)
		if err != nil {
			return nil, fmt.Errorf("bank %s: %w", path, err)
		}
		return qs, nil
	}
	return nil, fmt.Errorf("bank %q in %s: %w", bankID, l.dir, domain.ErrQuestionBankNotFound)
}

// LoadFile decodes a single bank file by extension.
func LoadFile(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(strings.ToLower(filepath.Ext(path)), data)
}

func decode(ext string, data []byte) ([]domain.Question, error) {
	switch ext {
	case ".json":
		return questionbank.DecodeJSON(data)
	case ".csv":
		return questionbank.DecodeCSVBytes(data)
	}
	return nil, fmt.Errorf("unsupported bank format %q, use .json or .csv", ext)
}
