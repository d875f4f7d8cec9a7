// Package questionbank decodes question banks into validated domain questions.
// Banks use the records {"domanda", "opzioni": {A..D}, "corretta"} in JSON or
// the CSV header domanda,A,B,C,D,corretta. Invalid records are dropped.
package questionbank

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"quiz-engine/internal/domain"
)

// Record is the stored shape of one question.
type Record struct {
	Text    string            `json:"domanda"`
	Options map[string]string `json:"opzioni"`
	Correct string            `json:"corretta"`
}

// Question validates the record.
func (r Record) Question() (domain.Question, error) {
	opts := make(map[domain.Letter]string, len(r.Options))
	for k, v := range r.Options {
		opts[domain.Letter(k)] = strings.TrimSpace(v)
	}
	return domain.NewQuestion(strings.TrimSpace(r.Text), opts, domain.Letter(strings.ToUpper(strings.TrimSpace(r.Correct))))
}

// FromQuestion converts a question back to its stored shape.
func FromQuestion(q domain.Question) Record {
	opts := make(map[string]string, len(domain.Letters))
	for _, l := range domain.Letters {
		opts[string(l)] = q.Option(l)
	}
	return Record{Text: q.Text(), Options: opts, Correct: string(q.Correct())}
}

// Questions validates records, dropping the invalid ones. It fails only when
// nothing valid remains.
func Questions(records []Record) ([]domain.Question, int, error) {
	out := make([]domain.Question, 0, len(records))
	dropped := 0
	for _, rec := range records {
		q, err := rec.Question()
		if err != nil {
			dropped++
			continue
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, dropped, domain.ErrNoValidQuestions
	}
	return out, dropped, nil
}

// DecodeJSON parses a JSON array of records. Elements that are not objects of
// the expected shape count as invalid instead of failing the whole bank.
func DecodeJSON(data []byte) ([]domain.Question, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse question bank json: %w", err)
	}
	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		var rec Record
		if err := json.Unmarshal(item, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	qs, _, err := Questions(records)
	return qs, err
}

// EncodeJSON renders questions as a JSON array of records.
func EncodeJSON(qs []domain.Question) ([]byte, error) {
	records := make([]Record, len(qs))
	for i, q := range qs {
		records[i] = FromQuestion(q)
	}
	return json.Marshal(records)
}

// DecodeCSV parses a CSV bank with header domanda,A,B,C,D,corretta (any order).
func DecodeCSV(r io.Reader) ([]domain.Question, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read question bank csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	field := func(row []string, name string) (string, bool) {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return row[i], true
	}

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, fmt.Errorf("read question bank csv: %w", err)
		}
		rec := Record{Options: make(map[string]string, len(domain.Letters))}
		rec.Text, _ = field(row, "domanda")
		rec.Correct, _ = field(row, "corretta")
		for _, l := range domain.Letters {
			if v, ok := field(row, string(l)); ok {
				rec.Options[string(l)] = v
			}
		}
		records = append(records, rec)
	}
	qs, _, err := Questions(records)
	return qs, err
}

// DecodeCSVBytes is DecodeCSV over an in-memory buffer.
func DecodeCSVBytes(data []byte) ([]domain.Question, error) {
	return DecodeCSV(bytes.NewReader(data))
}
