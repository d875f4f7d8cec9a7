package app_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"quiz-engine/internal/app"
	"quiz-engine/internal/difficulty"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/scoring"
)

func TestNextQuestionIsIdempotent(t *testing.T) {
	session := newTestSession(t, 3, "medio")

	first, ok := session.NextQuestion()
	if !ok {
		t.Fatalf("expected active session")
	}
	for i := 0; i < 5; i++ {
		again, ok := session.NextQuestion()
		if !ok || !again.Equal(first) {
			t.Fatalf("peek %d returned a different question", i)
		}
	}
	if session.Cursor() != 0 {
		t.Fatalf("peeking advanced the cursor to %d", session.Cursor())
	}
}

func TestEmptySessionStartsFinished(t *testing.T) {
	session := app.NewSession(nil, difficulty.Default(), scoring.DefaultRules())
	if session.State() != app.StateFinished {
		t.Fatalf("expected finished, got %s", session.State())
	}
	if _, ok := session.NextQuestion(); ok {
		t.Fatalf("expected no question")
	}
}

func TestSessionTerminates(t *testing.T) {
	session := newTestSession(t, 4, "facile")
	for i := 0; i < 4; i++ {
		q, ok := session.NextQuestion()
		if !ok {
			t.Fatalf("finished early at %d", i)
		}
		if _, err := session.RecordAnswer(q, q.Correct(), time.Second); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	for i := 0; i < 3; i++ {
		if _, ok := session.NextQuestion(); ok {
			t.Fatalf("expected no question after completion")
		}
	}
	if !session.Finished() {
		t.Fatalf("expected finished state")
	}
}

func TestRecordAnswerAfterFinishIsError(t *testing.T) {
	session := newTestSession(t, 1, "facile")
	q, _ := session.NextQuestion()
	if _, err := session.RecordAnswer(q, q.Correct(), time.Second); err != nil {
		t.Fatalf("record: %v", err)
	}

	before := session.Stats()
	_, err := session.RecordAnswer(q, q.Correct(), time.Second)
	if !errors.Is(err, domain.ErrSessionFinished) {
		t.Fatalf("expected ErrSessionFinished, got %v", err)
	}
	after := session.Stats()
	if before.Score != after.Score || before.Counters != after.Counters || session.Cursor() != 1 {
		t.Fatalf("session mutated after finish")
	}
}

func TestRecordAnswerRejectsStaleQuestion(t *testing.T) {
	session := newTestSession(t, 2, "facile")
	first, _ := session.NextQuestion()
	if _, err := session.RecordAnswer(first, first.Correct(), time.Second); err != nil {
		t.Fatalf("record: %v", err)
	}

	_, err := session.RecordAnswer(first, first.Correct(), time.Second)
	if !errors.Is(err, domain.ErrStaleQuestion) {
		t.Fatalf("expected ErrStaleQuestion, got %v", err)
	}
	if session.Cursor() != 1 || session.Counters().Total() != 1 {
		t.Fatalf("stale answer mutated the session")
	}
}

func TestRecordAnswerClassification(t *testing.T) {
	budget := 10 * time.Second
	tests := []struct {
		name        string
		letter      func(q domain.Question) domain.Letter
		elapsed     time.Duration
		wantOutcome domain.Outcome
		wantCorrect bool
		wantTimeout bool
		positive    bool
	}{
		{
			name:        "correct in time",
			letter:      func(q domain.Question) domain.Letter { return q.Correct() },
			elapsed:     time.Second,
			wantOutcome: domain.OutcomeCorrect,
			wantCorrect: true,
			positive:    true,
		},
		{
			name:        "wrong in time",
			letter:      wrongLetter,
			elapsed:     time.Second,
			wantOutcome: domain.OutcomeIncorrect,
		},
		{
			name:        "invalid letter",
			letter:      func(domain.Question) domain.Letter { return "Z" },
			elapsed:     time.Second,
			wantOutcome: domain.OutcomeIncorrect,
		},
		{
			name:        "skip at budget",
			letter:      func(domain.Question) domain.Letter { return domain.NoLetter },
			elapsed:     budget,
			wantOutcome: domain.OutcomeSkipped,
			wantTimeout: true,
		},
		{
			name:        "skip before budget",
			letter:      func(domain.Question) domain.Letter { return domain.NoLetter },
			elapsed:     2 * time.Second,
			wantOutcome: domain.OutcomeSkipped,
		},
		{
			name:        "correct letter after deadline",
			letter:      func(q domain.Question) domain.Letter { return q.Correct() },
			elapsed:     budget + time.Second,
			wantOutcome: domain.OutcomeIncorrect,
			wantCorrect: true,
			wantTimeout: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newTestSession(t, 1, "medio")
			q, _ := session.NextQuestion()
			res, err := session.RecordAnswer(q, tt.letter(q), tt.elapsed)
			if err != nil {
				t.Fatalf("record: %v", err)
			}
			if res.Outcome != tt.wantOutcome {
				t.Fatalf("outcome = %s, want %s", res.Outcome, tt.wantOutcome)
			}
			if res.Correct != tt.wantCorrect || res.TimedOut != tt.wantTimeout {
				t.Fatalf("got correct=%v timedOut=%v", res.Correct, res.TimedOut)
			}
			if tt.positive && res.Points <= 0 {
				t.Fatalf("expected positive points, got %d", res.Points)
			}
			if !tt.positive && res.Points > 0 {
				t.Fatalf("expected non-positive points, got %d", res.Points)
			}
			if session.Score() != res.Points {
				t.Fatalf("score %d does not include points %d", session.Score(), res.Points)
			}
		})
	}
}

func TestSkipNeverBeatsWrongAnswer(t *testing.T) {
	rules := scoring.Rules{MaxPoints: 10, MinPoints: 1, WrongPenalty: -2}
	profile, _ := difficulty.ByName("medio")

	wrong := app.NewSession(fixtureQuestions(1), profile, rules)
	q, _ := wrong.NextQuestion()
	wrongRes, _ := wrong.RecordAnswer(q, wrongLetter(q), time.Second)

	skip := app.NewSession(fixtureQuestions(1), profile, rules)
	q, _ = skip.NextQuestion()
	skipRes, _ := skip.RecordAnswer(q, domain.NoLetter, profile.TimeBudget)

	if skipRes.Points > wrongRes.Points {
		t.Fatalf("skip scored %d above wrong answer %d", skipRes.Points, wrongRes.Points)
	}
	if skip.Score() != -2 {
		t.Fatalf("expected negative running score, got %d", skip.Score())
	}
}

func TestCountersInvariant(t *testing.T) {
	session := newTestSession(t, 6, "difficile")
	letters := []domain.Letter{"", "A", "B", "X", "C", "D"}
	elapsed := []time.Duration{5 * time.Second, time.Second, 7 * time.Second, 2 * time.Second, 0, 4 * time.Second}
	for i := range letters {
		q, ok := session.NextQuestion()
		if !ok {
			t.Fatalf("finished early")
		}
		if _, err := session.RecordAnswer(q, letters[i], elapsed[i]); err != nil {
			t.Fatalf("record: %v", err)
		}
		stats := session.Stats()
		if stats.Counters.Total() != session.Cursor() || len(stats.ResponseTimes) != session.Cursor() {
			t.Fatalf("invariant broken after %d answers: %+v cursor=%d times=%d",
				i+1, stats.Counters, session.Cursor(), len(stats.ResponseTimes))
		}
	}
	stats := session.Stats()
	for _, rt := range stats.ResponseTimes {
		if rt > session.Budget() || rt < 0 {
			t.Fatalf("response time %v outside [0, %v]", rt, session.Budget())
		}
	}
	if stats.Counters.Skipped != 1 {
		t.Fatalf("expected one skip, got %d", stats.Counters.Skipped)
	}
}

func TestMediumScenarioAllCorrect(t *testing.T) {
	profile, ok := difficulty.ByName("medio")
	if !ok {
		t.Fatalf("medio profile missing")
	}
	if profile.QuestionCount != 10 || profile.TimeBudget != 10*time.Second {
		t.Fatalf("unexpected medio profile %+v", profile)
	}

	session := app.NewSession(fixtureQuestions(profile.QuestionCount), profile, scoring.DefaultRules())
	for {
		q, ok := session.NextQuestion()
		if !ok {
			break
		}
		res, err := session.RecordAnswer(q, q.Correct(), time.Second)
		if err != nil {
			t.Fatalf("record: %v", err)
		}
		if res.Points <= 0 {
			t.Fatalf("expected positive points, got %d", res.Points)
		}
	}
	c := session.Counters()
	if c.Correct != 10 || c.Incorrect != 0 || c.Skipped != 0 {
		t.Fatalf("unexpected counters %+v", c)
	}
	if session.Stats().AverageResponseTime() != time.Second {
		t.Fatalf("unexpected average %v", session.Stats().AverageResponseTime())
	}
}

func TestStatsIsSnapshot(t *testing.T) {
	session := newTestSession(t, 2, "facile")
	q, _ := session.NextQuestion()
	_, _ = session.RecordAnswer(q, q.Correct(), time.Second)

	stats := session.Stats()
	stats.ResponseTimes[0] = time.Hour
	if session.Stats().ResponseTimes[0] != time.Second {
		t.Fatalf("stats snapshot aliases session state")
	}
}

func newTestSession(t *testing.T, n int, name string) *app.Session {
	t.Helper()
	profile, ok := difficulty.ByName(name)
	if !ok {
		t.Fatalf("unknown difficulty %q", name)
	}
	return app.NewSession(fixtureQuestions(n), profile, scoring.DefaultRules())
}

func fixtureQuestions(n int) []domain.Question {
	qs := make([]domain.Question, n)
	for i := range qs {
		qs[i] = domain.MustQuestion(fmt.Sprintf("Question %d?", i+1), map[domain.Letter]string{
			domain.LetterA: "alpha",
			domain.LetterB: "beta",
			domain.LetterC: "gamma",
			domain.LetterD: "delta",
		}, domain.Letters[i%len(domain.Letters)])
	}
	return qs
}

func wrongLetter(q domain.Question) domain.Letter {
	for _, l := range domain.Letters {
		if l != q.Correct() {
			return l
		}
	}
	return domain.NoLetter
}
