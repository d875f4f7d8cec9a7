package console

import (
	"bytes"
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
	"quiz-engine/internal/timing"
)

var t0 = time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)

func newTestService(bank []domain.Question) (*app.QuizService, *memory.LeaderboardStore) {
	repo := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(map[string][]domain.Question{"default": bank}), time.Minute)
	board := memory.NewLeaderboardStore()
	service := app.NewQuizService(repo, board,
		app.WithClock(func() time.Time { return t0 }),
		app.WithRand(rand.New(rand.NewSource(1))),
	)
	return service, board
}

func newTestGame(t *testing.T, input string, opts ...Option) (*Game, *bytes.Buffer, *memory.LeaderboardStore) {
	t.Helper()
	bank := []domain.Question{
		domain.MustQuestion("What is 2 + 2?", map[domain.Letter]string{
			domain.LetterA: "3", domain.LetterB: "4", domain.LetterC: "5", domain.LetterD: "22",
		}, domain.LetterB),
	}
	service, board := newTestService(bank)

	var out bytes.Buffer
	base := []Option{
		WithClock(timing.ClockFunc(func() time.Time { return t0 })),
		WithAfter(func(time.Duration) <-chan time.Time { return nil }),
	}
	g := New(service, "default", strings.NewReader(input), &out, append(base, opts...)...)
	return g, &out, board
}

type scriptStep struct {
	prompt string
	reply  string
}

// scriptedTerminal answers each expected prompt once it has been written,
// so lines only exist once the game has asked for them.
type scriptedTerminal struct {
	bytes.Buffer
	lines chan string
	steps []scriptStep
}

func (s *scriptedTerminal) Write(p []byte) (int, error) {
	if len(s.steps) > 0 && strings.Contains(string(p), s.steps[0].prompt) {
		s.lines <- s.steps[0].reply
		s.steps = s.steps[1:]
	}
	return s.Buffer.Write(p)
}

func newScriptedGame(t *testing.T, bank []domain.Question, after func(time.Duration) <-chan time.Time, steps ...scriptStep) (*Game, *scriptedTerminal, *memory.LeaderboardStore) {
	t.Helper()
	service, board := newTestService(bank)
	term := &scriptedTerminal{lines: make(chan string, 8), steps: steps}
	g := New(service, "default", strings.NewReader(""), term,
		WithClock(timing.ClockFunc(func() time.Time { return t0 })),
		WithAfter(after),
	)
	g.lines = term.lines
	return g, term, board
}

// lateThenQuiet types late on the first question, then never times out.
func lateThenQuiet(lines chan<- string, late string) func(time.Duration) <-chan time.Time {
	calls := 0
	return func(time.Duration) <-chan time.Time {
		calls++
		if calls > 1 {
			return nil
		}
		lines <- late
		return firedAfter(0)
	}
}

func firedAfter(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- t0
	return ch
}

func TestGameCorrectAnswerIsSaved(t *testing.T) {
	g, out, board := newTestGame(t, "1\nB\nabc\nn\n")

	require.NoError(t, g.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "facile: 1 questions")
	assert.Contains(t, text, "Correct! +10 points")
	assert.Contains(t, text, "Final score: 10")
	assert.Contains(t, text, "Score saved for ABC.")
	assert.Contains(t, text, " 1. ABC    10 pts")
	assert.Contains(t, text, "Thanks for playing!")
	assert.Equal(t, 1, board.Len())
}

func TestGameDeadlineRecordsSkip(t *testing.T) {
	bank := []domain.Question{
		domain.MustQuestion("What is 2 + 2?", map[domain.Letter]string{
			domain.LetterA: "3", domain.LetterB: "4", domain.LetterC: "5", domain.LetterD: "22",
		}, domain.LetterB),
	}
	g, term, board := newScriptedGame(t, bank, firedAfter,
		scriptStep{"Difficulty [1-3]", "2"},
		scriptStep{"Your initials", ""},
		scriptStep{"Play again", "n"},
	)

	require.NoError(t, g.Run(context.Background()))

	text := term.String()
	assert.Contains(t, text, "Time is up! The answer was B) 4. +0 points")
	assert.Contains(t, text, "Correct: 0  Wrong: 0  Skipped: 1")
	assert.Contains(t, text, "Average response time: 10.00s")
	assert.Contains(t, text, "No scores yet.")
	assert.Equal(t, 0, board.Len())
}

func TestGameLateAnswerIsNotCarriedToNextQuestion(t *testing.T) {
	options := map[domain.Letter]string{
		domain.LetterA: "red", domain.LetterB: "green", domain.LetterC: "blue", domain.LetterD: "black",
	}
	bank := []domain.Question{
		domain.MustQuestion("Colour of a clear sky?", options, domain.LetterC),
		domain.MustQuestion("Colour of the deep sea?", options, domain.LetterC),
	}
	g, term, _ := newScriptedGame(t, bank, nil,
		scriptStep{"Difficulty [1-3]", "1"},
		scriptStep{"Question 2/2", "D"},
		scriptStep{"Your initials", ""},
		scriptStep{"Play again", "n"},
	)
	g.after = lateThenQuiet(term.lines, "C")

	require.NoError(t, g.Run(context.Background()))

	text := term.String()
	assert.Contains(t, text, "Time is up!")
	assert.Contains(t, text, "Correct: 0  Wrong: 1  Skipped: 1")
	assert.Contains(t, text, "Final score: 0")
}

func TestGameLateInputIsNotTakenAsInitials(t *testing.T) {
	bank := []domain.Question{
		domain.MustQuestion("What is 2 + 2?", map[domain.Letter]string{
			domain.LetterA: "3", domain.LetterB: "4", domain.LetterC: "5", domain.LetterD: "22",
		}, domain.LetterB),
	}
	g, term, board := newScriptedGame(t, bank, nil,
		scriptStep{"Difficulty [1-3]", "1"},
		scriptStep{"Your initials", ""},
		scriptStep{"Play again", "n"},
	)
	g.after = lateThenQuiet(term.lines, "ZZZ")

	require.NoError(t, g.Run(context.Background()))

	assert.NotContains(t, term.String(), "Score saved")
	assert.Contains(t, term.String(), "No scores yet.")
	assert.Equal(t, 0, board.Len())
}

func TestGameBlankLineSkips(t *testing.T) {
	g, out, _ := newTestGame(t, "3\n\n\nn\n")

	require.NoError(t, g.Run(context.Background()))

	assert.Contains(t, out.String(), "Skipped. The answer was B) 4.")
	assert.Contains(t, out.String(), "Skipped: 1")
}

func TestGameInvalidLettersAreRecordedAfterRetries(t *testing.T) {
	g, out, _ := newTestGame(t, "1\nZ\nQ\nx\n\nn\n")

	require.NoError(t, g.Run(context.Background()))

	text := out.String()
	assert.Equal(t, 2, strings.Count(text, "Please type A, B, C or D."))
	assert.Contains(t, text, "Wrong! The answer was B) 4.")
	assert.Contains(t, text, "Correct: 0  Wrong: 1  Skipped: 0")
}

func TestGameDifficultyFallsBackToDefault(t *testing.T) {
	g, out, _ := newTestGame(t, "x\n9\nimpossibile\nb\n\nn\n")

	require.NoError(t, g.Run(context.Background()))

	text := out.String()
	assert.Equal(t, 2, strings.Count(text, "Invalid choice."))
	assert.Contains(t, text, "No valid choice, playing medio.")
	assert.Contains(t, text, "medio: 1 questions, 10s per question.")
	assert.Contains(t, text, "Correct!")
}

func TestGameInitialsRetry(t *testing.T) {
	g, out, board := newTestGame(t, "medio\nB\nab\na1c\nxyz\nno\n")

	require.NoError(t, g.Run(context.Background()))

	text := out.String()
	assert.Equal(t, 2, strings.Count(text, "Initials must be exactly three letters."))
	assert.Contains(t, text, "Score saved for XYZ.")
	assert.Equal(t, 1, board.Len())
}

func TestGameRestart(t *testing.T) {
	g, out, _ := newTestGame(t, "1\nB\n\ny\n1\nA\n\nmaybe\nn\n")

	require.NoError(t, g.Run(context.Background()))

	text := out.String()
	assert.Equal(t, 2, strings.Count(text, "Quiz complete"))
	assert.Contains(t, text, "Please answer y or n.")
	assert.Contains(t, text, "Wrong! The answer was B) 4.")
}

func TestGameInputClosedMidSession(t *testing.T) {
	g, out, board := newTestGame(t, "1\n")

	require.NoError(t, g.Run(context.Background()))

	assert.Contains(t, out.String(), "Input closed, bye.")
	assert.NotContains(t, out.String(), "Quiz complete")
	assert.Equal(t, 0, board.Len())
}

func TestGameCanceledContext(t *testing.T) {
	g, _, _ := newTestGame(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.Run(ctx)
	// A closed input and a canceled context may both be ready; either ends the game.
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestFormatLeaderboard(t *testing.T) {
	rows := FormatLeaderboard([]domain.LeaderboardEntry{
		{Initials: "ABC", Score: 25, AverageResponseTime: 1200 * time.Millisecond, Timestamp: t0},
		{Initials: "XYZ", Score: 7, AverageResponseTime: 3 * time.Second, Timestamp: t0},
	})
	lines := strings.Split(strings.TrimRight(rows, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], " 1. ABC    25 pts    1.20s"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], " 2. XYZ     7 pts    3.00s"), lines[1])
}
