// Package console is the blocking terminal front-end: one player, one
// session at a time, answers typed as letters against a per-question deadline.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"quiz-engine/internal/app"
	"quiz-engine/internal/difficulty"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/leaderboard"
	"quiz-engine/internal/timing"
)

// MaxAnswerAttempts bounds re-prompts for a letter outside A-D. The last
// invalid input is recorded as given and scores as incorrect.
const MaxAnswerAttempts = 3

// MaxRestartAttempts bounds the play-again prompt.
const MaxRestartAttempts = 3

// Game runs quiz sessions over a line-oriented reader and writer.
type Game struct {
	service *app.QuizService
	bankID  string
	lines   <-chan string
	out     io.Writer
	clock   timing.Clock
	after   func(time.Duration) <-chan time.Time
	styles  Styles
	color   bool
	top     int
	logger  *slog.Logger

	// late is set when a question times out; lines typed after that belong
	// to no prompt and are dropped before the next one is shown.
	late bool
}

type Option func(*Game)

// WithClock overrides the clock used for per-question stopwatches.
func WithClock(c timing.Clock) Option {
	return func(g *Game) { g.clock = c }
}

// WithAfter overrides the deadline timer source.
func WithAfter(after func(time.Duration) <-chan time.Time) Option {
	return func(g *Game) { g.after = after }
}

// WithColor enables lipgloss styling of the output.
func WithColor(enabled bool) Option {
	return func(g *Game) { g.color = enabled }
}

// WithTop sets how many leaderboard rows are shown after a session.
func WithTop(n int) Option {
	return func(g *Game) {
		if n > 0 {
			g.top = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Game) { g.logger = logger }
}

func New(service *app.QuizService, bankID string, in io.Reader, out io.Writer, opts ...Option) *Game {
	g := &Game{
		service: service,
		bankID:  bankID,
		lines:   pump(in),
		out:     out,
		clock:   timing.SystemClock{},
		after:   time.After,
		styles:  DefaultStyles(),
		top:     leaderboard.DefaultTop,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run plays sessions until the player declines a restart or input ends.
func (g *Game) Run(ctx context.Context) error {
	g.println(g.paint(g.styles.Banner, g.paint(g.styles.Title, "QUIZ")))
	for {
		err := g.round(ctx)
		if errors.Is(err, errInputClosed) {
			g.println("")
			g.println("Input closed, bye.")
			return nil
		}
		if err != nil {
			return err
		}
		again, err := g.askRestart(ctx)
		if errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		if !again {
			g.println("Thanks for playing!")
			return nil
		}
	}
}

func (g *Game) round(ctx context.Context) error {
	profile, err := g.chooseDifficulty(ctx)
	if err != nil {
		return err
	}
	session, err := g.service.StartSession(ctx, g.bankID, profile)
	if err != nil {
		return err
	}
	g.println("")
	g.printf("%s: %d questions, %s per question.\n", profile.Name, session.Len(), profile.TimeBudget)

	if err := g.play(ctx, session); err != nil {
		return err
	}
	g.recap(session.Stats())
	if err := g.saveScore(ctx, session); err != nil {
		return err
	}
	return g.showLeaderboard(ctx)
}

func (g *Game) chooseDifficulty(ctx context.Context) (difficulty.Profile, error) {
	g.println("")
	g.println(g.paint(g.styles.Heading, "Choose a difficulty:"))
	for _, p := range difficulty.All() {
		g.printf("  %d) %-10s %2d questions, %s each\n", p.Level, p.Name, p.QuestionCount, p.TimeBudget)
	}

	var readErr error
	attempt := 0
	profile, chosen := difficulty.Choose(func() (string, bool) {
		if attempt > 0 {
			g.println(g.paint(g.styles.Wrong, "Invalid choice."))
		}
		attempt++
		g.print(g.paint(g.styles.Prompt, "Difficulty [1-3]: "))
		line, _, err := g.next(ctx, nil)
		if err != nil {
			readErr = err
			return "", false
		}
		return line, true
	}, difficulty.MaxSelectionAttempts)
	if readErr != nil {
		return difficulty.Profile{}, readErr
	}
	if !chosen {
		g.println(g.paint(g.styles.Hint, fmt.Sprintf("No valid choice, playing %s.", profile.Name)))
	}
	return profile, nil
}

func (g *Game) play(ctx context.Context, session *app.Session) error {
	policy := timing.NewPolicy(session.Budget(), g.clock)
	for {
		q, ok := session.NextQuestion()
		if !ok {
			return nil
		}
		g.dropLateInput()
		g.println("")
		g.println(g.paint(g.styles.Heading, fmt.Sprintf("Question %d/%d", session.Cursor()+1, session.Len())))
		g.println(q.Text())
		for _, l := range domain.Letters {
			g.printf("  %s) %s\n", l, q.Option(l))
		}

		sw := policy.Start()
		letter, timedOut, err := g.readAnswer(ctx, sw)
		if err != nil {
			return err
		}
		elapsed := sw.Elapsed()
		if timedOut && elapsed < sw.Budget() {
			elapsed = sw.Budget()
		}
		res, err := session.RecordAnswer(q, letter, elapsed)
		if err != nil {
			return err
		}
		g.feedback(q, res)
	}
}

// readAnswer reports timedOut when the deadline fires before a usable answer.
func (g *Game) readAnswer(ctx context.Context, sw timing.Stopwatch) (domain.Letter, bool, error) {
	deadline := g.after(sw.Remaining())
	for attempt := 1; ; attempt++ {
		left := g.paint(g.styles.band(sw.Band()), fmt.Sprintf("%ds left", int(sw.Remaining().Round(time.Second)/time.Second)))
		g.print(g.paint(g.styles.Prompt, "Answer A-D, blank to skip") + " (" + left + "): ")

		line, status, err := g.next(ctx, deadline)
		if err != nil {
			return domain.NoLetter, false, err
		}
		if status == readTimeout {
			g.late = true
			g.println("")
			return domain.NoLetter, true, nil
		}

		raw := strings.TrimSpace(line)
		if raw == "" {
			return domain.NoLetter, false, nil
		}
		if l, ok := domain.ParseLetter(raw); ok || attempt >= MaxAnswerAttempts {
			return l, false, nil
		}
		g.println(g.paint(g.styles.Hint, "Please type A, B, C or D."))
	}
}

func (g *Game) feedback(q domain.Question, res domain.AnswerResult) {
	answer := fmt.Sprintf("The answer was %s) %s.", q.Correct(), q.Option(q.Correct()))
	points := fmt.Sprintf("%+d points", res.Points)
	switch {
	case res.TimedOut:
		g.printf("%s %s %s\n", g.paint(g.styles.Wrong, "Time is up!"), answer, points)
	case res.Outcome == domain.OutcomeCorrect:
		g.printf("%s %s (%.1fs)\n", g.paint(g.styles.Correct, "Correct!"), points, res.Elapsed.Seconds())
	case res.Outcome == domain.OutcomeSkipped:
		g.printf("%s %s %s\n", g.paint(g.styles.Hint, "Skipped."), answer, points)
	default:
		g.printf("%s %s %s (%.1fs)\n", g.paint(g.styles.Wrong, "Wrong!"), answer, points, res.Elapsed.Seconds())
	}
}

func (g *Game) recap(stats domain.Stats) {
	g.println("")
	g.println(g.paint(g.styles.Title, "Quiz complete"))
	g.printf("Correct: %d  Wrong: %d  Skipped: %d\n", stats.Counters.Correct, stats.Counters.Incorrect, stats.Counters.Skipped)
	g.printf("Average response time: %.2fs\n", stats.AverageResponseTime().Seconds())
	g.printf("Final score: %s\n", g.paint(g.styles.Heading, fmt.Sprint(stats.Score)))
}

func (g *Game) saveScore(ctx context.Context, session *app.Session) error {
	g.dropLateInput()
	for {
		g.print(g.paint(g.styles.Prompt, "Your initials (3 letters, blank to skip): "))
		line, _, err := g.next(ctx, nil)
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			return nil
		}
		entry, err := g.service.SaveResult(ctx, session, line)
		switch {
		case errors.Is(err, domain.ErrInvalidInitials):
			g.println(g.paint(g.styles.Wrong, "Initials must be exactly three letters."))
			continue
		case err != nil:
			g.logger.Error("save score", "error", err)
			g.println(g.paint(g.styles.Wrong, "Could not save your score: "+err.Error()))
			return nil
		}
		g.printf("Score saved for %s.\n", entry.Initials)
		return nil
	}
}

func (g *Game) showLeaderboard(ctx context.Context) error {
	entries, err := g.service.TopScores(ctx, g.top)
	if err != nil {
		g.logger.Error("read leaderboard", "error", err)
		g.println(g.paint(g.styles.Wrong, "Leaderboard unavailable."))
		return nil
	}
	g.println("")
	g.println(g.paint(g.styles.Title, fmt.Sprintf("Top %d", g.top)))
	if len(entries) == 0 {
		g.println(g.paint(g.styles.Hint, "No scores yet."))
		return nil
	}
	g.print(FormatLeaderboard(entries))
	return nil
}

// FormatLeaderboard renders ranked entries as a fixed-width table.
func FormatLeaderboard(entries []domain.LeaderboardEntry) string {
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%2d. %-3s %5d pts  %6.2fs  %s\n",
			i+1, e.Initials, e.Score, e.AverageResponseTime.Seconds(), e.Timestamp.Local().Format("2006-01-02 15:04"))
	}
	return b.String()
}

func (g *Game) askRestart(ctx context.Context) (bool, error) {
	for i := 0; i < MaxRestartAttempts; i++ {
		g.print(g.paint(g.styles.Prompt, "Play again? [y/n]: "))
		line, _, err := g.next(ctx, nil)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes", "s", "si":
			return true, nil
		case "n", "no":
			return false, nil
		}
		g.println(g.paint(g.styles.Hint, "Please answer y or n."))
	}
	return false, nil
}

func (g *Game) paint(st lipgloss.Style, s string) string {
	if !g.color {
		return s
	}
	return st.Render(s)
}

func (g *Game) print(s string) {
	fmt.Fprint(g.out, s)
}

func (g *Game) println(s string) {
	fmt.Fprintln(g.out, s)
}

func (g *Game) printf(format string, args ...any) {
	fmt.Fprintf(g.out, format, args...)
}
