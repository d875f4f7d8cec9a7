package http

import (
	"encoding/json"
	"time"

	"quiz-engine/internal/app"
	"quiz-engine/internal/difficulty"
	"quiz-engine/internal/domain"
)

// Inbound message types.
const (
	msgStart       = "start"
	msgAnswer      = "answer"
	msgSkip        = "skip"
	msgSave        = "save"
	msgLeaderboard = "leaderboard"
)

// Outbound message types.
const (
	msgWelcome      = "welcome"
	msgQuestion     = "question"
	msgTick         = "tick"
	msgAnswerResult = "answerResult"
	msgSummary      = "summary"
	msgSaved        = "saved"
	msgError        = "error"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`

	malformed bool
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type startPayload struct {
	Difficulty string `json:"difficulty"`
}

type answerPayload struct {
	Letter string `json:"letter"`
}

type savePayload struct {
	Initials string `json:"initials"`
}

type leaderboardRequest struct {
	Limit int `json:"limit"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type difficultyView struct {
	Level         int    `json:"level"`
	Name          string `json:"name"`
	QuestionCount int    `json:"questionCount"`
	TimeBudgetMs  int64  `json:"timeBudgetMs"`
}

type welcomePayload struct {
	Bank         string           `json:"bank"`
	Difficulties []difficultyView `json:"difficulties"`
}

type questionPayload struct {
	Index    int               `json:"index"`
	Total    int               `json:"total"`
	Text     string            `json:"text"`
	Options  map[string]string `json:"options"`
	BudgetMs int64             `json:"budgetMs"`
}

type tickPayload struct {
	RemainingMs int64  `json:"remainingMs"`
	Band        string `json:"band"`
}

type answerResultPayload struct {
	Points        int    `json:"points"`
	Correct       bool   `json:"correct"`
	TimedOut      bool   `json:"timedOut"`
	Outcome       string `json:"outcome"`
	CorrectLetter string `json:"correctLetter"`
	ElapsedMs     int64  `json:"elapsedMs"`
	Score         int    `json:"score"`
}

type summaryPayload struct {
	Score             int             `json:"score"`
	Counters          domain.Counters `json:"counters"`
	Total             int             `json:"total"`
	AverageResponseMs int64           `json:"averageResponseMs"`
}

type entryView struct {
	Initials          string    `json:"initials"`
	Score             int       `json:"score"`
	AverageResponseMs int64     `json:"averageResponseMs"`
	Timestamp         time.Time `json:"timestamp"`
}

type leaderboardPayload struct {
	Entries []entryView `json:"entries"`
}

func difficultyViews() []difficultyView {
	all := difficulty.All()
	out := make([]difficultyView, 0, len(all))
	for _, p := range all {
		out = append(out, difficultyView{
			Level:         int(p.Level),
			Name:          p.Name,
			QuestionCount: p.QuestionCount,
			TimeBudgetMs:  p.TimeBudget.Milliseconds(),
		})
	}
	return out
}

func newQuestionPayload(session *app.Session, q domain.Question) questionPayload {
	opts := make(map[string]string, len(domain.Letters))
	for _, l := range domain.Letters {
		opts[string(l)] = q.Option(l)
	}
	return questionPayload{
		Index:    session.Cursor() + 1,
		Total:    session.Len(),
		Text:     q.Text(),
		Options:  opts,
		BudgetMs: session.Budget().Milliseconds(),
	}
}

func newSummaryPayload(stats domain.Stats) summaryPayload {
	return summaryPayload{
		Score:             stats.Score,
		Counters:          stats.Counters,
		Total:             stats.Total,
		AverageResponseMs: stats.AverageResponseTime().Milliseconds(),
	}
}

func newEntryView(e domain.LeaderboardEntry) entryView {
	return entryView{
		Initials:          e.Initials,
		Score:             e.Score,
		AverageResponseMs: e.AverageResponseTime.Milliseconds(),
		Timestamp:         e.Timestamp,
	}
}

func newLeaderboardPayload(entries []domain.LeaderboardEntry) leaderboardPayload {
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newEntryView(e))
	}
	return leaderboardPayload{Entries: views}
}
