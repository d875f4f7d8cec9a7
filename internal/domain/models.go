package domain

import "time"

// Outcome classifies a recorded answer. Exactly one counter moves per answer.
type Outcome int

const (
	OutcomeCorrect Outcome = iota
	OutcomeIncorrect
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	case OutcomeSkipped:
		return "skipped"
	}
	return "unknown"
}

// Counters tallies answers per outcome.
type Counters struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Skipped   int `json:"skipped"`
}

// Total is the number of recorded answers.
func (c Counters) Total() int {
	return c.Correct + c.Incorrect + c.Skipped
}

// AnswerResult summarizes the scoring of one recorded answer.
type AnswerResult struct {
	Points   int           `json:"points"`
	Correct  bool          `json:"correct"`
	TimedOut bool          `json:"timedOut"`
	Outcome  Outcome       `json:"-"`
	Elapsed  time.Duration `json:"-"`
}

// Stats is a read-only snapshot of a session's progress.
type Stats struct {
	Score         int             `json:"score"`
	Counters      Counters        `json:"counters"`
	ResponseTimes []time.Duration `json:"-"`
	Total         int             `json:"total"`
}

// AverageResponseTime is the mean of the recorded response times, or zero.
func (s Stats) AverageResponseTime() time.Duration {
	if len(s.ResponseTimes) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range s.ResponseTimes {
		sum += d
	}
	return sum / time.Duration(len(s.ResponseTimes))
}

// LeaderboardEntry is one persisted play-through. Entries are never edited.
type LeaderboardEntry struct {
	Initials            string        `json:"initials"`
	Score               int           `json:"score"`
	AverageResponseTime time.Duration `json:"averageResponseTime"`
	Timestamp           time.Time     `json:"timestamp"`
}
