package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"quiz-engine/internal/app"
	"quiz-engine/internal/difficulty"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/leaderboard"
	"quiz-engine/internal/timing"

	"github.com/gorilla/websocket"
)

// viewState is the screen a connection is on.
type viewState int

const (
	viewHome viewState = iota
	viewQuestion
	viewRecap
)

func (v viewState) String() string {
	switch v {
	case viewHome:
		return "home"
	case viewQuestion:
		return "question"
	case viewRecap:
		return "recap"
	}
	return "unknown"
}

type WSHandler struct {
	service      *app.QuizService
	bankID       string
	upgrader     websocket.Upgrader
	clock        timing.Clock
	tickInterval time.Duration
	newTimer     func(time.Duration) *time.Timer
	logger       *slog.Logger
}

type WSOption func(*WSHandler)

// WithClock sets the clock question stopwatches read.
func WithClock(c timing.Clock) WSOption {
	return func(h *WSHandler) { h.clock = c }
}

// WithTickInterval sets how often countdown ticks are pushed.
func WithTickInterval(d time.Duration) WSOption {
	return func(h *WSHandler) { h.tickInterval = d }
}

// WithTimer overrides the per-question deadline timer.
func WithTimer(newTimer func(time.Duration) *time.Timer) WSOption {
	return func(h *WSHandler) { h.newTimer = newTimer }
}

func WithLogger(logger *slog.Logger) WSOption {
	return func(h *WSHandler) { h.logger = logger }
}

func NewWSHandler(service *app.QuizService, bankID string, opts ...WSOption) *WSHandler {
	h := &WSHandler{
		service: service,
		bankID:  bankID,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clock:        timing.SystemClock{},
		tickInterval: time.Second,
		newTimer:     time.NewTimer,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeWS upgrades the request and runs one player's sessions over the
// connection. The session is owned by this goroutine; the reader and writer
// goroutines only move messages.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	bankID := r.URL.Query().Get("bank")
	if bankID == "" {
		bankID = h.bankID
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		failed := false
		for msg := range send {
			if failed {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", "error", err)
				failed = true
				cancel()
			}
		}
	}()

	inbound := make(chan inboundMessage)
	go func() {
		defer close(inbound)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg inboundMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				msg = inboundMessage{malformed: true}
			}
			select {
			case inbound <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	c := &wsConn{h: h, bankID: bankID, send: send}
	h.logger.Info("ws connected", "bank", bankID, "remote_addr", r.RemoteAddr)
	c.emit(msgWelcome, welcomePayload{Bank: bankID, Difficulties: difficultyViews()})

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case msg, ok := <-inbound:
			if !ok {
				break loop
			}
			c.handle(ctx, msg)
		case <-c.tickC():
			c.tick()
		case <-c.deadlineC():
			c.record(domain.NoLetter, true)
		}
	}

	c.stopTimers()
	cancel()
	close(send)
	<-writerDone
	h.logger.Info("ws disconnected", "bank", bankID, "view", c.view.String())
}

// wsConn is the per-connection state, touched only by the ServeWS loop.
type wsConn struct {
	h      *WSHandler
	bankID string
	send   chan<- outboundMessage[any]

	view      viewState
	session   *app.Session
	current   domain.Question
	stopwatch timing.Stopwatch
	saved     bool

	ticker   *time.Ticker
	deadline *time.Timer
}

func (c *wsConn) handle(ctx context.Context, msg inboundMessage) {
	if msg.malformed {
		c.fail("bad_message", "message is not valid JSON")
		return
	}
	switch msg.Type {
	case msgStart:
		var p startPayload
		if !c.decode(msg, &p) {
			return
		}
		c.start(ctx, p.Difficulty)
	case msgAnswer:
		var p answerPayload
		if !c.decode(msg, &p) {
			return
		}
		raw := strings.TrimSpace(p.Letter)
		if raw == "" {
			c.record(domain.NoLetter, false)
			return
		}
		letter, ok := domain.ParseLetter(raw)
		if !ok {
			c.fail("invalid_letter", "answer must be one of A, B, C, D")
			return
		}
		c.record(letter, false)
	case msgSkip:
		c.record(domain.NoLetter, false)
	case msgSave:
		var p savePayload
		if !c.decode(msg, &p) {
			return
		}
		c.save(ctx, p.Initials)
	case msgLeaderboard:
		var p leaderboardRequest
		if !c.decode(msg, &p) {
			return
		}
		c.leaderboard(ctx, p.Limit)
	default:
		c.fail("unsupported", "unsupported message type")
	}
}

// decode accepts a missing payload as the zero value.
func (c *wsConn) decode(msg inboundMessage, v any) bool {
	if len(msg.Payload) == 0 || string(msg.Payload) == "null" {
		return true
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		c.fail("bad_payload", "invalid "+msg.Type+" payload")
		return false
	}
	return true
}

func (c *wsConn) start(ctx context.Context, name string) {
	if c.view == viewQuestion {
		c.fail("session_active", "a session is already in progress")
		return
	}
	profile := difficulty.Default()
	if strings.TrimSpace(name) != "" {
		p, err := difficulty.Parse(name)
		if err != nil {
			c.fail("unknown_difficulty", err.Error())
			return
		}
		profile = p
	}
	session, err := c.h.service.StartSession(ctx, c.bankID, profile)
	if err != nil {
		c.h.logger.Error("start session", "bank", c.bankID, "error", err)
		c.fail("start_failed", err.Error())
		return
	}
	c.session = session
	c.saved = false
	c.ask()
}

func (c *wsConn) ask() {
	q, ok := c.session.NextQuestion()
	if !ok {
		c.finish()
		return
	}
	c.current = q
	c.view = viewQuestion
	c.stopwatch = timing.NewPolicy(c.session.Budget(), c.h.clock).Start()
	c.armTimers()
	c.emit(msgQuestion, newQuestionPayload(c.session, q))
}

// record answers the pending question. A fired deadline records a skip at
// the full budget.
func (c *wsConn) record(letter domain.Letter, timedOut bool) {
	if c.view != viewQuestion {
		c.fail("no_question", "no question is waiting for an answer")
		return
	}
	c.stopTimers()
	elapsed := c.stopwatch.Elapsed()
	if timedOut && elapsed < c.stopwatch.Budget() {
		elapsed = c.stopwatch.Budget()
	}
	res, err := c.session.RecordAnswer(c.current, letter, elapsed)
	if err != nil {
		c.h.logger.Error("record answer", "session", c.session.ID(), "error", err)
		c.view = viewHome
		c.fail("internal", err.Error())
		return
	}
	c.emit(msgAnswerResult, answerResultPayload{
		Points:        res.Points,
		Correct:       res.Correct,
		TimedOut:      res.TimedOut,
		Outcome:       res.Outcome.String(),
		CorrectLetter: string(c.current.Correct()),
		ElapsedMs:     res.Elapsed.Milliseconds(),
		Score:         c.session.Score(),
	})
	c.ask()
}

func (c *wsConn) finish() {
	c.view = viewRecap
	c.current = domain.Question{}
	c.emit(msgSummary, newSummaryPayload(c.session.Stats()))
}

func (c *wsConn) save(ctx context.Context, initials string) {
	if c.view != viewRecap {
		c.fail("not_finished", "finish a session before saving")
		return
	}
	if c.saved {
		c.fail("already_saved", "this session has already been saved")
		return
	}
	entry, err := c.h.service.SaveResult(ctx, c.session, initials)
	switch {
	case errors.Is(err, domain.ErrInvalidInitials):
		c.fail("invalid_initials", "initials must be exactly three letters")
		return
	case err != nil:
		c.h.logger.Error("save result", "session", c.session.ID(), "error", err)
		c.fail("save_failed", err.Error())
		return
	}
	c.saved = true
	c.emit(msgSaved, newEntryView(entry))
}

func (c *wsConn) leaderboard(ctx context.Context, limit int) {
	if limit == 0 {
		limit = leaderboard.DefaultTop
	}
	entries, err := c.h.service.TopScores(ctx, limit)
	if errors.Is(err, domain.ErrInvalidLimit) {
		c.fail("invalid_limit", err.Error())
		return
	}
	if err != nil {
		c.h.logger.Error("read leaderboard", "error", err)
		c.fail("leaderboard_failed", err.Error())
		return
	}
	c.emit(msgLeaderboard, newLeaderboardPayload(entries))
}

func (c *wsConn) tick() {
	if c.view != viewQuestion {
		return
	}
	c.emit(msgTick, tickPayload{
		RemainingMs: c.stopwatch.Remaining().Milliseconds(),
		Band:        c.stopwatch.Band().String(),
	})
}

func (c *wsConn) armTimers() {
	c.stopTimers()
	c.deadline = c.h.newTimer(c.stopwatch.Remaining())
	if c.h.tickInterval > 0 {
		c.ticker = time.NewTicker(c.h.tickInterval)
	}
}

func (c *wsConn) stopTimers() {
	if c.deadline != nil {
		c.deadline.Stop()
		c.deadline = nil
	}
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

func (c *wsConn) tickC() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.C
}

func (c *wsConn) deadlineC() <-chan time.Time {
	if c.deadline == nil {
		return nil
	}
	return c.deadline.C
}

func (c *wsConn) emit(typ string, payload any) {
	c.send <- outboundMessage[any]{Type: typ, Payload: payload}
}

func (c *wsConn) fail(code, message string) {
	c.emit(msgError, errorPayload{Code: code, Message: message})
}
