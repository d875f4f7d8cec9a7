package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"
)

var errInputClosed = errors.New("console: input closed")

type readStatus int

const (
	readOK readStatus = iota
	readTimeout
	readClosed
)

// pump forwards lines from r until EOF, then closes the channel.
func pump(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// next waits for a line, the deadline or cancellation. A deadline that has
// already fired wins over a pending line. A nil deadline never fires.
func (g *Game) next(ctx context.Context, deadline <-chan time.Time) (string, readStatus, error) {
	if deadline != nil {
		select {
		case <-deadline:
			return "", readTimeout, nil
		default:
		}
	}
	select {
	case <-ctx.Done():
		return "", readClosed, ctx.Err()
	case <-deadline:
		return "", readTimeout, nil
	case line, ok := <-g.lines:
		if !ok {
			return "", readClosed, errInputClosed
		}
		return line, readOK, nil
	}
}

// dropLateInput discards lines already waiting after a timed-out question.
func (g *Game) dropLateInput() {
	if !g.late {
		return
	}
	g.late = false
	for {
		select {
		case line, ok := <-g.lines:
			if !ok {
				return
			}
			g.logger.Debug("dropping late input", "line", line)
		default:
			return
		}
	}
}
