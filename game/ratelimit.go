package game

import (
	"sync"
	"time"
)

// Category splits the per-player budget between chat/control frames and
// drawing frames.
type Category string

const (
	CategoryMessage Category = "message"
	CategoryDrawing Category = "drawing"
)

// Windows are per category: chat abuse is a per-minute problem, drawing
// throughput is a per-second one. The drawing ceiling matches the pipeline
// sample rate so the limiter is a backstop, not the throttle.
const (
	DefaultMessageLimit  = 30
	DefaultMessageWindow = 60 * time.Second
	DefaultDrawingLimit  = 60
	DefaultDrawingWindow = time.Second
)

type rateWindow struct {
	messagesCount      int
	drawingCount       int
	messageWindowStart time.Time
	drawingWindowStart time.Time
}

// RateLimiter keeps one in-memory window pair per player. Never persisted.
type RateLimiter struct {
	locker        sync.Mutex
	windows       map[string]*rateWindow
	messageLimit  int
	messageWindow time.Duration
	drawingLimit  int
	drawingWindow time.Duration
	now           func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		windows:       make(map[string]*rateWindow),
		messageLimit:  DefaultMessageLimit,
		messageWindow: DefaultMessageWindow,
		drawingLimit:  DefaultDrawingLimit,
		drawingWindow: DefaultDrawingWindow,
		now:           time.Now,
	}
}

// Allow counts one action and reports whether it fit inside the window.
func (l *RateLimiter) Allow(playerId string, category Category) bool {
	l.locker.Lock()
	defer l.locker.Unlock()

	now := l.now()
	w, ok := l.windows[playerId]
	if !ok {
		w = &rateWindow{messageWindowStart: now, drawingWindowStart: now}
		l.windows[playerId] = w
	}

	switch category {
	case CategoryDrawing:
		if now.Sub(w.drawingWindowStart) > l.drawingWindow {
			w.drawingWindowStart = now
			w.drawingCount = 0
		}
		if w.drawingCount >= l.drawingLimit {
			return false
		}
		w.drawingCount++
	default:
		if now.Sub(w.messageWindowStart) > l.messageWindow {
			w.messageWindowStart = now
			w.messagesCount = 0
		}
		if w.messagesCount >= l.messageLimit {
			return false
		}
		w.messagesCount++
	}
	return true
}

// Forget drops a player's windows when their connection goes away.
func (l *RateLimiter) Forget(playerId string) {
	l.locker.Lock()
	defer l.locker.Unlock()
	delete(l.windows, playerId)
}
