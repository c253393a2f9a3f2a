package drawing

import "time"

const (
	DefaultMaxBufferSize = 32
	DefaultFlushInterval = 250 * time.Millisecond
)

// Buffer accumulates commands into batches. A batch is released when the
// buffer is full, when the flush interval has elapsed, immediately when a
// structural command arrives (it flushes whatever is pending plus itself),
// or on Destroy. Nothing pending is ever dropped.
//
// Buffer is clock-injected and not safe for concurrent use; the owning room
// actor drives it.
type Buffer struct {
	maxSize       int
	flushInterval time.Duration
	pending       []Command
	lastFlush     time.Time
	destroyed     bool
}

func NewBuffer(maxSize int, flushInterval time.Duration, now time.Time) *Buffer {
	if maxSize <= 0 {
		maxSize = DefaultMaxBufferSize
	}
	if flushInterval <= 0 {
		flushInterval = DefaultFlushInterval
	}
	return &Buffer{
		maxSize:       maxSize,
		flushInterval: flushInterval,
		pending:       make([]Command, 0, maxSize),
		lastFlush:     now,
	}
}

// Add appends one command and returns a flushed batch when one is due.
func (b *Buffer) Add(c Command, now time.Time) ([]Command, bool) {
	if b.destroyed {
		return nil, false
	}
	b.pending = append(b.pending, c)
	if c.structural() || len(b.pending) >= b.maxSize || now.Sub(b.lastFlush) >= b.flushInterval {
		return b.flush(now)
	}
	return nil, false
}

// FlushDue releases the pending batch if the flush interval has elapsed.
// The owning actor calls this from its tick handler.
func (b *Buffer) FlushDue(now time.Time) ([]Command, bool) {
	if b.destroyed || len(b.pending) == 0 || now.Sub(b.lastFlush) < b.flushInterval {
		return nil, false
	}
	return b.flush(now)
}

// Destroy releases any residual commands and rejects further use.
func (b *Buffer) Destroy(now time.Time) ([]Command, bool) {
	if b.destroyed {
		return nil, false
	}
	batch, ok := b.flush(now)
	b.destroyed = true
	return batch, ok
}

func (b *Buffer) Len() int {
	return len(b.pending)
}

func (b *Buffer) flush(now time.Time) ([]Command, bool) {
	b.lastFlush = now
	if len(b.pending) == 0 {
		return nil, false
	}
	batch := b.pending
	b.pending = make([]Command, 0, b.maxSize)
	return batch, true
}
