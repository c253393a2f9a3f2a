package drawing

import "time"

// DefaultSampleRate caps how many events per second a single stroke stream
// may emit downstream.
const DefaultSampleRate = 60

// Throttle downsamples a stream of commands. Structural commands pass
// through untouched; consecutive moves inside one sampling interval are
// coalesced so only the most recent survives.
//
// Throttle is not safe for concurrent use; each stream owns one.
type Throttle struct {
	interval time.Duration
	lastEmit time.Time
	pending  *Command
}

func NewThrottle(eventsPerSecond int) *Throttle {
	if eventsPerSecond <= 0 {
		eventsPerSecond = DefaultSampleRate
	}
	return &Throttle{interval: time.Second / time.Duration(eventsPerSecond)}
}

// Push feeds one command in and returns the commands ready to emit now, in
// order. A coalesced move held from a previous interval is released ahead of
// any structural command so stroke ordering is preserved.
func (t *Throttle) Push(c Command, now time.Time) []Command {
	if c.structural() {
		out := t.Flush(now)
		t.lastEmit = now
		return append(out, c)
	}

	if t.pending != nil && now.Sub(t.lastEmit) >= t.interval {
		held := *t.pending
		t.pending = &c
		t.lastEmit = now
		return []Command{held}
	}

	if now.Sub(t.lastEmit) >= t.interval {
		t.lastEmit = now
		return []Command{c}
	}

	// Inside the sampling interval: remember only the newest move.
	t.pending = &c
	return nil
}

// Flush releases a held move, if any.
func (t *Throttle) Flush(now time.Time) []Command {
	if t.pending == nil {
		return nil
	}
	held := *t.pending
	t.pending = nil
	t.lastEmit = now
	return []Command{held}
}
