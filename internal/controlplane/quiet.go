package controlplane

import (
	"sync"
	"time"
)

// QuietWindow is the "quiet window" deadline signal from spec.md §4.8:
// while active, the UDP server defers heavy JSON parsing/handling of
// the next inbound packet instead of doing it inline, so a jittery
// neighboring bus transaction (SMBus, in the original firmware) never
// shares a frame with expensive protocol work. Grounded on
// original_source/src/RGBudp.cpp's gQuietUntilUs/quietActive/
// enterSmbusQuietUs, reimplemented with time.Time instead of a
// wrapping micros() counter.
type QuietWindow struct {
	mu    sync.Mutex
	until time.Time
}

// Enter arms (or extends) the quiet window to last at least d from
// now. If a window is already active, it is only extended — never
// shortened — matching the original's "extend if already inside a
// quiet window" rule.
func (q *QuietWindow) Enter(d time.Duration) {
	now := time.Now()
	target := now.Add(d)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.until.After(now) {
		if target.After(q.until) {
			q.until = target
		}
		return
	}
	q.until = target
}

// Active reports whether the quiet window is currently in effect.
func (q *QuietWindow) Active() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return time.Now().Before(q.until)
}
