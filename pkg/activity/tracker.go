package activity

import (
	"sync"
	"time"
)

// Tracker owns the process-wide last-active instant. Every writer goes
// through Touch, so the monitor, the send pipeline and the UI surface
// never race on ambient shared state.
type Tracker struct {
	mu   sync.Mutex
	last time.Time
}

func NewTracker() *Tracker {
	return &Tracker{last: time.Now()}
}

// Touch records activity now.
func (t *Tracker) Touch() {
	t.mu.Lock()
	t.last = time.Now()
	t.mu.Unlock()
}

// Last returns the most recent activity instant.
func (t *Tracker) Last() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Idle returns the elapsed time since the last activity.
func (t *Tracker) Idle() time.Duration {
	return time.Since(t.Last())
}
