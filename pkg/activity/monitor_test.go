package activity

import (
	"sync"
	"testing"
	"time"

	"pocketchat/pkg/notify"
)

type countingNotifier struct {
	mu sync.Mutex
	n  int
}

func (c *countingNotifier) Notify(string) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *countingNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func TestMonitorFiresOnceThenDebounces(t *testing.T) {
	tr := NewTracker()
	cn := &countingNotifier{}
	m := NewMonitor(tr, cn, 20*time.Millisecond)
	defer m.Stop()

	m.Apply(Settings{Enabled: true, Interval: 1})
	if !m.Armed() {
		t.Fatalf("monitor should be armed")
	}

	// cross the idle threshold once
	time.Sleep(1200 * time.Millisecond)
	if got := cn.count(); got != 1 {
		t.Fatalf("expected exactly one firing, got %d", got)
	}
	// firing reset the clock, so the next polls stay quiet
	time.Sleep(300 * time.Millisecond)
	if got := cn.count(); got != 1 {
		t.Fatalf("expected no re-fire inside the window, got %d", got)
	}
}

func TestMonitorActivitySuppressesFiring(t *testing.T) {
	tr := NewTracker()
	cn := &countingNotifier{}
	m := NewMonitor(tr, cn, 20*time.Millisecond)
	defer m.Stop()

	m.Apply(Settings{Enabled: true, Interval: 1})
	for i := 0; i < 6; i++ {
		time.Sleep(200 * time.Millisecond)
		tr.Touch()
	}
	if got := cn.count(); got != 0 {
		t.Fatalf("activity within the window must suppress firing, got %d", got)
	}
}

func TestApplyDisabledDisarms(t *testing.T) {
	tr := NewTracker()
	m := NewMonitor(tr, notify.LogNotifier{}, 20*time.Millisecond)

	m.Apply(Settings{Enabled: true, Interval: 60})
	if !m.Armed() {
		t.Fatalf("monitor should be armed")
	}
	m.Apply(Settings{Enabled: false})
	if m.Armed() {
		t.Fatalf("disabled settings should disarm")
	}
}

func TestApplyRearmsWithoutStacking(t *testing.T) {
	tr := NewTracker()
	cn := &countingNotifier{}
	m := NewMonitor(tr, cn, 20*time.Millisecond)
	defer m.Stop()

	// repeated applies must leave exactly one timer
	m.Apply(Settings{Enabled: true, Interval: 1})
	m.Apply(Settings{Enabled: true, Interval: 1})
	m.Apply(Settings{Enabled: true, Interval: 1})

	time.Sleep(1200 * time.Millisecond)
	if got := cn.count(); got != 1 {
		t.Fatalf("stacked timers detected: %d firings", got)
	}
}
