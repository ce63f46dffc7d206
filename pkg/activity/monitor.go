package activity

import (
	"context"
	"sync"
	"time"

	"pocketchat/pkg/config"
	"pocketchat/pkg/logger"
	"pocketchat/pkg/metrics"
	"pocketchat/pkg/notify"
)

// idleNotice is the text shown when the idle threshold is crossed.
const idleNotice = "Someone seems to be waiting to hear from you..."

// Monitor watches the shared last-active instant and fires a single notice
// when the configured idle interval is exceeded. It has two states:
// disarmed (no timer) and armed (exactly one polling goroutine). Applying
// a configuration always cancels the previous goroutine before arming a
// new one, so firings cannot compound.
type Monitor struct {
	tracker  *Tracker
	notifier notify.Notifier
	poll     time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewMonitor builds a disarmed monitor. poll is the fixed check period,
// independent of the configured idle interval; non-positive values fall
// back to 10s.
func NewMonitor(tracker *Tracker, notifier notify.Notifier, poll time.Duration) *Monitor {
	if poll <= 0 {
		poll = config.DefaultActivityPoll * time.Second
	}
	return &Monitor{tracker: tracker, notifier: notifier, poll: poll}
}

// Apply reconfigures the monitor. The previous timer, if any, is cancelled
// before a new one is armed; with Enabled false the monitor stays
// disarmed.
func (m *Monitor) Apply(s Settings) {
	s = s.Normalize()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if !s.Enabled {
		logger.Info("activity_monitor_disarmed")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	interval := time.Duration(s.Interval) * time.Second
	go m.run(ctx, interval)
	logger.Info("activity_monitor_armed", "interval", interval, "poll", m.poll)
}

// Stop disarms the monitor.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Armed reports whether a timer is live.
func (m *Monitor) Armed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

func (m *Monitor) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.tracker.Idle() > interval {
				m.fire()
			}
		}
	}
}

// fire emits the notice and resets the last-active instant so the next
// poll tick does not fire again. This is a debounce, not an exactly-once
// guarantee over the session.
func (m *Monitor) fire() {
	m.tracker.Touch()
	metrics.MonitorFiringsTotal.Inc()
	logger.Info("activity_monitor_fired")
	if m.notifier != nil {
		m.notifier.Notify(idleNotice)
	}
}
