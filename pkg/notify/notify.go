package notify

import (
	"golang.org/x/time/rate"

	"pocketchat/pkg/logger"
)

// Notifier displays a short transient notice to the user. Failures to
// display are never escalated.
type Notifier interface {
	Notify(text string)
}

// Func adapts a function to the Notifier interface.
type Func func(text string)

func (f Func) Notify(text string) { f(text) }

// LogNotifier writes notices to the application log. It stands in for a
// real toast/notification surface.
type LogNotifier struct{}

func (LogNotifier) Notify(text string) {
	logger.Info("notice", "text", text)
}

// Limited wraps a Notifier with a token-bucket rate limit so a burst of
// failures cannot flood the user. Dropped notices are logged at debug.
type Limited struct {
	next Notifier
	lim  *rate.Limiter
}

// NewLimited builds a rate-limited notifier. Non-positive rps disables
// limiting.
func NewLimited(next Notifier, rps float64, burst int) *Limited {
	if rps <= 0 {
		return &Limited{next: next}
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limited{next: next, lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (l *Limited) Notify(text string) {
	if l.lim != nil && !l.lim.Allow() {
		logger.Debug("notice_suppressed", "text", text)
		return
	}
	l.next.Notify(text)
}
