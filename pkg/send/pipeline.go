package send

import (
	"time"

	"pocketchat/pkg/activity"
	"pocketchat/pkg/logger"
	"pocketchat/pkg/metrics"
	"pocketchat/pkg/models"
	"pocketchat/pkg/notify"
	"pocketchat/pkg/outbox"
	"pocketchat/pkg/registry"
	"pocketchat/pkg/store"
	"pocketchat/pkg/utils"
)

// Outcome is the explicit result of a send. Send never returns an error:
// every failure is absorbed into local state, and the caller always gets a
// renderable result.
type Outcome string

const (
	// Delivered: the durable write succeeded on the online path.
	Delivered Outcome = "delivered"
	// Queued: the message took the offline path and waits in the outbox.
	Queued Outcome = "queued"
	// Rejected: malformed intent (empty content or chat id); nothing
	// happened.
	Rejected Outcome = "rejected"
)

// Probe reports whether delivery is currently believed possible. The value
// is best-effort; a stale answer only routes a message through the
// offline path.
type Probe interface {
	Online() bool
}

// ProbeFunc adapts a function to the Probe interface.
type ProbeFunc func() bool

func (f ProbeFunc) Online() bool { return f() }

const offlineNotice = "Message cached; it will be sent when the connection is restored"

// Pipeline accepts outgoing message intents and guarantees an eventual
// delivery attempt: online sends write through to the store, failed or
// offline sends land in the outbox for a later drain.
type Pipeline struct {
	reg      *registry.Registry
	queue    *outbox.Queue
	probe    Probe
	tracker  *activity.Tracker
	notifier notify.Notifier
}

func New(reg *registry.Registry, queue *outbox.Queue, probe Probe, tracker *activity.Tracker, notifier notify.Notifier) *Pipeline {
	return &Pipeline{reg: reg, queue: queue, probe: probe, tracker: tracker, notifier: notifier}
}

// Send routes an outgoing user message. Whatever happens, the message
// appears in the chat's sequence (append ordered by arrival); only the
// delivery status differs between the online and offline paths.
func (p *Pipeline) Send(content, chatID string) Outcome {
	if content == "" || chatID == "" {
		// deliberate ignore-malformed-intent policy, not an error
		logger.Debug("send_malformed_intent", "chat", chatID)
		metrics.SendsTotal.WithLabelValues(string(Rejected)).Inc()
		return Rejected
	}

	msg := models.Message{
		ID:      utils.NextMessageID(),
		ChatID:  chatID,
		Role:    models.RoleUser,
		Content: content,
		Type:    models.TypeText,
		TS:      time.Now().UTC().UnixNano(),
		Status:  models.StatusSent,
	}

	if p.probe != nil && !p.probe.Online() {
		// no network attempt when the probe already says offline
		return p.fallOffline(msg)
	}
	if err := store.PutMessage(msg); err != nil {
		metrics.StoreWriteFailuresTotal.Inc()
		logger.Warn("send_delivery_failed", "chat", chatID, "msg_id", msg.ID, "error", err)
		return p.fallOffline(msg)
	}

	p.reg.AppendMessage(chatID, msg)
	if p.tracker != nil {
		// a successful send counts as user activity
		p.tracker.Touch()
	}
	metrics.SendsTotal.WithLabelValues(string(Delivered)).Inc()
	return Delivered
}

// fallOffline converts a failed or skipped delivery into durable local
// state: the chat shows the message with offline status and the outbox
// holds the retry. This path never propagates an error.
func (p *Pipeline) fallOffline(msg models.Message) Outcome {
	msg.Status = models.StatusOffline
	p.reg.AppendMessage(msg.ChatID, msg)
	p.queue.Enqueue(msg)
	if p.notifier != nil {
		p.notifier.Notify(offlineNotice)
	}
	metrics.SendsTotal.WithLabelValues(string(Queued)).Inc()
	return Queued
}
