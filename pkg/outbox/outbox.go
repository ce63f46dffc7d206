package outbox

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
	"github.com/valyala/bytebufferpool"

	"pocketchat/pkg/logger"
	"pocketchat/pkg/metrics"
	"pocketchat/pkg/models"
	"pocketchat/pkg/registry"
	"pocketchat/pkg/store"
)

const snapshotKey = "outbox:snapshot"

// Entry is a message held for later delivery. It exists either in the
// queue or as a delivered record, never both; removal happens exactly when
// the resync write succeeds.
type Entry struct {
	// Key is an idempotency key assigned at enqueue time.
	Key        string         `json:"key"`
	Message    models.Message `json:"message"`
	IsOffline  bool           `json:"is_offline"`
	EnqueuedAt int64          `json:"enqueued_at"`
}

// Queue holds messages that failed immediate delivery. Every mutation is
// followed by a full snapshot write before control returns to the caller,
// so a crash never observes a half-updated queue.
type Queue struct {
	mu       sync.Mutex
	entries  []Entry
	draining bool
	reg      *registry.Registry
}

func New(reg *registry.Registry) *Queue {
	return &Queue{reg: reg}
}

// Load restores the persisted snapshot. A missing snapshot is an empty
// queue; a corrupt one is dropped with a warning rather than blocking
// startup.
func (q *Queue) Load() error {
	raw, err := store.GetKey(snapshotKey)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil
		}
		return err
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.Warn("outbox_snapshot_corrupt", "error", err)
		return nil
	}
	q.mu.Lock()
	q.entries = entries
	q.mu.Unlock()
	metrics.OutboxDepth.Set(float64(len(entries)))
	return nil
}

// Enqueue appends an offline entry and persists the queue. Persistence
// failures are absorbed; the in-memory entry survives for the next drain.
func (q *Queue) Enqueue(msg models.Message) Entry {
	e := Entry{
		Key:        uuid.NewString(),
		Message:    msg,
		IsOffline:  true,
		EnqueuedAt: time.Now().UTC().UnixNano(),
	}
	q.mu.Lock()
	q.entries = append(q.entries, e)
	q.persistLocked()
	depth := len(q.entries)
	q.mu.Unlock()

	metrics.OutboxDepth.Set(float64(depth))
	logger.Info("outbox_enqueued", "chat", msg.ChatID, "msg_id", msg.ID, "depth", depth)
	return e
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Entries returns a copy of the queued entries in order.
func (q *Queue) Entries() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Entry(nil), q.entries...)
}

// Drain attempts the durable write for each queued entry. Entries whose
// write succeeds are re-rendered into the live view (if their chat is
// displayed) and removed; failed entries stay queued for a later call.
// Concurrent triggers collapse: while one pass runs, others return 0.
// Returns the number of entries replayed.
func (q *Queue) Drain() int {
	q.mu.Lock()
	if q.draining || len(q.entries) == 0 {
		q.mu.Unlock()
		return 0
	}
	q.draining = true
	pending := append([]Entry(nil), q.entries...)
	q.mu.Unlock()

	done := make(map[string]bool, len(pending))
	for _, e := range pending {
		if err := store.PutMessage(e.Message); err != nil {
			metrics.StoreWriteFailuresTotal.Inc()
			logger.Warn("outbox_replay_failed", "chat", e.Message.ChatID, "msg_id", e.Message.ID, "error", err)
			continue
		}
		done[e.Key] = true
		metrics.OutboxDrainedTotal.Inc()
		if q.reg != nil {
			q.reg.RenderLive(e.Message)
		}
	}

	q.mu.Lock()
	if len(done) > 0 {
		kept := make([]Entry, 0, len(q.entries)-len(done))
		for _, e := range q.entries {
			if !done[e.Key] {
				kept = append(kept, e)
			}
		}
		q.entries = kept
		q.persistLocked()
	}
	depth := len(q.entries)
	q.draining = false
	q.mu.Unlock()

	metrics.OutboxDepth.Set(float64(depth))
	if len(done) > 0 {
		logger.Info("outbox_drained", "replayed", len(done), "remaining", depth)
	}
	return len(done)
}

// persistLocked writes the full queue snapshot. Replaying a stale snapshot
// is safe because the durable message write is an idempotent upsert.
func (q *Queue) persistLocked() {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	if err := json.NewEncoder(bb).Encode(q.entries); err != nil {
		logger.Error("outbox_snapshot_encode_failed", "error", err)
		return
	}
	if err := store.SaveKey(snapshotKey, bb.B); err != nil {
		metrics.StoreWriteFailuresTotal.Inc()
		logger.Error("outbox_snapshot_persist_failed", "error", err)
	}
}
