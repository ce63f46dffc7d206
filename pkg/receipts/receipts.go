package receipts

import (
	"sync"

	"pocketchat/pkg/logger"
	"pocketchat/pkg/models"
	"pocketchat/pkg/store"
)

// Book is the read-receipt overlay: chat id -> message timestamp -> read.
// The mapping is append-only; a key set once never reverts. Receipts live
// in a side table in the store, not inside messages, because they are a
// UI-driven overlay rather than delivery metadata.
type Book struct {
	mu     sync.Mutex
	byChat map[string]map[int64]bool
}

func New() *Book {
	return &Book{byChat: make(map[string]map[int64]bool)}
}

// LoadChat pulls the persisted receipts for a chat into memory. Failures
// leave the in-memory view empty; marks will simply re-persist.
func (b *Book) LoadChat(chatID string) {
	got, err := store.ListReceipts(chatID)
	if err != nil {
		logger.Warn("receipts_load_failed", "chat", chatID, "error", err)
		return
	}
	if len(got) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.byChat[chatID]
	if m == nil {
		m = make(map[int64]bool, len(got))
		b.byChat[chatID] = m
	}
	for ts := range got {
		m[ts] = true
	}
}

// Mark records (chat, ts) as read. Marking twice is equivalent to marking
// once; the persisted write only happens on the first transition.
func (b *Book) Mark(chatID string, ts int64) bool {
	b.mu.Lock()
	m := b.byChat[chatID]
	if m == nil {
		m = make(map[int64]bool)
		b.byChat[chatID] = m
	}
	if m[ts] {
		b.mu.Unlock()
		return false
	}
	m[ts] = true
	b.mu.Unlock()

	// best-effort persistence; the in-memory mark stands either way
	if err := store.MarkReceipt(chatID, ts); err != nil {
		logger.Warn("receipt_persist_failed", "chat", chatID, "ts", ts, "error", err)
	}
	return true
}

// IsRead reports whether (chat, ts) was marked.
func (b *Book) IsRead(chatID string, ts int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.byChat[chatID][ts]
}

// MarkAllAssistant sweeps a chat history and marks every unread assistant
// message, mirroring the click-to-read behavior of the chat surface.
// Returns the number of newly marked messages.
func (b *Book) MarkAllAssistant(chatID string, history []models.Message) int {
	n := 0
	for _, msg := range history {
		if msg.Role != models.RoleAssistant {
			continue
		}
		if b.Mark(chatID, msg.TS) {
			n++
		}
	}
	return n
}
