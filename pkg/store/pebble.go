package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cockroachdb/pebble"

	"pocketchat/pkg/logger"
	"pocketchat/pkg/models"
)

var (
	db     *pebble.DB
	dbPath string
)

// Key layout:
//
//	chat:<chatID>:meta            chat metadata JSON
//	chat:<chatID>:msg:<id>        message JSON, id zero-padded so iteration
//	                              order matches creation order
//	receipt:<chatID>:<ts>         read-receipt marker ("1")
//	settings:<name>               settings records (activity, ...)
//	outbox:snapshot               offline queue snapshot JSON

// Open opens (or creates) a Pebble database at the given path and keeps a
// package handle for the lifetime of the process.
func Open(path string) error {
	var err error
	logger.Info("opening_store", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("store_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("store_closed")
	return nil
}

// Ready reports whether the store is opened.
func Ready() bool {
	return db != nil
}

func chatMetaKey(chatID string) []byte {
	return []byte("chat:" + chatID + ":meta")
}

// MsgKey builds the durable key for a message. The id is zero-padded so
// lexical key order equals id order.
func MsgKey(chatID string, id int64) []byte {
	return []byte(fmt.Sprintf("chat:%s:msg:%020d", chatID, id))
}

func receiptKey(chatID string, ts int64) []byte {
	return []byte(fmt.Sprintf("receipt:%s:%020d", chatID, ts))
}

// PutMessage upserts a message keyed by (chat, id). Writing the same
// message twice overwrites the same key, so snapshot replays are safe.
func PutMessage(msg models.Message) error {
	if db == nil {
		return fmt.Errorf("store not opened; call store.Open first")
	}
	if msg.ChatID == "" || msg.ID == 0 {
		return fmt.Errorf("message missing chat id or id")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	key := MsgKey(msg.ChatID, msg.ID)
	if err := db.Set(key, data, pebble.Sync); err != nil {
		logger.Error("put_message_failed", "chat", msg.ChatID, "id", msg.ID, "error", err)
		return err
	}
	logger.Debug("message_saved", "chat", msg.ChatID, "id", msg.ID, "status", string(msg.Status))
	return nil
}

// ListMessages returns all messages for a chat in id order. An optional
// limit caps the result.
func ListMessages(chatID string, limit ...int) ([]models.Message, error) {
	if db == nil {
		return nil, fmt.Errorf("store not opened; call store.Open first")
	}
	prefix := []byte("chat:" + chatID + ":msg:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	max := -1
	if len(limit) > 0 {
		max = limit[0]
	}
	var out []models.Message
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			logger.Error("list_messages_bad_record", "chat", chatID, "error", err)
			continue
		}
		out = append(out, m)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out, iter.Error()
}

// SaveChat stores chat metadata under its meta key.
func SaveChat(chat models.Chat) error {
	if db == nil {
		return fmt.Errorf("store not opened; call store.Open first")
	}
	data, err := json.Marshal(chat)
	if err != nil {
		return fmt.Errorf("failed to marshal chat: %w", err)
	}
	if err := db.Set(chatMetaKey(chat.ID), data, pebble.Sync); err != nil {
		logger.Error("save_chat_failed", "chat", chat.ID, "error", err)
		return err
	}
	return nil
}

// GetChat returns the stored chat metadata for a chat ID.
func GetChat(chatID string) (models.Chat, error) {
	var chat models.Chat
	if db == nil {
		return chat, fmt.Errorf("store not opened; call store.Open first")
	}
	v, closer, err := db.Get(chatMetaKey(chatID))
	if err != nil {
		return chat, err
	}
	if closer != nil {
		defer closer.Close()
	}
	if err := json.Unmarshal(v, &chat); err != nil {
		return chat, fmt.Errorf("invalid chat metadata: %w", err)
	}
	return chat, nil
}

// ListChats returns all saved chat metadata records.
func ListChats() ([]models.Chat, error) {
	if db == nil {
		return nil, fmt.Errorf("store not opened; call store.Open first")
	}
	prefix := []byte("chat:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Chat
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		if !strings.HasSuffix(string(iter.Key()), ":meta") {
			continue
		}
		var c models.Chat
		if err := json.Unmarshal(iter.Value(), &c); err != nil {
			logger.Error("list_chats_bad_record", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, c)
	}
	return out, iter.Error()
}

// MarkReceipt records a read receipt for (chat, message timestamp). The
// write is idempotent; re-marking overwrites the same key.
func MarkReceipt(chatID string, ts int64) error {
	if db == nil {
		return fmt.Errorf("store not opened; call store.Open first")
	}
	if err := db.Set(receiptKey(chatID, ts), []byte("1"), pebble.Sync); err != nil {
		logger.Error("mark_receipt_failed", "chat", chatID, "ts", ts, "error", err)
		return err
	}
	return nil
}

// ListReceipts returns the persisted receipt timestamps for a chat.
func ListReceipts(chatID string) (map[int64]bool, error) {
	if db == nil {
		return nil, fmt.Errorf("store not opened; call store.Open first")
	}
	prefix := []byte("receipt:" + chatID + ":")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	out := map[int64]bool{}
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var ts int64
		if _, err := fmt.Sscanf(string(iter.Key()[len(prefix):]), "%d", &ts); err != nil {
			continue
		}
		out[ts] = true
	}
	return out, iter.Error()
}

// SaveKey stores an arbitrary key/value pair. Callers should choose a safe
// namespace (e.g. "settings:", "outbox:").
func SaveKey(key string, value []byte) error {
	if db == nil {
		return fmt.Errorf("store not opened; call store.Open first")
	}
	if err := db.Set([]byte(key), value, pebble.Sync); err != nil {
		logger.Error("save_key_failed", "key", key, "error", err)
		return err
	}
	return nil
}

// GetKey returns the raw value for the given key.
func GetKey(key string) ([]byte, error) {
	if db == nil {
		return nil, fmt.Errorf("store not opened; call store.Open first")
	}
	v, closer, err := db.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer closer.Close()
	}
	out := append([]byte(nil), v...)
	return out, nil
}

// DeleteKey removes a raw key. Missing keys are not an error.
func DeleteKey(key string) error {
	if db == nil {
		return fmt.Errorf("store not opened; call store.Open first")
	}
	return db.Delete([]byte(key), pebble.Sync)
}

// ListKeys returns all keys starting with the given prefix, or every key
// when the prefix is empty. Used by tests and the inspect path.
func ListKeys(prefix string) ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("store not opened; call store.Open first")
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	if prefix == "" {
		for iter.First(); iter.Valid(); iter.Next() {
			out = append(out, string(iter.Key()))
		}
		return out, iter.Error()
	}
	pfx := []byte(prefix)
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), pfx) {
			break
		}
		out = append(out, string(iter.Key()))
	}
	return out, iter.Error()
}

// LoadAll returns every persisted chat together with its messages, for
// restart rehydration.
func LoadAll() ([]models.Chat, map[string][]models.Message, error) {
	chats, err := ListChats()
	if err != nil {
		return nil, nil, err
	}
	msgs := make(map[string][]models.Message, len(chats))
	for _, c := range chats {
		ms, err := ListMessages(c.ID)
		if err != nil {
			return nil, nil, err
		}
		msgs[c.ID] = ms
	}
	return chats, msgs, nil
}
