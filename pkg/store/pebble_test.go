package store

import (
	"path/filepath"
	"testing"

	"pocketchat/pkg/models"
)

func openTemp(t *testing.T) {
	t.Helper()
	dbdir := filepath.Join(t.TempDir(), "db")
	if err := Open(dbdir); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = Close() })
}

func TestPutMessageIdempotent(t *testing.T) {
	openTemp(t)

	m := models.Message{ID: 42, ChatID: "c1", Role: models.RoleUser, Content: "hi", Type: models.TypeText, TS: 100, Status: models.StatusOffline}
	if err := PutMessage(m); err != nil {
		t.Fatalf("PutMessage: %v", err)
	}
	// replay with updated status overwrites the same key
	m.Status = models.StatusSent
	if err := PutMessage(m); err != nil {
		t.Fatalf("PutMessage replay: %v", err)
	}

	msgs, err := ListMessages("c1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Status != models.StatusSent {
		t.Fatalf("expected replay to win, got status %q", msgs[0].Status)
	}
}

func TestListMessagesOrderAndLimit(t *testing.T) {
	openTemp(t)

	for _, id := range []int64{3, 1, 2} {
		if err := PutMessage(models.Message{ID: id, ChatID: "c1", Role: models.RoleUser, Content: "m", Type: models.TypeText, TS: id}); err != nil {
			t.Fatalf("PutMessage: %v", err)
		}
	}
	msgs, err := ListMessages("c1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, want := range []int64{1, 2, 3} {
		if msgs[i].ID != want {
			t.Fatalf("position %d: expected id %d, got %d", i, want, msgs[i].ID)
		}
	}

	limited, err := ListMessages("c1", 2)
	if err != nil {
		t.Fatalf("ListMessages limit: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 messages with limit, got %d", len(limited))
	}
}

func TestChatRoundTrip(t *testing.T) {
	openTemp(t)

	c := models.Chat{
		ID:      "g1",
		Name:    "Crew",
		IsGroup: true,
		Members: []models.Member{{OriginalName: "Alex", Nickname: "Al"}},
	}
	if err := SaveChat(c); err != nil {
		t.Fatalf("SaveChat: %v", err)
	}
	got, err := GetChat("g1")
	if err != nil {
		t.Fatalf("GetChat: %v", err)
	}
	if got.Name != "Crew" || !got.IsGroup || len(got.Members) != 1 {
		t.Fatalf("unexpected chat: %+v", got)
	}
	if got.Members[0].DisplayName() != "Al" {
		t.Fatalf("expected nickname to win, got %q", got.Members[0].DisplayName())
	}

	chats, err := ListChats()
	if err != nil {
		t.Fatalf("ListChats: %v", err)
	}
	if len(chats) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(chats))
	}
}

func TestListChatsSkipsMessageKeys(t *testing.T) {
	openTemp(t)

	if err := SaveChat(models.Chat{ID: "c1", Name: "One"}); err != nil {
		t.Fatalf("SaveChat: %v", err)
	}
	if err := PutMessage(models.Message{ID: 1, ChatID: "c1", Role: models.RoleUser, Content: "m", Type: models.TypeText, TS: 1}); err != nil {
		t.Fatalf("PutMessage: %v", err)
	}
	chats, err := ListChats()
	if err != nil {
		t.Fatalf("ListChats: %v", err)
	}
	if len(chats) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(chats))
	}
}

func TestReceipts(t *testing.T) {
	openTemp(t)

	if err := MarkReceipt("c1", 100); err != nil {
		t.Fatalf("MarkReceipt: %v", err)
	}
	if err := MarkReceipt("c1", 100); err != nil {
		t.Fatalf("MarkReceipt again: %v", err)
	}
	if err := MarkReceipt("c2", 200); err != nil {
		t.Fatalf("MarkReceipt other chat: %v", err)
	}

	got, err := ListReceipts("c1")
	if err != nil {
		t.Fatalf("ListReceipts: %v", err)
	}
	if len(got) != 1 || !got[100] {
		t.Fatalf("unexpected receipts: %v", got)
	}
}

func TestLoadAll(t *testing.T) {
	openTemp(t)

	if err := SaveChat(models.Chat{ID: "c1", Name: "One"}); err != nil {
		t.Fatalf("SaveChat: %v", err)
	}
	if err := SaveChat(models.Chat{ID: "c2", Name: "Two"}); err != nil {
		t.Fatalf("SaveChat: %v", err)
	}
	for i := int64(1); i <= 3; i++ {
		if err := PutMessage(models.Message{ID: i, ChatID: "c1", Role: models.RoleUser, Content: "m", Type: models.TypeText, TS: i}); err != nil {
			t.Fatalf("PutMessage: %v", err)
		}
	}

	chats, msgs, err := LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("expected 2 chats, got %d", len(chats))
	}
	if len(msgs["c1"]) != 3 {
		t.Fatalf("expected 3 messages for c1, got %d", len(msgs["c1"]))
	}
	if len(msgs["c2"]) != 0 {
		t.Fatalf("expected 0 messages for c2, got %d", len(msgs["c2"]))
	}
}

func TestKeyNamespace(t *testing.T) {
	openTemp(t)

	if err := SaveKey("settings:test", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("SaveKey: %v", err)
	}
	v, err := GetKey("settings:test")
	if err != nil {
		t.Fatalf("GetKey: %v", err)
	}
	if string(v) != `{"a":1}` {
		t.Fatalf("unexpected value: %s", v)
	}
	keys, err := ListKeys("settings:")
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "settings:test" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if err := DeleteKey("settings:test"); err != nil {
		t.Fatalf("DeleteKey: %v", err)
	}
	if _, err := GetKey("settings:test"); err == nil {
		t.Fatalf("expected missing key after delete")
	}
}
