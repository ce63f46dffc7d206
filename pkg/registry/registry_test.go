package registry

import (
	"testing"

	"pocketchat/pkg/models"
)

func TestAppendPreservesArrivalOrder(t *testing.T) {
	reg := New(nil)
	reg.EnsureChat(models.Chat{ID: "c1", Name: "One"})

	// an older timestamp arriving later still lands at the tail
	reg.AppendMessage("c1", models.Message{ID: 2, ChatID: "c1", TS: 200})
	reg.AppendMessage("c1", models.Message{ID: 1, ChatID: "c1", TS: 100})

	h := reg.History("c1")
	if len(h) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(h))
	}
	if h[0].ID != 2 || h[1].ID != 1 {
		t.Fatalf("arrival order not preserved: %v, %v", h[0].ID, h[1].ID)
	}
}

func TestAppendUnknownChatIsNoop(t *testing.T) {
	var rendered int
	reg := New(RendererFunc(func(models.Message, models.Chat) { rendered++ }))

	if reg.AppendMessage("ghost", models.Message{ID: 1, ChatID: "ghost"}) {
		t.Fatalf("append to unknown chat should report false")
	}
	if rendered != 0 {
		t.Fatalf("renderer should not fire for unknown chat")
	}
}

func TestRendererFiresOncePerAppend(t *testing.T) {
	var rendered []int64
	reg := New(RendererFunc(func(m models.Message, _ models.Chat) { rendered = append(rendered, m.ID) }))
	reg.EnsureChat(models.Chat{ID: "c1"})

	reg.AppendMessage("c1", models.Message{ID: 1, ChatID: "c1"})
	reg.AppendMessage("c1", models.Message{ID: 2, ChatID: "c1"})

	if len(rendered) != 2 || rendered[0] != 1 || rendered[1] != 2 {
		t.Fatalf("unexpected render sequence: %v", rendered)
	}
}

func TestEnsureChatNeverOverwrites(t *testing.T) {
	reg := New(nil)
	reg.EnsureChat(models.Chat{ID: "c1", Name: "Original"})
	reg.AppendMessage("c1", models.Message{ID: 1, ChatID: "c1"})

	reg.EnsureChat(models.Chat{ID: "c1", Name: "Imposter"})

	got, ok := reg.Get("c1")
	if !ok || got.Name != "Original" {
		t.Fatalf("existing chat was overwritten: %+v", got)
	}
	if len(reg.History("c1")) != 1 {
		t.Fatalf("existing history was lost")
	}
}

func TestRenderLiveOnlyForActiveChat(t *testing.T) {
	var rendered int
	reg := New(RendererFunc(func(models.Message, models.Chat) { rendered++ }))
	reg.EnsureChat(models.Chat{ID: "c1"})
	reg.EnsureChat(models.Chat{ID: "c2"})

	reg.SetActive("c1")
	reg.RenderLive(models.Message{ID: 1, ChatID: "c2"})
	if rendered != 0 {
		t.Fatalf("inactive chat should not render")
	}
	reg.RenderLive(models.Message{ID: 2, ChatID: "c1"})
	if rendered != 1 {
		t.Fatalf("active chat should render exactly once, got %d", rendered)
	}
	// RenderLive never touches history
	if len(reg.History("c1")) != 0 {
		t.Fatalf("render-live must not append")
	}
}

func TestLoadSortsByIDAndKeepsChatOrder(t *testing.T) {
	reg := New(nil)
	chats := []models.Chat{{ID: "b"}, {ID: "a"}}
	msgs := map[string][]models.Message{
		"b": {{ID: 3, ChatID: "b"}, {ID: 1, ChatID: "b"}, {ID: 2, ChatID: "b"}},
	}
	reg.Load(chats, msgs)

	got := reg.Chats()
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("chat order not preserved: %v", got)
	}
	h := reg.History("b")
	if len(h) != 3 || h[0].ID != 1 || h[1].ID != 2 || h[2].ID != 3 {
		t.Fatalf("history not sorted by id: %v", h)
	}
}
