package send

import (
	"path/filepath"
	"testing"

	"pocketchat/pkg/activity"
	"pocketchat/pkg/models"
	"pocketchat/pkg/notify"
	"pocketchat/pkg/outbox"
	"pocketchat/pkg/registry"
	"pocketchat/pkg/store"
)

func openTemp(t *testing.T) {
	t.Helper()
	dbdir := filepath.Join(t.TempDir(), "db")
	if err := store.Open(dbdir); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
}

func newPipeline(t *testing.T, online bool) (*Pipeline, *registry.Registry, *outbox.Queue, *[]string) {
	t.Helper()
	reg := registry.New(nil)
	reg.EnsureChat(models.Chat{ID: "c1", Name: "One"})
	q := outbox.New(reg)
	var notices []string
	n := notify.Func(func(text string) { notices = append(notices, text) })
	p := New(reg, q, ProbeFunc(func() bool { return online }), activity.NewTracker(), n)
	return p, reg, q, &notices
}

func TestSendOnlineDelivers(t *testing.T) {
	openTemp(t)
	p, reg, q, notices := newPipeline(t, true)

	if got := p.Send("hello", "c1"); got != Delivered {
		t.Fatalf("expected Delivered, got %q", got)
	}
	h := reg.History("c1")
	if len(h) != 1 || h[0].Status != models.StatusSent || h[0].Role != models.RoleUser {
		t.Fatalf("unexpected history: %+v", h)
	}
	if q.Len() != 0 {
		t.Fatalf("online send must not queue, got %d", q.Len())
	}
	if len(*notices) != 0 {
		t.Fatalf("online send must not notify, got %v", *notices)
	}

	msgs, err := store.ListMessages("c1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 durable message, got %d", len(msgs))
	}
}

func TestSendOfflineQueues(t *testing.T) {
	openTemp(t)
	p, reg, q, notices := newPipeline(t, false)

	if got := p.Send("hello", "c1"); got != Queued {
		t.Fatalf("expected Queued, got %q", got)
	}
	h := reg.History("c1")
	if len(h) != 1 || h[0].Status != models.StatusOffline {
		t.Fatalf("offline send should append with offline status: %+v", h)
	}
	if q.Len() != 1 {
		t.Fatalf("offline send must queue exactly one entry, got %d", q.Len())
	}
	if len(*notices) != 1 {
		t.Fatalf("offline send should notify once, got %v", *notices)
	}
	// no durable message write on the offline path, only the snapshot
	msgs, err := store.ListMessages("c1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("offline send must not write the message durably, got %d", len(msgs))
	}
}

func TestSendStoreFailureFallsOffline(t *testing.T) {
	openTemp(t)
	p, reg, q, _ := newPipeline(t, true)

	// probe says online but the durable write fails
	_ = store.Close()
	if got := p.Send("hello", "c1"); got != Queued {
		t.Fatalf("expected Queued on write failure, got %q", got)
	}
	if q.Len() != 1 {
		t.Fatalf("failed write must queue the message, got %d", q.Len())
	}
	h := reg.History("c1")
	if len(h) != 1 || h[0].Status != models.StatusOffline {
		t.Fatalf("failed write should append with offline status: %+v", h)
	}
}

func TestSendRejectsMalformedIntent(t *testing.T) {
	openTemp(t)
	p, reg, q, _ := newPipeline(t, true)

	if got := p.Send("", "c1"); got != Rejected {
		t.Fatalf("empty content: expected Rejected, got %q", got)
	}
	if got := p.Send("hello", ""); got != Rejected {
		t.Fatalf("empty chat id: expected Rejected, got %q", got)
	}
	if len(reg.History("c1")) != 0 || q.Len() != 0 {
		t.Fatalf("rejected sends must leave no trace")
	}
}

func TestSendIDsMonotonic(t *testing.T) {
	openTemp(t)
	p, reg, _, _ := newPipeline(t, true)

	for i := 0; i < 5; i++ {
		if got := p.Send("m", "c1"); got != Delivered {
			t.Fatalf("send %d: expected Delivered, got %q", i, got)
		}
	}
	h := reg.History("c1")
	for i := 1; i < len(h); i++ {
		if h[i].ID <= h[i-1].ID {
			t.Fatalf("ids not strictly increasing: %d then %d", h[i-1].ID, h[i].ID)
		}
	}
}
