package notify

import "testing"

func TestLimitedDropsBurst(t *testing.T) {
	var got int
	n := NewLimited(Func(func(string) { got++ }), 1, 2)

	for i := 0; i < 10; i++ {
		n.Notify("x")
	}
	// burst of 2, refill far slower than the loop
	if got != 2 {
		t.Fatalf("expected 2 delivered, got %d", got)
	}
}

func TestLimitedDisabled(t *testing.T) {
	var got int
	n := NewLimited(Func(func(string) { got++ }), 0, 0)

	for i := 0; i < 5; i++ {
		n.Notify("x")
	}
	if got != 5 {
		t.Fatalf("non-positive rps should disable limiting, got %d", got)
	}
}
