package activity

import (
	"testing"
	"time"
)

func TestTrackerTouchResetsIdle(t *testing.T) {
	tr := NewTracker()
	time.Sleep(20 * time.Millisecond)
	if tr.Idle() < 10*time.Millisecond {
		t.Fatalf("idle should grow, got %v", tr.Idle())
	}
	tr.Touch()
	if tr.Idle() > 10*time.Millisecond {
		t.Fatalf("touch should reset idle, got %v", tr.Idle())
	}
}

func TestTrackerLast(t *testing.T) {
	tr := NewTracker()
	before := tr.Last()
	time.Sleep(5 * time.Millisecond)
	tr.Touch()
	if !tr.Last().After(before) {
		t.Fatalf("last should advance on touch")
	}
}
