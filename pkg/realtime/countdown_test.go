package realtime

import "testing"

func TestNewCountdown_StartsFull(t *testing.T) {
	c := NewCountdown(30)
	if c.Remaining() != 30 {
		t.Errorf("Remaining %d, want 30", c.Remaining())
	}
	if c.Total() != 30 {
		t.Errorf("Total %d, want 30", c.Total())
	}
	if c.Expired() {
		t.Error("new countdown should not be expired")
	}
	if c.Progress() != 1 {
		t.Errorf("Progress %v, want 1", c.Progress())
	}
}

func TestNewCountdown_NegativeTotal(t *testing.T) {
	c := NewCountdown(-3)
	if c.Total() != 0 || c.Remaining() != 0 {
		t.Errorf("total=%d remaining=%d, want 0 0", c.Total(), c.Remaining())
	}
	if !c.Expired() {
		t.Error("zero countdown should be expired")
	}
	if c.Progress() != 0 {
		t.Errorf("Progress %v, want 0", c.Progress())
	}
}

func TestCountdown_TickFloorsAtZero(t *testing.T) {
	c := NewCountdown(2)
	if got := c.Tick(); got != 1 {
		t.Errorf("Tick %d, want 1", got)
	}
	if c.Expired() {
		t.Error("should not be expired at 1")
	}
	if got := c.Tick(); got != 0 {
		t.Errorf("Tick %d, want 0", got)
	}
	if !c.Expired() {
		t.Error("should be expired at 0")
	}
	// Further ticks stay at zero
	if got := c.Tick(); got != 0 {
		t.Errorf("Tick after expiry %d, want 0", got)
	}
}

func TestCountdown_MonotonicUntilReset(t *testing.T) {
	c := NewCountdown(5)
	prev := c.Remaining()
	for i := 0; i < 8; i++ {
		got := c.Tick()
		if got > prev {
			t.Fatalf("tick %d increased remaining from %d to %d", i, prev, got)
		}
		if got < 0 || got > c.Total() {
			t.Fatalf("remaining %d out of range", got)
		}
		prev = got
	}
	c.Reset()
	if c.Remaining() != 5 {
		t.Errorf("Remaining after Reset %d, want 5", c.Remaining())
	}
}

func TestCountdown_Progress(t *testing.T) {
	c := NewCountdown(30)
	for i := 0; i < 15; i++ {
		c.Tick()
	}
	if c.Progress() != 0.5 {
		t.Errorf("Progress %v, want 0.5", c.Progress())
	}
}
