package realtime

import (
	"testing"
)

func TestNewBroadcaster(t *testing.T) {
	b := NewBroadcaster[string]()
	if b == nil {
		t.Fatal("NewBroadcaster returned nil")
	}
	if b.Len() != 0 {
		t.Errorf("Len %d, want 0", b.Len())
	}
}

func TestBroadcaster_Subscribe(t *testing.T) {
	b := NewBroadcaster[string]()
	ch := b.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe returned nil channel")
	}
	if b.Len() != 1 {
		t.Errorf("Len %d, want 1", b.Len())
	}
	b.Unsubscribe(ch)
	if b.Len() != 0 {
		t.Errorf("Len after Unsubscribe %d, want 0", b.Len())
	}
}

func TestBroadcaster_PublishDeliversToSubscriber(t *testing.T) {
	b := NewBroadcaster[string]()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish("round")
	got := <-ch
	if got != "round" {
		t.Errorf("got event %q, want %q", got, "round")
	}
}

func TestBroadcaster_PublishDeliversToMultipleSubscribers(t *testing.T) {
	type update struct{ Score int }
	b := NewBroadcaster[update]()
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	defer b.Unsubscribe(ch1)
	defer b.Unsubscribe(ch2)

	b.Publish(update{Score: 3})
	if got := <-ch1; got.Score != 3 {
		t.Errorf("ch1 got %d, want 3", got.Score)
	}
	if got := <-ch2; got.Score != 3 {
		t.Errorf("ch2 got %d, want 3", got.Score)
	}
}

func TestBroadcaster_PublishDropsWhenLagging(t *testing.T) {
	b := NewBroadcaster[int]()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < DefaultBuffer+5; i++ {
		b.Publish(i)
	}
	if len(ch) != DefaultBuffer {
		t.Errorf("buffered %d, want %d", len(ch), DefaultBuffer)
	}
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster[string]()
	ch := b.Subscribe()
	b.Unsubscribe(ch)
	_, open := <-ch
	if open {
		t.Error("channel should be closed after Unsubscribe")
	}
}

func TestBroadcaster_CloseClosesSubscribers(t *testing.T) {
	b := NewBroadcaster[string]()
	ch := b.Subscribe()
	b.Close()
	if _, open := <-ch; open {
		t.Error("channel should be closed after Close")
	}
	// Unsubscribe after Close must not double close
	b.Unsubscribe(ch)

	late := b.Subscribe()
	if _, open := <-late; open {
		t.Error("subscribing to a closed broadcaster should return a closed channel")
	}
	b.Publish("ignored")
}
