package realtime

import (
	"context"
	"testing"
	"time"
)

func TestNewRoomStore(t *testing.T) {
	s := NewRoomStore[string, string]()
	if s == nil {
		t.Fatal("NewRoomStore returned nil")
	}
}

func TestRoomStore_Create_Get(t *testing.T) {
	s := NewRoomStore[string, string]()
	s.Create("room1", "state1")
	room, ok := s.Get("room1")
	if !ok {
		t.Fatal("Get returned false for existing room")
	}
	if room.ID != "room1" {
		t.Errorf("room ID %q, want room1", room.ID)
	}
	if room.State != "state1" {
		t.Errorf("room State %q, want state1", room.State)
	}

	_, ok = s.Get("nonexistent")
	if ok {
		t.Error("Get should return false for missing ID")
	}
	if ids := s.IDs(); len(ids) != 1 || ids[0] != "room1" {
		t.Errorf("IDs %v, want [room1]", ids)
	}
}

func TestRoomStore_Publish(t *testing.T) {
	s := NewRoomStore[string, string]()
	s.Create("r1", "x")
	hub, ok := s.Broadcaster("r1")
	if !ok {
		t.Fatal("Broadcaster returned false for existing room")
	}
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	s.Publish("r1", "event1")
	got := <-ch
	if got != "event1" {
		t.Errorf("got %q, want event1", got)
	}
}

func TestRoomStore_Publish_UnknownRoom(t *testing.T) {
	s := NewRoomStore[string, string]()
	s.Publish("nonexistent", "event")
	if _, ok := s.Broadcaster("nonexistent"); ok {
		t.Error("Broadcaster should not create rooms")
	}
}

func TestRoomStore_RunLoop_Idempotent(t *testing.T) {
	s := NewRoomStore[string, string]()
	s.Create("r1", "x")
	started := make(chan struct{}, 2)
	fn := func(ctx context.Context) {
		started <- struct{}{}
		<-ctx.Done()
	}
	if !s.RunLoop("r1", fn) {
		t.Fatal("first RunLoop should start a loop")
	}
	if s.RunLoop("r1", fn) {
		t.Error("second RunLoop should not start another loop")
	}
	<-started
	if !s.Running("r1") {
		t.Error("loop should be running")
	}
	s.StopLoop("r1")
	if s.Running("r1") {
		t.Error("loop should be stopped")
	}
	select {
	case <-started:
		t.Error("loop started twice")
	default:
	}
}

func TestRoomStore_Delete(t *testing.T) {
	s := NewRoomStore[string, string]()
	s.Create("r1", "x")
	hub, _ := s.Broadcaster("r1")
	ch := hub.Subscribe()
	stopped := make(chan struct{})
	s.RunLoop("r1", func(ctx context.Context) {
		<-ctx.Done()
		close(stopped)
	})

	s.Delete("r1")

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("loop not cancelled by Delete")
	}
	if _, ok := s.Get("r1"); ok {
		t.Error("room should be gone after Delete")
	}
	if _, open := <-ch; open {
		t.Error("subscriber channel should be closed after Delete")
	}
}

func TestRoomStore_StopLoop_NoPanicWhenNoLoop(t *testing.T) {
	s := NewRoomStore[string, string]()
	s.StopLoop("nonexistent")
}
