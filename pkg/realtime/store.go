package realtime

import (
	"context"
	"sync"
)

// Room holds state and a broadcaster for one room.
type Room[T any, E any] struct {
	ID    string
	State T
	hub   *Broadcaster[E]
}

// RoomStore manages rooms, their broadcasters and their background loops.
type RoomStore[T any, E any] struct {
	mu    sync.RWMutex
	rooms map[string]*Room[T, E]
	loops map[string]loop
}

type loop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRoomStore creates an empty room store.
func NewRoomStore[T any, E any]() *RoomStore[T, E] {
	return &RoomStore[T, E]{
		rooms: make(map[string]*Room[T, E]),
		loops: make(map[string]loop),
	}
}

// Create adds a room with the given id and state, and a new Broadcaster.
func (s *RoomStore[T, E]) Create(id string, state T) *Room[T, E] {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &Room[T, E]{ID: id, State: state, hub: NewBroadcaster[E]()}
	s.rooms[id] = r
	return r
}

// Get returns the room by ID if it exists.
func (s *RoomStore[T, E]) Get(id string) (*Room[T, E], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r, ok
}

// IDs returns the ids of all rooms.
func (s *RoomStore[T, E]) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	return ids
}

// Publish notifies subscribers of the room's broadcaster. Unknown rooms are ignored.
func (s *RoomStore[T, E]) Publish(id string, event E) {
	hub, ok := s.Broadcaster(id)
	if !ok {
		return
	}
	hub.Publish(event)
}

// Broadcaster returns the broadcaster for the room.
func (s *RoomStore[T, E]) Broadcaster(id string) (*Broadcaster[E], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, false
	}
	return r.hub, true
}

// RunLoop starts fn in its own goroutine with a cancelable context.
// If a loop already runs for id, it is not started again. Returns whether a loop was started.
func (s *RoomStore[T, E]) RunLoop(id string, fn func(ctx context.Context)) bool {
	s.mu.Lock()
	if _, ok := s.loops[id]; ok {
		s.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.loops[id] = loop{cancel: cancel, done: done}
	s.mu.Unlock()

	go func() {
		defer func() {
			close(done)
			s.mu.Lock()
			if l, ok := s.loops[id]; ok && l.done == done {
				delete(s.loops, id)
			}
			s.mu.Unlock()
		}()
		fn(ctx)
	}()
	return true
}

// Running reports whether a loop is active for id.
func (s *RoomStore[T, E]) Running(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.loops[id]
	return ok
}

// StopLoop cancels the loop for id and waits for it to return.
func (s *RoomStore[T, E]) StopLoop(id string) {
	s.mu.RLock()
	l, ok := s.loops[id]
	s.mu.RUnlock()
	if !ok {
		return
	}
	l.cancel()
	<-l.done
}

// Delete stops the room's loop, closes its broadcaster and forgets the room.
func (s *RoomStore[T, E]) Delete(id string) {
	s.StopLoop(id)
	s.mu.Lock()
	r, ok := s.rooms[id]
	delete(s.rooms, id)
	s.mu.Unlock()
	if ok {
		r.hub.Close()
	}
}
