package game

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"colortap/pkg/realtime"
)

// StoreConfig wires the collaborators every new session gets.
type StoreConfig struct {
	Settings Settings
	Palette  []Color
	Clock    clockwork.Clock
	// NewSource returns the randomness for one session; defaults to a time-seeded source.
	NewSource func() Source
	// NewRecorder returns the recording collaborator for one session.
	NewRecorder func(sessionID string) Recorder
	Observer    Observer
}

// Store holds sessions and delegates to realtime.RoomStore for loops and broadcast.
type Store struct {
	r   *realtime.RoomStore[*Session, Update]
	cfg StoreConfig
}

// NewStore validates the configuration up front: a palette that cannot build a
// round is a startup error, never a round-generation error.
func NewStore(cfg StoreConfig) (*Store, error) {
	if len(cfg.Palette) == 0 {
		cfg.Palette = DefaultPalette
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.NewSource == nil {
		cfg.NewSource = NewSource
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}
	if _, err := NewColorSet(cfg.Palette, cfg.NewSource()); err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	return &Store{r: realtime.NewRoomStore[*Session, Update](), cfg: cfg}, nil
}

// CreateSession builds a session and starts its loop.
func (s *Store) CreateSession() (*Session, error) {
	colors, err := NewColorSet(s.cfg.Palette, s.cfg.NewSource())
	if err != nil {
		return nil, err
	}
	machine, err := NewMachine(s.cfg.Settings, NewRoundGenerator(colors))
	if err != nil {
		return nil, err
	}
	id := uuid.New().String()
	var recorder Recorder
	if s.cfg.NewRecorder != nil {
		recorder = s.cfg.NewRecorder(id)
	}
	publish := func(u Update) { s.r.Publish(id, u) }
	session := NewSession(id, machine, s.cfg.Clock, recorder, s.cfg.Observer, publish)
	s.r.Create(id, session)
	s.r.RunLoop(id, session.Run)
	log.Info().Str("session_id", id).Msg("session created")
	return session, nil
}

// GetSession returns a session by ID if it exists.
func (s *Store) GetSession(id string) (*Session, bool) {
	room, ok := s.r.Get(id)
	if !ok {
		return nil, false
	}
	return room.State, true
}

// Broadcaster returns the update broadcaster for a session.
func (s *Store) Broadcaster(id string) (*realtime.Broadcaster[Update], bool) {
	return s.r.Broadcaster(id)
}

// Sessions returns all live sessions, oldest first.
func (s *Store) Sessions() []*Session {
	ids := s.r.IDs()
	out := make([]*Session, 0, len(ids))
	for _, id := range ids {
		if session, ok := s.GetSession(id); ok {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Close tears a session down: its loop and timers stop and subscribers are disconnected.
func (s *Store) Close(id string) {
	s.r.Delete(id)
	log.Info().Str("session_id", id).Msg("session closed")
}

// CloseAll closes every session.
func (s *Store) CloseAll() {
	for _, id := range s.r.IDs() {
		s.Close(id)
	}
}
