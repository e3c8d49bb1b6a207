// Package notify publishes session lifecycle events to external listeners.
package notify

import (
	"time"

	"github.com/google/uuid"

	"colortap/internal/game"
)

// Event types.
const (
	TypePhaseChanged  = "phase_changed"
	TypeRoundResolved = "round_resolved"
)

// Event is the envelope published for every lifecycle change of a session.
type Event struct {
	ID        string    `json:"eventId"`
	Type      string    `json:"eventType"`
	SessionID string    `json:"sessionId"`
	Timestamp time.Time `json:"timestamp"`
	Phase     string    `json:"phase"`
	Score     int       `json:"score"`

	From     string `json:"from,omitempty"`
	Round    uint64 `json:"round,omitempty"`
	Selected string `json:"selected,omitempty"`
	Correct  bool   `json:"correct,omitempty"`
	TimedOut bool   `json:"timedOut,omitempty"`
}

// EventsFromUpdate returns the events an update produces. Plain clock ticks produce none.
func EventsFromUpdate(u game.Update) []Event {
	var events []Event
	base := Event{
		SessionID: u.SessionID,
		Timestamp: u.At,
		Phase:     u.Snapshot.Phase.String(),
		Score:     u.Snapshot.Score,
	}
	if res := u.Step.Resolution; res != nil {
		e := base
		e.ID = uuid.New().String()
		e.Type = TypeRoundResolved
		e.Score = res.Score
		e.Round = res.Round.Seq
		e.Selected = res.Selected.String()
		e.Correct = res.Correct
		e.TimedOut = res.TimedOut
		events = append(events, e)
	}
	if u.Step.PhaseChanged() {
		e := base
		e.ID = uuid.New().String()
		e.Type = TypePhaseChanged
		e.From = u.Step.From.String()
		events = append(events, e)
	}
	return events
}
