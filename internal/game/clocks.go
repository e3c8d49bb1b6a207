package game

import "colortap/pkg/realtime"

const (
	// SessionDuration is the default length of a session in seconds.
	SessionDuration = 30
	// DecisionDuration is the default per-round answer window in seconds.
	DecisionDuration = 5
	// CountdownDuration is the default pre-game countdown in seconds.
	CountdownDuration = 3
)

// GameClock counts down the whole session. It is reset once per session.
type GameClock struct {
	c realtime.Countdown
}

// NewGameClock returns a full session clock.
func NewGameClock(seconds int) *GameClock {
	return &GameClock{c: realtime.NewCountdown(seconds)}
}

// Tick advances one second and returns the remaining seconds and the bar progress.
func (g *GameClock) Tick() (int, float64) {
	remaining := g.c.Tick()
	return remaining, g.c.Progress()
}

// Expired reports whether the session has run out of time.
func (g *GameClock) Expired() bool { return g.c.Expired() }

// Reset restores the full session duration.
func (g *GameClock) Reset() { g.c.Reset() }

// Remaining returns the seconds left in the session.
func (g *GameClock) Remaining() int { return g.c.Remaining() }

// Progress returns the remaining fraction of the session in [0, 1].
func (g *GameClock) Progress() float64 { return g.c.Progress() }

// Duration returns the full session length in seconds.
func (g *GameClock) Duration() int { return g.c.Total() }

// DecisionClock counts down a single round. It is reset every time a round is created.
type DecisionClock struct {
	c realtime.Countdown
}

// NewDecisionClock returns a full decision clock.
func NewDecisionClock(seconds int) *DecisionClock {
	return &DecisionClock{c: realtime.NewCountdown(seconds)}
}

// Tick advances one second and returns the remaining seconds.
func (d *DecisionClock) Tick() int {
	return d.c.Tick()
}

// Expired reports whether the round's answer window has closed.
func (d *DecisionClock) Expired() bool { return d.c.Expired() }

// Reset restores the full answer window.
func (d *DecisionClock) Reset() { d.c.Reset() }

// Remaining returns the seconds left to answer.
func (d *DecisionClock) Remaining() int { return d.c.Remaining() }

// Duration returns the full answer window in seconds.
func (d *DecisionClock) Duration() int { return d.c.Total() }
