package game

import (
	"errors"
	"fmt"

	"colortap/pkg/realtime"
)

// Phase is the top-level state of a game.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseCountdown Phase = "countdown"
	PhasePlaying   Phase = "playing"
	PhaseGameOver  Phase = "game_over"
)

func (p Phase) String() string {
	return string(p)
}

// Ticking reports whether the phase consumes once-per-second ticks.
func (p Phase) Ticking() bool {
	return p == PhaseCountdown || p == PhasePlaying
}

var (
	ErrPermissionDenied = errors.New("recording permission denied")
	ErrNotPlaying       = errors.New("game not in progress")
	ErrInvalidPhase     = errors.New("invalid phase")
	ErrDoubleResolution = errors.New("round already resolved")
	ErrUnknownRound     = errors.New("unknown round")
	ErrInvalidSettings  = errors.New("invalid settings")
)

// Signal is a lifecycle instruction for the recording collaborator.
type Signal string

const (
	SignalStartCapture Signal = "start_capture"
	SignalStopCapture  Signal = "stop_capture"
	SignalOfferPersist Signal = "offer_persist"
)

// Settings are the clock lengths in seconds.
type Settings struct {
	SessionSeconds   int
	DecisionSeconds  int
	CountdownSeconds int
}

// DefaultSettings returns the stock 30s session, 5s decision window and 3s countdown.
func DefaultSettings() Settings {
	return Settings{
		SessionSeconds:   SessionDuration,
		DecisionSeconds:  DecisionDuration,
		CountdownSeconds: CountdownDuration,
	}
}

// Validate checks that every clock has a positive length.
func (s Settings) Validate() error {
	if s.SessionSeconds <= 0 || s.DecisionSeconds <= 0 || s.CountdownSeconds <= 0 {
		return fmt.Errorf("%w: session=%d decision=%d countdown=%d", ErrInvalidSettings, s.SessionSeconds, s.DecisionSeconds, s.CountdownSeconds)
	}
	return nil
}

// Resolution records how a round ended.
type Resolution struct {
	Round    Round
	Selected Color
	Correct  bool
	TimedOut bool
	Delta    int
	Score    int
}

// Step reports what a single event did to the machine.
type Step struct {
	From       Phase
	To         Phase
	Resolution *Resolution
	Signals    []Signal
}

// PhaseChanged reports whether the event moved the machine to another phase.
func (s Step) PhaseChanged() bool {
	return s.From != s.To
}

// Machine sequences idle, countdown, playing and game over, and owns the score,
// both clocks and the current round. It is not safe for concurrent use; a
// Session serializes every event through one goroutine.
type Machine struct {
	settings    Settings
	rounds      *RoundGenerator
	session     *GameClock
	decision    *DecisionClock
	countdown   realtime.Countdown
	phase       Phase
	unavailable bool
	score       int
	round       *Round
	last        *Resolution
	resolved    uint64
}

// NewMachine returns an idle machine.
func NewMachine(settings Settings, rounds *RoundGenerator) (*Machine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if rounds == nil {
		return nil, fmt.Errorf("%w: nil round generator", ErrInvalidSettings)
	}
	return &Machine{
		settings:  settings,
		rounds:    rounds,
		session:   NewGameClock(settings.SessionSeconds),
		decision:  NewDecisionClock(settings.DecisionSeconds),
		countdown: realtime.NewCountdown(settings.CountdownSeconds),
		phase:     PhaseIdle,
	}, nil
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Begin leaves Idle once recording permission is known. A denial is permanent:
// the machine stays Idle and every later Begin fails with ErrPermissionDenied.
func (m *Machine) Begin(granted bool) (Step, error) {
	step := Step{From: m.phase, To: m.phase}
	if m.unavailable {
		return step, ErrPermissionDenied
	}
	if m.phase != PhaseIdle {
		return step, fmt.Errorf("%w: begin from %s", ErrInvalidPhase, m.phase)
	}
	if !granted {
		m.unavailable = true
		return step, ErrPermissionDenied
	}
	m.enterCountdown()
	step.To = m.phase
	return step, nil
}

// Tick advances the machine by one second.
//
// During play both clocks tick unconditionally. When both expire on the same
// tick the session boundary wins and no further round is resolved.
func (m *Machine) Tick() Step {
	step := Step{From: m.phase, To: m.phase}
	switch m.phase {
	case PhaseCountdown:
		if m.countdown.Tick() > 0 {
			return step
		}
		m.enterPlaying()
		step.To = m.phase
		step.Signals = []Signal{SignalStartCapture}
	case PhasePlaying:
		m.session.Tick()
		m.decision.Tick()
		if m.session.Expired() {
			m.enterGameOver()
			step.To = m.phase
			step.Signals = []Signal{SignalStopCapture, SignalOfferPersist}
			return step
		}
		if m.decision.Expired() {
			res := m.resolve(NoColor, true)
			step.Resolution = &res
		}
	}
	return step
}

// Submit answers the current round with c.
func (m *Machine) Submit(c Color) (Step, error) {
	if m.phase != PhasePlaying || m.round == nil {
		return Step{From: m.phase, To: m.phase}, ErrNotPlaying
	}
	return m.SubmitRound(m.round.Seq, c)
}

// SubmitRound answers round seq with c. An answer for a round that was already
// resolved, by a timeout or an earlier answer, is rejected with ErrDoubleResolution.
func (m *Machine) SubmitRound(seq uint64, c Color) (Step, error) {
	step := Step{From: m.phase, To: m.phase}
	if m.phase != PhasePlaying || m.round == nil {
		return step, ErrNotPlaying
	}
	if seq <= m.resolved {
		return step, fmt.Errorf("%w: round %d", ErrDoubleResolution, seq)
	}
	if seq != m.round.Seq {
		return step, fmt.Errorf("%w: round %d, current %d", ErrUnknownRound, seq, m.round.Seq)
	}
	res := m.resolve(c, false)
	step.Resolution = &res
	return step, nil
}

// Restart returns a finished game to the pre-game countdown with a zero score.
// Capture is not restarted here; it starts again when the countdown ends.
func (m *Machine) Restart() (Step, error) {
	step := Step{From: m.phase, To: m.phase}
	if m.phase != PhaseGameOver {
		return step, fmt.Errorf("%w: restart from %s", ErrInvalidPhase, m.phase)
	}
	m.score = 0
	m.session.Reset()
	m.decision.Reset()
	m.round = nil
	m.last = nil
	m.enterCountdown()
	step.To = m.phase
	return step, nil
}

func (m *Machine) enterCountdown() {
	m.countdown.Reset()
	m.phase = PhaseCountdown
}

func (m *Machine) enterPlaying() {
	m.session.Reset()
	m.score = 0
	m.last = nil
	m.phase = PhasePlaying
	m.startRound()
}

func (m *Machine) enterGameOver() {
	m.round = nil
	m.phase = PhaseGameOver
}

// startRound is the only place a round is created, and so the only place the decision clock resets during play.
func (m *Machine) startRound() {
	round, err := m.rounds.NextRound()
	if err != nil {
		// NewColorSet rejects palettes too small to build a round.
		panic(fmt.Sprintf("round generation: %v", err))
	}
	m.round = &round
	m.decision.Reset()
}

func (m *Machine) resolve(selected Color, timedOut bool) Resolution {
	round := *m.round
	correct := round.IsCorrect(selected)
	delta := -1
	if correct {
		delta = 1
	}
	m.score += delta
	m.resolved = round.Seq
	res := Resolution{
		Round:    round,
		Selected: selected,
		Correct:  correct,
		TimedOut: timedOut,
		Delta:    delta,
		Score:    m.score,
	}
	m.last = &res
	m.startRound()
	return res
}

// Snapshot is a copy of everything the presentation layer may show.
type Snapshot struct {
	Phase             Phase
	Unavailable       bool
	Countdown         int
	Score             int
	SessionRemaining  int
	SessionDuration   int
	Progress          float64
	DecisionRemaining int
	DecisionDuration  int
	Round             *Round
	Last              *Resolution
}

// Snapshot returns a deep copy of the presentation state.
func (m *Machine) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:             m.phase,
		Unavailable:       m.unavailable,
		Countdown:         m.countdown.Remaining(),
		Score:             m.score,
		SessionRemaining:  m.session.Remaining(),
		SessionDuration:   m.session.Duration(),
		Progress:          m.session.Progress(),
		DecisionRemaining: m.decision.Remaining(),
		DecisionDuration:  m.decision.Duration(),
	}
	if m.round != nil {
		r := m.round.clone()
		snap.Round = &r
	}
	if m.last != nil {
		last := *m.last
		last.Round = last.Round.clone()
		snap.Last = &last
	}
	return snap
}
