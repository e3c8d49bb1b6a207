package game

import (
	"errors"
	"testing"
)

func newTestMachine(t *testing.T, settings Settings, palette []Color) *Machine {
	t.Helper()
	set, err := NewColorSet(palette, seeded(1))
	if err != nil {
		t.Fatalf("NewColorSet: %v", err)
	}
	m, err := NewMachine(settings, NewRoundGenerator(set))
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	return m
}

// startPlaying begins the machine and runs the pre-game countdown to completion.
func startPlaying(t *testing.T, m *Machine) Step {
	t.Helper()
	if _, err := m.Begin(true); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	var step Step
	for i := 0; i < m.settings.CountdownSeconds; i++ {
		step = m.Tick()
	}
	if m.Phase() != PhasePlaying {
		t.Fatalf("Phase %s after countdown, want playing", m.Phase())
	}
	return step
}

func wrongOption(t *testing.T, r *Round) Color {
	t.Helper()
	for _, c := range r.Options {
		if c != r.DisplayColor {
			return c
		}
	}
	t.Fatal("round has no wrong option")
	return NoColor
}

func hasSignal(step Step, sig Signal) bool {
	for _, s := range step.Signals {
		if s == sig {
			return true
		}
	}
	return false
}

func TestNewMachine_InvalidSettings(t *testing.T) {
	set, _ := NewColorSet(DefaultPalette, seeded(1))
	_, err := NewMachine(Settings{SessionSeconds: 30, DecisionSeconds: 0, CountdownSeconds: 3}, NewRoundGenerator(set))
	if !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("err %v, want ErrInvalidSettings", err)
	}
	_, err = NewMachine(DefaultSettings(), nil)
	if !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("nil generator: err %v, want ErrInvalidSettings", err)
	}
}

func TestMachine_InitialState(t *testing.T) {
	m := newTestMachine(t, DefaultSettings(), DefaultPalette)
	snap := m.Snapshot()
	if snap.Phase != PhaseIdle {
		t.Errorf("Phase %s, want idle", snap.Phase)
	}
	if snap.Score != 0 || snap.SessionRemaining != 30 || snap.DecisionRemaining != 5 {
		t.Errorf("unexpected initial snapshot: %+v", snap)
	}
	if snap.Round != nil {
		t.Error("Round should be nil before play")
	}
	if step := m.Tick(); step.PhaseChanged() || m.Snapshot() != snap {
		t.Error("Tick in idle should be a no-op")
	}
}

func TestMachine_BeginDenied(t *testing.T) {
	m := newTestMachine(t, DefaultSettings(), DefaultPalette)
	_, err := m.Begin(false)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err %v, want ErrPermissionDenied", err)
	}
	if m.Phase() != PhaseIdle {
		t.Errorf("Phase %s, want idle", m.Phase())
	}
	if !m.Snapshot().Unavailable {
		t.Error("machine should report unavailable")
	}
	// no retry: a later grant does not recover
	if _, err := m.Begin(true); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("second Begin err %v, want ErrPermissionDenied", err)
	}
	m.Tick()
	if m.Phase() != PhaseIdle {
		t.Errorf("Phase %s after tick, want idle", m.Phase())
	}
}

func TestMachine_BeginTwice(t *testing.T) {
	m := newTestMachine(t, DefaultSettings(), DefaultPalette)
	step, err := m.Begin(true)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if step.From != PhaseIdle || step.To != PhaseCountdown {
		t.Errorf("step %s->%s, want idle->countdown", step.From, step.To)
	}
	if _, err := m.Begin(true); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("err %v, want ErrInvalidPhase", err)
	}
}

func TestMachine_Countdown(t *testing.T) {
	m := newTestMachine(t, DefaultSettings(), DefaultPalette)
	_, _ = m.Begin(true)
	if got := m.Snapshot().Countdown; got != 3 {
		t.Fatalf("Countdown %d, want 3", got)
	}
	if _, err := m.Submit("red"); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("Submit during countdown err %v, want ErrNotPlaying", err)
	}
	for want := 2; want >= 1; want-- {
		step := m.Tick()
		if step.PhaseChanged() || len(step.Signals) != 0 {
			t.Fatalf("unexpected step during countdown: %+v", step)
		}
		snap := m.Snapshot()
		if snap.Countdown != want {
			t.Errorf("Countdown %d, want %d", snap.Countdown, want)
		}
		if snap.SessionRemaining != 30 || snap.DecisionRemaining != 5 || snap.Score != 0 {
			t.Errorf("clocks or score moved during countdown: %+v", snap)
		}
	}
	step := m.Tick()
	if step.To != PhasePlaying {
		t.Fatalf("step.To %s, want playing", step.To)
	}
	if len(step.Signals) != 1 || step.Signals[0] != SignalStartCapture {
		t.Errorf("Signals %v, want [start_capture]", step.Signals)
	}
	snap := m.Snapshot()
	if snap.Round == nil {
		t.Fatal("first round should be generated on entering play")
	}
	if snap.SessionRemaining != 30 || snap.DecisionRemaining != 5 || snap.Score != 0 {
		t.Errorf("unexpected playing snapshot: %+v", snap)
	}
}

func TestMachine_SubmitCorrect(t *testing.T) {
	m := newTestMachine(t, DefaultSettings(), DefaultPalette)
	startPlaying(t, m)
	m.Tick()
	m.Tick()
	before := m.Snapshot()
	if before.DecisionRemaining != 3 {
		t.Fatalf("DecisionRemaining %d, want 3", before.DecisionRemaining)
	}

	step, err := m.Submit(before.Round.DisplayColor)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if step.Resolution == nil || !step.Resolution.Correct || step.Resolution.Delta != 1 {
		t.Fatalf("unexpected resolution: %+v", step.Resolution)
	}
	after := m.Snapshot()
	if after.Score != 1 {
		t.Errorf("Score %d, want 1", after.Score)
	}
	if after.Round.Seq != before.Round.Seq+1 {
		t.Errorf("Round.Seq %d, want %d", after.Round.Seq, before.Round.Seq+1)
	}
	if after.DecisionRemaining != 5 {
		t.Errorf("DecisionRemaining %d, want 5", after.DecisionRemaining)
	}
	if after.SessionRemaining != before.SessionRemaining {
		t.Errorf("SessionRemaining %d, want %d (submit must not touch the session clock)", after.SessionRemaining, before.SessionRemaining)
	}
}

func TestMachine_SubmitWrongAndEmpty(t *testing.T) {
	m := newTestMachine(t, DefaultSettings(), DefaultPalette)
	startPlaying(t, m)

	round := m.Snapshot().Round
	step, err := m.Submit(wrongOption(t, round))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if step.Resolution.Correct || step.Resolution.Delta != -1 || step.Resolution.TimedOut {
		t.Errorf("unexpected resolution: %+v", step.Resolution)
	}
	if _, err := m.Submit(NoColor); err != nil {
		t.Fatalf("Submit empty: %v", err)
	}
	if _, err := m.Submit("not-a-color"); err != nil {
		t.Fatalf("Submit unknown color: %v", err)
	}
	if got := m.Snapshot().Score; got != -3 {
		t.Errorf("Score %d, want -3 (no floor)", got)
	}
}

func TestMachine_DecisionTimeout(t *testing.T) {
	m := newTestMachine(t, DefaultSettings(), DefaultPalette)
	startPlaying(t, m)
	first := m.Snapshot().Round

	var step Step
	for i := 0; i < 4; i++ {
		step = m.Tick()
		if step.Resolution != nil {
			t.Fatalf("round resolved early at tick %d", i+1)
		}
	}
	step = m.Tick()
	if step.Resolution == nil {
		t.Fatal("round should resolve when the decision clock expires")
	}
	if !step.Resolution.TimedOut || step.Resolution.Selected != NoColor || step.Resolution.Delta != -1 {
		t.Errorf("unexpected resolution: %+v", step.Resolution)
	}
	if step.Resolution.Round.Seq != first.Seq {
		t.Errorf("resolved round %d, want %d", step.Resolution.Round.Seq, first.Seq)
	}
	snap := m.Snapshot()
	if snap.Score != -1 {
		t.Errorf("Score %d, want -1", snap.Score)
	}
	if snap.Round.Seq != first.Seq+1 {
		t.Errorf("Round.Seq %d, want %d", snap.Round.Seq, first.Seq+1)
	}
	if snap.DecisionRemaining != 5 {
		t.Errorf("DecisionRemaining %d, want 5", snap.DecisionRemaining)
	}
	if snap.SessionRemaining != 25 {
		t.Errorf("SessionRemaining %d, want 25", snap.SessionRemaining)
	}
}

func TestMachine_SessionExpiryWinsTie(t *testing.T) {
	m := newTestMachine(t, DefaultSettings(), DefaultPalette)
	startPlaying(t, m)

	var last Step
	for i := 1; i <= 30; i++ {
		last = m.Tick()
		if i < 30 && last.PhaseChanged() {
			t.Fatalf("phase changed early at tick %d", i)
		}
	}
	if last.To != PhaseGameOver {
		t.Fatalf("step.To %s, want game_over", last.To)
	}
	if last.Resolution != nil {
		t.Error("no round may resolve on the tick that ends the session")
	}
	if !hasSignal(last, SignalStopCapture) || !hasSignal(last, SignalOfferPersist) {
		t.Errorf("Signals %v, want stop_capture and offer_persist", last.Signals)
	}
	if last.Signals[0] != SignalStopCapture {
		t.Errorf("first signal %s, want stop_capture", last.Signals[0])
	}
	snap := m.Snapshot()
	// timeouts at ticks 5,10,15,20,25; the one at 30 loses to the session boundary
	if snap.Score != -5 {
		t.Errorf("Score %d, want -5", snap.Score)
	}
	if snap.SessionRemaining != 0 || snap.Progress != 0 {
		t.Errorf("session clock %d progress %v, want 0 0", snap.SessionRemaining, snap.Progress)
	}
	if snap.Round != nil {
		t.Error("Round should be cleared at game over")
	}
	if _, err := m.Submit("red"); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("Submit after game over err %v, want ErrNotPlaying", err)
	}
	if step := m.Tick(); step.PhaseChanged() || m.Snapshot().Score != -5 {
		t.Error("Tick in game over should be a no-op")
	}
}

func TestMachine_SessionExpiryWinsTie_ShortSession(t *testing.T) {
	m := newTestMachine(t, Settings{SessionSeconds: 4, DecisionSeconds: 2, CountdownSeconds: 1}, DefaultPalette)
	startPlaying(t, m)
	m.Tick()
	if step := m.Tick(); step.Resolution == nil {
		t.Fatal("expected a timeout at tick 2")
	}
	m.Tick()
	step := m.Tick()
	if step.To != PhaseGameOver || step.Resolution != nil {
		t.Errorf("step %+v, want game over without resolution", step)
	}
	if got := m.Snapshot().Score; got != -1 {
		t.Errorf("Score %d, want -1", got)
	}
}

func TestMachine_StaleSubmitRejected(t *testing.T) {
	m := newTestMachine(t, DefaultSettings(), DefaultPalette)
	startPlaying(t, m)
	stale := m.Snapshot().Round

	for i := 0; i < 5; i++ {
		m.Tick()
	}
	before := m.Snapshot()
	if before.Score != -1 {
		t.Fatalf("Score %d, want -1 after timeout", before.Score)
	}

	_, err := m.SubmitRound(stale.Seq, stale.DisplayColor)
	if !errors.Is(err, ErrDoubleResolution) {
		t.Fatalf("err %v, want ErrDoubleResolution", err)
	}
	after := m.Snapshot()
	if after.Score != before.Score || after.Round.Seq != before.Round.Seq {
		t.Errorf("stale submit changed state: before %+v after %+v", before, after)
	}

	if _, err := m.SubmitRound(after.Round.Seq+10, "red"); !errors.Is(err, ErrUnknownRound) {
		t.Errorf("future round err %v, want ErrUnknownRound", err)
	}
}

func TestMachine_SubmitSameRoundTwice(t *testing.T) {
	m := newTestMachine(t, DefaultSettings(), DefaultPalette)
	startPlaying(t, m)
	round := m.Snapshot().Round
	if _, err := m.SubmitRound(round.Seq, round.DisplayColor); err != nil {
		t.Fatalf("SubmitRound: %v", err)
	}
	if _, err := m.SubmitRound(round.Seq, round.DisplayColor); !errors.Is(err, ErrDoubleResolution) {
		t.Errorf("err %v, want ErrDoubleResolution", err)
	}
	if got := m.Snapshot().Score; got != 1 {
		t.Errorf("Score %d, want 1", got)
	}
}

func TestMachine_Restart(t *testing.T) {
	m := newTestMachine(t, DefaultSettings(), DefaultPalette)
	if _, err := m.Restart(); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Restart from idle err %v, want ErrInvalidPhase", err)
	}
	startPlaying(t, m)
	if _, err := m.Restart(); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Restart while playing err %v, want ErrInvalidPhase", err)
	}
	round := m.Snapshot().Round
	_, _ = m.Submit(round.DisplayColor)
	for m.Phase() != PhaseGameOver {
		m.Tick()
	}

	step, err := m.Restart()
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if step.To != PhaseCountdown {
		t.Errorf("step.To %s, want countdown", step.To)
	}
	if len(step.Signals) != 0 {
		t.Errorf("Signals %v, want none", step.Signals)
	}
	snap := m.Snapshot()
	if snap.Score != 0 || snap.SessionRemaining != 30 || snap.DecisionRemaining != 5 || snap.Countdown != 3 {
		t.Errorf("unexpected snapshot after restart: %+v", snap)
	}
	if snap.Round != nil || snap.Last != nil {
		t.Error("round state should be cleared on restart")
	}

	var last Step
	for i := 0; i < 3; i++ {
		last = m.Tick()
	}
	if last.To != PhasePlaying || !hasSignal(last, SignalStartCapture) {
		t.Errorf("step %+v, want playing with start_capture", last)
	}
}

func TestMachine_ClocksStayInRange(t *testing.T) {
	m := newTestMachine(t, DefaultSettings(), DefaultPalette)
	startPlaying(t, m)
	prevSession := m.Snapshot().SessionRemaining
	for i := 0; m.Phase() == PhasePlaying; i++ {
		if i%3 == 0 {
			snap := m.Snapshot()
			_, _ = m.Submit(snap.Round.Options[i%OptionsPerRound])
		}
		m.Tick()
		snap := m.Snapshot()
		if snap.SessionRemaining > prevSession {
			t.Fatalf("session clock went up from %d to %d", prevSession, snap.SessionRemaining)
		}
		if snap.SessionRemaining < 0 || snap.SessionRemaining > 30 {
			t.Fatalf("SessionRemaining %d out of range", snap.SessionRemaining)
		}
		if snap.DecisionRemaining < 0 || snap.DecisionRemaining > 5 {
			t.Fatalf("DecisionRemaining %d out of range", snap.DecisionRemaining)
		}
		if snap.Progress < 0 || snap.Progress > 1 {
			t.Fatalf("Progress %v out of range", snap.Progress)
		}
		prevSession = snap.SessionRemaining
	}
}

func TestMachine_Scenario(t *testing.T) {
	palette := []Color{"red", "blue", "green", "yellow", "purple"}
	m := newTestMachine(t, DefaultSettings(), palette)
	startPlaying(t, m)

	round := m.Snapshot().Round
	if _, err := m.Submit(round.DisplayColor); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	snap := m.Snapshot()
	if snap.Score != 1 || snap.DecisionRemaining != 5 || snap.Round.Seq != round.Seq+1 {
		t.Fatalf("after correct answer: %+v", snap)
	}

	if _, err := m.Submit(wrongOption(t, snap.Round)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := m.Snapshot().Score; got != 0 {
		t.Fatalf("Score %d, want 0", got)
	}

	current := m.Snapshot().Round
	for i := 0; i < 5; i++ {
		m.Tick()
	}
	snap = m.Snapshot()
	if snap.Score != -1 {
		t.Errorf("Score %d, want -1 after timeout", snap.Score)
	}
	if snap.Round.Seq == current.Seq {
		t.Error("a new round should appear after the timeout")
	}
	if snap.Last == nil || !snap.Last.TimedOut {
		t.Errorf("Last %+v, want timed out resolution", snap.Last)
	}
}

func TestMachine_SnapshotIsCopy(t *testing.T) {
	m := newTestMachine(t, DefaultSettings(), DefaultPalette)
	startPlaying(t, m)
	snap := m.Snapshot()
	original := snap.Round.Options[0]
	snap.Round.Options[0] = "black"
	if got := m.Snapshot().Round.Options[0]; got != original {
		t.Errorf("Options[0] %q, want %q", got, original)
	}
}
