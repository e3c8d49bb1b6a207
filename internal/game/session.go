package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// TickInterval is the scheduling cadence of every game clock.
const TickInterval = time.Second

// ErrSessionClosed is returned for requests made after the session loop has exited.
var ErrSessionClosed = errors.New("session closed")

// Recorder is the recording collaborator as a session sees it.
// Dispatch must not block; Run processes dispatched signals until ctx is done.
type Recorder interface {
	RequestPermission(ctx context.Context) (bool, error)
	Dispatch(sig Signal)
	Run(ctx context.Context)
}

// Observer receives every update a session produces. Implementations must not block.
type Observer interface {
	Observe(u Update)
}

// Update is published after every event that reached the machine.
type Update struct {
	SessionID string
	At        time.Time
	Step      Step
	Snapshot  Snapshot
}

type requestKind int

const (
	requestSubmit requestKind = iota
	requestRestart
)

type request struct {
	kind  requestKind
	seq   uint64
	color Color
	reply chan reply
}

type reply struct {
	step Step
	err  error
}

// Session drives one Machine from a single goroutine. Ticks from the clock and
// requests from players are applied strictly one at a time.
type Session struct {
	ID        string
	CreatedAt time.Time

	clock    clockwork.Clock
	recorder Recorder
	observer Observer
	publish  func(Update)

	machine  *Machine
	requests chan request
	done     chan struct{}
	once     sync.Once

	mu   sync.RWMutex
	snap Snapshot
}

// NewSession wraps m. publish may be nil.
func NewSession(id string, m *Machine, clock clockwork.Clock, recorder Recorder, observer Observer, publish func(Update)) *Session {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if publish == nil {
		publish = func(Update) {}
	}
	return &Session{
		ID:        id,
		CreatedAt: clock.Now().UTC(),
		clock:     clock,
		recorder:  recorder,
		observer:  observer,
		publish:   publish,
		machine:   m,
		requests:  make(chan request),
		done:      make(chan struct{}),
		snap:      m.Snapshot(),
	}
}

// Snapshot returns the state as of the last processed event.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Done is closed when the loop exits.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Submit answers round seq with c and returns how the round was resolved.
func (s *Session) Submit(ctx context.Context, seq uint64, c Color) (Resolution, error) {
	step, err := s.do(ctx, request{kind: requestSubmit, seq: seq, color: c})
	if err != nil {
		return Resolution{}, err
	}
	return *step.Resolution, nil
}

// Restart sends a finished game back to the pre-game countdown.
func (s *Session) Restart(ctx context.Context) error {
	_, err := s.do(ctx, request{kind: requestRestart})
	return err
}

func (s *Session) do(ctx context.Context, req request) (Step, error) {
	req.reply = make(chan reply, 1)
	select {
	case s.requests <- req:
	case <-s.done:
		return Step{}, ErrSessionClosed
	case <-ctx.Done():
		return Step{}, ctx.Err()
	}
	select {
	case rep := <-req.reply:
		return rep.step, rep.err
	case <-s.done:
		return Step{}, ErrSessionClosed
	case <-ctx.Done():
		return Step{}, ctx.Err()
	}
}

// Run is the session loop. It asks for recording permission once, then serves
// ticks and requests until ctx is cancelled. Run may only be called once.
func (s *Session) Run(ctx context.Context) {
	started := false
	s.once.Do(func() { started = true })
	if !started {
		return
	}
	defer close(s.done)

	go s.recorder.Run(ctx)

	var ticker clockwork.Ticker
	var tickC <-chan time.Time
	stopTicker := func() {
		if ticker == nil {
			return
		}
		ticker.Stop()
		select {
		case <-ticker.Chan():
		default:
		}
		ticker, tickC = nil, nil
	}
	defer stopTicker()

	// arm drops the previous phase's ticker before the next phase gets its own.
	arm := func() {
		stopTicker()
		if s.machine.Phase().Ticking() {
			ticker = s.clock.NewTicker(TickInterval)
			tickC = ticker.Chan()
		}
	}
	// The next phase's ticker is armed before the step becomes observable.
	apply := func(step Step) {
		if step.PhaseChanged() {
			arm()
		}
		s.apply(step)
	}

	granted, err := s.recorder.RequestPermission(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error().Err(err).Str("session_id", s.ID).Msg("recording permission request failed")
		granted = false
	}
	step, err := s.machine.Begin(granted)
	if err != nil {
		log.Warn().Err(err).Str("session_id", s.ID).Msg("session unavailable")
	}
	arm()
	s.apply(step)

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("session_id", s.ID).Msg("session loop stopped")
			return
		case <-tickC:
			apply(s.machine.Tick())
		case req := <-s.requests:
			// A tick already due in this turn is applied before the request.
			select {
			case <-tickC:
				apply(s.machine.Tick())
			default:
			}
			step, err := s.handle(req)
			if err == nil {
				apply(step)
			}
			req.reply <- reply{step: step, err: err}
		}
	}
}

func (s *Session) handle(req request) (Step, error) {
	switch req.kind {
	case requestSubmit:
		return s.machine.SubmitRound(req.seq, req.color)
	case requestRestart:
		return s.machine.Restart()
	default:
		return Step{}, ErrInvalidPhase
	}
}

func (s *Session) apply(step Step) {
	snap := s.machine.Snapshot()
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	for _, sig := range step.Signals {
		s.recorder.Dispatch(sig)
	}

	if step.PhaseChanged() {
		log.Info().
			Str("session_id", s.ID).
			Str("from", step.From.String()).
			Str("to", step.To.String()).
			Int("score", snap.Score).
			Msg("phase changed")
	}
	if res := step.Resolution; res != nil {
		log.Debug().
			Str("session_id", s.ID).
			Uint64("round", res.Round.Seq).
			Str("selected", res.Selected.String()).
			Bool("correct", res.Correct).
			Bool("timed_out", res.TimedOut).
			Int("score", res.Score).
			Msg("round resolved")
	}

	u := Update{
		SessionID: s.ID,
		At:        s.clock.Now().UTC(),
		Step:      step,
		Snapshot:  snap,
	}
	s.observer.Observe(u)
	s.publish(u)
}

type nopObserver struct{}

func (nopObserver) Observe(Update) {}

// nopRecorder grants permission and ignores every signal.
type nopRecorder struct{}

func (nopRecorder) RequestPermission(context.Context) (bool, error) { return true, nil }
func (nopRecorder) Dispatch(Signal)                                 {}
func (nopRecorder) Run(context.Context)                             {}
