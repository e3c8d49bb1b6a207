package capture

import (
	"context"

	"github.com/rs/zerolog/log"

	"colortap/internal/game"
)

// DefaultQueueSize is the signal queue size used when none is given.
const DefaultQueueSize = 8

var _ game.Recorder = (*Worker)(nil)

// Worker adapts a Recorder to the fire-and-forget signals a game session emits.
// Signals are queued and executed in order on the goroutine running Run, so a
// slow recorder never delays the session clocks.
type Worker struct {
	sessionID string
	recorder  Recorder
	queue     chan game.Signal

	// owned by Run
	handle *Handle
	media  *Media
}

// NewWorker returns a worker with a queue of the given size.
func NewWorker(sessionID string, recorder Recorder, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Worker{
		sessionID: sessionID,
		recorder:  recorder,
		queue:     make(chan game.Signal, queueSize),
	}
}

// RequestPermission asks the recorder directly; it is the one blocking call.
func (w *Worker) RequestPermission(ctx context.Context) (bool, error) {
	return w.recorder.RequestPermission(ctx)
}

// Dispatch enqueues sig without blocking. When the queue is full the signal is dropped.
func (w *Worker) Dispatch(sig game.Signal) {
	select {
	case w.queue <- sig:
	default:
		log.Warn().
			Str("session_id", w.sessionID).
			Str("signal", string(sig)).
			Msg("capture queue full, dropping signal")
	}
}

// Run executes queued signals until ctx is done. A capture still running at
// that point is stopped and its media discarded.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.teardown(context.WithoutCancel(ctx))
			return
		case sig := <-w.queue:
			w.exec(ctx, sig)
		}
	}
}

func (w *Worker) exec(ctx context.Context, sig game.Signal) {
	switch sig {
	case game.SignalStartCapture:
		w.start(ctx)
	case game.SignalStopCapture:
		w.stop(ctx)
	case game.SignalOfferPersist:
		w.offer(ctx)
	default:
		log.Warn().
			Str("session_id", w.sessionID).
			Str("signal", string(sig)).
			Msg("unknown capture signal - ignoring")
	}
}

func (w *Worker) start(ctx context.Context) {
	if w.handle != nil {
		log.Warn().Str("session_id", w.sessionID).Str("handle", w.handle.ID).Msg("capture already running, restarting")
		w.stop(ctx)
	}
	h, err := w.recorder.StartCapture(ctx)
	if err != nil {
		log.Error().Err(err).Str("session_id", w.sessionID).Msg("failed to start capture")
		return
	}
	w.handle = &h
	w.media = nil
	log.Info().Str("session_id", w.sessionID).Str("handle", h.ID).Msg("capture started")
}

func (w *Worker) stop(ctx context.Context) {
	if w.handle == nil {
		log.Warn().Str("session_id", w.sessionID).Msg("stop requested with no capture running")
		return
	}
	h := *w.handle
	w.handle = nil
	m, err := w.recorder.StopCapture(ctx, h)
	if err != nil {
		log.Error().Err(err).Str("session_id", w.sessionID).Str("handle", h.ID).Msg("failed to stop capture")
		return
	}
	w.media = &m
	log.Info().
		Str("session_id", w.sessionID).
		Str("media", m.ID).
		Dur("duration", m.Duration).
		Msg("capture stopped")
}

func (w *Worker) offer(ctx context.Context) {
	if w.media == nil {
		log.Warn().Str("session_id", w.sessionID).Msg("nothing to persist")
		return
	}
	m := *w.media
	w.media = nil
	saved, err := w.recorder.OfferToPersist(ctx, m)
	if err != nil {
		log.Error().Err(err).Str("session_id", w.sessionID).Str("media", m.ID).Msg("failed to offer media")
		return
	}
	if !saved {
		log.Info().Str("session_id", w.sessionID).Str("media", m.ID).Msg("media discarded")
		return
	}
	log.Info().Str("session_id", w.sessionID).Str("media", m.ID).Msg("media saved")
}

func (w *Worker) teardown(ctx context.Context) {
	if w.handle == nil {
		return
	}
	h := *w.handle
	w.handle = nil
	if _, err := w.recorder.StopCapture(ctx, h); err != nil {
		log.Error().Err(err).Str("session_id", w.sessionID).Str("handle", h.ID).Msg("failed to stop capture on teardown")
		return
	}
	log.Debug().Str("session_id", w.sessionID).Str("handle", h.ID).Msg("capture stopped on teardown")
}
