package capture

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// SimulatedRecorder stands in for a camera on the server. Permission and the
// persist decision are fixed at construction; saved media is kept in memory.
type SimulatedRecorder struct {
	granted bool
	persist bool
	clock   clockwork.Clock

	mu     sync.Mutex
	active map[string]Handle
	saved  []Media
}

// NewSimulatedRecorder returns a recorder that answers permission requests with
// granted and persist offers with persist. A nil clock uses the real clock.
func NewSimulatedRecorder(granted, persist bool, clock clockwork.Clock) *SimulatedRecorder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SimulatedRecorder{
		granted: granted,
		persist: persist,
		clock:   clock,
		active:  make(map[string]Handle),
	}
}

// RequestPermission reports the permission fixed at construction.
func (r *SimulatedRecorder) RequestPermission(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return r.granted, nil
}

// StartCapture opens a new in-memory capture. It fails when permission was not granted.
func (r *SimulatedRecorder) StartCapture(ctx context.Context) (Handle, error) {
	if !r.granted {
		return Handle{}, ErrNotCapturing
	}
	h := Handle{ID: uuid.New().String(), StartedAt: r.clock.Now().UTC()}
	r.mu.Lock()
	r.active[h.ID] = h
	r.mu.Unlock()
	return h, nil
}

// StopCapture closes h and returns media spanning its lifetime.
func (r *SimulatedRecorder) StopCapture(ctx context.Context, h Handle) (Media, error) {
	r.mu.Lock()
	started, ok := r.active[h.ID]
	delete(r.active, h.ID)
	r.mu.Unlock()
	if !ok {
		return Media{}, ErrUnknownHandle
	}
	return Media{
		ID:       uuid.New().String(),
		HandleID: h.ID,
		Duration: r.clock.Since(started.StartedAt),
	}, nil
}

// OfferToPersist keeps m when the recorder was built to persist.
func (r *SimulatedRecorder) OfferToPersist(ctx context.Context, m Media) (bool, error) {
	if !r.persist {
		return false, nil
	}
	r.mu.Lock()
	r.saved = append(r.saved, m)
	r.mu.Unlock()
	return true, nil
}

// Active returns the number of captures in progress.
func (r *SimulatedRecorder) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// Saved returns the media accepted so far.
func (r *SimulatedRecorder) Saved() []Media {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Media(nil), r.saved...)
}
