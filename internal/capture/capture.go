// Package capture is the boundary to the recording device: permission,
// start/stop of a capture, and the offer to keep the recorded media.
package capture

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUnknownHandle = errors.New("unknown capture handle")
	ErrNotCapturing  = errors.New("no capture in progress")
)

// Handle identifies an in-progress capture.
type Handle struct {
	ID        string
	StartedAt time.Time
}

// Media is the product of a finished capture.
type Media struct {
	ID       string
	HandleID string
	Duration time.Duration
}

// Recorder is the external recording collaborator.
type Recorder interface {
	RequestPermission(ctx context.Context) (bool, error)
	StartCapture(ctx context.Context) (Handle, error)
	StopCapture(ctx context.Context, h Handle) (Media, error)
	OfferToPersist(ctx context.Context, m Media) (bool, error)
}
