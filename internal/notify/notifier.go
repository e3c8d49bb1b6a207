package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"colortap/internal/game"
)

const DefaultQueueSize = 256

var _ game.Observer = (*Notifier)(nil)

// Notifier turns session updates into events and hands them to a Publisher
// from its own goroutine. Observe never blocks; events are dropped when the
// queue is full.
type Notifier struct {
	pub   Publisher
	queue chan Event
}

// NewNotifier returns a notifier publishing to pub. A non-positive queueSize uses DefaultQueueSize.
func NewNotifier(pub Publisher, queueSize int) *Notifier {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Notifier{pub: pub, queue: make(chan Event, queueSize)}
}

// Observe implements game.Observer.
func (n *Notifier) Observe(u game.Update) {
	for _, e := range EventsFromUpdate(u) {
		select {
		case n.queue <- e:
		default:
			log.Warn().Str("session_id", e.SessionID).Str("event_type", e.Type).Msg("event queue full, dropping event")
		}
	}
}

// Run publishes queued events until ctx is done, then closes the publisher.
func (n *Notifier) Run(ctx context.Context) {
	defer func() {
		if err := n.pub.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close publisher")
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-n.queue:
			if err := n.pub.Publish(ctx, e); err != nil {
				log.Error().Err(err).Str("event_id", e.ID).Msg("failed to publish event")
			}
		}
	}
}
