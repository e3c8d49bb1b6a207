package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Publisher delivers events to an external system.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NATSConfig configures the NATS connection.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns local defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "colortap.sessions",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// NATSPublisher publishes events as JSON on <prefix>.<session id>.<event type>.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

// NewNATSPublisher connects to cfg.URL with reconnect handling.
func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("colortap"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	log.Info().Str("url", nc.ConnectedUrl()).Msg("connected to NATS")
	return &NATSPublisher{nc: nc, prefix: cfg.SubjectPrefix}, nil
}

// Subject returns the subject an event is published on.
func Subject(prefix string, e Event) string {
	return fmt.Sprintf("%s.%s.%s", prefix, e.SessionID, e.Type)
}

// Publish sends e as JSON on its subject.
func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	subject := Subject(p.prefix, e)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	log.Debug().Str("subject", subject).Int("size", len(data)).Msg("published event")
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}

// LogPublisher writes events to the log; it is used when no broker is configured.
type LogPublisher struct{}

// Publish logs e at debug level.
func (LogPublisher) Publish(ctx context.Context, e Event) error {
	log.Debug().
		Str("event_id", e.ID).
		Str("event_type", e.Type).
		Str("session_id", e.SessionID).
		Str("phase", e.Phase).
		Int("score", e.Score).
		Msg("publishing event")
	return nil
}

// Close is a no-op.
func (LogPublisher) Close() error { return nil }
