// Package events publishes poll decisions and completed builds to NATS
// JetStream so downstream CI tooling can react without polling storewatch.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/storewatch/internal/config"
	"git.home.luguber.info/inful/storewatch/internal/retry"
)

// PollEvent describes one polling decision.
type PollEvent struct {
	Repository string    `json:"repository"`
	Decision   string    `json:"decision"`
	Timestamp  time.Time `json:"timestamp"`
}

// BuildEvent describes one completed build.
type BuildEvent struct {
	BuildID     string    `json:"build_id"`
	BuildNumber int64     `json:"build_number"`
	Repository  string    `json:"repository"`
	Outcome     string    `json:"outcome"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher emits storewatch events. Implementations must be safe for
// concurrent use by independent monitors.
type Publisher interface {
	PublishPollDecision(event PollEvent) error
	PublishBuild(event BuildEvent) error
	Close() error
}

// NoopPublisher discards all events (default when events are not configured).
type NoopPublisher struct{}

func (NoopPublisher) PublishPollDecision(PollEvent) error { return nil }
func (NoopPublisher) PublishBuild(BuildEvent) error       { return nil }
func (NoopPublisher) Close() error                        { return nil }

// NATSPublisher publishes events to a NATS JetStream subject. Transient
// publish failures are retried with backoff before the event is dropped.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
	policy  retry.Policy
}

// NewNATSPublisher connects to NATS using the events configuration.
func NewNATSPublisher(cfg config.EventsConfig) (*NATSPublisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("event publishing is disabled")
	}

	conn, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	slog.Info("NATS event publisher initialized",
		"url", cfg.NATSURL,
		"subject", cfg.Subject)

	return &NATSPublisher{conn: conn, js: js, subject: cfg.Subject, policy: retry.DefaultPolicy()}, nil
}

// PublishPollDecision publishes a polling decision event.
func (p *NATSPublisher) PublishPollDecision(event PollEvent) error {
	return p.publish(p.subject+".poll", event)
}

// PublishBuild publishes a completed build event.
func (p *NATSPublisher) PublishBuild(event BuildEvent) error {
	return p.publish(p.subject+".build", event)
}

func (p *NATSPublisher) publish(subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= p.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(p.policy.Delay(attempt))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, lastErr = p.js.Publish(ctx, subject, data)
		cancel()
		if lastErr == nil {
			return nil
		}
		slog.Debug("Event publish attempt failed",
			"subject", subject,
			"attempt", attempt+1,
			"error", lastErr)
	}
	return fmt.Errorf("failed to publish event: %w", lastErr)
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
