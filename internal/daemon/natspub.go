package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	"git.home.luguber.info/inful/guidebuilder/internal/eventstore"
)

const lifecycleStream = "GUIDEBUILDER_EVENTS"

// BuildEventPublisher publishes build lifecycle events to a JetStream
// subject so external consumers (chat notifiers, dashboards) can follow
// builds without polling the admin API.
type BuildEventPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// lifecycleEnvelope is the wire form of one published event.
type lifecycleEnvelope struct {
	BuildID   string          `json:"build_id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewBuildEventPublisher connects to NATS and ensures the event stream
// exists. Events are published on <subject>.build.<EventType>.
func NewBuildEventPublisher(ctx context.Context, cfg config.NATSConfig) (*BuildEventPublisher, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("nats url is required")
	}
	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	p := &BuildEventPublisher{conn: conn, js: js, subject: cfg.Subject}
	if err := p.ensureStream(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	slog.Info("build event publisher connected", "url", cfg.URL, "subject", cfg.Subject)
	return p, nil
}

// ensureStream creates or updates the stream covering all event subjects.
// The sqlite store holds the authoritative log, so the stream only retains
// a week for live consumers.
func (p *BuildEventPublisher) ensureStream(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        lifecycleStream,
		Description: "guidebuilder build lifecycle events",
		Subjects:    []string{p.subject + ".>"},
		MaxAge:      7 * 24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("ensure event stream: %w", err)
	}
	return nil
}

// Publish sends one event. Implements LifecyclePublisher.
func (p *BuildEventPublisher) Publish(ctx context.Context, event eventstore.Event) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := json.Marshal(lifecycleEnvelope{
		BuildID:   event.BuildID(),
		Type:      event.Type(),
		Timestamp: event.Timestamp(),
		Payload:   json.RawMessage(event.Payload()),
	})
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	subject := fmt.Sprintf("%s.build.%s", p.subject, event.Type())
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close closes the NATS connection.
func (p *BuildEventPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
