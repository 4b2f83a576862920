package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/parcelarea/internal/core/domain"
)

// Subjects used on the survey event bus.
const (
	SubjectSubmitted      = "survey.boundary.submitted"
	SubjectComputedPrefix = "survey.boundary.computed."
	SubjectAll            = "survey.boundary.>"
)

// Streams holds the JetStream streams the service relies on.
var Streams = []nats.StreamConfig{
	{
		Name:      "SURVEY_SUBMISSIONS",
		Subjects:  []string{SubjectSubmitted},
		Retention: nats.WorkQueuePolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	},
	{
		Name:      "SURVEY_EVENTS",
		Subjects:  []string{SubjectComputedPrefix + ">"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	},
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS, enables JetStream and ensures the survey
// streams exist.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStreams(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, js: js}, nil
}

func ensureStreams(js nats.JetStreamContext) error {
	for i := range Streams {
		cfg := Streams[i]
		if _, err := js.AddStream(&cfg); err != nil {
			// stream may already exist
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}

// PublishBoundaryEvent publishes a computed or failed event for one boundary.
func (p *Publisher) PublishBoundaryEvent(ctx context.Context, ev *domain.BoundaryEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectComputedPrefix+ev.ID, data, nats.Context(ctx))
	return err
}

// PublishSubmission queues a boundary for the worker. The submission ID is
// used as the message ID so JetStream drops duplicates.
func (p *Publisher) PublishSubmission(ctx context.Context, sub *domain.BoundarySubmission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectSubmitted, data, nats.MsgId(sub.ID), nats.Context(ctx))
	return err
}

// Connected reports whether the underlying connection is up.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}

// Conn exposes the connection so the WebSocket relay can share it.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection with the service's reconnect policy.
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("parcelarea"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
