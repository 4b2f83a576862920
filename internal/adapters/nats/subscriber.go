package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/parcelarea/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS for consuming submissions.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeSubmissions delivers queued boundaries to handler. A message is
// acknowledged when handler succeeds and redelivered (up to 3 times) when it
// fails. Undecodable messages are terminated.
func (s *Subscriber) SubscribeSubmissions(ctx context.Context, handler func(ctx context.Context, sub *domain.BoundarySubmission) error) error {
	sub, err := s.js.Subscribe(SubjectSubmitted, func(msg *nats.Msg) {
		var submission domain.BoundarySubmission
		if err := json.Unmarshal(msg.Data, &submission); err != nil {
			slog.Warn("dropping malformed submission", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &submission); err != nil {
			slog.Warn("submission handler failed", "id", submission.ID, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("boundary-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
