package http

import (
	"context"

	"github.com/nats-io/nats.go"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/parcelarea/internal/core/usecases"
)

// Pinger is implemented by backing services that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Boundaries *usecases.BoundaryService
	NATS       *nats.Conn
	Cache      Pinger
	Temporal   client.Client
	// Version is reported by the health endpoint.
	Version string
}
