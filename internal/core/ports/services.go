package ports

import (
	"context"

	"github.com/samirrijal/parcelarea/internal/core/domain"
)

// PlotRenderer draws a computed boundary and returns the encoded image.
type PlotRenderer interface {
	Render(ctx context.Context, result *domain.AreaResult) ([]byte, error)
	// Size is the canvas in pixels; plots of different sizes are cached apart.
	Size() (width, height int)
}

// EventPublisher publishes boundary events to a message broker.
type EventPublisher interface {
	PublishBoundaryEvent(ctx context.Context, event *domain.BoundaryEvent) error
	PublishSubmission(ctx context.Context, sub *domain.BoundarySubmission) error
}

// EventSubscriber consumes queued boundary submissions from a message broker.
type EventSubscriber interface {
	SubscribeSubmissions(ctx context.Context, handler func(ctx context.Context, sub *domain.BoundarySubmission) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
