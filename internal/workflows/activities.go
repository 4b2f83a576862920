package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/parcelarea/internal/core/domain"
	"github.com/samirrijal/parcelarea/internal/core/ports"
	"github.com/samirrijal/parcelarea/internal/core/usecases"
	"github.com/samirrijal/parcelarea/internal/pkg/metrics"
)

// BoundaryActivities holds the activity implementations for BoundaryWorkflow.
// Boundaries should be built without an event publisher; publishing is a
// separate activity so a retried analysis never emits duplicate events.
type BoundaryActivities struct {
	Boundaries *usecases.BoundaryService
	Events     ports.EventPublisher
}

// AnalyzeBoundary computes the report for a submission and returns the
// event summarising it.
func (a *BoundaryActivities) AnalyzeBoundary(ctx context.Context, sub domain.BoundarySubmission) (*domain.BoundaryEvent, error) {
	report, err := a.Boundaries.ProcessSubmission(ctx, &sub)
	if err != nil {
		var unresolved *domain.UnresolvedReferenceError
		if domain.IsValidation(err) || errors.As(err, &unresolved) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), errTypeInvalidBoundary, err)
		}
		activity.GetLogger(ctx).Warn("analysis attempt failed", "boundaryID", sub.ID, "error", err)
		return nil, fmt.Errorf("analyze boundary %s: %w", sub.ID, err)
	}
	return domain.NewBoundaryEvent(report), nil
}

// PublishResult publishes the computed event. Submission outcomes are
// counted here and in PublishFailure, after the event is out.
func (a *BoundaryActivities) PublishResult(ctx context.Context, event *domain.BoundaryEvent) error {
	if a.Events != nil {
		if err := a.Events.PublishBoundaryEvent(ctx, event); err != nil {
			return fmt.Errorf("publish result %s: %w", event.ID, err)
		}
	}
	metrics.SubmissionsProcessed.WithLabelValues("computed").Inc()
	return nil
}

// PublishFailure publishes a failed event for a boundary that could not be
// analyzed. rejected marks input the analysis refused rather than failed on.
func (a *BoundaryActivities) PublishFailure(ctx context.Context, id, reason string, rejected bool) error {
	if a.Events != nil {
		if err := a.Events.PublishBoundaryEvent(ctx, domain.NewFailedEvent(id, reason, time.Now().UTC())); err != nil {
			return fmt.Errorf("publish failure %s: %w", id, err)
		}
	}
	outcome := "failed"
	if rejected {
		outcome = "rejected"
	}
	metrics.SubmissionsProcessed.WithLabelValues(outcome).Inc()
	return nil
}
