package workflows

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/parcelarea/internal/core/domain"
)

// DefaultTaskQueue is the task queue boundary workflows run on unless configured otherwise.
const DefaultTaskQueue = "boundary-queue"

// errTypeInvalidBoundary marks analysis failures that retrying cannot fix.
const errTypeInvalidBoundary = "InvalidBoundary"

// BoundaryWorkflow analyzes a queued boundary and publishes the outcome.
// Analysis is retried up to three times unless the input itself is at
// fault; either way exactly one event, computed or failed, is published.
func BoundaryWorkflow(ctx workflow.Context, sub domain.BoundarySubmission) (*domain.BoundaryEvent, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting boundary workflow", "boundaryID", sub.ID, "segments", len(sub.Input.Segments))

	analyzeCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{errTypeInvalidBoundary},
		},
	})
	publishCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 5,
		},
	})

	var event domain.BoundaryEvent
	err := workflow.ExecuteActivity(analyzeCtx, "AnalyzeBoundary", sub).Get(ctx, &event)
	if err != nil {
		reason := err.Error()
		rejected := false
		var appErr *temporal.ApplicationError
		if errors.As(err, &appErr) {
			reason = appErr.Error()
			rejected = appErr.Type() == errTypeInvalidBoundary
		}
		logger.Warn("boundary analysis failed", "boundaryID", sub.ID, "error", reason, "rejected", rejected)
		if perr := workflow.ExecuteActivity(publishCtx, "PublishFailure", sub.ID, reason, rejected).Get(ctx, nil); perr != nil {
			logger.Error("publishing failure event failed", "boundaryID", sub.ID, "error", perr)
		}
		return nil, err
	}

	if err := workflow.ExecuteActivity(publishCtx, "PublishResult", &event).Get(ctx, nil); err != nil {
		return nil, err
	}

	logger.Info("Boundary computed", "boundaryID", sub.ID, "areaSqm", event.AreaSqm)
	return &event, nil
}
