package main

import (
	"context"
	"errors"
	"log"
	"log/slog"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/parcelarea/internal/adapters/nats"
	"github.com/samirrijal/parcelarea/internal/adapters/render"
	"github.com/samirrijal/parcelarea/internal/adapters/valkey"
	"github.com/samirrijal/parcelarea/internal/core/domain"
	"github.com/samirrijal/parcelarea/internal/core/ports"
	"github.com/samirrijal/parcelarea/internal/core/usecases"
	"github.com/samirrijal/parcelarea/internal/pkg/config"
	"github.com/samirrijal/parcelarea/internal/pkg/logging"
	"github.com/samirrijal/parcelarea/internal/pkg/telemetry"
	"github.com/samirrijal/parcelarea/internal/workflows"
)

func main() {
	cfg, err := config.Load("parcelarea-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    lg.With("component", "temporal"),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	plotter, err := render.NewPlotter(cfg.Render.Width, cfg.Render.Height)
	if err != nil {
		log.Fatalf("plot renderer: %v", err)
	}

	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer vc.Close()
			cache = vc
		}
	}

	if !cfg.NATS.Enabled {
		log.Fatal("worker requires nats.enabled")
	}
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer pub.Close()

	// No publisher on the service itself: PublishResult owns event delivery.
	boundaries := usecases.NewBoundaryService(usecases.BoundaryConfig{
		ClosureToleranceM: cfg.Survey.ClosureToleranceM,
		RenderTimeout:     cfg.Render.Timeout(),
		CacheTTLSeconds:   cfg.Render.CacheTTL,
	}, plotter, cache, nil)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.BoundaryWorkflow)
	w.RegisterActivity(&workflows.BoundaryActivities{
		Boundaries: boundaries,
		Events:     pub,
	})

	// Bridge queued submissions into workflows.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	if err := bridgeSubmissions(ctx, sub, c, cfg.Temporal.TaskQueue); err != nil {
		log.Fatalf("subscribe submissions: %v", err)
	}

	slog.Info("boundary worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

// bridgeSubmissions starts a BoundaryWorkflow for every queued submission.
func bridgeSubmissions(ctx context.Context, subs ports.EventSubscriber, c client.Client, taskQueue string) error {
	return subs.SubscribeSubmissions(ctx, func(ctx context.Context, s *domain.BoundarySubmission) error {
		return startBoundaryWorkflow(ctx, c, taskQueue, s)
	})
}

// startBoundaryWorkflow starts one workflow per submission, keyed by its ID,
// so a redelivered message never analyzes the same boundary twice.
func startBoundaryWorkflow(ctx context.Context, c client.Client, taskQueue string, s *domain.BoundarySubmission) error {
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                    "boundary-" + s.ID,
		TaskQueue:             taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}, workflows.BoundaryWorkflow, *s)
	if err != nil {
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &started) {
			slog.Info("boundary workflow already started", "id", s.ID)
			return nil
		}
		return err
	}
	slog.Info("boundary workflow started", "id", s.ID, "run_id", run.GetRunID())
	return nil
}
