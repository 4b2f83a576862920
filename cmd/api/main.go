package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gogpu/gg"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/parcelarea/internal/adapters/http"
	natsadapter "github.com/samirrijal/parcelarea/internal/adapters/nats"
	"github.com/samirrijal/parcelarea/internal/adapters/render"
	"github.com/samirrijal/parcelarea/internal/adapters/valkey"
	"github.com/samirrijal/parcelarea/internal/core/ports"
	"github.com/samirrijal/parcelarea/internal/core/usecases"
	"github.com/samirrijal/parcelarea/internal/pkg/config"
	"github.com/samirrijal/parcelarea/internal/pkg/logging"
	"github.com/samirrijal/parcelarea/internal/pkg/telemetry"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load("parcelarea-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	lg := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	gg.SetLogger(lg.With("component", "render"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{Version: version}

	// Plot renderer
	var renderer ports.PlotRenderer
	plotter, err := render.NewPlotter(cfg.Render.Width, cfg.Render.Height)
	if err != nil {
		slog.Warn("plot renderer unavailable", "error", err)
	} else {
		renderer = plotter
	}

	// Cache
	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer vc.Close()
			cache = vc
			deps.Cache = vc
		}
	}

	// NATS
	var events ports.EventPublisher
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			events = pub
			deps.NATS = pub.Conn()
		}
	}

	// Temporal is only used here for readiness; the worker owns the workflows.
	if cfg.Temporal.Enabled {
		tc, err := client.NewLazyClient(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    lg.With("component", "temporal"),
		})
		if err != nil {
			slog.Warn("temporal client unavailable", "error", err)
		} else {
			defer tc.Close()
			deps.Temporal = tc
		}
	}

	deps.Boundaries = usecases.NewBoundaryService(usecases.BoundaryConfig{
		ClosureToleranceM: cfg.Survey.ClosureToleranceM,
		RenderTimeout:     cfg.Render.Timeout(),
		CacheTTLSeconds:   cfg.Render.CacheTTL,
	}, renderer, cache, events)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		AppName:      "Parcel Area API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.CORSOrigins, ","),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "version", version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
