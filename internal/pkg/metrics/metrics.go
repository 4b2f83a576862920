package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parcelarea",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "parcelarea",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "parcelarea",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Survey-specific metrics
	BoundariesComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parcelarea",
		Subsystem: "survey",
		Name:      "boundaries_computed_total",
		Help:      "Total boundary area computations by outcome",
	}, []string{"outcome"})

	BoundaryVertices = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "parcelarea",
		Subsystem: "survey",
		Name:      "boundary_vertices",
		Help:      "Distinct vertices per computed boundary",
		Buckets:   prometheus.ExponentialBuckets(3, 2, 10),
	})

	ClosureOutOfTolerance = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "parcelarea",
		Subsystem: "survey",
		Name:      "closure_out_of_tolerance_total",
		Help:      "Traverses whose misclosure exceeded the configured tolerance",
	})

	RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "parcelarea",
		Subsystem: "render",
		Name:      "duration_seconds",
		Help:      "Time spent rendering boundary plots",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	RenderFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "parcelarea",
		Subsystem: "render",
		Name:      "failures_total",
		Help:      "Total plot render failures, including circuit breaker rejections",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "parcelarea",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	SubmissionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parcelarea",
		Subsystem: "worker",
		Name:      "submissions_processed_total",
		Help:      "Queued boundary submissions finished by the workflow, by outcome",
	}, []string{"outcome"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parcelarea",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parcelarea",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
