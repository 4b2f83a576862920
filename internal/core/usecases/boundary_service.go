package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/parcelarea/internal/core/domain"
	"github.com/samirrijal/parcelarea/internal/core/ports"
	"github.com/samirrijal/parcelarea/internal/pkg/geometry"
	"github.com/samirrijal/parcelarea/internal/pkg/logging"
	"github.com/samirrijal/parcelarea/internal/pkg/metrics"
	"github.com/samirrijal/parcelarea/internal/pkg/telemetry"
	"github.com/samirrijal/parcelarea/internal/pkg/validation"
)

const pngDataURLPrefix = "data:image/png;base64,"

var (
	// ErrRendererUnavailable is returned when no plot renderer is wired.
	ErrRendererUnavailable = errors.New("plot renderer not configured")
	// ErrQueueUnavailable is returned when submissions cannot be queued.
	ErrQueueUnavailable = errors.New("submission queue not available")
)

var tracer = telemetry.Tracer("github.com/samirrijal/parcelarea/internal/core/usecases")

// BoundaryConfig tunes a BoundaryService.
type BoundaryConfig struct {
	ClosureToleranceM float64
	RenderTimeout     time.Duration
	CacheTTLSeconds   int
}

// AnalyzeOptions controls a single Analyze call.
type AnalyzeOptions struct {
	ID     string // generated when empty
	Render bool
	// ToleranceM overrides the configured closure tolerance when set. Zero is
	// a valid override; negative values are rejected.
	ToleranceM *float64
	// StrictBearings turns unreadable bearings into an error instead of a warning.
	StrictBearings bool
}

// BoundaryService computes boundary areas and coordinates rendering,
// caching and event publishing around the computation.
type BoundaryService struct {
	cfg      BoundaryConfig
	renderer ports.PlotRenderer
	cache    ports.CacheService
	events   ports.EventPublisher
	breaker  *gobreaker.CircuitBreaker
	now      func() time.Time
}

// NewBoundaryService creates a new BoundaryService. cache and events may be nil.
func NewBoundaryService(cfg BoundaryConfig, renderer ports.PlotRenderer, cache ports.CacheService, events ports.EventPublisher) *BoundaryService {
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 5 * time.Second
	}
	return &BoundaryService{
		cfg:      cfg,
		renderer: renderer,
		cache:    cache,
		events:   events,
		breaker:  newRenderBreaker(),
		now:      time.Now,
	}
}

func newRenderBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "plot-renderer",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.FromContext(context.Background()).Warn("circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// ComputeArea is the pure area computation: ring building plus shoelace.
func (s *BoundaryService) ComputeArea(input domain.BoundaryInput) (*domain.AreaResult, error) {
	return ComputeArea(input)
}

// Analyze validates input, computes the area and its diagnostics, checks the
// traverse closure and optionally renders a plot. A render failure is
// reported on the returned report and never discards the area.
func (s *BoundaryService) Analyze(ctx context.Context, input domain.BoundaryInput, opts AnalyzeOptions) (*domain.BoundaryReport, error) {
	ctx, span := tracer.Start(ctx, "BoundaryService.Analyze")
	defer span.End()

	log := logging.FromContext(ctx)

	if err := validateRequest(input, opts); err != nil {
		metrics.BoundariesComputed.WithLabelValues("invalid").Inc()
		return nil, err
	}

	result, err := ComputeArea(input)
	if err != nil {
		metrics.BoundariesComputed.WithLabelValues(outcomeOf(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	report := &domain.BoundaryReport{
		ID:          id,
		AreaSqm:     result.AreaSqm,
		Coordinates: result.Coordinates,
		Warnings:    append([]string{}, result.Warnings...),
		ComputedAt:  s.now().UTC(),
	}

	diag, warnings := Diagnose(result)
	report.Diagnostics = diag
	report.Warnings = append(report.Warnings, warnings...)

	tolerance := s.cfg.ClosureToleranceM
	if opts.ToleranceM != nil {
		tolerance = *opts.ToleranceM
	}
	closure, err := AnalyzeClosure(input, result.Coordinates, tolerance)
	var bearingErr *domain.BearingParseError
	switch {
	case err == nil:
		report.Closure = closure
		if !closure.WithinTolerance {
			metrics.ClosureOutOfTolerance.Inc()
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"traverse misclosure %.4f m exceeds tolerance %.4f m", closure.MisclosureM, closure.ToleranceM))
		}
		if w := legWarning(closure.Legs); w != "" {
			report.Warnings = append(report.Warnings, w)
		}
	case errors.As(err, &bearingErr) && opts.StrictBearings:
		metrics.BoundariesComputed.WithLabelValues("invalid").Inc()
		return nil, err
	default:
		report.Warnings = append(report.Warnings, err.Error())
	}

	report.GeoJSON, err = geometry.FeatureJSON(id, toXY(result.Coordinates), map[string]interface{}{
		"area_sqm":    result.AreaSqm,
		"perimeter_m": diag.PerimeterM,
	})
	if err != nil {
		log.Warn("geojson encoding failed", "boundary_id", id, "error", err)
	}

	if opts.Render {
		png, err := s.renderPNG(ctx, result)
		if err != nil {
			log.Warn("plot render failed", "boundary_id", id, "error", err)
			report.RenderError = err.Error()
		} else {
			report.ImageBase64 = pngDataURLPrefix + base64.StdEncoding.EncodeToString(png)
		}
	}

	span.SetAttributes(
		telemetry.AttrBoundaryID.String(id),
		telemetry.AttrSegments.Int(len(input.Segments)),
		telemetry.AttrVertices.Int(diag.DistinctVertices),
		telemetry.AttrAreaSqm.Float64(report.AreaSqm),
		telemetry.AttrSimple.Bool(diag.Simple),
	)
	metrics.BoundariesComputed.WithLabelValues("ok").Inc()
	metrics.BoundaryVertices.Observe(float64(diag.DistinctVertices))

	s.publish(ctx, domain.NewBoundaryEvent(report))

	log.Info("boundary computed",
		"boundary_id", id,
		"area_sqm", report.AreaSqm,
		"vertices", diag.DistinctVertices,
		"warnings", len(report.Warnings),
		"rendered", report.Rendered(),
	)
	return report, nil
}

// Plot computes the ring for input and returns the rendered PNG. Here the
// image is the whole response, so a render failure is an error.
func (s *BoundaryService) Plot(ctx context.Context, input domain.BoundaryInput) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "BoundaryService.Plot")
	defer span.End()

	if err := validateRequest(input, AnalyzeOptions{}); err != nil {
		return nil, err
	}
	result, err := ComputeArea(input)
	if err != nil {
		return nil, err
	}
	return s.renderPNG(ctx, result)
}

// Submit queues input for asynchronous processing and returns its ID.
func (s *BoundaryService) Submit(ctx context.Context, input domain.BoundaryInput, opts AnalyzeOptions) (string, error) {
	if err := validateRequest(input, opts); err != nil {
		return "", err
	}
	if s.events == nil {
		return "", ErrQueueUnavailable
	}

	sub := &domain.BoundarySubmission{
		ID:          uuid.NewString(),
		Input:       input,
		Render:      opts.Render,
		ToleranceM:  opts.ToleranceM,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.events.PublishSubmission(ctx, sub); err != nil {
		return "", fmt.Errorf("queue submission: %w", err)
	}
	return sub.ID, nil
}

// ProcessSubmission analyzes a queued submission under its own ID.
func (s *BoundaryService) ProcessSubmission(ctx context.Context, sub *domain.BoundarySubmission) (*domain.BoundaryReport, error) {
	return s.Analyze(ctx, sub.Input, AnalyzeOptions{
		ID:         sub.ID,
		Render:     sub.Render,
		ToleranceM: sub.ToleranceM,
	})
}

func (s *BoundaryService) publish(ctx context.Context, ev *domain.BoundaryEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishBoundaryEvent(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("publish boundary event", "boundary_id", ev.ID, "error", err)
	}
}

// validateRequest checks the struct tags of input and the per-request options.
func validateRequest(input domain.BoundaryInput, opts AnalyzeOptions) error {
	if err := validation.Struct(input); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, err.Error())
	}
	if t := opts.ToleranceM; t != nil && (*t < 0 || !finite(*t)) {
		return fmt.Errorf("%w: tolerance must be a non-negative number, got %g", domain.ErrInvalidInput, *t)
	}
	return nil
}

// legWarning names the legs whose observations disagree with the point
// coordinates by more than the tolerance, or returns "".
func legWarning(legs []domain.LegCheck) string {
	var bad []string
	for _, l := range legs {
		if !l.WithinTolerance {
			bad = append(bad, fmt.Sprintf("%d (%s→%s, %.4f m)", l.Segment, l.From, l.To, l.OffsetM))
		}
	}
	if len(bad) == 0 {
		return ""
	}
	return "observed legs disagree with point coordinates: " + strings.Join(bad, ", ")
}

// renderPNG renders through the plot cache and the circuit breaker.
func (s *BoundaryService) renderPNG(ctx context.Context, result *domain.AreaResult) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "BoundaryService.render")
	defer span.End()

	if s.renderer == nil {
		return nil, ErrRendererUnavailable
	}

	w, h := s.renderer.Size()
	key := plotCacheKey(result, w, h)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil && len(data) > 0 {
			metrics.CacheHits.WithLabelValues("plot").Inc()
			span.SetAttributes(telemetry.AttrRenderCache.String("hit"))
			return data, nil
		}
		metrics.CacheMisses.WithLabelValues("plot").Inc()
	}
	span.SetAttributes(telemetry.AttrRenderCache.String("miss"))

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RenderTimeout)
	defer cancel()

	start := time.Now()
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.renderer.Render(ctx, result)
	})
	metrics.RenderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RenderFailures.Inc()
		span.RecordError(err)
		span.SetAttributes(telemetry.AttrRendered.Bool(false))
		return nil, fmt.Errorf("failed to generate plot: %w", err)
	}
	png := out.([]byte)
	span.SetAttributes(telemetry.AttrRendered.Bool(true))

	if s.cache != nil && s.cfg.CacheTTLSeconds > 0 {
		_ = s.cache.Set(ctx, key, png, s.cfg.CacheTTLSeconds)
	}
	return png, nil
}

// plotCacheKey identifies a plot by everything that is drawn on it and the
// canvas it is drawn on.
func plotCacheKey(result *domain.AreaResult, width, height int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%dx%d", width, height)
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatFloat(result.AreaSqm, 'g', -1, 64)))
	for _, c := range result.Coordinates {
		h.Write([]byte{0})
		h.Write([]byte(c.Name))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatFloat(c.Easting, 'g', -1, 64)))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatFloat(c.Northing, 'g', -1, 64)))
	}
	return "plot:" + hex.EncodeToString(h.Sum(nil))
}

func outcomeOf(err error) string {
	var unresolved *domain.UnresolvedReferenceError
	switch {
	case errors.As(err, &unresolved):
		return "unresolved_reference"
	case domain.IsValidation(err):
		return "invalid"
	default:
		return "error"
	}
}
