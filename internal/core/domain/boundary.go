package domain

import (
	"encoding/json"
	"time"
)

// Point is a named survey station with planar grid coordinates.
type Point struct {
	Name     string  `json:"name" validate:"max=64"`
	Easting  float64 `json:"easting"`
	Northing float64 `json:"northing"`
}

// Segment is a directed boundary leg between two named points.
// Bearing and Distance are the observed traverse values for the leg. They
// never affect the area; a leg without a usable pair only skips the
// closure check. Names are matched verbatim, the empty name included.
type Segment struct {
	FromPoint string  `json:"from_point" validate:"max=64"`
	ToPoint   string  `json:"to_point" validate:"max=64"`
	Bearing   string  `json:"bearing"`
	Distance  float64 `json:"distance"`
}

// BoundaryInput is a boundary description as submitted by a client.
type BoundaryInput struct {
	Points   []Point   `json:"points" validate:"required,min=1,max=5000,dive"`
	Segments []Segment `json:"segments" validate:"required,min=1,max=5000,dive"`
}

// LabeledCoordinate is a ring vertex carrying the name of its point.
type LabeledCoordinate struct {
	Name     string  `json:"name"`
	Easting  float64 `json:"easting"`
	Northing float64 `json:"northing"`
}

// AreaResult is the output of the area computation.
type AreaResult struct {
	AreaSqm     float64             `json:"area_sqm"`
	SignedArea  float64             `json:"-"`
	Coordinates []LabeledCoordinate `json:"coordinates"`
	Warnings    []string            `json:"-"`
}

// Orientation of a ring, derived from the sign of its signed area.
type Orientation string

const (
	Clockwise        Orientation = "clockwise"
	CounterClockwise Orientation = "counterclockwise"
	Degenerate       Orientation = "degenerate"
)

// Diagnostics describes the shape of a computed ring.
type Diagnostics struct {
	PerimeterM       float64     `json:"perimeter_m"`
	Orientation      Orientation `json:"orientation"`
	Simple           bool        `json:"simple"`
	DistinctVertices int         `json:"distinct_vertices"`
	Bounds           Bounds      `json:"bounds"`
}

// ClosureReport is the result of running the bearing/distance traverse
// around the boundary and comparing where it ends with where it started.
type ClosureReport struct {
	Start              string     `json:"start"`
	MisclosureEasting  float64    `json:"misclosure_easting"`
	MisclosureNorthing float64    `json:"misclosure_northing"`
	MisclosureM        float64    `json:"misclosure_m"`
	TraverseLengthM    float64    `json:"traverse_length_m"`
	PrecisionRatio     float64    `json:"precision_ratio"`
	ToleranceM         float64    `json:"tolerance_m"`
	WithinTolerance    bool       `json:"within_tolerance"`
	Legs               []LegCheck `json:"legs"`
}

// LegCheck compares one segment's observed bearing and distance with the
// line between its resolved points. OffsetM is how far the observed leg,
// run from the from_point, lands from the to_point.
type LegCheck struct {
	Segment           int     `json:"segment"`
	From              string  `json:"from"`
	To                string  `json:"to"`
	ObservedAzimuth   float64 `json:"observed_azimuth"`
	ComputedAzimuth   float64 `json:"computed_azimuth"`
	ObservedDistanceM float64 `json:"observed_distance_m"`
	ComputedDistanceM float64 `json:"computed_distance_m"`
	OffsetM           float64 `json:"offset_m"`
	WithinTolerance   bool    `json:"within_tolerance"`
}

// BoundaryReport is what the transports hand back to clients.
type BoundaryReport struct {
	ID          string              `json:"id"`
	AreaSqm     float64             `json:"area_sqm"`
	Coordinates []LabeledCoordinate `json:"coordinates"`
	Diagnostics Diagnostics         `json:"diagnostics"`
	Closure     *ClosureReport      `json:"closure"`
	Warnings    []string            `json:"warnings"`
	GeoJSON     json.RawMessage     `json:"geojson,omitempty"`
	ImageBase64 string              `json:"image_base64,omitempty"`
	RenderError string              `json:"render_error,omitempty"`
	ComputedAt  time.Time           `json:"computed_at"`
}

// Rendered reports whether an image was attached to the report.
func (r *BoundaryReport) Rendered() bool {
	return r.ImageBase64 != ""
}

// Submission status values used on the asynchronous path.
const (
	StatusQueued   = "queued"
	StatusComputed = "computed"
	StatusFailed   = "failed"
)

// BoundarySubmission is a boundary queued for asynchronous processing.
type BoundarySubmission struct {
	ID          string        `json:"id"`
	Input       BoundaryInput `json:"input"`
	Render      bool          `json:"render"`
	ToleranceM  *float64      `json:"tolerance_m,omitempty"`
	SubmittedAt time.Time     `json:"submitted_at"`
}

// BoundaryEvent is published whenever a boundary has been processed.
type BoundaryEvent struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	AreaSqm         float64   `json:"area_sqm"`
	PerimeterM      float64   `json:"perimeter_m"`
	Vertices        int       `json:"vertices"`
	WithinTolerance *bool     `json:"within_tolerance,omitempty"`
	Rendered        bool      `json:"rendered"`
	Error           string    `json:"error,omitempty"`
	ComputedAt      time.Time `json:"computed_at"`
}

// NewBoundaryEvent summarises a report for publishing.
func NewBoundaryEvent(r *BoundaryReport) *BoundaryEvent {
	ev := &BoundaryEvent{
		ID:         r.ID,
		Status:     StatusComputed,
		AreaSqm:    r.AreaSqm,
		PerimeterM: r.Diagnostics.PerimeterM,
		Vertices:   r.Diagnostics.DistinctVertices,
		Rendered:   r.Rendered(),
		ComputedAt: r.ComputedAt,
	}
	if r.Closure != nil {
		ok := r.Closure.WithinTolerance
		ev.WithinTolerance = &ok
	}
	return ev
}

// NewFailedEvent reports a boundary that could not be processed.
func NewFailedEvent(id, reason string, at time.Time) *BoundaryEvent {
	return &BoundaryEvent{
		ID:         id,
		Status:     StatusFailed,
		Error:      reason,
		ComputedAt: at,
	}
}
