package usecases

import (
	"fmt"
	"strings"

	"github.com/samirrijal/parcelarea/internal/core/domain"
	"github.com/samirrijal/parcelarea/internal/pkg/geometry"
)

// errClosureSkipped signals that the input carries no usable traverse.
type errClosureSkipped struct {
	reason string
}

func (e errClosureSkipped) Error() string { return "traverse closure not checked: " + e.reason }

// AnalyzeClosure runs the observed bearings and distances from the first
// segment's start point and reports the misclosure. Coordinates are not
// adjusted; the report sits next to the area, it does not change it.
//
// Each leg is also checked on its own against the coordinates of its two
// points, so a single mistyped bearing or distance can be located.
//
// A *domain.BearingParseError is returned for an unreadable bearing. When
// any segment lacks a bearing or a positive distance the traverse cannot be
// run and an error describing why is returned instead.
func AnalyzeClosure(input domain.BoundaryInput, ring []domain.LabeledCoordinate, toleranceM float64) (*domain.ClosureReport, error) {
	if len(input.Segments) == 0 || len(ring) == 0 {
		return nil, domain.ErrEmptyBoundary
	}

	coords := make(map[string]geometry.XY, len(input.Points))
	for _, p := range input.Points {
		coords[p.Name] = geometry.XY{X: p.Easting, Y: p.Northing}
	}

	legs := make([]geometry.Leg, 0, len(input.Segments))
	for i, seg := range input.Segments {
		if strings.TrimSpace(seg.Bearing) == "" {
			return nil, errClosureSkipped{reason: fmt.Sprintf("segment %d has no bearing", i)}
		}
		if seg.Distance <= 0 {
			return nil, errClosureSkipped{reason: fmt.Sprintf("segment %d has no distance", i)}
		}
		az, err := geometry.ParseBearing(seg.Bearing)
		if err != nil {
			return nil, &domain.BearingParseError{Segment: i, Bearing: seg.Bearing, Reason: err.Error()}
		}
		legs = append(legs, geometry.Leg{Azimuth: az, Distance: seg.Distance})
	}

	start := ring[0]
	c := geometry.RunTraverse(geometry.XY{X: start.Easting, Y: start.Northing}, legs)

	checks := make([]domain.LegCheck, len(legs))
	for i, leg := range legs {
		seg := input.Segments[i]
		from, to := coords[seg.FromPoint], coords[seg.ToPoint]
		offset := geometry.Distance(leg.End(from), to)
		checks[i] = domain.LegCheck{
			Segment:           i,
			From:              seg.FromPoint,
			To:                seg.ToPoint,
			ObservedAzimuth:   geometry.Round(leg.Azimuth, 4),
			ComputedAzimuth:   geometry.Round(geometry.Azimuth(from, to), 4),
			ObservedDistanceM: leg.Distance,
			ComputedDistanceM: geometry.Round(geometry.Distance(from, to), 3),
			OffsetM:           geometry.Round(offset, 4),
			WithinTolerance:   offset <= toleranceM,
		}
	}

	return &domain.ClosureReport{
		Start:              start.Name,
		MisclosureEasting:  geometry.Round(c.DeltaX, 4),
		MisclosureNorthing: geometry.Round(c.DeltaY, 4),
		MisclosureM:        geometry.Round(c.Misclosure, 4),
		TraverseLengthM:    geometry.Round(c.Length, 3),
		PrecisionRatio:     geometry.Round(c.Precision, 1),
		ToleranceM:         toleranceM,
		WithinTolerance:    c.Misclosure <= toleranceM,
		Legs:               checks,
	}, nil
}
