package usecases

import (
	"fmt"
	"math"

	"github.com/samirrijal/parcelarea/internal/core/domain"
	"github.com/samirrijal/parcelarea/internal/pkg/geometry"
)

// BuildRing resolves every segment's from_point to its coordinates, in
// segment order, and closes the ring by appending the first vertex when the
// last one differs from it. Breaks in segment adjacency are returned as
// warnings; they do not stop the ring from being built.
func BuildRing(input domain.BoundaryInput) ([]domain.LabeledCoordinate, []string, error) {
	if len(input.Segments) == 0 {
		return nil, nil, domain.ErrEmptyBoundary
	}

	index := make(map[string]domain.Point, len(input.Points))
	for _, p := range input.Points {
		if _, dup := index[p.Name]; dup {
			return nil, nil, &domain.DuplicatePointError{Name: p.Name}
		}
		if !finite(p.Easting) || !finite(p.Northing) {
			return nil, nil, fmt.Errorf("point %q: %w", p.Name, domain.ErrInvalidCoordinate)
		}
		index[p.Name] = p
	}

	var warnings []string
	ring := make([]domain.LabeledCoordinate, 0, len(input.Segments)+1)
	for i, seg := range input.Segments {
		from, ok := index[seg.FromPoint]
		if !ok {
			return nil, nil, &domain.UnresolvedReferenceError{Point: seg.FromPoint, Segment: i, Field: "from_point"}
		}
		if _, ok := index[seg.ToPoint]; !ok {
			return nil, nil, &domain.UnresolvedReferenceError{Point: seg.ToPoint, Segment: i, Field: "to_point"}
		}

		next := input.Segments[(i+1)%len(input.Segments)]
		if seg.ToPoint != next.FromPoint {
			warnings = append(warnings, fmt.Sprintf(
				"segment %d ends at %q but segment %d starts at %q",
				i, seg.ToPoint, (i+1)%len(input.Segments), next.FromPoint))
		}

		ring = append(ring, domain.LabeledCoordinate{
			Name:     from.Name,
			Easting:  from.Easting,
			Northing: from.Northing,
		})
	}

	first, last := ring[0], ring[len(ring)-1]
	if first.Easting != last.Easting || first.Northing != last.Northing {
		ring = append(ring, first)
	}

	return ring, warnings, nil
}

// ComputeArea builds the ring for input and measures it with the shoelace
// formula. Rings with fewer than three distinct vertices have zero area.
func ComputeArea(input domain.BoundaryInput) (*domain.AreaResult, error) {
	ring, warnings, err := BuildRing(input)
	if err != nil {
		return nil, err
	}

	xy := toXY(ring)
	signed := geometry.SignedArea(xy)

	area := math.Abs(signed)
	if geometry.DistinctCount(xy) < 3 {
		area, signed = 0, 0
		warnings = append(warnings, "boundary has fewer than 3 distinct vertices; area reported as 0")
	}

	return &domain.AreaResult{
		AreaSqm:     geometry.Round(area, 3),
		SignedArea:  signed,
		Coordinates: ring,
		Warnings:    warnings,
	}, nil
}

// Diagnose describes the shape of a ring built by BuildRing.
func Diagnose(result *domain.AreaResult) (domain.Diagnostics, []string) {
	xy := toXY(result.Coordinates)
	lo, hi := geometry.Extent(xy)

	d := domain.Diagnostics{
		PerimeterM:       geometry.Round(geometry.Perimeter(xy), 3),
		Simple:           geometry.IsSimple(xy),
		DistinctVertices: geometry.DistinctCount(xy),
		Bounds: domain.Bounds{
			MinEasting:  lo.X,
			MinNorthing: lo.Y,
			MaxEasting:  hi.X,
			MaxNorthing: hi.Y,
		},
	}
	switch geometry.Orientation(result.SignedArea) {
	case 1:
		d.Orientation = domain.CounterClockwise
	case -1:
		d.Orientation = domain.Clockwise
	default:
		d.Orientation = domain.Degenerate
	}

	var warnings []string
	if !d.Simple {
		warnings = append(warnings, "boundary is self-intersecting; area is the algebraic shoelace result")
	}
	return d, warnings
}

func toXY(ring []domain.LabeledCoordinate) []geometry.XY {
	xy := make([]geometry.XY, len(ring))
	for i, c := range ring {
		xy[i] = geometry.XY{X: c.Easting, Y: c.Northing}
	}
	return xy
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
