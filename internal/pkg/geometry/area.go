package geometry

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// SignedArea returns the shoelace area of the ring. Counter-clockwise rings
// are positive. The ring may be open or closed; the edge from the last
// coordinate back to the first is always included.
//
// xy.SignedArea translates to the first vertex, so large projected eastings
// do not swamp the products. It counts clockwise as positive.
func SignedArea(ring []XY) float64 {
	if len(ring) < 3 {
		return 0
	}
	closed := Close(append([]XY(nil), ring...))
	return -xy.SignedArea(geom.XY, flatCoords(closed))
}

// Area returns the unsigned shoelace area of the ring. Rings with fewer than
// three distinct coordinates have zero area.
func Area(ring []XY) float64 {
	if DistinctCount(ring) < 3 {
		return 0
	}
	return math.Abs(SignedArea(ring))
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

// Orientation reports the winding of a ring from its signed area:
// 1 for counter-clockwise, -1 for clockwise, 0 for degenerate.
func Orientation(signedArea float64) int {
	switch {
	case signedArea > 0:
		return 1
	case signedArea < 0:
		return -1
	default:
		return 0
	}
}

func flatCoords(ring []XY) []float64 {
	flat := make([]float64, 0, 2*len(ring))
	for _, c := range ring {
		flat = append(flat, c.X, c.Y)
	}
	return flat
}
