package geometry

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// XY is a planar coordinate: X is easting, Y is northing, both in metres.
type XY struct {
	X float64
	Y float64
}

func (p XY) coord() geom.Coord {
	return geom.Coord{p.X, p.Y}
}

// Distance returns the planar distance in metres between two points.
func Distance(a, b XY) float64 {
	return xy.Distance(a.coord(), b.coord())
}

// Azimuth returns the grid bearing in degrees, clockwise from north, of the
// line from a to b. The result is in [0, 360).
func Azimuth(a, b XY) float64 {
	// xy.Angle is counter-clockwise from east
	deg := 90 - toDeg(xy.Angle(a.coord(), b.coord()))
	if deg < 0 {
		deg += 360
	}
	return deg
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
