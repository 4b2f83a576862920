package geometry_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samirrijal/parcelarea/internal/pkg/geometry"
)

func TestRunTraverse_ClosesExactly(t *testing.T) {
	legs := []geometry.Leg{
		{Azimuth: 90, Distance: 4},
		{Azimuth: 0, Distance: 3},
		{Azimuth: 270, Distance: 4},
		{Azimuth: 180, Distance: 3},
	}
	c := geometry.RunTraverse(geometry.XY{X: 100, Y: 200}, legs)

	assert.Equal(t, 0.0, c.Misclosure)
	assert.Equal(t, 0.0, c.Precision)
	assert.Equal(t, 14.0, c.Length)
	assert.InDelta(t, 100, c.End.X, 1e-9)
	assert.InDelta(t, 200, c.End.Y, 1e-9)
}

func TestRunTraverse_Misclosure(t *testing.T) {
	legs := []geometry.Leg{
		{Azimuth: 90, Distance: 4},
		{Azimuth: 0, Distance: 3},
		{Azimuth: 270, Distance: 4.03},
		{Azimuth: 180, Distance: 2.96},
	}
	c := geometry.RunTraverse(geometry.XY{}, legs)

	assert.InDelta(t, 0.03, c.DeltaX, 1e-9)
	assert.InDelta(t, -0.04, c.DeltaY, 1e-9)
	assert.InDelta(t, 0.05, c.Misclosure, 1e-9)
	assert.InDelta(t, 13.99/0.05, c.Precision, 1e-6)
}

func TestAzimuth(t *testing.T) {
	o := geometry.XY{}
	assert.InDelta(t, 0, geometry.Azimuth(o, geometry.XY{Y: 1}), 1e-12)
	assert.InDelta(t, 90, geometry.Azimuth(o, geometry.XY{X: 1}), 1e-12)
	assert.InDelta(t, 180, geometry.Azimuth(o, geometry.XY{Y: -1}), 1e-12)
	assert.InDelta(t, 270, geometry.Azimuth(o, geometry.XY{X: -1}), 1e-12)
	assert.InDelta(t, 5, geometry.Distance(o, geometry.XY{X: 3, Y: 4}), 1e-12)
}

func TestRunTraverse_RoundTripsAzimuth(t *testing.T) {
	pts := []geometry.XY{{0, 0}, {30, 5}, {42, 37}, {-3, 25}}
	var legs []geometry.Leg
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		legs = append(legs, geometry.Leg{Azimuth: geometry.Azimuth(a, b), Distance: geometry.Distance(a, b)})
	}
	c := geometry.RunTraverse(pts[0], legs)
	assert.Less(t, c.Misclosure, 1e-6)
	assert.False(t, math.IsNaN(c.Precision))
}

func TestLeg_End(t *testing.T) {
	end := geometry.Leg{Azimuth: 45, Distance: math.Sqrt2}.End(geometry.XY{X: 10, Y: 10})
	assert.InDelta(t, 11, end.X, 1e-9)
	assert.InDelta(t, 11, end.Y, 1e-9)
}
