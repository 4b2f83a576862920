package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/parcelarea/internal/pkg/geometry"
)

func square() []geometry.XY {
	return []geometry.XY{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
}

func TestArea_UnitSquare(t *testing.T) {
	assert.Equal(t, 1.0, geometry.Area(geometry.Close(square())))
}

func TestArea_Rectangle(t *testing.T) {
	ring := geometry.Close([]geometry.XY{{0, 0}, {4, 0}, {4, 3}, {0, 3}})
	assert.Equal(t, 12.0, geometry.Area(ring))
}

func TestArea_OrientationDoesNotChangeMagnitude(t *testing.T) {
	ccw := geometry.Close([]geometry.XY{{0, 0}, {4, 0}, {4, 3}, {0, 3}})
	cw := geometry.Close([]geometry.XY{{0, 0}, {0, 3}, {4, 3}, {4, 0}})

	assert.Greater(t, geometry.SignedArea(ccw), 0.0)
	assert.Less(t, geometry.SignedArea(cw), 0.0)
	assert.Equal(t, geometry.Area(ccw), geometry.Area(cw))
	assert.Equal(t, 1, geometry.Orientation(geometry.SignedArea(ccw)))
	assert.Equal(t, -1, geometry.Orientation(geometry.SignedArea(cw)))
}

func TestArea_OpenAndClosedRingsAgree(t *testing.T) {
	open := square()
	closed := geometry.Close(square())
	assert.Equal(t, geometry.SignedArea(open), geometry.SignedArea(closed))
}

func TestArea_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		ring []geometry.XY
	}{
		{"empty", nil},
		{"single point", []geometry.XY{{5, 5}}},
		{"two distinct", []geometry.XY{{0, 0}, {3, 4}, {0, 0}}},
		{"repeated two", []geometry.XY{{0, 0}, {3, 4}, {3, 4}, {0, 0}, {0, 0}}},
		{"collinear", []geometry.XY{{0, 0}, {1, 1}, {2, 2}, {0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0.0, geometry.Area(tt.ring))
		})
	}
}

func TestArea_LargeProjectedCoordinates(t *testing.T) {
	// 100 m x 50 m lot far from the grid origin
	e, n := 512345.678, 4789012.345
	ring := geometry.Close([]geometry.XY{{e, n}, {e + 100, n}, {e + 100, n + 50}, {e, n + 50}})
	assert.InDelta(t, 5000.0, geometry.Area(ring), 1e-6)
}

func TestArea_Triangle(t *testing.T) {
	ring := []geometry.XY{{0, 0}, {10, 0}, {0, 10}}
	assert.Equal(t, 50.0, geometry.Area(ring))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.235, geometry.Round(1.23456, 3))
	assert.Equal(t, 12.0, geometry.Round(12.0000001, 3))
	assert.Equal(t, 0.0, geometry.Round(-0.0001, 3))
	assert.Equal(t, -2.5, geometry.Round(-2.5, 3))
}

func TestClose(t *testing.T) {
	t.Run("appends first vertex", func(t *testing.T) {
		ring := geometry.Close(square())
		require.Len(t, ring, 5)
		assert.Equal(t, ring[0], ring[4])
		assert.True(t, geometry.IsClosed(ring))
	})

	t.Run("already closed is untouched", func(t *testing.T) {
		closed := geometry.Close(square())
		again := geometry.Close(closed)
		assert.Len(t, again, 5)
		assert.Equal(t, geometry.Area(closed), geometry.Area(again))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, geometry.Close(nil))
		assert.False(t, geometry.IsClosed(nil))
	})
}

func TestDistinctCount(t *testing.T) {
	assert.Equal(t, 4, geometry.DistinctCount(geometry.Close(square())))
	assert.Equal(t, 1, geometry.DistinctCount([]geometry.XY{{1, 1}, {1, 1}}))
}
