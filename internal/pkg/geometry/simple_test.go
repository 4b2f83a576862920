package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samirrijal/parcelarea/internal/pkg/geometry"
)

func TestIsSimple(t *testing.T) {
	tests := []struct {
		name string
		ring []geometry.XY
		want bool
	}{
		{"square", []geometry.XY{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, true},
		{"closed square", []geometry.XY{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}, true},
		{"triangle", []geometry.XY{{0, 0}, {1, 0}, {0, 1}}, true},
		{"concave", []geometry.XY{{0, 0}, {4, 0}, {4, 4}, {2, 1}, {0, 4}}, true},
		{"bowtie", []geometry.XY{{0, 0}, {2, 2}, {2, 0}, {0, 2}}, false},
		{"touching vertex", []geometry.XY{{0, 0}, {2, 0}, {2, 2}, {1, 0}, {0, 2}}, false},
		{"collinear overlap", []geometry.XY{{0, 0}, {4, 0}, {4, 1}, {2, 0}, {1, 0}, {0, 1}}, false},
		{"repeated vertex", []geometry.XY{{0, 0}, {1, 0}, {1, 0}, {1, 1}, {0, 1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, geometry.IsSimple(tt.ring))
		})
	}
}

func TestIsSimple_BowtieAreaIsAlgebraic(t *testing.T) {
	// Lobes of equal size cancel out; the shoelace result is kept as is.
	bowtie := geometry.Close([]geometry.XY{{0, 0}, {2, 2}, {2, 0}, {0, 2}})
	assert.False(t, geometry.IsSimple(bowtie))
	assert.Equal(t, 0.0, geometry.Area(bowtie))
}
