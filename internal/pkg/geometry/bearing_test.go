package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/parcelarea/internal/pkg/geometry"
)

func TestParseBearing(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`N 45°30'00" E`, 45.5},
		{`n45-30-00e`, 45.5},
		{`S 45°30' E`, 134.5},
		{`S 45 30 00 W`, 225.5},
		{`N 45.5 W`, 314.5},
		{`N 0 E`, 0},
		{`S 90 W`, 270},
		{`N 90 E`, 90},
		{`045°30'00"`, 45.5},
		{`123.25`, 123.25},
		{`270d15'36"`, 270.26},
		{`10:06:00`, 10.1},
		{`0`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := geometry.ParseBearing(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseBearing_QuadrantMatchesAzimuth(t *testing.T) {
	q, err := geometry.ParseBearing(`S 30°15'10" W`)
	require.NoError(t, err)
	a, err := geometry.ParseBearing(`210°15'10"`)
	require.NoError(t, err)
	assert.InDelta(t, a, q, 1e-12)
}

func TestParseBearing_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"N 95 E",
		"360",
		"400.5",
		"-10",
		"N 45 61 E",
		"45 30 75",
		"north-east",
		"NaN",
		"1 2 3 4",
		"N E",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := geometry.ParseBearing(in)
			assert.Error(t, err)
		})
	}
}
