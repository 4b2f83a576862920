package geometry

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	errEmptyBearing = errors.New("bearing is empty")
	errBadAngle     = errors.New("angle must be degrees, degrees-minutes or degrees-minutes-seconds")
)

var angleSeparators = strings.NewReplacer(
	"°", " ", "º", " ", "D", " ",
	"′", " ", "'", " ",
	"″", " ", `"`, " ",
	"-", " ", ":", " ",
)

// ParseBearing converts a surveyor's bearing into a whole-circle azimuth in
// degrees clockwise from grid north, in [0, 360).
//
// Quadrant bearings ("N 45°30'15\" E", "S45-30-15W", "N 12.5 W") and plain
// azimuths ("045°30'15\"", "123.5") are accepted.
func ParseBearing(s string) (float64, error) {
	b := strings.ToUpper(strings.TrimSpace(s))
	if b == "" {
		return 0, errEmptyBearing
	}
	if strings.HasPrefix(b, "-") {
		return 0, errors.New("bearing must not be negative")
	}

	first, last := b[0], b[len(b)-1]
	if (first == 'N' || first == 'S') && (last == 'E' || last == 'W') {
		angle, err := parseAngle(b[1 : len(b)-1])
		if err != nil {
			return 0, err
		}
		if angle > 90 {
			return 0, fmt.Errorf("quadrant angle %.6g exceeds 90 degrees", angle)
		}
		switch {
		case first == 'N' && last == 'E':
			return normalize(angle), nil
		case first == 'S' && last == 'E':
			return normalize(180 - angle), nil
		case first == 'S' && last == 'W':
			return normalize(180 + angle), nil
		default:
			return normalize(360 - angle), nil
		}
	}

	angle, err := parseAngle(b)
	if err != nil {
		return 0, err
	}
	if angle >= 360 {
		return 0, fmt.Errorf("azimuth %.6g must be below 360 degrees", angle)
	}
	return angle, nil
}

// parseAngle reads decimal degrees or a degrees/minutes/seconds triple.
func parseAngle(s string) (float64, error) {
	fields := strings.Fields(angleSeparators.Replace(s))
	if len(fields) == 0 || len(fields) > 3 {
		return 0, errBadAngle
	}

	parts := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, errBadAngle
		}
		parts[i] = v
	}

	deg := parts[0]
	if len(parts) > 1 {
		if parts[1] >= 60 {
			return 0, fmt.Errorf("minutes %.6g must be below 60", parts[1])
		}
		deg += parts[1] / 60
	}
	if len(parts) > 2 {
		if parts[2] >= 60 {
			return 0, fmt.Errorf("seconds %.6g must be below 60", parts[2])
		}
		deg += parts[2] / 3600
	}
	return deg, nil
}

func normalize(deg float64) float64 {
	for deg >= 360 {
		deg -= 360
	}
	for deg < 0 {
		deg += 360
	}
	return deg
}
