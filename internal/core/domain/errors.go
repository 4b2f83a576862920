package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput wraps request validation failures.
var ErrInvalidInput = errors.New("invalid boundary input")

// ErrEmptyBoundary is returned when a boundary has no segments.
var ErrEmptyBoundary = errors.New("boundary must contain at least one segment")

// ErrInvalidCoordinate is returned for NaN or infinite coordinates.
var ErrInvalidCoordinate = errors.New("coordinate must be a finite number")

// UnresolvedReferenceError reports a segment naming a point that was not supplied.
type UnresolvedReferenceError struct {
	Point   string
	Segment int
	Field   string // "from_point" or "to_point"
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("segment %d: %s %q does not match any point", e.Segment, e.Field, e.Point)
}

// DuplicatePointError reports a point name defined more than once.
type DuplicatePointError struct {
	Name string
}

func (e *DuplicatePointError) Error() string {
	return fmt.Sprintf("point %q is defined more than once", e.Name)
}

// BearingParseError reports a segment bearing that could not be understood.
type BearingParseError struct {
	Segment int
	Bearing string
	Reason  string
}

func (e *BearingParseError) Error() string {
	return fmt.Sprintf("segment %d: invalid bearing %q: %s", e.Segment, e.Bearing, e.Reason)
}

// IsValidation reports whether err is caused by malformed input rather than
// by an unresolved point reference or an internal failure.
func IsValidation(err error) bool {
	var dup *DuplicatePointError
	var brg *BearingParseError
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyBoundary) ||
		errors.Is(err, ErrInvalidCoordinate) ||
		errors.As(err, &dup) ||
		errors.As(err, &brg)
}
