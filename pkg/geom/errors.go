package geom

import "errors"

var (
	// ErrDegenerateInput is returned when a point set cannot support the
	// requested operation (empty input, invalid precision).
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrInvalidPolygon is returned when a vertex loop cannot form a polygon.
	ErrInvalidPolygon = errors.New("invalid polygon")

	// ErrInternal marks arithmetic or optimizer failures. Callers report it
	// generically.
	ErrInternal = errors.New("internal geometry error")
)
