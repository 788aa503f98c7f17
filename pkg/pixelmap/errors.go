package pixelmap

import "github.com/pkg/errors"

var (
	// ErrOutOfRange is returned when a coordinate lies outside the rectangle
	// a mapper or table accepts. Coordinates are never clamped or wrapped.
	ErrOutOfRange = errors.New("pixelmap: coordinate out of range")
	// ErrInvalidMapper is returned when a mapper's parameters do not fit the
	// dimensions it is applied to, or a mapper description cannot be parsed.
	ErrInvalidMapper = errors.New("pixelmap: invalid mapper")
	// ErrNotMapped is returned by Table.Inverse for physical pixels no logical
	// pixel maps to.
	ErrNotMapped = errors.New("pixelmap: physical pixel not mapped")
)
