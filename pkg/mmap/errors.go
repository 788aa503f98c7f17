package mmap

import "github.com/pkg/errors"

var (
	// ErrUnaligned is returned when a mapping does not start on a page boundary.
	ErrUnaligned = errors.New("mmap: address not page aligned")
	// ErrUnsupported is returned on platforms without physical memory mapping.
	ErrUnsupported = errors.New("mmap: not supported on this platform")
)
