//go:build !linux

package realtime

import "github.com/pkg/errors"

var errUnsupported = errors.New("realtime: not supported on this platform")

// PinToCore is only supported on Linux.
func PinToCore(core int) error {
	return errUnsupported
}

// RaisePriority is only supported on Linux.
func RaisePriority() error {
	return errUnsupported
}
