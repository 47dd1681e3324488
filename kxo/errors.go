package kxo

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoaded is returned when the status probe does not report "live".
	ErrNotLoaded = errors.New("kxo not loaded")

	// ErrShortRead is returned when a device record is truncated.
	ErrShortRead = errors.New("kxo short read")

	// ErrUnsupported is returned by device operations on platforms without
	// the kxo character device.
	ErrUnsupported = errors.New("kxo device unsupported on this platform")
)

// StatusError reports the load state found by the status probe.
type StatusError struct {
	State string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("kxo status : %s", e.State)
}

// Unwrap makes errors.Is(err, ErrNotLoaded) hold.
func (e *StatusError) Unwrap() error { return ErrNotLoaded }
