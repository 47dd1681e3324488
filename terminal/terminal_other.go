//go:build !linux

package terminal

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("terminal: unsupported platform")

// EnableRaw reports an error outside Linux.
func EnableRaw(int) (func() error, error) { return nil, errUnsupported }

// Keyboard is unavailable outside Linux.
type Keyboard struct{}

// NewKeyboard returns a Keyboard whose Poll always fails.
func NewKeyboard(int) *Keyboard { return &Keyboard{} }

// Poll reports an error outside Linux.
func (*Keyboard) Poll(time.Duration) (byte, bool, error) { return 0, false, errUnsupported }
