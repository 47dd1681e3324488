package coroutine

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded is returned by Create when the registry is full.
	ErrCapacityExceeded = errors.New("coroutine capacity exceeded")

	// ErrInvalidOrInactiveTask is returned when an id is out of range or the
	// task cannot be resumed in its current status.
	ErrInvalidOrInactiveTask = errors.New("invalid coroutine id or coroutine not active")

	// ErrNilEntry is returned by Create when the task body is nil.
	ErrNilEntry = errors.New("coroutine entry is nil")

	// ErrClosed is returned by Create and Resume once the runtime is closed.
	ErrClosed = errors.New("coroutine runtime closed")

	// ErrYieldOutsideTask is the panic value raised when Yield is called on a
	// task that is not currently running (for example a yielder that escaped
	// its body).
	ErrYieldOutsideTask = errors.New("yield called outside a running coroutine")
)

// PanicError carries a panic raised inside a task body. Resume re-panics with
// a *PanicError on the resumer's goroutine.
type PanicError struct {
	TaskID int
	Value  any
	Stack  []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("coroutine %d panicked: %v", e.TaskID, e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
