package scheduler

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Stopper reports whether the scheduler should stop.
type Stopper interface {
	Stopped() bool
}

// StopFunc adapts a plain function to the Stopper interface.
type StopFunc func() bool

// Stopped implements Stopper.
func (f StopFunc) Stopped() bool { return f() }

// Flag is a termination flag a task (or a signal handler) raises to end the
// scheduler loop. The zero value is a lowered flag.
type Flag struct {
	v atomic.Bool
}

// Set raises the flag.
func (f *Flag) Set() { f.v.Store(true) }

// Clear lowers the flag.
func (f *Flag) Clear() { f.v.Store(false) }

// Stopped implements Stopper.
func (f *Flag) Stopped() bool { return f.v.Load() }

// StopPolicy decides when a raised stop condition takes effect.
type StopPolicy int

const (
	// StopAtSweepBoundary evaluates the stop condition only between sweeps;
	// the sweep in which it was raised runs to completion.
	StopAtSweepBoundary StopPolicy = iota
	// StopImmediately also evaluates the stop condition after every resume
	// and abandons the rest of the sweep.
	StopImmediately
)

// String returns the configuration name of the policy.
func (p StopPolicy) String() string {
	switch p {
	case StopAtSweepBoundary:
		return "sweep"
	case StopImmediately:
		return "immediate"
	default:
		return "unknown"
	}
}

// ParseStopPolicy maps "sweep" or "immediate" to a StopPolicy.
func ParseStopPolicy(s string) (StopPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sweep":
		return StopAtSweepBoundary, nil
	case "immediate":
		return StopImmediately, nil
	default:
		return StopAtSweepBoundary, fmt.Errorf("unknown stop policy %q", s)
	}
}
