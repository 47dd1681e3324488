// Package xocoro provides a small façade over the coroutine runtime and the
// round-robin scheduler. Most programs interact with this package by:
//  1. Creating a Group via New()
//  2. Spawning task bodies with Go
//  3. Driving them with Run until a stop condition holds
//
// The coroutine and scheduler packages remain available for callers that
// need to resume tasks by hand or share a runtime between schedulers.
package xocoro

import (
	"context"
	"time"

	"github.com/hupe1980/xocoro/coroutine"
	"github.com/hupe1980/xocoro/logging"
	"github.com/hupe1980/xocoro/scheduler"
)

// Options configures a Group.
type Options struct {
	// Capacity bounds the number of tasks the group accepts.
	Capacity int
	// Stop ends Run once it reports true. Nil leaves only the group's own
	// flag, raised by Stop.
	Stop scheduler.Stopper
	// Policy decides whether a stop request is honoured mid-sweep.
	Policy scheduler.StopPolicy
	// Interval is the pause between sweeps.
	Interval time.Duration
	// MaxSweeps bounds the number of sweeps. Zero means unlimited.
	MaxSweeps int
	// Callbacks observe every scheduling step.
	Callbacks *scheduler.CallbackManager
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Group is a runtime plus the scheduler driving it.
type Group struct {
	rt    *coroutine.Runtime
	sched *scheduler.Scheduler
	flag  scheduler.Flag
}

// New creates a Group with optional overrides.
func New(optFns ...func(o *Options)) *Group {
	opts := Options{
		Capacity: coroutine.DefaultCapacity,
		Policy:   scheduler.StopAtSweepBoundary,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	g := &Group{}
	g.rt = coroutine.New(func(o *coroutine.Options) {
		o.Capacity = opts.Capacity
		o.Logger = opts.Logger
	})

	stop := scheduler.Stopper(&g.flag)
	if opts.Stop != nil {
		user := opts.Stop
		stop = scheduler.StopFunc(func() bool { return g.flag.Stopped() || user.Stopped() })
	}

	g.sched = scheduler.New(g.rt, func(o *scheduler.Options) {
		o.Stop = stop
		o.Policy = opts.Policy
		o.Interval = opts.Interval
		o.MaxSweeps = opts.MaxSweeps
		o.Logger = opts.Logger
		o.Callbacks = opts.Callbacks
	})

	return g
}

// Go registers fn as a new task at the end of the sweep order and returns
// its id. The body first runs during the next sweep.
func (g *Group) Go(fn coroutine.Func) (int, error) {
	id, err := g.rt.Create(fn)
	if err != nil {
		return -1, err
	}
	g.sched.Add(id)
	return id, nil
}

// Run sweeps until a stop condition holds, no task is active, the sweep
// limit is hit or ctx ends.
func (g *Group) Run(ctx context.Context) error { return g.sched.Run(ctx) }

// Stop raises the group's stop flag. Task bodies and other goroutines may
// call it.
func (g *Group) Stop() { g.flag.Set() }

// Runtime exposes the underlying runtime.
func (g *Group) Runtime() *coroutine.Runtime { return g.rt }

// Sweeps returns the number of sweeps performed so far.
func (g *Group) Sweeps() int { return g.sched.Sweeps() }

// Close unwinds every suspended task. The group is unusable afterwards.
func (g *Group) Close() { g.rt.Close() }

// RunSync is a synchronous helper that spawns fns in order, runs them to
// completion (or cancellation) and releases the group.
func RunSync(ctx context.Context, fns ...coroutine.Func) error {
	g := New(func(o *Options) {
		if len(fns) > o.Capacity {
			o.Capacity = len(fns)
		}
	})
	defer g.Close()

	for _, fn := range fns {
		if _, err := g.Go(fn); err != nil {
			return err
		}
	}
	return g.Run(ctx)
}
