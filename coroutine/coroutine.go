package coroutine

import (
	"fmt"
	"time"

	"github.com/hupe1980/xocoro/logging"
)

// DefaultCapacity is the registry size used when Options.Capacity is unset.
const DefaultCapacity = 10

// Options holds configuration overrides passed to New().
type Options struct {
	// Capacity bounds the number of tasks the registry accepts over the
	// lifetime of the runtime. Finished tasks keep their slot, since ids are
	// never reused. Values <= 0 fall back to DefaultCapacity.
	Capacity int

	// Logger (defaults to NoOp logger if nil). Create and Close log at
	// Debug and Warn; a logger with a LogResume method gets one structured
	// record per Resume.
	Logger logging.Logger
}

// Runtime owns a fixed-capacity registry of tasks and the primitives to
// create, resume and query them.
//
// A Runtime is not safe for concurrent use in the usual sense and does not
// need to be: control is handed between the resumer and a single task body at
// a time, so every access happens on whichever goroutine currently holds
// control. Create, Resume, IsActive and friends may be called from the
// scheduler or from inside a task body. Resume from inside a body nests: the
// resumer is blocked until the inner task yields or returns, and Current
// reports the innermost running task.
//
// Stop with Close. Suspended bodies are otherwise parked goroutines that
// live as long as the process.
type Runtime struct {
	tasks    []*Task
	capacity int
	current  int
	closed   bool
	logger   logging.Logger
}

// New constructs a Runtime with optional overrides.
func New(optFns ...func(o *Options)) *Runtime {
	opts := Options{
		Capacity: DefaultCapacity,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}

	return &Runtime{
		tasks:    make([]*Task, 0, opts.Capacity),
		capacity: opts.Capacity,
		current:  -1,
		logger:   logging.OrNoOp(opts.Logger),
	}
}

// Create registers entry as a new Ready task and returns its id. Ids are
// assigned sequentially from zero. The body does not run until the first
// Resume. When the registry is full Create returns -1 and an error wrapping
// ErrCapacityExceeded without touching the registry.
func (rt *Runtime) Create(entry Func) (int, error) {
	if rt.closed {
		return -1, ErrClosed
	}
	if entry == nil {
		return -1, ErrNilEntry
	}
	if len(rt.tasks) >= rt.capacity {
		rt.logger.Warn("Too many coroutines", "capacity", rt.capacity)
		return -1, fmt.Errorf("create coroutine %d: %w", len(rt.tasks), ErrCapacityExceeded)
	}

	id := len(rt.tasks)
	rt.tasks = append(rt.tasks, newTask(rt, id, entry))
	rt.logger.Debug("Coroutine created", "task_id", id)

	return id, nil
}

// Resume transfers control into task id and blocks until the task either
// yields or returns. Only Ready and Suspended tasks can be resumed; anything
// else yields an error wrapping ErrInvalidOrInactiveTask and no transfer.
//
// If the body panics, the task is marked Finished and Resume re-panics with a
// *PanicError on the caller's goroutine.
func (rt *Runtime) Resume(id int) error {
	if rt.closed {
		return fmt.Errorf("resume coroutine %d: %w", id, ErrClosed)
	}

	t, err := rt.lookup(id)
	if err != nil {
		rt.logResume(id, StatusFinished, 0, err)
		return err
	}
	if t.status != StatusReady && t.status != StatusSuspended {
		err := fmt.Errorf("resume coroutine %d (%s): %w", id, t.status, ErrInvalidOrInactiveTask)
		rt.logResume(id, t.status, 0, err)
		return err
	}

	prev := rt.current
	rt.current = id
	t.status = StatusRunning
	start := time.Now()

	if !t.started {
		t.started = true
		go t.run()
	} else {
		t.resume <- struct{}{}
	}
	<-t.ret

	rt.current = prev

	rt.logResume(id, t.status, time.Since(start), nil)

	if p := t.panicErr; p != nil {
		t.panicErr = nil
		panic(p)
	}

	return nil
}

// IsActive reports whether id names a task that is Ready, Running or
// Suspended. Out-of-range ids and Finished tasks report false.
func (rt *Runtime) IsActive(id int) bool {
	t, err := rt.lookup(id)
	if err != nil {
		return false
	}
	return t.status.Active()
}

// Status returns the status of task id.
func (rt *Runtime) Status(id int) (Status, error) {
	t, err := rt.lookup(id)
	if err != nil {
		return StatusFinished, err
	}
	return t.status, nil
}

// Count returns the number of tasks created so far.
func (rt *Runtime) Count() int { return len(rt.tasks) }

// Capacity returns the registry bound.
func (rt *Runtime) Capacity() int { return rt.capacity }

// Current returns the id of the task being resumed, if any.
func (rt *Runtime) Current() (int, bool) {
	return rt.current, rt.current >= 0
}

// Close unwinds every suspended task body and marks all unfinished tasks
// Finished. Deferred calls inside suspended bodies run before Close returns.
//
// Close is a no-op when called from inside a task body: the caller's own
// goroutine and every body on the resume chain are blocked on handoffs that
// only the outermost resumer can complete. The attempt is logged and the
// runtime stays open.
func (rt *Runtime) Close() {
	if rt.closed {
		return
	}
	if rt.current >= 0 {
		rt.logger.Warn("Close called from inside a coroutine, ignored", "task_id", rt.current)
		return
	}
	rt.closed = true

	for _, t := range rt.tasks {
		switch t.status {
		case StatusSuspended:
			close(t.resume)
			<-t.exited
			t.status = StatusFinished
			if p := t.panicErr; p != nil {
				t.panicErr = nil
				rt.logger.Error("Coroutine panicked while closing", "task_id", t.id, "panic", fmt.Sprint(p.Value))
			}
		case StatusReady:
			t.status = StatusFinished
		}
	}

	rt.logger.Debug("Coroutine runtime closed", "tasks", len(rt.tasks))
}

// logResume prefers the structured LogResume helper when the logger has one.
func (rt *Runtime) logResume(id int, status Status, dur time.Duration, err error) {
	if rl, ok := rt.logger.(interface {
		LogResume(id int, status string, dur time.Duration, err error)
	}); ok {
		rl.LogResume(id, status.String(), dur, err)
		return
	}
	if err != nil {
		rt.logger.Warn("Invalid coroutine ID or coroutine not active", "task_id", id, "error", err.Error())
		return
	}
	rt.logger.Debug("Coroutine resumed", "task_id", id, "status", status.String(), "duration", dur)
}

func (rt *Runtime) lookup(id int) (*Task, error) {
	if id < 0 || id >= len(rt.tasks) {
		return nil, fmt.Errorf("coroutine %d: %w", id, ErrInvalidOrInactiveTask)
	}
	return rt.tasks[id], nil
}
