package coroutine

import (
	"runtime"
	"runtime/debug"
)

// Status is the lifecycle state of a task.
type Status int

const (
	// StatusReady marks a registered task that has never run.
	StatusReady Status = iota
	// StatusRunning marks the task currently holding control.
	StatusRunning
	// StatusSuspended marks a task parked in Yield.
	StatusSuspended
	// StatusFinished marks a task whose body returned. It is terminal.
	StatusFinished
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusRunning:
		return "Running"
	case StatusSuspended:
		return "Suspended"
	case StatusFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// Active reports whether a task in this status may still be resumed or is
// running.
func (s Status) Active() bool { return s != StatusFinished }

// Func is a task body. The yielder is the body's only way to suspend itself.
type Func func(y *Yielder)

// Task is one registry record.
//
// The body runs on its own goroutine, whose stack is the task's private work
// area and holds the saved execution point between turns. resume carries
// control into the body (the body context); ret carries it back to whichever
// Resume call is waiting (the return context). Both channels are unbuffered,
// so exactly one side is runnable at a time.
type Task struct {
	rt     *Runtime
	id     int
	entry  Func
	status Status

	started   bool
	cancelled bool
	resume    chan struct{}
	ret       chan struct{}
	exited    chan struct{}
	panicErr  *PanicError
}

func newTask(rt *Runtime, id int, entry Func) *Task {
	return &Task{
		rt:     rt,
		id:     id,
		entry:  entry,
		status: StatusReady,
		resume: make(chan struct{}),
		ret:    make(chan struct{}),
		exited: make(chan struct{}),
	}
}

// ID returns the task id.
func (t *Task) ID() int { return t.id }

// Status returns the current status.
func (t *Task) Status() Status { return t.status }

// run is the goroutine entry point. It hands control back to the resumer
// exactly once when the body returns or panics. A body unwound by Close does
// not hand back: nobody is waiting. A Yield from a deferred call during that
// unwind panics with ErrYieldOutsideTask, which is swallowed here so the
// unwind can complete; any other panic is kept for Close to report.
func (t *Task) run() {
	defer close(t.exited)
	defer func() {
		if t.cancelled {
			if r := recover(); r != nil && r != ErrYieldOutsideTask {
				t.panicErr = &PanicError{TaskID: t.id, Value: r, Stack: debug.Stack()}
			}
			return
		}
		if r := recover(); r != nil {
			t.panicErr = &PanicError{TaskID: t.id, Value: r, Stack: debug.Stack()}
		}
		t.status = StatusFinished
		t.ret <- struct{}{}
	}()

	t.entry(&Yielder{task: t})
}

// Yielder is the suspension capability handed to a task body.
type Yielder struct {
	task *Task
}

// ID returns the id of the task owning this yielder.
func (y *Yielder) ID() int { return y.task.id }

// Yield suspends the calling task and returns control to the pending Resume.
// It returns when the task is resumed again.
//
// Only the task currently holding control may yield. Yield panics with
// ErrYieldOutsideTask if the task is not running, or if it is running but has
// handed control to a nested Resume (a yielder leaked into another body).
func (y *Yielder) Yield() {
	t := y.task
	if t.status != StatusRunning || t.rt.current != t.id {
		panic(ErrYieldOutsideTask)
	}
	t.status = StatusSuspended
	t.ret <- struct{}{}

	if _, ok := <-t.resume; !ok {
		// Runtime closed while parked: unwind the body, running its defers.
		t.cancelled = true
		t.status = StatusFinished
		runtime.Goexit()
	}
}
