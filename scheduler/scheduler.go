package scheduler

import (
	"context"
	"time"

	"github.com/hupe1980/xocoro/logging"
)

// Runtime is the part of coroutine.Runtime the scheduler drives.
type Runtime interface {
	IsActive(id int) bool
	Resume(id int) error
}

// Options configures a Scheduler.
type Options struct {
	// Stop ends the loop once it reports true. Nil never stops; the loop then
	// runs until no task is active, MaxSweeps is hit or the context ends.
	Stop Stopper
	// Policy decides whether Stop is honoured mid-sweep.
	Policy StopPolicy
	// Interval is the pause between sweeps. Zero means none.
	Interval time.Duration
	// MaxSweeps bounds the number of sweeps. Zero means unlimited.
	MaxSweeps int
	// Logger receives resume and sweep diagnostics.
	Logger logging.Logger
	// Callbacks observe every scheduling step.
	Callbacks *CallbackManager
}

// Scheduler repeatedly offers every registered task a turn in creation
// order until a termination condition is observed.
type Scheduler struct {
	rt        Runtime
	ids       []int
	stop      Stopper
	policy    StopPolicy
	interval  time.Duration
	maxSweeps int
	logger    logging.Logger
	callbacks *CallbackManager

	sweeps int
}

// New constructs a Scheduler driving rt.
func New(rt Runtime, optFns ...func(o *Options)) *Scheduler {
	opts := Options{
		Policy: StopAtSweepBoundary,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Scheduler{
		rt:        rt,
		stop:      opts.Stop,
		policy:    opts.Policy,
		interval:  opts.Interval,
		maxSweeps: opts.MaxSweeps,
		logger:    logging.OrNoOp(opts.Logger),
		callbacks: opts.Callbacks,
	}
}

// Add appends task ids to the sweep order. Callers add ids in creation
// order; the list is never reordered.
func (s *Scheduler) Add(ids ...int) {
	s.ids = append(s.ids, ids...)
}

// Tasks returns a copy of the sweep order.
func (s *Scheduler) Tasks() []int {
	out := make([]int, len(s.ids))
	copy(out, s.ids)
	return out
}

// Sweeps returns the number of sweeps performed so far.
func (s *Scheduler) Sweeps() int { return s.sweeps }

// Run sweeps until the stop condition holds, no task is active, MaxSweeps
// is reached or ctx is done. Conditions are evaluated between sweeps (and,
// under StopImmediately, after every resume). It returns ctx.Err() on
// cancellation, a callback error if one aborts, and nil otherwise.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Debug("Scheduler started", "tasks", len(s.ids), "policy", s.policy.String())

	for {
		if s.stopped() {
			s.logger.Debug("Scheduler stopped", "sweeps", s.sweeps)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !s.anyActive() {
			s.logger.Debug("No active tasks left", "sweeps", s.sweeps)
			return nil
		}

		if s.maxSweeps > 0 && s.sweeps >= s.maxSweeps {
			s.logger.Debug("Sweep limit reached", "sweeps", s.sweeps)
			return nil
		}

		if _, err := s.Sweep(ctx); err != nil {
			return err
		}

		if s.interval > 0 && !s.stopped() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.interval):
			}
		}
	}
}

// Sweep performs one pass over the tasks, resuming each active one, and
// returns the number of resumes. Resume errors are logged and otherwise
// ignored; only callback errors are returned.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	s.sweeps++
	sweep := s.sweeps
	start := time.Now()
	resumed := 0

	for _, id := range s.ids {
		if !s.rt.IsActive(id) {
			continue
		}

		cbCtx := &CallbackContext{TaskID: id, Sweep: sweep, Resumed: resumed}
		if err := s.callbacks.ExecuteCallbacks(ctx, CallbackBeforeResume, cbCtx); err != nil {
			return resumed, err
		}

		err := s.rt.Resume(id)
		resumed++
		if err != nil {
			s.logger.Debug("Resume failed", "task_id", id, "sweep", sweep, "error", err.Error())
		}

		cbCtx = &CallbackContext{TaskID: id, Sweep: sweep, Resumed: resumed, Err: err}
		if cbErr := s.callbacks.ExecuteCallbacks(ctx, CallbackAfterResume, cbCtx); cbErr != nil {
			return resumed, cbErr
		}

		if s.policy == StopImmediately && s.stopped() {
			s.logger.Debug("Stop requested mid-sweep", "task_id", id, "sweep", sweep)
			break
		}
	}

	if cl, ok := s.logger.(interface {
		LogSweep(n, resumed int, dur time.Duration)
	}); ok {
		cl.LogSweep(sweep, resumed, time.Since(start))
	}

	cbCtx := &CallbackContext{TaskID: -1, Sweep: sweep, Resumed: resumed}
	if err := s.callbacks.ExecuteCallbacks(ctx, CallbackOnSweep, cbCtx); err != nil {
		return resumed, err
	}

	return resumed, nil
}

func (s *Scheduler) stopped() bool {
	return s.stop != nil && s.stop.Stopped()
}

func (s *Scheduler) anyActive() bool {
	for _, id := range s.ids {
		if s.rt.IsActive(id) {
			return true
		}
	}
	return false
}
