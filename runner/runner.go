package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hupe1980/xocoro/archive"
	"github.com/hupe1980/xocoro/coroutine"
	"github.com/hupe1980/xocoro/internal/util"
	"github.com/hupe1980/xocoro/kxo"
	"github.com/hupe1980/xocoro/logging"
	"github.com/hupe1980/xocoro/render"
	"github.com/hupe1980/xocoro/scheduler"
	"github.com/hupe1980/xocoro/terminal"
)

const (
	msgDisplayOff = "Stopping to display the chess board...\n"
	msgEndGame    = "Stopping the kernel space tic-tac-toe game...\n"
)

// Keyboard delivers single key presses.
type Keyboard interface {
	Poll(timeout time.Duration) (byte, bool, error)
}

// BoardSource delivers board snapshots.
type BoardSource interface {
	WaitReadable(timeout time.Duration) (bool, error)
	ReadBoard() (kxo.Board, error)
}

// HistorySource fetches the engine's game history table.
type HistorySource interface {
	Histories() ([]kxo.History, error)
}

// AttrStore is the module's control record.
type AttrStore interface {
	Read() (kxo.State, error)
	ToggleDisplay() (bool, error)
	RequestEnd() error
}

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// Device endpoints. Keyboard, Board, Histories and Attr are required;
	// Run refuses to start without them. cmd/xo-user wires the real tty and
	// the kxo character device; tests wire the fakes in internal/testutil.
	Keyboard  Keyboard
	Board     BoardSource
	Histories HistorySource
	Attr      AttrStore

	// Out receives the board, the clock line and the history dump.
	// Defaults to os.Stdout.
	Out io.Writer

	// Archive stores the history table fetched on Ctrl-Q. Nil disables
	// archiving. A failed save is logged and never ends the session.
	Archive archive.Store

	// PollTimeout bounds every keyboard poll and every device wait, and so
	// bounds how long one task holds control before it yields. Larger
	// values reduce wakeups but make key presses feel sluggish while the
	// board is idle. Defaults to 100ms.
	PollTimeout time.Duration

	// Capacity sizes the coroutine registry. The session creates two tasks,
	// so anything above that is headroom. Defaults to coroutine.DefaultCapacity.
	Capacity int

	// StopPolicy decides when Ctrl-Q ends the sweep loop: at the end of the
	// sweep (the default) or right after the resume that raised it.
	StopPolicy scheduler.StopPolicy

	// Interval is the pause between sweeps. Zero runs sweeps back to back,
	// which is fine because both tasks block in their own polls.
	Interval time.Duration

	// Callbacks observe the scheduler (before and after each resume, and
	// after each sweep). Nil registers none.
	Callbacks *scheduler.CallbackManager

	// Logger (defaults to NoOp logger if nil). A *logging.ComponentLogger
	// is scoped to the "runner" component and the run id.
	Logger logging.Logger

	// Clock supplies the time printed under the board. Defaults to time.Now.
	Clock func() time.Time
}

// Runner is one xo-user session.
//
// It owns a coroutine runtime with two tasks, the keyboard task and the board
// task, and a scheduler that resumes them round-robin. All device access and
// all output happen on whichever task holds control, so the session needs no
// locks. The only state shared with other goroutines is the stop flag set by
// Stop.
//
// A Runner is single use: call Run once.
type Runner struct {
	keyboard    Keyboard
	board       BoardSource
	histories   HistorySource
	attr        AttrStore
	out         io.Writer
	archive     archive.Store
	pollTimeout time.Duration
	capacity    int
	policy      scheduler.StopPolicy
	interval    time.Duration
	callbacks   *scheduler.CallbackManager
	logger      logging.Logger
	clock       func() time.Time
	render      *render.Renderer

	runID   string
	stop    scheduler.Flag
	display bool
	err     error
}

// New constructs a Runner with optional overrides.
func New(optFns ...func(o *Options)) *Runner {
	opts := Options{
		Out:         os.Stdout,
		PollTimeout: 100 * time.Millisecond,
		Capacity:    coroutine.DefaultCapacity,
		StopPolicy:  scheduler.StopAtSweepBoundary,
		Logger:      logging.NoOpLogger{},
		Clock:       time.Now,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	runID := util.NewID()
	logger := logging.OrNoOp(opts.Logger)
	if cl, ok := logger.(*logging.ComponentLogger); ok {
		logger = cl.WithComponent("runner").WithRun(runID)
	}

	return &Runner{
		keyboard:    opts.Keyboard,
		board:       opts.Board,
		histories:   opts.Histories,
		attr:        opts.Attr,
		out:         opts.Out,
		archive:     opts.Archive,
		pollTimeout: opts.PollTimeout,
		capacity:    opts.Capacity,
		policy:      opts.StopPolicy,
		interval:    opts.Interval,
		callbacks:   opts.Callbacks,
		logger:      logger,
		clock:       opts.Clock,
		render:      render.New(opts.Out),
		runID:       runID,
	}
}

// RunID returns the id of this session.
func (r *Runner) RunID() string { return r.runID }

// Stop asks the session to end at the next scheduling point. It is safe to
// call from another goroutine, e.g. a signal handler.
func (r *Runner) Stop() { r.stop.Set() }

// Run drives the keyboard and board tasks until Ctrl-Q, a fatal error or the
// end of ctx. It returns the first fatal error.
func (r *Runner) Run(ctx context.Context) error {
	if r.keyboard == nil || r.board == nil || r.histories == nil || r.attr == nil {
		return fmt.Errorf("runner: keyboard, board, histories and attr are required")
	}

	state, err := r.attr.Read()
	if err != nil {
		return fmt.Errorf("read attr: %w", err)
	}
	r.display = state.Display

	rt := coroutine.New(func(o *coroutine.Options) {
		o.Capacity = r.capacity
		o.Logger = r.logger
	})
	defer rt.Close()

	kbID, err := rt.Create(r.keyboardTask)
	if err != nil {
		return err
	}
	boardID, err := rt.Create(r.boardTask)
	if err != nil {
		return err
	}

	s := scheduler.New(rt, func(o *scheduler.Options) {
		o.Stop = &r.stop
		o.Policy = r.policy
		o.Interval = r.interval
		o.Logger = r.logger
		o.Callbacks = r.callbacks
	})
	s.Add(kbID, boardID)

	r.logger.Info("Session started", "display", r.display, "policy", r.policy.String())
	if cl, ok := r.logger.(*logging.ComponentLogger); ok {
		defer cl.StartTimer("session")()
	}

	runErr := s.Run(ctx)
	if r.err != nil {
		return r.err
	}
	if runErr != nil {
		return runErr
	}

	r.logger.Info("Session finished", "sweeps", s.Sweeps())
	return nil
}

func (r *Runner) keyboardTask(y *coroutine.Yielder) {
	for !r.stop.Stopped() {
		key, ok, err := r.keyboard.Poll(r.pollTimeout)
		if err != nil {
			r.fail(fmt.Errorf("keyboard: %w", err))
			return
		}
		if ok {
			done, err := r.handleKey(key)
			if err != nil {
				r.fail(err)
				return
			}
			if done {
				return
			}
		}
		y.Yield()
	}
}

func (r *Runner) handleKey(key byte) (bool, error) {
	switch key {
	case terminal.KeyCtrlP:
		display, err := r.attr.ToggleDisplay()
		if err != nil {
			return false, fmt.Errorf("toggle display: %w", err)
		}
		r.display = display
		r.logger.Debug("Display toggled", "display", display)
		if !display {
			if _, err := io.WriteString(r.out, msgDisplayOff); err != nil {
				return false, err
			}
		}
		return false, nil

	case terminal.KeyCtrlQ:
		if err := r.attr.RequestEnd(); err != nil {
			return false, fmt.Errorf("request end: %w", err)
		}
		r.display = false
		if _, err := io.WriteString(r.out, msgEndGame); err != nil {
			return false, err
		}

		hs, err := r.histories.Histories()
		if err != nil {
			return false, fmt.Errorf("fetch history: %w", err)
		}
		if _, err := io.WriteString(r.out, r.render.History(hs)); err != nil {
			return false, err
		}
		r.archiveHistory(hs)

		r.stop.Set()
		return true, nil
	}
	return false, nil
}

// archiveHistory failures are logged only; the game already ended.
func (r *Runner) archiveHistory(hs []kxo.History) {
	if r.archive == nil {
		return
	}
	if err := r.archive.Save(context.Background(), r.runID, hs); err != nil {
		r.logger.Warn("Archiving history failed", "error", err.Error())
		return
	}
	r.logger.Debug("History archived", "records", len(kxo.NonEmpty(hs)))
}

func (r *Runner) boardTask(y *coroutine.Yielder) {
	for !r.stop.Stopped() {
		if r.display {
			if err := r.drawIfReady(); err != nil {
				r.fail(err)
				return
			}
		}
		y.Yield()
	}
}

func (r *Runner) drawIfReady() error {
	ready, err := r.board.WaitReadable(r.pollTimeout)
	if err != nil {
		return fmt.Errorf("wait device: %w", err)
	}
	if !ready {
		return nil
	}

	b, err := r.board.ReadBoard()
	if err != nil {
		return fmt.Errorf("read board: %w", err)
	}
	if err := terminal.ClearScreen(r.out); err != nil {
		return err
	}
	_, err = io.WriteString(r.out, r.render.Board(b)+r.render.Clock(r.clock()))
	return err
}

func (r *Runner) fail(err error) {
	if r.err == nil {
		r.err = err
	}
	r.logger.Error("Fatal I/O error", "error", err.Error())
	r.stop.Set()
}
