// Command xo-user displays the kxo kernel tic-tac-toe engine's board and
// forwards Ctrl-P (toggle display) and Ctrl-Q (stop and dump history).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/hupe1980/xocoro/archive"
	"github.com/hupe1980/xocoro/config"
	"github.com/hupe1980/xocoro/kxo"
	"github.com/hupe1980/xocoro/logging"
	"github.com/hupe1980/xocoro/runner"
	"github.com/hupe1980/xocoro/terminal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, afero.NewOsFs())
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, fs afero.Fs) error {
	cfg, err := config.Load(args, func(o *config.Options) { o.Fs = fs })
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return err
	}

	logger, closeLog, err := newLogger(cfg.Log, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
		return err
	}
	defer closeLog()

	if err := kxo.CheckStatus(fs, cfg.Device.StatusFile); err != nil {
		var se *kxo.StatusError
		if errors.As(err, &se) {
			fmt.Fprintln(stdout, se.Error())
		} else {
			fmt.Fprintln(stdout, "kxo status : not loaded")
		}
		logger.Debug("Status probe failed", "error", err.Error())
		return err
	}

	store, closeStore, err := openArchive(cfg.Archive.Path, fs)
	if err != nil {
		logger.Error("Opening archive failed", "path", cfg.Archive.Path, "error", err.Error())
		return err
	}
	defer closeStore()

	dev, err := kxo.OpenDevice(cfg.Device.Path)
	if err != nil {
		logger.Error("Opening device failed", "path", cfg.Device.Path, "error", err.Error())
		return err
	}
	defer dev.Close()

	stdinFd := int(os.Stdin.Fd())
	restore, err := terminal.EnableRaw(stdinFd)
	if err != nil {
		logger.Error("Enabling raw mode failed", "error", err.Error())
		return err
	}
	defer func() {
		if err := restore(); err != nil {
			logger.Warn("Restoring terminal failed", "error", err.Error())
		}
	}()

	r := runner.New(func(o *runner.Options) {
		o.Keyboard = terminal.NewKeyboard(stdinFd)
		o.Board = dev
		o.Histories = dev
		o.Attr = kxo.NewAttr(fs, cfg.Device.AttrFile)
		o.Out = stdout
		o.Archive = store
		o.PollTimeout = cfg.Scheduler.PollTimeout
		o.Interval = cfg.Scheduler.Interval
		o.Capacity = cfg.Runtime.Capacity
		o.StopPolicy = cfg.StopPolicy()
		o.Logger = logger
	})

	if err := r.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Interrupted", "run_id", r.RunID())
			return nil
		}
		logger.Error("xo-user failed", "run_id", r.RunID(), "error", err.Error())
		return err
	}
	return nil
}

func newLogger(c config.LogConfig, fs afero.Fs) (*logging.ComponentLogger, func(), error) {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, nil, err
	}

	lc := logging.DefaultLoggerConfig()
	lc.Level = level
	lc.Format = c.Format
	lc.Component = "xo-user"

	closeFn := func() {}
	if c.File != "" {
		f, err := fs.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		lc.Output = f
		closeFn = func() { _ = f.Close() }
	}
	return logging.NewLogger(lc), closeFn, nil
}

func openArchive(path string, fs afero.Fs) (archive.Store, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir archive dir: %w", err)
	}
	s, err := archive.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}
