package testutil

import (
	"time"

	"github.com/spf13/afero"

	"github.com/hupe1980/xocoro/kxo"
)

// FakeBoard serves queued snapshots. The device reports readable while
// snapshots remain.
type FakeBoard struct {
	frames  []kxo.Board
	WaitErr error
	ReadErr error
	waits   int
	reads   int
}

// NewFakeBoard queues frames.
func NewFakeBoard(frames ...kxo.Board) *FakeBoard {
	return &FakeBoard{frames: append([]kxo.Board{}, frames...)}
}

// Push queues more frames.
func (b *FakeBoard) Push(frames ...kxo.Board) { b.frames = append(b.frames, frames...) }

// WaitReadable implements the board source.
func (b *FakeBoard) WaitReadable(time.Duration) (bool, error) {
	b.waits++
	if b.WaitErr != nil {
		return false, b.WaitErr
	}
	return len(b.frames) > 0, nil
}

// ReadBoard pops the oldest frame.
func (b *FakeBoard) ReadBoard() (kxo.Board, error) {
	b.reads++
	if b.ReadErr != nil {
		return kxo.Board{}, b.ReadErr
	}
	if len(b.frames) == 0 {
		return kxo.Board{}, kxo.ErrShortRead
	}
	f := b.frames[0]
	b.frames = b.frames[1:]
	return f, nil
}

// Waits returns how often WaitReadable was called.
func (b *FakeBoard) Waits() int { return b.waits }

// Reads returns how often ReadBoard was called.
func (b *FakeBoard) Reads() int { return b.reads }

// FakeHistory returns a fixed history table.
type FakeHistory struct {
	Table []kxo.History
	Err   error
	calls int
}

// Histories implements the history source.
func (h *FakeHistory) Histories() ([]kxo.History, error) {
	h.calls++
	if h.Err != nil {
		return nil, h.Err
	}
	out := make([]kxo.History, kxo.HistorySize)
	copy(out, h.Table)
	return out, nil
}

// Calls returns how often Histories was called.
func (h *FakeHistory) Calls() int { return h.calls }

// SysfsBuilder lays out the module's status and attribute files on an
// in-memory filesystem.
// Example:
//
//	fs := NewSysfsBuilder().Status("live").Attr("1 0 0\n").Build()
type SysfsBuilder struct {
	status *string
	attr   *string
}

// NewSysfsBuilder creates a builder for a tree with no module files.
func NewSysfsBuilder() *SysfsBuilder { return &SysfsBuilder{} }

// Status sets the content of the initstate file (chainable).
func (b *SysfsBuilder) Status(s string) *SysfsBuilder { b.status = &s; return b }

// Live writes "live\n" as the module state (chainable).
func (b *SysfsBuilder) Live() *SysfsBuilder { return b.Status(kxo.LiveState + "\n") }

// Attr sets the raw attribute record (chainable).
func (b *SysfsBuilder) Attr(record string) *SysfsBuilder { b.attr = &record; return b }

// Build writes the files at their default paths.
func (b *SysfsBuilder) Build() afero.Fs {
	fs := afero.NewMemMapFs()
	if b.status != nil {
		_ = afero.WriteFile(fs, kxo.StatusFile, []byte(*b.status), 0o444)
	}
	if b.attr != nil {
		_ = afero.WriteFile(fs, kxo.AttrFile, []byte(*b.attr), 0o644)
	}
	return fs
}
