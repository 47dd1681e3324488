package kxo

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// AttrRecordSize is the length of the attribute record "D R E\n".
const AttrRecordSize = 6

const (
	attrDisplayOffset = 0
	attrResumeOffset  = 2
	attrEndOffset     = 4
)

// State is the decoded attribute record.
type State struct {
	Display bool
	Resume  bool
	End     bool
}

// Attr reads and rewrites the kxo attribute record. Each call opens the file
// afresh; no handle is kept between calls.
type Attr struct {
	fs   afero.Fs
	path string
}

// NewAttr returns an Attr for the record at path on fs.
func NewAttr(fs afero.Fs, path string) *Attr {
	return &Attr{fs: fs, path: path}
}

// Read returns the current flags.
func (a *Attr) Read() (State, error) {
	f, err := a.fs.OpenFile(a.path, os.O_RDONLY, 0)
	if err != nil {
		return State{}, fmt.Errorf("open attr: %w", err)
	}
	defer f.Close()

	buf, err := readRecord(f)
	if err != nil {
		return State{}, err
	}
	return parseState(buf), nil
}

// ToggleDisplay flips the display flag and returns its new value.
func (a *Attr) ToggleDisplay() (bool, error) {
	var display bool
	err := a.update(func(buf []byte) {
		if buf[attrDisplayOffset] == '0' {
			buf[attrDisplayOffset] = '1'
		} else {
			buf[attrDisplayOffset] = '0'
		}
		display = buf[attrDisplayOffset] == '1'
	})
	return display, err
}

// RequestEnd raises the end flag, asking the engine to stop.
func (a *Attr) RequestEnd() error {
	return a.update(func(buf []byte) { buf[attrEndOffset] = '1' })
}

func (a *Attr) update(fn func(buf []byte)) error {
	f, err := a.fs.OpenFile(a.path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open attr: %w", err)
	}
	defer f.Close()

	buf, err := readRecord(f)
	if err != nil {
		return err
	}
	fn(buf)
	if _, err := f.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("write attr: %w", err)
	}
	return nil
}

// readRecord reads the record, filling bytes the file did not provide from
// the all-clear record so a short or garbled file still yields six bytes.
func readRecord(f afero.File) ([]byte, error) {
	buf := []byte("0 0 0\n")
	tmp := make([]byte, AttrRecordSize)
	n, err := f.ReadAt(tmp, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read attr: %w", err)
	}
	copy(buf, tmp[:n])
	return buf, nil
}

// parseState treats every byte other than '0' as a raised flag.
func parseState(buf []byte) State {
	return State{
		Display: buf[attrDisplayOffset] != '0',
		Resume:  buf[attrResumeOffset] != '0',
		End:     buf[attrEndOffset] != '0',
	}
}
