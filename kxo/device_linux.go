//go:build linux

package kxo

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Device is an open handle on the kxo character device.
type Device struct {
	f  *os.File
	fd int
}

// OpenDevice opens the character device at path read-only.
func OpenDevice(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Device{f: f, fd: int(f.Fd())}, nil
}

// WaitReadable waits up to timeout for a snapshot to become available.
// An interrupted wait reports false without error.
func (d *Device) WaitReadable(timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, fmt.Errorf("poll device: %w", err)
	}
	return n > 0 && fds[0].Revents&unix.POLLIN != 0, nil
}

// ReadBoard reads and decodes one snapshot.
func (d *Device) ReadBoard() (Board, error) {
	buf := make([]byte, BoardDataSize)
	n, err := d.f.Read(buf)
	if err != nil {
		return Board{}, fmt.Errorf("read device: %w", err)
	}
	return DecodeBoard(buf[:n])
}

// Histories fetches the finished-game table with the history ioctl.
func (d *Device) Histories() ([]History, error) {
	raw := make([]byte, HistorySize*HistoryRecordSize)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), uintptr(GetBoardHistory), uintptr(unsafe.Pointer(&raw[0])))
	if errno != 0 {
		return nil, fmt.Errorf("ioctl: %w", errno)
	}
	return DecodeHistories(raw)
}

// Close releases the handle.
func (d *Device) Close() error { return d.f.Close() }
