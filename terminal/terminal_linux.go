//go:build linux

package terminal

import (
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// EnableRaw disables flow control, echo and canonical input on fd and
// switches it to non-blocking reads. Output processing is left alone so
// newlines keep working. The returned function restores both settings.
func EnableRaw(fd int) (func() error, error) {
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}

	orig, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("get termios: %w", err)
	}

	raw := *orig
	raw.Iflag &^= unix.IXON
	raw.Lflag &^= unix.ECHO | unix.ICANON
	if err := unix.IoctlSetTermios(fd, unix.TCSETSF, &raw); err != nil {
		return nil, fmt.Errorf("set termios: %w", err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.IoctlSetTermios(fd, unix.TCSETSF, orig)
		return nil, fmt.Errorf("set nonblock: %w", err)
	}

	return func() error {
		nbErr := unix.SetNonblock(fd, false)
		if err := unix.IoctlSetTermios(fd, unix.TCSETSF, orig); err != nil {
			return fmt.Errorf("restore termios: %w", err)
		}
		return nbErr
	}, nil
}

// Keyboard polls a file descriptor for single bytes.
type Keyboard struct {
	fd int
}

// NewKeyboard returns a Keyboard reading from fd.
func NewKeyboard(fd int) *Keyboard { return &Keyboard{fd: fd} }

// Poll waits up to timeout for one byte. It reports false when nothing
// arrived in time. Once the other end has hung up and no input is left, Poll
// returns an error wrapping io.EOF instead of reporting an idle poll.
func (k *Keyboard) Poll(timeout time.Duration) (byte, bool, error) {
	fds := []unix.PollFd{{Fd: int32(k.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("poll keyboard: %w", err)
	}
	if n == 0 {
		return 0, false, nil
	}
	if rev := fds[0].Revents; rev&unix.POLLIN == 0 {
		if rev&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
			return 0, false, fmt.Errorf("keyboard hung up (revents %#x): %w", rev, io.EOF)
		}
		return 0, false, nil
	}

	var buf [1]byte
	n, err = unix.Read(k.fd, buf[:])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read keyboard: %w", err)
	}
	if n == 0 {
		return 0, false, fmt.Errorf("read keyboard: %w", io.EOF)
	}
	return buf[0], true, nil
}
