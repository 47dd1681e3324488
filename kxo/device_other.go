//go:build !linux

package kxo

import "time"

// Device is unavailable outside Linux; every operation reports ErrUnsupported.
type Device struct{}

// OpenDevice reports ErrUnsupported.
func OpenDevice(string) (*Device, error) { return nil, ErrUnsupported }

// WaitReadable reports ErrUnsupported.
func (*Device) WaitReadable(time.Duration) (bool, error) { return false, ErrUnsupported }

// ReadBoard reports ErrUnsupported.
func (*Device) ReadBoard() (Board, error) { return Board{}, ErrUnsupported }

// Histories reports ErrUnsupported.
func (*Device) Histories() ([]History, error) { return nil, ErrUnsupported }

// Close is a no-op.
func (*Device) Close() error { return nil }
