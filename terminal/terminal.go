// Package terminal puts the controlling terminal into the minimal raw mode
// the client needs and polls it for single key presses.
package terminal

import (
	"errors"
	"io"
)

const (
	// KeyCtrlP toggles the board display.
	KeyCtrlP byte = 16
	// KeyCtrlQ stops the engine and dumps the game history.
	KeyCtrlQ byte = 17

	clearSequence = "\033[H\033[J"
)

// ErrNotTerminal is returned by EnableRaw when fd is not a terminal.
var ErrNotTerminal = errors.New("not a terminal")

// ClearScreen homes the cursor and clears the screen.
func ClearScreen(w io.Writer) error {
	_, err := io.WriteString(w, clearSequence)
	return err
}
