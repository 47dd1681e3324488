// Package runner implements the xo-user client on top of the coroutine
// runtime.
//
// A Runner owns two cooperative tasks scheduled round-robin on a fresh
// coroutine.Runtime:
//
//   - keyboard polls the terminal. Ctrl-P toggles board display through the
//     module's attribute file. Ctrl-Q asks the engine to end, prints and
//     archives the game history and raises the stop flag.
//   - board waits for the device to become readable while display is on,
//     then clears the screen and prints the board and the current time.
//
// Both tasks yield after every turn. Only one of them runs at any moment, so
// the display flag and the stop flag need no further coordination.
//
// External I/O failures are fatal: the failing task records the first
// error, raises the stop flag and finishes, and Run returns that error.
package runner
