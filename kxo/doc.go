// Package kxo is the user-space side of the kxo kernel module, a tic-tac-toe
// engine that plays itself inside the kernel.
//
// The module is reached through four surfaces:
//
//   - a status pseudo-file whose first line reads "live" when loaded
//   - a character device producing packed board snapshots
//   - a 6-byte attribute record holding the display and end flags
//   - an ioctl returning the history of finished games
//
// Pseudo-files are accessed through an afero.Fs so callers can substitute an
// in-memory filesystem.
package kxo
