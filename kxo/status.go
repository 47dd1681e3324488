package kxo

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

const (
	// StatusFile is the module load-state pseudo-file.
	StatusFile = "/sys/module/kxo/initstate"
	// DeviceFile is the board snapshot character device.
	DeviceFile = "/dev/kxo"
	// AttrFile is the display / end flag attribute.
	AttrFile = "/sys/class/kxo/kxo/kxo_state"

	// LiveState is the load state reported by a usable module.
	LiveState = "live"

	maxStatusLen = 19
)

// CheckStatus reads the status probe at path and returns nil only if its
// first line is exactly "live". A missing file wraps ErrNotLoaded; any other
// state is reported as a *StatusError.
func CheckStatus(fs afero.Fs, path string) error {
	f, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("kxo status : not loaded: %w", ErrNotLoaded)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return &StatusError{State: ""}
	}
	line = strings.TrimRight(line, "\n")
	if len(line) > maxStatusLen {
		line = line[:maxStatusLen]
	}
	if line != LiveState {
		return &StatusError{State: line}
	}
	return nil
}
