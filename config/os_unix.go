//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

// EnableColorOutput checks if colorized output is possible. Dumb terminals
// and NO_COLOR environment turn colors off.
func EnableColorOutput(stream *os.File) bool {
	if colorDisabled() || os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(stream.Fd()))
}
