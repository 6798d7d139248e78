package service

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsInteractiveEnvironment reports whether progress bars can be rendered.
// Progress output goes to stderr, so that is the stream that must be a
// terminal.
func IsInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
