// Package config holds the immutable options of a scan.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// LogEnv selects the diagnostic log level (debug, info, warn, error).
const LogEnv = "STALEMAPS_LOG"

// Options controls what is scanned and how results are rendered.
//
// The zero value scans every visible process and prints basenames in the
// collapsed form, with color auto-detected.
type Options struct {
	// Pids restricts the scan to these processes, in order. Empty scans all.
	Pids []int

	// Verbose lists every outdated library instead of collapsing them.
	Verbose bool

	// FullPath shows the full backing path instead of the basename.
	FullPath bool

	// Color forces color on or off; ColorAuto follows the result stream.
	Color ColorMode
}

// ColorMode is the -c setting. It implements pflag.Value.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorNever
	ColorAlways
)

func (m *ColorMode) String() string {
	switch *m {
	case ColorNever:
		return "0"
	case ColorAlways:
		return "1"
	default:
		return ""
	}
}

func (m *ColorMode) Set(s string) error {
	switch s {
	case "0":
		*m = ColorNever
	case "1":
		*m = ColorAlways
	default:
		return fmt.Errorf("must be 0 or 1, got %q", s)
	}
	return nil
}

func (m *ColorMode) Type() string {
	return "0|1"
}

// Enabled resolves the mode against the result stream. In auto mode color
// is used iff out is an interactive terminal.
func (m ColorMode) Enabled(out any) bool {
	switch m {
	case ColorNever:
		return false
	case ColorAlways:
		return true
	}
	return IsTerminal(out)
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// LogLevel returns the level named by $STALEMAPS_LOG, warn by default.
func LogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(LogEnv))) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
