// Package diagfmt renders diagnostics for terminals and machine readers.
package diagfmt

import (
	"os"

	"golang.org/x/term"
)

// ColorMode controls ANSI color in pretty output.
type ColorMode uint8

const (
	// ColorAuto enables color when stdout is a terminal.
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode maps the CLI flag value to a ColorMode.
func ParseColorMode(s string) (ColorMode, bool) {
	switch s {
	case "", "auto":
		return ColorAuto, true
	case "always", "on":
		return ColorAlways, true
	case "never", "off":
		return ColorNever, true
	}
	return ColorAuto, false
}

// Enabled resolves the mode against the actual output device.
func (m ColorMode) Enabled() bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color ColorMode
	// ShowSource prints the offending line with a caret underline.
	ShowSource bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	// Max обрезает вывод, не Bag. 0 — без ограничения.
	Max int
}
