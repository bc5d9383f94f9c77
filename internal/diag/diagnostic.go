// Package diag collects leveled compilation diagnostics.
package diag

import (
	"plume/internal/source"
)

// Diagnostic is one recorded message. Source names the component that
// reported it: "lexer", "parser", "registry" or a plugin name.
type Diagnostic struct {
	Severity Severity
	Message  string
	Source   string
	Span     source.Span
}
