package diag

import (
	"strings"

	"plume/internal/source"
)

// FormatGolden renders diagnostics into the compact one-line-per-entry form
// used by golden assertions in tests:
//
//	severity [source] path:line:col message
//
// Newlines inside messages collapse to spaces. Location-less diagnostics
// omit the position.
func FormatGolden(items []Diagnostic, fs *source.FileSet) string {
	lines := make([]string, 0, len(items))
	for _, d := range items {
		var sb strings.Builder
		sb.WriteString(strings.ToLower(d.Severity.String()))
		if d.Source != "" {
			sb.WriteString(" [")
			sb.WriteString(d.Source)
			sb.WriteString("]")
		}
		if d.Span.File != source.NoFile {
			sb.WriteString(" ")
			sb.WriteString(fs.Position(d.Span).String())
		}
		sb.WriteString(" ")
		sb.WriteString(strings.Join(strings.Split(d.Message, "\n"), " "))
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}
