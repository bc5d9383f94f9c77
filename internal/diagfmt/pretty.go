package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"plume/internal/diag"
	"plume/internal/source"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
	posColor  = color.New(color.Bold)
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
//
//	<path>:<line>:<col>: <severity>: <message> [<source>]
//
// затем, при ShowSource, строку-контекст с подчёркиванием ^~~~ по Span.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	useColor := opts.Color.Enabled()
	for _, d := range bag.Items() {
		writeHeader(w, d, fs, useColor)
		if opts.ShowSource {
			writeSourceLine(w, d.Span, fs)
		}
	}
}

func writeHeader(w io.Writer, d diag.Diagnostic, fs *source.FileSet, useColor bool) {
	sev := strings.ToLower(d.Severity.String())
	pos := ""
	if d.Span.File != source.NoFile {
		pos = fs.Position(d.Span).String() + ": "
	}
	if useColor {
		pos = posColor.Sprint(pos)
		sev = severityColor(d.Severity).Sprint(sev)
	}
	fmt.Fprintf(w, "%s%s: %s [%s]\n", pos, sev, d.Message, d.Source)
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return errColor
	case diag.SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

// writeSourceLine prints the offending line and underlines the span. Spans
// reaching past the line end are clipped to it.
func writeSourceLine(w io.Writer, span source.Span, fs *source.FileSet) {
	f := fs.Get(span.File)
	if f == nil {
		return
	}
	line, col := f.LineCol(span.Start)
	text := f.Line(line)
	if text == "" {
		return
	}
	fmt.Fprintf(w, "  %s\n", text)

	width := int(span.Len())
	if width < 1 {
		width = 1
	}
	if rem := len(text) - int(col) + 1; width > rem {
		width = rem
	}
	marker := "^"
	if width > 1 {
		marker += strings.Repeat("~", width-1)
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", int(col)-1), marker)
}

// Summary prints the closing "N errors, M warnings" line, omitting zero
// counts. Nothing is printed for a clean bag.
func Summary(w io.Writer, bag *diag.Bag, mode ColorMode) {
	errs, warns := 0, 0
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	if errs == 0 && warns == 0 {
		return
	}
	parts := make([]string, 0, 2)
	useColor := mode.Enabled()
	if errs > 0 {
		s := fmt.Sprintf("%d error(s)", errs)
		if useColor {
			s = errColor.Sprint(s)
		}
		parts = append(parts, s)
	}
	if warns > 0 {
		s := fmt.Sprintf("%d warning(s)", warns)
		if useColor {
			s = warnColor.Sprint(s)
		}
		parts = append(parts, s)
	}
	fmt.Fprintln(w, strings.Join(parts, ", "))
}
