package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"plume/internal/diag"
	"plume/internal/source"
)

func demoBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fset := source.NewFileSet()
	id := fset.Add("demo.plm", []byte("var x;\nx := y."))
	bag := diag.NewBag(16)
	bag.Warning(`variable "y" used but not declared`, "static_analysis", source.Span{File: id, Start: 12, End: 13})
	bag.Error("pipeline exploded", "registry", source.Span{})
	return bag, fset
}

func TestPretty_PlainText(t *testing.T) {
	bag, fset := demoBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fset, PrettyOpts{Color: ColorNever, ShowSource: true})
	out := buf.String()

	if !strings.Contains(out, `demo.plm:2:6: warning: variable "y" used but not declared [static_analysis]`) {
		t.Errorf("missing located diagnostic:\n%s", out)
	}
	// Диагностика без позиции — без префикса пути.
	if !strings.Contains(out, "error: pipeline exploded [registry]") {
		t.Errorf("missing location-less diagnostic:\n%s", out)
	}
	// Строка-контекст с подчёркиванием.
	if !strings.Contains(out, "x := y.") || !strings.Contains(out, "^") {
		t.Errorf("missing source context:\n%s", out)
	}
}

func TestPretty_CaretUnderSpan(t *testing.T) {
	fset := source.NewFileSet()
	id := fset.Add("demo.plm", []byte("abcdef"))
	bag := diag.NewBag(4)
	bag.Error("bad", "test", source.Span{File: id, Start: 2, End: 5})

	var buf bytes.Buffer
	Pretty(&buf, bag, fset, PrettyOpts{Color: ColorNever, ShowSource: true})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	last := lines[len(lines)-1]
	if last != "    ^~~" {
		t.Errorf("expected caret '    ^~~', got %q", last)
	}
}

func TestSummary_Counts(t *testing.T) {
	bag, _ := demoBag(t)
	var buf bytes.Buffer
	Summary(&buf, bag, ColorNever)
	if got := strings.TrimSpace(buf.String()); got != "1 error(s), 1 warning(s)" {
		t.Errorf("expected '1 error(s), 1 warning(s)', got %q", got)
	}

	buf.Reset()
	Summary(&buf, diag.NewBag(4), ColorNever)
	if buf.Len() != 0 {
		t.Errorf("clean bag should print nothing, got %q", buf.String())
	}
}

func TestJSON_Structure(t *testing.T) {
	bag, fset := demoBag(t)
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fset, JSONOpts{}); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %+v", out)
	}
	first := out.Diagnostics[0]
	if first.Severity != "WARNING" || first.Source != "static_analysis" {
		t.Errorf("unexpected first diagnostic: %+v", first)
	}
	if first.Location.File != "demo.plm" || first.Location.Line != 2 || first.Location.Col != 6 {
		t.Errorf("unexpected location: %+v", first.Location)
	}
}

func TestJSON_MaxTruncates(t *testing.T) {
	bag := diag.NewBag(16)
	for i := 0; i < 5; i++ {
		bag.Error("e", "test", source.Span{})
	}
	var buf bytes.Buffer
	if err := JSON(&buf, bag, source.NewFileSet(), JSONOpts{Max: 2}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(out.Diagnostics) != 2 || out.Count != 5 || !out.Truncated {
		t.Errorf("expected 2 of 5 with truncation, got %+v", out)
	}
}

func TestParseColorMode(t *testing.T) {
	cases := map[string]ColorMode{
		"auto":   ColorAuto,
		"":       ColorAuto,
		"always": ColorAlways,
		"on":     ColorAlways,
		"never":  ColorNever,
		"off":    ColorNever,
	}
	for in, want := range cases {
		got, ok := ParseColorMode(in)
		if !ok || got != want {
			t.Errorf("ParseColorMode(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParseColorMode("sometimes"); ok {
		t.Error("expected rejection of unknown mode")
	}
}
