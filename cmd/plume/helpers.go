package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"plume/internal/diag"
	"plume/internal/diagfmt"
	"plume/internal/driver"
	"plume/internal/source"
)

// loadSource reads one source file into a fresh FileSet rooted at the
// file's directory, so diagnostics print short paths.
func loadSource(path string) (*source.FileSet, source.FileID, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, source.NoFile, err
	}
	fset := source.NewFileSetWithBase(filepath.Dir(abs))
	id, err := fset.Load(abs)
	if err != nil {
		return nil, source.NoFile, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return fset, id, nil
}

func colorMode(cmd *cobra.Command) diagfmt.ColorMode {
	flag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return diagfmt.ColorAuto
	}
	mode, ok := diagfmt.ParseColorMode(flag)
	if !ok {
		return diagfmt.ColorAuto
	}
	return mode
}

func maxDiagnostics(cmd *cobra.Command) int {
	n, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil || n <= 0 {
		return driver.DefaultMaxDiagnostics
	}
	return n
}

func quiet(cmd *cobra.Command) bool {
	q, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return false
	}
	return q
}

func showTimings(cmd *cobra.Command) bool {
	t, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return false
	}
	return t
}

// printDiagnostics renders the sorted bag to stderr with a closing
// summary line.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, fset *source.FileSet) {
	if bag.Len() == 0 {
		return
	}
	bag.Sort()
	mode := colorMode(cmd)
	diagfmt.Pretty(os.Stderr, bag, fset, diagfmt.PrettyOpts{
		Color:      mode,
		ShowSource: true,
	})
	if !quiet(cmd) {
		diagfmt.Summary(os.Stderr, bag, mode)
	}
}

// outputFileName maps an output key to the artifact file name for base
// (the source name without extension).
func outputFileName(base, key string) string {
	switch key {
	case "tac":
		return base + ".tac"
	case "c":
		return base + ".c"
	case "py":
		return base + ".py"
	case "opt_report":
		return base + ".opt.txt"
	case "opt_c":
		return base + ".opt.c"
	case "perf_report":
		return base + ".perf.txt"
	case "instr_c":
		return base + ".instr.c"
	default:
		return base + "." + key + ".txt"
	}
}

// writeOutputs materializes selected context outputs under dir. An empty
// want set means all keys.
func writeOutputs(dir, base string, outputs map[string]string, want map[string]bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(outputs))
	for key := range outputs {
		if len(want) > 0 && !want[key] {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var written []string
	for _, key := range keys {
		path := filepath.Join(dir, outputFileName(base, key))
		if err := os.WriteFile(path, []byte(outputs[key]+"\n"), 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func sourceBase(path string) string {
	name := filepath.Base(path)
	return name[:len(name)-len(filepath.Ext(name))]
}
