// Package driver wires the front end and the plugin pipeline into one
// compilation entry point for the CLI and for embedders.
package driver

import (
	"context"
	"fmt"

	"plume/internal/ast"
	"plume/internal/diag"
	"plume/internal/lexer"
	"plume/internal/observ"
	"plume/internal/parser"
	"plume/internal/passes"
	"plume/internal/plugin"
	"plume/internal/source"
)

// DefaultMaxDiagnostics bounds the bag when the caller does not.
const DefaultMaxDiagnostics = 256

// Options configures one compilation. The zero value compiles with the
// built-in plugins only.
type Options struct {
	// ExtraPlugins are registered after the built-ins, in order.
	ExtraPlugins []plugin.Plugin
	// Disabled plugins stay registered but do not run; their dependents
	// are skipped with a warning.
	Disabled []string
	// Progress receives per-plugin status events.
	Progress plugin.ProgressSink
	// Timer records one phase per executed plugin.
	Timer *observ.Timer
	// MaxDiagnostics caps the bag; 0 means DefaultMaxDiagnostics.
	MaxDiagnostics int
}

// Result is the outcome of one compilation. Bag and Context are always
// populated; Program is nil only when the parse failed so badly that no
// tree exists.
type Result struct {
	Program *ast.Program
	Context *plugin.Context
	Bag     *diag.Bag
	// Order is the resolved execution order, empty when the pipeline
	// never started.
	Order []string
	// Success is the overall verdict: no error-level diagnostics.
	Success bool
}

// PlannedOrder resolves the execution order the options would produce,
// without compiling anything. Hosts use it for cache keys and for sizing
// progress displays before the pipeline starts.
func PlannedOrder(opts Options) ([]string, error) {
	reg := plugin.NewRegistry()
	if err := passes.RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	for _, p := range opts.ExtraPlugins {
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}
	for _, name := range opts.Disabled {
		if err := reg.Enable(name, false); err != nil {
			return nil, err
		}
	}
	return reg.ResolveOrder()
}

// Compile runs the full pipeline over one file of the set: scan, parse,
// then every enabled plugin in dependency order.
//
// A parse with errors is a hard gate: the pipeline does not run over a
// broken tree, and the result carries only the front-end diagnostics.
// Fatal pipeline conditions (malformed tree, unresolvable plugin graph,
// unknown name in Disabled) come back as an error; per-plugin failures do
// not — they are diagnostics in the bag.
func Compile(ctx context.Context, fset *source.FileSet, id source.FileID, opts Options) (*Result, error) {
	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = DefaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiag)
	res := &Result{
		Context: plugin.NewContext(),
		Bag:     bag,
	}

	file := fset.Get(id)
	if file == nil {
		return nil, fmt.Errorf("unknown file id %d", id)
	}
	toks := lexer.New(file, bag).Tokens()
	res.Program = parser.New(toks, bag).Parse()
	if bag.HasErrors() {
		return res, nil
	}

	reg := plugin.NewRegistry()
	reg.Progress = opts.Progress
	reg.Timer = opts.Timer
	if err := passes.RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	for _, p := range opts.ExtraPlugins {
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}
	for _, name := range opts.Disabled {
		if err := reg.Enable(name, false); err != nil {
			return nil, err
		}
	}

	order, err := reg.ResolveOrder()
	if err != nil {
		return nil, err
	}
	res.Order = order

	if err := reg.RunAll(ctx, res.Program, res.Context, bag); err != nil {
		return nil, err
	}
	res.Success = !bag.HasErrors()
	return res, nil
}
