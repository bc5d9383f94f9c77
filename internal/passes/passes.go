// Package passes implements the built-in pipeline plugins: static analysis,
// three-address code generation, the C-like and Python-like code
// generators, the optimizer, the statement counter and the performance
// profiler.
package passes

import (
	"plume/internal/plugin"
)

// builtinVersion is the version reported by every built-in plugin.
const builtinVersion = "1.0"

// Plugin names and output keys are part of the host contract: the CLI and
// external plugins address them by these strings.
const (
	AnalysisName  = "static_analysis"
	TACName       = "tac_generator"
	CGenName      = "c_generator"
	PyGenName     = "py_generator"
	OptimizerName = "optimizer"
	OptCGenName   = "opt_c_generator"
	StmtCountName = "statement_counter"
	PerfName      = "perf_profiler"

	OutputTAC        = "tac"
	OutputC          = "c"
	OutputPy         = "py"
	OutputOptReport  = "opt_report"
	OutputOptC       = "opt_c"
	OutputPerfReport = "perf_report"
	OutputInstrC     = "instr_c"
)

// Builtins returns fresh instances of all built-in plugins in registration
// order. The order matters only for tie-breaking: it makes default runs
// reproducible.
func Builtins() []plugin.Plugin {
	return []plugin.Plugin{
		Analysis{},
		TACGenerator{},
		CGenerator{},
		PyGenerator{},
		Optimizer{},
		OptCGenerator{},
		StmtCounter{},
		PerfProfiler{},
	}
}

// RegisterBuiltins registers every built-in plugin with the registry.
func RegisterBuiltins(r *plugin.Registry) error {
	for _, p := range Builtins() {
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}
