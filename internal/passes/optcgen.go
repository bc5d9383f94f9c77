package passes

import (
	"fmt"

	"plume/internal/ast"
	"plume/internal/diag"
	"plume/internal/plugin"
)

// OptCGenerator renders the optimizer's rewritten tree as C under the
// "opt_c" output key. Same emitter as the plain C generator, different
// input: this is where the optimized program becomes target code instead
// of just a report.
type OptCGenerator struct{}

func (OptCGenerator) Info() plugin.Info {
	return plugin.Info{
		Name:         OptCGenName,
		Version:      builtinVersion,
		Description:  "Generates C-like code from the optimized tree",
		Dependencies: []string{OptimizerName},
	}
}

func (OptCGenerator) Run(_ *ast.Program, pctx *plugin.Context, _ *diag.Bag) (any, error) {
	raw, ok := pctx.Result(OptimizerName)
	if !ok {
		return nil, fmt.Errorf("missing %q result", OptimizerName)
	}
	opt, ok := raw.(OptResult)
	if !ok || opt.Program == nil {
		return nil, fmt.Errorf("unexpected %q result %T", OptimizerName, raw)
	}

	e := newEmitter(cBackend{})
	text := e.program(opt.Program)
	if err := pctx.AddOutput(OptCGenName, OutputOptC, text); err != nil {
		return nil, err
	}
	return GenResult{Lines: len(e.lines)}, nil
}
