package passes

import (
	"fmt"
	"sort"
	"strings"

	"plume/internal/ast"
	"plume/internal/diag"
	"plume/internal/plugin"
)

// PerfProfiler estimates runtime behavior statically: loop nesting per
// unit, operation counts, and call-chain depth. It also re-emits the C
// output with timing instrumentation spliced in, which is why it depends
// on the C generator and not just the analyzer.
type PerfProfiler struct{}

func (PerfProfiler) Info() plugin.Info {
	return plugin.Info{
		Name:         PerfName,
		Version:      builtinVersion,
		Description:  "Profiles estimated performance and instruments C output",
		Dependencies: []string{AnalysisName, CGenName},
	}
}

// UnitPerf describes one compilation unit: main or a procedure.
type UnitPerf struct {
	Name       string `json:"name"`
	LoopDepth  int    `json:"loop_depth"`
	Complexity string `json:"complexity"`
}

// PerfResult aggregates the static profile.
type PerfResult struct {
	Units           []UnitPerf `json:"units"`
	Operations      int        `json:"operations"`
	Reads           int        `json:"reads"`
	Writes          int        `json:"writes"`
	Calls           int        `json:"calls"`
	MaxCallDepth    int        `json:"max_call_depth"`
	Recursive       []string   `json:"recursive,omitempty"`
	Recommendations []string   `json:"recommendations,omitempty"`
}

// mainUnit names the entry unit in reports and in the call graph.
const mainUnit = "main"

func (PerfProfiler) Run(prog *ast.Program, pctx *plugin.Context, _ *diag.Bag) (any, error) {
	p := &profiler{calls: map[string][]string{}}
	p.unit(mainUnit, prog.Body)
	res := p.result()

	if err := pctx.AddOutput(PerfName, OutputPerfReport, formatPerfReport(res)); err != nil {
		return nil, err
	}
	cText, ok := pctx.Output(OutputC)
	if !ok {
		return nil, fmt.Errorf("missing %q output", OutputC)
	}
	if err := pctx.AddOutput(PerfName, OutputInstrC, instrumentC(cText)); err != nil {
		return nil, err
	}
	return res, nil
}

type profiler struct {
	units      []UnitPerf
	operations int
	reads      int
	writes     int
	loopWrites int
	callCount  int
	calls      map[string][]string // unit -> called procedures
}

// unit profiles one block under the given unit name. Nested procedures are
// their own units: their bodies do not contribute to the parent's loop
// depth or call list.
func (p *profiler) unit(name string, b *ast.Block) {
	for _, proc := range b.Procs {
		p.unit(proc.Name, proc.Body)
	}
	depth := p.stmt(name, b.Body, 0)
	complexity := "O(1)"
	if depth > 0 {
		complexity = fmt.Sprintf("O(n^%d)", depth)
	}
	p.units = append(p.units, UnitPerf{Name: name, LoopDepth: depth, Complexity: complexity})
}

// stmt walks one statement and returns the maximum loop nesting beneath
// it, given the nesting already entered.
func (p *profiler) stmt(unit string, s ast.Stmt, nesting int) int {
	switch s := s.(type) {
	case *ast.NestedBlock:
		deepest := nesting
		for _, inner := range s.Stmts {
			if d := p.stmt(unit, inner, nesting); d > deepest {
				deepest = d
			}
		}
		return deepest
	case *ast.Compound:
		deepest := nesting
		for _, inner := range s.Stmts {
			if d := p.stmt(unit, inner, nesting); d > deepest {
				deepest = d
			}
		}
		return deepest
	case *ast.Assign:
		p.expr(s.Value)
		return nesting
	case *ast.Call:
		p.callCount++
		p.calls[unit] = append(p.calls[unit], s.Proc)
		return nesting
	case *ast.Read:
		p.reads++
		return nesting
	case *ast.Write:
		p.writes++
		if nesting > 0 {
			p.loopWrites++
		}
		p.expr(s.Value)
		return nesting
	case *ast.If:
		p.expr(s.Cond)
		return p.stmt(unit, s.Then, nesting)
	case *ast.While:
		p.expr(s.Cond)
		return p.stmt(unit, s.Body, nesting+1)
	default:
		panic(fmt.Sprintf("perf_profiler: unknown statement %T", s))
	}
}

func (p *profiler) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Operation:
		p.operations++
		p.expr(e.Left)
		p.expr(e.Right)
	case *ast.Variable, *ast.Number:
	default:
		panic(fmt.Sprintf("perf_profiler: unknown expression %T", e))
	}
}

func (p *profiler) result() PerfResult {
	recursive := map[string]bool{}
	depth := p.chainDepth(mainUnit, map[string]bool{}, recursive)

	res := PerfResult{
		Units:        p.units,
		Operations:   p.operations,
		Reads:        p.reads,
		Writes:       p.writes,
		Calls:        p.callCount,
		MaxCallDepth: depth,
		Recursive:    sortedKeys(recursive),
	}
	for _, u := range res.Units {
		if u.LoopDepth >= 2 {
			res.Recommendations = append(res.Recommendations,
				fmt.Sprintf("unit %q nests loops %d deep, consider restructuring", u.Name, u.LoopDepth))
		}
	}
	if p.loopWrites > 0 {
		res.Recommendations = append(res.Recommendations,
			fmt.Sprintf("%d write(s) inside loops, consider batching output", p.loopWrites))
	}
	for _, name := range res.Recursive {
		res.Recommendations = append(res.Recommendations,
			fmt.Sprintf("call cycle through %q, verify it terminates", name))
	}
	return res
}

// chainDepth returns the longest call chain (in edges) reachable from the
// unit. A unit already on the walk stack marks a cycle: the edge is
// recorded as recursive and not followed further.
func (p *profiler) chainDepth(unit string, stack map[string]bool, recursive map[string]bool) int {
	stack[unit] = true
	deepest := 0
	for _, callee := range p.calls[unit] {
		if stack[callee] {
			recursive[callee] = true
			continue
		}
		if d := 1 + p.chainDepth(callee, stack, recursive); d > deepest {
			deepest = d
		}
	}
	delete(stack, unit)
	return deepest
}

func formatPerfReport(res PerfResult) string {
	var b strings.Builder
	b.WriteString("performance profile\n")
	units := append([]UnitPerf(nil), res.Units...)
	sort.Slice(units, func(i, j int) bool { return units[i].Name < units[j].Name })
	for _, u := range units {
		fmt.Fprintf(&b, "  %s: loop depth %d, estimated %s\n", u.Name, u.LoopDepth, u.Complexity)
	}
	fmt.Fprintf(&b, "operations: %d, reads: %d, writes: %d, calls: %d\n",
		res.Operations, res.Reads, res.Writes, res.Calls)
	fmt.Fprintf(&b, "max call depth: %d\n", res.MaxCallDepth)
	if len(res.Recommendations) > 0 {
		b.WriteString("recommendations:\n")
		for _, r := range res.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// instrumentC splices wall-clock timing into the generated C text. The
// splice points are the fixed skeleton lines the C generator emits, so
// this stays purely textual.
func instrumentC(src string) string {
	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines)+4)
	for _, line := range lines {
		switch line {
		case "#include <stdio.h>":
			out = append(out, line, "#include <time.h>")
		case "int main() {":
			out = append(out, line, "    clock_t __plume_start = clock();")
		case "    return 0;":
			out = append(out,
				`    fprintf(stderr, "elapsed: %fs\n", (double)(clock() - __plume_start) / CLOCKS_PER_SEC);`,
				line)
		default:
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
