package passes

import (
	"fmt"
	"sort"

	"plume/internal/ast"
	"plume/internal/diag"
	"plume/internal/plugin"
	"plume/internal/source"
)

// Analysis checks variable declarations against uses with a scope stack and
// procedure calls against the global procedure set. Every other built-in
// depends on it: later passes assume declarations are known.
type Analysis struct{}

func (Analysis) Info() plugin.Info {
	return plugin.Info{
		Name:        AnalysisName,
		Version:     builtinVersion,
		Description: "Analyzes variable usage and declarations",
	}
}

// AnalysisResult lists the findings as sorted name slices.
type AnalysisResult struct {
	Declared   []string `json:"declared_variables"`
	Used       []string `json:"used_variables"`
	Undefined  []string `json:"undefined_variables"`
	Procedures []string `json:"procedures"`
}

func (Analysis) Run(prog *ast.Program, _ *plugin.Context, bag *diag.Bag) (any, error) {
	a := &analyzer{
		bag:       bag,
		scopes:    []map[string]bool{},
		declared:  map[string]bool{},
		used:      map[string]bool{},
		undefined: map[string]bool{},
		procs:     map[string]bool{},
	}
	// Процедуры видны глобально, в том числе до места объявления.
	collectProcs(prog.Body, a.procs)
	a.block(prog.Body)
	return a.result(), nil
}

func collectProcs(b *ast.Block, into map[string]bool) {
	for _, proc := range b.Procs {
		into[proc.Name] = true
		collectProcs(proc.Body, into)
	}
}

type analyzer struct {
	bag       *diag.Bag
	scopes    []map[string]bool // innermost last
	declared  map[string]bool
	used      map[string]bool
	undefined map[string]bool
	procs     map[string]bool
}

func (a *analyzer) result() AnalysisResult {
	return AnalysisResult{
		Declared:   sortedKeys(a.declared),
		Used:       sortedKeys(a.used),
		Undefined:  sortedKeys(a.undefined),
		Procedures: sortedKeys(a.procs),
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a *analyzer) enterScope(vars []string) {
	scope := make(map[string]bool, len(vars))
	for _, v := range vars {
		scope[v] = true
		a.declared[v] = true
	}
	a.scopes = append(a.scopes, scope)
}

func (a *analyzer) exitScope() {
	a.scopes = a.scopes[:len(a.scopes)-1]
}

// useVariable records a use and warns when no active scope declares the
// name. Analysis continues past the warning.
func (a *analyzer) useVariable(name string, spn source.Span) {
	a.used[name] = true
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if a.scopes[i][name] {
			return
		}
	}
	a.undefined[name] = true
	a.bag.Warning(fmt.Sprintf("variable %q used but not declared", name), AnalysisName, spn)
}

func (a *analyzer) block(b *ast.Block) {
	a.enterScope(b.Vars)
	for _, proc := range b.Procs {
		a.block(proc.Body)
	}
	a.stmt(b.Body)
	a.exitScope()
}

func (a *analyzer) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.NestedBlock:
		a.enterScope(s.Vars)
		for _, inner := range s.Stmts {
			a.stmt(inner)
		}
		a.exitScope()
	case *ast.Compound:
		for _, inner := range s.Stmts {
			a.stmt(inner)
		}
	case *ast.Assign:
		a.useVariable(s.Name, s.NameSpan)
		a.expr(s.Value)
	case *ast.Call:
		if !a.procs[s.Proc] {
			a.bag.Warning(fmt.Sprintf("procedure %q called but not declared", s.Proc), AnalysisName, s.Spn)
		}
	case *ast.Read:
		a.useVariable(s.Name, s.NameSpan)
	case *ast.Write:
		a.expr(s.Value)
	case *ast.If:
		a.expr(s.Cond)
		a.stmt(s.Then)
	case *ast.While:
		a.expr(s.Cond)
		a.stmt(s.Body)
	default:
		panic(fmt.Sprintf("static_analysis: unknown statement %T", s))
	}
}

func (a *analyzer) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Operation:
		a.expr(e.Left)
		a.expr(e.Right)
	case *ast.Variable:
		a.useVariable(e.Name, e.Spn)
	case *ast.Number:
		// literals declare nothing and use nothing
	default:
		panic(fmt.Sprintf("static_analysis: unknown expression %T", e))
	}
}
