package passes

import (
	"fmt"

	"plume/internal/ast"
	"plume/internal/diag"
	"plume/internal/plugin"
)

// StmtCounter tallies executable statements by kind. Compound and nested
// begin/end groups are containers, not statements: only their contents
// count.
type StmtCounter struct{}

func (StmtCounter) Info() plugin.Info {
	return plugin.Info{
		Name:         StmtCountName,
		Version:      builtinVersion,
		Description:  "Counts statements by kind",
		Dependencies: []string{AnalysisName},
	}
}

// StmtCountResult holds the tallies.
type StmtCountResult struct {
	Total  int            `json:"total"`
	ByKind map[string]int `json:"by_kind"`
}

func (StmtCounter) Run(prog *ast.Program, _ *plugin.Context, _ *diag.Bag) (any, error) {
	c := &stmtCounter{byKind: map[string]int{}}
	c.block(prog.Body)
	return StmtCountResult{Total: c.total, ByKind: c.byKind}, nil
}

type stmtCounter struct {
	total  int
	byKind map[string]int
}

func (c *stmtCounter) count(kind string) {
	c.total++
	c.byKind[kind]++
}

func (c *stmtCounter) block(b *ast.Block) {
	for _, proc := range b.Procs {
		c.block(proc.Body)
	}
	c.stmt(b.Body)
}

func (c *stmtCounter) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.NestedBlock:
		for _, inner := range s.Stmts {
			c.stmt(inner)
		}
	case *ast.Compound:
		for _, inner := range s.Stmts {
			c.stmt(inner)
		}
	case *ast.Assign:
		c.count("assign")
	case *ast.Call:
		c.count("call")
	case *ast.Read:
		c.count("read")
	case *ast.Write:
		c.count("write")
	case *ast.If:
		c.count("if")
		c.stmt(s.Then)
	case *ast.While:
		c.count("while")
		c.stmt(s.Body)
	default:
		panic(fmt.Sprintf("statement_counter: unknown statement %T", s))
	}
}
