package passes

import (
	"fmt"
	"strconv"
	"strings"

	"plume/internal/ast"
	"plume/internal/diag"
	"plume/internal/plugin"
)

// TACGenerator lowers the tree to three-address code: one text line per
// primitive operation.
type TACGenerator struct{}

func (TACGenerator) Info() plugin.Info {
	return plugin.Info{
		Name:         TACName,
		Version:      builtinVersion,
		Description:  "Generates three-address code",
		Dependencies: []string{AnalysisName},
	}
}

// TACResult summarizes the emitted code.
type TACResult struct {
	Instructions int `json:"instructions"`
}

func (TACGenerator) Run(prog *ast.Program, pctx *plugin.Context, _ *diag.Bag) (any, error) {
	g := &tacGen{}
	g.block(prog.Body)
	if err := pctx.AddOutput(TACName, OutputTAC, strings.Join(g.lines, "\n")); err != nil {
		return nil, err
	}
	return TACResult{Instructions: len(g.lines)}, nil
}

// tacGen numbers temporaries and labels monotonically across the whole
// compilation, never per procedure. Given the same tree the numbering — and
// therefore the output text — is identical on every run: the traversal
// order is the fixed order of the tree itself.
type tacGen struct {
	lines []string
	temps int
	labs  int
}

func (g *tacGen) emit(line string) {
	g.lines = append(g.lines, line)
}

func (g *tacGen) newTemp() string {
	t := fmt.Sprintf("t%d", g.temps)
	g.temps++
	return t
}

func (g *tacGen) newLabel() string {
	l := fmt.Sprintf("L%d", g.labs)
	g.labs++
	return l
}

func (g *tacGen) block(b *ast.Block) {
	for _, v := range b.Vars {
		g.emit("DECLARE " + v)
	}
	for _, proc := range b.Procs {
		g.emit("PROC " + proc.Name + ":")
		g.block(proc.Body)
		g.emit("ENDPROC " + proc.Name)
	}
	g.stmt(b.Body)
}

func (g *tacGen) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.NestedBlock:
		for _, v := range s.Vars {
			g.emit("DECLARE " + v)
		}
		for _, inner := range s.Stmts {
			g.stmt(inner)
		}
	case *ast.Compound:
		for _, inner := range s.Stmts {
			g.stmt(inner)
		}
	case *ast.Assign:
		rhs := g.expr(s.Value)
		g.emit(s.Name + " := " + rhs)
	case *ast.Call:
		g.emit("CALL " + s.Proc)
	case *ast.Read:
		g.emit("READ " + s.Name)
	case *ast.Write:
		value := g.expr(s.Value)
		g.emit("WRITE " + value)
	case *ast.If:
		cond := g.expr(s.Cond)
		skip := g.newLabel()
		g.emit("IF NOT " + cond + " GOTO " + skip)
		g.stmt(s.Then)
		g.emit("LABEL " + skip)
	case *ast.While:
		top := g.newLabel()
		exit := g.newLabel()
		g.emit("LABEL " + top)
		cond := g.expr(s.Cond)
		g.emit("IF NOT " + cond + " GOTO " + exit)
		g.stmt(s.Body)
		g.emit("GOTO " + top)
		g.emit("LABEL " + exit)
	default:
		panic(fmt.Sprintf("tac_generator: unknown statement %T", s))
	}
}

// expr lowers an expression and returns the name holding its value: a
// variable, a literal spelling, or a fresh temporary.
func (g *tacGen) expr(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Operation:
		left := g.expr(e.Left)
		right := g.expr(e.Right)
		t := g.newTemp()
		g.emit(t + " := " + left + " " + e.Op + " " + right)
		return t
	case *ast.Variable:
		return e.Name
	case *ast.Number:
		return strconv.FormatInt(e.Value, 10)
	default:
		panic(fmt.Sprintf("tac_generator: unknown expression %T", e))
	}
}
