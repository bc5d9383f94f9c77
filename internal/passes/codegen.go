package passes

import (
	"fmt"
	"strconv"
	"strings"

	"plume/internal/ast"
)

// backend is the full divergence surface between the target-language code
// generators: declaration syntax, block delimiters, the program skeleton
// and the operator table. The traversal itself lives in emitter and is
// shared, which keeps the two generators mechanically in sync.
type backend interface {
	header() []string
	mainOpen() string
	// mainClose lines are appended verbatim after the body dedents.
	mainClose() []string
	declLine(name string) (string, bool)
	procOpen(name string) string
	procClose() (string, bool)
	assignLine(name, expr string) string
	callLine(proc string) string
	readLine(name string) string
	writeLine(expr string) string
	ifOpen(cond string) string
	whileOpen(cond string) string
	blockClose() (string, bool)
	// emptyBody is emitted inside a block that produced no lines.
	emptyBody() (string, bool)
	op(src string) string
}

type emitter struct {
	b      backend
	lines  []string
	indent int
}

func newEmitter(b backend) *emitter {
	return &emitter{b: b}
}

func (e *emitter) add(line string) {
	e.lines = append(e.lines, strings.Repeat("    ", e.indent)+line)
}

func (e *emitter) addIf(line string, ok bool) {
	if ok {
		e.add(line)
	}
}

// body emits a nested block body, padding it when it turns out empty so
// that indentation-delimited targets stay well formed.
func (e *emitter) body(emit func()) {
	e.indent++
	mark := len(e.lines)
	emit()
	if len(e.lines) == mark {
		e.addIf(e.b.emptyBody())
	}
	e.indent--
}

// program renders the whole tree: skeleton header, procedures, then the
// entry point wrapping declarations and the governing statement.
func (e *emitter) program(p *ast.Program) string {
	e.lines = append(e.lines, e.b.header()...)
	for _, proc := range p.Body.Procs {
		e.proc(proc)
	}
	e.lines = append(e.lines, e.b.mainOpen())
	e.body(func() {
		e.decls(p.Body.Vars)
		e.stmt(p.Body.Body)
	})
	e.lines = append(e.lines, e.b.mainClose()...)
	return strings.Join(e.lines, "\n")
}

func (e *emitter) proc(p ast.Proc) {
	e.add(e.b.procOpen(p.Name))
	e.body(func() {
		e.decls(p.Body.Vars)
		for _, nested := range p.Body.Procs {
			e.proc(nested)
		}
		e.stmt(p.Body.Body)
	})
	e.addIf(e.b.procClose())
}

func (e *emitter) decls(vars []string) {
	for _, v := range vars {
		e.addIf(e.b.declLine(v))
	}
}

func (e *emitter) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.NestedBlock:
		e.decls(s.Vars)
		for _, inner := range s.Stmts {
			e.stmt(inner)
		}
	case *ast.Compound:
		for _, inner := range s.Stmts {
			e.stmt(inner)
		}
	case *ast.Assign:
		e.add(e.b.assignLine(s.Name, e.expr(s.Value)))
	case *ast.Call:
		e.add(e.b.callLine(s.Proc))
	case *ast.Read:
		e.add(e.b.readLine(s.Name))
	case *ast.Write:
		e.add(e.b.writeLine(e.expr(s.Value)))
	case *ast.If:
		e.add(e.b.ifOpen(e.expr(s.Cond)))
		e.body(func() { e.stmt(s.Then) })
		e.addIf(e.b.blockClose())
	case *ast.While:
		e.add(e.b.whileOpen(e.expr(s.Cond)))
		e.body(func() { e.stmt(s.Body) })
		e.addIf(e.b.blockClose())
	default:
		panic(fmt.Sprintf("codegen: unknown statement %T", s))
	}
}

func (e *emitter) expr(x ast.Expr) string {
	switch x := x.(type) {
	case *ast.Operation:
		left := e.expr(x.Left)
		right := e.expr(x.Right)
		return "(" + left + " " + e.b.op(x.Op) + " " + right + ")"
	case *ast.Variable:
		return x.Name
	case *ast.Number:
		return strconv.FormatInt(x.Value, 10)
	default:
		panic(fmt.Sprintf("codegen: unknown expression %T", x))
	}
}
