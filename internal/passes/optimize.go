package passes

import (
	"fmt"
	"strings"

	"plume/internal/ast"
	"plume/internal/diag"
	"plume/internal/plugin"
)

// Optimizer performs constant propagation with folding and removes dead
// stores. It never touches the tree it was given: rewrites happen on a
// fresh copy returned in the result, and the textual report goes under the
// "opt_report" output key.
type Optimizer struct{}

func (Optimizer) Info() plugin.Info {
	return plugin.Info{
		Name:         OptimizerName,
		Version:      builtinVersion,
		Description:  "Folds constants and removes dead stores",
		Dependencies: []string{AnalysisName},
	}
}

// OptResult counts the applied rewrites and carries the optimized tree.
type OptResult struct {
	ConstProp  int          `json:"const_prop"`
	DeadStores int          `json:"dead_stores"`
	Program    *ast.Program `json:"-"`
}

func (Optimizer) Run(prog *ast.Program, pctx *plugin.Context, _ *diag.Bag) (any, error) {
	o := &optimizer{}
	out := o.program(prog)
	if err := pctx.AddOutput(OptimizerName, OutputOptReport, o.report()); err != nil {
		return nil, err
	}
	return OptResult{
		ConstProp:  len(o.folded),
		DeadStores: len(o.removed),
		Program:    out,
	}, nil
}

type optimizer struct {
	folded  []string // assignments whose RHS collapsed to a literal
	removed []string // dead stores dropped from the tree
}

func (o *optimizer) report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "constant folding: %d\n", len(o.folded))
	for _, ev := range o.folded {
		fmt.Fprintf(&b, "  %s\n", ev)
	}
	fmt.Fprintf(&b, "dead stores removed: %d\n", len(o.removed))
	for _, ev := range o.removed {
		fmt.Fprintf(&b, "  %s\n", ev)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (o *optimizer) program(p *ast.Program) *ast.Program {
	return &ast.Program{Body: o.block(p.Body, true), Spn: p.Spn}
}

// block rewrites one procedure-structured scope. atEnd marks the program
// body: only there does execution stop after the last statement, which is
// what lets an unread final store be dropped.
func (o *optimizer) block(b *ast.Block, atEnd bool) *ast.Block {
	out := &ast.Block{
		Vars: append([]string(nil), b.Vars...),
		Spn:  b.Spn,
	}
	for _, proc := range b.Procs {
		out.Procs = append(out.Procs, ast.Proc{
			Name: proc.Name,
			Body: o.block(proc.Body, false),
			Spn:  proc.Spn,
		})
	}
	env := map[string]int64{}
	folded := o.foldStmt(b.Body, env)
	out.Body = o.elimStmt(folded, atEnd)
	return out
}

// --- constant propagation ---

// foldStmt rewrites a statement under the running constant environment.
// The environment tracks variables whose value is a known literal at the
// current point; anything that might change a variable out of view drops
// the entry.
func (o *optimizer) foldStmt(s ast.Stmt, env map[string]int64) ast.Stmt {
	switch s := s.(type) {
	case *ast.NestedBlock:
		// Объявления открывают новые переменные, старые факты о тех же
		// именах больше не верны.
		for _, v := range s.Vars {
			delete(env, v)
		}
		out := &ast.NestedBlock{Vars: append([]string(nil), s.Vars...), Spn: s.Spn}
		for _, inner := range s.Stmts {
			out.Stmts = append(out.Stmts, o.foldStmt(inner, env))
		}
		for _, v := range s.Vars {
			delete(env, v)
		}
		return out
	case *ast.Compound:
		out := &ast.Compound{Spn: s.Spn}
		for _, inner := range s.Stmts {
			out.Stmts = append(out.Stmts, o.foldStmt(inner, env))
		}
		return out
	case *ast.Assign:
		value, subs := foldExpr(s.Value, env)
		if lit, ok := value.(*ast.Number); ok {
			if subs > 0 {
				o.folded = append(o.folded, fmt.Sprintf("%s := %d", s.Name, lit.Value))
			}
			env[s.Name] = lit.Value
		} else {
			delete(env, s.Name)
		}
		return &ast.Assign{Name: s.Name, NameSpan: s.NameSpan, Value: value, Spn: s.Spn}
	case *ast.Call:
		// Процедура может переписать любую видимую переменную.
		clear(env)
		return &ast.Call{Proc: s.Proc, Spn: s.Spn}
	case *ast.Read:
		delete(env, s.Name)
		return &ast.Read{Name: s.Name, NameSpan: s.NameSpan, Spn: s.Spn}
	case *ast.Write:
		// Константы в write не подставляем: чтение обязано остаться
		// чтением, иначе питающий его store выглядит мёртвым для
		// последующего прохода. Чистая арифметика всё равно сворачивается.
		value, _ := foldExpr(s.Value, nil)
		return &ast.Write{Value: value, Spn: s.Spn}
	case *ast.If:
		cond, _ := foldExpr(s.Cond, env)
		inner := cloneEnv(env)
		then := o.foldStmt(s.Then, inner)
		invalidateWrites(env, s.Then)
		return &ast.If{Cond: cond, Then: then, Spn: s.Spn}
	case *ast.While:
		// Условие вычисляется на каждой итерации, факты из кода перед
		// циклом к нему не применимы. Тело сворачиваем с чистой средой:
		// внутри одной итерации это обычный прямолинейный код.
		body := o.foldStmt(s.Body, map[string]int64{})
		invalidateWrites(env, s.Body)
		return &ast.While{Cond: cloneExpr(s.Cond), Body: body, Spn: s.Spn}
	default:
		panic(fmt.Sprintf("optimizer: unknown statement %T", s))
	}
}

// foldExpr substitutes known constants and folds arithmetic bottom-up. The
// second result counts substituted variables, so the caller can tell a
// fold from an RHS that was a literal to begin with.
func foldExpr(e ast.Expr, env map[string]int64) (ast.Expr, int) {
	switch e := e.(type) {
	case *ast.Operation:
		left, ls := foldExpr(e.Left, env)
		right, rs := foldExpr(e.Right, env)
		subs := ls + rs
		ln, lok := left.(*ast.Number)
		rn, rok := right.(*ast.Number)
		if lok && rok {
			if v, ok := evalOp(e.Op, ln.Value, rn.Value); ok {
				return &ast.Number{Value: v, Spn: e.Spn}, subs
			}
		}
		return &ast.Operation{Op: e.Op, Left: left, Right: right, Spn: e.Spn}, subs
	case *ast.Variable:
		if v, ok := env[e.Name]; ok {
			return &ast.Number{Value: v, Spn: e.Spn}, 1
		}
		return &ast.Variable{Name: e.Name, Spn: e.Spn}, 0
	case *ast.Number:
		return &ast.Number{Value: e.Value, Spn: e.Spn}, 0
	default:
		panic(fmt.Sprintf("optimizer: unknown expression %T", e))
	}
}

// evalOp folds the arithmetic operators. Relational operators and division
// by zero are left to runtime.
func evalOp(op string, l, r int64) (int64, bool) {
	switch op {
	case "+":
		return l + r, true
	case "-":
		return l - r, true
	case "*":
		return l * r, true
	case "/":
		if r == 0 {
			return 0, false
		}
		return l / r, true
	default:
		return 0, false
	}
}

func cloneEnv(env map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}

func cloneExpr(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case *ast.Operation:
		return &ast.Operation{Op: e.Op, Left: cloneExpr(e.Left), Right: cloneExpr(e.Right), Spn: e.Spn}
	case *ast.Variable:
		return &ast.Variable{Name: e.Name, Spn: e.Spn}
	case *ast.Number:
		return &ast.Number{Value: e.Value, Spn: e.Spn}
	default:
		panic(fmt.Sprintf("optimizer: unknown expression %T", e))
	}
}

// invalidateWrites drops every variable the statement might write. A call
// wipes the whole environment.
func invalidateWrites(env map[string]int64, s ast.Stmt) {
	switch s := s.(type) {
	case *ast.NestedBlock:
		for _, inner := range s.Stmts {
			invalidateWrites(env, inner)
		}
	case *ast.Compound:
		for _, inner := range s.Stmts {
			invalidateWrites(env, inner)
		}
	case *ast.Assign:
		delete(env, s.Name)
	case *ast.Call:
		clear(env)
	case *ast.Read:
		delete(env, s.Name)
	case *ast.Write:
	case *ast.If:
		invalidateWrites(env, s.Then)
	case *ast.While:
		invalidateWrites(env, s.Body)
	default:
		panic(fmt.Sprintf("optimizer: unknown statement %T", s))
	}
}

// --- dead store elimination ---

// elimStmt removes stores that are provably overwritten before any read.
// The analysis is deliberately local: only statements in the same sequence
// can kill a store, conditional writes never do, and loop bodies are left
// alone because a store there feeds the next iteration.
func (o *optimizer) elimStmt(s ast.Stmt, atEnd bool) ast.Stmt {
	switch s := s.(type) {
	case *ast.NestedBlock:
		s.Stmts = o.elimList(s.Stmts, atEnd)
		return s
	case *ast.Compound:
		s.Stmts = o.elimList(s.Stmts, atEnd)
		return s
	default:
		return s
	}
}

func (o *optimizer) elimList(stmts []ast.Stmt, atEnd bool) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(stmts))
	for i, s := range stmts {
		last := i == len(stmts)-1
		switch s := s.(type) {
		case *ast.Assign:
			if o.storeIsDead(s, stmts[i+1:], atEnd) {
				o.removed = append(o.removed, fmt.Sprintf("%s := %s", s.Name, exprText(s.Value)))
				continue
			}
		case *ast.NestedBlock, *ast.Compound:
			o.elimStmt(s, atEnd && last)
		case *ast.If:
			s.Then = o.elimStmt(s.Then, false)
		case *ast.While:
			// no elimination inside loops
		}
		out = append(out, s)
	}
	return out
}

// storeIsDead reports whether the assignment's value can never be
// observed: the next access to the variable in the same sequence
// overwrites it without reading, or nothing accesses it and the program
// ends with the sequence.
func (o *optimizer) storeIsDead(s *ast.Assign, rest []ast.Stmt, atEnd bool) bool {
	for _, t := range rest {
		if stmtReads(t, s.Name) {
			return false
		}
		switch t := t.(type) {
		case *ast.Assign:
			if t.Name == s.Name {
				return true
			}
		case *ast.Read:
			if t.Name == s.Name {
				return true
			}
		}
	}
	return atEnd
}

// stmtReads reports whether executing the statement might read the
// variable. Calls count as reading everything; a nested block that
// redeclares the name shadows the outer variable.
func stmtReads(s ast.Stmt, name string) bool {
	switch s := s.(type) {
	case *ast.NestedBlock:
		for _, v := range s.Vars {
			if v == name {
				return false
			}
		}
		for _, inner := range s.Stmts {
			if stmtReads(inner, name) {
				return true
			}
		}
		return false
	case *ast.Compound:
		for _, inner := range s.Stmts {
			if stmtReads(inner, name) {
				return true
			}
		}
		return false
	case *ast.Assign:
		return exprReads(s.Value, name)
	case *ast.Call:
		return true
	case *ast.Read:
		return false
	case *ast.Write:
		return exprReads(s.Value, name)
	case *ast.If:
		return exprReads(s.Cond, name) || stmtReads(s.Then, name)
	case *ast.While:
		return exprReads(s.Cond, name) || stmtReads(s.Body, name)
	default:
		panic(fmt.Sprintf("optimizer: unknown statement %T", s))
	}
}

func exprReads(e ast.Expr, name string) bool {
	switch e := e.(type) {
	case *ast.Operation:
		return exprReads(e.Left, name) || exprReads(e.Right, name)
	case *ast.Variable:
		return e.Name == name
	case *ast.Number:
		return false
	default:
		panic(fmt.Sprintf("optimizer: unknown expression %T", e))
	}
}

func exprText(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Operation:
		return "(" + exprText(e.Left) + " " + e.Op + " " + exprText(e.Right) + ")"
	case *ast.Variable:
		return e.Name
	case *ast.Number:
		return fmt.Sprintf("%d", e.Value)
	default:
		panic(fmt.Sprintf("optimizer: unknown expression %T", e))
	}
}
