package parser

import (
	"strings"
	"testing"

	"plume/internal/ast"
	"plume/internal/diag"
	"plume/internal/lexer"
	"plume/internal/source"
)

func parse(t *testing.T, src string) (*ast.Program, *diag.Bag) {
	t.Helper()
	fset := source.NewFileSet()
	id := fset.Add("test.plm", []byte(src))
	bag := diag.NewBag(32)
	toks := lexer.New(fset.Get(id), bag).Tokens()
	return New(toks, bag).Parse(), bag
}

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, bag := parse(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", bag.Items())
	}
	if err := ast.Validate(prog); err != nil {
		t.Fatalf("invalid tree: %v", err)
	}
	return prog
}

func TestParse_FullProgram(t *testing.T) {
	prog := mustParse(t, `
var n, f;
procedure fact;
var tmp;
begin
    tmp := f * n;
    f := tmp;
    n := n - 1
end;
begin
    read n;
    f := 1;
    while n > 1 do
        call fact;
    write f
end.
`)
	b := prog.Body
	if len(b.Vars) != 2 || b.Vars[0] != "n" || b.Vars[1] != "f" {
		t.Errorf("expected vars [n f], got %v", b.Vars)
	}
	if len(b.Procs) != 1 || b.Procs[0].Name != "fact" {
		t.Fatalf("expected one procedure fact, got %+v", b.Procs)
	}
	if vars := b.Procs[0].Body.Vars; len(vars) != 1 || vars[0] != "tmp" {
		t.Errorf("expected procedure var [tmp], got %v", vars)
	}
	body, ok := b.Body.(*ast.Compound)
	if !ok || len(body.Stmts) != 4 {
		t.Fatalf("expected 4-statement main body, got %T", b.Body)
	}
	loop, ok := body.Stmts[2].(*ast.While)
	if !ok {
		t.Fatalf("expected while, got %T", body.Stmts[2])
	}
	if _, ok := loop.Body.(*ast.Call); !ok {
		t.Errorf("expected call as loop body, got %T", loop.Body)
	}
}

func TestParse_BeginVarMakesNestedBlock(t *testing.T) {
	prog := mustParse(t, `
begin
    var z;
    z := 1
end.
`)
	nested, ok := prog.Body.Body.(*ast.NestedBlock)
	if !ok {
		t.Fatalf("expected NestedBlock, got %T", prog.Body.Body)
	}
	if len(nested.Vars) != 1 || nested.Vars[0] != "z" {
		t.Errorf("expected vars [z], got %v", nested.Vars)
	}

	// Без var — обычная последовательность.
	prog = mustParse(t, "begin x := 1 end.")
	if _, ok := prog.Body.Body.(*ast.Compound); !ok {
		t.Errorf("expected Compound, got %T", prog.Body.Body)
	}
}

func TestParse_TrailingSemicolonAllowed(t *testing.T) {
	prog := mustParse(t, `
begin
    x := 1;
    y := 2;
end.
`)
	body := prog.Body.Body.(*ast.Compound)
	if len(body.Stmts) != 2 {
		t.Errorf("expected 2 statements, got %d", len(body.Stmts))
	}
}

func TestParse_Precedence(t *testing.T) {
	prog := mustParse(t, "x := 1 + 2 * 3.")
	assign := prog.Body.Body.(*ast.Assign)
	top := assign.Value.(*ast.Operation)
	if top.Op != "+" {
		t.Fatalf("expected + at top, got %s", top.Op)
	}
	right := top.Right.(*ast.Operation)
	if right.Op != "*" {
		t.Errorf("multiplication must bind tighter, got %s", right.Op)
	}

	// Скобки переопределяют приоритет.
	prog = mustParse(t, "x := (1 + 2) * 3.")
	top = prog.Body.Body.(*ast.Assign).Value.(*ast.Operation)
	if top.Op != "*" {
		t.Errorf("expected * at top with parens, got %s", top.Op)
	}
}

func TestParse_UnaryMinus(t *testing.T) {
	prog := mustParse(t, "x := -5.")
	op := prog.Body.Body.(*ast.Assign).Value.(*ast.Operation)
	if op.Op != "-" {
		t.Fatalf("expected -, got %s", op.Op)
	}
	zero, ok := op.Left.(*ast.Number)
	if !ok || zero.Value != 0 {
		t.Errorf("unary minus should lower to 0 - term, got %+v", op.Left)
	}
}

func TestParse_ConditionRelops(t *testing.T) {
	for _, rel := range []string{"=", "#", "<", "<=", ">", ">="} {
		prog := mustParse(t, "if a "+rel+" b then write a.")
		cond := prog.Body.Body.(*ast.If).Cond.(*ast.Operation)
		if cond.Op != rel {
			t.Errorf("expected op %q, got %q", rel, cond.Op)
		}
	}
}

func TestParse_EmptyStatement(t *testing.T) {
	prog := mustParse(t, ".")
	if c, ok := prog.Body.Body.(*ast.Compound); !ok || len(c.Stmts) != 0 {
		t.Errorf("expected empty compound body, got %T", prog.Body.Body)
	}
}

func TestParse_ErrorsReported(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"x = 1.", "expected ':='"},
		{"begin x := 1.", "expected 'end'"},
		{"if a then write a.", "expected relational operator"},
		{"call .", "expected procedure name"},
		{"x := 1", "expected '.'"},
	}
	for _, tc := range cases {
		_, bag := parse(t, tc.src)
		if !bag.HasErrors() {
			t.Errorf("%q: expected errors", tc.src)
			continue
		}
		found := false
		for _, d := range bag.Items() {
			if strings.Contains(d.Message, tc.want) {
				found = true
			}
		}
		if !found {
			t.Errorf("%q: no diagnostic containing %q in %v", tc.src, tc.want, bag.Items())
		}
	}
}
