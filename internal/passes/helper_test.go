package passes

import (
	"testing"

	"plume/internal/ast"
	"plume/internal/diag"
	"plume/internal/lexer"
	"plume/internal/parser"
	"plume/internal/source"
)

// mustParse builds a tree from source, failing the test on any front-end
// error.
func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	fset := source.NewFileSet()
	id := fset.Add("test.plm", []byte(src))
	bag := diag.NewBag(64)
	toks := lexer.New(fset.Get(id), bag).Tokens()
	prog := parser.New(toks, bag).Parse()
	if bag.HasErrors() {
		t.Fatalf("parse errors:\n%s", diag.FormatGolden(bag.Items(), fset))
	}
	return prog
}
