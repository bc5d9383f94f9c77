package lexer

import (
	"testing"

	"plume/internal/diag"
	"plume/internal/source"
	"plume/internal/token"
)

func scan(t *testing.T, src string) ([]token.Token, *diag.Bag, *source.FileSet) {
	t.Helper()
	fset := source.NewFileSet()
	id := fset.Add("test.plm", []byte(src))
	bag := diag.NewBag(16)
	toks := New(fset.Get(id), bag).Tokens()
	return toks, bag, fset
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestLexer_KeywordsAndOperators(t *testing.T) {
	toks, bag, _ := scan(t, "var x; begin x := 1 + 2; write x end.")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	want := []token.Kind{
		token.KwVar, token.Ident, token.Semicolon,
		token.KwBegin, token.Ident, token.Assign, token.Number,
		token.Plus, token.Number, token.Semicolon,
		token.KwWrite, token.Ident, token.KwEnd, token.Dot,
		token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestLexer_TwoByteOperators(t *testing.T) {
	toks, bag, _ := scan(t, "a <= b >= c # d := e")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	want := []token.Kind{
		token.Ident, token.LtEq, token.Ident, token.GtEq,
		token.Ident, token.Hash, token.Ident, token.Assign,
		token.Ident, token.EOF,
	}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestLexer_LineComments(t *testing.T) {
	toks, bag, _ := scan(t, "x // trailing words := ;\ny")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(toks) != 3 || toks[0].Text != "x" || toks[1].Text != "y" {
		t.Errorf("comment should be skipped, got %v", toks)
	}
}

func TestLexer_SpansResolveToPositions(t *testing.T) {
	toks, _, fset := scan(t, "var x;\n  x := 1.")
	// x на второй строке.
	var assign token.Token
	for _, tok := range toks {
		if tok.Kind == token.Assign {
			assign = tok
		}
	}
	pos := fset.Position(assign.Span)
	if pos.Line != 2 || pos.Col != 5 {
		t.Errorf("expected 2:5, got %d:%d", pos.Line, pos.Col)
	}
}

func TestLexer_NumberOverflow(t *testing.T) {
	_, bag, _ := scan(t, "x := 99999999999999999999")
	if !bag.HasErrors() {
		t.Fatal("expected an overflow error")
	}
}

func TestLexer_UnexpectedCharacter(t *testing.T) {
	toks, bag, _ := scan(t, "x @ y")
	if !bag.HasErrors() {
		t.Fatal("expected an error for '@'")
	}
	// Сканирование продолжается после ошибки.
	want := []token.Kind{token.Ident, token.Ident, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLexer_EOFIsSticky(t *testing.T) {
	fset := source.NewFileSet()
	id := fset.Add("test.plm", []byte(""))
	bag := diag.NewBag(4)
	lx := New(fset.Get(id), bag)
	for i := 0; i < 3; i++ {
		if tok := lx.Next(); tok.Kind != token.EOF {
			t.Fatalf("call %d: expected EOF, got %s", i, tok.Kind)
		}
	}
}
