package passes

import (
	"reflect"
	"strings"
	"testing"

	"plume/internal/diag"
	"plume/internal/plugin"
)

func TestAnalysis_DeclaredAndUsed(t *testing.T) {
	prog := mustParse(t, `
var x, y;
begin
    x := 5;
    y := x * 2;
    write y
end.
`)
	bag := diag.NewBag(16)
	res, err := Analysis{}.Run(prog, plugin.NewContext(), bag)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	ar := res.(AnalysisResult)
	if !reflect.DeepEqual(ar.Declared, []string{"x", "y"}) {
		t.Errorf("expected declared [x y], got %v", ar.Declared)
	}
	if !reflect.DeepEqual(ar.Used, []string{"x", "y"}) {
		t.Errorf("expected used [x y], got %v", ar.Used)
	}
	if len(ar.Undefined) != 0 {
		t.Errorf("expected no undefined variables, got %v", ar.Undefined)
	}
	if bag.HasWarnings() {
		t.Errorf("unexpected warnings: %v", bag.Items())
	}
}

func TestAnalysis_UndeclaredWarns(t *testing.T) {
	prog := mustParse(t, `
var x;
begin
    x := 1;
    z := 2
end.
`)
	bag := diag.NewBag(16)
	res, err := Analysis{}.Run(prog, plugin.NewContext(), bag)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	ar := res.(AnalysisResult)
	if !reflect.DeepEqual(ar.Undefined, []string{"z"}) {
		t.Errorf("expected undefined [z], got %v", ar.Undefined)
	}
	if !bag.HasWarnings() {
		t.Fatal("expected a warning for z")
	}
	if bag.HasErrors() {
		t.Error("undeclared use is a warning, not an error")
	}
	msg := bag.Items()[0].Message
	if !strings.Contains(msg, `"z"`) {
		t.Errorf("warning should name the variable: %q", msg)
	}
}

func TestAnalysis_NestedScopeEndsAtEnd(t *testing.T) {
	prog := mustParse(t, `
var x;
begin
    begin
        var z;
        z := 1
    end;
    x := z
end.
`)
	bag := diag.NewBag(16)
	res, err := Analysis{}.Run(prog, plugin.NewContext(), bag)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	ar := res.(AnalysisResult)
	// z объявлена только во вложенном блоке: снаружи её нет.
	if !reflect.DeepEqual(ar.Undefined, []string{"z"}) {
		t.Errorf("expected undefined [z] outside the nested block, got %v", ar.Undefined)
	}
	if !bag.HasWarnings() {
		t.Error("expected a warning for z used outside its scope")
	}
}

func TestAnalysis_ProcedureScopesAndCalls(t *testing.T) {
	prog := mustParse(t, `
var x;
procedure double;
begin
    x := x * 2
end;
begin
    call double;
    call missing;
    write x
end.
`)
	bag := diag.NewBag(16)
	res, err := Analysis{}.Run(prog, plugin.NewContext(), bag)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	ar := res.(AnalysisResult)
	if !reflect.DeepEqual(ar.Procedures, []string{"double"}) {
		t.Errorf("expected procedures [double], got %v", ar.Procedures)
	}
	found := false
	for _, d := range bag.Items() {
		if strings.Contains(d.Message, `"missing"`) {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning for calling an undeclared procedure")
	}
}
