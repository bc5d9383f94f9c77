package passes

import (
	"reflect"
	"strings"
	"testing"

	"plume/internal/diag"
	"plume/internal/plugin"
)

func TestTACGenerator_StraightLine(t *testing.T) {
	prog := mustParse(t, `
var x, y;
begin
    x := 5;
    y := x * 2;
    write y
end.
`)
	pctx := plugin.NewContext()
	res, err := TACGenerator{}.Run(prog, pctx, diag.NewBag(16))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	text, ok := pctx.Output(OutputTAC)
	if !ok {
		t.Fatal("tac output missing")
	}
	want := []string{
		"DECLARE x",
		"DECLARE y",
		"x := 5",
		"t0 := x * 2",
		"y := t0",
		"WRITE y",
	}
	got := strings.Split(text, "\n")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected\n%s\ngot\n%s", strings.Join(want, "\n"), text)
	}
	if res.(TACResult).Instructions != len(want) {
		t.Errorf("expected %d instructions, got %d", len(want), res.(TACResult).Instructions)
	}
}

func TestTACGenerator_ControlFlow(t *testing.T) {
	prog := mustParse(t, `
var i;
begin
    i := 0;
    while i < 3 do
        i := i + 1;
    if i = 3 then
        write i
end.
`)
	pctx := plugin.NewContext()
	if _, err := (TACGenerator{}).Run(prog, pctx, diag.NewBag(16)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	text, _ := pctx.Output(OutputTAC)
	want := []string{
		"DECLARE i",
		"i := 0",
		"LABEL L0",
		"t0 := i < 3",
		"IF NOT t0 GOTO L1",
		"t1 := i + 1",
		"i := t1",
		"GOTO L0",
		"LABEL L1",
		"t2 := i = 3",
		"IF NOT t2 GOTO L2",
		"WRITE i",
		"LABEL L2",
	}
	got := strings.Split(text, "\n")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected\n%s\ngot\n%s", strings.Join(want, "\n"), text)
	}
}

func TestTACGenerator_Deterministic(t *testing.T) {
	src := `
var a, b;
procedure swap;
begin
    a := b
end;
begin
    read a;
    call swap;
    write a + b
end.
`
	run := func() string {
		pctx := plugin.NewContext()
		if _, err := (TACGenerator{}).Run(mustParse(t, src), pctx, diag.NewBag(16)); err != nil {
			t.Fatalf("Run: %v", err)
		}
		text, _ := pctx.Output(OutputTAC)
		return text
	}
	first := run()
	for i := 0; i < 3; i++ {
		if next := run(); next != first {
			t.Fatalf("run %d differs:\n%s\nvs\n%s", i+2, next, first)
		}
	}
	if !strings.Contains(first, "PROC swap:") || !strings.Contains(first, "ENDPROC swap") {
		t.Errorf("procedure markers missing:\n%s", first)
	}
	if !strings.Contains(first, "CALL swap") || !strings.Contains(first, "READ a") {
		t.Errorf("call/read instructions missing:\n%s", first)
	}
}
