package passes

import (
	"strings"
	"testing"

	"plume/internal/diag"
	"plume/internal/plugin"
)

const codegenSrc = `
var x, y;
begin
    x := 5;
    y := x * 2;
    if y # 0 then
        write y
end.
`

func TestCGenerator_Skeleton(t *testing.T) {
	pctx := plugin.NewContext()
	res, err := CGenerator{}.Run(mustParse(t, codegenSrc), pctx, diag.NewBag(16))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	text, ok := pctx.Output(OutputC)
	if !ok {
		t.Fatal("c output missing")
	}

	want := strings.Join([]string{
		"#include <stdio.h>",
		"",
		"int main() {",
		"    int x;",
		"    int y;",
		"    x = 5;",
		"    y = (x * 2);",
		"    if (y != 0) {",
		`        printf("%d\n", y);`,
		"    }",
		"    return 0;",
		"}",
	}, "\n")
	if text != want {
		t.Errorf("expected\n%s\ngot\n%s", want, text)
	}
	if got := res.(GenResult).Lines; got != 12 {
		t.Errorf("expected 12 lines, got %d", got)
	}
}

func TestPyGenerator_Skeleton(t *testing.T) {
	pctx := plugin.NewContext()
	if _, err := (PyGenerator{}).Run(mustParse(t, codegenSrc), pctx, diag.NewBag(16)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	text, ok := pctx.Output(OutputPy)
	if !ok {
		t.Fatal("py output missing")
	}

	want := strings.Join([]string{
		"#!/usr/bin/env python3",
		"",
		"def main():",
		"    x = 5",
		"    y = (x * 2)",
		"    if (y != 0):",
		"        print(y)",
		"",
		"main()",
	}, "\n")
	if text != want {
		t.Errorf("expected\n%s\ngot\n%s", want, text)
	}
}

func TestGenerators_ProceduresAndIO(t *testing.T) {
	src := `
var n;
procedure echo;
begin
    write n
end;
begin
    read n;
    while n > 0 do
    begin
        call echo;
        n := n - 1
    end
end.
`
	pctx := plugin.NewContext()
	if _, err := (CGenerator{}).Run(mustParse(t, src), pctx, diag.NewBag(16)); err != nil {
		t.Fatalf("CGenerator: %v", err)
	}
	cText, _ := pctx.Output(OutputC)
	for _, snippet := range []string{
		"void echo() {",
		`scanf("%d", &n);`,
		"while (n > 0) {",
		"echo();",
		"n = (n - 1);",
	} {
		if !strings.Contains(cText, snippet) {
			t.Errorf("C output missing %q:\n%s", snippet, cText)
		}
	}
	// Процедуры идут до main.
	if strings.Index(cText, "void echo()") > strings.Index(cText, "int main()") {
		t.Error("procedure must be emitted before main")
	}

	if _, err := (PyGenerator{}).Run(mustParse(t, src), pctx, diag.NewBag(16)); err != nil {
		t.Fatalf("PyGenerator: %v", err)
	}
	pyText, _ := pctx.Output(OutputPy)
	for _, snippet := range []string{
		"def echo():",
		"n = int(input())",
		"while (n > 0):",
		"echo()",
		"n = (n - 1)",
	} {
		if !strings.Contains(pyText, snippet) {
			t.Errorf("python output missing %q:\n%s", snippet, pyText)
		}
	}
}

func TestPyGenerator_EmptyBodyGetsPass(t *testing.T) {
	src := `
procedure noop;
begin
end;
call noop.
`
	pctx := plugin.NewContext()
	if _, err := (PyGenerator{}).Run(mustParse(t, src), pctx, diag.NewBag(16)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	text, _ := pctx.Output(OutputPy)
	if !strings.Contains(text, "def noop():\n    pass") {
		t.Errorf("empty procedure body needs pass:\n%s", text)
	}
}

func TestPyGenerator_IntegerDivision(t *testing.T) {
	src := `
var a;
begin
    read a;
    write a / 2
end.
`
	pctx := plugin.NewContext()
	if _, err := (PyGenerator{}).Run(mustParse(t, src), pctx, diag.NewBag(16)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	text, _ := pctx.Output(OutputPy)
	if !strings.Contains(text, "print((a // 2))") {
		t.Errorf("expected floor division, got:\n%s", text)
	}
}
