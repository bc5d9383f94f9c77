package passes

import (
	"plume/internal/ast"
	"plume/internal/diag"
	"plume/internal/plugin"
)

// CGenerator renders the tree as a C translation unit under the "c" output
// key. Procedures become void functions ahead of main.
type CGenerator struct{}

func (CGenerator) Info() plugin.Info {
	return plugin.Info{
		Name:         CGenName,
		Version:      builtinVersion,
		Description:  "Generates C-like code",
		Dependencies: []string{AnalysisName},
	}
}

// GenResult is the shared result shape of both code generators.
type GenResult struct {
	Lines int `json:"lines"`
}

func (CGenerator) Run(prog *ast.Program, pctx *plugin.Context, _ *diag.Bag) (any, error) {
	e := newEmitter(cBackend{})
	text := e.program(prog)
	if err := pctx.AddOutput(CGenName, OutputC, text); err != nil {
		return nil, err
	}
	return GenResult{Lines: len(e.lines)}, nil
}

type cBackend struct{}

func (cBackend) header() []string {
	return []string{"#include <stdio.h>", ""}
}

func (cBackend) mainOpen() string { return "int main() {" }

func (cBackend) mainClose() []string {
	return []string{"    return 0;", "}"}
}

func (cBackend) declLine(name string) (string, bool) {
	return "int " + name + ";", true
}

func (cBackend) procOpen(name string) string { return "void " + name + "() {" }

func (cBackend) procClose() (string, bool) { return "}", true }

func (cBackend) assignLine(name, expr string) string {
	return name + " = " + expr + ";"
}

func (cBackend) callLine(proc string) string { return proc + "();" }

func (cBackend) readLine(name string) string {
	return `scanf("%d", &` + name + `);`
}

func (cBackend) writeLine(expr string) string {
	return `printf("%d\n", ` + expr + `);`
}

func (cBackend) ifOpen(cond string) string { return "if " + cond + " {" }

func (cBackend) whileOpen(cond string) string { return "while " + cond + " {" }

func (cBackend) blockClose() (string, bool) { return "}", true }

// Пустые тела в C допустимы, заполнитель не нужен.
func (cBackend) emptyBody() (string, bool) { return "", false }

func (cBackend) op(src string) string {
	switch src {
	case "=":
		return "=="
	case "#":
		return "!="
	default:
		return src
	}
}
