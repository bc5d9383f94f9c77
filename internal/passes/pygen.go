package passes

import (
	"plume/internal/ast"
	"plume/internal/diag"
	"plume/internal/plugin"
)

// PyGenerator renders the tree as a Python script under the "py" output
// key. Procedures become top-level defs ahead of main.
type PyGenerator struct{}

func (PyGenerator) Info() plugin.Info {
	return plugin.Info{
		Name:         PyGenName,
		Version:      builtinVersion,
		Description:  "Generates Python-like code",
		Dependencies: []string{AnalysisName},
	}
}

func (PyGenerator) Run(prog *ast.Program, pctx *plugin.Context, _ *diag.Bag) (any, error) {
	e := newEmitter(pyBackend{})
	text := e.program(prog)
	if err := pctx.AddOutput(PyGenName, OutputPy, text); err != nil {
		return nil, err
	}
	return GenResult{Lines: len(e.lines)}, nil
}

type pyBackend struct{}

func (pyBackend) header() []string {
	return []string{"#!/usr/bin/env python3", ""}
}

func (pyBackend) mainOpen() string { return "def main():" }

func (pyBackend) mainClose() []string {
	return []string{"", "main()"}
}

// Переменные в Python появляются при первом присваивании.
func (pyBackend) declLine(string) (string, bool) { return "", false }

func (pyBackend) procOpen(name string) string { return "def " + name + "():" }

func (pyBackend) procClose() (string, bool) { return "", true }

func (pyBackend) assignLine(name, expr string) string {
	return name + " = " + expr
}

func (pyBackend) callLine(proc string) string { return proc + "()" }

func (pyBackend) readLine(name string) string {
	return name + " = int(input())"
}

func (pyBackend) writeLine(expr string) string {
	return "print(" + expr + ")"
}

func (pyBackend) ifOpen(cond string) string { return "if " + cond + ":" }

func (pyBackend) whileOpen(cond string) string { return "while " + cond + ":" }

func (pyBackend) blockClose() (string, bool) { return "", false }

func (pyBackend) emptyBody() (string, bool) { return "pass", true }

func (pyBackend) op(src string) string {
	switch src {
	case "=":
		return "=="
	case "#":
		return "!="
	case "/":
		return "//"
	default:
		return src
	}
}
