// Package plugin defines the unit of pipeline work and the registry that
// orders and drives execution.
//
// A plugin is a named, versioned pass over the AST. Plugins declare the
// names of other plugins they depend on; the registry computes a
// dependency-respecting order and guarantees that by the time a plugin runs,
// everything its dependencies published is already in the shared Context.
package plugin

import (
	"plume/internal/ast"
	"plume/internal/diag"
)

// Info is the identity and dependency declaration of a plugin.
type Info struct {
	Name         string
	Version      string
	Description  string
	Dependencies []string
}

// Plugin is a single unit of analysis or code generation.
//
// Run receives the parsed program, the shared compilation context and the
// diagnostics sink. It may append outputs and diagnostics but must never
// remove or mutate entries another plugin published, and must never mutate
// the program tree. The structured return value is stored under the
// plugin's name in Context.Results. A returned error (or a panic, which the
// registry recovers) marks the plugin failed and cascades skips to its
// dependents; the rest of the pipeline keeps running.
type Plugin interface {
	Info() Info
	Run(prog *ast.Program, pctx *Context, bag *diag.Bag) (any, error)
}

// Summary describes one registered plugin for host tooling ("list plugins").
type Summary struct {
	Info
	Enabled bool
}
