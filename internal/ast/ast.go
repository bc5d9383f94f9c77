// Package ast defines the node set of the Plume language.
//
// The set is closed: every pass switches over the concrete node types and
// treats an unknown node as a structural defect. Traversal order is fixed
// everywhere — declarations before body, left operand before right, condition
// before branch or loop body — because temp and label numbering in the code
// generators depends on it.
//
// Trees are single-owner: the parser builds a tree once and hands it to the
// pipeline. Passes must never mutate a tree they did not build; a pass that
// rewrites code returns a fresh tree instead.
package ast

import (
	"plume/internal/source"
)

// Node is implemented by every AST node.
type Node interface {
	Span() source.Span
}

// Stmt is the closed statement interface.
type Stmt interface {
	Node
	isStmt()
}

// Expr is the closed expression interface.
type Expr interface {
	Node
	isExpr()
}

// Program is the root of one compilation.
type Program struct {
	Body *Block
	Spn  source.Span
}

func (p *Program) Span() source.Span { return p.Spn }

// Proc is one named procedure of a block.
type Proc struct {
	Name string
	Body *Block
	Spn  source.Span
}

// Block is a procedure-structured scope: declared variables, nested
// procedures, and one governing statement.
type Block struct {
	Vars  []string
	Procs []Proc
	Body  Stmt
	Spn   source.Span
}

func (b *Block) Span() source.Span { return b.Spn }
