package ast

import (
	"plume/internal/source"
)

// Operation is a binary arithmetic or relational expression. Op holds the
// source spelling: + - * / = # < <= > >=.
type Operation struct {
	Op    string
	Left  Expr
	Right Expr
	Spn   source.Span
}

// Variable references a named variable.
type Variable struct {
	Name string
	Spn  source.Span
}

// Number is an integer literal.
type Number struct {
	Value int64
	Spn   source.Span
}

func (e *Operation) Span() source.Span { return e.Spn }
func (e *Variable) Span() source.Span  { return e.Spn }
func (e *Number) Span() source.Span    { return e.Spn }

func (*Operation) isExpr() {}
func (*Variable) isExpr()  {}
func (*Number) isExpr()    {}
