package ast

import (
	"plume/internal/source"
)

// NestedBlock is a begin/end group that opens its own variable scope.
type NestedBlock struct {
	Vars  []string
	Stmts []Stmt
	Spn   source.Span
}

// Compound is a begin/end group without declarations: a plain statement
// sequence in the enclosing scope.
type Compound struct {
	Stmts []Stmt
	Spn   source.Span
}

// Assign stores the value of an expression into a named variable.
type Assign struct {
	Name     string
	NameSpan source.Span
	Value    Expr
	Spn      source.Span
}

// Call invokes a procedure by name.
type Call struct {
	Proc string
	Spn  source.Span
}

// Read consumes one input value into a named variable.
type Read struct {
	Name     string
	NameSpan source.Span
	Spn      source.Span
}

// Write emits the value of an expression.
type Write struct {
	Value Expr
	Spn   source.Span
}

// If executes Then when the condition holds. The language has no else.
type If struct {
	Cond Expr
	Then Stmt
	Spn  source.Span
}

// While repeats Body while the condition holds.
type While struct {
	Cond Expr
	Body Stmt
	Spn  source.Span
}

func (s *NestedBlock) Span() source.Span { return s.Spn }
func (s *Compound) Span() source.Span    { return s.Spn }
func (s *Assign) Span() source.Span      { return s.Spn }
func (s *Call) Span() source.Span        { return s.Spn }
func (s *Read) Span() source.Span        { return s.Spn }
func (s *Write) Span() source.Span       { return s.Spn }
func (s *If) Span() source.Span          { return s.Spn }
func (s *While) Span() source.Span       { return s.Spn }

func (*NestedBlock) isStmt() {}
func (*Compound) isStmt()    {}
func (*Assign) isStmt()      {}
func (*Call) isStmt()        {}
func (*Read) isStmt()        {}
func (*Write) isStmt()       {}
func (*If) isStmt()          {}
func (*While) isStmt()       {}
