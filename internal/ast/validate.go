package ast

import (
	"fmt"
)

// StructuralError reports a malformed tree handed to the pipeline. It is
// fatal: the registry refuses to run any plugin against such a tree.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string {
	return "structural error: " + e.Msg
}

func structuralf(format string, args ...any) *StructuralError {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}

// Validate checks that the tree is complete: no nil children, no empty
// names, only known node types. It does not perform semantic analysis.
func Validate(p *Program) error {
	if p == nil {
		return structuralf("nil program")
	}
	return validateBlock(p.Body, "program")
}

func validateBlock(b *Block, where string) error {
	if b == nil {
		return structuralf("nil block in %s", where)
	}
	for i, v := range b.Vars {
		if v == "" {
			return structuralf("empty variable name #%d in %s", i, where)
		}
	}
	for _, proc := range b.Procs {
		if proc.Name == "" {
			return structuralf("unnamed procedure in %s", where)
		}
		if err := validateBlock(proc.Body, "procedure "+proc.Name); err != nil {
			return err
		}
	}
	return validateStmt(b.Body, where)
}

func validateStmt(s Stmt, where string) error {
	switch s := s.(type) {
	case nil:
		return structuralf("nil statement in %s", where)
	case *NestedBlock:
		for i, v := range s.Vars {
			if v == "" {
				return structuralf("empty variable name #%d in %s", i, where)
			}
		}
		for _, inner := range s.Stmts {
			if err := validateStmt(inner, where); err != nil {
				return err
			}
		}
	case *Compound:
		for _, inner := range s.Stmts {
			if err := validateStmt(inner, where); err != nil {
				return err
			}
		}
	case *Assign:
		if s.Name == "" {
			return structuralf("assignment without target in %s", where)
		}
		return validateExpr(s.Value, where)
	case *Call:
		if s.Proc == "" {
			return structuralf("call without procedure name in %s", where)
		}
	case *Read:
		if s.Name == "" {
			return structuralf("read without target in %s", where)
		}
	case *Write:
		return validateExpr(s.Value, where)
	case *If:
		if err := validateExpr(s.Cond, where); err != nil {
			return err
		}
		return validateStmt(s.Then, where)
	case *While:
		if err := validateExpr(s.Cond, where); err != nil {
			return err
		}
		return validateStmt(s.Body, where)
	default:
		return structuralf("unknown statement %T in %s", s, where)
	}
	return nil
}

func validateExpr(e Expr, where string) error {
	switch e := e.(type) {
	case nil:
		return structuralf("nil expression in %s", where)
	case *Operation:
		if e.Op == "" {
			return structuralf("operation without operator in %s", where)
		}
		if err := validateExpr(e.Left, where); err != nil {
			return err
		}
		return validateExpr(e.Right, where)
	case *Variable:
		if e.Name == "" {
			return structuralf("variable without name in %s", where)
		}
	case *Number:
		// always valid
	default:
		return structuralf("unknown expression %T in %s", e, where)
	}
	return nil
}
