// Package parser builds Plume ASTs from token streams.
//
// The grammar is the classic block-structured teaching language:
//
//	program    = block "." .
//	block      = [ "var" idents ";" ] { "procedure" ident ";" block ";" } statement .
//	statement  = ident ":=" expression | "call" ident | "read" ident
//	           | "write" expression
//	           | "begin" [ "var" idents ";" ] statement { ";" statement } "end"
//	           | "if" condition "then" statement
//	           | "while" condition "do" statement | .
//	condition  = expression relop expression .
//
// Errors are reported into the shared diagnostics bag. The driver must not
// hand a tree to the pipeline when the bag contains errors.
package parser

import (
	"fmt"
	"strconv"

	"plume/internal/ast"
	"plume/internal/diag"
	"plume/internal/token"
)

type Parser struct {
	toks []token.Token
	pos  int
	bag  *diag.Bag
}

func New(toks []token.Token, bag *diag.Bag) *Parser {
	return &Parser{toks: toks, bag: bag}
}

// Parse consumes the whole token stream and returns the program root.
// The tree may be partial when errors were reported.
func (p *Parser) Parse() *ast.Program {
	start := p.peek().Span
	block := p.parseBlock()
	p.expect(token.Dot, "expected '.' after program block")
	return &ast.Program{Body: block, Spn: start.Cover(p.prev().Span)}
}

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) prev() token.Token {
	if p.pos == 0 {
		return p.toks[0]
	}
	if p.pos > len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos-1]
}

func (p *Parser) bump() token.Token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

func (p *Parser) at(kind token.Kind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) eat(kind token.Kind) bool {
	if p.at(kind) {
		p.bump()
		return true
	}
	return false
}

func (p *Parser) expect(kind token.Kind, msg string) bool {
	if p.eat(kind) {
		return true
	}
	p.errorHere(msg)
	return false
}

func (p *Parser) errorHere(msg string) {
	tok := p.peek()
	p.bag.Error(fmt.Sprintf("%s, found %q", msg, tok.Kind.String()), "parser", tok.Span)
}

// parseBlock = [ "var" ... ";" ] { "procedure" ... } statement
func (p *Parser) parseBlock() *ast.Block {
	start := p.peek().Span
	block := &ast.Block{}

	if p.eat(token.KwVar) {
		block.Vars = p.parseIdentList()
		p.expect(token.Semicolon, "expected ';' after variable declarations")
	}

	for p.eat(token.KwProcedure) {
		nameTok := p.peek()
		proc := ast.Proc{Spn: nameTok.Span}
		if p.expect(token.Ident, "expected procedure name") {
			proc.Name = nameTok.Text
		} else {
			proc.Name = "<error>"
		}
		p.expect(token.Semicolon, "expected ';' after procedure name")
		proc.Body = p.parseBlock()
		p.expect(token.Semicolon, "expected ';' after procedure body")
		block.Procs = append(block.Procs, proc)
	}

	block.Body = p.parseStatement()
	block.Spn = start.Cover(p.prev().Span)
	return block
}

func (p *Parser) parseIdentList() []string {
	var names []string
	for {
		tok := p.peek()
		if !p.expect(token.Ident, "expected variable name") {
			return names
		}
		names = append(names, tok.Text)
		if !p.eat(token.Comma) {
			return names
		}
	}
}

func (p *Parser) parseStatement() ast.Stmt {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		return p.parseAssign()
	case token.KwCall:
		p.bump()
		nameTok := p.peek()
		name := "<error>"
		if p.expect(token.Ident, "expected procedure name after 'call'") {
			name = nameTok.Text
		}
		return &ast.Call{Proc: name, Spn: tok.Span.Cover(p.prev().Span)}
	case token.KwRead:
		p.bump()
		nameTok := p.peek()
		name := "<error>"
		if p.expect(token.Ident, "expected variable name after 'read'") {
			name = nameTok.Text
		}
		return &ast.Read{Name: name, NameSpan: nameTok.Span, Spn: tok.Span.Cover(p.prev().Span)}
	case token.KwWrite:
		p.bump()
		value := p.parseExpression()
		return &ast.Write{Value: value, Spn: tok.Span.Cover(p.prev().Span)}
	case token.KwBegin:
		return p.parseBeginEnd()
	case token.KwIf:
		p.bump()
		cond := p.parseCondition()
		p.expect(token.KwThen, "expected 'then' after condition")
		then := p.parseStatement()
		return &ast.If{Cond: cond, Then: then, Spn: tok.Span.Cover(p.prev().Span)}
	case token.KwWhile:
		p.bump()
		cond := p.parseCondition()
		p.expect(token.KwDo, "expected 'do' after condition")
		body := p.parseStatement()
		return &ast.While{Cond: cond, Body: body, Spn: tok.Span.Cover(p.prev().Span)}
	default:
		// Пустой оператор: разрешён перед "end", ";" и ".".
		return &ast.Compound{Spn: tok.Span}
	}
}

func (p *Parser) parseAssign() ast.Stmt {
	nameTok := p.bump()
	p.expect(token.Assign, "expected ':=' in assignment")
	value := p.parseExpression()
	return &ast.Assign{
		Name:     nameTok.Text,
		NameSpan: nameTok.Span,
		Value:    value,
		Spn:      nameTok.Span.Cover(p.prev().Span),
	}
}

// parseBeginEnd parses "begin ... end". A leading "var" list makes the group
// a NestedBlock with its own scope; otherwise it is a plain Compound.
func (p *Parser) parseBeginEnd() ast.Stmt {
	start := p.bump().Span // begin

	var vars []string
	if p.eat(token.KwVar) {
		vars = p.parseIdentList()
		p.expect(token.Semicolon, "expected ';' after variable declarations")
	}

	var stmts []ast.Stmt
	stmts = append(stmts, p.parseStatement())
	for p.eat(token.Semicolon) {
		if p.at(token.KwEnd) {
			break // trailing semicolon
		}
		stmts = append(stmts, p.parseStatement())
	}
	p.expect(token.KwEnd, "expected 'end' to close 'begin'")
	span := start.Cover(p.prev().Span)

	if vars != nil {
		return &ast.NestedBlock{Vars: vars, Stmts: stmts, Spn: span}
	}
	return &ast.Compound{Stmts: stmts, Spn: span}
}

// parseCondition = expression relop expression
func (p *Parser) parseCondition() ast.Expr {
	left := p.parseExpression()
	opTok := p.peek()
	if !opTok.Kind.IsRelOp() {
		p.errorHere("expected relational operator in condition")
		return left
	}
	p.bump()
	right := p.parseExpression()
	return &ast.Operation{
		Op:    opTok.Kind.String(),
		Left:  left,
		Right: right,
		Spn:   left.Span().Cover(right.Span()),
	}
}

// parseExpression = [ "-" ] term { ("+"|"-") term }
func (p *Parser) parseExpression() ast.Expr {
	var left ast.Expr
	if p.at(token.Minus) {
		minus := p.bump()
		term := p.parseTerm()
		// Unary minus lowers to 0 - term.
		left = &ast.Operation{
			Op:    "-",
			Left:  &ast.Number{Value: 0, Spn: minus.Span},
			Right: term,
			Spn:   minus.Span.Cover(term.Span()),
		}
	} else {
		left = p.parseTerm()
	}
	for p.at(token.Plus) || p.at(token.Minus) {
		opTok := p.bump()
		right := p.parseTerm()
		left = &ast.Operation{
			Op:    opTok.Kind.String(),
			Left:  left,
			Right: right,
			Spn:   left.Span().Cover(right.Span()),
		}
	}
	return left
}

// parseTerm = factor { ("*"|"/") factor }
func (p *Parser) parseTerm() ast.Expr {
	left := p.parseFactor()
	for p.at(token.Star) || p.at(token.Slash) {
		opTok := p.bump()
		right := p.parseFactor()
		left = &ast.Operation{
			Op:    opTok.Kind.String(),
			Left:  left,
			Right: right,
			Spn:   left.Span().Cover(right.Span()),
		}
	}
	return left
}

// parseFactor = ident | number | "(" expression ")"
func (p *Parser) parseFactor() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		p.bump()
		return &ast.Variable{Name: tok.Text, Spn: tok.Span}
	case token.Number:
		p.bump()
		value, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			// Лексер уже сообщил об ошибке диапазона.
			value = 0
		}
		return &ast.Number{Value: value, Spn: tok.Span}
	case token.LParen:
		p.bump()
		expr := p.parseExpression()
		p.expect(token.RParen, "expected ')'")
		return expr
	default:
		p.errorHere("expected variable, number or '('")
		p.bump()
		return &ast.Number{Value: 0, Spn: tok.Span}
	}
}
