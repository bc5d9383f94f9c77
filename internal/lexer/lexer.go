// Package lexer turns Plume source text into tokens.
package lexer

import (
	"fmt"
	"strconv"

	"plume/internal/diag"
	"plume/internal/source"
	"plume/internal/token"
)

// Lexer scans one file. Lexical errors are reported into the shared
// diagnostics bag; scanning continues past them.
type Lexer struct {
	file   *source.File
	cursor Cursor
	bag    *diag.Bag
}

func New(file *source.File, bag *diag.Bag) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		bag:    bag,
	}
}

// Tokens scans the whole file. The returned slice always ends with EOF.
func (lx *Lexer) Tokens() []token.Token {
	toks := make([]token.Token, 0, 64)
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

// Next returns the next significant token. After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	lx.skipTrivia()
	if lx.cursor.EOF() {
		off := lx.cursor.Offset()
		return token.Token{Kind: token.EOF, Span: lx.cursor.SpanFrom(off)}
	}

	start := lx.cursor.Offset()
	ch := lx.cursor.Peek()

	switch {
	case isIdentStart(ch):
		return lx.scanIdentOrKeyword(start)
	case isDigit(ch):
		return lx.scanNumber(start)
	default:
		return lx.scanOperator(start)
	}
}

// skipTrivia пропускает пробелы и строчные комментарии `// ...`.
func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			lx.cursor.Bump()
		case ch == '/':
			b0, b1, ok := lx.cursor.Peek2()
			if !ok || b0 != '/' || b1 != '/' {
				return
			}
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
		default:
			return
		}
	}
}

func (lx *Lexer) scanIdentOrKeyword(start uint32) token.Token {
	for !lx.cursor.EOF() && isIdentContinue(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	span := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[span.Start:span.End])
	if kw, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: kw, Span: span, Text: text}
	}
	return token.Token{Kind: token.Ident, Span: span, Text: text}
}

func (lx *Lexer) scanNumber(start uint32) token.Token {
	for !lx.cursor.EOF() && isDigit(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	span := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[span.Start:span.End])
	if _, err := strconv.ParseInt(text, 10, 64); err != nil {
		lx.bag.Error(fmt.Sprintf("number literal %q does not fit in 64 bits", text), "lexer", span)
	}
	return token.Token{Kind: token.Number, Span: span, Text: text}
}

func (lx *Lexer) scanOperator(start uint32) token.Token {
	ch := lx.cursor.Bump()

	single := func(kind token.Kind) token.Token {
		span := lx.cursor.SpanFrom(start)
		return token.Token{Kind: kind, Span: span, Text: kind.String()}
	}
	withEq := func(kind token.Kind) token.Token {
		lx.cursor.Bump()
		span := lx.cursor.SpanFrom(start)
		return token.Token{Kind: kind, Span: span, Text: kind.String()}
	}

	switch ch {
	case ':':
		if lx.cursor.Peek() == '=' {
			return withEq(token.Assign)
		}
	case '+':
		return single(token.Plus)
	case '-':
		return single(token.Minus)
	case '*':
		return single(token.Star)
	case '/':
		return single(token.Slash)
	case '=':
		return single(token.Eq)
	case '#':
		return single(token.Hash)
	case '<':
		if lx.cursor.Peek() == '=' {
			return withEq(token.LtEq)
		}
		return single(token.Lt)
	case '>':
		if lx.cursor.Peek() == '=' {
			return withEq(token.GtEq)
		}
		return single(token.Gt)
	case '(':
		return single(token.LParen)
	case ')':
		return single(token.RParen)
	case ',':
		return single(token.Comma)
	case ';':
		return single(token.Semicolon)
	case '.':
		return single(token.Dot)
	}

	span := lx.cursor.SpanFrom(start)
	lx.bag.Error(fmt.Sprintf("unexpected character %q", ch), "lexer", span)
	// Продолжаем со следующего байта, токен не выдаём.
	return lx.Next()
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
