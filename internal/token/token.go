// Package token defines the closed token set of the Plume language.
package token

import (
	"plume/internal/source"
)

// Token is a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	switch t.Kind {
	case KwVar, KwProcedure, KwCall, KwRead, KwWrite, KwBegin, KwEnd, KwIf, KwThen, KwWhile, KwDo:
		return true
	default:
		return false
	}
}
