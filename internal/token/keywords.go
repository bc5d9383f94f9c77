package token

var keywords = map[string]Kind{
	"var":       KwVar,
	"procedure": KwProcedure,
	"call":      KwCall,
	"read":      KwRead,
	"write":     KwWrite,
	"begin":     KwBegin,
	"end":       KwEnd,
	"if":        KwIf,
	"then":      KwThen,
	"while":     KwWhile,
	"do":        KwDo,
}

// LookupKeyword maps an identifier spelling to its keyword kind.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
