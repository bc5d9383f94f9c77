package token

// Kind enumerates every token of the Plume surface syntax. The set is
// closed: the lexer never produces a kind outside this list.
type Kind uint8

const (
	EOF Kind = iota
	Ident
	Number

	// Keywords
	KwVar
	KwProcedure
	KwCall
	KwRead
	KwWrite
	KwBegin
	KwEnd
	KwIf
	KwThen
	KwWhile
	KwDo

	// Operators and punctuation
	Assign // :=
	Plus
	Minus
	Star
	Slash
	Eq   // =
	Hash // #
	Lt
	LtEq
	Gt
	GtEq
	LParen
	RParen
	Comma
	Semicolon
	Dot
)

var kindNames = [...]string{
	EOF:         "EOF",
	Ident:       "Ident",
	Number:      "Number",
	KwVar:       "var",
	KwProcedure: "procedure",
	KwCall:      "call",
	KwRead:      "read",
	KwWrite:     "write",
	KwBegin:     "begin",
	KwEnd:       "end",
	KwIf:        "if",
	KwThen:      "then",
	KwWhile:     "while",
	KwDo:        "do",
	Assign:      ":=",
	Plus:        "+",
	Minus:       "-",
	Star:        "*",
	Slash:       "/",
	Eq:          "=",
	Hash:        "#",
	Lt:          "<",
	LtEq:        "<=",
	Gt:          ">",
	GtEq:        ">=",
	LParen:      "(",
	RParen:      ")",
	Comma:       ",",
	Semicolon:   ";",
	Dot:         ".",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}

// IsRelOp reports whether the kind is a relational operator of a condition.
func (k Kind) IsRelOp() bool {
	switch k {
	case Eq, Hash, Lt, LtEq, Gt, GtEq:
		return true
	default:
		return false
	}
}
