// Package token holds the keywords and sigils of the lifetime line grammar.
// A line is a keyword (or a call) followed by space separated tokens.
package token

import "fortio.org/log"

type Type uint8

const (
	ILLEGAL Type = iota
	CALL         // !ns->class::name args...

	// Keywords.
	LET
	FN
	IF
	THEN
	RET
	NAMESPACE
	CLASS
	THROW
	TRY
	CATCH
	END
	LAST
)

const (
	CallSigil     = '!'
	VarSigil      = '$'
	Quote         = '"'
	Comment       = '#'
	BlockOpen     = "#>"
	BlockClose    = "<#"
	NamespaceSep  = "->"
	ClassSep      = "::"
	ParamSep      = ":"
	TolerantParam = "..."
	Separator     = " "
)

var names = [LAST]string{
	ILLEGAL:   "ILLEGAL",
	CALL:      "CALL",
	LET:       "let",
	FN:        "fn",
	IF:        "if",
	THEN:      "then",
	RET:       "ret",
	NAMESPACE: "namespace",
	CLASS:     "class",
	THROW:     "throw",
	TRY:       "try",
	CATCH:     "catch",
	END:       "end",
}

func (t Type) String() string {
	if t >= LAST {
		return "Type(?)"
	}
	return names[t]
}

var keywords = map[string]Type{
	"let":       LET,
	"fn":        FN,
	"if":        IF,
	"then":      THEN,
	"ret":       RET,
	"namespace": NAMESPACE,
	"class":     CLASS,
	"throw":     THROW,
	"try":       TRY,
	"catch":     CATCH,
	"end":       END,
}

// Lookup returns the type of the first word of a line: CALL for the call
// sigil, the keyword type, or ILLEGAL.
func Lookup(word string) Type {
	if len(word) > 0 && word[0] == CallSigil {
		return CALL
	}
	if t, ok := keywords[word]; ok {
		log.Debugf("Lookup(%s) found %s", word, t)
		return t
	}
	return ILLEGAL
}

// Opens reports whether a line starting with t must be closed by `end`.
func Opens(t Type) bool {
	switch t { //nolint:exhaustive // only block openers matter.
	case FN, IF, TRY, CLASS:
		return true
	default:
		return false
	}
}
