package repl

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errTrailingEscape = errors.New("unterminated escape sequence: command ends with backslash")
	errUnclosedQuote  = errors.New("unclosed quote")
)

// SplitCommand splits a debugger command line into words. Single quotes
// keep everything literal, double quotes and bare words honor backslash
// escapes, unquoted whitespace separates words.
func SplitCommand(cmd string) ([]string, error) {
	var parts []string
	var current strings.Builder
	quote := rune(0)
	escaped := false
	word := false // current word started, even if empty ("").
	flush := func() {
		if word {
			parts = append(parts, current.String())
			current.Reset()
			word = false
		}
	}
	for _, r := range cmd {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped, word = true, true
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote, word = r, true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			current.WriteRune(r)
			word = true
		}
	}
	if escaped {
		return nil, errTrailingEscape
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: missing closing %c", errUnclosedQuote, quote)
	}
	flush()
	return parts, nil
}
