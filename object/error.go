package object

import (
	"fmt"
	"strings"
)

// Error is the single error value of the language: raised by the engine,
// by builtins (converted at the call site) or by `throw`.
type Error struct {
	Message string
	File    string
	Line    string // content of the line.
	Number  int
	// Fatal errors can't be caught nor ignored.
	Fatal bool
}

func NewError(msg, file, line string, number int) *Error {
	return &Error{Message: msg, File: file, Line: line, Number: number}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Number, e.Message)
}

// Format is the user visible, multi line, form.
func (e *Error) Format() string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.Message)
	b.WriteString("\n  in ")
	b.WriteString(e.File)
	fmt.Fprintf(&b, "\n  %d:\t%s\n", e.Number, e.Line)
	return b.String()
}
