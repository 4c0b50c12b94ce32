package object

import (
	"strings"
)

// Kind tags the two variants of Function.
type Kind uint8

const (
	Builtin Kind = iota // native Callback.
	Defined             // interpreted Body.
)

func (k Kind) String() string {
	if k == Defined {
		return "defined"
	}
	return "builtin"
}

// Callback is the builtin calling convention. env is the runtime container
// (*eval.Container), side effects on it are visible to the caller.
type Callback func(env any, args []*Value) (*Value, error)

type Param struct {
	Type Type
	Name string
}

// Function is a callable entry, either a Builtin backed by Callback or a
// Defined function whose Body is interpreted lines from File, starting after
// Line.
type Function struct {
	Namespace string
	Class     string
	Name      string
	Returns   Type
	Access    Access
	Params    []Param
	// Tolerant functions accept any number of arguments, as given, without
	// type checks.
	Tolerant bool
	Help     string
	Kind     Kind

	Callback Callback

	Body []string
	File string
	Line int
}

func (f *Function) Key() Key {
	return Key{Namespace: f.Namespace, Class: f.Class, Name: f.Name}
}

// Signature is the call form with types: `!ns->class::name(type name, ...) ret`.
func (f *Function) Signature() string {
	var b strings.Builder
	b.WriteByte('!')
	b.WriteString(f.Key().String())
	b.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Type.String())
		b.WriteByte(' ')
		b.WriteString(p.Name)
	}
	if f.Tolerant {
		if len(f.Params) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("...")
	}
	b.WriteString(") ")
	b.WriteString(f.Returns.String())
	return b.String()
}

func (f *Function) Inspect() string {
	s := f.Kind.String() + " " + f.Signature()
	if f.Help != "" {
		s += " // " + f.Help
	}
	return s
}
