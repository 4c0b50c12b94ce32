// Package parser splits minified lifetime lines into statements and parses
// the structured parts of a line: identifiers, declarations and parameter
// lists. Argument expressions are left as raw fields for the engine to
// materialize against a container.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/log"
	"lifetime.dev/lifetime/lexer"
	"lifetime.dev/lifetime/object"
	"lifetime.dev/lifetime/token"
)

// Form is how qualified an identifier was written.
type Form uint8

const (
	Bare  Form = iota // name
	Class             // class::name
	Full              // ns->class::name
)

func (f Form) String() string {
	switch f {
	case Class:
		return "class"
	case Full:
		return "full"
	default:
		return "bare"
	}
}

type Identifier struct {
	Namespace string
	Class     string
	Name      string
	Form      Form
}

// Key returns the composite key, with omitted parts filled from ns and class.
// Class form identifiers only get their namespace from ns.
func (id Identifier) Key(ns, class string) object.Key {
	switch id.Form {
	case Full:
		return object.Key{Namespace: id.Namespace, Class: id.Class, Name: id.Name}
	case Class:
		return object.Key{Namespace: ns, Class: id.Class, Name: id.Name}
	default:
		return object.Key{Namespace: ns, Class: class, Name: id.Name}
	}
}

func (id Identifier) String() string {
	switch id.Form {
	case Full:
		return id.Namespace + token.NamespaceSep + id.Class + token.ClassSep + id.Name
	case Class:
		return id.Class + token.ClassSep + id.Name
	default:
		return id.Name
	}
}

// Statement is one minified line: its leading keyword (or CALL) and all of
// its space separated fields, the first one included.
type Statement struct {
	Type   token.Type
	Fields []string
	Line   string
}

// Args are the fields after the keyword or call identifier.
func (s Statement) Args() []string {
	return s.Fields[1:]
}

func Parse(line string) Statement {
	fields := lexer.Fields(line)
	return Statement{Type: token.Lookup(fields[0]), Fields: fields, Line: line}
}

// ParseIdentifier parses `name`, `class::name` or `ns->class::name`. The
// class may be empty in the full form (`ns->::name`) to reach namespace
// level entries.
func ParseIdentifier(id string) (Identifier, error) {
	res := Identifier{}
	if strings.Count(id, token.NamespaceSep) > 1 || strings.Count(id, token.ClassSep) > 1 {
		return res, fmt.Errorf("invalid identifier %q", id)
	}
	rest := id
	if ns, after, found := strings.Cut(id, token.NamespaceSep); found {
		if !strings.Contains(after, token.ClassSep) {
			return res, fmt.Errorf("invalid identifier %q: namespace without class", id)
		}
		if !validName(ns) {
			return res, fmt.Errorf("invalid namespace in identifier %q", id)
		}
		res.Namespace = ns
		res.Form = Full
		rest = after
	}
	if class, name, found := strings.Cut(rest, token.ClassSep); found {
		if res.Form == Bare {
			res.Form = Class
			if !validName(class) {
				return res, fmt.Errorf("invalid class in identifier %q", id)
			}
		} else if class != "" && !validName(class) {
			return res, fmt.Errorf("invalid class in identifier %q", id)
		}
		res.Class = class
		rest = name
	}
	if !validName(rest) {
		return res, fmt.Errorf("invalid name in identifier %q", id)
	}
	res.Name = rest
	log.Debugf("ParseIdentifier(%q) -> %#v", id, res)
	return res, nil
}

// validName rejects empty names and names carrying sigils or separators.
func validName(s string) bool {
	if s == "" {
		return false
	}
	if strings.ContainsAny(s, "!$\"#: \t") || strings.Contains(s, token.NamespaceSep) {
		return false
	}
	return true
}

func parseType(name string) (object.Type, error) {
	t, ok := object.ParseType(name)
	if !ok {
		return t, fmt.Errorf("unknown type %q", name)
	}
	return t, nil
}

// Let is `let <type> <name> <expr...>`.
type Let struct {
	Type object.Type
	Name string
	Expr []string
}

func ParseLet(s Statement) (Let, error) {
	res := Let{}
	if len(s.Fields) < 4 {
		return res, errors.New("missing variable type, name and/or value")
	}
	var err error
	if res.Type, err = parseType(s.Fields[1]); err != nil {
		return res, err
	}
	if !validName(s.Fields[2]) {
		return res, fmt.Errorf("invalid variable name %q", s.Fields[2])
	}
	res.Name = s.Fields[2]
	res.Expr = s.Fields[3:]
	return res, nil
}

// Func is the header of `fn <type> <name> [<param>:<type>...] [...]`.
type Func struct {
	Returns  object.Type
	Name     string
	Params   []object.Param
	Tolerant bool
}

// ParseFuncName checks the type and name of a fn line, the parameter list is
// only parsed once the body is complete (ParseFunc).
func ParseFuncName(s Statement) (object.Type, string, error) {
	if len(s.Fields) < 3 {
		return object.OBJ, "", errors.New("missing function return type and/or name")
	}
	t, err := parseType(s.Fields[1])
	if err != nil {
		return t, "", err
	}
	if !validName(s.Fields[2]) {
		return t, "", fmt.Errorf("invalid function name %q", s.Fields[2])
	}
	return t, s.Fields[2], nil
}

func ParseFunc(s Statement) (Func, error) {
	res := Func{}
	var err error
	if res.Returns, res.Name, err = ParseFuncName(s); err != nil {
		return res, err
	}
	res.Params, res.Tolerant, err = ParseParams(s.Fields[3:])
	return res, err
}

// ParseParams parses `name:type` fields, a last `...` field marks the list
// as arity tolerant. Empty fields (double spaces) are ignored.
func ParseParams(fields []string) ([]object.Param, bool, error) {
	var params []object.Param
	tolerant := false
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		if tolerant {
			return nil, false, fmt.Errorf("%q must be the last parameter", token.TolerantParam)
		}
		if f == token.TolerantParam {
			tolerant = true
			continue
		}
		name, typ, found := strings.Cut(f, token.ParamSep)
		if !found || !validName(name) {
			return nil, false, fmt.Errorf("invalid parameter %q, expecting name%stype", f, token.ParamSep)
		}
		if seen[name] {
			return nil, false, fmt.Errorf("duplicate parameter %q", name)
		}
		seen[name] = true
		t, err := parseType(typ)
		if err != nil {
			return nil, false, fmt.Errorf("parameter %q: %w", name, err)
		}
		params = append(params, object.Param{Type: t, Name: name})
	}
	return params, tolerant, nil
}

// ParseIf returns the expression fields of `if <expr> then`.
func ParseIf(s Statement) ([]string, error) {
	last := len(s.Fields) - 1
	for last > 0 && s.Fields[last] == "" {
		last--
	}
	if last < 1 || s.Fields[last] != token.THEN.String() {
		return nil, errors.New("missing 'then' at the end of the if statement")
	}
	if last == 1 {
		return nil, errors.New("missing if condition")
	}
	return s.Fields[1:last], nil
}

// ParseName is for the single name of `namespace <name>` and `class <name>`.
func ParseName(s Statement) (string, error) {
	if len(s.Fields) != 2 || !validName(s.Fields[1]) {
		return "", fmt.Errorf("expecting exactly one name after %s", s.Type)
	}
	return s.Fields[1], nil
}
