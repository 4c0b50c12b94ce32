package eval

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fortio.org/log"
	"lifetime.dev/lifetime/object"
	"lifetime.dev/lifetime/parser"
	"lifetime.dev/lifetime/token"
)

// ArraySep joins the elements of an array value.
const ArraySep = "\x01"

// Lookup resolves a function identifier: full identifiers directly,
// `class::name` in the bound namespaces only (first match in binding order),
// bare names in the current namespace and class. User defined functions
// shadow builtins with the same key.
func (c *Container) Lookup(id parser.Identifier) (*object.Function, bool) {
	if id.Form != parser.Class {
		return c.function(id.Key(c.namespace, c.Class()))
	}
	for _, ns := range c.bound {
		log.Debugf("Looking for %s in bound namespace %s", id, ns)
		if f, ok := c.function(id.Key(ns, "")); ok {
			return f, true
		}
	}
	return nil, false
}

func (c *Container) function(k object.Key) (*object.Function, bool) {
	if f, ok := c.defined[k]; ok {
		return f, true
	}
	f, ok := c.builtins[k]
	return f, ok
}

// callStatement runs `!id args...`, fields[0] being the call.
func (c *Container) callStatement(fields []string, file string, num int) (*object.Value, error) {
	id, err := parser.ParseIdentifier(fields[0][1:])
	if err != nil {
		return nil, fmt.Errorf("Invalid function identifier: %w", err)
	}
	f, ok := c.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("Function not found: %s", fields[0][1:])
	}
	args, err := c.materialize(fields[1:])
	if err != nil {
		return nil, err
	}
	log.Debugf("%s:%d: calling %s with %d args", file, num, f.Key(), len(args))
	return c.Call(f, args)
}

// Call invokes f with already materialized arguments. This is the single
// dispatch point of both kinds of functions.
func (c *Container) Call(f *object.Function, args []*object.Value) (*object.Value, error) {
	args, err := checkArgs(f, args)
	if err != nil {
		return nil, err
	}
	switch f.Kind {
	case object.Builtin:
		return f.Callback(c, args)
	case object.Defined:
		return c.callDefined(f, args)
	default:
		return nil, fmt.Errorf("%s: unknown function kind %d", f.Key(), f.Kind)
	}
}

// checkArgs pads missing trailing arguments with typed nulls and coerces
// the others to the parameter types. Tolerant functions get args as is.
func checkArgs(f *object.Function, args []*object.Value) ([]*object.Value, error) {
	if f.Tolerant {
		return args, nil
	}
	if len(args) > len(f.Params) {
		return nil, fmt.Errorf("Incorrect amount of args passed (expected=%d, actual=%d)", len(f.Params), len(args))
	}
	res := make([]*object.Value, len(f.Params))
	for i, p := range f.Params {
		if i >= len(args) {
			res[i] = object.New(p.Type, p.Name)
			continue
		}
		v, err := args[i].Coerce(p.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s) of %s: %w", i+1, p.Name, f.Key(), err)
		}
		v.Name = p.Name
		res[i] = v
	}
	return res, nil
}

// callDefined runs the body on a clone, parameters bound in the clone's own
// scope frame. Only the returned value and the output come back.
func (c *Container) callDefined(f *object.Function, args []*object.Value) (*object.Value, error) {
	clone := c.Clone()
	clone.namespace = f.Namespace
	clone.resetStack(Executing)
	if f.Class != "" {
		clone.push(frame{state: InClass, class: f.Class, line: f.Line})
	}
	bind := func(v *object.Value, name string) {
		v.Namespace, v.Class, v.Name = f.Namespace, f.Class, name
		clone.scope.Bind(v)
	}
	for i, p := range f.Params {
		switch {
		case i < len(args):
			bind(args[i].Copy(), p.Name)
		default:
			bind(object.New(p.Type, p.Name), p.Name)
		}
	}
	if f.Tolerant {
		bind(NewArray("", args), "args")
	}
	ok := clone.run(f.Body, f.File, f.Line, 0, true)
	c.output.WriteString(clone.Output())
	if !ok {
		return nil, clone.lastErr
	}
	if !clone.returned || clone.last == nil || f.Returns == object.OBJ {
		return clone.last, nil
	}
	v, err := clone.last.Coerce(f.Returns)
	if err != nil {
		return nil, fmt.Errorf("return value of %s: %w", f.Key(), err)
	}
	return v, nil
}

var errUnterminated = errors.New("Unterminated string literal")

// materialize turns argument fields into values, left to right. A call
// consumes all the remaining fields as its own arguments.
func (c *Container) materialize(fields []string) ([]*object.Value, error) {
	var res []*object.Value
	var str strings.Builder
	inString := false
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		name := "arg" + strconv.Itoa(len(res))
		if inString {
			str.WriteString(token.Separator)
			if strings.HasSuffix(f, string(token.Quote)) {
				str.WriteString(f[:len(f)-1])
				res = append(res, object.NewString(name, str.String()))
				inString = false
				continue
			}
			str.WriteString(f)
			continue
		}
		if f == "" {
			continue
		}
		switch f[0] {
		case token.Quote:
			if len(f) > 1 && f[len(f)-1] == token.Quote {
				res = append(res, object.NewString(name, f[1:len(f)-1]))
				continue
			}
			str.Reset()
			str.WriteString(f[1:])
			inString = true
		case token.VarSigil:
			v, err := c.variable(f[1:])
			if err != nil {
				return nil, err
			}
			res = append(res, v)
		case token.CallSigil:
			v, err := c.callStatement(fields[i:], "", 0)
			if err != nil {
				return nil, err
			}
			if v == nil {
				v = object.New(object.OBJ, name)
			}
			return append(res, v), nil
		default:
			res = append(res, c.literal(name, f))
		}
	}
	if inString {
		return nil, errUnterminated
	}
	return res, nil
}

// variable returns a detached copy of a referenced variable.
func (c *Container) variable(ref string) (*object.Value, error) {
	id, err := parser.ParseIdentifier(ref)
	if err != nil {
		return nil, fmt.Errorf("Invalid variable reference $%s: %w", ref, err)
	}
	v, ok := c.scope.Get(id.Key(c.namespace, c.Class()))
	if !ok {
		return nil, fmt.Errorf("Referenced variable not found: $%s", ref)
	}
	return v.Copy(), nil
}

// literal parses integers (i32 when in range, then i64, u64), booleans,
// and falls back to an obj with a warning.
func (c *Container) literal(name, f string) *object.Value {
	if n, err := strconv.ParseInt(f, 10, 64); err == nil {
		t := object.I64
		if n >= -1<<31 && n < 1<<31 {
			t = object.I32
		}
		v, _ := object.NewInt(t, name, n) // range checked above.
		return v
	}
	if n, err := strconv.ParseUint(f, 10, 64); err == nil {
		v := object.New(object.U64, name)
		_ = v.SetUint(n) // any uint64 fits.
		return v
	}
	switch {
	case strings.EqualFold(f, "true"):
		return object.NewBool(name, true)
	case strings.EqualFold(f, "false"):
		return object.NewBool(name, false)
	}
	c.Warnf("Unable to parse %s as a literal, using it as an obj", f)
	return object.NewObject(name, f)
}

// NewArray joins the string forms of vals into an obj array value.
func NewArray(name string, vals []*object.Value) *object.Value {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return object.NewObject(name, strings.Join(parts, ArraySep))
}

// ArrayElements splits an array value, a null value is an empty array.
func ArrayElements(v *object.Value) []string {
	if v == nil || v.IsNull() {
		return nil
	}
	return strings.Split(v.String(), ArraySep)
}
