// Package eval is the lifetime execution engine: a state machine walking
// minified lines against a Container.
package eval

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/log"
	"lifetime.dev/lifetime/lexer"
	"lifetime.dev/lifetime/object"
	"lifetime.dev/lifetime/parser"
	"lifetime.dev/lifetime/token"
)

// Exec runs lines from fileName. Lines are minified first unless
// skipMinification is set. Returns false only on failure: a breakpoint
// suspension returns true with State() == BreakpointHit and the next top
// level Exec of the same file resumes before the line it stopped at.
//
// Nested Exec calls never suspend nor tear the container down, and leave
// their error in LastError() instead of printing it.
func (c *Container) Exec(lines []string, fileName string, nested, skipMinification bool) bool {
	if !skipMinification {
		lines = lexer.Minify(lines)
	}
	start := 0
	switch {
	case nested:
		c.setState(Executing)
	case c.Suspended() && c.resumeFile == fileName:
		start = c.resume
		c.setState(Executing)
		log.LogVf("Resuming %s at line %d", fileName, start+1)
	default:
		c.resetStack(Executing)
		c.last, c.returned = nil, false
		c.caught, c.tryActive, c.lastErr = nil, false, nil
	}
	return c.run(lines, fileName, 0, start, nested)
}

// run is the interpreter loop. Line numbers are offset+index+1.
func (c *Container) run(lines []string, file string, offset, start int, nested bool) bool {
	for i := start; i < len(lines); i++ {
		line := lines[i]
		num := offset + i + 1
		st := parser.Parse(line)
		// Every line of a top level run can suspend, including lines of a
		// function body being defined and lines of a skipped block.
		if !nested && c.breakpoints.hit(file, num) {
			c.resume, c.resumeFile = i, file
			c.setState(BreakpointHit)
			return true
		}
		top := c.top()
		if top.state == ParsingFunc {
			if err := c.accumulate(st, file, num); err != nil && !c.handle(err) {
				return c.fail(err, nested)
			}
			continue
		}
		if top.skipping() {
			c.skipLine(st)
			continue
		}
		if c.cfg.Verbose {
			log.Infof("%s:%d: %s", file, num, line)
		}
		err := c.dispatch(st, file, num)
		if err != nil {
			e := c.newError(err, file, line, num)
			if !c.handle(e) {
				return c.fail(e, nested)
			}
			continue
		}
		if c.returned {
			break
		}
	}
	if nested {
		return true
	}
	if f := c.unclosed(); f != nil && !c.returned {
		e := &object.Error{
			Message: fmt.Sprintf("Unclosed %s block opened on line %d", f.state, f.line),
			File:    file, Number: f.line, Fatal: true,
		}
		if f.line > 0 && f.line <= len(lines) {
			e.Line = lines[f.line-1]
		}
		return c.fail(e, nested)
	}
	c.setState(ExitSuccess)
	c.Close()
	return true
}

// unclosed returns the outermost construct that needs an `end` to be
// complete. Class bindings may stay open until the end of the input.
func (c *Container) unclosed() *frame {
	for i := 1; i < len(c.frames); i++ {
		if c.frames[i].state != InClass {
			return &c.frames[i]
		}
	}
	return nil
}

func (c *Container) fail(e *object.Error, nested bool) bool {
	c.lastErr = e
	c.setState(ExitFail)
	if !nested {
		c.PrintErr(e.Format())
		c.Close()
	}
	return false
}

// newError converts a Go error into an Error located at the current line.
// Errors coming from a nested Exec keep their original location.
func (c *Container) newError(err error, file, line string, num int) *object.Error {
	var e *object.Error
	if errors.As(err, &e) {
		if e.File == "" {
			e.File, e.Line, e.Number = file, line, num
		}
		return e
	}
	return object.NewError(err.Error(), file, line, num)
}

// handle applies the error handling order and reports whether execution
// continues: fatal errors fail, an active try catches (here or in a caller),
// ignore-errors logs.
func (c *Container) handle(e *object.Error) bool {
	if e.Fatal {
		return false
	}
	if c.tryActive && c.caught == nil {
		c.caught = e
		n := 0
		for c.top().state != InTry {
			c.pop()
			n++
		}
		top := c.top()
		top.depth, top.skip = n, true
		log.LogVf("Caught error %q, skipping to catch/end", e.Message)
		return true
	}
	if c.outerCatch {
		log.LogVf("Passing error %q to the enclosing try", e.Message)
		return false
	}
	if c.cfg.IgnoreErrors {
		log.LogVf("Ignoring error: %v", e)
		c.PrintErr(e.Format())
		return true
	}
	return false
}

// accumulate adds a line to the function being defined, the `end` matching
// the `fn` completes it.
func (c *Container) accumulate(st parser.Statement, file string, num int) *object.Error {
	top := c.top()
	switch {
	case token.Opens(st.Type):
		top.depth++
	case st.Type == token.END && top.depth > 0:
		top.depth--
	case st.Type == token.END:
		p := c.pop().fn
		if err := c.define(p); err != nil {
			return c.newError(err, file, st.Line, num)
		}
		return nil
	}
	top.fn.body = append(top.fn.body, st.Line)
	return nil
}

func (c *Container) define(p *pendingFunc) error {
	h, err := parser.ParseFunc(p.header)
	if err != nil {
		return err
	}
	f := &object.Function{
		Namespace: p.namespace,
		Class:     p.class,
		Name:      h.Name,
		Returns:   h.Returns,
		Params:    h.Params,
		Tolerant:  h.Tolerant,
		Kind:      object.Defined,
		Body:      p.body,
		File:      p.file,
		Line:      p.line,
	}
	k := f.Key()
	if _, ok := c.defined[k]; ok {
		return fmt.Errorf("Function %s: %w", k, object.ErrDuplicate)
	}
	c.defined[k] = f
	log.LogVf("Defined %s (%d lines)", f.Signature(), len(f.Body))
	return nil
}

// skipLine tracks block openers and `end` of a skipped region, and the
// `catch` of a try block that caught an error.
func (c *Container) skipLine(st parser.Statement) {
	top := c.top()
	switch {
	case token.Opens(st.Type):
		top.depth++
	case st.Type == token.END && top.depth > 0:
		top.depth--
	case st.Type == token.END:
		c.end()
	case st.Type == token.CATCH && top.depth == 0 && top.state == InTry && !top.catching:
		top.skip, top.catching = false, true
		c.tryActive = false
	}
}

func (c *Container) dispatch(st parser.Statement, file string, num int) error {
	switch st.Type {
	case token.CALL:
		v, err := c.callStatement(st.Fields, file, num)
		if err != nil {
			return err
		}
		c.last = v
		return nil
	case token.LET:
		return c.let(st)
	case token.FN:
		if _, _, err := parser.ParseFuncName(st); err != nil {
			return err
		}
		c.push(frame{state: ParsingFunc, line: num, fn: &pendingFunc{
			header: st, namespace: c.namespace, class: c.Class(), file: file, line: num,
		}})
		return nil
	case token.IF:
		cond, err := c.condition(st, file, num)
		if err != nil {
			return err
		}
		c.push(frame{state: ParsingIf, cond: cond, line: num})
		return nil
	case token.RET:
		return c.ret(st)
	case token.NAMESPACE:
		name, err := parser.ParseName(st)
		if err != nil {
			return err
		}
		if c.namespaceSet {
			return fmt.Errorf("Namespace already declared (%s), can't redeclare it as %s", c.namespace, name)
		}
		c.namespace, c.namespaceSet = name, true
		return nil
	case token.CLASS:
		name, err := parser.ParseName(st)
		if err != nil {
			return err
		}
		c.push(frame{state: InClass, class: name, line: num})
		return nil
	case token.THROW:
		return c.throw(st)
	case token.TRY:
		if c.outerTry || c.inTry() {
			return &object.Error{Message: "Nested try blocks are not allowed", Fatal: true}
		}
		c.push(frame{state: InTry, line: num})
		c.tryActive = true
		return nil
	case token.CATCH:
		top := c.top()
		if top.state != InTry || top.catching {
			return errors.New("catch outside of a try block")
		}
		// No error was raised: the catch section doesn't run.
		top.skip, top.catching = true, true
		c.tryActive = false
		return nil
	case token.END:
		if len(c.frames) == 1 {
			return errors.New("end without an open block")
		}
		c.end()
		return nil
	default:
		return fmt.Errorf("Unknown keyword: %s", st.Fields[0])
	}
}

// end pops the innermost construct, a try block also clears the caught
// error.
func (c *Container) end() {
	if c.pop().state == InTry {
		c.caught, c.tryActive = nil, false
	}
}

func (c *Container) let(st parser.Statement) error {
	l, err := parser.ParseLet(st)
	if err != nil {
		return err
	}
	k := object.Key{Namespace: c.namespace, Class: c.Class(), Name: l.Name}
	if c.scope.Local().Contains(k.Namespace, k.Class, k.Name) {
		return fmt.Errorf("Invalid variable redefinition: %s", k)
	}
	vals, err := c.materialize(l.Expr)
	if err != nil {
		return err
	}
	if len(vals) != 1 {
		return fmt.Errorf("let %s expects exactly one value, got %d", l.Name, len(vals))
	}
	v, err := vals[0].Convert(l.Type)
	if err != nil {
		return err
	}
	v.Namespace, v.Class, v.Name = k.Namespace, k.Class, k.Name
	v.Constant = false
	return c.scope.Declare(v)
}

func (c *Container) ret(st parser.Statement) error {
	var v *object.Value
	if args := st.Args(); len(args) > 0 {
		vals, err := c.materialize(args)
		if err != nil {
			return err
		}
		if len(vals) > 1 {
			return fmt.Errorf("ret expects at most one value, got %d", len(vals))
		}
		if len(vals) == 1 {
			v = vals[0]
		}
	}
	c.last, c.returned = v, true
	return nil
}

func (c *Container) throw(st parser.Statement) error {
	msg := "Exception thrown"
	if args := st.Args(); len(args) > 0 {
		vals, err := c.materialize(args)
		if err != nil {
			return err
		}
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = v.String()
		}
		if s := strings.Join(parts, " "); s != "" {
			msg = s
		}
	}
	return &object.Error{Message: msg}
}

// condition evaluates the expression of an if line on a clone: calls run
// as a nested Exec, anything else is materialized. Null is false.
func (c *Container) condition(st parser.Statement, file string, num int) (bool, error) {
	expr, err := parser.ParseIf(st)
	if err != nil {
		return false, err
	}
	clone := c.Clone()
	var v *object.Value
	if len(expr[0]) > 0 && expr[0][0] == token.CallSigil {
		ok := clone.run([]string{strings.Join(expr, token.Separator)}, file, num-1, 0, true)
		c.output.WriteString(clone.Output())
		if !ok {
			return false, clone.lastErr
		}
		v = clone.last
	} else {
		vals, err := clone.materialize(expr)
		if err != nil {
			return false, err
		}
		if len(vals) != 1 {
			return false, fmt.Errorf("if condition must be one value, got %d", len(vals))
		}
		v = vals[0]
	}
	if v == nil || v.IsNull() {
		return false, nil
	}
	if v.Type != object.BOOL {
		return false, fmt.Errorf("%w: if condition must be bool, got %s", object.ErrType, v.Type)
	}
	return v.Bool()
}
