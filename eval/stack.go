package eval

import (
	"lifetime.dev/lifetime/parser"
)

// State of the engine. The bottom frame of a container's stack holds the run
// state (Idle, Executing or one of the terminal ones), the frames above it
// are the constructs currently open.
type State uint8

const (
	Idle State = iota
	Executing
	ParsingFunc
	ParsingIf
	InTry
	InClass
	ExitSuccess
	ExitFail
	BreakpointHit
)

var stateNames = [...]string{
	Idle:          "Idle",
	Executing:     "Executing",
	ParsingFunc:   "ParsingFunc",
	ParsingIf:     "ParsingIf",
	InTry:         "InTry",
	InClass:       "InClass",
	ExitSuccess:   "ExitSuccess",
	ExitFail:      "ExitFail",
	BreakpointHit: "BreakpointHit",
}

func (s State) String() string {
	if int(s) >= len(stateNames) {
		return "State(?)"
	}
	return stateNames[s]
}

// Terminal states end line dispatch of the current Exec.
func (s State) Terminal() bool {
	return s == ExitSuccess || s == ExitFail || s == BreakpointHit
}

// pendingFunc is a function being defined: the fn line and the body lines
// accumulated so far.
type pendingFunc struct {
	header    parser.Statement
	namespace string
	class     string
	file      string
	line      int
	body      []string
}

type frame struct {
	state State
	fn    *pendingFunc // ParsingFunc.
	cond  bool         // ParsingIf.
	class string       // InClass.
	// Number of nested block openers seen while accumulating a function body
	// or skipping lines.
	depth int
	// InTry: skipping until catch/end, and whether the catch section was
	// reached.
	skip     bool
	catching bool
	line     int // where the construct was opened.
}

func (c *Container) top() *frame {
	return &c.frames[len(c.frames)-1]
}

func (c *Container) push(f frame) {
	c.frames = append(c.frames, f)
}

func (c *Container) pop() frame {
	f := c.frames[len(c.frames)-1]
	c.frames = c.frames[:len(c.frames)-1]
	return f
}

// setState changes the run state held in the bottom frame.
func (c *Container) setState(s State) {
	c.frames[0].state = s
}

func (c *Container) resetStack(s State) {
	c.frames = append(c.frames[:0], frame{state: s})
}

// skipping reports whether lines must be skipped for the top frame: false
// if branch or try block after an error (or after a catch section that
// doesn't apply).
func (f *frame) skipping() bool {
	return (f.state == ParsingIf && !f.cond) || (f.state == InTry && f.skip)
}

func (c *Container) inTry() bool {
	for _, f := range c.frames[1:] {
		if f.state == InTry {
			return true
		}
	}
	return false
}

// Class is the innermost class binding, or "".
func (c *Container) Class() string {
	for i := len(c.frames) - 1; i > 0; i-- {
		if c.frames[i].state == InClass {
			return c.frames[i].class
		}
	}
	return ""
}

// State is the run state: Idle, Executing, ExitSuccess, ExitFail or
// BreakpointHit.
func (c *Container) State() State {
	return c.frames[0].state
}

// Stack returns the states of the open constructs, innermost last.
func (c *Container) Stack() []State {
	res := make([]State, 0, len(c.frames)-1)
	for _, f := range c.frames[1:] {
		res = append(res, f.state)
	}
	return res
}
