package eval

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"fortio.org/log"
	"lifetime.dev/lifetime/object"
)

// Exported part of the eval package.

// Config is shared by reference by a container and all its clones, so
// toggling a flag anywhere affects the whole run.
type Config struct {
	Verbose      bool // trace every executed line.
	IgnoreErrors bool // log errors and continue, except for fatal ones.
}

// Hooks are the I/O callbacks of a container, shared with its clones.
type Hooks struct {
	// In prints the prompt and returns one line of input, without the newline.
	In  func(prompt string) (string, error)
	Out io.Writer
	Err io.Writer
}

// DefaultHooks uses the process standard streams.
func DefaultHooks() *Hooks {
	h := &Hooks{Out: os.Stdout, Err: os.Stderr}
	h.In = StdinReader(h, os.Stdin)
	return h
}

// StdinReader returns an In hook printing the prompt on h.Out and reading
// lines from r.
func StdinReader(h *Hooks, r io.Reader) func(string) (string, error) {
	br := bufio.NewReader(r)
	return func(prompt string) (string, error) {
		fmt.Fprint(h.Out, prompt)
		l, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || l == "") {
			return "", err
		}
		return strings.TrimRight(l, "\r\n"), nil
	}
}

// Container is the runtime state of a lifetime program: variables, function
// tables, handles, breakpoints, state stack and I/O hooks.
type Container struct {
	scope    *object.Scope
	builtins map[object.Key]*object.Function
	defined  map[object.Key]*object.Function

	namespace    string
	namespaceSet bool
	bound        []string

	frames   []frame
	last     *object.Value
	returned bool

	tryActive bool
	caught    *object.Error
	// Set on clones called from within a try block of an enclosing
	// container: outerTry makes a try here a nested one, outerCatch sends
	// errors up to be caught instead of ignoring them.
	outerTry, outerCatch bool
	lastErr   *object.Error

	handles     *Handles
	breakpoints *Breakpoints
	resume      int
	resumeFile  string

	Hooks  *Hooks
	output strings.Builder
	cfg    *Config
}

// NewContainer returns a container seeded with the registered builtins. A
// nil cfg means default values.
func NewContainer(cfg *Config) *Container {
	if cfg == nil {
		cfg = &Config{}
	}
	c := &Container{
		scope:       object.NewScope(),
		builtins:    object.Builtins(),
		defined:     make(map[object.Key]*object.Function),
		handles:     NewHandles(),
		breakpoints: NewBreakpoints(),
		Hooks:       DefaultHooks(),
		cfg:         cfg,
	}
	c.resetStack(Idle)
	return c
}

// Clone returns a container for an isolated call: a new scope frame over
// this one, copies of the function tables and of the bound namespaces and a
// fresh state stack. Hooks, handles, breakpoints and config are shared.
// An open try block of c (or of its own callers) stays in effect for the
// clone.
func (c *Container) Clone() *Container {
	clone := &Container{
		scope:        object.NewEnclosedScope(c.scope),
		builtins:     maps.Clone(c.builtins),
		defined:      maps.Clone(c.defined),
		namespace:    c.namespace,
		namespaceSet: c.namespaceSet,
		bound:        slices.Clone(c.bound),
		caught:       c.caught,
		outerTry:     c.outerTry || c.inTry(),
		outerCatch:   c.outerCatch || (c.tryActive && c.caught == nil),
		handles:      c.handles,
		breakpoints:  c.breakpoints,
		Hooks:        c.Hooks,
		cfg:          c.cfg,
	}
	clone.resetStack(Idle)
	if class := c.Class(); class != "" {
		clone.push(frame{state: InClass, class: class})
	}
	return clone
}

func (c *Container) Config() *Config {
	return c.cfg
}

// Close tears the container down, closing all the open handles.
func (c *Container) Close() {
	c.handles.CloseAll()
}

func (c *Container) Suspended() bool {
	return c.State() == BreakpointHit
}

// ResumeLine is the line number execution stopped before, when suspended.
func (c *Container) ResumeLine() (string, int) {
	if !c.Suspended() {
		return "", 0
	}
	return c.resumeFile, c.resume + 1
}

// Output is everything printed so far through Print.
func (c *Container) Output() string {
	return c.output.String()
}

// Last is the last returned value (nil when none).
func (c *Container) Last() *object.Value {
	return c.last
}

// LastError is the error that made the last Exec fail.
func (c *Container) LastError() *object.Error {
	return c.lastErr
}

// Caught is the error caught by the current try block, if any.
func (c *Container) Caught() *object.Error {
	return c.caught
}

func (c *Container) Namespace() string {
	return c.namespace
}

// Bound returns the namespaces searched for `class::name` identifiers.
func (c *Container) Bound() []string {
	return slices.Clone(c.bound)
}

// Bind adds ns to the search list, returns false if it already was.
func (c *Container) Bind(ns string) bool {
	if slices.Contains(c.bound, ns) {
		return false
	}
	c.bound = append(c.bound, ns)
	return true
}

func (c *Container) Unbind(ns string) bool {
	i := slices.Index(c.bound, ns)
	if i < 0 {
		return false
	}
	c.bound = slices.Delete(c.bound, i, i+1)
	return true
}

func (c *Container) Handles() *Handles {
	return c.handles
}

func (c *Container) Breakpoints() *Breakpoints {
	return c.breakpoints
}

// Vars returns the visible variables, in declaration order.
func (c *Container) Vars() []*object.Value {
	return c.scope.Values()
}

// Var looks up a variable by its composite key.
func (c *Container) Var(k object.Key) (*object.Value, bool) {
	return c.scope.Get(k)
}

// Functions returns both tables' entries sorted by key, user defined
// entries shadowing builtins with the same key.
func (c *Container) Functions() []*object.Function {
	all := maps.Clone(c.builtins)
	maps.Copy(all, c.defined)
	res := slices.Collect(maps.Values(all))
	slices.SortFunc(res, func(a, b *object.Function) int {
		return cmp.Compare(a.Key().String(), b.Key().String())
	})
	return res
}

// AddBuiltin registers a builtin in this container only.
func (c *Container) AddBuiltin(f object.Function) error {
	f.Kind = object.Builtin
	if f.Callback == nil {
		return fmt.Errorf("%s: builtins need a callback", f.Key())
	}
	k := f.Key()
	if _, ok := c.builtins[k]; ok {
		return fmt.Errorf("%s: %w", k, object.ErrDuplicate)
	}
	c.builtins[k] = &f
	return nil
}

// Print writes to the output hook and records s in Output.
func (c *Container) Print(s string) {
	c.output.WriteString(s)
	_, _ = io.WriteString(c.Hooks.Out, s)
}

// PrintErr writes to the error hook.
func (c *Container) PrintErr(s string) {
	_, _ = io.WriteString(c.Hooks.Err, s)
}

func (c *Container) Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.LogVf("Warning: %s", msg)
	c.PrintErr("Warning: " + msg + "\n")
}

// Input asks the input hook for one line.
func (c *Container) Input(prompt string) (string, error) {
	if c.Hooks.In == nil {
		return "", io.EOF
	}
	return c.Hooks.In(prompt)
}
