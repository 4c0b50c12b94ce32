// Package repl is the lifetime debugger: a command interpreter driving a
// Container through breakpoints.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/log"
	"lifetime.dev/lifetime/eval"
	"lifetime.dev/lifetime/lexer"
)

const PROMPT = "ltdbg> "

var (
	errNoFile  = errors.New("no file open, use `open <file>`")
	errUsage   = errors.New("usage")
	errUnknown = errors.New("unknown command")
)

type Options struct {
	IgnoreErrors bool
	Trace        bool
	// Width of the list output, 0 means no truncation.
	Width int
	// Terminal session only.
	HistoryFile string
	MaxHistory  int
}

// Session is one debugging session: the open file, the user breakpoints and
// the container of the current (possibly suspended) run.
type Session struct {
	opts   Options
	cfg    *eval.Config
	hooks  *eval.Hooks
	styles styles

	file  string
	lines []string
	c     *eval.Container
	// User breakpoints, armed into every new run. The engine consumes the
	// ones it hits.
	breaks *eval.Breakpoints

	quit bool
}

// NewSession returns a session printing to out and errOut. Program input
// comes from os.Stdin until SetInput is called.
func NewSession(opts Options, out, errOut io.Writer) *Session {
	s := &Session{
		opts:   opts,
		cfg:    &eval.Config{Verbose: opts.Trace, IgnoreErrors: opts.IgnoreErrors},
		hooks:  &eval.Hooks{Out: out, Err: errOut},
		breaks: eval.NewBreakpoints(),
	}
	s.hooks.In = eval.StdinReader(s.hooks, os.Stdin)
	s.styles = newStyles(out)
	return s
}

// SetInput changes where the debugged program reads its input from.
func (s *Session) SetInput(in func(prompt string) (string, error)) {
	s.hooks.In = in
}

func (s *Session) File() string {
	return s.file
}

func (s *Session) Container() *eval.Container {
	return s.c
}

func (s *Session) Breakpoints() []eval.Breakpoint {
	return s.breaks.List()
}

func (s *Session) Quit() bool {
	return s.quit
}

// Close releases the handles of the current run.
func (s *Session) Close() {
	if s.c != nil {
		s.c.Close()
	}
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.hooks.Out, format, args...)
}

func (s *Session) errorf(format string, args ...any) {
	fmt.Fprintln(s.hooks.Err, s.styles.err.Render(fmt.Sprintf(format, args...)))
}

// Open loads and minifies file. The previous run, if any, is discarded.
func (s *Session) Open(file string) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	s.Close()
	s.file, s.lines, s.c = file, lexer.MinifyString(string(b)), nil
	log.LogVf("Opened %s: %d lines", file, len(s.lines))
	return nil
}

// AddBreakpoints adds user breakpoints, for instance from a breakpoint file.
func (s *Session) AddBreakpoints(list []eval.Breakpoint) {
	for _, b := range list {
		s.breaks.Add(eval.Breakpoint{File: b.File, Line: b.Line})
	}
}

// sameFile matches breakpoint files written relative to another directory.
func sameFile(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b) || filepath.Base(a) == filepath.Base(b)
}

// fresh creates the container of a new run and arms the user breakpoints of
// the open file.
func (s *Session) fresh() {
	s.Close()
	s.c = eval.NewContainer(s.cfg)
	s.c.Hooks = s.hooks
	for _, b := range s.breaks.List() {
		if sameFile(b.File, s.file) {
			s.c.Breakpoints().Add(eval.Breakpoint{File: s.file, Line: b.Line})
		}
	}
}

// resumable is true when the next run continues the current one.
func (s *Session) resumable() bool {
	return s.c != nil && s.c.Suspended()
}

// Run starts the program, or continues it when stopped at a breakpoint.
func (s *Session) Run() error {
	if s.lines == nil {
		return errNoFile
	}
	if !s.resumable() {
		s.fresh()
	}
	s.c.Exec(s.lines, s.file, false, true)
	s.report()
	return nil
}

// Step runs until the next top level line: calls are stepped over.
func (s *Session) Step() error {
	if s.lines == nil {
		return errNoFile
	}
	current := 0
	if s.resumable() {
		_, current = s.c.ResumeLine()
	} else {
		s.fresh()
	}
	bps := s.c.Breakpoints()
	var temp []int
	for n := current + 1; n <= len(s.lines); n++ {
		if bps.Add(eval.Breakpoint{File: s.file, Line: n}) {
			temp = append(temp, n)
		}
	}
	s.c.Exec(s.lines, s.file, false, true)
	for _, n := range temp {
		bps.Remove(s.file, n)
	}
	s.report()
	return nil
}

func (s *Session) report() {
	switch st := s.c.State(); st {
	case eval.BreakpointHit:
		file, n := s.c.ResumeLine()
		s.printf("%s\n", s.styles.stop.Render(fmt.Sprintf("Stopped at %s:%d: %s", file, n, s.lines[n-1])))
	case eval.ExitSuccess:
		s.printf("%s\n", s.styles.ok.Render("Program finished"))
	case eval.ExitFail:
		s.printf("%s\n", s.styles.err.Render("Program failed"))
	default:
		log.Warnf("Unexpected state after run: %s", st)
	}
}

// Break sets a user breakpoint on a line of the open file, also in the
// current run when it is suspended.
func (s *Session) Break(line int) error {
	if err := s.checkLine(line); err != nil {
		return err
	}
	if !s.breaks.Add(eval.Breakpoint{File: s.file, Line: line}) {
		return fmt.Errorf("breakpoint already set at %s:%d", s.file, line)
	}
	// The line we are stopped before would trigger again right away.
	if !s.resumable() {
		return nil
	}
	if _, cur := s.c.ResumeLine(); cur != line {
		s.c.Breakpoints().Add(eval.Breakpoint{File: s.file, Line: line})
	}
	return nil
}

func (s *Session) Delete(line int) error {
	if err := s.checkLine(line); err != nil {
		return err
	}
	if !s.breaks.Remove(s.file, line) {
		return fmt.Errorf("no breakpoint at %s:%d", s.file, line)
	}
	if s.c != nil {
		s.c.Breakpoints().Remove(s.file, line)
	}
	return nil
}

func (s *Session) checkLine(line int) error {
	if s.lines == nil {
		return errNoFile
	}
	if line < 1 || line > len(s.lines) {
		return fmt.Errorf("line %d out of range (1-%d)", line, len(s.lines))
	}
	return nil
}

// Execute runs one debugger command line. Errors are printed, not returned.
func (s *Session) Execute(line string) {
	words, err := SplitCommand(line)
	if err != nil {
		s.errorf("Error: %v", err)
		return
	}
	if len(words) == 0 {
		return
	}
	cmd, ok := lookupCommand(words[0])
	if !ok {
		s.errorf("Error: %v %q, type ? for help", errUnknown, words[0])
		return
	}
	args := words[1:]
	want := 0
	if cmd.args != "" {
		want = 1
	}
	if len(args) > want || (len(args) < want && !cmd.optional) {
		s.errorf("Error: %v: %s %s", errUsage, cmd.long, cmd.args)
		return
	}
	if err := cmd.run(s, args); err != nil {
		s.errorf("Error: %v", err)
	}
}

// Script reads commands from in, one per line, until quit or end of input.
// The debugged program reads its input from the same stream.
func (s *Session) Script(in io.Reader) int {
	br := bufio.NewReader(in)
	s.SetInput(eval.StdinReader(s.hooks, br))
	for !s.quit {
		l, err := br.ReadString('\n')
		if l != "" {
			s.Execute(strings.TrimRight(l, "\r\n"))
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return log.FErrf("Error reading commands: %v", err)
			}
			break
		}
	}
	s.Close()
	return 0
}
