package repl_test

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"lifetime.dev/lifetime/extensions"
	"lifetime.dev/lifetime/repl"
)

func TestMain(m *testing.M) {
	if err := extensions.Init(nil); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const prog = `# debugged program
let str a "1"
!sys->io::print_line $a
!sys->io::print_line "2"
let str name !sys->io::read_line "name? "
!sys->io::print_line $name
`

func writeProg(t *testing.T) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "prog.lt")
	if err := os.WriteFile(name, []byte(prog), 0o600); err != nil {
		t.Fatal(err)
	}
	return name
}

func newSession(t *testing.T) (*repl.Session, *strings.Builder, *strings.Builder) {
	t.Helper()
	out, errs := &strings.Builder{}, &strings.Builder{}
	return repl.NewSession(repl.Options{}, out, errs), out, errs
}

// inOrder checks that all the parts are in s, in that order.
func inOrder(t *testing.T, s string, parts ...string) {
	t.Helper()
	rest := s
	for _, p := range parts {
		i := strings.Index(rest, p)
		if i < 0 {
			t.Errorf("missing %q (in order) in:\n%s", p, s)
			return
		}
		rest = rest[i+len(p):]
	}
}

func TestScriptSession(t *testing.T) {
	name := writeProg(t)
	s, out, errs := newSession(t)
	if err := s.Open(name); err != nil {
		t.Fatal(err)
	}
	cmds := "b 2\nr\nl\nv\ns\nvars\nrun\nAda\nq\nr\n"
	if code := s.Script(strings.NewReader(cmds)); code != 0 {
		t.Errorf("Script returned %d", code)
	}
	if errs.String() != "" {
		t.Errorf("unexpected errors: %q", errs.String())
	}
	inOrder(t, out.String(),
		"Stopped at "+name+":2: !sys->io::print_line $a\n",
		"    1  let str a \"1\"\n=>* 2  !sys->io::print_line $a\n    3  !sys->io::print_line \"2\"\n",
		"str a = \"1\"\n",
		"state: BreakpointHit\n",
		"1\nStopped at "+name+":3: !sys->io::print_line \"2\"\n",
		"2\nname? Ada\nProgram finished\n",
	)
	if strings.Count(out.String(), "Program finished") != 1 {
		t.Errorf("commands after quit should be ignored:\n%s", out.String())
	}
	if !s.Quit() {
		t.Errorf("session should be quit")
	}
}

func TestRunWithoutBreakpoints(t *testing.T) {
	name := writeProg(t)
	s, out, _ := newSession(t)
	if err := s.Open(name); err != nil {
		t.Fatal(err)
	}
	s.SetInput(func(prompt string) (string, error) { return "Bob", nil })
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "1\n2\nBob\nProgram finished\n" {
		t.Errorf("got %q", out.String())
	}
	// A finished run restarts from the top.
	out.Reset()
	if err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "Stopped at "+name+":1: let str a \"1\"\n" {
		t.Errorf("step from the top got %q", out.String())
	}
	if s.Container().Breakpoints().Len() != 0 {
		t.Errorf("step should not leave breakpoints behind: %v", s.Container().Breakpoints().List())
	}
}

func TestBreakpointsSurviveRuns(t *testing.T) {
	name := writeProg(t)
	s, out, _ := newSession(t)
	if err := s.Open(name); err != nil {
		t.Fatal(err)
	}
	s.SetInput(func(string) (string, error) { return "x", nil })
	if err := s.Break(3); err != nil {
		t.Fatal(err)
	}
	for range 2 {
		out.Reset()
		_ = s.Run() // stops at 3
		_ = s.Run() // finishes
		inOrder(t, out.String(), "Stopped at "+name+":3:", "Program finished")
	}
	if err := s.Delete(3); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := s.Delete(3); err == nil {
		t.Errorf("second Delete should fail")
	}
}

func TestBreakAtCurrentLine(t *testing.T) {
	name := writeProg(t)
	s, out, _ := newSession(t)
	if err := s.Open(name); err != nil {
		t.Fatal(err)
	}
	s.SetInput(func(string) (string, error) { return "x", nil })
	_ = s.Break(2)
	_ = s.Run()
	_ = s.Delete(2)
	_ = s.Break(2) // stopped before 2: must not trigger again.
	_ = s.Run()
	if strings.Count(out.String(), "Stopped at") != 1 || !strings.HasSuffix(out.String(), "Program finished\n") {
		t.Errorf("got %q", out.String())
	}
}

func TestProgramFailure(t *testing.T) {
	name := filepath.Join(t.TempDir(), "bad.lt")
	if err := os.WriteFile(name, []byte("!sys->io::print_line \"a\"\n!nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	s, out, errs := newSession(t)
	s.Execute("open " + name)
	s.Execute("run")
	if out.String() != "a\nProgram failed\n" || !strings.Contains(errs.String(), "Function not found: nope") {
		t.Errorf("got %q %q", out.String(), errs.String())
	}
}

func TestCommandErrors(t *testing.T) {
	name := writeProg(t)
	tests := []struct {
		cmd      string
		expected string
	}{
		{"r", "no file open"},
		{"b 1", "no file open"},
		{"l", "no file open"},
		{"v", "not running"},
		{"open /nonexistent/prog.lt", "no such file"},
		{"frobnicate", `unknown command "frobnicate"`},
		{"open", "usage: open <file>"},
		{"run now", "usage: run"},
		{`open "unterminated`, "unclosed quote"},
		{"open " + name + "\nb 0", "line 0 out of range (1-5)"},
		{"open " + name + "\nb six", `invalid line number "six"`},
		{"open " + name + "\nb 2\nb 2", "breakpoint already set"},
		{"open " + name + "\nd 2", "no breakpoint at"},
	}
	for _, tt := range tests {
		s, _, errs := newSession(t)
		for _, l := range strings.Split(tt.cmd, "\n") {
			s.Execute(l)
		}
		if !strings.Contains(errs.String(), tt.expected) {
			t.Errorf("%q got %q, want %q", tt.cmd, errs.String(), tt.expected)
		}
	}
}

func TestHelpAndTrace(t *testing.T) {
	s, out, _ := newSession(t)
	s.Execute("?")
	for _, n := range []string{"help", "quit", "open <file>", "run", "step", "break <line>", "delete <line>",
		"breakpoints", "write <file.yaml>", "list", "vars", "functions [prefix]", "trace"} {
		if !strings.Contains(out.String(), n) {
			t.Errorf("help is missing %q", n)
		}
	}
	if !strings.Contains(out.String(), "keywords: catch class end fn if let namespace ret then throw try\n") {
		t.Errorf("help is missing the keywords:\n%s", out.String())
	}
	out.Reset()
	s.Execute("t")
	s.Execute("trace")
	if out.String() != "trace on\ntrace off\n" {
		t.Errorf("trace toggles got %q", out.String())
	}
}

func TestFunctionsCommand(t *testing.T) {
	s, out, _ := newSession(t)
	s.Execute("f sys->fl::open_")
	expected := "!sys->fl::open_r(str filename) i32\n!sys->fl::open_rw(str filename) i32\n!sys->fl::open_w(str filename) i32\n"
	if out.String() != expected {
		t.Errorf("got %q, want %q", out.String(), expected)
	}
}

func TestBreakpointFiles(t *testing.T) {
	name := writeProg(t)
	dir := filepath.Dir(name)
	bpFile := filepath.Join(dir, "bp.yaml")
	yaml := "breakpoints:\n  - file: prog.lt\n    line: 3\n  - file: other.lt\n    line: 1\n"
	if err := os.WriteFile(bpFile, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	list, err := repl.LoadBreakpoints(bpFile)
	if err != nil {
		t.Fatal(err)
	}
	s, out, _ := newSession(t)
	if err := s.Open(name); err != nil {
		t.Fatal(err)
	}
	s.AddBreakpoints(list)
	_ = s.Run()
	if out.String() != "1\nStopped at "+name+":3: !sys->io::print_line \"2\"\n" {
		t.Errorf("breakpoint from file got %q", out.String())
	}
	s.Execute("b 5")
	saved := filepath.Join(dir, "saved.yaml")
	s.Execute("w " + saved)
	back, err := repl.LoadBreakpoints(saved)
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, 0, len(back))
	for _, b := range back {
		got = append(got, fmt.Sprintf("%s:%d", filepath.Base(b.File), b.Line))
	}
	slices.Sort(got)
	if !slices.Equal(got, []string{"other.lt:1", "prog.lt:3", "prog.lt:5"}) {
		t.Errorf("saved breakpoints got %v", got)
	}
}

func TestDecodeBreakpointErrors(t *testing.T) {
	tests := []string{
		"breakpoints:\n  - file: a.lt\n    line: 0\n",
		"breakpoints:\n  - line: 2\n",
		"breakpoints:\n  - file: a.lt\n    line: 2\n    cond: x\n",
		"breakpoint: []\n",
		"breakpoints: 3\n",
	}
	for _, y := range tests {
		if _, err := repl.DecodeBreakpoints(strings.NewReader(y)); err == nil {
			t.Errorf("%q should fail", y)
		}
	}
	list, err := repl.DecodeBreakpoints(strings.NewReader(""))
	if err != nil || len(list) != 0 {
		t.Errorf("empty file got %v %v", list, err)
	}
}

func TestCompletion(t *testing.T) {
	a := repl.NewCompletion()
	tests := []struct {
		line, newLine string
		pos, newPos   int
		choices       []string
		ok            bool
	}{
		{"bre", "break", 3, 5, []string{"break", "breakpoints"}, true},
		{"breakp", "breakpoints ", 6, 12, []string{"breakpoints"}, true},
		{"ru", "run ", 2, 4, []string{"run"}, true},
		{"op x.lt", "open  x.lt", 2, 5, []string{"open"}, true},
		{"zz", "", 2, 0, nil, false},
		{"b 1", "", 3, 0, nil, false},
	}
	for _, tt := range tests {
		newLine, newPos, choices, ok := a.Complete(tt.line, tt.pos)
		if newLine != tt.newLine || newPos != tt.newPos || ok != tt.ok || !slices.Equal(choices, tt.choices) {
			t.Errorf("Complete(%q, %d) got %q %d %v %v", tt.line, tt.pos, newLine, newPos, choices, ok)
		}
	}
}

func TestCommandNames(t *testing.T) {
	names := repl.CommandNames()
	if len(names) != 26 || !slices.Contains(names, "bl") || !slices.Contains(names, "breakpoints") {
		t.Errorf("CommandNames() got %v", names)
	}
}
