package repl

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/log"
	"fortio.org/sets"
	"github.com/rivo/uniseg"
	"lifetime.dev/lifetime/eval"
	"lifetime.dev/lifetime/token"
)

type command struct {
	short, long string
	args        string
	optional    bool // args may be omitted.
	help        string
	run         func(s *Session, args []string) error
}

var commands []command

func init() {
	// in init() to break the help <-> commands initialization loop.
	commands = []command{
		{"?", "help", "", false, "show this help", help},
		{"q", "quit", "", false, "exit the debugger", func(s *Session, _ []string) error {
			s.quit = true
			return nil
		}},
		{"o", "open", "<file>", false, "load a file, discarding the current run", func(s *Session, args []string) error {
			return s.Open(args[0])
		}},
		{"r", "run", "", false, "run the program, or continue it when stopped", func(s *Session, _ []string) error {
			return s.Run()
		}},
		{"s", "step", "", false, "run until the next line, stepping over calls", func(s *Session, _ []string) error {
			return s.Step()
		}},
		{"b", "break", "<line>", false, "set a breakpoint", lineCommand((*Session).Break)},
		{"d", "delete", "<line>", false, "delete a breakpoint", lineCommand((*Session).Delete)},
		{"bl", "breakpoints", "", false, "list the breakpoints", listBreakpoints},
		{"w", "write", "<file.yaml>", false, "save the breakpoints", func(s *Session, args []string) error {
			return SaveBreakpoints(args[0], s.breaks.List())
		}},
		{"l", "list", "", false, "show the program with the current line and breakpoints", list},
		{"v", "vars", "", false, "show the variables and open blocks", vars},
		{"f", "functions", "[prefix]", true, "show the functions, optionally filtered by prefix", functions},
		{"t", "trace", "", false, "toggle line tracing", func(s *Session, _ []string) error {
			s.cfg.Verbose = !s.cfg.Verbose
			s.printf("trace %s\n", onOff(s.cfg.Verbose))
			return nil
		}},
	}
	names := sets.New[string]()
	for _, c := range commands {
		if names.Has(c.short) || names.Has(c.long) {
			log.Fatalf("duplicate debugger command %s/%s", c.short, c.long)
		}
		names.Add(c.short, c.long)
	}
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if name == c.short || name == c.long {
			return c, true
		}
	}
	return command{}, false
}

// CommandNames returns every short and long command name.
func CommandNames() []string {
	res := make([]string, 0, 2*len(commands))
	for _, c := range commands {
		res = append(res, c.short, c.long)
	}
	return res
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func lineCommand(f func(*Session, int) error) func(*Session, []string) error {
	return func(s *Session, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid line number %q", args[0])
		}
		return f(s, n)
	}
}

func help(s *Session, _ []string) error {
	for _, c := range commands {
		usage := c.short + " " + c.long
		if c.args != "" {
			usage += " " + c.args
		}
		s.printf("%-28s %s\n", usage, s.styles.muted.Render(c.help))
	}
	info := token.Info()
	s.printf("%s\n", s.styles.muted.Render("keywords: "+strings.Join(sets.Sort(info.Keywords), " ")))
	s.printf("%s\n", s.styles.muted.Render("sigils: "+strings.Join(sets.Sort(info.Sigils), " ")))
	return nil
}

func listBreakpoints(s *Session, _ []string) error {
	list := s.breaks.List()
	if len(list) == 0 {
		s.printf("no breakpoints\n")
		return nil
	}
	for _, b := range list {
		s.printf("%s:%d\n", b.File, b.Line)
	}
	return nil
}

// list prints the minified program: `=>` marks the line execution is
// stopped before and `*` the breakpoints.
func list(s *Session, _ []string) error {
	if s.lines == nil {
		return errNoFile
	}
	current := 0
	if s.resumable() {
		_, current = s.c.ResumeLine()
	}
	width := len(strconv.Itoa(len(s.lines)))
	for i, l := range s.lines {
		n := i + 1
		marker := "  "
		if n == current {
			marker = "=>"
		}
		bp := " "
		if s.breaks.Has(s.file, n) {
			bp = "*"
		}
		line := fmt.Sprintf("%s%s %*d  %s", marker, bp, width, n, l)
		line = truncate(line, s.opts.Width)
		if n == current {
			line = s.styles.current.Render(line)
		}
		s.printf("%s\n", line)
	}
	return nil
}

// truncate cuts str to at most width display cells, keeping grapheme
// clusters whole. A width of 0 or less means no limit.
func truncate(str string, width int) string {
	if width <= 0 || uniseg.StringWidth(str) <= width {
		return str
	}
	var sb strings.Builder
	w := 0
	state := -1
	rest := str
	var cluster string
	var cw int
	for rest != "" {
		cluster, rest, cw, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if w+cw > width-1 {
			break
		}
		sb.WriteString(cluster)
		w += cw
	}
	sb.WriteString("…")
	return sb.String()
}

func vars(s *Session, _ []string) error {
	if s.c == nil {
		return fmt.Errorf("not running")
	}
	for _, v := range s.c.Vars() {
		s.printf("%s\n", v.Inspect())
	}
	if stack := s.c.Stack(); len(stack) > 0 {
		names := make([]string, 0, len(stack))
		for _, st := range stack {
			names = append(names, st.String())
		}
		s.printf("%s\n", s.styles.muted.Render("open blocks: "+strings.Join(names, " > ")))
	}
	if e := s.c.Caught(); e != nil {
		s.printf("%s\n", s.styles.muted.Render("caught: "+e.Error()))
	}
	s.printf("%s\n", s.styles.muted.Render("state: "+s.c.State().String()))
	return nil
}

func functions(s *Session, args []string) error {
	c := s.c
	if c == nil {
		// Builtins are visible before the first run.
		c = eval.NewContainer(s.cfg)
	}
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}
	for _, f := range c.Functions() {
		if strings.HasPrefix(f.Key().String(), prefix) {
			s.printf("%s\n", f.Signature())
		}
	}
	return nil
}
