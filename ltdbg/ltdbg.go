// Ltdbg is the interactive lifetime debugger. It reads debugger commands
// from the terminal, or line by line from stdin when stdin is not a
// terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fortio.org/cli"
	"fortio.org/log"
	"fortio.org/struct2env"
	"fortio.org/terminal"
	"lifetime.dev/lifetime/extensions"
	"lifetime.dev/lifetime/repl"
)

func main() {
	os.Exit(Main())
}

type Config struct {
	HistoryFile string
}

var config = Config{}

func EnvHelp(w io.Writer) {
	res, _ := struct2env.StructToEnvVars(config)
	str := struct2env.ToShellWithPrefix("LTDBG_", res, true)
	fmt.Fprintln(w, "# Ltdbg environment variables:")
	fmt.Fprint(w, str)
}

func Main() int {
	const historyDefault = "~/.ltdbg_history" // replaced by the actual home dir if not changed.
	cli.EnvHelpFuncs = append(cli.EnvHelpFuncs, EnvHelp)
	if errs := struct2env.SetFromEnv("LTDBG_", &config); len(errs) > 0 {
		log.Errf("Error setting config from env: %v", errs)
	}
	defaultHistoryFile := historyDefault
	if config.HistoryFile != "" {
		defaultHistoryFile = config.HistoryFile
	}
	historyFile := flag.String("history", defaultHistoryFile, "history `file` to use")
	maxHistory := flag.Int("max-history", terminal.DefaultHistoryCapacity, "max history `size`, use 0 to disable.")
	breakpoints := flag.String("breakpoints", "", "yaml `file` of breakpoints to preload")
	ignoreErrors := flag.Bool("ignore-errors", false, "report non fatal errors of the debugged program and keep going")
	trace := flag.Bool("trace", false, "start with line tracing on")
	cli.ArgsHelp = "[file.lt]"
	cli.MaxArgs = 1
	cli.Main()
	histFile := *historyFile
	if histFile == historyDefault {
		homeDir, err := os.UserHomeDir()
		histFile = filepath.Join(homeDir, ".ltdbg_history")
		if err != nil {
			log.Warnf("Couldn't get user home dir: %v", err)
			histFile = ""
		}
	}
	if err := extensions.Init(nil); err != nil {
		return log.FErrf("Error initializing extensions: %v", err)
	}
	interactive := repl.IsTerminal()
	opts := repl.Options{
		IgnoreErrors: *ignoreErrors,
		Trace:        *trace,
		HistoryFile:  histFile,
		MaxHistory:   *maxHistory,
	}
	if interactive {
		opts.Width = repl.TerminalWidth()
	}
	s := repl.NewSession(opts, os.Stdout, os.Stderr)
	if *breakpoints != "" {
		list, err := repl.LoadBreakpoints(*breakpoints)
		if err != nil {
			return log.FErrf("Error loading breakpoints: %v", err)
		}
		s.AddBreakpoints(list)
		log.Infof("Loaded %d breakpoints from %s", len(list), *breakpoints)
	}
	if flag.NArg() == 1 {
		if err := s.Open(flag.Arg(0)); err != nil {
			return log.FErrf("%v", err)
		}
	}
	if interactive {
		log.Infof("ltdbg %s - type ? for help", cli.ShortVersion)
		return s.Interactive(context.Background())
	}
	return s.Script(os.Stdin)
}
