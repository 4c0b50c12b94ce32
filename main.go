// Lifetime runs lifetime (.lt) scripts.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"fortio.org/cli"
	"fortio.org/log"
	"fortio.org/struct2env"
	"lifetime.dev/lifetime/eval"
	"lifetime.dev/lifetime/extensions"
	"lifetime.dev/lifetime/lexer"
)

func main() {
	os.Exit(Main())
}

// Config holds the defaults of the run flags, overridable through
// LIFETIME_ environment variables.
type Config struct {
	Trace        bool
	IgnoreErrors bool
	NoFileIO     bool
}

var config = Config{}

func EnvHelp(w io.Writer) {
	res, _ := struct2env.StructToEnvVars(config)
	str := struct2env.ToShellWithPrefix("LIFETIME_", res, true)
	fmt.Fprintln(w, "# Lifetime environment variables:")
	fmt.Fprint(w, str)
}

var hookBefore, hookAfter func() int

func Main() int {
	cli.EnvHelpFuncs = append(cli.EnvHelpFuncs, EnvHelp)
	errs := struct2env.SetFromEnv("LIFETIME_", &config)
	if len(errs) > 0 {
		log.Errf("Error setting config from env: %v", errs)
	}
	trace := flag.Bool("trace", config.Trace, "log every executed line")
	ignoreErrors := flag.Bool("ignore-errors", config.IgnoreErrors, "report non fatal errors and keep going")
	noFileIO := flag.Bool("no-file-io", config.NoFileIO, "don't register the sys->fl file functions")
	cli.CommandBeforeFlags = true
	cli.CommandHelp = "{run}"
	cli.ArgsHelp = "file.lt"
	cli.MinArgs = 1
	cli.MaxArgs = 1
	cli.Main()
	if cli.Command != "run" {
		return log.FErrf("Unknown command %q, use run, help or version", cli.Command)
	}
	if hookBefore != nil {
		if ret := hookBefore(); ret != 0 {
			return ret
		}
	}
	if err := extensions.Init(&extensions.Config{NoFileIO: *noFileIO}); err != nil {
		return log.FErrf("Error initializing extensions: %v", err)
	}
	file := flag.Arg(0)
	src, err := os.ReadFile(file)
	if err != nil {
		return log.FErrf("%v", err)
	}
	log.Infof("lifetime %s running %s", cli.ShortVersion, file)
	c := eval.NewContainer(&eval.Config{Verbose: *trace, IgnoreErrors: *ignoreErrors})
	ok := c.Exec(lexer.Lines(string(src)), file, false, false)
	log.LogVf("%s: %s, %d bytes of output", file, c.State(), len(c.Output()))
	if hookAfter != nil {
		if ret := hookAfter(); ret != 0 {
			return ret
		}
	}
	if !ok {
		return 1
	}
	return 0
}
