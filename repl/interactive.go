package repl

import (
	"context"
	"errors"
	"io"
	"os"

	"fortio.org/log"
	"fortio.org/terminal"
	"golang.org/x/term"
)

// IsTerminal is true when both stdin and stdout are terminals, i.e. when
// the line editor can be used.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// TerminalWidth is the width of stdout, 0 when it is not a terminal.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// Interactive runs the session with line editing, history and command
// completion. The debugged program prompts through the same terminal.
func (s *Session) Interactive(ctx context.Context) int {
	t, err := terminal.Open(ctx)
	if err != nil {
		return log.FErrf("Error creating terminal: %v", err)
	}
	defer t.Close()
	t.SetPrompt(PROMPT)
	t.SetAutoCompleteCallback(NewCompletion().AutoComplete())
	t.NewHistory(s.opts.MaxHistory)
	if s.opts.HistoryFile != "" && s.opts.MaxHistory > 0 {
		if err := t.SetHistoryFile(s.opts.HistoryFile); err != nil {
			log.Warnf("Unable to use history file %s: %v", s.opts.HistoryFile, err)
		}
	}
	s.hooks.Out, s.hooks.Err = t.Out, t.Out
	s.styles = newStyles(os.Stdout)
	s.SetInput(func(prompt string) (string, error) {
		t.SetPrompt(prompt)
		defer t.SetPrompt(PROMPT)
		return t.ReadLine()
	})
	if s.file != "" {
		s.printf("%s\n", s.styles.muted.Render("Loaded "+s.file+", type ? for help"))
	}
	for !s.quit {
		l, err := t.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Infof("Exiting: %v", err)
			}
			break
		}
		s.Execute(l)
	}
	s.Close()
	return 0
}
