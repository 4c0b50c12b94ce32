package repl

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")
)

// styles render for one writer: colors are dropped when it isn't a terminal.
type styles struct {
	ok, err, stop, muted, current lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		ok:      r.NewStyle().Foreground(successColor),
		err:     r.NewStyle().Foreground(errorColor),
		stop:    r.NewStyle().Foreground(highlightColor).Bold(true),
		muted:   r.NewStyle().Foreground(mutedColor),
		current: r.NewStyle().Bold(true),
	}
}
