package repl

import (
	"fmt"
	"strings"

	"fortio.org/terminal"
	"lifetime.dev/lifetime/trie"
)

type AutoComplete struct {
	Trie *trie.Trie
}

// NewCompletion completes the debugger command names.
func NewCompletion() *AutoComplete {
	t := trie.NewTrie()
	for _, n := range CommandNames() {
		t.Insert(n)
	}
	return &AutoComplete{t}
}

func (a *AutoComplete) AutoComplete() terminal.AutoCompleteCallback {
	return func(t *terminal.Terminal, line string, pos int, key rune) (newLine string, newPos int, ok bool) {
		if key != '\t' {
			return // only tab for now
		}
		newLine, newPos, choices, ok := a.Complete(line, pos)
		if len(choices) > 1 {
			fmt.Fprintln(t.Out, "One of:", strings.Join(choices, " "))
		}
		return newLine, newPos, ok
	}
}

// Complete extends the command word before pos to the longest common prefix
// of the matching commands, which are returned as choices. Only the first
// word of the line is completed.
func (a *AutoComplete) Complete(line string, pos int) (newLine string, newPos int, choices []string, ok bool) {
	word := line[:pos]
	if strings.ContainsAny(word, " \t") {
		return
	}
	l, choices := a.Trie.PrefixAll(word)
	if len(choices) == 0 {
		return
	}
	if len(choices) == 1 {
		// Complete word: also add the separator for the arguments.
		return choices[0] + " " + line[pos:], len(choices[0]) + 1, choices, true
	}
	return choices[0][:l] + line[pos:], l, choices, true
}
