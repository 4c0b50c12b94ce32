// Package lexer turns lifetime source text into the minified line list the
// engine walks: trimmed, comment free, no blank lines.
package lexer

import (
	"strings"

	"fortio.org/log"
	"lifetime.dev/lifetime/token"
)

// Lines splits source text into raw lines, accepting both \n and \r\n.
func Lines(src string) []string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.TrimSuffix(src, "\n")
	if src == "" {
		return nil
	}
	return strings.Split(src, "\n")
}

// Minify strips block comments (from a line starting with #> to a line
// starting with <#, both included), inline # comments and blank lines, and
// trims what is left. Order of the remaining lines is preserved.
func Minify(lines []string) []string {
	res := make([]string, 0, len(lines))
	inBlock := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if inBlock {
			if strings.HasPrefix(l, token.BlockClose) {
				inBlock = false
			}
			continue
		}
		if strings.HasPrefix(l, token.BlockOpen) {
			inBlock = true
			continue
		}
		if i := strings.IndexByte(l, token.Comment); i >= 0 {
			l = strings.TrimRightFunc(l[:i], isSpace)
		}
		if l != "" {
			res = append(res, l)
		}
	}
	log.Debugf("Minify: %d lines -> %d", len(lines), len(res))
	return res
}

// MinifyString is Lines followed by Minify.
func MinifyString(src string) []string {
	return Minify(Lines(src))
}

// Fields splits a minified line on single spaces. Empty fields are kept so
// string literals spanning several fields keep their inner spacing.
func Fields(line string) []string {
	return strings.Split(line, token.Separator)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\v' || r == '\f' || r == '\r' || r == '\n' || r == 0x85 || r == 0xA0
}
