package repl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"lifetime.dev/lifetime/eval"
)

var errBadBreakpoint = errors.New("invalid breakpoint")

// BreakpointFile is the on disk (yaml) form of a set of breakpoints:
//
//	breakpoints:
//	  - file: prog.lt
//	    line: 3
type BreakpointFile struct {
	Breakpoints []BreakpointEntry `yaml:"breakpoints"`
}

type BreakpointEntry struct {
	File string `yaml:"file"`
	Line int    `yaml:"line"`
}

// DecodeBreakpoints reads a breakpoint file, rejecting unknown keys, empty
// file names and line numbers below 1.
func DecodeBreakpoints(r io.Reader) ([]eval.Breakpoint, error) {
	var raw BreakpointFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("breakpoints: parse: %w", err)
	}
	res := make([]eval.Breakpoint, 0, len(raw.Breakpoints))
	for i, e := range raw.Breakpoints {
		file := strings.TrimSpace(e.File)
		if file == "" || e.Line < 1 {
			return nil, fmt.Errorf("breakpoints: entry %d (%q:%d): %w", i+1, e.File, e.Line, errBadBreakpoint)
		}
		res = append(res, eval.Breakpoint{File: file, Line: e.Line})
	}
	return res, nil
}

func LoadBreakpoints(path string) ([]eval.Breakpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	res, err := DecodeBreakpoints(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// EncodeBreakpoints is the inverse of DecodeBreakpoints.
func EncodeBreakpoints(w io.Writer, list []eval.Breakpoint) error {
	raw := BreakpointFile{Breakpoints: make([]BreakpointEntry, 0, len(list))}
	for _, b := range list {
		raw.Breakpoints = append(raw.Breakpoints, BreakpointEntry{File: b.File, Line: b.Line})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("breakpoints: marshal: %w", err)
	}
	return enc.Close()
}

func SaveBreakpoints(path string, list []eval.Breakpoint) error {
	var buf bytes.Buffer
	if err := EncodeBreakpoints(&buf, list); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("breakpoints: write %s: %w", path, err)
	}
	return nil
}
