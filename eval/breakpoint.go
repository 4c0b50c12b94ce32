package eval

import (
	"cmp"
	"slices"

	"fortio.org/log"
)

// Breakpoint stops a top level Exec before File:Line executes. It is removed
// on the first hit.
type Breakpoint struct {
	File    string
	Line    int
	OnBreak func(Breakpoint)
}

// Breakpoints is shared by reference between a container and its clones.
type Breakpoints struct {
	list []Breakpoint
}

func NewBreakpoints() *Breakpoints {
	return &Breakpoints{}
}

// Add returns false if there is already a breakpoint at that location.
func (b *Breakpoints) Add(bp Breakpoint) bool {
	if b.Has(bp.File, bp.Line) {
		return false
	}
	b.list = append(b.list, bp)
	return true
}

func (b *Breakpoints) Has(file string, line int) bool {
	return slices.ContainsFunc(b.list, func(bp Breakpoint) bool {
		return bp.File == file && bp.Line == line
	})
}

func (b *Breakpoints) Remove(file string, line int) bool {
	n := len(b.list)
	b.list = slices.DeleteFunc(b.list, func(bp Breakpoint) bool {
		return bp.File == file && bp.Line == line
	})
	return len(b.list) != n
}

func (b *Breakpoints) Clear() {
	b.list = nil
}

func (b *Breakpoints) Len() int {
	return len(b.list)
}

// List returns the breakpoints sorted by file then line.
func (b *Breakpoints) List() []Breakpoint {
	res := slices.Clone(b.list)
	slices.SortFunc(res, func(x, y Breakpoint) int {
		if c := cmp.Compare(x.File, y.File); c != 0 {
			return c
		}
		return cmp.Compare(x.Line, y.Line)
	})
	return res
}

// hit removes the breakpoints matching file:line, calls their callbacks and
// reports whether there was any.
func (b *Breakpoints) hit(file string, line int) bool {
	var matched []Breakpoint
	b.list = slices.DeleteFunc(b.list, func(bp Breakpoint) bool {
		if bp.File == file && bp.Line == line {
			matched = append(matched, bp)
			return true
		}
		return false
	})
	for _, bp := range matched {
		log.LogVf("Breakpoint hit at %s:%d", file, line)
		if bp.OnBreak != nil {
			bp.OnBreak(bp)
		}
	}
	return len(matched) > 0
}
