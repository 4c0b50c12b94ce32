package object

import (
	"fmt"

	"fortio.org/log"
)

// Scope is a chain of stores: each call gets its own frame on top of the
// caller's, writes only ever land in the top frame.
type Scope struct {
	vars  *Store
	outer *Scope
}

func NewScope() *Scope {
	return &Scope{vars: NewStore()}
}

// NewEnclosedScope pushes a new frame over outer.
func NewEnclosedScope(outer *Scope) *Scope {
	return &Scope{vars: NewStore(), outer: outer}
}

func (s *Scope) Outer() *Scope {
	return s.outer
}

// Local is the store of the top frame.
func (s *Scope) Local() *Store {
	return s.vars
}

// Len is the number of entries across all frames, shadowed ones included.
func (s *Scope) Len() int {
	if s.outer != nil {
		return s.vars.Len() + s.outer.Len()
	}
	return s.vars.Len()
}

func (s *Scope) Get(k Key) (*Value, bool) {
	v, ok := s.vars.Lookup(k)
	if ok || s.outer == nil {
		return v, ok
	}
	return s.outer.Get(k) // recurse.
}

// Declare adds v to the top frame, erroring if its key is already there.
// Entries of outer frames are shadowed.
func (s *Scope) Declare(v *Value) error {
	if s.vars.Contains(v.Namespace, v.Class, v.Name) {
		return fmt.Errorf("variable %s: %w", v.Key(), ErrDuplicate)
	}
	return s.vars.Add(v)
}

// Bind sets v in the top frame, shadowing outer entries with the same key.
func (s *Scope) Bind(v *Value) {
	k := v.Key()
	if i := s.vars.IndexOf(k); i >= 0 {
		_ = s.vars.Set(i, v) // same key, can't collide.
		return
	}
	_ = s.vars.Add(v) // checked absent above.
	log.Debugf("Bind %s in frame of %d", k, s.vars.Len())
}

// Remove only affects the top frame.
func (s *Scope) Remove(k Key) bool {
	return s.vars.Remove(k)
}

// Values returns the visible values, outermost first, each key once.
func (s *Scope) Values() []*Value {
	var outer []*Value
	if s.outer != nil {
		outer = s.outer.Values()
	}
	res := make([]*Value, 0, len(outer)+s.vars.Len())
	for _, v := range outer {
		if !s.vars.Contains(v.Namespace, v.Class, v.Name) {
			res = append(res, v)
		}
	}
	return append(res, s.vars.Values()...)
}
