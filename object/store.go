package object

import (
	"errors"
	"fmt"
)

var ErrDuplicate = errors.New("already defined")

// Store is an ordered collection of values keyed by their composite identity.
// Iteration follows insertion order and the index map is kept compact on
// removal so positional lookups stay valid.
type Store struct {
	vars  []*Value
	index map[Key]int
}

func NewStore() *Store {
	return &Store{index: make(map[Key]int)}
}

func (s *Store) Len() int {
	return len(s.vars)
}

// Add appends v, erroring if its key is already present.
func (s *Store) Add(v *Value) error {
	k := v.Key()
	if _, ok := s.index[k]; ok {
		return fmt.Errorf("variable %s: %w", k, ErrDuplicate)
	}
	s.index[k] = len(s.vars)
	s.vars = append(s.vars, v)
	return nil
}

func (s *Store) Get(namespace, class, name string) (*Value, bool) {
	return s.Lookup(Key{Namespace: namespace, Class: class, Name: name})
}

func (s *Store) Lookup(k Key) (*Value, bool) {
	i, ok := s.index[k]
	if !ok {
		return nil, false
	}
	return s.vars[i], true
}

func (s *Store) Contains(namespace, class, name string) bool {
	_, ok := s.index[Key{Namespace: namespace, Class: class, Name: name}]
	return ok
}

// IndexOf returns the position of k or -1.
func (s *Store) IndexOf(k Key) int {
	if i, ok := s.index[k]; ok {
		return i
	}
	return -1
}

// At returns the value at position i (insertion order).
func (s *Store) At(i int) *Value {
	return s.vars[i]
}

// Set replaces the value at position i. The new value may carry a different
// key as long as it doesn't collide with another entry.
func (s *Store) Set(i int, v *Value) error {
	if i < 0 || i >= len(s.vars) {
		return fmt.Errorf("index %d out of range [0,%d)", i, len(s.vars))
	}
	old := s.vars[i].Key()
	k := v.Key()
	if k != old {
		if _, ok := s.index[k]; ok {
			return fmt.Errorf("variable %s: %w", k, ErrDuplicate)
		}
		delete(s.index, old)
		s.index[k] = i
	}
	s.vars[i] = v
	return nil
}

// Remove deletes the entry for k, returns false if there was none.
func (s *Store) Remove(k Key) bool {
	i, ok := s.index[k]
	if !ok {
		return false
	}
	s.RemoveAt(i)
	return true
}

// RemoveAt deletes the entry at position i and shifts the following ones.
func (s *Store) RemoveAt(i int) {
	delete(s.index, s.vars[i].Key())
	copy(s.vars[i:], s.vars[i+1:])
	s.vars[len(s.vars)-1] = nil
	s.vars = s.vars[:len(s.vars)-1]
	for j := i; j < len(s.vars); j++ {
		s.index[s.vars[j].Key()] = j
	}
}

// Values returns the entries in insertion order.
func (s *Store) Values() []*Value {
	res := make([]*Value, len(s.vars))
	copy(res, s.vars)
	return res
}

// Clone is a deep copy: mutating the clone's values doesn't affect s.
func (s *Store) Clone() *Store {
	c := &Store{vars: make([]*Value, len(s.vars)), index: make(map[Key]int, len(s.index))}
	for i, v := range s.vars {
		cv := v.Copy()
		cv.OnGet, cv.OnSet = v.OnGet, v.OnSet
		c.vars[i] = cv
		c.index[cv.Key()] = i
	}
	return c
}
