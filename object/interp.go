package object

import (
	"errors"
	"fmt"
	"maps"
)

var (
	builtins map[Key]*Function
	initDone bool
)

// Init resets the table of builtin functions to empty.
// Optional, will be called on demand the first time through CreateFunction.
func Init() {
	builtins = make(map[Key]*Function)
	initDone = true
}

// CreateFunction adds a builtin to the table every new container is seeded
// with.
func CreateFunction(f Function) error {
	if !initDone {
		Init()
	}
	if f.Name == "" {
		return errors.New("empty function name")
	}
	if f.Kind != Builtin || f.Callback == nil {
		return errors.New(f.Key().String() + ": builtins need a callback")
	}
	seen := make(map[string]bool, len(f.Params))
	for _, p := range f.Params {
		if p.Name == "" || seen[p.Name] {
			return fmt.Errorf("%s: invalid or duplicate parameter name %q", f.Key(), p.Name)
		}
		seen[p.Name] = true
	}
	k := f.Key()
	if _, ok := builtins[k]; ok {
		return fmt.Errorf("%s: %w", k, ErrDuplicate)
	}
	builtins[k] = &f
	return nil
}

// Builtins returns a copy of the builtin table to seed a container with.
func Builtins() map[Key]*Function {
	if !initDone {
		Init()
	}
	return maps.Clone(builtins)
}
