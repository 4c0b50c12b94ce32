// Package object holds the runtime data of lifetime: values and their
// stores, function entries and error values.
package object

import "strings"

// Type is the tag of a Value.
type Type uint8

const (
	OBJ Type = iota
	STR
	BOOL
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	LAST
)

var typeNames = [LAST]string{
	OBJ:  "obj",
	STR:  "str",
	BOOL: "bool",
	I8:   "i8",
	I16:  "i16",
	I32:  "i32",
	I64:  "i64",
	U8:   "u8",
	U16:  "u16",
	U32:  "u32",
	U64:  "u64",
}

func (t Type) String() string {
	if t >= LAST {
		return "Type(?)"
	}
	return typeNames[t]
}

// ParseType maps a type name used in source (e.g `let i32 ...`) to its Type.
func ParseType(name string) (Type, bool) {
	if name == "boolean" {
		return BOOL, true
	}
	for t, n := range typeNames {
		if n == name {
			return Type(t), true //nolint:gosec // bounded by LAST.
		}
	}
	return OBJ, false
}

func (t Type) IsInteger() bool {
	return t >= I8 && t <= U64
}

func (t Type) IsUnsigned() bool {
	return t >= U8 && t <= U64
}

// Access is declared on values and functions but not enforced.
type Access uint8

const (
	Public Access = iota
	Private
)

func (a Access) String() string {
	if a == Private {
		return "private"
	}
	return "public"
}

// Key is the composite identity of a Value or a Function.
type Key struct {
	Namespace string
	Class     string
	Name      string
}

func (k Key) String() string {
	var b strings.Builder
	if k.Namespace != "" {
		b.WriteString(k.Namespace)
		b.WriteString("->")
	}
	if k.Class != "" || k.Namespace != "" {
		b.WriteString(k.Class)
		b.WriteString("::")
	}
	b.WriteString(k.Name)
	return b.String()
}
