package object

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// IntSize is the payload size of every integer tag, whatever its width:
// integers are stored as 8 bytes little-endian two's complement and the tag
// only bounds the range.
const IntSize = 8

var (
	ErrConstant = errors.New("value is constant")
	ErrNull     = errors.New("value is null")
	ErrType     = errors.New("type mismatch")
)

// Value is a tagged runtime datum. An empty payload means null.
type Value struct {
	Namespace string
	Class     string
	Name      string
	Type      Type
	Constant  bool
	Access    Access
	// Observers, called on every payload read/write.
	OnGet func(v *Value)
	OnSet func(v *Value)

	data []byte
}

// New returns a null value of the given type.
func New(t Type, name string) *Value {
	return &Value{Name: name, Type: t}
}

func NewString(name, s string) *Value {
	return &Value{Name: name, Type: STR, data: []byte(s)}
}

// NewObject is for untyped data (e.g unparsable literals, arrays).
func NewObject(name, s string) *Value {
	return &Value{Name: name, Type: OBJ, data: []byte(s)}
}

func NewBool(name string, b bool) *Value {
	return &Value{Name: name, Type: BOOL, data: encodeBool(b)}
}

func NewInt(t Type, name string, n int64) (*Value, error) {
	v := New(t, name)
	if err := v.SetInt(n); err != nil {
		return nil, err
	}
	return v, nil
}

func NewI32(name string, n int32) *Value {
	return &Value{Name: name, Type: I32, data: encodeInt(uint64(int64(n)))} //nolint:gosec // two's complement bits.
}

func (v *Value) Key() Key {
	return Key{Namespace: v.Namespace, Class: v.Class, Name: v.Name}
}

func (v *Value) IsNull() bool {
	return len(v.data) == 0
}

func (v *Value) read() []byte {
	if v.OnGet != nil {
		v.OnGet(v)
	}
	return v.data
}

func (v *Value) write(b []byte) error {
	if v.Constant {
		return fmt.Errorf("%s: %w", v.Key(), ErrConstant)
	}
	v.data = b
	if v.OnSet != nil {
		v.OnSet(v)
	}
	return nil
}

// Bytes returns a copy of the raw payload.
func (v *Value) Bytes() []byte {
	return slices.Clone(v.read())
}

// SetBytes replaces the raw payload. Integer payloads must be IntSize long
// and booleans 1 byte, or empty for null.
func (v *Value) SetBytes(b []byte) error {
	switch {
	case len(b) == 0:
	case v.Type.IsInteger() && len(b) != IntSize:
		return fmt.Errorf("%s payload must be %d bytes, got %d", v.Type, IntSize, len(b))
	case v.Type == BOOL && len(b) != 1:
		return fmt.Errorf("bool payload must be 1 byte, got %d", len(b))
	}
	return v.write(slices.Clone(b))
}

func (v *Value) SetNull() error {
	return v.write(nil)
}

// String transcodes the payload to text: decimal for integers, true/false
// for booleans, the UTF-8 bytes otherwise and "" for null.
func (v *Value) String() string {
	d := v.read()
	if len(d) == 0 {
		return ""
	}
	switch {
	case v.Type == BOOL:
		return strconv.FormatBool(d[0] != 0)
	case v.Type.IsUnsigned():
		return strconv.FormatUint(decodeInt(d), 10)
	case v.Type.IsInteger():
		return strconv.FormatInt(int64(decodeInt(d)), 10) //nolint:gosec // two's complement bits.
	default:
		return string(d)
	}
}

func (v *Value) Int() (int64, error) {
	d := v.read()
	switch {
	case len(d) == 0:
		return 0, fmt.Errorf("%s: %w", v.Key(), ErrNull)
	case v.Type.IsUnsigned():
		return safecast.Convert[int64](decodeInt(d))
	case v.Type.IsInteger():
		return int64(decodeInt(d)), nil //nolint:gosec // two's complement bits.
	case v.Type == BOOL:
		return 0, fmt.Errorf("%w: can't read bool as integer", ErrType)
	default:
		return strconv.ParseInt(strings.TrimSpace(string(d)), 10, 64)
	}
}

func (v *Value) Uint() (uint64, error) {
	d := v.read()
	switch {
	case len(d) == 0:
		return 0, fmt.Errorf("%s: %w", v.Key(), ErrNull)
	case v.Type.IsUnsigned():
		return decodeInt(d), nil
	case v.Type.IsInteger():
		return safecast.Convert[uint64](int64(decodeInt(d))) //nolint:gosec // two's complement bits.
	case v.Type == BOOL:
		return 0, fmt.Errorf("%w: can't read bool as integer", ErrType)
	default:
		return strconv.ParseUint(strings.TrimSpace(string(d)), 10, 64)
	}
}

func (v *Value) Bool() (bool, error) {
	d := v.read()
	switch {
	case len(d) == 0:
		return false, fmt.Errorf("%s: %w", v.Key(), ErrNull)
	case v.Type == BOOL:
		return d[0] != 0, nil
	case v.Type.IsInteger():
		return false, fmt.Errorf("%w: can't read %s as bool", ErrType, v.Type)
	default:
		return strconv.ParseBool(strings.TrimSpace(string(d)))
	}
}

func (v *Value) SetString(s string) error {
	switch {
	case v.Type == BOOL:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		return v.SetBool(b)
	case v.Type.IsUnsigned():
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return err
		}
		return v.SetUint(n)
	case v.Type.IsInteger():
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		return v.SetInt(n)
	default:
		return v.write([]byte(s))
	}
}

func (v *Value) SetInt(n int64) error {
	switch {
	case v.Type == BOOL:
		return fmt.Errorf("%w: can't store integer in bool", ErrType)
	case v.Type.IsInteger():
		if err := checkRange(v.Type, n); err != nil {
			return err
		}
		return v.write(encodeInt(uint64(n))) //nolint:gosec // two's complement bits.
	default:
		return v.write([]byte(strconv.FormatInt(n, 10)))
	}
}

func (v *Value) SetUint(n uint64) error {
	switch {
	case v.Type == BOOL:
		return fmt.Errorf("%w: can't store integer in bool", ErrType)
	case v.Type.IsInteger():
		if err := checkRangeUnsigned(v.Type, n); err != nil {
			return err
		}
		return v.write(encodeInt(n))
	default:
		return v.write([]byte(strconv.FormatUint(n, 10)))
	}
}

func (v *Value) SetBool(b bool) error {
	switch {
	case v.Type == BOOL:
		return v.write(encodeBool(b))
	case v.Type.IsInteger():
		return fmt.Errorf("%w: can't store bool in %s", ErrType, v.Type)
	default:
		return v.write([]byte(strconv.FormatBool(b)))
	}
}

// Copy returns a detached, observer free, copy of v.
func (v *Value) Copy() *Value {
	return &Value{
		Namespace: v.Namespace,
		Class:     v.Class,
		Name:      v.Name,
		Type:      v.Type,
		Constant:  v.Constant,
		Access:    v.Access,
		data:      slices.Clone(v.read()),
	}
}

// Convert returns a non constant copy of v retagged as t, transcoding the
// payload: integer widths are range checked, anything converts to str/obj
// through its string form and str/obj parse into integers and booleans.
func (v *Value) Convert(t Type) (*Value, error) {
	src := v.Copy()
	out := &Value{Namespace: src.Namespace, Class: src.Class, Name: src.Name, Type: t, Access: src.Access}
	if src.IsNull() {
		return out, nil
	}
	var err error
	switch {
	case src.Type == t:
		out.data = src.data
	case t == STR || t == OBJ:
		out.data = []byte(src.String())
	case t == BOOL:
		var b bool
		if b, err = src.Bool(); err == nil {
			err = out.SetBool(b)
		}
	case t.IsUnsigned():
		var n uint64
		if n, err = src.Uint(); err == nil {
			err = out.SetUint(n)
		}
	default:
		var n int64
		if n, err = src.Int(); err == nil {
			err = out.SetInt(n)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("can't convert %s %s to %s: %w", src.Type, src.Literal(), t, err)
	}
	return out, nil
}

// Coerce is the strict conversion used for parameters and return values:
// identical tags, obj targets and nulls pass, integers convert between
// widths when in range. Anything else is an ErrType error.
func (v *Value) Coerce(t Type) (*Value, error) {
	switch {
	case t == OBJ || v.Type == t:
		return v.Copy(), nil
	case v.IsNull():
		c := v.Copy()
		c.Type = t
		return c, nil
	case t.IsInteger() && v.Type.IsInteger():
		return v.Convert(t)
	}
	return nil, fmt.Errorf("%w: expected %s, got %s", ErrType, t, v.Type)
}

// Literal is the payload as it would be written in source.
func (v *Value) Literal() string {
	if v.IsNull() {
		return "null"
	}
	if v.Type == STR || v.Type == OBJ {
		return strconv.Quote(v.String())
	}
	return v.String()
}

// Inspect is the debugging form: `type key = literal`.
func (v *Value) Inspect() string {
	return fmt.Sprintf("%s %s = %s", v.Type, v.Key(), v.Literal())
}

func encodeInt(n uint64) []byte {
	return binary.LittleEndian.AppendUint64(make([]byte, 0, IntSize), n)
}

func decodeInt(d []byte) uint64 {
	var buf [IntSize]byte
	copy(buf[:], d)
	return binary.LittleEndian.Uint64(buf[:])
}

func encodeBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func checkRange(t Type, n int64) error {
	var err error
	switch t { //nolint:exhaustive // non integer types have no range.
	case I8:
		_, err = safecast.Convert[int8](n)
	case I16:
		_, err = safecast.Convert[int16](n)
	case I32:
		_, err = safecast.Convert[int32](n)
	case U8:
		_, err = safecast.Convert[uint8](n)
	case U16:
		_, err = safecast.Convert[uint16](n)
	case U32:
		_, err = safecast.Convert[uint32](n)
	case U64:
		_, err = safecast.Convert[uint64](n)
	}
	if err != nil {
		return fmt.Errorf("%d out of range for %s: %w", n, t, err)
	}
	return nil
}

func checkRangeUnsigned(t Type, n uint64) error {
	var err error
	switch t { //nolint:exhaustive // non integer types have no range.
	case I8:
		_, err = safecast.Convert[int8](n)
	case I16:
		_, err = safecast.Convert[int16](n)
	case I32:
		_, err = safecast.Convert[int32](n)
	case I64:
		_, err = safecast.Convert[int64](n)
	case U8:
		_, err = safecast.Convert[uint8](n)
	case U16:
		_, err = safecast.Convert[uint16](n)
	case U32:
		_, err = safecast.Convert[uint32](n)
	}
	if err != nil {
		return fmt.Errorf("%d out of range for %s: %w", n, t, err)
	}
	return nil
}
