// Package value implements the tagged 64-bit word every script value lives in,
// and the heap that owns the records those words point at.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unsafe"
)

// Value represents a script value using NaN-boxing.
//
// All values are 64-bit IEEE 754 doubles. Non-number values are encoded in
// the NaN space using the quiet NaN prefix and a 3-bit tag.
//
// Encoding scheme:
//   - Number:  native IEEE 754 double (any pattern that is not a tagged NaN)
//   - Special: quiet NaN + tagSpecial + id (undefined/null/false/true)
//   - Int:     quiet NaN + tagInt + 32-bit payload
//   - BigInt, Object, Symbol, String: quiet NaN + tag + 48-bit heap handle
//
// Every NaN is canonicalised to CanonicalNaN on construction, so a tagged
// word can only be produced by the typed constructors in this package.
type Value uint64

// NaN-boxing constants
const (
	// Quiet NaN prefix: exponent all 1s, quiet bit set, sign bit 0
	nanBits uint64 = 0x7FF8000000000000

	// Tag mask: 3 bits within the NaN mantissa space
	tagMask uint64 = 0x0007000000000000

	// Payload mask: 48 bits for handle/int/id
	payloadMask uint64 = 0x0000FFFFFFFFFFFF

	tagSpecial uint64 = 0x0001000000000000
	tagInt     uint64 = 0x0002000000000000
	tagBigInt  uint64 = 0x0003000000000000
	tagObject  uint64 = 0x0004000000000000
	tagSymbol  uint64 = 0x0005000000000000
	tagString  uint64 = 0x0006000000000000

	signBit uint64 = 0x8000000000000000
)

// Special value payloads
const (
	specialUndefined uint64 = 0
	specialNull      uint64 = 1
	specialFalse     uint64 = 2
	specialTrue      uint64 = 3
)

// Pre-defined values
const (
	Undefined Value = Value(nanBits | tagSpecial | specialUndefined)
	Null      Value = Value(nanBits | tagSpecial | specialNull)
	False     Value = Value(nanBits | tagSpecial | specialFalse)
	True      Value = Value(nanBits | tagSpecial | specialTrue)

	// CanonicalNaN is the only NaN bit pattern a Value ever carries.
	CanonicalNaN Value = Value(nanBits)
)

// Value must be exactly one machine word on every supported platform.
var (
	_ [unsafe.Sizeof(Value(0)) - 8]struct{}
	_ [8 - unsafe.Sizeof(Value(0))]struct{}
)

// MaxHandle is the largest handle a pointer-tagged word can carry.
const MaxHandle uint64 = payloadMask

// Kind is the discriminant of a Value.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindInt
	KindFloat
	KindBigInt
	KindObject
	KindSymbol
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBigInt:
		return "bigint"
	case KindObject:
		return "object"
	case KindSymbol:
		return "symbol"
	case KindString:
		return "string"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Kind reports the discriminant of v in O(1).
func (v Value) Kind() Kind {
	if !v.isTagged() {
		return KindFloat
	}
	bits := uint64(v)
	switch bits & tagMask {
	case tagSpecial:
		switch bits & payloadMask {
		case specialUndefined:
			return KindUndefined
		case specialNull:
			return KindNull
		default:
			return KindBoolean
		}
	case tagInt:
		return KindInt
	case tagBigInt:
		return KindBigInt
	case tagObject:
		return KindObject
	case tagSymbol:
		return KindSymbol
	case tagString:
		return KindString
	}
	panic(fmt.Sprintf("Value.Kind: corrupt word %#016x", bits))
}

// isTagged reports whether v is one of our reserved NaN patterns.
// Tagged words have the sign bit clear, the quiet-NaN prefix, and a non-zero tag.
func (v Value) isTagged() bool {
	bits := uint64(v)
	return bits&(signBit|nanBits) == nanBits && bits&tagMask != 0
}

func (v Value) hasTag(tag uint64) bool {
	return uint64(v)&(signBit|nanBits|tagMask) == nanBits|tag
}

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

// IsNumber returns true if v is an int or float number.
func (v Value) IsNumber() bool {
	return !v.isTagged() || v.hasTag(tagInt)
}

// IsFloat returns true if v is stored as a float64.
func (v Value) IsFloat() bool { return !v.isTagged() }

// IsInt returns true if v is stored as a 32-bit integer.
func (v Value) IsInt() bool { return v.hasTag(tagInt) }

// IsUndefined returns true if v is undefined.
func (v Value) IsUndefined() bool { return v == Undefined }

// IsNull returns true if v is null.
func (v Value) IsNull() bool { return v == Null }

// IsNullish returns true for undefined and null.
func (v Value) IsNullish() bool { return v == Undefined || v == Null }

// IsBool returns true if v is true or false.
func (v Value) IsBool() bool { return v == True || v == False }

// IsBigInt returns true if v is a handle to a bigint record.
func (v Value) IsBigInt() bool { return v.hasTag(tagBigInt) }

// IsObject returns true if v is a handle to an object record.
func (v Value) IsObject() bool { return v.hasTag(tagObject) }

// IsSymbol returns true if v is a handle to a symbol record.
func (v Value) IsSymbol() bool { return v.hasTag(tagSymbol) }

// IsString returns true if v is a handle to a string record.
func (v Value) IsString() bool { return v.hasTag(tagString) }

// IsPointer returns true for every heap-backed variant.
func (v Value) IsPointer() bool {
	if !v.isTagged() {
		return false
	}
	switch uint64(v) & tagMask {
	case tagBigInt, tagObject, tagSymbol, tagString:
		return true
	}
	return false
}

// IsNaN is a single word comparison thanks to canonicalisation.
func (v Value) IsNaN() bool { return v == CanonicalNaN }

// ---------------------------------------------------------------------------
// Number operations
// ---------------------------------------------------------------------------

// FromFloat64 creates a Value from a float64. Every NaN becomes CanonicalNaN.
func FromFloat64(f float64) Value {
	if f != f {
		return CanonicalNaN
	}
	return Value(math.Float64bits(f))
}

// Float64 returns v as a float64.
// Panics if v is not a float.
func (v Value) Float64() float64 {
	if !v.IsFloat() {
		panic("Value.Float64: not a float")
	}
	return math.Float64frombits(uint64(v))
}

// FromInt32 creates an int-tagged Value.
func FromInt32(n int32) Value {
	return Value(nanBits | tagInt | uint64(uint32(n)))
}

// FromInt64 creates an int-tagged Value.
// Panics if n needs more than 32 bits.
func FromInt64(n int64) Value {
	if n > math.MaxInt32 || n < math.MinInt32 {
		panic("FromInt64: value out of 32-bit range")
	}
	return FromInt32(int32(n))
}

// TryFromInt64 creates an int-tagged Value, returning false if out of range.
func TryFromInt64(n int64) (Value, bool) {
	if n > math.MaxInt32 || n < math.MinInt32 {
		return Undefined, false
	}
	return FromInt32(int32(n)), true
}

// Int32 returns v as an int32.
// Panics if v is not an int.
func (v Value) Int32() int32 {
	if !v.IsInt() {
		panic("Value.Int32: not an int")
	}
	return int32(uint32(uint64(v)))
}

// Number returns the numeric value of an int or float as a float64.
// Panics if v is not a number.
func (v Value) Number() float64 {
	if v.IsInt() {
		return float64(v.Int32())
	}
	return v.Float64()
}

// FromNumber stores f as an int when it is integral, fits in 32 bits, and is
// not negative zero; otherwise as a float.
func FromNumber(f float64) Value {
	if f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32 && !(f == 0 && math.Signbit(f)) {
		return FromInt32(int32(f))
	}
	return FromFloat64(f)
}

// ---------------------------------------------------------------------------
// Boolean operations
// ---------------------------------------------------------------------------

// FromBool creates a Value from a bool.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Bool returns v as a bool.
// Panics if v is not true or false.
func (v Value) Bool() bool {
	switch v {
	case True:
		return true
	case False:
		return false
	default:
		panic("Value.Bool: not a boolean")
	}
}

// ---------------------------------------------------------------------------
// Handles
// ---------------------------------------------------------------------------

func fromHandle(tag uint64, h uint64) Value {
	if h == 0 {
		panic("value: zero handle")
	}
	if h > MaxHandle {
		panic(fmt.Sprintf("value: handle %#x overflows 48 bits", h))
	}
	return Value(nanBits | tag | h)
}

// Handle returns the 48-bit heap handle of a pointer-tagged value.
// Panics if v is not pointer-tagged.
func (v Value) Handle() uint64 {
	if !v.IsPointer() {
		panic("Value.Handle: not a pointer")
	}
	return uint64(v) & payloadMask
}

// Bits returns the raw word.
func (v Value) Bits() uint64 { return uint64(v) }

// String renders v without consulting the heap. Pointer variants show their
// handle; use Heap.Display for contents.
func (v Value) String() string {
	switch v.Kind() {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return strconv.FormatBool(v.Bool())
	case KindInt:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case KindFloat:
		return formatFloat(v.Float64())
	default:
		return fmt.Sprintf("<%s #%d>", v.Kind(), v.Handle())
	}
}

func formatFloat(f float64) string {
	switch {
	case f != f:
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0 && math.Signbit(f):
		return "-0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	// Exponent form drops the zero padding Go adds: 1e-07 becomes 1e-7.
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
}
