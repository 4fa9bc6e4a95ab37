package object

import (
	"fmt"
	"math"
	"strconv"

	"github.com/chazu/jscore/value"
)

// KeyKind discriminates the three property key variants.
type KeyKind uint8

const (
	KeyString KeyKind = iota
	KeySymbol
	KeyIndex
)

// MaxIndex is the largest integer index key (2^32 - 2).
const MaxIndex uint32 = math.MaxUint32 - 1

// PropertyKey is a string, a symbol, or an integer index. Keys are
// comparable and can be used as map keys; an index and its decimal string
// are different keys.
//
// A symbol key borrows its symbol. Tables Link the symbol while the key is
// stored, and keys returned by OwnPropertyKeys hold a clone that
// ReleaseKeys drops.
type PropertyKey struct {
	kind  KeyKind
	str   string
	sym   value.Value
	index uint32
}

// StringKey returns a string key. It does not normalise "1" to an index;
// use ToPropertyKey for that.
func StringKey(s string) PropertyKey {
	return PropertyKey{kind: KeyString, str: s}
}

// SymbolKey returns a key for a symbol-tagged value.
func SymbolKey(sym value.Value) PropertyKey {
	if !sym.IsSymbol() {
		panic("SymbolKey: not a symbol")
	}
	return PropertyKey{kind: KeySymbol, sym: sym}
}

// IndexKey returns an integer index key.
func IndexKey(i uint32) PropertyKey {
	if i > MaxIndex {
		panic(fmt.Sprintf("IndexKey: %d is not an array index", i))
	}
	return PropertyKey{kind: KeyIndex, index: i}
}

func (k PropertyKey) Kind() KeyKind  { return k.kind }
func (k PropertyKey) IsString() bool { return k.kind == KeyString }
func (k PropertyKey) IsSymbol() bool { return k.kind == KeySymbol }
func (k PropertyKey) IsIndex() bool  { return k.kind == KeyIndex }

// Name returns the string of a string key.
func (k PropertyKey) Name() string {
	if k.kind != KeyString {
		panic("PropertyKey.Name: not a string key")
	}
	return k.str
}

// Symbol returns the symbol of a symbol key.
func (k PropertyKey) Symbol() value.Value {
	if k.kind != KeySymbol {
		panic("PropertyKey.Symbol: not a symbol key")
	}
	return k.sym
}

// Index returns the integer of an index key.
func (k PropertyKey) Index() uint32 {
	if k.kind != KeyIndex {
		panic("PropertyKey.Index: not an index key")
	}
	return k.index
}

// String renders the key for diagnostics: indices bare, strings quoted,
// symbols by handle.
func (k PropertyKey) String() string {
	switch k.kind {
	case KeyIndex:
		return strconv.FormatUint(uint64(k.index), 10)
	case KeySymbol:
		return fmt.Sprintf("Symbol(#%d)", k.sym.Handle())
	default:
		return strconv.Quote(k.str)
	}
}

// Display renders the key using the heap for symbol descriptions.
func (k PropertyKey) Display(h *value.Heap) string {
	if k.kind == KeySymbol {
		return h.Display(k.sym)
	}
	return k.String()
}

// ToValue returns the key as a script value: a string for string and index
// keys, the symbol for symbol keys. The result is owned.
func (k PropertyKey) ToValue(h *value.Heap) value.Value {
	switch k.kind {
	case KeySymbol:
		return h.Clone(k.sym)
	case KeyIndex:
		return h.NewString(strconv.FormatUint(uint64(k.index), 10))
	default:
		return h.NewString(k.str)
	}
}

// ParseIndex reports whether s is the canonical decimal form of an array
// index: no sign, no leading zeros, at most MaxIndex.
func ParseIndex(s string) (uint32, bool) {
	if s == "" || len(s) > 10 {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if s[0] == '0' {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
	}
	if n > uint64(MaxIndex) {
		return 0, false
	}
	return uint32(n), true
}

// ToPropertyKey converts a primitive to the key an interpreter would use for
// it. Canonical index strings and integral numbers in range become index
// keys. Objects need ToPrimitive, which lives above this layer, so they are
// rejected with a TypeError.
func ToPropertyKey(h *value.Heap, v value.Value) (PropertyKey, error) {
	switch v.Kind() {
	case value.KindString:
		s := h.StringOf(v)
		if i, ok := ParseIndex(s); ok {
			return IndexKey(i), nil
		}
		return StringKey(s), nil
	case value.KindSymbol:
		return SymbolKey(v), nil
	case value.KindInt:
		if n := v.Int32(); n >= 0 {
			return IndexKey(uint32(n)), nil
		}
		return StringKey(v.String()), nil
	case value.KindFloat:
		f := v.Float64()
		if f >= 0 && f <= float64(MaxIndex) && f == math.Trunc(f) {
			// -0 renders as "0" too.
			return IndexKey(uint32(f)), nil
		}
		return StringKey(v.String()), nil
	case value.KindBigInt:
		s := h.BigIntOf(v).String()
		if i, ok := ParseIndex(s); ok {
			return IndexKey(i), nil
		}
		return StringKey(s), nil
	case value.KindObject:
		return PropertyKey{}, &TypeError{Message: "cannot convert object to property key"}
	default:
		return StringKey(v.String()), nil
	}
}
