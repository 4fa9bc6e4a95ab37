package value

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strconv"

	"golang.org/x/text/encoding/unicode"
)

// utf16le encodes Go strings into the code units a script sees.
var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// StringRecord is the heap record behind a string-tagged Value.
type StringRecord struct {
	text  string
	units []uint16 // lazily computed
}

// Text returns the string contents.
func (r *StringRecord) Text() string { return r.text }

// CodeUnits returns the UTF-16 code units of the string. The slice is shared;
// callers must not modify it.
func (r *StringRecord) CodeUnits() []uint16 {
	if r.units == nil && r.text != "" {
		r.units = EncodeUTF16(r.text)
	}
	return r.units
}

func (r *StringRecord) Trace(func(Value)) {}
func (r *StringRecord) Release(*Heap)     { r.units = nil }

// EncodeUTF16 converts s to UTF-16 code units. Invalid UTF-8 sequences become
// U+FFFD.
func EncodeUTF16(s string) []uint16 {
	b, err := utf16le.NewEncoder().String(s)
	if err != nil {
		// The encoder replaces invalid input; an error here means a broken
		// transformer, not bad data.
		panic(fmt.Sprintf("EncodeUTF16: %v", err))
	}
	raw := []byte(b)
	units := make([]uint16, len(raw)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}
	return units
}

// DecodeUTF16 converts code units back to a Go string. Lone surrogates
// become U+FFFD.
func DecodeUTF16(units []uint16) string {
	raw := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(raw[2*i:], u)
	}
	s, err := utf16le.NewDecoder().String(string(raw))
	if err != nil {
		panic(fmt.Sprintf("DecodeUTF16: %v", err))
	}
	return s
}

// BigIntRecord is the heap record behind a bigint-tagged Value.
type BigIntRecord struct {
	n *big.Int
}

// Int returns the integer. Callers must not modify it.
func (r *BigIntRecord) Int() *big.Int { return r.n }

func (r *BigIntRecord) Trace(func(Value)) {}
func (r *BigIntRecord) Release(*Heap)     {}

// SymbolRecord is the heap record behind a symbol-tagged Value. Symbols are
// compared by handle; two symbols with the same description are distinct.
type SymbolRecord struct {
	Description    string
	HasDescription bool
}

func (r *SymbolRecord) Trace(func(Value)) {}
func (r *SymbolRecord) Release(*Heap)     {}

// NewBigInt allocates a bigint record holding a copy of n.
func (h *Heap) NewBigInt(n *big.Int) Value {
	return h.alloc(KindBigInt, &BigIntRecord{n: new(big.Int).Set(n)})
}

// NewBigIntFromInt64 allocates a bigint record holding n.
func (h *Heap) NewBigIntFromInt64(n int64) Value {
	return h.alloc(KindBigInt, &BigIntRecord{n: big.NewInt(n)})
}

// NewSymbol allocates a fresh symbol with the given description.
func (h *Heap) NewSymbol(description string) Value {
	return h.alloc(KindSymbol, &SymbolRecord{Description: description, HasDescription: true})
}

// NewAnonymousSymbol allocates a fresh symbol whose description is undefined.
func (h *Heap) NewAnonymousSymbol() Value {
	return h.alloc(KindSymbol, &SymbolRecord{})
}

// StringOf returns the contents of a string-tagged value.
// Panics if v is not a live string.
func (h *Heap) StringOf(v Value) string {
	return h.StringRecordOf(v).text
}

// StringRecordOf returns the record of a string-tagged value.
func (h *Heap) StringRecordOf(v Value) *StringRecord {
	if !v.IsString() {
		panic("Heap.StringOf: not a string")
	}
	s, _ := h.resolve(v, "StringOf")
	return s.rec.(*StringRecord)
}

// BigIntOf returns the integer behind a bigint-tagged value. The result is
// shared; callers must not modify it.
func (h *Heap) BigIntOf(v Value) *big.Int {
	if !v.IsBigInt() {
		panic("Heap.BigIntOf: not a bigint")
	}
	s, _ := h.resolve(v, "BigIntOf")
	return s.rec.(*BigIntRecord).n
}

// SymbolOf returns the record behind a symbol-tagged value.
func (h *Heap) SymbolOf(v Value) *SymbolRecord {
	if !v.IsSymbol() {
		panic("Heap.SymbolOf: not a symbol")
	}
	s, _ := h.resolve(v, "SymbolOf")
	return s.rec.(*SymbolRecord)
}

// Display renders v with heap contents: strings quoted, bigints with an n
// suffix, symbols with their description.
func (h *Heap) Display(v Value) string {
	switch v.Kind() {
	case KindString:
		return strconv.Quote(h.StringOf(v))
	case KindBigInt:
		return h.BigIntOf(v).String() + "n"
	case KindSymbol:
		sym := h.SymbolOf(v)
		if !sym.HasDescription {
			return "Symbol()"
		}
		return "Symbol(" + sym.Description + ")"
	case KindObject:
		return fmt.Sprintf("[object #%d]", v.Handle())
	default:
		return v.String()
	}
}
