package object

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/jscore/value"
)

func TestParseIndex(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
		ok   bool
	}{
		{"0", 0, true},
		{"1", 1, true},
		{"4294967294", MaxIndex, true},
		{"4294967295", 0, false},
		{"01", 0, false},
		{"-1", 0, false},
		{"1.0", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"99999999999", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseIndex(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseIndex(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestToPropertyKey(t *testing.T) {
	h := value.NewHeap(0)
	sym := h.NewSymbol("s")

	tests := []struct {
		name string
		in   value.Value
		want PropertyKey
	}{
		{"index string", h.NewString("7"), IndexKey(7)},
		{"non-canonical string", h.NewString("07"), StringKey("07")},
		{"plain string", h.NewString("foo"), StringKey("foo")},
		{"int", value.FromInt32(3), IndexKey(3)},
		{"negative int", value.FromInt32(-3), StringKey("-3")},
		{"integral float", value.FromFloat64(4), IndexKey(4)},
		{"negative zero", value.FromFloat64(math.Copysign(0, -1)), IndexKey(0)},
		{"fraction", value.FromFloat64(1.5), StringKey("1.5")},
		{"large float", value.FromFloat64(1e21), StringKey("1e+21")},
		{"beyond index range", value.FromFloat64(4294967295), StringKey("4294967295")},
		{"NaN", value.CanonicalNaN, StringKey("NaN")},
		{"undefined", value.Undefined, StringKey("undefined")},
		{"true", value.True, StringKey("true")},
		{"bigint", h.NewBigIntFromInt64(12), IndexKey(12)},
		{"symbol", sym, SymbolKey(sym)},
	}
	for _, tt := range tests {
		got, err := ToPropertyKey(h, tt.in)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: ToPropertyKey = %v, want %v", tt.name, got, tt.want)
		}
	}

	a := NewAgent(h, 0)
	obj := NewOrdinary(a, value.Null)
	_, err := ToPropertyKey(h, obj.Value())
	var te *TypeError
	if !errors.As(err, &te) {
		t.Errorf("object key error = %v, want TypeError", err)
	}
}

func TestKeyAccessorsPanicOnWrongVariant(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Index on a string key should panic")
		}
	}()
	StringKey("x").Index()
}
