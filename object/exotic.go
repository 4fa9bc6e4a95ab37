package object

import (
	"github.com/chazu/jscore/value"
)

// ---------------------------------------------------------------------------
// String objects
// ---------------------------------------------------------------------------

// StringData is the payload of a String wrapper object. Each UTF-16 code
// unit of the wrapped string appears as a read-only, enumerable index
// property, and "length" is a frozen own property.
type StringData struct {
	Value value.Value // linked string
}

func (d *StringData) Trace(visit func(value.Value)) { visit(d.Value) }

func (d *StringData) Release(h *value.Heap) {
	h.Unlink(d.Value)
	d.Value = value.Undefined
}

var stringMethods = NewMethodTable("string", MethodTable{
	GetOwnProperty:    stringGetOwnProperty,
	DefineOwnProperty: stringDefineOwnProperty,
	OwnPropertyKeys:   stringOwnPropertyKeys,
})

// NewStringObject wraps the string s. The caller owns one root on the result.
func NewStringObject(a *Agent, proto value.Value, s value.Value) *Object {
	if !s.IsString() {
		panic("NewStringObject: not a string")
	}
	data := &StringData{Value: a.Heap.Link(s)}
	o := New(a, stringMethods, proto, data)

	n := len(a.Heap.StringRecordOf(s).CodeUnits())
	o.WithTable(func(t *Table) {
		t.Put(a.Heap, StringKey("length"), DataDescriptor(value.FromNumber(float64(n)), false, false, false))
	})
	return o
}

func stringUnits(a *Agent, o *Object) []uint16 {
	data, err := As[*StringData](o)
	if err != nil {
		panic("string object without StringData payload")
	}
	return a.Heap.StringRecordOf(data.Value).CodeUnits()
}

// stringIndexProperty returns the descriptor of code unit i, if in range.
func stringIndexProperty(a *Agent, o *Object, key PropertyKey) (Descriptor, bool) {
	if !key.IsIndex() {
		return Descriptor{}, false
	}
	units := stringUnits(a, o)
	i := key.Index()
	if int64(i) >= int64(len(units)) {
		return Descriptor{}, false
	}
	ch := a.Heap.NewString(value.DecodeUTF16(units[i : i+1]))
	return DataDescriptor(ch, false, true, false), true
}

func stringGetOwnProperty(a *Agent, o *Object, key PropertyKey) (Descriptor, bool, error) {
	desc, found, err := OrdinaryGetOwnProperty(a, o, key)
	if err != nil || found {
		return desc, found, err
	}
	desc, found = stringIndexProperty(a, o, key)
	return desc, found, nil
}

func stringDefineOwnProperty(a *Agent, o *Object, key PropertyKey, desc Descriptor) (bool, error) {
	if current, found := stringIndexProperty(a, o, key); found {
		defer current.Drop(a.Heap)
		extensible := o.isExtensibleFlag()
		return IsCompatiblePropertyDescriptor(a.Heap, extensible, desc, &current), nil
	}
	return OrdinaryDefineOwnProperty(a, o, key, desc)
}

func stringOwnPropertyKeys(a *Agent, o *Object) ([]PropertyKey, error) {
	units := stringUnits(a, o)
	rest, err := OrdinaryOwnPropertyKeys(a, o)
	if err != nil {
		return nil, err
	}
	keys := make([]PropertyKey, 0, len(units)+len(rest))
	for i := range units {
		keys = append(keys, IndexKey(uint32(i)))
	}
	// Table indices are all past the string's end, so order is preserved.
	return append(keys, rest...), nil
}

// ---------------------------------------------------------------------------
// Immutable prototype objects
// ---------------------------------------------------------------------------

// ImmutablePrototype is the table for objects whose prototype can never
// change, such as Object.prototype. SetPrototypeOf succeeds only when asked
// to keep the current prototype.
var ImmutablePrototype = NewMethodTable("immutable-prototype", MethodTable{
	SetPrototypeOf: immutableSetPrototypeOf,
})

func immutableSetPrototypeOf(a *Agent, o *Object, proto value.Value) (bool, error) {
	current, err := o.GetPrototypeOf(a)
	if err != nil {
		return false, err
	}
	defer a.Heap.Drop(current)
	return proto == current, nil
}
