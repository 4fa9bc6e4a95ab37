package object

import (
	"errors"
	"testing"

	"github.com/chazu/jscore/value"
)

func TestStringObject(t *testing.T) {
	a := newTestAgent()
	h := a.Heap
	s := h.NewString("hi😀")
	so := NewStringObject(a, value.Null, s)
	h.Drop(s)

	length := mustGet(t, a, so, StringKey("length"))
	if length != value.FromInt32(4) {
		t.Errorf("length = %v, want 4 code units", length)
	}

	ch := mustGet(t, a, so, IndexKey(1))
	if h.StringOf(ch) != "i" {
		t.Errorf("[1] = %s", h.Display(ch))
	}
	h.Drop(ch)

	desc, found, _ := so.GetOwnProperty(a, IndexKey(0))
	if !found || desc.Writable != False || desc.Enumerable != True || desc.Configurable != False {
		t.Errorf("[0] descriptor = %s", desc.Format(h))
	}
	desc.Drop(h)

	if ok, _ := so.Set(a, IndexKey(0), value.FromInt32(1), so.Value()); ok {
		t.Error("string index properties are read-only")
	}
	if ok, _ := so.Delete(a, IndexKey(0)); ok {
		t.Error("string index properties are non-configurable")
	}

	mustDefine(t, a, so, IndexKey(10), DataDescriptor(value.True, true, true, true))
	mustDefine(t, a, so, StringKey("extra"), DataDescriptor(value.True, true, true, true))

	keys, err := so.OwnPropertyKeys(a)
	if err != nil {
		t.Fatal(err)
	}
	want := []PropertyKey{
		IndexKey(0), IndexKey(1), IndexKey(2), IndexKey(3), IndexKey(10),
		StringKey("length"), StringKey("extra"),
	}
	if !keysEqual(keys, want) {
		t.Errorf("OwnPropertyKeys = %v, want %v", keys, want)
	}

	data, err := As[*StringData](so)
	if err != nil || h.StringOf(data.Value) != "hi😀" {
		t.Errorf("As[*StringData] = %v, %v", data, err)
	}
	if _, err := As[*NativeFunction](so); !errors.Is(err, ErrWrongKind) {
		t.Errorf("As[*NativeFunction] err = %v, want ErrWrongKind", err)
	}
}

func TestImmutablePrototype(t *testing.T) {
	a := newTestAgent()
	p1 := NewOrdinary(a, value.Null)
	p2 := NewOrdinary(a, value.Null)
	o := New(a, ImmutablePrototype, p1.Value(), nil)

	if ok, _ := o.SetPrototypeOf(a, p2.Value()); ok {
		t.Error("immutable prototype changed")
	}
	if ok, _ := o.SetPrototypeOf(a, p1.Value()); !ok {
		t.Error("restating the prototype should succeed")
	}
	if !ImmutablePrototype.Overrides(SlotSetPrototypeOf) {
		t.Error("ImmutablePrototype should override SetPrototypeOf")
	}
}

func TestNativeFunctions(t *testing.T) {
	a := newTestAgent()
	add := NewNativeFunction(a, value.Null, "add", 2, func(a *Agent, this value.Value, args []value.Value) (value.Value, error) {
		return value.FromNumber(args[0].Number() + args[1].Number()), nil
	})

	got, err := Call(a, add.Value(), value.Undefined, []value.Value{value.FromInt32(2), value.FromFloat64(0.5)})
	if err != nil || got != value.FromFloat64(2.5) {
		t.Errorf("add(2, 0.5) = %v, %v", got, err)
	}
	if !add.IsCallable() || add.IsConstructor() {
		t.Error("plain native function should be callable but not a constructor")
	}
	if _, err := add.Construct(a, nil, add.Value()); err == nil {
		t.Error("Construct on a non-constructor should fail")
	}

	name := mustGet(t, a, add, StringKey("name"))
	if a.Heap.StringOf(name) != "add" {
		t.Errorf("name = %s", a.Heap.Display(name))
	}
	a.Heap.Drop(name)
	if got := mustGet(t, a, add, StringKey("length")); got != value.FromInt32(2) {
		t.Errorf("length = %v", got)
	}

	made := 0
	ctor := NewNativeConstructor(a, value.Null, "Thing", 0,
		func(a *Agent, this value.Value, args []value.Value) (value.Value, error) {
			return value.Undefined, nil
		},
		func(a *Agent, args []value.Value, newTarget value.Value) (value.Value, error) {
			made++
			return NewOrdinary(a, value.Null).Value(), nil
		})
	inst, err := ctor.Construct(a, nil, ctor.Value())
	if err != nil || !inst.IsObject() || made != 1 {
		t.Errorf("Construct = %v, %v", inst, err)
	}
	a.Heap.Drop(inst)
}
