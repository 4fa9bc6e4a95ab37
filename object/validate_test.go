package object

import (
	"testing"

	"github.com/chazu/jscore/value"
)

func newTestAgent() *Agent {
	return NewAgent(value.NewHeap(16), 0)
}

func noopFunction(a *Agent, name string) *Object {
	return NewNativeFunction(a, value.Null, name, 0, func(*Agent, value.Value, []value.Value) (value.Value, error) {
		return value.Undefined, nil
	})
}

func TestValidateAndApplyAbsent(t *testing.T) {
	h := value.NewHeap(0)
	var tbl Table
	key := StringKey("p")

	if ValidateAndApply(h, &tbl, key, false, DataDescriptor(value.FromInt32(1), true, true, true), nil) {
		t.Error("adding to a non-extensible object should fail")
	}
	if tbl.Len() != 0 {
		t.Error("failed define wrote to the table")
	}

	if !ValidateAndApply(h, &tbl, key, true, Descriptor{Enumerable: True}, nil) {
		t.Fatal("adding a generic descriptor should succeed")
	}
	got, _ := tbl.Lookup(key)
	want := Descriptor{Value: value.Undefined, HasValue: true, Writable: False, Enumerable: True, Configurable: False}
	if got != want {
		t.Errorf("stored %+v, want %+v", got, want)
	}
}

func TestValidateAndApplyMonotonicity(t *testing.T) {
	h := value.NewHeap(0)
	var tbl Table
	key := StringKey("frozen")
	v := value.FromInt32(7)

	if !ValidateAndApply(h, &tbl, key, true, DataDescriptor(v, false, false, false), nil) {
		t.Fatal("initial define failed")
	}
	current := func() *Descriptor {
		d, _ := tbl.Lookup(key)
		return &d
	}

	rejected := []struct {
		name string
		desc Descriptor
	}{
		{"different value", Descriptor{Value: value.FromInt32(8), HasValue: true}},
		{"float with different value", Descriptor{Value: value.FromFloat64(7.5), HasValue: true}},
		{"make writable", Descriptor{Writable: True}},
		{"make configurable", Descriptor{Configurable: True}},
		{"make enumerable", Descriptor{Enumerable: True}},
		{"become accessor", Descriptor{Get: value.Undefined, HasGet: true}},
	}
	for _, tt := range rejected {
		if ValidateAndApply(h, &tbl, key, true, tt.desc, current()) {
			t.Errorf("%s: should be rejected", tt.name)
		}
	}

	accepted := []struct {
		name string
		desc Descriptor
	}{
		{"same value", Descriptor{Value: v, HasValue: true}},
		{"same value as float", Descriptor{Value: value.FromFloat64(7), HasValue: true}},
		{"same attributes", DataDescriptor(v, false, false, false)},
		{"empty", Descriptor{}},
		{"writable false again", Descriptor{Writable: False}},
	}
	for _, tt := range accepted {
		if !ValidateAndApply(h, &tbl, key, true, tt.desc, current()) {
			t.Errorf("%s: should succeed as a no-op", tt.name)
		}
	}

	got, _ := tbl.Lookup(key)
	if got != DataDescriptor(v, false, false, false) {
		t.Errorf("property changed to %+v", got)
	}
}

func TestValidateAndApplyKindChange(t *testing.T) {
	a := newTestAgent()
	h := a.Heap
	getter := noopFunction(a, "g")
	var tbl Table
	key := StringKey("p")

	ValidateAndApply(h, &tbl, key, true, DataDescriptor(value.FromInt32(1), true, true, true), nil)
	cur, _ := tbl.Lookup(key)
	if !ValidateAndApply(h, &tbl, key, true, Descriptor{Get: getter.Value(), HasGet: true}, &cur) {
		t.Fatal("configurable data to accessor should succeed")
	}
	got, _ := tbl.Lookup(key)
	if !got.IsAccessor() || got.Get != getter.Value() || got.Set != value.Undefined {
		t.Errorf("converted to %+v", got)
	}
	if got.Enumerable != True || got.Configurable != True {
		t.Error("conversion lost enumerable/configurable")
	}

	cur = got
	if !ValidateAndApply(h, &tbl, key, true, Descriptor{Writable: True}, &cur) {
		t.Fatal("configurable accessor to data should succeed")
	}
	got, _ = tbl.Lookup(key)
	if got.Value != value.Undefined || got.Writable != True || got.HasGet {
		t.Errorf("converted back to %+v", got)
	}

	// A non-configurable property may not change kind.
	sealed := StringKey("sealed")
	ValidateAndApply(h, &tbl, sealed, true, DataDescriptor(value.FromInt32(1), true, true, false), nil)
	cur, _ = tbl.Lookup(sealed)
	if ValidateAndApply(h, &tbl, sealed, true, Descriptor{Get: getter.Value(), HasGet: true}, &cur) {
		t.Error("non-configurable kind change should fail")
	}
}

func TestValidateAndApplyNonConfigurableAccessor(t *testing.T) {
	a := newTestAgent()
	h := a.Heap
	g1, g2 := noopFunction(a, "g1"), noopFunction(a, "g2")
	var tbl Table
	key := StringKey("acc")

	ValidateAndApply(h, &tbl, key, true, AccessorDescriptor(g1.Value(), value.Undefined, false, false), nil)
	cur, _ := tbl.Lookup(key)

	if ValidateAndApply(h, &tbl, key, true, Descriptor{Get: g2.Value(), HasGet: true}, &cur) {
		t.Error("changing a non-configurable getter should fail")
	}
	if ValidateAndApply(h, &tbl, key, true, Descriptor{Set: g2.Value(), HasSet: true}, &cur) {
		t.Error("changing a non-configurable setter should fail")
	}
	if !ValidateAndApply(h, &tbl, key, true, Descriptor{Get: g1.Value(), HasGet: true, Set: value.Undefined, HasSet: true}, &cur) {
		t.Error("restating the same accessors should succeed")
	}
}

func TestValidateAndApplyMerge(t *testing.T) {
	h := value.NewHeap(0)
	var tbl Table
	key := IndexKey(0)

	ValidateAndApply(h, &tbl, key, true, DataDescriptor(value.FromInt32(1), true, true, true), nil)
	cur, _ := tbl.Lookup(key)
	if !ValidateAndApply(h, &tbl, key, true, Descriptor{Value: value.FromInt32(5), HasValue: true, Enumerable: False}, &cur) {
		t.Fatal("merge should succeed")
	}
	got, _ := tbl.Lookup(key)
	want := DataDescriptor(value.FromInt32(5), true, false, true)
	if got != want {
		t.Errorf("merged %+v, want %+v", got, want)
	}

	// Writable non-configurable data may still change value and drop writable.
	ValidateAndApply(h, &tbl, StringKey("w"), true, DataDescriptor(value.FromInt32(1), true, false, false), nil)
	cur, _ = tbl.Lookup(StringKey("w"))
	if !ValidateAndApply(h, &tbl, StringKey("w"), true, Descriptor{Value: value.FromInt32(2), HasValue: true, Writable: False}, &cur) {
		t.Error("writable non-configurable property should accept a new value")
	}
}

func TestIsCompatiblePropertyDescriptorDoesNotWrite(t *testing.T) {
	h := value.NewHeap(0)
	cur := DataDescriptor(value.FromInt32(1), false, false, false)

	if !IsCompatiblePropertyDescriptor(h, true, Descriptor{Value: value.FromInt32(1), HasValue: true}, &cur) {
		t.Error("same value should be compatible")
	}
	if IsCompatiblePropertyDescriptor(h, true, Descriptor{Value: value.FromInt32(2), HasValue: true}, &cur) {
		t.Error("different value should be incompatible")
	}
	if IsCompatiblePropertyDescriptor(h, false, Descriptor{}, nil) {
		t.Error("new property on non-extensible object should be incompatible")
	}
	if !IsCompatiblePropertyDescriptor(h, true, Descriptor{}, nil) {
		t.Error("new property on extensible object should be compatible")
	}
	if cur != DataDescriptor(value.FromInt32(1), false, false, false) {
		t.Error("dry run modified current")
	}
}
