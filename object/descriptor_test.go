package object

import (
	"testing"

	"github.com/chazu/jscore/value"
)

func TestDescriptorKinds(t *testing.T) {
	tests := []struct {
		name                    string
		d                       Descriptor
		data, accessor, generic bool
		empty                   bool
	}{
		{"value only", Descriptor{Value: value.FromInt32(1), HasValue: true}, true, false, false, false},
		{"writable only", Descriptor{Writable: False}, true, false, false, false},
		{"get only", Descriptor{Get: value.Undefined, HasGet: true}, false, true, false, false},
		{"enumerable only", Descriptor{Enumerable: True}, false, false, true, false},
		{"nothing", Descriptor{}, false, false, true, true},
	}
	for _, tt := range tests {
		if got := tt.d.IsData(); got != tt.data {
			t.Errorf("%s: IsData = %v", tt.name, got)
		}
		if got := tt.d.IsAccessor(); got != tt.accessor {
			t.Errorf("%s: IsAccessor = %v", tt.name, got)
		}
		if got := tt.d.IsGeneric(); got != tt.generic {
			t.Errorf("%s: IsGeneric = %v", tt.name, got)
		}
		if got := tt.d.IsEmpty(); got != tt.empty {
			t.Errorf("%s: IsEmpty = %v", tt.name, got)
		}
	}
}

func TestDescriptorKindConversionRoundTrip(t *testing.T) {
	d := DataDescriptor(value.FromInt32(42), true, true, false)
	back := d.ToAccessor().ToData()

	if !back.HasValue || back.Value != value.Undefined {
		t.Errorf("value = %v, want undefined", back.Value)
	}
	if back.Writable != False {
		t.Errorf("writable = %s, want false", back.Writable)
	}
	if back.Enumerable != True || back.Configurable != False {
		t.Errorf("enumerable/configurable = %s/%s, want true/false", back.Enumerable, back.Configurable)
	}
	if back.HasGet || back.HasSet {
		t.Error("accessor fields survived conversion to data")
	}

	acc := d.ToAccessor()
	if acc.HasValue || acc.Writable.IsSet() {
		t.Error("data fields survived conversion to accessor")
	}
	if acc.Get != value.Undefined || acc.Set != value.Undefined {
		t.Error("accessor defaults should be undefined")
	}
}

func TestDescriptorComplete(t *testing.T) {
	d := Descriptor{Enumerable: True}.Complete()
	if !d.IsData() || d.Value != value.Undefined || d.Writable != False || d.Configurable != False {
		t.Errorf("generic completed to %+v", d)
	}

	a := Descriptor{Get: value.Undefined, HasGet: true}.Complete()
	if !a.HasSet || a.Set != value.Undefined || a.Enumerable != False {
		t.Errorf("accessor completed to %+v", a)
	}
}

func TestMixedDescriptorPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Check on a data+accessor descriptor should panic")
		}
	}()
	Descriptor{Value: value.Null, HasValue: true, Get: value.Undefined, HasGet: true}.Check()
}

func TestAccessorDescriptorRejectsPrimitive(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("AccessorDescriptor with a number getter should panic")
		}
	}()
	AccessorDescriptor(value.FromInt32(1), value.Undefined, true, true)
}
