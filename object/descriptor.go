package object

import (
	"strings"

	"github.com/chazu/jscore/value"
)

// Flag is a boolean attribute that may be absent from a descriptor.
type Flag uint8

const (
	Unset Flag = iota
	False
	True
)

// FlagOf converts a bool to a present Flag.
func FlagOf(b bool) Flag {
	if b {
		return True
	}
	return False
}

// IsSet reports whether the attribute is present.
func (f Flag) IsSet() bool { return f != Unset }

// IsTrue reports whether the attribute is present and true.
func (f Flag) IsTrue() bool { return f == True }

// IsFalse reports whether the attribute is present and false.
func (f Flag) IsFalse() bool { return f == False }

func (f Flag) String() string {
	switch f {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unset"
	}
}

// Descriptor is a property descriptor. Every field is optional; presence of
// Value, Get and Set is tracked by the Has fields, presence of the boolean
// attributes by Flag.
//
// A descriptor is a data descriptor if Value or Writable is present, an
// accessor descriptor if Get or Set is present, and generic otherwise. It is
// never both; the constructors panic if asked to build one.
//
// Descriptors stored in a table are complete: every field of their kind is
// present.
type Descriptor struct {
	Value    value.Value
	HasValue bool
	Get      value.Value
	HasGet   bool
	Set      value.Value
	HasSet   bool

	Writable     Flag
	Enumerable   Flag
	Configurable Flag
}

// DataDescriptor builds a complete data descriptor.
func DataDescriptor(v value.Value, writable, enumerable, configurable bool) Descriptor {
	return Descriptor{
		Value:        v,
		HasValue:     true,
		Writable:     FlagOf(writable),
		Enumerable:   FlagOf(enumerable),
		Configurable: FlagOf(configurable),
	}
}

// AccessorDescriptor builds a complete accessor descriptor. get and set must
// be undefined or objects.
func AccessorDescriptor(get, set value.Value, enumerable, configurable bool) Descriptor {
	checkAccessor("AccessorDescriptor", get)
	checkAccessor("AccessorDescriptor", set)
	return Descriptor{
		Get:          get,
		HasGet:       true,
		Set:          set,
		HasSet:       true,
		Enumerable:   FlagOf(enumerable),
		Configurable: FlagOf(configurable),
	}
}

func checkAccessor(fn string, v value.Value) {
	if !v.IsUndefined() && !v.IsObject() {
		panic(fn + ": accessor must be undefined or an object, got " + v.Kind().String())
	}
}

// IsData reports whether d is a data descriptor.
func (d Descriptor) IsData() bool { return d.HasValue || d.Writable.IsSet() }

// IsAccessor reports whether d is an accessor descriptor.
func (d Descriptor) IsAccessor() bool { return d.HasGet || d.HasSet }

// IsGeneric reports whether d is neither data nor accessor.
func (d Descriptor) IsGeneric() bool { return !d.IsData() && !d.IsAccessor() }

// IsEmpty reports whether d has no fields at all.
func (d Descriptor) IsEmpty() bool {
	return d.IsGeneric() && !d.Enumerable.IsSet() && !d.Configurable.IsSet()
}

// Check panics if d mixes data and accessor fields or holds a non-callable
// looking accessor.
func (d Descriptor) Check() {
	if d.IsData() && d.IsAccessor() {
		panic("Descriptor: both data and accessor fields present")
	}
	if d.HasGet {
		checkAccessor("Descriptor", d.Get)
	}
	if d.HasSet {
		checkAccessor("Descriptor", d.Set)
	}
}

// ToAccessor converts d to an accessor descriptor, discarding data fields and
// keeping Enumerable and Configurable.
func (d Descriptor) ToAccessor() Descriptor {
	return Descriptor{
		Get:          value.Undefined,
		HasGet:       true,
		Set:          value.Undefined,
		HasSet:       true,
		Enumerable:   d.Enumerable,
		Configurable: d.Configurable,
	}
}

// ToData converts d to a data descriptor, discarding accessor fields and
// keeping Enumerable and Configurable.
func (d Descriptor) ToData() Descriptor {
	return Descriptor{
		Value:        value.Undefined,
		HasValue:     true,
		Writable:     False,
		Enumerable:   d.Enumerable,
		Configurable: d.Configurable,
	}
}

// Complete fills every absent field with its default. Generic descriptors
// become data descriptors.
func (d Descriptor) Complete() Descriptor {
	if d.IsAccessor() {
		if !d.HasGet {
			d.Get, d.HasGet = value.Undefined, true
		}
		if !d.HasSet {
			d.Set, d.HasSet = value.Undefined, true
		}
	} else {
		if !d.HasValue {
			d.Value, d.HasValue = value.Undefined, true
		}
		if !d.Writable.IsSet() {
			d.Writable = False
		}
	}
	if !d.Enumerable.IsSet() {
		d.Enumerable = False
	}
	if !d.Configurable.IsSet() {
		d.Configurable = False
	}
	return d
}

// Merge copies every field present in src over d. The kinds must already
// agree (or src be generic).
func (d Descriptor) Merge(src Descriptor) Descriptor {
	if src.HasValue {
		d.Value, d.HasValue = src.Value, true
	}
	if src.Writable.IsSet() {
		d.Writable = src.Writable
	}
	if src.HasGet {
		d.Get, d.HasGet = src.Get, true
	}
	if src.HasSet {
		d.Set, d.HasSet = src.Set, true
	}
	if src.Enumerable.IsSet() {
		d.Enumerable = src.Enumerable
	}
	if src.Configurable.IsSet() {
		d.Configurable = src.Configurable
	}
	return d
}

// values calls fn for every present value-bearing field.
func (d Descriptor) values(fn func(value.Value)) {
	if d.HasValue {
		fn(d.Value)
	}
	if d.HasGet {
		fn(d.Get)
	}
	if d.HasSet {
		fn(d.Set)
	}
}

// Clone returns a copy of d that owns its values.
func (d Descriptor) Clone(h *value.Heap) Descriptor {
	d.values(func(v value.Value) { h.Clone(v) })
	return d
}

// Drop releases the values of an owned descriptor.
func (d Descriptor) Drop(h *value.Heap) {
	d.values(h.Drop)
}

// Format renders d for diagnostics.
func (d Descriptor) Format(h *value.Heap) string {
	var parts []string
	if d.HasValue {
		parts = append(parts, "value: "+h.Display(d.Value))
	}
	if d.Writable.IsSet() {
		parts = append(parts, "writable: "+d.Writable.String())
	}
	if d.HasGet {
		parts = append(parts, "get: "+h.Display(d.Get))
	}
	if d.HasSet {
		parts = append(parts, "set: "+h.Display(d.Set))
	}
	if d.Enumerable.IsSet() {
		parts = append(parts, "enumerable: "+d.Enumerable.String())
	}
	if d.Configurable.IsSet() {
		parts = append(parts, "configurable: "+d.Configurable.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
