package object

import (
	"github.com/chazu/jscore/value"
)

// ValidateAndApply decides whether desc may be applied to the property at
// key whose current state is current (nil when absent) on an object whose
// extensible flag is extensible, and if t is non-nil writes the result into
// t. With t nil it is a dry run: the legality check alone, usable before any
// object exists.
//
// desc is borrowed; the table links what it keeps.
func ValidateAndApply(h *value.Heap, t *Table, key PropertyKey, extensible bool, desc Descriptor, current *Descriptor) bool {
	desc.Check()

	if current == nil {
		if !extensible {
			return false
		}
		if t != nil {
			t.Put(h, key, desc.Complete())
		}
		return true
	}

	if desc.IsEmpty() {
		return true
	}

	cur := *current
	if cur.Configurable.IsFalse() {
		if desc.Configurable.IsTrue() {
			return false
		}
		if desc.Enumerable.IsSet() && desc.Enumerable != cur.Enumerable {
			return false
		}
	}

	stored := cur
	switch {
	case desc.IsGeneric():
		// Only enumerable/configurable change; nothing kind-specific to check.

	case cur.IsData() != desc.IsData():
		if cur.Configurable.IsFalse() {
			return false
		}
		if cur.IsData() {
			stored = cur.ToAccessor()
		} else {
			stored = cur.ToData()
		}

	case cur.IsData():
		if cur.Configurable.IsFalse() && cur.Writable.IsFalse() {
			if desc.Writable.IsTrue() {
				return false
			}
			if desc.HasValue && !value.SameValue(h, desc.Value, cur.Value) {
				return false
			}
			// Nothing can change on a frozen data property.
			return true
		}

	default:
		if cur.Configurable.IsFalse() {
			if desc.HasGet && !value.SameValue(h, desc.Get, cur.Get) {
				return false
			}
			if desc.HasSet && !value.SameValue(h, desc.Set, cur.Set) {
				return false
			}
		}
	}

	if t != nil {
		t.Put(h, key, stored.Merge(desc))
	}
	return true
}

// IsCompatiblePropertyDescriptor is the dry run of ValidateAndApply.
func IsCompatiblePropertyDescriptor(h *value.Heap, extensible bool, desc Descriptor, current *Descriptor) bool {
	return ValidateAndApply(h, nil, PropertyKey{}, extensible, desc, current)
}
