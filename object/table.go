package object

import (
	"slices"

	"github.com/chazu/jscore/value"
)

// Table is an ordered map from PropertyKey to complete Descriptor.
//
// Enumeration order is integer indices ascending, then string keys in
// creation order, then symbol keys in creation order. Removing a key and
// defining it again moves it to the end of its group.
//
// The table Links every value it stores (and every symbol key), so those
// records stay alive while stored; Release unlinks them.
type Table struct {
	entries map[PropertyKey]Descriptor
	indices []uint32      // sorted
	named   []PropertyKey // strings and symbols, creation order
}

// Len returns the number of properties.
func (t *Table) Len() int { return len(t.entries) }

// Lookup returns the stored descriptor for key. The descriptor is borrowed
// from the table; Clone it before the table can change.
func (t *Table) Lookup(key PropertyKey) (Descriptor, bool) {
	d, ok := t.entries[key]
	return d, ok
}

// Has reports whether key is present.
func (t *Table) Has(key PropertyKey) bool {
	_, ok := t.entries[key]
	return ok
}

// Put stores a complete descriptor under key, creating the entry at the end
// of its group if it is new.
func (t *Table) Put(h *value.Heap, key PropertyKey, d Descriptor) {
	d.Check()
	d.values(func(v value.Value) { h.Link(v) })

	old, existed := t.entries[key]
	if t.entries == nil {
		t.entries = make(map[PropertyKey]Descriptor)
	}
	t.entries[key] = d

	if existed {
		old.values(h.Unlink)
		return
	}
	switch key.kind {
	case KeyIndex:
		i, _ := slices.BinarySearch(t.indices, key.index)
		t.indices = slices.Insert(t.indices, i, key.index)
	case KeySymbol:
		h.Link(key.sym)
		t.named = append(t.named, key)
	default:
		t.named = append(t.named, key)
	}
}

// Remove deletes key, reporting whether it was present.
func (t *Table) Remove(h *value.Heap, key PropertyKey) bool {
	old, ok := t.entries[key]
	if !ok {
		return false
	}
	delete(t.entries, key)
	switch key.kind {
	case KeyIndex:
		if i, found := slices.BinarySearch(t.indices, key.index); found {
			t.indices = slices.Delete(t.indices, i, i+1)
		}
	default:
		if i := slices.Index(t.named, key); i >= 0 {
			t.named = slices.Delete(t.named, i, i+1)
		}
	}
	old.values(h.Unlink)
	if key.kind == KeySymbol {
		h.Unlink(key.sym)
	}
	return true
}

// Keys returns the keys in enumeration order. Symbol keys are borrowed.
func (t *Table) Keys() []PropertyKey {
	keys := make([]PropertyKey, 0, len(t.entries))
	for _, i := range t.indices {
		keys = append(keys, PropertyKey{kind: KeyIndex, index: i})
	}
	for _, k := range t.named {
		if k.kind == KeyString {
			keys = append(keys, k)
		}
	}
	for _, k := range t.named {
		if k.kind == KeySymbol {
			keys = append(keys, k)
		}
	}
	return keys
}

// Trace visits every value and symbol key the table keeps alive.
func (t *Table) Trace(visit func(value.Value)) {
	for k, d := range t.entries {
		if k.kind == KeySymbol {
			visit(k.sym)
		}
		d.values(visit)
	}
}

// Release unlinks every stored edge and empties the table.
func (t *Table) Release(h *value.Heap) {
	for k, d := range t.entries {
		d.values(h.Unlink)
		if k.kind == KeySymbol {
			h.Unlink(k.sym)
		}
	}
	t.entries = nil
	t.indices = nil
	t.named = nil
}
