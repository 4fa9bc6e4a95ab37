package snapshot

import "fmt"

// Diff lists the differences in the object graph between s and other.
// Identity, timestamps and heap counters are ignored; an empty result means
// the two snapshots describe the same graph.
func (s *Snapshot) Diff(other *Snapshot) []string {
	var out []string

	before := make(map[uint64]*ObjectRecord, len(s.Objects))
	for i := range s.Objects {
		before[s.Objects[i].Handle] = &s.Objects[i]
	}
	seen := make(map[uint64]bool, len(other.Objects))

	for i := range other.Objects {
		b := &other.Objects[i]
		seen[b.Handle] = true
		a, ok := before[b.Handle]
		if !ok {
			out = append(out, fmt.Sprintf("#%d: added %s object", b.Handle, b.Kind))
			continue
		}
		out = append(out, diffObject(a, b)...)
	}
	for i := range s.Objects {
		if !seen[s.Objects[i].Handle] {
			out = append(out, fmt.Sprintf("#%d: removed", s.Objects[i].Handle))
		}
	}
	return out
}

func diffObject(a, b *ObjectRecord) []string {
	var out []string
	if a.Kind != b.Kind {
		out = append(out, fmt.Sprintf("#%d: kind %s -> %s", a.Handle, a.Kind, b.Kind))
	}
	if a.Proto != b.Proto {
		out = append(out, fmt.Sprintf("#%d: prototype #%d -> #%d", a.Handle, a.Proto, b.Proto))
	}
	if a.Extensible != b.Extensible {
		out = append(out, fmt.Sprintf("#%d: extensible %t -> %t", a.Handle, a.Extensible, b.Extensible))
	}

	props := make(map[propertyID]PropertyRecord, len(a.Properties))
	for _, p := range a.Properties {
		props[p.id()] = p
	}
	for _, p := range b.Properties {
		old, ok := props[p.id()]
		switch {
		case !ok:
			out = append(out, fmt.Sprintf("#%d: added %s", a.Handle, p))
		case old != p:
			out = append(out, fmt.Sprintf("#%d: changed %s -> %s", a.Handle, old, p))
		}
		delete(props, p.id())
	}
	for _, p := range a.Properties {
		if _, ok := props[p.id()]; ok {
			out = append(out, fmt.Sprintf("#%d: deleted %s", a.Handle, p.Label()))
		}
	}

	if len(out) == 0 && !sameOrder(a.Properties, b.Properties) {
		out = append(out, fmt.Sprintf("#%d: property order changed", a.Handle))
	}
	return out
}

// propertyID tells an index key apart from the string key with the same
// digits.
type propertyID struct {
	kind uint8
	key  string
}

func (p PropertyRecord) id() propertyID { return propertyID{p.KeyKind, p.Key} }

func sameOrder(a, b []PropertyRecord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].id() != b[i].id() {
			return false
		}
	}
	return true
}
