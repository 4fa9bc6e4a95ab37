// Package snapshot captures the live object graph of an agent's heap as a
// self-describing CBOR document, for inspection and for asserting that an
// operation left the graph unchanged.
package snapshot

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/jscore/object"
	"github.com/chazu/jscore/value"
)

var log = commonlog.GetLogger("jscore.snapshot")

// Version is the snapshot format version.
const Version = 1

// cborEncMode uses canonical mode so equal snapshots encode identically.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot is the captured state of every live object.
type Snapshot struct {
	ID      string         `cbor:"1,keyasint"`
	Version byte           `cbor:"2,keyasint"`
	TakenAt int64          `cbor:"3,keyasint"` // unix nanoseconds
	Objects []ObjectRecord `cbor:"4,keyasint,omitempty"`
	Heap    HeapStats      `cbor:"5,keyasint"`
}

// ObjectRecord describes one object.
type ObjectRecord struct {
	Handle     uint64           `cbor:"1,keyasint"`
	Kind       string           `cbor:"2,keyasint"` // method table name
	Proto      uint64           `cbor:"3,keyasint,omitempty"`
	Extensible bool             `cbor:"4,keyasint"`
	Roots      int              `cbor:"5,keyasint"`
	Properties []PropertyRecord `cbor:"6,keyasint,omitempty"`
}

// PropertyRecord describes one own property in enumeration order.
type PropertyRecord struct {
	Key          string `cbor:"1,keyasint"`
	KeyKind      uint8  `cbor:"2,keyasint"`
	Accessor     bool   `cbor:"3,keyasint"`
	Value        string `cbor:"4,keyasint,omitempty"`
	Get          uint64 `cbor:"5,keyasint,omitempty"`
	Set          uint64 `cbor:"6,keyasint,omitempty"`
	Writable     bool   `cbor:"7,keyasint"`
	Enumerable   bool   `cbor:"8,keyasint"`
	Configurable bool   `cbor:"9,keyasint"`
}

// HeapStats mirrors value.Stats with string kind names.
type HeapStats struct {
	Allocs uint64         `cbor:"1,keyasint"`
	Frees  uint64         `cbor:"2,keyasint"`
	Live   int            `cbor:"3,keyasint"`
	ByKind map[string]int `cbor:"4,keyasint,omitempty"`
}

// Capture records every live object by asking it through its internal
// methods, so exotic objects appear as scripts see them.
func Capture(a *object.Agent) (*Snapshot, error) {
	h := a.Heap

	var handles []value.Value
	h.ForEachObject(func(v value.Value, _ int, _ value.Record) {
		handles = append(handles, v)
	})

	s := &Snapshot{
		ID:      uuid.New().String(),
		Version: Version,
		TakenAt: time.Now().UnixNano(),
		Objects: make([]ObjectRecord, 0, len(handles)),
	}
	for _, v := range handles {
		if !h.IsLive(v) {
			continue
		}
		rec, err := captureObject(a, a.Object(v))
		if err != nil {
			return nil, fmt.Errorf("snapshot: object #%d: %w", v.Handle(), err)
		}
		s.Objects = append(s.Objects, rec)
	}

	st := h.Stats()
	s.Heap = HeapStats{
		Allocs: st.Allocs,
		Frees:  st.Frees,
		Live:   st.Live,
		ByKind: make(map[string]int, len(st.ByKind)),
	}
	for k, n := range st.ByKind {
		s.Heap.ByKind[k.String()] = n
	}
	return s, nil
}

func captureObject(a *object.Agent, o *object.Object) (ObjectRecord, error) {
	h := a.Heap
	rec := ObjectRecord{
		Handle: o.Value().Handle(),
		Kind:   o.Methods().Name(),
		Roots:  h.RefCount(o.Value()),
	}

	proto, err := o.GetPrototypeOf(a)
	if err != nil {
		return rec, err
	}
	if proto.IsObject() {
		rec.Proto = proto.Handle()
	}
	h.Drop(proto)

	if rec.Extensible, err = o.IsExtensible(a); err != nil {
		return rec, err
	}

	keys, err := o.OwnPropertyKeys(a)
	if err != nil {
		return rec, err
	}
	defer object.ReleaseKeys(h, keys)

	for _, k := range keys {
		desc, found, err := o.GetOwnProperty(a, k)
		if err != nil {
			return rec, err
		}
		if !found {
			continue
		}
		p := PropertyRecord{
			Key:          keyName(h, k),
			KeyKind:      uint8(k.Kind()),
			Accessor:     desc.IsAccessor(),
			Writable:     desc.Writable.IsTrue(),
			Enumerable:   desc.Enumerable.IsTrue(),
			Configurable: desc.Configurable.IsTrue(),
		}
		if desc.IsAccessor() {
			p.Get = handleOf(desc.Get)
			p.Set = handleOf(desc.Set)
		} else {
			p.Value = h.Display(desc.Value)
		}
		desc.Drop(h)
		rec.Properties = append(rec.Properties, p)
	}
	return rec, nil
}

// keyName renders string keys bare and tags symbols with their handle so
// two symbols with one description stay distinct.
func keyName(h *value.Heap, k object.PropertyKey) string {
	switch {
	case k.IsString():
		return k.Name()
	case k.IsSymbol():
		return fmt.Sprintf("%s@%d", k.Display(h), k.Symbol().Handle())
	default:
		return k.String()
	}
}

func handleOf(v value.Value) uint64 {
	if v.IsObject() {
		return v.Handle()
	}
	return 0
}

// Marshal serializes a snapshot to canonical CBOR.
func Marshal(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// Unmarshal deserializes a snapshot and checks its header.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("snapshot: unsupported version %d", s.Version)
	}
	if _, err := uuid.Parse(s.ID); err != nil {
		return nil, fmt.Errorf("snapshot: bad id %q: %w", s.ID, err)
	}
	return &s, nil
}

// WriteFile marshals s to path.
func WriteFile(path string, s *Snapshot) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	log.Infof("wrote snapshot %s (%d objects) to %s", s.ID, len(s.Objects), path)
	return nil
}

// ReadFile reads and unmarshals the snapshot at path.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return Unmarshal(data)
}

// Object returns the record for handle, or nil.
func (s *Snapshot) Object(handle uint64) *ObjectRecord {
	for i := range s.Objects {
		if s.Objects[i].Handle == handle {
			return &s.Objects[i]
		}
	}
	return nil
}

// Print writes a human-readable listing.
func (s *Snapshot) Print(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "snapshot %s taken %s\n", s.ID, time.Unix(0, s.TakenAt).UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	fmt.Fprintf(w, "heap: %d live, %d allocs, %d frees\n", s.Heap.Live, s.Heap.Allocs, s.Heap.Frees)
	for _, o := range s.Objects {
		proto := "null"
		if o.Proto != 0 {
			proto = fmt.Sprintf("#%d", o.Proto)
		}
		fmt.Fprintf(w, "#%d %s proto=%s extensible=%t roots=%d\n", o.Handle, o.Kind, proto, o.Extensible, o.Roots)
		for _, p := range o.Properties {
			if _, err := fmt.Fprintf(w, "  %s\n", p); err != nil {
				return err
			}
		}
	}
	return nil
}

// Label renders the key with string keys quoted, so "1" and index 1 differ.
func (p PropertyRecord) Label() string {
	if object.KeyKind(p.KeyKind) == object.KeyString {
		return strconv.Quote(p.Key)
	}
	return p.Key
}

func (p PropertyRecord) String() string {
	attrs := fmt.Sprintf("e=%t c=%t", p.Enumerable, p.Configurable)
	if p.Accessor {
		return fmt.Sprintf("%s: get=#%d set=#%d %s", p.Label(), p.Get, p.Set, attrs)
	}
	return fmt.Sprintf("%s: %s w=%t %s", p.Label(), p.Value, p.Writable, attrs)
}
