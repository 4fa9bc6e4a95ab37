package value

import (
	"fmt"
	"math"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("jscore.value")

// ---------------------------------------------------------------------------
// Heap: owner of every record a pointer-tagged Value can refer to
// ---------------------------------------------------------------------------

// Record is implemented by every heap-resident record.
//
// Trace reports the values the record keeps alive; an external collector
// consumes it. Release runs exactly once, when the slot is freed, and must
// Unlink every edge the record holds.
type Record interface {
	Trace(visit func(Value))
	Release(h *Heap)
}

// Handles carry a 32-bit slot number (index+1, so never zero) in the low bits
// and a 16-bit generation above it. A freed slot bumps its generation, so a
// word that outlived its record no longer resolves. A slot that exhausts its
// generations is retired.
const (
	handleIndexMask uint64 = 0x00000000FFFFFFFF
	handleGenShift         = 32
	maxSlots               = 1<<32 - 1
)

type slot struct {
	rec  Record
	kind Kind
	gen  uint16
	live bool

	// refs is the shared-ownership count for strings, bigints and symbols,
	// and the root count for objects.
	refs int32
}

// Stats is a snapshot of heap counters.
type Stats struct {
	Allocs uint64
	Frees  uint64
	Live    int
	Retired int
	ByKind  map[Kind]int
}

// Heap owns every string, bigint, symbol and object record. It is not safe
// for concurrent use; one heap belongs to one agent.
type Heap struct {
	slots    []slot
	freeList []uint32

	allocs  uint64
	frees   uint64
	live    int
	retired int

	allocsSinceSweep uint64
	onFree           func(v Value, k Kind)
}

// NewHeap creates a heap with room for initialCapacity records before growing.
func NewHeap(initialCapacity int) *Heap {
	if initialCapacity < 0 {
		initialCapacity = 0
	}
	return &Heap{
		slots: make([]slot, 0, initialCapacity),
	}
}

// SetFreeHook installs a callback run after every slot is freed. Tests use it
// to count frees per handle.
func (h *Heap) SetFreeHook(fn func(v Value, k Kind)) {
	h.onFree = fn
}

func tagFor(k Kind) uint64 {
	switch k {
	case KindBigInt:
		return tagBigInt
	case KindObject:
		return tagObject
	case KindSymbol:
		return tagSymbol
	case KindString:
		return tagString
	}
	panic(fmt.Sprintf("Heap: %s is not a heap kind", k))
}

func (h *Heap) alloc(k Kind, rec Record) Value {
	if rec == nil {
		panic("Heap.alloc: nil record")
	}
	var idx uint32
	if n := len(h.freeList); n > 0 {
		idx = h.freeList[n-1]
		h.freeList = h.freeList[:n-1]
	} else {
		if uint64(len(h.slots)) >= maxSlots {
			panic("Heap.alloc: slot space exhausted")
		}
		if len(h.slots) == cap(h.slots) {
			log.Debugf("growing heap past %d slots", cap(h.slots))
		}
		h.slots = append(h.slots, slot{})
		idx = uint32(len(h.slots) - 1)
	}
	s := &h.slots[idx]
	s.rec = rec
	s.kind = k
	s.live = true
	s.refs = 1

	h.allocs++
	h.live++
	h.allocsSinceSweep++

	handle := uint64(s.gen)<<handleGenShift | uint64(idx+1)
	return fromHandle(tagFor(k), handle)
}

// NewString allocates a string record and returns an owned Value.
func (h *Heap) NewString(s string) Value {
	return h.alloc(KindString, &StringRecord{text: s})
}

// AllocObject registers an object record and returns an owned Value
// holding one root.
func (h *Heap) AllocObject(rec Record) Value {
	return h.alloc(KindObject, rec)
}

// lookup resolves v to its slot, or returns nil if the handle is stale.
func (h *Heap) lookup(v Value) (*slot, uint32) {
	handle := v.Handle()
	idx := uint32(handle&handleIndexMask) - 1
	gen := uint16(handle >> handleGenShift)
	if int(idx) >= len(h.slots) {
		return nil, idx
	}
	s := &h.slots[idx]
	if !s.live || s.gen != gen {
		return nil, idx
	}
	return s, idx
}

func (h *Heap) resolve(v Value, op string) (*slot, uint32) {
	s, idx := h.lookup(v)
	if s == nil {
		panic(fmt.Sprintf("Heap.%s: stale handle %#x (%s)", op, v.Handle(), v.Kind()))
	}
	if s.kind != v.Kind() {
		panic(fmt.Sprintf("Heap.%s: handle %#x tagged %s but holds %s", op, v.Handle(), v.Kind(), s.kind))
	}
	return s, idx
}

// IsLive reports whether a pointer-tagged v still resolves. Non-pointer
// values are always live.
func (h *Heap) IsLive(v Value) bool {
	if !v.IsPointer() {
		return true
	}
	s, _ := h.lookup(v)
	return s != nil && s.kind == v.Kind()
}

// Record returns the record behind a pointer-tagged v. The result is
// borrowed; it stays valid only while some owner keeps v alive.
func (h *Heap) Record(v Value) Record {
	s, _ := h.resolve(v, "Record")
	return s.rec
}

// ---------------------------------------------------------------------------
// Ownership
// ---------------------------------------------------------------------------

// Clone takes an additional owning reference to v: a refcount for strings,
// bigints and symbols, a collector root for objects. Non-pointer values are
// returned unchanged.
func (h *Heap) Clone(v Value) Value {
	if !v.IsPointer() {
		return v
	}
	s, _ := h.resolve(v, "Clone")
	s.refs++
	return v
}

// Drop releases one owning reference. A refcounted record reaching zero is
// freed immediately; an object reaching zero roots waits for a collector.
func (h *Heap) Drop(v Value) {
	if !v.IsPointer() {
		return
	}
	s, idx := h.resolve(v, "Drop")
	if s.refs <= 0 {
		panic(fmt.Sprintf("Heap.Drop: %s handle %#x released more than once", v.Kind(), v.Handle()))
	}
	s.refs--
	if s.refs == 0 && s.kind != KindObject {
		h.free(v, idx)
	}
}

// Link records a heap-internal edge to v, such as a property value or a
// symbol key. Refcounted kinds gain a reference; objects are kept alive by
// tracing instead, so only the handle is checked.
func (h *Heap) Link(v Value) Value {
	if !v.IsPointer() {
		return v
	}
	s, _ := h.resolve(v, "Link")
	if s.kind != KindObject {
		s.refs++
	}
	return v
}

// Unlink removes an edge recorded with Link.
func (h *Heap) Unlink(v Value) {
	if !v.IsPointer() || v.IsObject() {
		return
	}
	s, idx := h.resolve(v, "Unlink")
	if s.refs <= 0 {
		panic(fmt.Sprintf("Heap.Unlink: %s handle %#x has no references", v.Kind(), v.Handle()))
	}
	s.refs--
	if s.refs == 0 {
		h.free(v, idx)
	}
}

// RefCount reports the refcount (or root count, for objects) of v.
// It returns 0 for stale handles and non-pointer values.
func (h *Heap) RefCount(v Value) int {
	if !v.IsPointer() {
		return 0
	}
	s, _ := h.lookup(v)
	if s == nil {
		return 0
	}
	return int(s.refs)
}

func (h *Heap) free(v Value, idx uint32) {
	s := &h.slots[idx]
	rec, kind := s.rec, s.kind

	// Mark dead before releasing so a cycle through Release cannot
	// revisit this slot.
	s.live = false
	s.rec = nil
	s.refs = 0
	rec.Release(h)

	// A slot whose generation would wrap is retired instead of reused, so
	// no outstanding word can ever resolve to a later record.
	if s.gen == math.MaxUint16 {
		h.retired++
		log.Debugf("retired slot %d after %d generations", idx+1, s.gen)
	} else {
		s.gen++
		h.freeList = append(h.freeList, idx)
	}
	h.frees++
	h.live--
	if h.onFree != nil {
		h.onFree(v, kind)
	}
}

// FreeObject reclaims an unrooted object. Collectors call this for objects
// they proved unreachable.
func (h *Heap) FreeObject(v Value) {
	if !v.IsObject() {
		panic("Heap.FreeObject: not an object")
	}
	s, idx := h.resolve(v, "FreeObject")
	if s.refs != 0 {
		panic(fmt.Sprintf("Heap.FreeObject: object %#x still has %d roots", v.Handle(), s.refs))
	}
	h.free(v, idx)
}

// ForEachObject calls fn for every live object with its root count.
func (h *Heap) ForEachObject(fn func(v Value, roots int, rec Record)) {
	for i := range h.slots {
		s := &h.slots[i]
		if !s.live || s.kind != KindObject {
			continue
		}
		handle := uint64(s.gen)<<handleGenShift | uint64(i+1)
		fn(fromHandle(tagObject, handle), int(s.refs), s.rec)
	}
}

// AllocsSinceSweep returns the number of allocations since the last call
// to ResetSweepCounter.
func (h *Heap) AllocsSinceSweep() uint64 { return h.allocsSinceSweep }

// ResetSweepCounter is called by collectors after a sweep.
func (h *Heap) ResetSweepCounter() { h.allocsSinceSweep = 0 }

// Stats returns allocation counters and live counts by kind.
func (h *Heap) Stats() Stats {
	st := Stats{
		Allocs: h.allocs,
		Frees:  h.frees,
		Live:    h.live,
		Retired: h.retired,
		ByKind:  make(map[Kind]int),
	}
	for i := range h.slots {
		if h.slots[i].live {
			st.ByKind[h.slots[i].kind]++
		}
	}
	return st
}
