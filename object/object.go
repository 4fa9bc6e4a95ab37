// Package object implements the object model: property keys, descriptors
// and tables, the heap object record, the internal method table objects
// dispatch through, and the ordinary internal methods.
package object

import (
	"fmt"

	"github.com/chazu/jscore/value"
)

// Object is the heap record behind an object-tagged Value.
//
// The prototype is traced but never rooted or linked: the chain is a shared
// graph, kept alive by whatever else reaches it. The method table and
// payload are fixed at creation. Mutable state (prototype, extensible flag,
// table) sits behind a borrow cell; no borrow is held across a call that
// can reach user code.
type Object struct {
	self    value.Value
	methods *MethodTable
	payload any

	cell       borrowCell
	proto      value.Value
	extensible bool
	props      Table
}

// Payload tracing hooks. A payload holding values implements Tracer so the
// collector sees them, and Releaser to unlink them when the object dies.
type (
	Tracer interface {
		Trace(visit func(value.Value))
	}
	Releaser interface {
		Release(h *value.Heap)
	}
)

// ---------------------------------------------------------------------------
// Object creation
// ---------------------------------------------------------------------------

// NewOrdinary creates an extensible object with the ordinary method table.
// proto is null or an object. The caller owns one root on o.Value().
func NewOrdinary(a *Agent, proto value.Value) *Object {
	return New(a, Ordinary, proto, nil)
}

// New creates an object with the given method table, prototype and native
// payload. The caller owns one root on o.Value().
func New(a *Agent, methods *MethodTable, proto value.Value, payload any) *Object {
	if methods == nil {
		panic("object.New: nil method table")
	}
	checkProto("object.New", proto)
	o := &Object{
		methods:    methods,
		payload:    payload,
		proto:      proto,
		extensible: true,
	}
	o.self = a.Heap.AllocObject(o)
	if methods.exotic() {
		log.Debugf("created %s object #%d", methods.name, o.self.Handle())
	}
	return o
}

func checkProto(fn string, proto value.Value) {
	if !proto.IsNull() && !proto.IsObject() {
		panic(fmt.Sprintf("%s: prototype must be null or an object, got %s", fn, proto.Kind()))
	}
}

// Value returns the object's handle. It is borrowed; Clone it to keep the
// object rooted.
func (o *Object) Value() value.Value { return o.self }

// Methods returns the object's method table.
func (o *Object) Methods() *MethodTable { return o.methods }

// Payload returns the native payload.
func (o *Object) Payload() any { return o.payload }

// IsCallable reports whether the object has a Call slot.
func (o *Object) IsCallable() bool { return o.methods.Call != nil }

// IsConstructor reports whether the object has a Construct slot.
func (o *Object) IsConstructor() bool { return o.methods.Construct != nil }

// As returns o's payload as T, or ErrWrongKind.
func As[T any](o *Object) (T, error) {
	p, ok := o.payload.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: want %T, have %s", ErrWrongKind, zero, o.methods.name)
	}
	return p, nil
}

// Trace reports the prototype, stored property values and symbol keys, and
// whatever the payload traces.
func (o *Object) Trace(visit func(value.Value)) {
	defer o.read()()
	if o.proto.IsObject() {
		visit(o.proto)
	}
	o.props.Trace(visit)
	if t, ok := o.payload.(Tracer); ok {
		t.Trace(visit)
	}
}

// Release unlinks everything the object stored. The heap calls it once.
func (o *Object) Release(h *value.Heap) {
	defer o.write()()
	o.props.Release(h)
	if r, ok := o.payload.(Releaser); ok {
		r.Release(h)
	}
	o.proto = value.Null
}

// ---------------------------------------------------------------------------
// Borrow cell
// ---------------------------------------------------------------------------

// borrowCell allows many readers or one writer. Conflicts are logic errors
// and panic; there is nothing to wait for on a single goroutine.
type borrowCell struct {
	state int // >0 readers, -1 writer
}

func (c *borrowCell) acquireRead() {
	if c.state < 0 {
		panic("Object: already mutably borrowed")
	}
	c.state++
}

func (c *borrowCell) releaseRead() { c.state-- }

func (c *borrowCell) acquireWrite() {
	if c.state != 0 {
		if c.state < 0 {
			panic("Object: already mutably borrowed")
		}
		panic("Object: already borrowed")
	}
	c.state = -1
}

func (c *borrowCell) releaseWrite() { c.state = 0 }

// read takes a shared borrow and returns its release; use as defer o.read()().
func (o *Object) read() func() {
	o.cell.acquireRead()
	return o.cell.releaseRead
}

// write takes the exclusive borrow and returns its release.
func (o *Object) write() func() {
	o.cell.acquireWrite()
	return o.cell.releaseWrite
}

// WithTable runs fn with exclusive access to the property table. Exotic
// method tables use it to manage their own storage; fn must not call back
// into internal methods on o.
func (o *Object) WithTable(fn func(t *Table)) {
	defer o.write()()
	fn(&o.props)
}

// ---------------------------------------------------------------------------
// Direct state access for internal methods
// ---------------------------------------------------------------------------

// protoValue reads the prototype without dispatch.
func (o *Object) protoValue() value.Value {
	defer o.read()()
	return o.proto
}

func (o *Object) isExtensibleFlag() bool {
	defer o.read()()
	return o.extensible
}
