package object

import (
	"github.com/chazu/jscore/value"
)

// Slot function signatures. Every slot receives the agent and the object it
// was dispatched on. Values returned are owned by the caller; arguments are
// borrowed.
type (
	GetPrototypeOfFunc    func(a *Agent, o *Object) (value.Value, error)
	SetPrototypeOfFunc    func(a *Agent, o *Object, proto value.Value) (bool, error)
	IsExtensibleFunc      func(a *Agent, o *Object) (bool, error)
	PreventExtensionsFunc func(a *Agent, o *Object) (bool, error)
	GetOwnPropertyFunc    func(a *Agent, o *Object, key PropertyKey) (Descriptor, bool, error)
	DefineOwnPropertyFunc func(a *Agent, o *Object, key PropertyKey, desc Descriptor) (bool, error)
	HasPropertyFunc       func(a *Agent, o *Object, key PropertyKey) (bool, error)
	GetFunc               func(a *Agent, o *Object, key PropertyKey, receiver value.Value) (value.Value, error)
	SetFunc               func(a *Agent, o *Object, key PropertyKey, v, receiver value.Value) (bool, error)
	DeleteFunc            func(a *Agent, o *Object, key PropertyKey) (bool, error)
	OwnPropertyKeysFunc   func(a *Agent, o *Object) ([]PropertyKey, error)
	CallFunc              func(a *Agent, o *Object, this value.Value, args []value.Value) (value.Value, error)
	ConstructFunc         func(a *Agent, o *Object, args []value.Value, newTarget value.Value) (value.Value, error)
)

// Slot names one entry of a MethodTable.
type Slot uint8

const (
	SlotGetPrototypeOf Slot = iota
	SlotSetPrototypeOf
	SlotIsExtensible
	SlotPreventExtensions
	SlotGetOwnProperty
	SlotDefineOwnProperty
	SlotHasProperty
	SlotGet
	SlotSet
	SlotDelete
	SlotOwnPropertyKeys
	SlotCall
	SlotConstruct
	numSlots
)

var slotNames = [numSlots]string{
	"GetPrototypeOf", "SetPrototypeOf", "IsExtensible", "PreventExtensions",
	"GetOwnProperty", "DefineOwnProperty", "HasProperty", "Get", "Set",
	"Delete", "OwnPropertyKeys", "Call", "Construct",
}

func (s Slot) String() string {
	if s < numSlots {
		return slotNames[s]
	}
	return "Slot(?)"
}

// MethodTable holds one function per internal method. Tables are built once
// with NewMethodTable, shared by every object of a kind, and never mutated.
type MethodTable struct {
	GetPrototypeOf    GetPrototypeOfFunc
	SetPrototypeOf    SetPrototypeOfFunc
	IsExtensible      IsExtensibleFunc
	PreventExtensions PreventExtensionsFunc
	GetOwnProperty    GetOwnPropertyFunc
	DefineOwnProperty DefineOwnPropertyFunc
	HasProperty       HasPropertyFunc
	Get               GetFunc
	Set               SetFunc
	Delete            DeleteFunc
	OwnPropertyKeys   OwnPropertyKeysFunc

	// Optional. Nil means not callable / not a constructor.
	Call      CallFunc
	Construct ConstructFunc

	name       string
	overridden [numSlots]bool
}

// Ordinary is the table shared by every plain object.
var Ordinary = NewMethodTable("ordinary", MethodTable{})

// NewMethodTable builds a table named name from overrides. Every required
// slot left nil is filled with the ordinary algorithm; Call and Construct
// stay as given.
func NewMethodTable(name string, overrides MethodTable) *MethodTable {
	t := overrides
	t.name = name
	t.overridden = [numSlots]bool{
		SlotGetPrototypeOf:    t.GetPrototypeOf != nil,
		SlotSetPrototypeOf:    t.SetPrototypeOf != nil,
		SlotIsExtensible:      t.IsExtensible != nil,
		SlotPreventExtensions: t.PreventExtensions != nil,
		SlotGetOwnProperty:    t.GetOwnProperty != nil,
		SlotDefineOwnProperty: t.DefineOwnProperty != nil,
		SlotHasProperty:       t.HasProperty != nil,
		SlotGet:               t.Get != nil,
		SlotSet:               t.Set != nil,
		SlotDelete:            t.Delete != nil,
		SlotOwnPropertyKeys:   t.OwnPropertyKeys != nil,
		SlotCall:              t.Call != nil,
		SlotConstruct:         t.Construct != nil,
	}
	if t.GetPrototypeOf == nil {
		t.GetPrototypeOf = OrdinaryGetPrototypeOf
	}
	if t.SetPrototypeOf == nil {
		t.SetPrototypeOf = OrdinarySetPrototypeOf
	}
	if t.IsExtensible == nil {
		t.IsExtensible = OrdinaryIsExtensible
	}
	if t.PreventExtensions == nil {
		t.PreventExtensions = OrdinaryPreventExtensions
	}
	if t.GetOwnProperty == nil {
		t.GetOwnProperty = OrdinaryGetOwnProperty
	}
	if t.DefineOwnProperty == nil {
		t.DefineOwnProperty = OrdinaryDefineOwnProperty
	}
	if t.HasProperty == nil {
		t.HasProperty = OrdinaryHasProperty
	}
	if t.Get == nil {
		t.Get = OrdinaryGet
	}
	if t.Set == nil {
		t.Set = OrdinarySet
	}
	if t.Delete == nil {
		t.Delete = OrdinaryDelete
	}
	if t.OwnPropertyKeys == nil {
		t.OwnPropertyKeys = OrdinaryOwnPropertyKeys
	}
	return &t
}

// Name returns the table's kind name.
func (t *MethodTable) Name() string { return t.name }

func (t *MethodTable) exotic() bool {
	for _, o := range t.overridden {
		if o {
			return true
		}
	}
	return false
}

// Overrides reports whether slot s was supplied by the table's author rather
// than filled with the ordinary algorithm.
func (t *MethodTable) Overrides(s Slot) bool { return t.overridden[s] }

// ---------------------------------------------------------------------------
// Dispatch
//
// Each entry point claims a level of the agent's depth guard and calls the
// slot in the object's table.
// ---------------------------------------------------------------------------

// GetPrototypeOf returns the prototype (owned), or null.
func (o *Object) GetPrototypeOf(a *Agent) (value.Value, error) {
	if err := a.enter(); err != nil {
		return value.Undefined, err
	}
	defer a.leave()
	return o.methods.GetPrototypeOf(a, o)
}

// SetPrototypeOf replaces the prototype; proto is null or an object.
func (o *Object) SetPrototypeOf(a *Agent, proto value.Value) (bool, error) {
	checkProto("Object.SetPrototypeOf", proto)
	if err := a.enter(); err != nil {
		return false, err
	}
	defer a.leave()
	return o.methods.SetPrototypeOf(a, o, proto)
}

// IsExtensible reports whether new properties may be added.
func (o *Object) IsExtensible(a *Agent) (bool, error) {
	if err := a.enter(); err != nil {
		return false, err
	}
	defer a.leave()
	return o.methods.IsExtensible(a, o)
}

// PreventExtensions makes the object non-extensible.
func (o *Object) PreventExtensions(a *Agent) (bool, error) {
	if err := a.enter(); err != nil {
		return false, err
	}
	defer a.leave()
	return o.methods.PreventExtensions(a, o)
}

// GetOwnProperty returns an owned snapshot of the own property at key.
func (o *Object) GetOwnProperty(a *Agent, key PropertyKey) (Descriptor, bool, error) {
	if err := a.enter(); err != nil {
		return Descriptor{}, false, err
	}
	defer a.leave()
	return o.methods.GetOwnProperty(a, o, key)
}

// DefineOwnProperty applies desc to the own property at key.
func (o *Object) DefineOwnProperty(a *Agent, key PropertyKey, desc Descriptor) (bool, error) {
	desc.Check()
	if err := a.enter(); err != nil {
		return false, err
	}
	defer a.leave()
	return o.methods.DefineOwnProperty(a, o, key, desc)
}

// HasProperty reports whether key is an own or inherited property.
func (o *Object) HasProperty(a *Agent, key PropertyKey) (bool, error) {
	if err := a.enter(); err != nil {
		return false, err
	}
	defer a.leave()
	return o.methods.HasProperty(a, o, key)
}

// Get reads key with receiver as this for getters. The result is owned.
func (o *Object) Get(a *Agent, key PropertyKey, receiver value.Value) (value.Value, error) {
	if err := a.enter(); err != nil {
		return value.Undefined, err
	}
	defer a.leave()
	return o.methods.Get(a, o, key, receiver)
}

// Set writes v to key with receiver as this for setters.
func (o *Object) Set(a *Agent, key PropertyKey, v, receiver value.Value) (bool, error) {
	if err := a.enter(); err != nil {
		return false, err
	}
	defer a.leave()
	return o.methods.Set(a, o, key, v, receiver)
}

// Delete removes the own property at key.
func (o *Object) Delete(a *Agent, key PropertyKey) (bool, error) {
	if err := a.enter(); err != nil {
		return false, err
	}
	defer a.leave()
	return o.methods.Delete(a, o, key)
}

// OwnPropertyKeys returns the own keys in enumeration order. Release the
// result with ReleaseKeys.
func (o *Object) OwnPropertyKeys(a *Agent) ([]PropertyKey, error) {
	if err := a.enter(); err != nil {
		return nil, err
	}
	defer a.leave()
	return o.methods.OwnPropertyKeys(a, o)
}

// Call invokes a callable object. The result is owned.
func (o *Object) Call(a *Agent, this value.Value, args []value.Value) (value.Value, error) {
	if o.methods.Call == nil {
		return value.Undefined, ErrNotCallable
	}
	if err := a.enter(); err != nil {
		return value.Undefined, err
	}
	defer a.leave()
	return o.methods.Call(a, o, this, args)
}

// Construct invokes a constructor. The result is owned.
func (o *Object) Construct(a *Agent, args []value.Value, newTarget value.Value) (value.Value, error) {
	if o.methods.Construct == nil {
		return value.Undefined, typeErrorf("%s object is not a constructor", o.methods.name)
	}
	if err := a.enter(); err != nil {
		return value.Undefined, err
	}
	defer a.leave()
	return o.methods.Construct(a, o, args, newTarget)
}

// ReleaseKeys drops the symbol references held by keys returned from
// OwnPropertyKeys.
func ReleaseKeys(h *value.Heap, keys []PropertyKey) {
	for _, k := range keys {
		if k.kind == KeySymbol {
			h.Drop(k.sym)
		}
	}
}
