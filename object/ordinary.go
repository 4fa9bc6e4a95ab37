package object

import (
	"github.com/chazu/jscore/value"
)

// The ordinary internal methods. Exotic tables fall back to these for every
// slot they do not override, and may call them directly to delegate.
//
// None of them holds a borrow across a dispatched call: state is re-read
// after every step that can reach user code.

// OrdinaryGetPrototypeOf returns the stored prototype.
func OrdinaryGetPrototypeOf(a *Agent, o *Object) (value.Value, error) {
	return a.Heap.Clone(o.protoValue()), nil
}

// OrdinarySetPrototypeOf replaces the prototype unless that would close a
// cycle or the object is not extensible. Setting the current prototype
// again always succeeds.
//
// The cycle walk follows only links whose GetPrototypeOf is ordinary; an
// exotic link may compute its prototype, so the walk stops there.
func OrdinarySetPrototypeOf(a *Agent, o *Object, proto value.Value) (bool, error) {
	current := o.protoValue()
	if proto == current {
		return true, nil
	}
	if !o.isExtensibleFlag() {
		return false, nil
	}
	for p := proto; !p.IsNull(); {
		if p == o.self {
			log.Debugf("rejected prototype cycle through #%d", o.self.Handle())
			return false, nil
		}
		po := a.Object(p)
		if po.methods.Overrides(SlotGetPrototypeOf) {
			break
		}
		p = po.protoValue()
	}
	defer o.write()()
	o.proto = proto
	return true, nil
}

// OrdinaryIsExtensible reads the extensible flag.
func OrdinaryIsExtensible(a *Agent, o *Object) (bool, error) {
	return o.isExtensibleFlag(), nil
}

// OrdinaryPreventExtensions clears the extensible flag. It never fails.
func OrdinaryPreventExtensions(a *Agent, o *Object) (bool, error) {
	defer o.write()()
	o.extensible = false
	return true, nil
}

// OrdinaryGetOwnProperty returns an owned copy of the stored descriptor.
func OrdinaryGetOwnProperty(a *Agent, o *Object, key PropertyKey) (Descriptor, bool, error) {
	defer o.read()()
	d, ok := o.props.Lookup(key)
	if !ok {
		return Descriptor{}, false, nil
	}
	return d.Clone(a.Heap), true, nil
}

// OrdinaryDefineOwnProperty validates desc against the current property and
// the extensible flag, then applies it.
func OrdinaryDefineOwnProperty(a *Agent, o *Object, key PropertyKey, desc Descriptor) (bool, error) {
	current, found, err := o.GetOwnProperty(a, key)
	if err != nil {
		return false, err
	}
	if found {
		defer current.Drop(a.Heap)
	}
	extensible, err := o.IsExtensible(a)
	if err != nil {
		return false, err
	}

	var cur *Descriptor
	if found {
		cur = &current
	}
	defer o.write()()
	return ValidateAndApply(a.Heap, &o.props, key, extensible, desc, cur), nil
}

// OrdinaryHasProperty checks own properties, then asks the prototype.
func OrdinaryHasProperty(a *Agent, o *Object, key PropertyKey) (bool, error) {
	desc, found, err := o.GetOwnProperty(a, key)
	if err != nil {
		return false, err
	}
	if found {
		desc.Drop(a.Heap)
		return true, nil
	}
	parent, err := o.GetPrototypeOf(a)
	if err != nil {
		return false, err
	}
	if parent.IsNull() {
		return false, nil
	}
	defer a.Heap.Drop(parent)
	return a.Object(parent).HasProperty(a, key)
}

// OrdinaryGet reads an own data property, calls an own getter with receiver
// as this, or asks the prototype with the same receiver.
func OrdinaryGet(a *Agent, o *Object, key PropertyKey, receiver value.Value) (value.Value, error) {
	desc, found, err := o.GetOwnProperty(a, key)
	if err != nil {
		return value.Undefined, err
	}
	if !found {
		parent, err := o.GetPrototypeOf(a)
		if err != nil {
			return value.Undefined, err
		}
		if parent.IsNull() {
			return value.Undefined, nil
		}
		defer a.Heap.Drop(parent)
		return a.Object(parent).Get(a, key, receiver)
	}
	if desc.IsData() {
		// The snapshot's value is already owned; hand it over.
		return desc.Value, nil
	}
	defer desc.Drop(a.Heap)
	if desc.Get.IsUndefined() {
		return value.Undefined, nil
	}
	return Call(a, desc.Get, receiver, nil)
}

// OrdinarySet finds the property that governs key (own, inherited, or a
// fresh default when the chain runs out) and applies the write to receiver.
func OrdinarySet(a *Agent, o *Object, key PropertyKey, v, receiver value.Value) (bool, error) {
	ownDesc, found, err := o.GetOwnProperty(a, key)
	if err != nil {
		return false, err
	}
	if !found {
		parent, err := o.GetPrototypeOf(a)
		if err != nil {
			return false, err
		}
		if !parent.IsNull() {
			defer a.Heap.Drop(parent)
			return a.Object(parent).Set(a, key, v, receiver)
		}
		ownDesc = DataDescriptor(value.Undefined, true, true, true)
	}
	defer ownDesc.Drop(a.Heap)
	return setWithOwnDescriptor(a, key, v, receiver, ownDesc)
}

func setWithOwnDescriptor(a *Agent, key PropertyKey, v, receiver value.Value, ownDesc Descriptor) (bool, error) {
	if ownDesc.IsData() {
		if !ownDesc.Writable.IsTrue() {
			return false, nil
		}
		if !receiver.IsObject() {
			return false, nil
		}
		recv := a.Object(receiver)
		existing, found, err := recv.GetOwnProperty(a, key)
		if err != nil {
			return false, err
		}
		if found {
			defer existing.Drop(a.Heap)
			if existing.IsAccessor() || !existing.Writable.IsTrue() {
				return false, nil
			}
			return recv.DefineOwnProperty(a, key, Descriptor{Value: v, HasValue: true})
		}
		return recv.DefineOwnProperty(a, key, DataDescriptor(v, true, true, true))
	}

	if ownDesc.Set.IsUndefined() {
		return false, nil
	}
	result, err := Call(a, ownDesc.Set, receiver, []value.Value{v})
	if err != nil {
		return false, err
	}
	a.Heap.Drop(result)
	return true, nil
}

// OrdinaryDelete removes a configurable own property. An absent key counts
// as deleted.
func OrdinaryDelete(a *Agent, o *Object, key PropertyKey) (bool, error) {
	desc, found, err := o.GetOwnProperty(a, key)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	defer desc.Drop(a.Heap)
	if !desc.Configurable.IsTrue() {
		return false, nil
	}
	defer o.write()()
	o.props.Remove(a.Heap, key)
	return true, nil
}

// OrdinaryOwnPropertyKeys lists the table's keys in enumeration order with
// symbol keys cloned.
func OrdinaryOwnPropertyKeys(a *Agent, o *Object) ([]PropertyKey, error) {
	defer o.read()()
	keys := o.props.Keys()
	for _, k := range keys {
		if k.kind == KeySymbol {
			a.Heap.Clone(k.sym)
		}
	}
	return keys, nil
}
