package object

import (
	"fmt"

	"github.com/chazu/jscore/value"
)

// Abstract operations built on the internal methods. These are what an
// interpreter and built-ins call; they turn false results into TypeErrors
// where the language requires it.

// Call invokes f with this and args. f must be a callable object.
func Call(a *Agent, f, this value.Value, args []value.Value) (value.Value, error) {
	if !f.IsObject() {
		return value.Undefined, fmt.Errorf("%w: %s", ErrNotCallable, f.Kind())
	}
	return a.Object(f).Call(a, this, args)
}

// GetProperty reads key from o with o as the receiver.
func GetProperty(a *Agent, o *Object, key PropertyKey) (value.Value, error) {
	return o.Get(a, key, o.self)
}

// SetProperty writes key on o with o as the receiver. With throw set, a
// rejected write becomes a TypeError.
func SetProperty(a *Agent, o *Object, key PropertyKey, v value.Value, throw bool) error {
	ok, err := o.Set(a, key, v, o.self)
	if err != nil {
		return err
	}
	if !ok && throw {
		return typeErrorf("cannot assign to read only property %s", key.Display(a.Heap))
	}
	return nil
}

// HasOwnProperty reports whether o has an own property at key.
func HasOwnProperty(a *Agent, o *Object, key PropertyKey) (bool, error) {
	desc, found, err := o.GetOwnProperty(a, key)
	if err != nil || !found {
		return false, err
	}
	desc.Drop(a.Heap)
	return true, nil
}

// CreateDataProperty defines key as a writable, enumerable, configurable
// data property holding v.
func CreateDataProperty(a *Agent, o *Object, key PropertyKey, v value.Value) (bool, error) {
	return o.DefineOwnProperty(a, key, DataDescriptor(v, true, true, true))
}

// CreateDataPropertyOrThrow is CreateDataProperty with rejection as a
// TypeError.
func CreateDataPropertyOrThrow(a *Agent, o *Object, key PropertyKey, v value.Value) error {
	ok, err := CreateDataProperty(a, o, key, v)
	if err != nil {
		return err
	}
	if !ok {
		return typeErrorf("cannot define property %s", key.Display(a.Heap))
	}
	return nil
}

// DefinePropertyOrThrow is DefineOwnProperty with rejection as a TypeError.
func DefinePropertyOrThrow(a *Agent, o *Object, key PropertyKey, desc Descriptor) error {
	ok, err := o.DefineOwnProperty(a, key, desc)
	if err != nil {
		return err
	}
	if !ok {
		return typeErrorf("cannot redefine property %s", key.Display(a.Heap))
	}
	return nil
}

// DeletePropertyOrThrow is Delete with rejection as a TypeError.
func DeletePropertyOrThrow(a *Agent, o *Object, key PropertyKey) error {
	ok, err := o.Delete(a, key)
	if err != nil {
		return err
	}
	if !ok {
		return typeErrorf("cannot delete property %s", key.Display(a.Heap))
	}
	return nil
}

// GetMethod reads key from o and returns it if callable, undefined if it is
// nullish, and a TypeError otherwise. The result is owned.
func GetMethod(a *Agent, o *Object, key PropertyKey) (value.Value, error) {
	fn, err := GetProperty(a, o, key)
	if err != nil {
		return value.Undefined, err
	}
	if fn.IsNullish() {
		return value.Undefined, nil
	}
	if !fn.IsObject() || !a.Object(fn).IsCallable() {
		a.Heap.Drop(fn)
		return value.Undefined, typeErrorf("property %s is not a function", key.Display(a.Heap))
	}
	return fn, nil
}

// IntegrityLevel selects what SetIntegrityLevel locks down.
type IntegrityLevel uint8

const (
	Sealed IntegrityLevel = iota
	Frozen
)

func (l IntegrityLevel) String() string {
	if l == Frozen {
		return "frozen"
	}
	return "sealed"
}

// SetIntegrityLevel prevents extensions and makes every own property
// non-configurable, and for Frozen also non-writable.
func SetIntegrityLevel(a *Agent, o *Object, level IntegrityLevel) (bool, error) {
	ok, err := o.PreventExtensions(a)
	if err != nil || !ok {
		return false, err
	}
	keys, err := o.OwnPropertyKeys(a)
	if err != nil {
		return false, err
	}
	defer ReleaseKeys(a.Heap, keys)

	for _, k := range keys {
		desc := Descriptor{Configurable: False}
		if level == Frozen {
			current, found, err := o.GetOwnProperty(a, k)
			if err != nil {
				return false, err
			}
			if !found {
				continue
			}
			if current.IsData() {
				desc.Writable = False
			}
			current.Drop(a.Heap)
		}
		if err := DefinePropertyOrThrow(a, o, k, desc); err != nil {
			return false, err
		}
	}
	return true, nil
}

// TestIntegrityLevel reports whether o is sealed or frozen.
func TestIntegrityLevel(a *Agent, o *Object, level IntegrityLevel) (bool, error) {
	extensible, err := o.IsExtensible(a)
	if err != nil || extensible {
		return false, err
	}
	keys, err := o.OwnPropertyKeys(a)
	if err != nil {
		return false, err
	}
	defer ReleaseKeys(a.Heap, keys)

	for _, k := range keys {
		current, found, err := o.GetOwnProperty(a, k)
		if err != nil {
			return false, err
		}
		if !found {
			continue
		}
		current.Drop(a.Heap)
		if current.Configurable.IsTrue() {
			return false, nil
		}
		if level == Frozen && current.IsData() && current.Writable.IsTrue() {
			return false, nil
		}
	}
	return true, nil
}

// EnumerableOwnKeys returns the string and index keys of o's enumerable own
// properties in enumeration order.
func EnumerableOwnKeys(a *Agent, o *Object) ([]PropertyKey, error) {
	keys, err := o.OwnPropertyKeys(a)
	if err != nil {
		return nil, err
	}
	defer ReleaseKeys(a.Heap, keys)

	var out []PropertyKey
	for _, k := range keys {
		if k.IsSymbol() {
			continue
		}
		desc, found, err := o.GetOwnProperty(a, k)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		desc.Drop(a.Heap)
		if desc.Enumerable.IsTrue() {
			out = append(out, k)
		}
	}
	return out, nil
}

// Field names used by FromPropertyDescriptor and ToPropertyDescriptor.
var (
	keyValue        = StringKey("value")
	keyWritable     = StringKey("writable")
	keyGet          = StringKey("get")
	keySet          = StringKey("set")
	keyEnumerable   = StringKey("enumerable")
	keyConfigurable = StringKey("configurable")
)

// FromPropertyDescriptor builds a plain object with proto as its prototype
// and one property per present descriptor field. The caller owns one root
// on the result.
func FromPropertyDescriptor(a *Agent, desc Descriptor, proto value.Value) (*Object, error) {
	obj := NewOrdinary(a, proto)
	fields := []struct {
		key     PropertyKey
		present bool
		v       value.Value
	}{
		{keyValue, desc.HasValue, desc.Value},
		{keyWritable, desc.Writable.IsSet(), value.FromBool(desc.Writable.IsTrue())},
		{keyGet, desc.HasGet, desc.Get},
		{keySet, desc.HasSet, desc.Set},
		{keyEnumerable, desc.Enumerable.IsSet(), value.FromBool(desc.Enumerable.IsTrue())},
		{keyConfigurable, desc.Configurable.IsSet(), value.FromBool(desc.Configurable.IsTrue())},
	}
	for _, f := range fields {
		if !f.present {
			continue
		}
		if err := CreateDataPropertyOrThrow(a, obj, f.key, f.v); err != nil {
			a.Heap.Drop(obj.self)
			return nil, err
		}
	}
	return obj, nil
}

// ToPropertyDescriptor reads a descriptor out of an object's value, writable,
// get, set, enumerable and configurable properties. The returned descriptor
// owns its values.
func ToPropertyDescriptor(a *Agent, v value.Value) (Descriptor, error) {
	if !v.IsObject() {
		return Descriptor{}, typeErrorf("property description must be an object, got %s", v.Kind())
	}
	obj := a.Object(v)

	var desc Descriptor
	read := func(key PropertyKey) (value.Value, bool, error) {
		has, err := obj.HasProperty(a, key)
		if err != nil || !has {
			return value.Undefined, false, err
		}
		got, err := obj.Get(a, key, v)
		if err != nil {
			return value.Undefined, false, err
		}
		return got, true, nil
	}
	readFlag := func(key PropertyKey, dst *Flag) error {
		got, ok, err := read(key)
		if err != nil || !ok {
			return err
		}
		*dst = FlagOf(value.ToBoolean(a.Heap, got))
		a.Heap.Drop(got)
		return nil
	}
	fail := func(err error) (Descriptor, error) {
		desc.Drop(a.Heap)
		return Descriptor{}, err
	}

	if err := readFlag(keyEnumerable, &desc.Enumerable); err != nil {
		return fail(err)
	}
	if err := readFlag(keyConfigurable, &desc.Configurable); err != nil {
		return fail(err)
	}
	got, ok, err := read(keyValue)
	if err != nil {
		return fail(err)
	}
	if ok {
		desc.Value, desc.HasValue = got, true
	}
	if err := readFlag(keyWritable, &desc.Writable); err != nil {
		return fail(err)
	}

	for _, acc := range []struct {
		key PropertyKey
		dst *value.Value
		has *bool
	}{
		{keyGet, &desc.Get, &desc.HasGet},
		{keySet, &desc.Set, &desc.HasSet},
	} {
		got, ok, err := read(acc.key)
		if err != nil {
			return fail(err)
		}
		if !ok {
			continue
		}
		*acc.dst, *acc.has = got, true
		if !got.IsUndefined() && !(got.IsObject() && a.Object(got).IsCallable()) {
			return fail(typeErrorf("%s accessor is not a function", acc.key.Name()))
		}
	}

	if desc.IsData() && desc.IsAccessor() {
		return fail(typeErrorf("invalid property descriptor: cannot both specify accessors and a value or writable attribute"))
	}
	return desc, nil
}
