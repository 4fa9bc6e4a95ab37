package object

import (
	"github.com/chazu/jscore/value"
)

// NativeFunc implements a callable object in Go. The result is owned by the
// caller; this and args are borrowed.
type NativeFunc func(a *Agent, this value.Value, args []value.Value) (value.Value, error)

// NativeConstructorFunc implements Construct in Go.
type NativeConstructorFunc func(a *Agent, args []value.Value, newTarget value.Value) (value.Value, error)

// NativeFunction is the payload of a function object backed by Go code.
type NativeFunction struct {
	Name      string
	Fn        NativeFunc
	Construct NativeConstructorFunc
}

var (
	functionMethods = NewMethodTable("function", MethodTable{
		Call: callNative,
	})
	constructorMethods = NewMethodTable("constructor", MethodTable{
		Call:      callNative,
		Construct: constructNative,
	})
)

func callNative(a *Agent, o *Object, this value.Value, args []value.Value) (value.Value, error) {
	nf, err := As[*NativeFunction](o)
	if err != nil {
		return value.Undefined, err
	}
	return nf.Fn(a, this, args)
}

func constructNative(a *Agent, o *Object, args []value.Value, newTarget value.Value) (value.Value, error) {
	nf, err := As[*NativeFunction](o)
	if err != nil {
		return value.Undefined, err
	}
	return nf.Construct(a, args, newTarget)
}

// NewNativeFunction creates a callable object with own "length" and "name"
// properties. The caller owns one root on the result.
func NewNativeFunction(a *Agent, proto value.Value, name string, length int, fn NativeFunc) *Object {
	if fn == nil {
		panic("NewNativeFunction: nil function")
	}
	return newFunction(a, functionMethods, proto, length, &NativeFunction{Name: name, Fn: fn})
}

// NewNativeConstructor creates a callable, constructible object.
func NewNativeConstructor(a *Agent, proto value.Value, name string, length int, fn NativeFunc, ctor NativeConstructorFunc) *Object {
	if fn == nil || ctor == nil {
		panic("NewNativeConstructor: nil function")
	}
	return newFunction(a, constructorMethods, proto, length, &NativeFunction{Name: name, Fn: fn, Construct: ctor})
}

func newFunction(a *Agent, methods *MethodTable, proto value.Value, length int, nf *NativeFunction) *Object {
	o := New(a, methods, proto, nf)

	n, ok := value.TryFromInt64(int64(length))
	if !ok {
		n = value.FromFloat64(float64(length))
	}
	name := a.Heap.NewString(nf.Name)
	defer a.Heap.Drop(name)

	o.WithTable(func(t *Table) {
		t.Put(a.Heap, StringKey("length"), DataDescriptor(n, false, false, true))
		t.Put(a.Heap, StringKey("name"), DataDescriptor(name, false, false, true))
	})
	return o
}
