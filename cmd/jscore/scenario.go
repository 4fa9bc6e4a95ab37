package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/chazu/jscore/gc"
	"github.com/chazu/jscore/object"
	"github.com/chazu/jscore/value"
)

// runScenario walks through the object model: data properties, a prototype
// cycle, an inherited getter, freezing, a string exotic and a collection.
// Two objects stay rooted afterwards so a snapshot has something to show.
func runScenario(a *object.Agent, collector *gc.Collector, w io.Writer) error {
	h := a.Heap
	x := object.StringKey("x")
	step := func(label string, format string, args ...any) {
		fmt.Fprintf(w, "%-34s %s\n", label, fmt.Sprintf(format, args...))
	}

	o := object.NewOrdinary(a, value.Null)
	if err := object.DefinePropertyOrThrow(a, o, x, object.DataDescriptor(value.FromInt32(1), true, true, true)); err != nil {
		return err
	}
	if err := object.SetProperty(a, o, x, value.FromInt32(2), true); err != nil {
		return err
	}
	v, err := object.GetProperty(a, o, x)
	if err != nil {
		return err
	}
	step("o.x = 2", "%s", h.Display(v))
	h.Drop(v)

	if err := object.DefinePropertyOrThrow(a, o, x, object.Descriptor{Configurable: object.False}); err != nil {
		return err
	}
	deleted, err := o.Delete(a, x)
	if err != nil {
		return err
	}
	v, err = object.GetProperty(a, o, x)
	if err != nil {
		return err
	}
	step("delete non-configurable o.x", "deleted=%t o.x=%s", deleted, h.Display(v))
	h.Drop(v)

	p := object.NewOrdinary(a, value.Null)
	c := object.NewOrdinary(a, p.Value())
	ok, err := p.SetPrototypeOf(a, c.Value())
	if err != nil {
		return err
	}
	step("p.[[Prototype]] = c (cycle)", "%t", ok)

	getter := object.NewNativeFunction(a, value.Null, "get double", 0, func(a *object.Agent, this value.Value, _ []value.Value) (value.Value, error) {
		if !this.IsObject() {
			return value.Undefined, &object.TypeError{Message: "double called on a non-object"}
		}
		n, err := object.GetProperty(a, a.Object(this), x)
		if err != nil {
			return value.Undefined, err
		}
		defer a.Heap.Drop(n)
		if !n.IsNumber() {
			return value.FromFloat64(math.NaN()), nil
		}
		return value.FromNumber(n.Number() * 2), nil
	})
	err = object.DefinePropertyOrThrow(a, p, object.StringKey("double"), object.AccessorDescriptor(getter.Value(), value.Undefined, false, true))
	h.Drop(getter.Value())
	if err != nil {
		return err
	}
	if ok, err = o.SetPrototypeOf(a, p.Value()); err != nil || !ok {
		return fmt.Errorf("setting o's prototype: %t, %v", ok, err)
	}
	v, err = object.GetProperty(a, o, object.StringKey("double"))
	if err != nil {
		return err
	}
	step("o.double via inherited getter", "%s", h.Display(v))
	h.Drop(v)

	if _, err := object.SetIntegrityLevel(a, o, object.Frozen); err != nil {
		return err
	}
	frozen, err := object.TestIntegrityLevel(a, o, object.Frozen)
	if err != nil {
		return err
	}
	err = object.SetProperty(a, o, x, value.FromInt32(3), true)
	step("freeze o, then o.x = 3", "frozen=%t err=%v", frozen, err)

	s := h.NewString("hi")
	so := object.NewStringObject(a, value.Null, s)
	h.Drop(s)
	keys, err := so.OwnPropertyKeys(a)
	if err != nil {
		return err
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Display(h)
	}
	object.ReleaseKeys(h, keys)
	step(`new String("hi") keys`, "[%s]", strings.Join(names, ", "))

	h.Drop(c.Value())
	h.Drop(so.Value())
	stats := collector.Collect()
	step("collect", "marked=%d swept=%d live=%d", stats.Marked, stats.Swept, stats.Live)
	return nil
}
