package gc

import (
	"testing"

	"github.com/chazu/jscore/object"
	"github.com/chazu/jscore/value"
)

func TestCollectFreesUnreachable(t *testing.T) {
	h := value.NewHeap(0)
	a := object.NewAgent(h, 0)
	c := New(h, 0)

	root := object.NewOrdinary(a, value.Null)
	child := object.NewOrdinary(a, value.Null)
	object.CreateDataProperty(a, root, object.StringKey("child"), child.Value())
	h.Drop(child.Value())

	orphan := object.NewOrdinary(a, value.Null)
	s := h.NewString("owned by orphan")
	object.CreateDataProperty(a, orphan, object.StringKey("s"), s)
	h.Drop(s)
	h.Drop(orphan.Value())

	stats := c.Collect()
	if stats.Marked != 2 || stats.Swept != 1 {
		t.Errorf("stats = %+v, want 2 marked, 1 swept", stats)
	}
	if !h.IsLive(child.Value()) {
		t.Error("reachable child was swept")
	}
	if h.IsLive(orphan.Value()) {
		t.Error("unreachable orphan survived")
	}
	if h.IsLive(s) {
		t.Error("string held only by the orphan survived")
	}
	if c.SweepCount() != 1 || c.LastStats() != stats {
		t.Error("sweep bookkeeping is wrong")
	}
}

func TestCollectHandlesCycles(t *testing.T) {
	h := value.NewHeap(0)
	a := object.NewAgent(h, 0)
	c := New(h, 0)

	x := object.NewOrdinary(a, value.Null)
	y := object.NewOrdinary(a, x.Value())
	object.CreateDataProperty(a, x, object.StringKey("y"), y.Value())

	h.Drop(y.Value())
	c.Collect()
	if !h.IsLive(y.Value()) {
		t.Fatal("y is reachable through x and must survive")
	}

	h.Drop(x.Value())
	stats := c.Collect()
	if stats.Swept != 2 || stats.Live != 0 {
		t.Errorf("stats = %+v, want the whole cycle swept", stats)
	}
}

func TestPrototypeKeepsAlive(t *testing.T) {
	h := value.NewHeap(0)
	a := object.NewAgent(h, 0)
	c := New(h, 0)

	proto := object.NewOrdinary(a, value.Null)
	obj := object.NewOrdinary(a, proto.Value())
	h.Drop(proto.Value())

	c.Collect()
	if !h.IsLive(proto.Value()) {
		t.Error("prototype of a rooted object was swept")
	}
	h.Drop(obj.Value())
	c.Collect()
	if h.IsLive(proto.Value()) {
		t.Error("prototype outlived its only child")
	}
}

func TestPinning(t *testing.T) {
	h := value.NewHeap(0)
	a := object.NewAgent(h, 0)
	c := New(h, 0)

	o := object.NewOrdinary(a, value.Null)
	h.Drop(o.Value())
	c.Pin(o.Value())
	c.Pin(o.Value())

	c.Collect()
	c.Unpin(o.Value())
	c.Collect()
	if !h.IsLive(o.Value()) {
		t.Fatal("object pinned twice was swept after one Unpin")
	}
	c.Unpin(o.Value())
	c.Collect()
	if h.IsLive(o.Value()) {
		t.Error("unpinned object survived")
	}
}

func TestMaybeCollectThreshold(t *testing.T) {
	h := value.NewHeap(0)
	a := object.NewAgent(h, 0)
	c := New(h, 3)

	h.Drop(object.NewOrdinary(a, value.Null).Value())
	if c.MaybeCollect() != nil {
		t.Error("collected below threshold")
	}
	h.Drop(object.NewOrdinary(a, value.Null).Value())
	h.Drop(object.NewOrdinary(a, value.Null).Value())
	stats := c.MaybeCollect()
	if stats == nil || stats.Swept != 3 {
		t.Fatalf("MaybeCollect = %+v, want 3 swept", stats)
	}
	if h.AllocsSinceSweep() != 0 {
		t.Error("sweep counter not reset")
	}

	c.SetEnabled(false)
	for i := 0; i < 5; i++ {
		h.Drop(object.NewOrdinary(a, value.Null).Value())
	}
	if c.MaybeCollect() != nil {
		t.Error("disabled collector ran")
	}
}
