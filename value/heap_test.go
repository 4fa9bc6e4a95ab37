package value

import (
	"math"
	"math/big"
	"testing"
)

type countingRecord struct {
	children []Value
	released int
}

func (r *countingRecord) Trace(visit func(Value)) {
	for _, c := range r.children {
		visit(c)
	}
}

func (r *countingRecord) Release(h *Heap) {
	r.released++
	for _, c := range r.children {
		h.Unlink(c)
	}
}

func TestCloneDropFreesExactlyOnce(t *testing.T) {
	h := NewHeap(4)
	frees := make(map[Value]int)
	h.SetFreeHook(func(v Value, _ Kind) { frees[v]++ })

	constructors := map[string]func() Value{
		"string": func() Value { return h.NewString("hello") },
		"bigint": func() Value { return h.NewBigIntFromInt64(1 << 40) },
		"symbol": func() Value { return h.NewSymbol("tag") },
	}

	for name, mk := range constructors {
		v := mk()
		const n = 5
		for i := 0; i < n; i++ {
			h.Clone(v)
		}
		if got := h.RefCount(v); got != n+1 {
			t.Errorf("%s: RefCount after %d clones = %d, want %d", name, n, got, n+1)
		}
		for i := 0; i < n; i++ {
			h.Drop(v)
		}
		if frees[v] != 0 {
			t.Errorf("%s: freed while an owner remained", name)
		}
		h.Drop(v)
		if frees[v] != 1 {
			t.Errorf("%s: freed %d times, want 1", name, frees[v])
		}
		if h.RefCount(v) != 0 || h.IsLive(v) {
			t.Errorf("%s: still live after last drop", name)
		}

		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("%s: dropping a freed handle should panic", name)
				}
			}()
			h.Drop(v)
		}()
	}

	if st := h.Stats(); st.Live != 0 || st.Allocs != st.Frees {
		t.Errorf("Stats = %+v, want everything freed", st)
	}
}

func TestObjectRootsWaitForCollector(t *testing.T) {
	h := NewHeap(0)
	rec := &countingRecord{}
	obj := h.AllocObject(rec)

	h.Clone(obj)
	h.Drop(obj)
	h.Drop(obj)

	if !h.IsLive(obj) {
		t.Fatal("objects must not be freed by Drop")
	}
	if h.RefCount(obj) != 0 {
		t.Errorf("root count = %d, want 0", h.RefCount(obj))
	}

	h.FreeObject(obj)
	if rec.released != 1 {
		t.Errorf("released %d times, want 1", rec.released)
	}
	if h.IsLive(obj) {
		t.Error("object still live after FreeObject")
	}
}

func TestFreeObjectWithRootsPanics(t *testing.T) {
	h := NewHeap(0)
	obj := h.AllocObject(&countingRecord{})
	defer func() {
		if r := recover(); r == nil {
			t.Error("FreeObject on a rooted object should panic")
		}
	}()
	h.FreeObject(obj)
}

func TestReleaseUnlinksEdges(t *testing.T) {
	h := NewHeap(0)
	s := h.NewString("edge")
	rec := &countingRecord{children: []Value{h.Link(s)}}
	obj := h.AllocObject(rec)
	h.Drop(s)

	if !h.IsLive(s) {
		t.Fatal("linked string freed while the edge remains")
	}
	h.Drop(obj)
	h.FreeObject(obj)
	if h.IsLive(s) {
		t.Error("string survived its last edge")
	}
}

func TestStaleHandleAfterReuse(t *testing.T) {
	h := NewHeap(0)
	a := h.NewString("a")
	h.Drop(a)
	b := h.NewString("b")

	if a == b {
		t.Fatal("recycled slot produced the same word")
	}
	if a.Handle()&handleIndexMask != b.Handle()&handleIndexMask {
		t.Fatal("expected slot reuse")
	}
	defer func() {
		if r := recover(); r == nil {
			t.Error("resolving a stale handle should panic")
		}
	}()
	h.StringOf(a)
}

func TestGenerationWrapRetiresSlot(t *testing.T) {
	h := NewHeap(0)
	stale := h.NewString("old")
	h.Drop(stale)

	// LIFO reuse keeps landing in the same slot until its generations run out.
	for i := 0; i < 1<<16; i++ {
		h.Drop(h.NewString("new"))
	}
	fresh := h.NewString("new")
	defer h.Drop(fresh)

	if fresh == stale {
		t.Fatalf("fresh word %#x equals a stale one", fresh.Bits())
	}
	if h.IsLive(stale) {
		t.Error("stale handle resolves after the generation space was exhausted")
	}
	if got := h.Stats().Retired; got != 1 {
		t.Errorf("retired slots = %d, want 1", got)
	}
	if fresh.Handle()&handleIndexMask == stale.Handle()&handleIndexMask {
		t.Error("retired slot was reused")
	}
}

func TestAccessors(t *testing.T) {
	h := NewHeap(0)

	s := h.NewString("héllo")
	if got := h.StringOf(s); got != "héllo" {
		t.Errorf("StringOf = %q", got)
	}
	if got := len(h.StringRecordOf(s).CodeUnits()); got != 5 {
		t.Errorf("code units = %d, want 5", got)
	}

	emoji := h.NewString("a😀")
	if got := len(h.StringRecordOf(emoji).CodeUnits()); got != 3 {
		t.Errorf("surrogate pair code units = %d, want 3", got)
	}
	if got := DecodeUTF16(EncodeUTF16("a😀")); got != "a😀" {
		t.Errorf("UTF-16 round trip = %q", got)
	}

	n := new(big.Int).Lsh(big.NewInt(1), 100)
	bi := h.NewBigInt(n)
	n.SetInt64(0)
	if h.BigIntOf(bi).BitLen() != 101 {
		t.Error("bigint record should hold a copy")
	}

	sym := h.NewSymbol("id")
	if got := h.Display(sym); got != "Symbol(id)" {
		t.Errorf("Display(symbol) = %q", got)
	}
	if got := h.Display(h.NewAnonymousSymbol()); got != "Symbol()" {
		t.Errorf("Display(anonymous) = %q", got)
	}
	if got := h.Display(s); got != `"héllo"` {
		t.Errorf("Display(string) = %q", got)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("StringOf on a symbol should panic")
		}
	}()
	h.StringOf(sym)
}

func TestSameValue(t *testing.T) {
	h := NewHeap(0)
	s1, s2 := h.NewString("x"), h.NewString("x")
	b1, b2 := h.NewBigIntFromInt64(9), h.NewBigIntFromInt64(9)
	sym1, sym2 := h.NewSymbol("s"), h.NewSymbol("s")
	negZero := FromFloat64(math.Copysign(0, -1))

	tests := []struct {
		name                      string
		a, b                      Value
		same, sameZero, strictEqs bool
	}{
		{"int vs float", FromInt32(5), FromFloat64(5), true, true, true},
		{"NaN", CanonicalNaN, CanonicalNaN, true, true, false},
		{"+0 vs -0", FromInt32(0), negZero, false, true, true},
		{"strings by contents", s1, s2, true, true, true},
		{"bigints by contents", b1, b2, true, true, true},
		{"symbols by identity", sym1, sym2, false, false, false},
		{"symbol with itself", sym1, sym1, true, true, true},
		{"undefined vs null", Undefined, Null, false, false, false},
		{"string vs number", s1, FromInt32(1), false, false, false},
	}
	for _, tt := range tests {
		if got := SameValue(h, tt.a, tt.b); got != tt.same {
			t.Errorf("%s: SameValue = %v, want %v", tt.name, got, tt.same)
		}
		if got := SameValueZero(h, tt.a, tt.b); got != tt.sameZero {
			t.Errorf("%s: SameValueZero = %v, want %v", tt.name, got, tt.sameZero)
		}
		if got := StrictEquals(h, tt.a, tt.b); got != tt.strictEqs {
			t.Errorf("%s: StrictEquals = %v, want %v", tt.name, got, tt.strictEqs)
		}
	}
}
