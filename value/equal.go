package value

import "math"

// SameValue compares a and b the way Object.is does: NaN equals NaN and
// +0 differs from -0. Strings and bigints compare by contents, so equal
// values in different records are the same; an int and a float with the
// same numeric value are the same.
func SameValue(h *Heap, a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		x, y := a.Number(), b.Number()
		if x != x && y != y {
			return true
		}
		if x == 0 && y == 0 {
			return math.Signbit(x) == math.Signbit(y)
		}
		return x == y
	}
	return sameNonNumber(h, a, b)
}

// SameValueZero is SameValue except that +0 and -0 are equal.
func SameValueZero(h *Heap, a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		x, y := a.Number(), b.Number()
		if x != x && y != y {
			return true
		}
		return x == y
	}
	return sameNonNumber(h, a, b)
}

// StrictEquals implements ===: NaN is unequal to itself and +0 equals -0.
func StrictEquals(h *Heap, a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		return a.Number() == b.Number()
	}
	return sameNonNumber(h, a, b)
}

func sameNonNumber(h *Heap, a, b Value) bool {
	if a == b {
		return true
	}
	ka, kb := a.Kind(), b.Kind()
	if ka != kb {
		return false
	}
	switch ka {
	case KindString:
		return h.StringOf(a) == h.StringOf(b)
	case KindBigInt:
		return h.BigIntOf(a).Cmp(h.BigIntOf(b)) == 0
	}
	// Symbols and objects are identities; specials are single words.
	return false
}
