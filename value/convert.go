package value

// ToBoolean converts v to a bool the way a condition would.
func ToBoolean(h *Heap, v Value) bool {
	switch v.Kind() {
	case KindUndefined, KindNull:
		return false
	case KindBoolean:
		return v.Bool()
	case KindInt:
		return v.Int32() != 0
	case KindFloat:
		f := v.Float64()
		return f == f && f != 0
	case KindString:
		return h.StringOf(v) != ""
	case KindBigInt:
		return h.BigIntOf(v).Sign() != 0
	default:
		return true
	}
}
