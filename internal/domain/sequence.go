package domain

// MoveItem returns a copy of items with the element at from relocated to index to.
// Out-of-range source indexes return an unchanged copy; the destination is clamped.
func MoveItem[T any](items []T, from, to int) []T {
	out := make([]T, len(items))
	copy(out, items)
	if from < 0 || from >= len(out) {
		return out
	}
	to = max(0, min(to, len(out)-1))
	if from == to {
		return out
	}
	item := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = item
	return out
}
