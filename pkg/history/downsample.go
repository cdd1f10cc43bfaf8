package history

// Downsample decimates values to at most maxPoints for display.
// It reuses dst when it has enough capacity and returns the result.
func Downsample[T any](dst []T, values []T, maxPoints int) []T {
	if maxPoints <= 0 || len(values) <= maxPoints {
		if cap(dst) >= len(values) {
			dst = dst[:len(values)]
			copy(dst, values)
			return dst
		}
		result := make([]T, len(values))
		copy(result, values)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]T, 0, maxPoints)
	}

	step := float64(len(values)) / float64(maxPoints)
	for i := range maxPoints {
		idx := int(float64(i) * step)
		if idx < len(values) {
			dst = append(dst, values[idx])
		}
	}

	return dst
}
