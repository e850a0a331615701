package export

// MaxSamples bounds the per-pixel sample count of an export.
const MaxSamples = 32

// Halton returns the radical inverse of index in the given base, a value in [0, 1).
//
// Parameters:
//   - index: the sequence index, starting at 1
//   - base: the prime base
//
// Returns:
//   - float32: the sequence value
func Halton(index, base int) float32 {
	if base < 2 {
		return 0
	}
	var result float64
	f := 1.0
	for i := index; i > 0; i /= base {
		f /= float64(base)
		result += f * float64(i%base)
	}
	return float32(result)
}

// Jitter returns the sub-pixel offset for one sample, centered on the pixel. A single-sample
// export is never jittered so it matches the live renderer exactly.
//
// Parameters:
//   - sample: the zero-based sample index
//   - count: the total number of samples
//
// Returns:
//   - jx: horizontal offset in pixels, [-0.5, 0.5)
//   - jy: vertical offset in pixels, [-0.5, 0.5)
func Jitter(sample, count int) (jx, jy float32) {
	if count <= 1 {
		return 0, 0
	}
	return Halton(sample+1, 2) - 0.5, Halton(sample+1, 3) - 0.5
}

// ClampSamples coerces a requested sample count into [1, MaxSamples].
func ClampSamples(n int) int {
	return min(max(n, 1), MaxSamples)
}
