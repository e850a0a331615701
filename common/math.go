package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// Clamp limits v to the closed range [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float32) float32 {
	return Clamp(v, 0, 1)
}

// Mix linearly interpolates between a and b by t (GLSL/WGSL mix).
func Mix(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Smoothstep performs Hermite interpolation between edge0 and edge1, matching the WGSL builtin.
//
// Parameters:
//   - edge0: lower edge
//   - edge1: upper edge
//   - x: the value to interpolate
//
// Returns:
//   - float32: 0 below edge0, 1 above edge1, smooth in between
func Smoothstep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// WrapAngle wraps an angle in radians into (-Pi, Pi].
//
// Parameters:
//   - a: the angle in radians
//
// Returns:
//   - float32: the equivalent angle in (-Pi, Pi]
func WrapAngle(a float32) float32 {
	if a > -math32.Pi && a <= math32.Pi {
		return a
	}
	a = math32.Mod(a+math32.Pi, 2*math32.Pi)
	if a <= 0 {
		a += 2 * math32.Pi
	}
	return a - math32.Pi
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}
