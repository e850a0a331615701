package march

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Power is the Mandelbulb exponent.
	Power float32 = 8

	// Bailout is the escape radius of the fractal iteration.
	Bailout float32 = 2

	// WarpAmplitude, WarpFrequency and WarpSpeed shape the mode 3 sine warp.
	WarpAmplitude float32 = 0.07
	WarpFrequency float32 = 3.5
	WarpSpeed     float32 = 0.6
)

// DistanceEstimate evaluates the power-8 Mandelbulb distance estimate at p.
// trap is the minimum squared orbit radius reached, used for coloring.
// The result can be non-finite at the exact origin, callers treat that as a miss.
//
// Parameters:
//   - p: the sample point
//   - iters: the iteration bound, at least 1
//
// Returns:
//   - dist: conservative distance to the surface
//   - trap: orbit trap value in [0, Bailout^2]
func DistanceEstimate(p mgl32.Vec3, iters int) (dist, trap float32) {
	z := p
	dr := float32(1)
	r := z.Len()
	trap = r * r
	for range iters {
		if r > Bailout {
			break
		}
		theta := math32.Acos(clampUnit(z[1]/r)) * Power
		phi := math32.Atan2(z[2], z[0]) * Power
		dr = math32.Pow(r, Power-1)*Power*dr + 1

		zr := math32.Pow(r, Power)
		st, ct := math32.Sincos(theta)
		sp, cp := math32.Sincos(phi)
		z = mgl32.Vec3{st * cp, ct, st * sp}.Mul(zr).Add(p)

		r = z.Len()
		trap = min(trap, r*r)
	}
	return 0.5 * math32.Log(r) * r / dr, trap
}

// Warp applies the component-wise sine warp mode 3 feeds into the distance estimate.
//
// Parameters:
//   - p: the sample point
//   - time: elapsed seconds, animates the warp
//
// Returns:
//   - mgl32.Vec3: the warped point
func Warp(p mgl32.Vec3, time float32) mgl32.Vec3 {
	phase := time * WarpSpeed
	return mgl32.Vec3{
		p[0] + WarpAmplitude*math32.Sin(p[1]*WarpFrequency+phase),
		p[1] + WarpAmplitude*math32.Sin(p[2]*WarpFrequency+phase*1.3),
		p[2] + WarpAmplitude*math32.Sin(p[0]*WarpFrequency+phase*0.7),
	}
}

func clampUnit(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
