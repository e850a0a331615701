package march

import (
	"github.com/Carmen-Shannon/oxy-bulb/common"
	"github.com/Carmen-Shannon/oxy-bulb/engine/settings"
	"github.com/go-gl/mathgl/mgl32"
)

// Hit is the outcome of marching one ray.
type Hit struct {
	Hit   bool
	T     float32 // distance travelled along the ray
	Steps int     // steps taken, never more than the step budget
	Trap  float32 // orbit trap at the last evaluation
	Point mgl32.Vec3
}

// Field evaluates the scene distance at p for the given settings: the Mandelbulb estimate,
// with mode 3 warping p first.
//
// Parameters:
//   - p: the sample point
//   - s: the render settings
//   - time: elapsed seconds
//
// Returns:
//   - dist: the distance estimate
//   - trap: the orbit trap
func Field(p mgl32.Vec3, s settings.RenderSettings, time float32) (dist, trap float32) {
	if s.Mode == settings.ModeWarped {
		p = Warp(p, time)
	}
	return DistanceEstimate(p, s.IterBudget())
}

// March sphere-traces a ray from ro along the unit direction rd. The loop stops at the first of
// t > MaxDist, the settings step budget, or HardStepCap. A non-finite distance ends the ray as a miss.
//
// Parameters:
//   - ro: ray origin
//   - rd: unit ray direction
//   - s: the render settings
//   - time: elapsed seconds
//
// Returns:
//   - Hit: the march result
func March(ro, rd mgl32.Vec3, s settings.RenderSettings, time float32) Hit {
	return march(ro, rd, s, func(p mgl32.Vec3) (float32, float32) {
		return Field(p, s, time)
	})
}

// distanceFunc is a distance field with its orbit trap.
type distanceFunc func(p mgl32.Vec3) (dist, trap float32)

func march(ro, rd mgl32.Vec3, s settings.RenderSettings, field distanceFunc) Hit {
	budget := s.StepBudget()
	var h Hit
	for h.Steps < budget {
		p := ro.Add(rd.Mul(h.T))
		d, trap := field(p)
		h.Steps++
		if !common.IsFinite(d) || !common.IsFinite(trap) {
			return Hit{Steps: h.Steps, T: h.T}
		}
		h.Trap = trap
		if d < s.MinHit {
			h.Hit = true
			h.Point = p
			return h
		}
		h.T += d
		if h.T > s.MaxDist {
			break
		}
	}
	return h
}

// Normal estimates the surface normal at p by central differences of size eps.
// Falls back to -rd when the gradient is degenerate.
//
// Parameters:
//   - p: the surface point
//   - rd: the incoming ray direction
//   - s: the render settings
//   - time: elapsed seconds
//
// Returns:
//   - mgl32.Vec3: the unit normal
func Normal(p, rd mgl32.Vec3, s settings.RenderSettings, time float32) mgl32.Vec3 {
	e := s.Eps()
	dx := mgl32.Vec3{e, 0, 0}
	dy := mgl32.Vec3{0, e, 0}
	dz := mgl32.Vec3{0, 0, e}
	sample := func(q mgl32.Vec3) float32 {
		d, _ := Field(q, s, time)
		return d
	}
	n := mgl32.Vec3{
		sample(p.Add(dx)) - sample(p.Sub(dx)),
		sample(p.Add(dy)) - sample(p.Sub(dy)),
		sample(p.Add(dz)) - sample(p.Sub(dz)),
	}
	l := n.Len()
	if !common.IsFinite(l) || l == 0 {
		return rd.Mul(-1)
	}
	return n.Mul(1 / l)
}
