package march

import (
	"github.com/Carmen-Shannon/oxy-bulb/engine/camera"
	"github.com/Carmen-Shannon/oxy-bulb/engine/settings"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Frame carries the per-frame values both programs read next to the camera state.
type Frame struct {
	Width   int
	Height  int
	Time    float32 // elapsed seconds
	Delta   float32 // clamped frame delta in seconds
	Index   uint64  // frame counter
	JitterX float32 // sub-pixel offset in pixels, [-0.5, 0.5)
	JitterY float32
}

// Ray returns the primary ray through pixel (x, y), rows counted from the top like a framebuffer.
//
// Parameters:
//   - state: the camera state for this frame
//   - s: the render settings (FovOverride wins when > 0)
//   - f: the frame values, including jitter
//   - x: pixel column
//   - y: pixel row from the top
//
// Returns:
//   - ro: the ray origin
//   - rd: the unit ray direction
func Ray(state camera.State, s settings.RenderSettings, f Frame, x, y int) (ro, rd mgl32.Vec3) {
	w := float32(max(f.Width, 1))
	h := float32(max(f.Height, 1))
	px := float32(x) + 0.5 + f.JitterX
	py := float32(y) + 0.5 + f.JitterY

	u := (2*px - w) / h
	v := (h - 2*py) / h

	fov := state.EffectiveFOV(s.FovOverride)
	focal := 1 / math32.Tan(fov*0.5)

	forward, right, up := camera.Basis(state)
	rd = forward.Mul(focal).Add(right.Mul(u)).Add(up.Mul(v)).Normalize()
	ro = mgl32.Vec3{state.Position[0], state.Position[1], state.Position[2]}
	return ro, rd
}

// Render computes the linear color of one pixel. This is the CPU form of the image program and
// the exporter's renderer.
//
// Parameters:
//   - state: the camera state for this frame
//   - s: the render settings
//   - f: the frame values
//   - x: pixel column
//   - y: pixel row from the top
//
// Returns:
//   - mgl32.Vec3: linear RGB
func Render(state camera.State, s settings.RenderSettings, f Frame, x, y int) mgl32.Vec3 {
	ro, rd := Ray(state, s, f, x, y)
	h := March(ro, rd, s, f.Time)
	return Shade(h, rd, s, f.Time)
}
