package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Basis returns the orthonormal camera frame for a yaw and pitch. Yaw 0 and pitch 0 look down -Z
// with +Y up, matching the WGSL image program.
//
// Parameters:
//   - s: the camera state
//
// Returns:
//   - forward: unit view direction
//   - right: unit right vector, always horizontal
//   - up: unit up vector
func Basis(s State) (forward, right, up mgl32.Vec3) {
	sy, cy := math32.Sincos(s.Yaw)
	sp, cp := math32.Sincos(s.Pitch)
	forward = mgl32.Vec3{sy * cp, sp, -cy * cp}
	right = mgl32.Vec3{cy, 0, sy}
	up = right.Cross(forward)
	return forward, right, up
}
