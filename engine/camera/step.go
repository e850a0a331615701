package camera

import (
	"github.com/Carmen-Shannon/oxy-bulb/common"
	"github.com/Carmen-Shannon/oxy-bulb/engine/input"
	"github.com/go-gl/mathgl/mgl32"
)

// ClampDelta bounds a frame delta in seconds to [MinDelta, MaxDelta]. Non-finite input maps to MinDelta.
//
// Parameters:
//   - d: the raw frame delta
//
// Returns:
//   - float32: the delta used for integration
func ClampDelta(d float32) float32 {
	if !common.IsFinite(d) {
		return MinDelta
	}
	return common.Clamp(d, MinDelta, MaxDelta)
}

// Step advances the camera by one frame. It is a pure function of its arguments: frame 0 seeds
// DefaultState, later frames integrate turn, zoom and move input over the clamped delta.
// With no control held and no look delta the previous state is returned unchanged.
//
// Parameters:
//   - prev: the state read this frame
//   - sig: the consumed input signal
//   - delta: the raw frame delta in seconds
//   - frame: the frame index, 0 on the first frame
//   - t: the control rates
//
// Returns:
//   - State: the state to write this frame
func Step(prev State, sig input.Signal, delta float32, frame uint64, t Tuning) State {
	if frame == 0 {
		return DefaultState()
	}
	next := prev
	dt := ClampDelta(delta)

	turnYaw := sig.Axis(common.KeyArrowRight, common.KeyArrowLeft)
	turnPitch := sig.Axis(common.KeyArrowUp, common.KeyArrowDown)
	if turnYaw != 0 || sig.LookYaw != 0 {
		next.Yaw = common.WrapAngle(prev.Yaw + turnYaw*t.TurnSpeed*dt + sig.LookYaw)
	}
	if turnPitch != 0 || sig.LookPitch != 0 {
		next.Pitch = common.Clamp(prev.Pitch+turnPitch*t.TurnSpeed*dt+sig.LookPitch, -PitchLimit, PitchLimit)
	}

	// Z and Equal narrow the view, X and Minus widen it.
	zoom := sig.Axis(common.KeyX, common.KeyZ) + sig.Axis(common.KeyMinus, common.KeyEqual)
	if zoom != 0 {
		next.FOV = common.Clamp(prev.EffectiveFOV(0)+zoom*t.ZoomSpeed*dt, t.MinFOV, t.MaxFOV)
	}

	forward := sig.Axis(common.KeyW, common.KeyS)
	strafe := sig.Axis(common.KeyD, common.KeyA)
	lift := sig.Axis(common.KeyE, common.KeyQ)
	if forward == 0 && strafe == 0 && lift == 0 {
		return next
	}

	fwd, right, _ := Basis(next)
	dir := fwd.Mul(forward).Add(right.Mul(strafe)).Add(mgl32.Vec3{0, lift, 0})
	if dir.Len() == 0 {
		return next
	}
	dir = dir.Normalize()

	speed := t.MoveSpeed
	if sig.Active(common.KeyShift) {
		speed *= t.Boost
	}
	step := speed * dt

	next.Position[0] += dir[0] * step
	next.Position[1] += dir[1] * step
	next.Position[2] += dir[2] * step
	next.MoveStep = step
	next.Travel += step
	return next
}

// StepSize returns the move step Step applies for one frame of movement input.
//
// Parameters:
//   - delta: the raw frame delta in seconds
//   - boosted: true when the run modifier is held
//   - t: the control rates
//
// Returns:
//   - float32: the distance moved
func StepSize(delta float32, boosted bool, t Tuning) float32 {
	speed := t.MoveSpeed
	if boosted {
		speed *= t.Boost
	}
	return speed * ClampDelta(delta)
}
