package camera

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-bulb/common"
)

// StateFloats is the number of float32 values in a packed State.
const StateFloats = 8

// StateBytes is the size of a packed State: two RGBA32F texels.
const StateBytes = StateFloats * 4

// ErrStateBuffer is returned when a packed state buffer cannot be decoded.
var ErrStateBuffer = errors.New("camera: invalid state buffer")

// State is the persistent camera state carried from frame to frame.
// It is packed into a 2x1 RGBA32F texture only at the GPU edge:
//
//	texel(0,0) = (Pitch, MoveStep, FOV, Travel)
//	texel(1,0) = (Yaw, Position.x, Position.y, Position.z)
type State struct {
	Pitch    float32 // radians, positive looks up
	MoveStep float32 // distance moved during the last step
	FOV      float32 // vertical field of view in radians, <= 0 means default
	Travel   float32 // total distance moved since the state was seeded

	Yaw      float32 // radians, 0 looks down -Z
	Position [3]float32
}

// DefaultState is the state seeded on frame 0: a few units back from the fractal looking at it.
//
// Returns:
//   - State: the seed state
func DefaultState() State {
	return State{
		FOV:      DefaultFOV,
		Position: [3]float32{0, 0, 3.2},
	}
}

// Texels returns the two RGBA texels of the packed state.
//
// Returns:
//   - [2][4]float32: texel 0 and texel 1
func (s State) Texels() [2][4]float32 {
	return [2][4]float32{
		{s.Pitch, s.MoveStep, s.FOV, s.Travel},
		{s.Yaw, s.Position[0], s.Position[1], s.Position[2]},
	}
}

// StateFromTexels rebuilds a State from its two RGBA texels.
//
// Parameters:
//   - t: texel 0 and texel 1
//
// Returns:
//   - State: the decoded state
func StateFromTexels(t [2][4]float32) State {
	return State{
		Pitch:    t[0][0],
		MoveStep: t[0][1],
		FOV:      t[0][2],
		Travel:   t[0][3],
		Yaw:      t[1][0],
		Position: [3]float32{t[1][1], t[1][2], t[1][3]},
	}
}

// Marshal packs the state into the little-endian RGBA32F byte layout of the 2x1 state texture.
//
// Returns:
//   - []byte: StateBytes bytes
func (s State) Marshal() []byte {
	buf := make([]byte, StateBytes)
	texels := s.Texels()
	for t := range 2 {
		for c := range 4 {
			binary.LittleEndian.PutUint32(buf[(t*4+c)*4:], math.Float32bits(texels[t][c]))
		}
	}
	return buf
}

// UnmarshalState decodes a packed state buffer produced by Marshal or read back from the GPU.
//
// Parameters:
//   - buf: the packed buffer, exactly StateBytes long
//
// Returns:
//   - State: the decoded state
//   - error: ErrStateBuffer if the length is wrong or a component is not finite
func UnmarshalState(buf []byte) (State, error) {
	if len(buf) != StateBytes {
		return State{}, fmt.Errorf("%w: got %d bytes, want %d", ErrStateBuffer, len(buf), StateBytes)
	}
	var texels [2][4]float32
	for t := range 2 {
		for c := range 4 {
			v := math.Float32frombits(binary.LittleEndian.Uint32(buf[(t*4+c)*4:]))
			if !common.IsFinite(v) {
				return State{}, fmt.Errorf("%w: component %d is not finite", ErrStateBuffer, t*4+c)
			}
			texels[t][c] = v
		}
	}
	return StateFromTexels(texels), nil
}

// EffectiveFOV returns the field of view used for projection. A positive override wins,
// then the evolved FOV, then DefaultFOV when the state carries none.
//
// Parameters:
//   - override: the settings FOV override in radians (<= 0 disables it)
//
// Returns:
//   - float32: the vertical field of view in radians
func (s State) EffectiveFOV(override float32) float32 {
	if override > 0 {
		return override
	}
	if s.FOV > 0 {
		return s.FOV
	}
	return DefaultFOV
}
