package camera

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-bulb/common"
)

// GPUCameraStateSource is the canonical WGSL definition of the CameraState uniform struct.
// Matches GPUCameraState layout exactly (32 bytes).
//
//go:embed assets/camera_state.wgsl
var GPUCameraStateSource string

// GPUCameraState is the uniform the state-feedback program writes into the 2x1 state target.
// Each field is one texel of the packed State.
// Size: 32 bytes.
type GPUCameraState struct {
	Texel0 [4]float32 // offset  0: (pitch, move step, fov, travel)
	Texel1 [4]float32 // offset 16: (yaw, position xyz)
}

// NewGPUCameraState packs a State into its uniform form.
//
// Parameters:
//   - s: the state to pack
//
// Returns:
//   - GPUCameraState: the uniform value
func NewGPUCameraState(s State) GPUCameraState {
	t := s.Texels()
	return GPUCameraState{Texel0: t[0], Texel1: t[1]}
}

// Size returns the size of the GPUCameraState struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUCameraState) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraState struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraState) Marshal() []byte {
	texels := [2][4]float32{g.Texel0, g.Texel1}
	out := make([]byte, g.Size())
	copy(out, common.SliceToBytes(texels[:]))
	return out
}
