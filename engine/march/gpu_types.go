package march

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUFrameUniformSource is the canonical WGSL definition of the FrameUniforms struct.
// Matches GPUFrameUniform layout exactly (32 bytes).
//
//go:embed assets/frame_uniforms.wgsl
var GPUFrameUniformSource string

// GPUFrameUniform is the GPU-aligned form of Frame.
// Size: 32 bytes.
type GPUFrameUniform struct {
	Resolution [2]float32 // offset  0
	Jitter     [2]float32 // offset  8
	Time       float32    // offset 16
	Delta      float32    // offset 20
	Frame      uint32     // offset 24
	_pad       float32    // offset 28: padding to 32 bytes
}

// NewGPUFrameUniform packs a Frame.
//
// Parameters:
//   - f: the frame values
//
// Returns:
//   - GPUFrameUniform: the uniform value
func NewGPUFrameUniform(f Frame) GPUFrameUniform {
	return GPUFrameUniform{
		Resolution: [2]float32{float32(f.Width), float32(f.Height)},
		Jitter:     [2]float32{f.JitterX, f.JitterY},
		Time:       f.Time,
		Delta:      f.Delta,
		Frame:      uint32(f.Index),
	}
}

// Size returns the size of the GPUFrameUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUFrameUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFrameUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUFrameUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.Resolution[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.Resolution[1]))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(g.Jitter[0]))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.Jitter[1]))
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(g.Delta))
	binary.LittleEndian.PutUint32(buf[24:], g.Frame)
	return buf
}
