package settings

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/chewxy/math32"
)

// GPURenderSettingsSource is the canonical WGSL definition of the RenderSettings uniform struct.
// Matches GPURenderSettings layout exactly (96 bytes).
//
//go:embed assets/render_settings.wgsl
var GPURenderSettingsSource string

// GPURenderSettings is the GPU-aligned form of RenderSettings. Budgets are pre-resolved on the
// CPU so both programs see the same bounds the CPU tracer uses.
// Size: 96 bytes.
type GPURenderSettings struct {
	MinHit       float32    // offset  0
	Eps          float32    // offset  4
	MaxDist      float32    // offset  8
	GlowStrength float32    // offset 12
	StepTint     float32    // offset 16
	Exposure     float32    // offset 20
	Contrast     float32    // offset 24
	Saturation   float32    // offset 28
	SunDir       [4]float32 // offset 32: xyz direction, w intensity
	BaseTint     [4]float32 // offset 48: rgb tint, w roughness
	FogDensity   float32    // offset 64
	FovOverride  float32    // offset 68
	Mode         int32      // offset 72
	MaxSteps     int32      // offset 76: resolved StepBudget
	MbIters      int32      // offset 80: resolved IterBudget
	LowPower     int32      // offset 84
	_pad         [2]float32 // offset 88: padding to 96 bytes
}

// SunDirection returns the unit vector pointing toward the sun from azimuth and elevation in degrees.
// Azimuth 0 points toward +Z, positive azimuth rotates toward +X.
//
// Returns:
//   - [3]float32: the normalized direction
func (s RenderSettings) SunDirection() [3]float32 {
	az := s.SunAzimuth * math32.Pi / 180
	el := s.SunElevation * math32.Pi / 180
	sa, ca := math32.Sincos(az)
	se, ce := math32.Sincos(el)
	return [3]float32{ce * sa, se, ce * ca}
}

// NewGPURenderSettings resolves settings into their uniform form.
//
// Parameters:
//   - s: the settings to pack
//
// Returns:
//   - GPURenderSettings: the uniform value
func NewGPURenderSettings(s RenderSettings) GPURenderSettings {
	sun := s.SunDirection()
	g := GPURenderSettings{
		MinHit:       s.MinHit,
		Eps:          s.Eps(),
		MaxDist:      s.MaxDist,
		GlowStrength: s.GlowStrength,
		StepTint:     s.StepTint,
		Exposure:     s.Exposure,
		Contrast:     s.Contrast,
		Saturation:   s.Saturation,
		SunDir:       [4]float32{sun[0], sun[1], sun[2], s.SunIntensity},
		BaseTint:     [4]float32{s.BaseTint[0], s.BaseTint[1], s.BaseTint[2], s.Roughness},
		FogDensity:   s.FogDensity,
		FovOverride:  s.FovOverride,
		Mode:         int32(s.Mode),
		MaxSteps:     int32(s.StepBudget()),
		MbIters:      int32(s.IterBudget()),
	}
	if s.LowPower {
		g.LowPower = 1
	}
	return g
}

// Size returns the size of the GPURenderSettings struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPURenderSettings) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPURenderSettings struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPURenderSettings) Marshal() []byte {
	buf := make([]byte, g.Size())
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	}
	put(0, g.MinHit)
	put(4, g.Eps)
	put(8, g.MaxDist)
	put(12, g.GlowStrength)
	put(16, g.StepTint)
	put(20, g.Exposure)
	put(24, g.Contrast)
	put(28, g.Saturation)
	for i := range 4 {
		put(32+i*4, g.SunDir[i])
		put(48+i*4, g.BaseTint[i])
	}
	put(64, g.FogDensity)
	put(68, g.FovOverride)
	binary.LittleEndian.PutUint32(buf[72:], uint32(g.Mode))
	binary.LittleEndian.PutUint32(buf[76:], uint32(g.MaxSteps))
	binary.LittleEndian.PutUint32(buf[80:], uint32(g.MbIters))
	binary.LittleEndian.PutUint32(buf[84:], uint32(g.LowPower))
	return buf
}
