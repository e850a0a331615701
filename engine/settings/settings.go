package settings

import (
	"github.com/Carmen-Shannon/oxy-bulb/common"
)

// Shading modes. All three share the same distance field, mode 3 additionally warps its input.
const (
	ModeTint    = 1
	ModeNormal  = 2
	ModeWarped  = 3
	defaultMode = ModeTint
)

const (
	// HardStepCap bounds every march regardless of MaxSteps.
	HardStepCap = 1000

	// SurfaceEpsScale derives the normal-sampling epsilon from MinHit. It is a tuning heuristic,
	// not a derived quantity.
	SurfaceEpsScale float32 = 5.0

	// LowPowerMaxSteps and LowPowerMaxIters cap the march in low-power mode.
	LowPowerMaxSteps = 96
	LowPowerMaxIters = 6

	// MaxFractalIters bounds MbIters after sanitizing.
	MaxFractalIters = 32
)

// RenderSettings is the flat set of parameters read by both GPU programs and the exporter.
// The renderer treats it as read-only for the duration of a frame.
type RenderSettings struct {
	MinHit       float32    // hit threshold for the distance estimate
	Mode         int        // ModeTint, ModeNormal or ModeWarped
	MaxDist      float32    // ray length bound
	GlowStrength float32    // glow added per normalized step count squared
	StepTint     float32    // how strongly step count tints the surface
	Exposure     float32    // linear exposure scale
	Contrast     float32    // contrast around mid grey, 1 = unchanged
	Saturation   float32    // 1 = unchanged, 0 = greyscale
	SunAzimuth   float32    // degrees
	SunElevation float32    // degrees
	SunIntensity float32    // directional light scale
	FogDensity   float32    // exponential fog density per unit distance
	Roughness    float32    // 0 glossy, 1 matte
	BaseTint     [3]float32 // linear RGB surface tint
	MaxSteps     int        // march step budget before the hard cap
	MbIters      int        // fractal iterations in the distance estimate
	LowPower     bool       // caps steps and iterations
	FovOverride  float32    // radians, > 0 replaces the evolved camera FOV
}

// Default returns the live-view settings used before any profile or UI input is applied.
//
// Returns:
//   - RenderSettings: the default settings
func Default() RenderSettings {
	return RenderSettings{
		MinHit:       0.0012,
		Mode:         defaultMode,
		MaxDist:      12,
		GlowStrength: 0.35,
		StepTint:     0.4,
		Exposure:     1.1,
		Contrast:     1.05,
		Saturation:   1.1,
		SunAzimuth:   35,
		SunElevation: 40,
		SunIntensity: 1.4,
		FogDensity:   0.08,
		Roughness:    0.45,
		BaseTint:     [3]float32{0.92, 0.72, 0.52},
		MaxSteps:     180,
		MbIters:      8,
	}
}

// Eps returns the surface epsilon used for normal estimation.
func (s RenderSettings) Eps() float32 {
	return s.MinHit * SurfaceEpsScale
}

// StepBudget returns the effective march step cap: MaxSteps bounded by HardStepCap and the
// low-power cap. Never less than 1.
//
// Returns:
//   - int: the maximum number of march steps per ray
func (s RenderSettings) StepBudget() int {
	n := min(s.MaxSteps, HardStepCap)
	if s.LowPower {
		n = min(n, LowPowerMaxSteps)
	}
	return max(n, 1)
}

// IterBudget returns the effective fractal iteration count, at least 1.
func (s RenderSettings) IterBudget() int {
	n := min(s.MbIters, MaxFractalIters)
	if s.LowPower {
		n = min(n, LowPowerMaxIters)
	}
	return max(n, 1)
}

// Sanitize clamps out-of-range and non-finite values into usable ones. It never fails, upstream
// UI sliders are allowed to be sloppy.
//
// Returns:
//   - RenderSettings: the clamped copy
func (s RenderSettings) Sanitize() RenderSettings {
	d := Default()
	fix := func(v, fallback, lo, hi float32) float32 {
		if !common.IsFinite(v) {
			v = fallback
		}
		return common.Clamp(v, lo, hi)
	}
	s.MinHit = fix(s.MinHit, d.MinHit, 1e-6, 0.1)
	s.MaxDist = fix(s.MaxDist, d.MaxDist, 0.1, 1000)
	s.GlowStrength = fix(s.GlowStrength, d.GlowStrength, 0, 10)
	s.StepTint = fix(s.StepTint, d.StepTint, 0, 1)
	s.Exposure = fix(s.Exposure, d.Exposure, 0, 16)
	s.Contrast = fix(s.Contrast, d.Contrast, 0, 4)
	s.Saturation = fix(s.Saturation, d.Saturation, 0, 4)
	s.SunAzimuth = fix(s.SunAzimuth, d.SunAzimuth, -360, 360)
	s.SunElevation = fix(s.SunElevation, d.SunElevation, -90, 90)
	s.SunIntensity = fix(s.SunIntensity, d.SunIntensity, 0, 16)
	s.FogDensity = fix(s.FogDensity, d.FogDensity, 0, 10)
	s.Roughness = fix(s.Roughness, d.Roughness, 0, 1)
	s.FovOverride = fix(s.FovOverride, 0, 0, 3)
	for i := range s.BaseTint {
		s.BaseTint[i] = fix(s.BaseTint[i], d.BaseTint[i], 0, 4)
	}
	if s.Mode < ModeTint || s.Mode > ModeWarped {
		s.Mode = defaultMode
	}
	s.MaxSteps = max(s.MaxSteps, 1)
	s.MbIters = min(max(s.MbIters, 1), MaxFractalIters)
	return s
}
