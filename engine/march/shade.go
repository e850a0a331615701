package march

import (
	"github.com/Carmen-Shannon/oxy-bulb/common"
	"github.com/Carmen-Shannon/oxy-bulb/engine/settings"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	skyLow     = mgl32.Vec3{0.015, 0.018, 0.03}
	skyHigh    = mgl32.Vec3{0.09, 0.11, 0.17}
	glowColor  = mgl32.Vec3{0.35, 0.55, 1.0}
	stepColor  = mgl32.Vec3{1.0, 0.55, 0.25}
	lumaWeight = mgl32.Vec3{0.2126, 0.7152, 0.0722}
)

// Background returns the sky color seen along rd.
func Background(rd mgl32.Vec3) mgl32.Vec3 {
	return mix3(skyLow, skyHigh, 0.5+0.5*rd[1])
}

// palette is a cosine gradient keyed by t.
func palette(t float32) mgl32.Vec3 {
	tau := 2 * math32.Pi
	return mgl32.Vec3{
		0.5 + 0.5*math32.Cos(tau*(t+0.00)),
		0.5 + 0.5*math32.Cos(tau*(t+0.33)),
		0.5 + 0.5*math32.Cos(tau*(t+0.67)),
	}
}

// surfaceColor picks the albedo for a hit by shading mode.
func surfaceColor(s settings.RenderSettings, n mgl32.Vec3, trap, time float32) mgl32.Vec3 {
	tint := mgl32.Vec3{s.BaseTint[0], s.BaseTint[1], s.BaseTint[2]}
	trapN := common.Clamp01(math32.Sqrt(trap) / Bailout)
	switch s.Mode {
	case settings.ModeNormal:
		return mul3(n.Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5}), tint)
	case settings.ModeWarped:
		return mul3(palette(trapN*1.6+time*0.03), tint)
	default:
		return tint.Mul(common.Mix(0.25, 1.0, trapN))
	}
}

// Shade turns a march result into a linear color: lighting and fog for hits, sky for misses,
// then glow and the exposure, contrast and saturation grade. Low-power settings skip the
// specular term. Never returns a non-finite value.
//
// Parameters:
//   - h: the march result
//   - rd: the unit ray direction
//   - s: the render settings
//   - time: elapsed seconds
//
// Returns:
//   - mgl32.Vec3: linear RGB, each channel >= 0
func Shade(h Hit, rd mgl32.Vec3, s settings.RenderSettings, time float32) mgl32.Vec3 {
	bg := Background(rd)
	stepsN := common.Clamp01(float32(h.Steps) / float32(s.StepBudget()))

	col := bg
	if h.Hit {
		n := Normal(h.Point, rd, s, time)
		sun := s.SunDirection()
		l := mgl32.Vec3{sun[0], sun[1], sun[2]}

		albedo := surfaceColor(s, n, h.Trap, time)
		albedo = mix3(albedo, stepColor, common.Clamp01(s.StepTint*stepsN))

		diff := max(n.Dot(l), 0)
		ao := 1 - 0.7*stepsN

		lit := albedo.Mul(0.06*ao + diff*s.SunIntensity)
		// low power drops the specular highlight
		if !s.LowPower {
			half := l.Sub(rd).Normalize()
			shininess := common.Mix(64, 4, s.Roughness)
			spec := math32.Pow(max(n.Dot(half), 0), shininess) * (1 - s.Roughness)
			lit = lit.Add(mgl32.Vec3{1, 1, 1}.Mul(spec * s.SunIntensity * 0.5))
		}

		fog := 1 - math32.Exp(-s.FogDensity*h.T)
		col = mix3(lit, bg, common.Clamp01(fog))
	}

	col = col.Add(glowColor.Mul(s.GlowStrength * stepsN * stepsN))
	col = grade(col, s)
	if !finite3(col) {
		return bg
	}
	return col
}

// grade applies exposure, contrast around mid grey and saturation, clamping negatives to zero.
func grade(c mgl32.Vec3, s settings.RenderSettings) mgl32.Vec3 {
	c = c.Mul(s.Exposure)
	for i := range 3 {
		c[i] = max((c[i]-0.5)*s.Contrast+0.5, 0)
	}
	luma := c.Dot(lumaWeight)
	for i := range 3 {
		c[i] = max(common.Mix(luma, c[i], s.Saturation), 0)
	}
	return c
}

func mix3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return mgl32.Vec3{
		common.Mix(a[0], b[0], t),
		common.Mix(a[1], b[1], t),
		common.Mix(a[2], b[2], t),
	}
}

func mul3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func finite3(v mgl32.Vec3) bool {
	return common.IsFinite(v[0]) && common.IsFinite(v[1]) && common.IsFinite(v[2])
}
