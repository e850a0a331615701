package march

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-bulb/common"
	"github.com/Carmen-Shannon/oxy-bulb/engine/camera"
	"github.com/Carmen-Shannon/oxy-bulb/engine/settings"
	"github.com/go-gl/mathgl/mgl32"
)

func TestDistanceEstimateFarField(t *testing.T) {
	d, _ := DistanceEstimate(mgl32.Vec3{0, 0, 5}, 8)
	if d <= 0 || d >= 5 {
		t.Errorf("far point distance = %v, want within (0, 5)", d)
	}
	near, _ := DistanceEstimate(mgl32.Vec3{0, 0, 1.5}, 8)
	if near >= d {
		t.Errorf("closer point should have smaller distance: %v >= %v", near, d)
	}
}

func TestDistanceEstimateOriginIsNonFinite(t *testing.T) {
	d, _ := DistanceEstimate(mgl32.Vec3{}, 8)
	if common.IsFinite(d) {
		t.Skipf("origin produced finite distance %v", d)
	}
	h := March(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, settings.Default(), 0)
	if h.Hit {
		t.Error("non-finite distance must be treated as a miss")
	}
}

func TestMarchHitsFromDefaultCamera(t *testing.T) {
	s := settings.Default()
	ro, rd := Ray(camera.DefaultState(), s, Frame{Width: 64, Height: 64}, 32, 32)
	h := March(ro, rd, s, 0)
	if !h.Hit {
		t.Fatalf("center ray missed: %+v", h)
	}
	if h.T < 1.5 || h.T > 3.2 {
		t.Errorf("hit distance = %v, want between 1.5 and 3.2", h.T)
	}
}

func TestMarchMissesAwayFromFractal(t *testing.T) {
	s := settings.Default()
	h := March(mgl32.Vec3{0, 0, 3.2}, mgl32.Vec3{0, 0, 1}, s, 0)
	if h.Hit {
		t.Fatal("ray pointing away should miss")
	}
	if h.T <= s.MaxDist && h.Steps < s.StepBudget() {
		t.Errorf("miss ended early: %+v", h)
	}
}

func TestMarchStepBounds(t *testing.T) {
	tests := []struct {
		name     string
		maxSteps int
		lowPower bool
		want     int
	}{
		{"settings budget", 5, false, 5},
		{"hard cap", 50000, false, settings.HardStepCap},
		{"low power", 50000, true, settings.LowPowerMaxSteps},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := settings.Default()
			s.MaxSteps = tt.maxSteps
			s.LowPower = tt.lowPower
			// a field that always stays just above the hit threshold never converges
			creep := func(mgl32.Vec3) (float32, float32) { return s.MinHit * 2, 0 }
			h := march(mgl32.Vec3{0, 0, 3.2}, mgl32.Vec3{0, 0, -1}, s, creep)
			if h.Hit {
				t.Fatal("creeping field must not report a hit")
			}
			if h.Steps != tt.want {
				t.Errorf("Steps = %d, want %d", h.Steps, tt.want)
			}
			if h.T > s.MaxDist {
				t.Errorf("ray left the scene after %d steps, the bound under test never applied", h.Steps)
			}
		})
	}
}

func TestMarchFractalRespectsBudget(t *testing.T) {
	s := settings.Default()
	s.MaxSteps = 5
	h := March(mgl32.Vec3{0, 0, 3.2}, mgl32.Vec3{0.28, 0.05, -1}.Normalize(), s, 0)
	if h.Steps > 5 {
		t.Errorf("Steps = %d exceeds budget 5", h.Steps)
	}
}

func TestShadeNeverNaN(t *testing.T) {
	s := settings.Default()
	s.Exposure = 3
	s.GlowStrength = 5
	rd := mgl32.Vec3{0, 0, -1}
	col := Shade(Hit{Steps: s.StepBudget()}, rd, s, 0)
	if !finite3(col) {
		t.Fatalf("miss color not finite: %v", col)
	}
	// a hit at the origin has a degenerate gradient
	col = Shade(Hit{Hit: true, Point: mgl32.Vec3{}, Steps: 3}, rd, s, 0)
	if !finite3(col) {
		t.Fatalf("degenerate hit color not finite: %v", col)
	}
	for i := range 3 {
		if col[i] < 0 {
			t.Errorf("negative channel %v", col)
		}
	}
}

func TestLowPowerDropsSpecular(t *testing.T) {
	s := settings.Default()
	s.MaxSteps = 64
	s.MbIters = 4
	s.Roughness = 0.1
	ro, rd := Ray(camera.DefaultState(), s, Frame{Width: 64, Height: 64}, 32, 32)
	h := March(ro, rd, s, 0)
	if !h.Hit {
		t.Fatalf("center ray missed: %+v", h)
	}

	low := s
	low.LowPower = true
	matte := s
	matte.Roughness = 1
	if got, want := Shade(h, rd, low, 0), Shade(h, rd, matte, 0); got != want {
		t.Errorf("low power shade = %v, want the matte shade %v", got, want)
	}
}

func renderTile(s settings.RenderSettings, f Frame) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, 0, f.Width*f.Height)
	for y := range f.Height {
		for x := range f.Width {
			out = append(out, Render(camera.DefaultState(), s, f, x, y))
		}
	}
	return out
}

func TestModeWarpChangesOutput(t *testing.T) {
	f := Frame{Width: 16, Height: 16, Time: 1.5}
	tint := settings.Default()
	warped := settings.Default()
	warped.Mode = settings.ModeWarped

	a := renderTile(tint, f)
	b := renderTile(warped, f)
	differ := 0
	for i := range a {
		if a[i] != b[i] {
			differ++
		}
	}
	if differ == 0 {
		t.Fatal("mode 3 produced the same image as mode 1")
	}

	p := mgl32.Vec3{0.3, 0.9, 0.2}
	d1, _ := Field(p, tint, f.Time)
	d3, _ := Field(p, warped, f.Time)
	if d1 == d3 {
		t.Error("warp did not change the sampled distance field")
	}
}

func TestRenderDeterministic(t *testing.T) {
	f := Frame{Width: 8, Height: 8, Time: 0.25, JitterX: 0.2, JitterY: -0.1}
	a := renderTile(settings.Default(), f)
	b := renderTile(settings.Default(), f)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pixel %d differs between runs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestFovOverrideTakesPrecedence(t *testing.T) {
	state := camera.DefaultState()
	s := settings.Default()
	f := Frame{Width: 32, Height: 32}
	_, base := Ray(state, s, f, 0, 0)
	s.FovOverride = 0.4
	_, narrow := Ray(state, s, f, 0, 0)
	if base == narrow {
		t.Fatal("FOV override had no effect")
	}
	// narrower FOV means the corner ray is closer to forward
	if narrow[2] >= base[2] {
		t.Errorf("corner ray not narrowed: %v vs %v", narrow, base)
	}
}

func TestGPUFrameUniformSize(t *testing.T) {
	g := NewGPUFrameUniform(Frame{Width: 640, Height: 480, Index: 7})
	if g.Size() != 32 || len(g.Marshal()) != 32 {
		t.Errorf("frame uniform size = %d", g.Size())
	}
}
