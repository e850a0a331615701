package export

import (
	"bytes"
	"errors"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/oxy-bulb/engine/camera"
	"github.com/Carmen-Shannon/oxy-bulb/engine/march"
	"github.com/Carmen-Shannon/oxy-bulb/engine/ratelimit"
	"github.com/Carmen-Shannon/oxy-bulb/engine/settings"
)

func baseRequest(w, h int) Request {
	return Request{
		Width:       w,
		Height:      h,
		Settings:    settings.Default(),
		StateBuffer: camera.DefaultState().Marshal(),
		SampleCount: 1,
		Time:        1.5,
		Frame:       9,
	}
}

func waitResponse(t *testing.T, ch <-chan Response) Response {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(30 * time.Second):
		t.Fatal("timed out waiting for export response")
		return Response{}
	}
}

func TestHalton(t *testing.T) {
	tests := []struct {
		index, base int
		want        float32
	}{
		{1, 2, 0.5},
		{2, 2, 0.25},
		{3, 2, 0.75},
		{1, 3, 1.0 / 3},
		{2, 3, 2.0 / 3},
		{4, 3, 4.0 / 9},
	}
	for _, tt := range tests {
		got := Halton(tt.index, tt.base)
		if d := got - tt.want; d > 1e-6 || d < -1e-6 {
			t.Errorf("Halton(%d, %d) = %v, want %v", tt.index, tt.base, got, tt.want)
		}
	}
	if jx, jy := Jitter(0, 1); jx != 0 || jy != 0 {
		t.Errorf("single sample jitter = (%v, %v), want zero", jx, jy)
	}
	for i := range MaxSamples {
		jx, jy := Jitter(i, MaxSamples)
		if jx < -0.5 || jx >= 0.5 || jy < -0.5 || jy >= 0.5 {
			t.Errorf("Jitter(%d) = (%v, %v) outside the pixel", i, jx, jy)
		}
	}
}

func TestClampSamples(t *testing.T) {
	for in, want := range map[int]int{-3: 1, 0: 1, 1: 1, 16: 16, 32: 32, 33: 32, 1000: 32} {
		if got := ClampSamples(in); got != want {
			t.Errorf("ClampSamples(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestIdentityPathMatchesDirectRender(t *testing.T) {
	e := NewExporter(WithWorkers(2))
	defer e.Terminate()

	req := baseRequest(24, 16)
	res, err := e.Render(req)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.FileName != "mandelbulb-9.png" {
		t.Errorf("FileName = %q", res.FileName)
	}
	img, err := png.Decode(bytes.NewReader(res.PNG))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	state := camera.DefaultState()
	s := settings.Default().Sanitize()
	f := march.Frame{Width: 24, Height: 16, Time: 1.5, Delta: defaultDelta, Index: 9}
	for y := 0; y < 16; y++ {
		for x := 0; x < 24; x++ {
			c := march.Render(state, s, f, x, y)
			r, g, b, a := img.At(x, y).RGBA()
			want := [3]uint8{Quantize(c[0]), Quantize(c[1]), Quantize(c[2])}
			got := [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
			if got != want || a != 0xffff {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestAccumulationDeterministic(t *testing.T) {
	e := newExporter(WithWorkers(3))
	defer e.pool.Stop()
	req := baseRequest(20, 12)
	req.SampleCount = 4
	j, err := validate(req)
	if err != nil {
		t.Fatal(err)
	}
	a := e.accumulate(j)
	b := e.accumulate(j)
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("accumulated buffers differ at %d: %v vs %v", i, a.Pix[i], b.Pix[i])
		}
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"zero width", func(r *Request) { r.Width = 0 }},
		{"negative height", func(r *Request) { r.Height = -4 }},
		{"too wide", func(r *Request) { r.Width = MaxDimension + 1 }},
		{"missing state", func(r *Request) { r.StateBuffer = nil }},
		{"short state", func(r *Request) { r.StateBuffer = make([]byte, 12) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest(8, 8)
			tt.mutate(&req)
			if _, err := validate(req); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("err = %v, want ErrInvalidRequest", err)
			}
		})
	}

	req := baseRequest(8, 8)
	req.SampleCount = 99
	req.DenoiseStrength = 3
	j, err := validate(req)
	if err != nil {
		t.Fatal(err)
	}
	if j.samples != MaxSamples || j.denoise != 1 {
		t.Errorf("samples=%d denoise=%v, want clamped", j.samples, j.denoise)
	}
}

func TestSubmitMovesStateBuffer(t *testing.T) {
	e := NewExporter(WithWorkers(2))
	defer e.Terminate()

	req := baseRequest(8, 6)
	ch := e.Submit(&req)
	if req.StateBuffer != nil {
		t.Error("Submit must take ownership of the state buffer")
	}
	r := waitResponse(t, ch)
	if r.Err != nil {
		t.Fatalf("export failed: %v", r.Err)
	}
	if len(r.Result.PNG) == 0 {
		t.Error("empty PNG")
	}
}

func TestSubmitInvalidReportsError(t *testing.T) {
	e := NewExporter()
	defer e.Terminate()

	req := baseRequest(0, 6)
	r := waitResponse(t, e.Submit(&req))
	if !errors.Is(r.Err, ErrInvalidRequest) || r.Result.PNG != nil {
		t.Errorf("response = %+v, want ErrInvalidRequest with no image", r)
	}
	if r := waitResponse(t, e.Submit(nil)); !errors.Is(r.Err, ErrInvalidRequest) {
		t.Errorf("nil request err = %v", r.Err)
	}
}

func TestSubmitRateLimited(t *testing.T) {
	e := NewExporter(WithRateLimiter(ratelimit.NewLimiter(1, time.Minute)))
	defer e.Terminate()

	first := baseRequest(4, 4)
	first.ClientID = "10.0.0.1"
	second := first
	second.StateBuffer = camera.DefaultState().Marshal()

	if r := waitResponse(t, e.Submit(&first)); r.Err != nil {
		t.Fatalf("first export failed: %v", r.Err)
	}
	if r := waitResponse(t, e.Submit(&second)); !errors.Is(r.Err, ErrRateLimited) {
		t.Errorf("second err = %v, want ErrRateLimited", r.Err)
	}
}

func TestSubmitAfterTerminate(t *testing.T) {
	e := NewExporter()
	e.Terminate()
	e.Terminate()

	req := baseRequest(4, 4)
	if r := waitResponse(t, e.Submit(&req)); !errors.Is(r.Err, ErrTerminated) {
		t.Errorf("err = %v, want ErrTerminated", r.Err)
	}
}

func TestSubmitBusyWhenQueueFull(t *testing.T) {
	e := newExporter(WithQueueSize(1))
	defer e.pool.Stop()

	first := baseRequest(4, 4)
	queued := e.Submit(&first)
	select {
	case r := <-queued:
		t.Fatalf("first request answered without a worker: %+v", r)
	default:
	}

	second := baseRequest(4, 4)
	if r := waitResponse(t, e.Submit(&second)); !errors.Is(r.Err, ErrBusy) {
		t.Errorf("err = %v, want ErrBusy", r.Err)
	}
}

// stopCounter records how often the band pool is stopped.
type stopCounter struct {
	worker.DynamicWorkerPool
	stops atomic.Int32
}

func (s *stopCounter) Stop() {
	s.stops.Add(1)
	s.DynamicWorkerPool.Stop()
}

func TestTerminateStopsPool(t *testing.T) {
	e := newExporter(WithWorkers(2))
	pool := &stopCounter{DynamicWorkerPool: e.pool}
	e.pool = pool
	go e.run()

	req := baseRequest(8, 8)
	if r := waitResponse(t, e.Submit(&req)); r.Err != nil {
		t.Fatalf("render before terminate: %v", r.Err)
	}
	if pool.stops.Load() != 0 {
		t.Fatal("pool stopped while the exporter was running")
	}

	e.Terminate()
	select {
	case <-e.done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker goroutine did not exit")
	}
	if got := pool.stops.Load(); got != 1 {
		t.Errorf("pool stopped %d times, want 1", got)
	}
	if _, err := e.Render(baseRequest(4, 4)); !errors.Is(err, ErrTerminated) {
		t.Errorf("render after terminate err = %v, want ErrTerminated", err)
	}
}

func TestWatermarkChangesPixels(t *testing.T) {
	e := NewExporter(WithWorkers(2))
	defer e.Terminate()

	plain := baseRequest(96, 64)
	marked := baseRequest(96, 64)
	marked.WatermarkText = settings.DefaultWatermark

	a, err := e.Render(plain)
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Render(marked)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a.PNG, b.PNG) {
		t.Error("watermark left the image unchanged")
	}
}

func TestBuildRequest(t *testing.T) {
	snap := Snapshot{State: camera.DefaultState(), Settings: settings.Default(), Time: 4, Frame: 7}
	snap.State.Yaw = 0.4

	locked := BuildRequest(snap, settings.StaticEntitlement(false), settings.DeviceDesktop, 640, 480)
	if locked.WatermarkText != settings.DefaultWatermark {
		t.Errorf("locked watermark = %q", locked.WatermarkText)
	}
	if locked.SampleCount != settings.SelectProfile(false, settings.DeviceDesktop).SampleCount {
		t.Errorf("locked samples = %d", locked.SampleCount)
	}
	if locked.FileName != "mandelbulb-7.png" {
		t.Errorf("FileName = %q", locked.FileName)
	}

	unlocked := BuildRequest(snap, settings.StaticEntitlement(true), settings.DeviceDesktop, 640, 480)
	if unlocked.WatermarkText != "" {
		t.Errorf("unlocked watermark = %q", unlocked.WatermarkText)
	}
	if unlocked.SampleCount != settings.SelectProfile(true, settings.DeviceDesktop).SampleCount {
		t.Errorf("unlocked samples = %d", unlocked.SampleCount)
	}
	state, err := camera.UnmarshalState(unlocked.StateBuffer)
	if err != nil || state.Yaw != 0.4 {
		t.Errorf("state buffer decodes to %+v, %v", state, err)
	}
}
