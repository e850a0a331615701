package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-bulb/common"
	"github.com/Carmen-Shannon/oxy-bulb/engine/camera"
	"github.com/Carmen-Shannon/oxy-bulb/engine/export"
	"github.com/Carmen-Shannon/oxy-bulb/engine/input"
	"github.com/Carmen-Shannon/oxy-bulb/engine/march"
	"github.com/Carmen-Shannon/oxy-bulb/engine/profiler"
	"github.com/Carmen-Shannon/oxy-bulb/engine/settings"
	"github.com/chewxy/math32"
	"go.uber.org/zap"
)

// LoopState is the lifecycle state of a Loop.
type LoopState int

const (
	// StateUninitialized is the state before Setup.
	StateUninitialized LoopState = iota

	// StateReady means setup succeeded and no frame has run yet.
	StateReady

	// StateRunning is entered on the first frame and never left except for StateFailed.
	StateRunning

	// StateFailed is terminal. Err returns the cause.
	StateFailed
)

func (s LoopState) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateReady:
		return "Ready"
	case StateRunning:
		return "Running"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("LoopState(%d)", int(s))
	}
}

var (
	// ErrLoopFailed is returned by every call made after the loop entered StateFailed.
	ErrLoopFailed = errors.New("frame loop failed")

	// ErrNotReady is returned by Frame before a successful Setup.
	ErrNotReady = errors.New("frame loop not ready")
)

const (
	// defaultDelta is the delta of the first frame, which has no predecessor to measure from.
	defaultDelta float32 = 1.0 / 60.0

	minRenderScale float32 = 0.25
	maxRenderScale float32 = 2
)

// FrameUniforms are the per-frame values passed to both passes.
type FrameUniforms = march.Frame

// FrameBackend is the GPU side of a frame: two passes recorded in order, then presented.
// renderer.Renderer implements it.
type FrameBackend interface {
	Setup(width, height int) error
	Resize(width, height int) error
	RunStateFeedback(write int, next camera.State) error
	RunImage(read int, s settings.RenderSettings, f FrameUniforms) error
	Present() error
	Release()
}

// Host schedules frames and reports the display size. window.Window implements it.
type Host interface {
	SetUpdateCallback(callback func())
	ProcessMessages()
	Width() int
	Height() int
	Close() error
}

// loop implements the Loop interface.
type loop struct {
	mu     sync.Mutex
	logger *zap.Logger

	backend FrameBackend
	host    Host
	sampler input.Sampler
	tuning  camera.Tuning

	profiler         *profiler.Profiler
	profilingEnabled bool

	state LoopState
	err   error

	settings      settings.RenderSettings
	frameInterval time.Duration // minimum time between frames; 0 = unthrottled
	renderScale   float32

	// Ping-pong state. active is the target holding cam, the next frame writes 1-active.
	cam    camera.State
	active int
	frame  uint64

	start     time.Time // wall time of the first frame, zero until then
	lastFrame time.Time // zero until the first frame
	shownTime float32

	width, height int // current render target size

	quitOnce sync.Once
}

// Loop drives the frame state machine Uninitialized → Ready → Running, with Failed terminal.
// Each frame steps the camera on the CPU, writes the result into the inactive state target,
// renders the image from it and swaps the targets.
type Loop interface {
	// Setup performs the one-time backend setup at the scaled display size.
	//
	// Returns:
	//   - error: the setup failure, after which the loop is Failed
	Setup() error

	// Frame runs one frame callback. A throttled callback returns false and changes nothing.
	//
	// Parameters:
	//   - now: the callback timestamp
	//
	// Returns:
	//   - bool: true if a frame was rendered
	//   - error: ErrNotReady, ErrLoopFailed, or the failure that made the loop Failed
	Frame(now time.Time) (bool, error)

	// Run sets the loop up if needed, then renders a frame on every host update until the
	// host stops or a frame fails. Blocks.
	//
	// Returns:
	//   - error: the setup or per-frame failure, nil when the host stopped normally
	Run() error

	// Quit closes the host. Safe to call multiple times.
	Quit()

	// State returns the lifecycle state.
	State() LoopState

	// Err returns the failure that made the loop Failed, or nil.
	Err() error

	// Snapshot copies what the exporter needs to reproduce the last presented frame.
	//
	// Returns:
	//   - export.Snapshot: the camera state, settings, time and frame index
	Snapshot() export.Snapshot

	// SetSettings replaces the render settings from the next frame on. Values are sanitized.
	SetSettings(s settings.RenderSettings)

	// SetFrameInterval sets the minimum time between frames. 0 disables throttling.
	SetFrameInterval(d time.Duration)

	// SetRenderScale scales the render target relative to the display, clamped to [0.25, 2].
	SetRenderScale(scale float32)
}

var _ Loop = &loop{}

// NewLoop creates a Loop in StateUninitialized.
//
// Parameters:
//   - options: functional options; WithBackend is required before Setup
//
// Returns:
//   - Loop: the loop
func NewLoop(options ...LoopBuilderOption) Loop {
	l := &loop{
		logger:      zap.NewNop(),
		sampler:     input.NewSampler(),
		tuning:      camera.NewTuning(),
		profiler:    profiler.NewProfiler(nil),
		settings:    settings.Default(),
		renderScale: 1,
		cam:         camera.DefaultState(),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *loop) Setup() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateFailed:
		return fmt.Errorf("%w: %w", ErrLoopFailed, l.err)
	case StateReady, StateRunning:
		return nil
	}
	if l.backend == nil {
		return l.fail(errors.New("no frame backend configured"))
	}

	w, h := l.targetSize()
	if err := l.backend.Setup(w, h); err != nil {
		return l.fail(err)
	}
	l.width, l.height = w, h
	l.state = StateReady
	l.logger.Info("frame loop ready", zap.Int("width", w), zap.Int("height", h))
	return nil
}

// fail moves the loop to StateFailed. Callers hold l.mu.
func (l *loop) fail(err error) error {
	l.state = StateFailed
	l.err = err
	l.logger.Error("frame loop failed", zap.Uint64("frame", l.frame), zap.Error(err))
	return err
}

// targetSize is the display size scaled by the render scale, at least 1x1.
func (l *loop) targetSize() (int, int) {
	w, h := 1280, 720
	if l.host != nil {
		w, h = l.host.Width(), l.host.Height()
	}
	sw := int(math32.Round(float32(w) * l.renderScale))
	sh := int(math32.Round(float32(h) * l.renderScale))
	return max(sw, 1), max(sh, 1)
}

func (l *loop) Frame(now time.Time) (rendered bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateUninitialized:
		return false, ErrNotReady
	case StateFailed:
		return false, fmt.Errorf("%w: %w", ErrLoopFailed, l.err)
	case StateReady:
		l.state = StateRunning
	}

	if l.frameInterval > 0 && !l.lastFrame.IsZero() && now.Sub(l.lastFrame) < l.frameInterval {
		return false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			rendered = false
			err = l.fail(fmt.Errorf("frame %d panicked: %v", l.frame, r))
		}
	}()

	// Time follows the wall clock, only the integration step is clamped.
	delta := defaultDelta
	if !l.lastFrame.IsZero() {
		delta = camera.ClampDelta(float32(now.Sub(l.lastFrame).Seconds()))
	}
	if l.start.IsZero() {
		l.start = now
	}
	elapsed := float32(now.Sub(l.start).Seconds())

	w, h := l.targetSize()
	if w != l.width || h != l.height {
		if err := l.backend.Resize(w, h); err != nil {
			return false, l.fail(fmt.Errorf("resize to %dx%d: %w", w, h, err))
		}
		l.width, l.height = w, h
	}

	sig := l.sampler.ConsumeFrameSignal()
	next := camera.Step(l.cam, sig, delta, l.frame, l.tuning)
	write := 1 - l.active
	f := FrameUniforms{
		Width:  l.width,
		Height: l.height,
		Time:   elapsed,
		Delta:  delta,
		Index:  l.frame,
	}

	if err := l.backend.RunStateFeedback(write, next); err != nil {
		return false, l.fail(fmt.Errorf("state feedback: %w", err))
	}
	if err := l.backend.RunImage(write, l.settings, f); err != nil {
		return false, l.fail(fmt.Errorf("image: %w", err))
	}
	if err := l.backend.Present(); err != nil {
		return false, l.fail(fmt.Errorf("present: %w", err))
	}

	l.active = write
	l.cam = next
	l.shownTime = elapsed
	l.lastFrame = now
	shown := l.frame
	l.frame++

	if l.profilingEnabled {
		l.profiler.Tick(now, shown)
	}
	return true, nil
}

func (l *loop) Run() error {
	if err := l.Setup(); err != nil {
		return err
	}
	if l.host == nil {
		return errors.New("no host configured")
	}

	l.host.SetUpdateCallback(func() {
		if _, err := l.Frame(time.Now()); err != nil {
			l.host.SetUpdateCallback(nil)
			l.Quit()
		}
	})
	l.host.ProcessMessages()

	if l.State() == StateFailed {
		return l.Err()
	}
	return nil
}

func (l *loop) Quit() {
	l.quitOnce.Do(func() {
		if l.host == nil {
			return
		}
		if err := l.host.Close(); err != nil {
			l.logger.Warn("failed to close host", zap.Error(err))
		}
	})
}

func (l *loop) State() LoopState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *loop) Snapshot() export.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	var frame uint64
	if l.frame > 0 {
		frame = l.frame - 1
	}
	return export.Snapshot{
		State:    l.cam,
		Settings: l.settings,
		Time:     l.shownTime,
		Frame:    frame,
	}
}

func (l *loop) SetSettings(s settings.RenderSettings) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.settings = s.Sanitize()
}

func (l *loop) SetFrameInterval(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frameInterval = max(d, 0)
}

func (l *loop) SetRenderScale(scale float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.renderScale = sanitizeRenderScale(scale)
}

func sanitizeRenderScale(scale float32) float32 {
	if !common.IsFinite(scale) || scale <= 0 {
		return 1
	}
	return common.Clamp(scale, minRenderScale, maxRenderScale)
}
