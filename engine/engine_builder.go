package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-bulb/engine/camera"
	"github.com/Carmen-Shannon/oxy-bulb/engine/input"
	"github.com/Carmen-Shannon/oxy-bulb/engine/profiler"
	"github.com/Carmen-Shannon/oxy-bulb/engine/settings"
	"go.uber.org/zap"
)

// LoopBuilderOption is a functional option for configuring a Loop.
// Use the With* functions to create options that are applied directly to the loop instance.
type LoopBuilderOption func(*loop)

// WithBackend sets the GPU backend the loop renders through.
//
// Parameters:
//   - b: the frame backend
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithBackend(b FrameBackend) LoopBuilderOption {
	return func(l *loop) {
		l.backend = b
	}
}

// WithHost sets the window that schedules frames and reports the display size.
//
// Parameters:
//   - h: the host window
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithHost(h Host) LoopBuilderOption {
	return func(l *loop) {
		l.host = h
	}
}

// WithSampler sets the input sampler consumed once per frame.
//
// Parameters:
//   - s: the sampler the window callbacks record into
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithSampler(s input.Sampler) LoopBuilderOption {
	return func(l *loop) {
		if s != nil {
			l.sampler = s
		}
	}
}

// WithTuning sets the camera speeds and limits.
func WithTuning(t camera.Tuning) LoopBuilderOption {
	return func(l *loop) {
		l.tuning = t
	}
}

// WithSettings sets the initial render settings. Values are sanitized.
func WithSettings(s settings.RenderSettings) LoopBuilderOption {
	return func(l *loop) {
		l.settings = s.Sanitize()
	}
}

// WithLogger sets the logger for lifecycle and failure messages, and for the profiler.
//
// Parameters:
//   - logger: the zap logger, nil keeps the no-op logger
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) LoopBuilderOption {
	return func(l *loop) {
		if logger != nil {
			l.logger = logger
			l.profiler = profiler.NewProfiler(logger)
		}
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithProfiling(enabled bool) LoopBuilderOption {
	return func(l *loop) {
		l.profilingEnabled = enabled
	}
}

// WithFrameRateLimit throttles the loop to at most fps frames per second.
// Pass 0 to render on every callback (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithFrameRateLimit(fps float64) LoopBuilderOption {
	return func(l *loop) {
		if fps <= 0 {
			l.frameInterval = 0
			return
		}
		l.frameInterval = time.Duration(float64(time.Second) / fps)
	}
}

// WithRenderScale sets the render target scale relative to the display.
func WithRenderScale(scale float32) LoopBuilderOption {
	return func(l *loop) {
		l.renderScale = sanitizeRenderScale(scale)
	}
}
