package camera

import "github.com/chewxy/math32"

// Default control rates and limits.
const (
	DefaultFOV       float32 = 1.05 // ~60 degrees
	DefaultMinFOV    float32 = 0.35
	DefaultMaxFOV    float32 = 2.2
	DefaultTurnSpeed float32 = 1.4 // rad/s
	DefaultZoomSpeed float32 = 0.8 // rad/s
	DefaultMoveSpeed float32 = 0.55
	DefaultBoost     float32 = 3.0

	// MinDelta and MaxDelta bound the per-frame time step in seconds.
	MinDelta float32 = 1.0 / 240.0
	MaxDelta float32 = 0.25
)

// PitchLimit keeps the view off the poles so the basis never degenerates.
var PitchLimit = math32.Pi/2 - 0.01

// Tuning holds the rates used by Step. It is immutable once built.
type Tuning struct {
	TurnSpeed float32
	ZoomSpeed float32
	MoveSpeed float32
	Boost     float32
	MinFOV    float32
	MaxFOV    float32
}

// TuningOption is a functional option for configuring a Tuning.
type TuningOption func(*Tuning)

// NewTuning builds a Tuning from the defaults and the given options.
//
// Parameters:
//   - options: functional options overriding the defaults
//
// Returns:
//   - Tuning: the configured rates
func NewTuning(options ...TuningOption) Tuning {
	t := Tuning{
		TurnSpeed: DefaultTurnSpeed,
		ZoomSpeed: DefaultZoomSpeed,
		MoveSpeed: DefaultMoveSpeed,
		Boost:     DefaultBoost,
		MinFOV:    DefaultMinFOV,
		MaxFOV:    DefaultMaxFOV,
	}
	for _, opt := range options {
		opt(&t)
	}
	return t
}

// WithTurnSpeed sets the arrow-key turn rate in radians per second.
func WithTurnSpeed(speed float32) TuningOption {
	return func(t *Tuning) {
		t.TurnSpeed = speed
	}
}

// WithZoomSpeed sets the FOV change rate in radians per second.
func WithZoomSpeed(speed float32) TuningOption {
	return func(t *Tuning) {
		t.ZoomSpeed = speed
	}
}

// WithMoveSpeed sets the un-boosted move speed in world units per second.
func WithMoveSpeed(speed float32) TuningOption {
	return func(t *Tuning) {
		t.MoveSpeed = speed
	}
}

// WithBoost sets the multiplier applied while the run modifier is held.
func WithBoost(boost float32) TuningOption {
	return func(t *Tuning) {
		t.Boost = boost
	}
}

// WithFOVRange sets the FOV clamp range in radians.
//
// Parameters:
//   - lo: narrowest FOV
//   - hi: widest FOV
//
// Returns:
//   - TuningOption: option function to apply
func WithFOVRange(lo, hi float32) TuningOption {
	return func(t *Tuning) {
		if lo > hi {
			lo, hi = hi, lo
		}
		t.MinFOV = lo
		t.MaxFOV = hi
	}
}
