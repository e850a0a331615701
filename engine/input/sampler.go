package input

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-bulb/common"
)

// Sampler composes held keys, touch controls and pointer drags into a per-frame Signal.
// A control is active while at least one source holds it.
type Sampler interface {
	// RecordPhysicalKey records a keyboard press or release.
	//
	// Parameters:
	//   - id: the legacy control key code (out-of-range IDs are ignored)
	//   - pressed: true on press, false on release
	RecordPhysicalKey(id int, pressed bool)

	// RecordTouchControl records a virtual touch button press or release.
	// Presses are reference counted so two pointers on the same control keep it active
	// until both are released.
	//
	// Parameters:
	//   - id: the legacy control key code (out-of-range IDs are ignored)
	//   - pressed: true on press, false on release
	RecordTouchControl(id int, pressed bool)

	// RecordPointerLookDelta accumulates a pointer-look delta in radians.
	//
	// Parameters:
	//   - dx: yaw delta
	//   - dy: pitch delta
	RecordPointerLookDelta(dx, dy float32)

	// ConsumeFrameSignal returns the composed signal and resets the look-delta accumulator.
	// Held-control state is left untouched.
	//
	// Returns:
	//   - Signal: the signal for the frame being built
	ConsumeFrameSignal() Signal

	// ClearAll releases every source at once. Called on focus loss, when the window is
	// hidden and whenever a modal overlay opens or closes.
	ClearAll()
}

// sampler is the implementation of the Sampler interface.
// The mutex exists because GLFW callbacks and the frame loop are not guaranteed to share a goroutine.
type sampler struct {
	mu sync.Mutex

	physical [common.SignalWidth]bool
	touch    [common.SignalWidth]int

	lookYaw   float32
	lookPitch float32
}

var _ Sampler = &sampler{}

// NewSampler creates an empty Sampler with every control released.
//
// Returns:
//   - Sampler: the new sampler
func NewSampler() Sampler {
	return &sampler{}
}

func inRange(id int) bool {
	return id >= 0 && id < common.SignalWidth
}

func (s *sampler) RecordPhysicalKey(id int, pressed bool) {
	if !inRange(id) {
		return
	}
	s.mu.Lock()
	s.physical[id] = pressed
	s.mu.Unlock()
}

func (s *sampler) RecordTouchControl(id int, pressed bool) {
	if !inRange(id) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if pressed {
		s.touch[id]++
		return
	}
	if s.touch[id] > 0 {
		s.touch[id]--
	}
}

func (s *sampler) RecordPointerLookDelta(dx, dy float32) {
	if !common.IsFinite(dx) || !common.IsFinite(dy) {
		return
	}
	s.mu.Lock()
	s.lookYaw += dx
	s.lookPitch += dy
	s.mu.Unlock()
}

func (s *sampler) ConsumeFrameSignal() Signal {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sig Signal
	for i := range sig.Keys {
		if s.physical[i] || s.touch[i] > 0 {
			sig.Keys[i] = 255
		}
	}
	sig.LookYaw = s.lookYaw
	sig.LookPitch = s.lookPitch
	s.lookYaw, s.lookPitch = 0, 0
	return sig
}

func (s *sampler) ClearAll() {
	s.mu.Lock()
	s.physical = [common.SignalWidth]bool{}
	s.touch = [common.SignalWidth]int{}
	s.lookYaw, s.lookPitch = 0, 0
	s.mu.Unlock()
}
