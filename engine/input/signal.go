package input

import "github.com/Carmen-Shannon/oxy-bulb/common"

// Signal is the composed control signal handed to the state-feedback step once per frame.
// Keys holds 255 for every control ID held by at least one source and 0 otherwise.
type Signal struct {
	Keys [common.SignalWidth]byte

	// LookYaw and LookPitch are the pointer-look deltas in radians accumulated since
	// the previous ConsumeFrameSignal call.
	LookYaw   float32
	LookPitch float32
}

// Active reports whether the control ID is held. Out-of-range IDs are never active.
//
// Parameters:
//   - id: a legacy control key code
//
// Returns:
//   - bool: true if the control is currently held
func (s Signal) Active(id int) bool {
	if id < 0 || id >= common.SignalWidth {
		return false
	}
	return s.Keys[id] != 0
}

// Axis returns +1 when only pos is held, -1 when only neg is held and 0 otherwise.
func (s Signal) Axis(pos, neg int) float32 {
	var v float32
	if s.Active(pos) {
		v++
	}
	if s.Active(neg) {
		v--
	}
	return v
}

// Idle reports whether no control is held and no look delta is pending.
func (s Signal) Idle() bool {
	if s.LookYaw != 0 || s.LookPitch != 0 {
		return false
	}
	for _, k := range s.Keys {
		if k != 0 {
			return false
		}
	}
	return true
}
