package common

// Legacy control key codes. The Input Sampler indexes its 256 entry signal by these IDs,
// which are the browser-era keyCode values the fractal program has always been driven by.
// GLFW reports different values for the non-printable keys, the window layer translates them.
const (
	KeyShift      = 16
	KeyArrowLeft  = 37
	KeyArrowUp    = 38
	KeyArrowRight = 39
	KeyArrowDown  = 40
	KeyA          = 65 // strafe left
	KeyD          = 68 // strafe right
	KeyE          = 69 // rise
	KeyQ          = 81 // sink
	KeyS          = 83 // back
	KeyW          = 87 // forward
	KeyX          = 88 // zoom out
	KeyZ          = 90 // zoom in
	KeyEqual      = 187
	KeyMinus      = 189
)

// Application hotkeys. These never reach the control signal.
const (
	KeyHelp       = 72  // H
	KeyScreenshot = 80  // P
	KeyEscape     = 27
	KeyF12        = 123
)

// SignalWidth is the number of addressable control IDs in a frame signal.
const SignalWidth = 256

// ControlKeyCodes lists every key code the live renderer consumes.
var ControlKeyCodes = []int{
	KeyShift,
	KeyArrowLeft, KeyArrowUp, KeyArrowRight, KeyArrowDown,
	KeyA, KeyD, KeyE, KeyQ, KeyS, KeyW, KeyX, KeyZ,
	KeyEqual, KeyMinus,
}

// IsControlKey reports whether code is one of ControlKeyCodes.
//
// Parameters:
//   - code: a legacy key code
//
// Returns:
//   - bool: true if the renderer consumes the key
func IsControlKey(code int) bool {
	for _, c := range ControlKeyCodes {
		if c == code {
			return true
		}
	}
	return false
}
