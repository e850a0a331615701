package window

import (
	"github.com/Carmen-Shannon/oxy-bulb/common"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// DefaultLookSensitivity is the drag-look rate in radians per pixel.
const DefaultLookSensitivity float32 = 0.004

// glfwKeyMap translates the GLFW keys whose codes differ from the legacy control codes.
var glfwKeyMap = map[glfw.Key]int{
	glfw.KeyLeftShift:  common.KeyShift,
	glfw.KeyRightShift: common.KeyShift,
	glfw.KeyLeft:       common.KeyArrowLeft,
	glfw.KeyUp:         common.KeyArrowUp,
	glfw.KeyRight:      common.KeyArrowRight,
	glfw.KeyDown:       common.KeyArrowDown,
	glfw.KeyEqual:      common.KeyEqual,
	glfw.KeyKPAdd:      common.KeyEqual,
	glfw.KeyMinus:      common.KeyMinus,
	glfw.KeyKPSubtract: common.KeyMinus,
	glfw.KeyEscape:     common.KeyEscape,
	glfw.KeyF12:        common.KeyF12,
}

// TranslateKey maps a GLFW key to its legacy control key code. Letters and digits share
// their codes, the rest goes through glfwKeyMap.
//
// Parameters:
//   - key: the GLFW key
//
// Returns:
//   - int: the legacy key code
//   - bool: false if the key has no legacy code
func TranslateKey(key glfw.Key) (int, bool) {
	if (key >= glfw.KeyA && key <= glfw.KeyZ) || (key >= glfw.Key0 && key <= glfw.Key9) {
		return int(key), true
	}
	code, ok := glfwKeyMap[key]
	return code, ok
}

// dragTracker turns cursor positions during a left-button drag into deltas.
type dragTracker struct {
	active       bool
	lastX, lastY float64
}

func (d *dragTracker) press(x, y float64) {
	d.active = true
	d.lastX, d.lastY = x, y
}

func (d *dragTracker) release() {
	d.active = false
}

// move returns the yaw and pitch deltas in radians. Dragging right turns right and dragging up
// looks up.
func (d *dragTracker) move(x, y float64, sensitivity float32) (dYaw, dPitch float32, ok bool) {
	if !d.active {
		return 0, 0, false
	}
	dx, dy := x-d.lastX, y-d.lastY
	d.lastX, d.lastY = x, y
	if dx == 0 && dy == 0 {
		return 0, 0, false
	}
	return float32(dx) * sensitivity, -float32(dy) * sensitivity, true
}
