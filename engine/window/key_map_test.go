package window

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-bulb/common"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func TestTranslateKey(t *testing.T) {
	cases := []struct {
		key  glfw.Key
		want int
		ok   bool
	}{
		{glfw.KeyW, common.KeyW, true},
		{glfw.KeyA, common.KeyA, true},
		{glfw.KeyZ, common.KeyZ, true},
		{glfw.KeyH, common.KeyHelp, true},
		{glfw.KeyP, common.KeyScreenshot, true},
		{glfw.KeyLeftShift, common.KeyShift, true},
		{glfw.KeyRightShift, common.KeyShift, true},
		{glfw.KeyLeft, common.KeyArrowLeft, true},
		{glfw.KeyUp, common.KeyArrowUp, true},
		{glfw.KeyRight, common.KeyArrowRight, true},
		{glfw.KeyDown, common.KeyArrowDown, true},
		{glfw.KeyEqual, common.KeyEqual, true},
		{glfw.KeyMinus, common.KeyMinus, true},
		{glfw.KeyEscape, common.KeyEscape, true},
		{glfw.KeyF12, common.KeyF12, true},
		{glfw.KeyTab, 0, false},
	}
	for _, c := range cases {
		got, ok := TranslateKey(c.key)
		if got != c.want || ok != c.ok {
			t.Errorf("TranslateKey(%d) = %d, %v, want %d, %v", c.key, got, ok, c.want, c.ok)
		}
	}
}

func TestEveryControlKeyIsReachable(t *testing.T) {
	reachable := make(map[int]bool)
	for k := glfw.KeySpace; k <= glfw.KeyLast; k++ {
		if code, ok := TranslateKey(k); ok {
			reachable[code] = true
		}
	}
	for _, code := range common.ControlKeyCodes {
		if !reachable[code] {
			t.Errorf("control key %d has no GLFW key", code)
		}
	}
}

func TestDragTracker(t *testing.T) {
	var d dragTracker
	if _, _, ok := d.move(10, 10, 0.01); ok {
		t.Fatal("move without press must not produce a delta")
	}
	d.press(100, 100)
	yaw, pitch, ok := d.move(110, 90, 0.01)
	if !ok || !near(yaw, 0.1) || !near(pitch, 0.1) {
		t.Errorf("drag right and up = %v, %v, %v", yaw, pitch, ok)
	}
	if _, _, ok := d.move(110, 90, 0.01); ok {
		t.Error("no movement must not produce a delta")
	}
	d.release()
	if _, _, ok := d.move(200, 200, 0.01); ok {
		t.Error("move after release must not produce a delta")
	}
}

func near(a, b float32) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}
