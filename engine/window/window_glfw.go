package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow is the GLFW half of an engineWindow.
type glfwWindow struct {
	parent  *engineWindow
	window  *glfw.Window
	running bool
}

// newPlatformWindow initializes GLFW, opens a window without a client API (wgpu owns the
// surface) and installs the event handlers.
//
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	gw := &glfwWindow{parent: w, window: win, running: true}
	w.internalWindow = gw

	win.SetKeyCallback(gw.onKey)
	win.SetMouseButtonCallback(gw.onMouseButton)
	win.SetCursorPosCallback(gw.onCursor)
	win.SetFocusCallback(gw.onFocus)
	win.SetIconifyCallback(gw.onIconify)
	win.SetFramebufferSizeCallback(gw.onFramebufferSize)

	// High-DPI framebuffers differ from the requested size; the surface wants pixels.
	w.width, w.height = win.GetFramebufferSize()
	return nil
}

func (gw *glfwWindow) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	code, ok := TranslateKey(key)
	if !ok {
		return
	}
	w := gw.parent
	switch action {
	case glfw.Press, glfw.Repeat:
		if w.onKeyDown != nil {
			w.onKeyDown(code, action == glfw.Repeat)
		}
	case glfw.Release:
		if w.onKeyUp != nil {
			w.onKeyUp(code)
		}
	}
}

func (gw *glfwWindow) onMouseButton(win *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	switch action {
	case glfw.Press:
		gw.parent.drag.press(win.GetCursorPos())
	case glfw.Release:
		gw.parent.drag.release()
	}
}

func (gw *glfwWindow) onCursor(_ *glfw.Window, x, y float64) {
	w := gw.parent
	dYaw, dPitch, ok := w.drag.move(x, y, w.lookSensitivity)
	if ok && w.onLook != nil {
		w.onLook(dYaw, dPitch)
	}
}

// A key held while focus leaves never reports its release.
func (gw *glfwWindow) onFocus(_ *glfw.Window, focused bool) {
	if !focused {
		gw.parent.clearInput()
	}
}

func (gw *glfwWindow) onIconify(_ *glfw.Window, iconified bool) {
	if iconified {
		gw.parent.clearInput()
	}
}

func (gw *glfwWindow) onFramebufferSize(_ *glfw.Window, width, height int) {
	w := gw.parent
	w.width, w.height = width, height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

func platformWindow(w *engineWindow) (*glfwWindow, bool) {
	gw, ok := w.internalWindow.(*glfwWindow)
	return gw, ok && gw != nil
}

// platformGetSurfaceDescriptor returns the wgpuglfw descriptor for the native window, or nil
// once the window is gone.
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	gw, ok := platformWindow(w)
	if !ok {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func platformIsRunningCheck(w *engineWindow) bool {
	gw, ok := platformWindow(w)
	return ok && gw.running && !gw.window.ShouldClose()
}

// platformRequestClose stops the message loop without destroying the window.
//
// Parameters:
//   - w: the engineWindow to close
//
// Returns:
//   - error: error if the window was never created or is already destroyed
func platformRequestClose(w *engineWindow) error {
	gw, ok := platformWindow(w)
	if !ok {
		return fmt.Errorf("window is not initialized")
	}
	gw.running = false
	gw.window.SetShouldClose(true)
	return nil
}

// platformDestroyWindow destroys the window and terminates GLFW. Safe to call twice.
func platformDestroyWindow(w *engineWindow) error {
	gw, ok := platformWindow(w)
	if !ok {
		return nil
	}
	gw.running = false
	gw.window.Destroy()
	glfw.Terminate()
	w.internalWindow = nil
	return nil
}

// platformProcessMessages polls pending events without blocking.
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
