package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the window is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the legacy control key code and whether the event is an
	//     auto-repeat of a held key
	SetKeyDownCallback(callback func(keyCode int, repeat bool))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the legacy control key code
	SetKeyUpCallback(callback func(keyCode int))

	// SetLookCallback sets the callback for left-button drags.
	//
	// Parameters:
	//   - callback: function receiving yaw and pitch deltas in radians
	SetLookCallback(callback func(dYaw, dPitch float32))

	// SetClearCallback sets the callback fired when the window loses focus or is iconified,
	// so held input can be released.
	//
	// Parameters:
	//   - callback: function to call
	SetClearCallback(callback func())

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window. Called from inside the message loop it only stops the loop,
	// and the platform window is destroyed when ProcessMessages returns.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages polls events and calls the update callback until the window closes,
	// then destroys the platform window.
	ProcessMessages()

	// Width returns the current window client area width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current window client area height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the GLFW-backed Window. Sizes are framebuffer pixels once the platform
// window exists.
type engineWindow struct {
	title               string
	width, height       int
	minWidth, minHeight int
	maxWidth, maxHeight int
	internalWindow      any // *glfwWindow

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(keyCode int, repeat bool)
	onKeyUp   func(keyCode int)
	onLook    func(dYaw, dPitch float32)
	onClear   func()

	lookSensitivity float32 // radians per dragged pixel
	drag            dragTracker

	// pumping is set while ProcessMessages runs. Close then only requests the close and
	// the window is destroyed once the loop returns, never from inside a GLFW callback.
	pumping bool
}

var _ Window = &engineWindow{}

// NoLimit leaves a size limit unbounded. It matches GLFW's DontCare.
const NoLimit = -1

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
//   - error: error if the platform window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "Mandelbulb",
		maxWidth:  NoLimit,
		maxHeight: NoLimit,
		minWidth:  160,
		minHeight: 120,
		width:     1280,
		height:    720,

		lookSensitivity: DefaultLookSensitivity,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode int, repeat bool)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode int)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetLookCallback(callback func(dYaw, dPitch float32)) {
	w.onLook = callback
}

func (w *engineWindow) SetClearCallback(callback func()) {
	w.onClear = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	if err := platformRequestClose(w); err != nil {
		return err
	}
	if w.pumping {
		return nil
	}
	return platformDestroyWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	w.pumping = true
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
	w.pumping = false
	_ = platformDestroyWindow(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// clearInput drops the drag and notifies the clear callback.
func (w *engineWindow) clearInput() {
	w.drag.release()
	if w.onClear != nil {
		w.onClear()
	}
}
