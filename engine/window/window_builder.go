package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title.
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the requested client size. The framebuffer may end up larger on high-DPI
// displays; Width and Height always report the framebuffer size. Values below 1 are ignored.
//
// Parameters:
//   - width: requested width in screen coordinates
//   - height: requested height in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width >= 1 {
			w.width = width
		}
		if height >= 1 {
			w.height = height
		}
	}
}

// WithSizeLimits bounds interactive resizing. Pass NoLimit for an unbounded side.
//
// Parameters:
//   - minWidth, minHeight: smallest client size
//   - maxWidth, maxHeight: largest client size
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth, w.minHeight = minWidth, minHeight
		w.maxWidth, w.maxHeight = maxWidth, maxHeight
	}
}

// WithLookSensitivity sets the drag-look rate in radians per dragged pixel.
// Values <= 0 keep DefaultLookSensitivity.
//
// Parameters:
//   - radiansPerPixel: the look rate
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithLookSensitivity(radiansPerPixel float32) WindowBuilderOption {
	return func(w *engineWindow) {
		if radiansPerPixel > 0 {
			w.lookSensitivity = radiansPerPixel
		}
	}
}
