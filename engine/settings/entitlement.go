package settings

// Entitlement reports whether premium export is unlocked. Token verification and payment live
// outside the renderer; it only reads the result.
type Entitlement interface {
	Unlocked() bool
}

// StaticEntitlement is a fixed Entitlement value.
type StaticEntitlement bool

// Unlocked implements Entitlement.
func (e StaticEntitlement) Unlocked() bool {
	return bool(e)
}

// DefaultWatermark is stamped on exports when the entitlement is locked.
const DefaultWatermark = "MANDELBULB PREVIEW"

// WatermarkFor returns the watermark text for an entitlement, empty when unlocked.
//
// Parameters:
//   - e: the entitlement, nil is treated as locked
//
// Returns:
//   - string: the watermark text or ""
func WatermarkFor(e Entitlement) string {
	if e != nil && e.Unlocked() {
		return ""
	}
	return DefaultWatermark
}
