package renderer

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

var (
	// ErrCapabilityMissing is returned by Setup when the adapter, device or surface cannot
	// provide what both render passes need.
	ErrCapabilityMissing = errors.New("required graphics capability missing")

	// ErrNotSetup is returned by per-frame calls made before a successful Setup.
	ErrNotSetup = errors.New("renderer is not set up")
)

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}

// wgpuPresentMode maps a PresentMode onto the wgpu value.
func wgpuPresentMode(mode PresentMode) wgpu.PresentMode {
	if mode == PresentModeVSync {
		return wgpu.PresentModeFifo
	}
	return wgpu.PresentModeImmediate
}

// chooseSurfaceFormat picks the swapchain format. The image program applies gamma itself, so
// plain unorm formats are preferred over their sRGB variants.
//
// Parameters:
//   - formats: the formats the surface reports for the adapter
//
// Returns:
//   - wgpu.TextureFormat: the chosen format
//   - error: ErrCapabilityMissing if the surface reports no formats
func chooseSurfaceFormat(formats []wgpu.TextureFormat) (wgpu.TextureFormat, error) {
	if len(formats) == 0 {
		return 0, fmt.Errorf("%w: surface reports no texture formats", ErrCapabilityMissing)
	}
	for _, preferred := range []wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatRGBA8Unorm} {
		for _, f := range formats {
			if f == preferred {
				return f, nil
			}
		}
	}
	return formats[0], nil
}
