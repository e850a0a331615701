package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// bindGroup is the GPU bind group, nil until created by the renderer.
	bindGroup *wgpu.BindGroup

	// buffers holds uniform buffers keyed by binding index. Buffers may be shared between
	// providers; ownedBuffers marks the ones this provider releases.
	buffers      map[int]*wgpu.Buffer
	ownedBuffers map[int]bool

	// textureViews holds the views bound to texture bindings, keyed by binding index.
	// Views are owned by the renderer's targets and never released here.
	textureViews map[int]*wgpu.TextureView
}

// BindGroupProvider holds the resources of one bind group for one render pass: the uniform buffers,
// the texture views, and the bind group created from them. The renderer keeps one provider per
// pass and ping-pong index so each frame only selects a provider, never rebuilds one.
type BindGroupProvider interface {
	// Release releases the bind group and the buffers this provider owns.
	Release()

	// Label returns the debug label for this provider.
	Label() string

	// BindGroup returns the created bind group, or nil before initialization.
	BindGroup() *wgpu.BindGroup

	// Buffer returns the buffer at a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// TextureView returns the texture view at a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the view or nil
	TextureView(binding int) *wgpu.TextureView

	// SetBindGroup stores the created bind group, releasing any previous one.
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBuffer stores a buffer at a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	//   - owned: true if this provider must release it
	SetBuffer(binding int, buf *wgpu.Buffer, owned bool)

	// SetTextureView stores a texture view at a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the texture view
	SetTextureView(binding int, tv *wgpu.TextureView)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: the debug label
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		ownedBuffers: make(map[int]bool),
		textureViews: make(map[int]*wgpu.TextureView),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer, owned bool) {
	p.buffers[binding] = buf
	p.ownedBuffers[binding] = owned
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for i, buf := range p.buffers {
		if buf != nil && p.ownedBuffers[i] {
			buf.Release()
		}
		delete(p.buffers, i)
		delete(p.ownedBuffers, i)
	}
	for i := range p.textureViews {
		delete(p.textureViews, i)
	}
}
