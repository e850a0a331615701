package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-bulb/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-bulb/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-bulb/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// StateTargetWidth and StateTargetHeight are the dimensions of each camera state target.
const (
	StateTargetWidth  = 2
	StateTargetHeight = 1
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode

	// Frame state: one encoder carries both passes, the surface texture is held until Present.
	frameEncoder *wgpu.CommandEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

type wgpuRendererBackend interface {
	// Init creates the instance, the surface, the adapter and the device, then checks that the
	// surface can be presented to.
	//
	// Parameters:
	//   - surfaceDescriptor: the platform surface from the window
	//   - forceFallbackAdapter: true to request a software adapter
	//
	// Returns:
	//   - error: ErrCapabilityMissing wrapped with the failing step
	Init(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) error

	// SurfaceFormat returns the swapchain format picked by Init.
	SurfaceFormat() wgpu.TextureFormat

	// ConfigureSurface is a wrapper for boilerplate logic required when calling Configure on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: ErrCapabilityMissing if the surface reports no alpha modes
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the surface present mode, applied on the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline creates the shader modules, the bind group layouts, the pipeline
	// layout and the render pipeline for a full-screen pass.
	//
	// Parameters:
	//   - p: the pipeline description
	//
	// Returns:
	//   - error: a numbered-source compile error or a layout error
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// CreateStateTarget allocates one 2x1 RGBA32Float camera state target.
	//
	// Parameters:
	//   - label: the debug label
	//
	// Returns:
	//   - *wgpu.Texture: the texture
	//   - *wgpu.TextureView: its default view
	//   - error: an allocation error
	CreateStateTarget(label string) (*wgpu.Texture, *wgpu.TextureView, error)

	// CreateUniformBuffer allocates a uniform buffer that can be written from the queue.
	//
	// Parameters:
	//   - label: the debug label
	//   - size: the size in bytes
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	//   - error: an allocation error
	CreateUniformBuffer(label string, size uint64) (*wgpu.Buffer, error)

	// InitBindGroup creates a bind group from the provider's resources using the layout the
	// pipeline registered for the group, and stores it on the provider.
	//
	// Parameters:
	//   - provider: the resources to bind
	//   - p: the registered pipeline
	//   - group: the bind group index
	//
	// Returns:
	//   - error: an error if a reflected binding has no resource or creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, p pipeline.Pipeline, group int) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: the writes to perform
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame creates the command encoder both passes of a frame are recorded into.
	//
	// Returns:
	//   - error: an error if a frame is already open or the encoder cannot be created
	BeginFrame() error

	// AcquireSurfaceView acquires the next swapchain texture for the current frame.
	//
	// Returns:
	//   - *wgpu.TextureView: the view to draw into
	//   - error: an error if the texture cannot be acquired
	AcquireSurfaceView() (*wgpu.TextureView, error)

	// EncodePass records one full-screen triangle into target with the pipeline and bind group.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - provider: the bind group for group 0
	//   - target: the color attachment
	//
	// Returns:
	//   - error: an error if no frame is open
	EncodePass(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, target *wgpu.TextureView) error

	// EndFrame finishes the encoder, submits it and presents the surface texture if one was acquired.
	//
	// Returns:
	//   - error: an error if no frame is open or the encoder cannot be finished
	EndFrame() error

	// Release frees the frame state, the device and the surface.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend() wgpuRendererBackend {
	return &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		presentMode: wgpu.PresentModeFifo,
	}
}

func (b *wgpuRendererBackendImpl) Init(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) error {
	runtime.LockOSThread()
	b.mu.Lock()
	defer b.mu.Unlock()

	if surfaceDescriptor == nil {
		return fmt.Errorf("%w: no surface descriptor", ErrCapabilityMissing)
	}
	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)
	if b.surface == nil {
		return fmt.Errorf("%w: surface could not be created", ErrCapabilityMissing)
	}

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return fmt.Errorf("%w: no compatible adapter: %w", ErrCapabilityMissing, err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: device request failed: %w", ErrCapabilityMissing, err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	format, err := chooseSurfaceFormat(capabilities.Formats)
	if err != nil {
		return err
	}
	b.surfaceFormat = format
	return nil
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceFormat
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.AlphaModes) == 0 {
		return fmt.Errorf("%w: surface reports no alpha modes", ErrCapabilityMissing)
	}

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(max(width, 1)),
		Height:      uint32(max(height, 1)),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	return nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = wgpuPresentMode(mode)
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	vs, err := b.device.CreateShaderModule(vertexShader.Module())
	if err != nil {
		return vertexShader.CompileError(err)
	}
	defer vs.Release()
	fs, err := b.device.CreateShaderModule(fragmentShader.Module())
	if err != nil {
		return fragmentShader.CompileError(err)
	}
	defer fs.Release()

	merged := shader.MergeBindGroupLayouts(vertexShader.BindGroupLayoutDescriptors(), fragmentShader.BindGroupLayoutDescriptors())
	maxGroup := -1
	for g := range merged {
		maxGroup = max(maxGroup, g)
	}
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g, desc := range merged {
		desc.Label = fmt.Sprintf("%s group %d", p.PipelineKey(), g)
		layout, layoutErr := b.device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline layout %s: %w", p.PipelineKey(), err)
	}
	defer pipelineLayout.Release()

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    p.TargetFormat(),
					WriteMask: p.WriteMask(),
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create render pipeline %s: %w", p.PipelineKey(), err)
	}

	p.SetRenderPipeline(created, bindGroupLayouts)
	return nil
}

func (b *wgpuRendererBackendImpl) CreateStateTarget(label string) (*wgpu.Texture, *wgpu.TextureView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              StateTargetWidth,
			Height:             StateTargetHeight,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to allocate %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("failed to create view for %s: %w", label, err)
	}
	return tex, view, nil
}

func (b *wgpuRendererBackendImpl) CreateUniformBuffer(label string, size uint64) (*wgpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to allocate %s: %w", label, err)
	}
	return buf, nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, p pipeline.Pipeline, group int) error {
	layout := p.BindGroupLayout(group)
	if layout == nil {
		return fmt.Errorf("pipeline %s has no layout for group %d", p.PipelineKey(), group)
	}

	desc := shader.MergeBindGroupLayouts(
		p.Shader(shader.ShaderTypeVertex).BindGroupLayoutDescriptors(),
		p.Shader(shader.ShaderTypeFragment).BindGroupLayoutDescriptors(),
	)[group]

	entries := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		binding := int(e.Binding)
		if buf := provider.Buffer(binding); buf != nil {
			entries = append(entries, wgpu.BindGroupEntry{
				Binding: e.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			})
			continue
		}
		if view := provider.TextureView(binding); view != nil {
			entries = append(entries, wgpu.BindGroupEntry{
				Binding:     e.Binding,
				TextureView: view,
			})
			continue
		}
		return fmt.Errorf("%s: no resource for binding %d (%s)", provider.Label(), binding, p.Shader(shader.ShaderTypeFragment).BindGroupVarName(group, binding))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group %s: %w", provider.Label(), err)
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder != nil {
		return errors.New("previous frame not yet submitted")
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create command encoder: %w", err)
	}
	b.frameEncoder = encoder
	return nil
}

func (b *wgpuRendererBackendImpl) AcquireSurfaceView() (*wgpu.TextureView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Avoids wgpu-native's "Surface image is already acquired" when frames overlap.
	if b.frameSurface != nil {
		return nil, errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire surface texture: %w", err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, fmt.Errorf("failed to create surface view: %w", err)
	}
	b.frameSurface = surfaceTexture
	b.frameView = view
	return view, nil
}

func (b *wgpuRendererBackendImpl) EncodePass(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, target *wgpu.TextureView) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return errors.New("no frame open")
	}
	pass := b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       target,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
	pass.SetPipeline(p.RenderPipeline())
	pass.SetBindGroup(0, provider.BindGroup(), nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()
	pass.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return errors.New("no frame open")
	}
	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseSurfaceLocked()
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()

	if b.frameSurface != nil {
		b.surface.Present()
	}
	b.releaseSurfaceLocked()
	return nil
}

// releaseSurfaceLocked drops the acquired surface texture. Callers hold b.mu.
func (b *wgpuRendererBackendImpl) releaseSurfaceLocked() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	b.releaseSurfaceLocked()
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
