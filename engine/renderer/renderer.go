package renderer

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-bulb/engine/camera"
	"github.com/Carmen-Shannon/oxy-bulb/engine/march"
	"github.com/Carmen-Shannon/oxy-bulb/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-bulb/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-bulb/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-bulb/engine/settings"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

//go:embed assets/fullscreen.wgsl
var fullscreenSource string

//go:embed assets/state_feedback.wgsl
var stateFeedbackSource string

//go:embed assets/main_image.wgsl
var mainImageSource string

// Pipeline keys.
const (
	StatePipelineKey = "state_feedback"
	ImagePipelineKey = "main_image"
)

// Bindings of group 0 in both programs.
const (
	bindingNextState = 0

	bindingFrame      = 0
	bindingSettings   = 1
	bindingStateInput = 2
)

// SurfaceSource provides the platform surface the renderer presents to.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *zap.Logger

	source      SurfaceSource
	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	statePath, imagePath string

	pipelineCache map[string]pipeline.Pipeline

	stateTextures [2]*wgpu.Texture
	stateViews    [2]*wgpu.TextureView

	frameBuffer, settingsBuffer, nextBuffer *wgpu.Buffer

	stateProvider  bind_group_provider.BindGroupProvider
	imageProviders [2]bind_group_provider.BindGroupProvider

	ready         bool
	width, height int
}

// Renderer draws one frame as two passes recorded into one command encoder: the state-feedback
// pass writes the next camera state into one of two 2x1 RGBA32Float targets, then the image pass
// reads that target and sphere-traces the fractal into the surface.
type Renderer interface {
	// Setup acquires the GPU, compiles both programs and allocates the state targets, the
	// uniform buffers and one bind group per ping-pong index. Any failure is fatal.
	//
	// Parameters:
	//   - width: the initial surface width in pixels
	//   - height: the initial surface height in pixels
	//
	// Returns:
	//   - error: ErrCapabilityMissing, shader.ErrMissingSource, a compile error or an allocation error
	Setup(width, height int) error

	// Resize reconfigures the surface. Sizes below 1 are coerced to 1.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: ErrNotSetup or a configuration error
	Resize(width, height int) error

	// RunStateFeedback opens the frame and records the pass that writes next into state target write.
	// next is already stepped on the CPU, so the pass does not sample the previous target. The
	// target written here is read only by the image pass of the same frame.
	//
	// Parameters:
	//   - write: the state target index, 0 or 1
	//   - next: the camera state for this frame
	//
	// Returns:
	//   - error: ErrNotSetup, an index error or an encoder error
	RunStateFeedback(write int, next camera.State) error

	// RunImage records the image pass reading state target read into the next surface texture.
	//
	// Parameters:
	//   - read: the state target index, 0 or 1
	//   - s: the render settings for this frame
	//   - f: the frame values
	//
	// Returns:
	//   - error: ErrNotSetup, an index error or a surface error
	RunImage(read int, s settings.RenderSettings, f march.Frame) error

	// Present submits the frame and presents the surface texture.
	//
	// Returns:
	//   - error: ErrNotSetup or a submission error
	Present() error

	// Release frees every GPU object. The renderer cannot be used afterwards.
	Release()

	// SetPresentMode sets the present mode, applied on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Pipeline returns the registered pipeline with the given key, or nil.
	//
	// Parameters:
	//   - key: StatePipelineKey or ImagePipelineKey
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline or nil
	Pipeline(key string) pipeline.Pipeline

	// Size returns the configured surface size.
	Size() (width, height int)
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer for the given surface. No GPU work happens until Setup.
//
// Parameters:
//   - source: the window providing the surface
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(source SurfaceSource, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		logger:        zap.NewNop(),
		source:        source,
		backendType:   BackendTypeWGPU,
		presentMode:   PresentModeVSync,
		pipelineCache: make(map[string]pipeline.Pipeline),
	}
	for _, opt := range options {
		opt(r)
	}
	if r.backend == nil {
		switch r.backendType {
		case BackendTypeWGPU:
			r.backend = newWGPURendererBackend()
		}
	}
	return r
}

func (r *renderer) Setup(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ready {
		return nil
	}
	if r.source == nil {
		return fmt.Errorf("%w: no surface source", ErrCapabilityMissing)
	}

	if err := r.backend.Init(r.source.SurfaceDescriptor(), r.forceFallbackAdapter); err != nil {
		return r.setupError("acquire graphics context", err)
	}
	r.backend.SetPresentMode(r.presentMode)
	r.width, r.height = max(width, 1), max(height, 1)
	if err := r.backend.ConfigureSurface(r.width, r.height); err != nil {
		return r.setupError("configure surface", err)
	}

	if err := r.buildPipelines(); err != nil {
		return r.setupError("compile programs", err)
	}
	if err := r.allocate(); err != nil {
		return r.setupError("allocate targets", err)
	}

	r.ready = true
	r.logger.Info("renderer ready",
		zap.Int("width", r.width),
		zap.Int("height", r.height),
		zap.Uint32("surface_format", uint32(r.backend.SurfaceFormat())),
	)
	return nil
}

// setupError logs and wraps a setup failure with the step that failed.
func (r *renderer) setupError(step string, err error) error {
	r.logger.Error("renderer setup failed", zap.String("step", step), zap.Error(err))
	return fmt.Errorf("renderer setup: %s: %w", step, err)
}

// loadShader builds a shader from path when set, else from the embedded source.
func loadShader(key string, shaderType shader.ShaderType, path, embedded string) (shader.Shader, error) {
	if path != "" {
		return shader.NewShader(key, shaderType, path)
	}
	return shader.NewShaderFromSource(key, shaderType, embedded)
}

func (r *renderer) buildPipelines() error {
	vs, err := loadShader("fullscreen", shader.ShaderTypeVertex, "", fullscreenSource)
	if err != nil {
		return err
	}
	stateFS, err := loadShader(StatePipelineKey, shader.ShaderTypeFragment, r.statePath, stateFeedbackSource)
	if err != nil {
		return err
	}
	imageFS, err := loadShader(ImagePipelineKey, shader.ShaderTypeFragment, r.imagePath, mainImageSource)
	if err != nil {
		return err
	}

	statePipeline := pipeline.NewPipeline(StatePipelineKey,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(stateFS),
		pipeline.WithTargetFormat(wgpu.TextureFormatRGBA32Float),
	)
	imagePipeline := pipeline.NewPipeline(ImagePipelineKey,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(imageFS),
		pipeline.WithTargetFormat(r.backend.SurfaceFormat()),
	)

	for _, p := range []pipeline.Pipeline{statePipeline, imagePipeline} {
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			r.logger.Error("failed to register pipeline", zap.String("label", p.PipelineKey()), zap.Error(err))
			return err
		}
		r.pipelineCache[p.PipelineKey()] = p
	}
	return nil
}

func (r *renderer) allocate() error {
	for i := range r.stateTextures {
		tex, view, err := r.backend.CreateStateTarget(fmt.Sprintf("State Target %d", i))
		if err != nil {
			return err
		}
		r.stateTextures[i], r.stateViews[i] = tex, view
	}

	var (
		frame march.GPUFrameUniform
		rs    settings.GPURenderSettings
		next  camera.GPUCameraState
		err   error
	)
	if r.frameBuffer, err = r.backend.CreateUniformBuffer("Frame Uniforms", uint64(frame.Size())); err != nil {
		return err
	}
	if r.settingsBuffer, err = r.backend.CreateUniformBuffer("Render Settings", uint64(rs.Size())); err != nil {
		return err
	}
	if r.nextBuffer, err = r.backend.CreateUniformBuffer("Next Camera State", uint64(next.Size())); err != nil {
		return err
	}

	r.stateProvider = bind_group_provider.NewBindGroupProvider("state",
		bind_group_provider.WithSharedBuffer(bindingNextState, r.nextBuffer),
	)
	if err := r.backend.InitBindGroup(r.stateProvider, r.pipelineCache[StatePipelineKey], 0); err != nil {
		return err
	}
	for i := range r.imageProviders {
		r.imageProviders[i] = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("image[%d]", i),
			bind_group_provider.WithSharedBuffer(bindingFrame, r.frameBuffer),
			bind_group_provider.WithSharedBuffer(bindingSettings, r.settingsBuffer),
			bind_group_provider.WithTextureView(bindingStateInput, r.stateViews[i]),
		)
		if err := r.backend.InitBindGroup(r.imageProviders[i], r.pipelineCache[ImagePipelineKey], 0); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return ErrNotSetup
	}
	width, height = max(width, 1), max(height, 1)
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return err
	}
	r.width, r.height = width, height
	return nil
}

func checkIndex(i int) error {
	if i != 0 && i != 1 {
		return fmt.Errorf("state target index %d out of range", i)
	}
	return nil
}

func (r *renderer) RunStateFeedback(write int, next camera.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return ErrNotSetup
	}
	if err := checkIndex(write); err != nil {
		return err
	}

	gpuNext := camera.NewGPUCameraState(next)
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		bind_group_provider.NewBufferWrite(r.stateProvider, bindingNextState, &gpuNext),
	})
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	return r.backend.EncodePass(r.pipelineCache[StatePipelineKey], r.stateProvider, r.stateViews[write])
}

func (r *renderer) RunImage(read int, s settings.RenderSettings, f march.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return ErrNotSetup
	}
	if err := checkIndex(read); err != nil {
		return err
	}

	provider := r.imageProviders[read]
	gpuFrame := march.NewGPUFrameUniform(f)
	gpuSettings := settings.NewGPURenderSettings(s)
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		bind_group_provider.NewBufferWrite(provider, bindingFrame, &gpuFrame),
		bind_group_provider.NewBufferWrite(provider, bindingSettings, &gpuSettings),
	})

	view, err := r.backend.AcquireSurfaceView()
	if err != nil {
		return err
	}
	return r.backend.EncodePass(r.pipelineCache[ImagePipelineKey], provider, view)
}

func (r *renderer) Present() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return ErrNotSetup
	}
	return r.backend.EndFrame()
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presentMode = mode
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stateProvider != nil {
		r.stateProvider.Release()
		r.stateProvider = nil
	}
	for i, p := range r.imageProviders {
		if p != nil {
			p.Release()
			r.imageProviders[i] = nil
		}
	}
	for _, buf := range []*wgpu.Buffer{r.frameBuffer, r.settingsBuffer, r.nextBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	r.frameBuffer, r.settingsBuffer, r.nextBuffer = nil, nil, nil
	for i := range r.stateTextures {
		if r.stateViews[i] != nil {
			r.stateViews[i].Release()
			r.stateViews[i] = nil
		}
		if r.stateTextures[i] != nil {
			r.stateTextures[i].Release()
			r.stateTextures[i] = nil
		}
	}
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.backend.Release()
	r.ready = false
}
