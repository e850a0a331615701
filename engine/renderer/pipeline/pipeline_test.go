package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-bulb/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("image")
	if p.PipelineKey() != "image" {
		t.Errorf("key = %q", p.PipelineKey())
	}
	if p.TargetFormat() != wgpu.TextureFormatBGRA8Unorm || p.Topology() != wgpu.PrimitiveTopologyTriangleList {
		t.Error("unexpected defaults")
	}
	if p.Shader(shader.ShaderTypeVertex) != nil || p.RenderPipeline() != nil || p.BindGroupLayout(0) != nil {
		t.Error("fresh pipeline must hold no shaders or GPU objects")
	}
}

func TestPipelineOptions(t *testing.T) {
	vs, err := shader.NewShaderFromSource("fullscreen", shader.ShaderTypeVertex, "@vertex\nfn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }")
	if err != nil {
		t.Fatal(err)
	}
	p := NewPipeline("state",
		WithVertexShader(vs),
		WithTargetFormat(wgpu.TextureFormatRGBA32Float),
		WithCullMode(wgpu.CullModeBack),
	)
	if p.Shader(shader.ShaderTypeVertex) != vs || p.Shader(shader.ShaderTypeFragment) != nil {
		t.Error("shader stages not stored")
	}
	if p.TargetFormat() != wgpu.TextureFormatRGBA32Float || p.CullMode() != wgpu.CullModeBack {
		t.Error("options not applied")
	}
	p.Release()
}
