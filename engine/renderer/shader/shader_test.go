package shader

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const testFragment = `//@bulb:include frame_uniforms
//@bulb:include render_settings
//@bulb:uniform 0 0 frame frame_uniforms
//@bulb:uniform 0 1 settings render_settings
@group(0) @binding(2) var state: texture_2d<f32>;

@fragment
fn fs_image(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(settings.exposure, frame.time, textureLoad(state, vec2<i32>(0, 0), 0).x, 1.0);
}
`

func TestPreProcessorExpandsAnnotations(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process(testFragment)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	for _, want := range []string{
		"struct FrameUniforms",
		"struct RenderSettings",
		"@group(0) @binding(0) var<uniform> frame: FrameUniforms;",
		"@group(0) @binding(1) var<uniform> settings: RenderSettings;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("processed source missing %q", want)
		}
	}
	if strings.Contains(out, "@bulb:") {
		t.Error("annotations left in processed source")
	}
	decls := pp.Declarations()
	if len(decls) != 2 || decls[1].VarName != "settings" || decls[1].Binding != 1 {
		t.Errorf("declarations = %+v", decls)
	}
}

func TestPreProcessorIncludesOnce(t *testing.T) {
	out, err := NewPreProcessor().Process("//@bulb:include camera_state\n//@bulb:include camera_state\n")
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out, "struct CameraState"); n != 1 {
		t.Errorf("struct included %d times", n)
	}
}

func TestPreProcessorErrors(t *testing.T) {
	tests := map[string]string{
		"unknown struct":     "//@bulb:include lights",
		"unknown annotation": "//@bulb:sampler 0 0",
		"bad arity":          "//@bulb:uniform 0 frame frame_uniforms",
		"bad group":          "//@bulb:uniform x 0 frame frame_uniforms",
		"empty":              "//@bulb:",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewPreProcessor().Process("fn a() {}\n" + src); err == nil || !strings.Contains(err.Error(), "line 2") {
				t.Errorf("err = %v, want an error naming line 2", err)
			}
		})
	}
}

func TestReflectedLayouts(t *testing.T) {
	s, err := NewShaderFromSource("image", ShaderTypeFragment, testFragment)
	if err != nil {
		t.Fatalf("NewShaderFromSource: %v", err)
	}
	if s.EntryPoint() != "fs_image" {
		t.Errorf("EntryPoint = %q", s.EntryPoint())
	}
	desc, ok := s.BindGroupLayoutDescriptors()[0]
	if !ok || len(desc.Entries) != 3 {
		t.Fatalf("group 0 = %+v", desc)
	}
	if got := desc.Entries[0].Buffer.MinBindingSize; got != 32 {
		t.Errorf("frame uniform size = %d, want 32", got)
	}
	if got := desc.Entries[1].Buffer.MinBindingSize; got != 96 {
		t.Errorf("settings uniform size = %d, want 96", got)
	}
	tex := desc.Entries[2]
	if tex.Texture.SampleType != wgpu.TextureSampleTypeUnfilterableFloat || tex.Texture.ViewDimension != wgpu.TextureViewDimension2D {
		t.Errorf("state texture entry = %+v", tex.Texture)
	}
	if tex.Visibility != wgpu.ShaderStageFragment {
		t.Errorf("visibility = %v", tex.Visibility)
	}
	if s.BindGroupVarName(0, 2) != "state" {
		t.Errorf("BindGroupVarName(0, 2) = %q", s.BindGroupVarName(0, 2))
	}
}

func TestStructLayoutAlignment(t *testing.T) {
	layouts := parseStructLayouts(stripComments(`struct A { a: f32, b: vec3<f32>, c: f32 };
struct B { x: A, y: vec2<f32> };`))
	if got := layouts["A"]; got.size != 32 || got.align != 16 {
		t.Errorf("A = %+v, want size 32 align 16", got)
	}
	if got := layouts["B"]; got.size != 48 {
		t.Errorf("B = %+v, want size 48", got)
	}
}

func TestStripComments(t *testing.T) {
	got := stripComments("a /* x /* nested */ y */ b // tail\nc")
	if got != "a  b \nc" {
		t.Errorf("stripComments = %q", got)
	}
}

func TestMergeBindGroupLayouts(t *testing.T) {
	v := map[int]wgpu.BindGroupLayoutDescriptor{0: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageVertex}}}}
	f := map[int]wgpu.BindGroupLayoutDescriptor{0: {Entries: []wgpu.BindGroupLayoutEntry{
		{Binding: 1, Visibility: wgpu.ShaderStageFragment},
		{Binding: 0, Visibility: wgpu.ShaderStageFragment},
	}}}
	m := MergeBindGroupLayouts(v, f)
	entries := m[0].Entries
	if len(entries) != 2 || entries[0].Binding != 0 || entries[1].Binding != 1 {
		t.Fatalf("merged = %+v", entries)
	}
	if entries[0].Visibility != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment {
		t.Errorf("shared binding visibility = %v", entries[0].Visibility)
	}
}

func TestMissingSource(t *testing.T) {
	if _, err := NewShader("state", ShaderTypeFragment, ""); !errors.Is(err, ErrMissingSource) {
		t.Errorf("empty path err = %v", err)
	}
	if _, err := NewShader("state", ShaderTypeFragment, filepath.Join(t.TempDir(), "nope.wgsl")); !errors.Is(err, ErrMissingSource) {
		t.Errorf("missing file err = %v", err)
	}
	if _, err := NewShaderFromSource("state", ShaderTypeFragment, "  \n"); !errors.Is(err, ErrMissingSource) {
		t.Errorf("blank source err = %v", err)
	}
	if _, err := NewShaderFromSource("state", ShaderTypeVertex, testFragment); err == nil {
		t.Error("fragment-only source accepted as a vertex shader")
	}
}

func TestCompileErrorNumbersLines(t *testing.T) {
	s, err := NewShaderFromSource("image", ShaderTypeFragment, testFragment)
	if err != nil {
		t.Fatal(err)
	}
	base := errors.New("unexpected token")
	wrapped := s.CompileError(base)
	if !errors.Is(wrapped, base) {
		t.Error("compile error must wrap the compiler error")
	}
	if !strings.Contains(wrapped.Error(), "   1 | ") {
		t.Errorf("missing numbered listing: %s", wrapped)
	}
	if got := NumberLines("a\nb"); got != "   1 | a\n   2 | b\n" {
		t.Errorf("NumberLines = %q", got)
	}
}
