package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-bulb/engine/camera"
	"github.com/Carmen-Shannon/oxy-bulb/engine/march"
	"github.com/Carmen-Shannon/oxy-bulb/engine/settings"
)

// Registered struct names usable in //@bulb:include and //@bulb:uniform.
const (
	StructCameraState    = "camera_state"
	StructRenderSettings = "render_settings"
	StructFrameUniforms  = "frame_uniforms"
)

// registryEntry pairs an embedded WGSL struct source with its WGSL type name.
type registryEntry struct {
	Source string
	Type   string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry map[string]registryEntry
	declarations   []Annotation
}

// PreProcessor expands //@bulb: annotations in WGSL source.
type PreProcessor interface {
	// Process replaces include annotations with struct sources and uniform annotations with
	// @group/@binding declarations. The declarations list is reset on each call.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: an error if an annotation is malformed or names an unknown struct
	Process(source string) (string, error)

	// Declarations returns the uniform annotations seen by the last Process call, in source order.
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the renderer's GPU structs registered.
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[string]registryEntry{
			StructCameraState:    {Source: camera.GPUCameraStateSource, Type: "CameraState"},
			StructRenderSettings: {Source: settings.GPURenderSettingsSource, Type: "RenderSettings"},
			StructFrameUniforms:  {Source: march.GPUFrameUniformSource, Type: "FrameUniforms"},
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	included := make(map[string]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		entry, ok := p.structRegistry[a.Struct]
		if !ok {
			return "", fmt.Errorf("line %d: unknown struct %q", a.Line, a.Struct)
		}
		switch a.Type {
		case AnnotationTypeInclude:
			if included[a.Struct] {
				continue
			}
			included[a.Struct] = true
			out = append(out, strings.TrimRight(entry.Source, "\n"))
		case AnnotationTypeUniform:
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) var<uniform> %s: %s;", a.Group, a.Binding, a.VarName, entry.Type))
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
