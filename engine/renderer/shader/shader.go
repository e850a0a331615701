package shader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader feeds.
type ShaderType int

const (
	// ShaderTypeVertex is a vertex stage source.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is a fragment stage source.
	ShaderTypeFragment
)

// ErrMissingSource is returned when a shader has no source text or its file cannot be read.
var ErrMissingSource = errors.New("shader source missing")

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	entryPoint                 string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	module                     *wgpu.ShaderModuleDescriptor

	pp PreProcessor
}

// Shader is a pre-processed WGSL source with its reflected entry point and bind group layouts.
type Shader interface {
	// Key returns the shader's unique label.
	Key() string

	// Source returns the processed WGSL source.
	Source() string

	// EntryPoint returns the stage's entry point name.
	EntryPoint() string

	// ShaderType returns the stage.
	ShaderType() ShaderType

	// BindGroupLayoutDescriptors returns the reflected layouts keyed by group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the variable bound at group and binding, or "".
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index
	//
	// Returns:
	//   - string: the WGSL variable name
	BindGroupVarName(group, binding int) string

	// Module returns the shader module descriptor for the processed source.
	Module() *wgpu.ShaderModuleDescriptor

	// Declarations returns the uniform annotations found while pre-processing.
	Declarations() []Annotation

	// CompileError wraps a shader module creation failure with the numbered source listing.
	//
	// Parameters:
	//   - err: the compiler error
	//
	// Returns:
	//   - error: the wrapped error
	CompileError(err error) error
}

var _ Shader = &shader{}

// NewShader reads WGSL source from a file and builds a Shader from it.
//
// Parameters:
//   - key: a unique label for the shader
//   - shaderType: the stage
//   - sourcePath: the file to read
//
// Returns:
//   - Shader: the shader
//   - error: ErrMissingSource if the file cannot be read, or a pre-processing error
func NewShader(key string, shaderType ShaderType, sourcePath string) (Shader, error) {
	if sourcePath == "" {
		return nil, fmt.Errorf("%w: %s has no source path", ErrMissingSource, key)
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMissingSource, key, err)
	}
	return NewShaderFromSource(key, shaderType, string(data))
}

// NewShaderFromSource builds a Shader from WGSL source text.
//
// Parameters:
//   - key: a unique label for the shader
//   - shaderType: the stage
//   - source: the raw WGSL source, annotations allowed
//
// Returns:
//   - Shader: the shader
//   - error: ErrMissingSource for empty source, a pre-processing error, or a missing entry point
func NewShaderFromSource(key string, shaderType ShaderType, source string) (Shader, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: %s is empty", ErrMissingSource, key)
	}
	s := &shader{
		key:        key,
		shaderType: shaderType,
		pp:         NewPreProcessor(),
	}
	processed, err := s.pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("failed to pre-process shader %s: %w", key, err)
	}
	s.source = processed
	s.entryPoint = parseEntryPoint(processed, shaderType)
	if s.entryPoint == "" {
		return nil, fmt.Errorf("shader %s has no %s entry point", key, shaderType)
	}

	visibility := wgpu.ShaderStageFragment
	if shaderType == ShaderTypeVertex {
		visibility = wgpu.ShaderStageVertex
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(processed, visibility)
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: processed,
		},
	}
	return s, nil
}

// String returns the WGSL attribute name of the stage.
func (t ShaderType) String() string {
	if t == ShaderTypeVertex {
		return "@vertex"
	}
	return "@fragment"
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

func (s *shader) CompileError(err error) error {
	return fmt.Errorf("failed to compile shader %s: %w\n%s", s.key, err, NumberLines(s.source))
}

// NumberLines prefixes every line of source with its 1-based line number.
//
// Parameters:
//   - source: the text to number
//
// Returns:
//   - string: the numbered listing, one "%4d | line" per line
func NumberLines(source string) string {
	lines := strings.Split(source, "\n")
	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "%4d | %s\n", i+1, line)
	}
	return sb.String()
}
