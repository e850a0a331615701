package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslTypeLayout is the byte size and alignment of a WGSL type.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// wgslPrimitiveLayoutMap holds the host-shareable scalar and vector layouts used by uniforms.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32":       {4, 4},
	"i32":       {4, 4},
	"u32":       {4, 4},
	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},
	"vec2<u32>": {8, 8},
	"vec4<u32>": {16, 16},
	"vec4<i32>": {16, 16},
}

var (
	// structBlockRegex captures a struct's name and body.
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// fieldRegex captures a field name and type, skipping leading attributes.
	fieldRegex = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*(.+)$`)

	// bindGroupDeclRegex captures group, binding, address space, name, and type from
	// declarations like: @group(0) @binding(2) var state: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)
)

func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// parseStructLayouts computes the uniform layout of every struct in the source whose fields
// are all primitives or previously seen structs.
func parseStructLayouts(source string) map[string]wgslTypeLayout {
	layouts := make(map[string]wgslTypeLayout)
	for _, m := range structBlockRegex.FindAllStringSubmatch(source, -1) {
		offset, maxAlign := uint64(0), uint64(1)
		ok := true
		for _, raw := range strings.Split(m[2], ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			f := fieldRegex.FindStringSubmatch(raw)
			if f == nil {
				ok = false
				break
			}
			if strings.Contains(raw, "@builtin") {
				continue
			}
			typeName := strings.TrimSpace(f[2])
			l, known := wgslPrimitiveLayoutMap[typeName]
			if !known {
				l, known = layouts[typeName]
			}
			if !known {
				ok = false
				break
			}
			offset = roundUpAlign(l.align, offset) + l.size
			maxAlign = max(maxAlign, l.align)
		}
		if ok {
			layouts[m[1]] = wgslTypeLayout{size: roundUpAlign(maxAlign, offset), align: maxAlign}
		}
	}
	return layouts
}

// classifyResource builds the layout entry for one declaration. Uniforms become uniform buffers
// sized from their struct; texture_2d<f32> becomes an unfilterable float texture, which is what
// textureLoad on an RGBA32Float target requires.
func classifyResource(binding uint32, visibility wgpu.ShaderStage, addressSpace, typeName string, layouts map[string]wgslTypeLayout) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
	}
	switch {
	case addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		if l, ok := layouts[typeName]; ok {
			entry.Buffer.MinBindingSize = l.size
		} else if l, ok := wgslPrimitiveLayoutMap[typeName]; ok {
			entry.Buffer.MinBindingSize = l.size
		}
	case strings.HasPrefix(addressSpace, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		if strings.Contains(addressSpace, "read_write") {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
	case strings.HasPrefix(typeName, "texture_2d<"):
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		entry.Texture.SampleType = wgpu.TextureSampleTypeUnfilterableFloat
		if strings.Contains(typeName, "<u32>") {
			entry.Texture.SampleType = wgpu.TextureSampleTypeUint
		} else if strings.Contains(typeName, "<i32>") {
			entry.Texture.SampleType = wgpu.TextureSampleTypeSint
		}
	}
	return entry
}

// parseBindGroupLayouts reflects the resource declarations of a processed source into layout
// descriptors keyed by group, plus the variable names keyed by group and binding.
//
// Parameters:
//   - source: the processed WGSL source
//   - visibility: the stage visibility for every entry
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group
//   - map[int]map[int]string: variable names keyed by group and binding
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	cleaned := stripComments(source)
	layouts := parseStructLayouts(cleaned)

	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)
	for _, m := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		entry := classifyResource(uint32(binding), visibility, strings.TrimSpace(m[3]), strings.TrimSpace(m[5]), layouts)
		groups[group] = append(groups[group], entry)
		if names[group] == nil {
			names[group] = make(map[int]string)
		}
		names[group][binding] = m[4]
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return result, names
}

// parseEntryPoint returns the name of the first entry point of the given stage, or "".
func parseEntryPoint(source string, shaderType ShaderType) string {
	re := fragmentEntryRegex
	if shaderType == ShaderTypeVertex {
		re = vertexEntryRegex
	}
	if m := re.FindStringSubmatch(stripComments(source)); m != nil {
		return m[1]
	}
	return ""
}

// stripComments removes block comments (nesting allowed) and then line comments.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i++
				continue
			}
			if source[i] == '*' && source[i+1] == '/' && depth > 0 {
				depth--
				i++
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}

	lines := strings.Split(sb.String(), "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "//"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}

// MergeBindGroupLayouts combines the layouts of the vertex and fragment stages, OR-ing the
// visibility of bindings present in both.
//
// Parameters:
//   - a: layouts of one stage
//   - b: layouts of the other stage
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged layouts keyed by group
func MergeBindGroupLayouts(a, b map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	entries := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	add := func(src map[int]wgpu.BindGroupLayoutDescriptor) {
		for g, desc := range src {
			if entries[g] == nil {
				entries[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, e := range desc.Entries {
				if existing, ok := entries[g][e.Binding]; ok {
					existing.Visibility |= e.Visibility
					entries[g][e.Binding] = existing
					continue
				}
				entries[g][e.Binding] = e
			}
		}
	}
	add(a)
	add(b)

	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for g, byBinding := range entries {
		list := make([]wgpu.BindGroupLayoutEntry, 0, len(byBinding))
		for _, e := range byBinding {
			list = append(list, e)
		}
		sort.Slice(list, func(i, j int) bool {
			return list[i].Binding < list[j].Binding
		})
		merged[g] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return merged
}
