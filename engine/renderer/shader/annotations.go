// annotations.go defines the //@bulb: annotation syntax understood by the pre-processor.
// Annotations are single-line WGSL comments that inject registered struct sources or
// generate uniform binding declarations from those structs.
package shader

import (
	"fmt"
	"strconv"
	"strings"
)

// annotationPrefix marks a pre-processor annotation inside a "//" comment.
const annotationPrefix = "@bulb:"

// AnnotationType identifies the kind of annotation on a line.
type AnnotationType string

const (
	// AnnotationTypeInclude injects the source of a registered struct.
	//
	// Syntax: //@bulb:include <struct>
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeUniform generates a uniform declaration for a registered struct.
	//
	// Syntax: //@bulb:uniform <group> <binding> <var_name> <struct>
	AnnotationTypeUniform AnnotationType = "uniform"
)

// Annotation is one parsed pre-processor line.
type Annotation struct {
	Type    AnnotationType
	Line    int
	Group   int
	Binding int
	VarName string
	Struct  string
}

// parseAnnotation parses a single source line. It returns nil, nil for lines that are not
// annotations.
//
// Parameters:
//   - line: the raw source line
//   - lineNo: the 1-based line number, used in errors
//
// Returns:
//   - *Annotation: the parsed annotation or nil
//   - error: an error if the annotation is malformed
func parseAnnotation(line string, lineNo int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return nil, nil
	}
	rest, ok = strings.CutPrefix(strings.TrimSpace(rest), annotationPrefix)
	if !ok {
		return nil, nil
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return nil, fmt.Errorf("line %d: empty annotation", lineNo)
	}

	a := &Annotation{Type: AnnotationType(fields[0]), Line: lineNo}
	args := fields[1:]
	switch a.Type {
	case AnnotationTypeInclude:
		if len(args) != 1 {
			return nil, fmt.Errorf("line %d: include takes 1 argument, got %d", lineNo, len(args))
		}
		a.Struct = args[0]
	case AnnotationTypeUniform:
		if len(args) != 4 {
			return nil, fmt.Errorf("line %d: uniform takes 4 arguments, got %d", lineNo, len(args))
		}
		group, err := strconv.Atoi(args[0])
		if err != nil || group < 0 {
			return nil, fmt.Errorf("line %d: invalid group %q", lineNo, args[0])
		}
		binding, err := strconv.Atoi(args[1])
		if err != nil || binding < 0 {
			return nil, fmt.Errorf("line %d: invalid binding %q", lineNo, args[1])
		}
		a.Group, a.Binding, a.VarName, a.Struct = group, binding, args[2], args[3]
	default:
		return nil, fmt.Errorf("line %d: unknown annotation %q", lineNo, fields[0])
	}
	return a, nil
}
