// annotations.go defines the annotation types and parser for the Oxy shader pre-processor.
// Annotations are single-line comments prefixed with @oxy: that inject registered source
// snippets or generate vertex attribute declarations from a registered layout, so shader
// inputs never drift from the Go-side vertex structs.
package shader

import (
	"fmt"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a comment line.
type AnnotationType string

const (
	// AnnotationTypeInclude injects the source of a registered snippet at the annotation site.
	//
	// Syntax: //@oxy:include <snippet>
	//
	// Example: //@oxy:include transforms
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeAttributes replaces the annotation with one `in` declaration per slot of a
	// registered vertex layout, in slot order.
	//
	// Syntax: //@oxy:attributes <layout>
	//
	// Example: //@oxy:attributes color_vertex
	AnnotationTypeAttributes AnnotationType = "attributes"
)

// Annotation represents a single parsed @oxy: annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Arg is the snippet or layout name.
	Arg string

	// Line is the 1-based source line the annotation appeared on.
	Line int
}

// parseAnnotation parses one source line. It returns nil without error for lines that carry no annotation.
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	comment, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return nil, nil
	}
	after, ok := strings.CutPrefix(strings.TrimSpace(comment), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case AnnotationTypeInclude, AnnotationTypeAttributes:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy:%s annotation requires exactly one argument", lineNum, args[0])
		}
		return &Annotation{Type: AnnotationType(args[0]), Arg: args[1], Line: lineNum}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNum, args[0])
	}
}
