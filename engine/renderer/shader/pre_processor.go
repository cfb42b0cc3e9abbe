// pre_processor.go implements the Oxy shader pre-processor. It scans shader source for
// @oxy: annotations and replaces them with registered snippet text or with attribute
// declarations generated from a vertex layout.
//
// The pre-processor maintains two registries:
//   - snippets: maps a snippet name to source text, used by @oxy:include.
//   - layouts: maps a layout name to a layout.Layout, used by @oxy:attributes.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/layout"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/uniform"
)

// attributeTypes maps a component count to the matching float vector type name.
var attributeTypes = [layout.MaxComponents + 1]string{1: "float", 2: "vec2", 3: "vec3", 4: "vec4"}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	snippets map[string]string
	layouts  map[string]layout.Layout
}

// PreProcessor rewrites shader source containing @oxy: annotations.
type PreProcessor interface {
	// Process replaces every annotation in source with its expansion. Lines without
	// annotations are kept verbatim.
	//
	// Parameters:
	//   - source: the raw shader source
	//
	// Returns:
	//   - string: the processed source
	//   - error: an error if an annotation is malformed or names an unknown snippet or layout
	Process(source string) (string, error)

	// RegisterSnippet makes source available to @oxy:include under name, replacing any previous entry.
	RegisterSnippet(name, source string)

	// RegisterLayout makes l available to @oxy:attributes under name, replacing any previous entry.
	RegisterLayout(name string, l layout.Layout)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the engine's uniform blocks and standard vertex
// layouts pre-registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		snippets: map[string]string{
			"transforms":   uniform.TransformsSource,
			"perlin_noise": uniform.PerlinNoiseSource,
		},
		layouts: map[string]layout.Layout{
			"vertex":       model.GPUVertexLayout,
			"color_vertex": model.ColorVertexLayout,
		},
	}
}

func (p *preProcessor) RegisterSnippet(name, source string) {
	p.snippets[name] = source
}

func (p *preProcessor) RegisterLayout(name string, l layout.Layout) {
	p.layouts[name] = l
}

func (p *preProcessor) Process(source string) (string, error) {
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

		switch a.Type {
		case AnnotationTypeInclude:
			snippet, ok := p.snippets[a.Arg]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", a.Line, a.Arg)
			}
			out = append(out, strings.TrimRight(snippet, "\n"))
		case AnnotationTypeAttributes:
			l, ok := p.layouts[a.Arg]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:attributes layout %q", a.Line, a.Arg)
			}
			for _, s := range l.Slots() {
				out = append(out, fmt.Sprintf("in %s %s;", attributeTypes[s.Components], s.Name))
			}
		}
	}
	return strings.Join(out, "\n"), nil
}
