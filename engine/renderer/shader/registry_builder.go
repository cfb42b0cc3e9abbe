package shader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/layout"
)

// RegistryBuilderOption is a functional option for configuring a Registry via NewRegistry.
type RegistryBuilderOption func(*registry)

// WithDiagnostics is an option builder that sets where compile and link diagnostics are written.
// Diagnostics default to os.Stdout.
//
// Parameters:
//   - w: the diagnostic sink, nil discards diagnostics
//
// Returns:
//   - RegistryBuilderOption: a function that applies the diagnostics option to a registry
func WithDiagnostics(w io.Writer) RegistryBuilderOption {
	return func(r *registry) {
		if w == nil {
			w = io.Discard
		}
		r.diag = w
	}
}

// WithSourceReader is an option builder that sets how shader sources are read.
// Sources default to OSReader.
//
// Parameters:
//   - reader: the source reader
//
// Returns:
//   - RegistryBuilderOption: a function that applies the source reader option to a registry
func WithSourceReader(reader SourceReader) RegistryBuilderOption {
	return func(r *registry) {
		r.reader = reader
	}
}

// WithSnippet is an option builder that registers a source snippet for //@oxy:include.
//
// Parameters:
//   - name: the snippet name used in the annotation
//   - source: the text injected in place of the annotation
//
// Returns:
//   - RegistryBuilderOption: a function that applies the snippet option to a registry
func WithSnippet(name, source string) RegistryBuilderOption {
	return func(r *registry) {
		r.pp.RegisterSnippet(name, source)
	}
}

// WithLayout is an option builder that registers a vertex layout for //@oxy:attributes.
//
// Parameters:
//   - name: the layout name used in the annotation
//   - l: the layout whose slots become attribute declarations
//
// Returns:
//   - RegistryBuilderOption: a function that applies the layout option to a registry
func WithLayout(name string, l layout.Layout) RegistryBuilderOption {
	return func(r *registry) {
		r.pp.RegisterLayout(name, l)
	}
}

// WithPreloadWorkers is an option builder that sets how many workers prefetch manifest sources.
//
// Parameters:
//   - n: the worker count, values below 1 are raised to 1
//
// Returns:
//   - RegistryBuilderOption: a function that applies the preload workers option to a registry
func WithPreloadWorkers(n int) RegistryBuilderOption {
	return func(r *registry) {
		r.preloadWorkers = max(n, 1)
	}
}

// WithUniformBlock is an option builder that assigns a uniform block name to a binding point in
// every program the registry links. The engine's global blocks are assigned by default.
//
// Parameters:
//   - name: the uniform block name as declared in GLSL
//   - binding: the uniform buffer binding point
//
// Returns:
//   - RegistryBuilderOption: a function that applies the uniform block option to a registry
func WithUniformBlock(name string, binding uint32) RegistryBuilderOption {
	return func(r *registry) {
		r.blocks[name] = binding
	}
}
