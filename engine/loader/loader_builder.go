package loader

import (
	"io/fs"

	"github.com/Carmen-Shannon/oxy-gl/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFS is an option builder that reads model files and their external buffers from fsys
// instead of the operating system.
//
// Parameters:
//   - fsys: the file system paths are resolved in
//
// Returns:
//   - LoaderBuilderOption: a function that applies the file system option to a loader
func WithFS(fsys fs.FS) LoaderBuilderOption {
	return func(l *loader) {
		if l.backendType == BackendTypeGLTF {
			l.backend = newGLTFLoaderBackend(fsys)
		}
	}
}

// WithMesh is an option builder that pre-populates the mesh cache.
//
// Parameters:
//   - key: the cache key for the mesh
//   - m: the mesh to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the mesh option to a loader
func WithMesh(key string, m *model.Mesh) LoaderBuilderOption {
	return func(l *loader) {
		l.meshCache[key] = m
	}
}

// WithReloadFunc is an option builder that sets a callback run after ReloadPath replaces a
// cached mesh, typically to rebuild the geometry buffers built from it.
//
// Parameters:
//   - fn: receives the reloaded path and the new mesh
//
// Returns:
//   - LoaderBuilderOption: a function that applies the reload callback option to a loader
func WithReloadFunc(fn func(path string, m *model.Mesh)) LoaderBuilderOption {
	return func(l *loader) {
		l.options.onReload = fn
	}
}
