// Package loader imports mesh geometry from model files and caches it by path.
package loader

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/geometry"
)

// ErrUnsupportedFormat is returned when no backend accepts a file extension.
var ErrUnsupportedFormat = errors.New("loader: unsupported model format")

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	meshCache map[string]*model.Mesh

	backendType LoaderBackendType
	backend     loaderBackend
	options     loaderOptions
}

// loaderOptions collects the builder settings that only matter while constructing the backend.
type loaderOptions struct {
	onReload func(name string, m *model.Mesh)
}

// Loader imports meshes and caches them by file path or caller-chosen name. It implements
// hotreload.Reloader so a watcher can refresh cached meshes when their files change.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the path is already cached, the cached mesh is returned.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - *model.Mesh: the loaded and cached mesh
	//   - error: ErrUnsupportedFormat for an unknown extension, or the import error
	Load(path string) (*model.Mesh, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded mesh
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *model.Mesh: the loaded mesh
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (*model.Mesh, error)

	// LoadInto loads path and appends every primitive to g. Primitives share the buffer's
	// deduplication index, so vertices repeated across them are stored once.
	//
	// Parameters:
	//   - path: the file path to the model file
	//   - g: a buffer whose layout reads model.GPUVertex
	//
	// Returns:
	//   - *model.Mesh: the loaded mesh
	//   - error: the load error, or the first append error
	LoadInto(path string, g geometry.GeometryBuffer) (*model.Mesh, error)

	// Get retrieves a cached mesh by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *model.Mesh: the cached mesh or nil
	Get(name string) *model.Mesh

	// Meshes returns a copy of the mesh cache.
	//
	// Returns:
	//   - map[string]*model.Mesh: all cached meshes keyed by name
	Meshes() map[string]*model.Mesh

	// Evict removes a cached mesh.
	//
	// Returns:
	//   - bool: true if the name was cached
	Evict(name string) bool

	// ReloadPath re-imports a cached file and replaces the cache entry. The previous mesh stays
	// cached if the import fails.
	//
	// Parameters:
	//   - path: the file path as it was passed to Load
	//
	// Returns:
	//   - bool: false if path is not cached
	//   - error: the import error
	ReloadPath(path string) (bool, error)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		meshCache:   make(map[string]*model.Mesh),
		backendType: backendType,
	}

	for _, option := range options {
		option(l)
	}

	if l.backend == nil {
		switch backendType {
		case BackendTypeGLTF:
			l.backend = newGLTFLoaderBackend(nil)
		default:
			panic(fmt.Sprintf("loader: unknown backend type %d", backendType))
		}
	}
	return l
}

func (l *loader) Load(path string) (*model.Mesh, error) {
	l.mu.RLock()
	if cached, ok := l.meshCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	m, err := l.importPath(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.meshCache[path] = m
	l.mu.Unlock()
	return m, nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (*model.Mesh, error) {
	l.mu.RLock()
	if cached, ok := l.meshCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}
	m, err := l.backend.LoadBytes(data, isGLB)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	if m.Name == "" {
		m.Name = name
	}

	l.mu.Lock()
	l.meshCache[name] = m
	l.mu.Unlock()
	return m, nil
}

func (l *loader) LoadInto(path string, g geometry.GeometryBuffer) (*model.Mesh, error) {
	m, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	for i, p := range m.Primitives {
		if err := geometry.AppendIndexed(g, p.Vertices, p.Indices); err != nil {
			return nil, fmt.Errorf("%s primitive %d: %w", path, i, err)
		}
	}
	common.Logger().Debug("mesh appended", "path", path,
		"vertices", m.VertexCount(), "triangles", m.TriangleCount(), "stored", g.SizeVertices())
	return m, nil
}

func (l *loader) Get(name string) *model.Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.meshCache[name]
}

func (l *loader) Meshes() map[string]*model.Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.meshCache)
}

func (l *loader) Evict(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.meshCache[name]
	delete(l.meshCache, name)
	return ok
}

func (l *loader) ReloadPath(path string) (bool, error) {
	l.mu.RLock()
	_, ok := l.meshCache[path]
	l.mu.RUnlock()
	if !ok {
		return false, nil
	}

	m, err := l.importPath(path)
	if err != nil {
		common.Logger().Warn("mesh reload failed", "path", path, "error", err)
		return true, err
	}

	l.mu.Lock()
	l.meshCache[path] = m
	l.mu.Unlock()

	common.Logger().Info("mesh reloaded", "path", path)
	if l.options.onReload != nil {
		l.options.onReload(path, m)
	}
	return true, nil
}

func (l *loader) importPath(path string) (*model.Mesh, error) {
	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}
	m, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	common.Logger().Debug("mesh imported", "path", path, "primitives", len(m.Primitives))
	return m, nil
}

// resolveBackend selects the loader backend that accepts the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range l.backend.Extensions() {
		if e == ext {
			return l.backend, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}
