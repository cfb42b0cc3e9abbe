package loader

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-gl/engine/model"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	fsys fs.FS
}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - fsys: where documents and external buffers are read from, nil for the operating system
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(fsys fs.FS) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{fsys: fsys}
}

func (b *gltfLoaderBackendImpl) Extensions() []string {
	return []string{".gltf", ".glb"}
}

func (b *gltfLoaderBackendImpl) Load(name string) (*model.Mesh, error) {
	p := newGLTFParser(b.fsys)
	if err := p.Parse(name); err != nil {
		return nil, err
	}
	base := filepath.Base(name)
	return b.extract(p, base[:len(base)-len(filepath.Ext(base))])
}

func (b *gltfLoaderBackendImpl) LoadBytes(data []byte, binary bool) (*model.Mesh, error) {
	p := newGLTFParser(b.fsys)
	if err := p.ParseBytes(data, binary); err != nil {
		return nil, err
	}
	return b.extract(p, "")
}

// extract converts every mesh of a parsed document. The mesh is named after the first named
// glTF mesh, or fallback.
func (b *gltfLoaderBackendImpl) extract(p gltfParser, fallback string) (*model.Mesh, error) {
	prims, err := newGLTFMeshExtractor(p).ExtractAllMeshes()
	if err != nil {
		return nil, err
	}
	if len(prims) == 0 {
		return nil, fmt.Errorf("document contains no meshes")
	}

	name := fallback
	for _, m := range p.Document().Meshes {
		if m.Name != "" {
			name = m.Name
			break
		}
	}
	return &model.Mesh{Name: name, Primitives: prims}, nil
}
