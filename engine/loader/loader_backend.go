package loader

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
)

// loaderBackend defines the generic interface for importing meshes from files or memory.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load imports every mesh of the file at name.
	//
	// Parameters:
	//   - name: the file path to load
	//
	// Returns:
	//   - *model.Mesh: the imported geometry
	//   - error: error if loading fails
	Load(name string) (*model.Mesh, error)

	// LoadBytes imports every mesh of an in-memory file.
	//
	// Parameters:
	//   - data: the file contents
	//   - binary: true for the binary container variant of the format
	//
	// Returns:
	//   - *model.Mesh: the imported geometry
	//   - error: error if loading fails
	LoadBytes(data []byte, binary bool) (*model.Mesh, error)

	// Extensions lists the lower-case file extensions the backend accepts, with the dot.
	Extensions() []string
}
