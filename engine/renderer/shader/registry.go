package shader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/uniform"
)

// registry is the implementation of the Registry interface. It owns every file and program and
// stores them in arenas indexed by FileID and ProgramID; files and programs refer to each other
// only through those identifiers.
type registry struct {
	backend backend.Backend
	reader  SourceReader
	diag    io.Writer
	pp      PreProcessor
	blocks  map[string]uint32

	files     []*shaderFile
	programs  []*program
	filePaths map[string]FileID
	keys      map[string]ProgramID

	preloadWorkers int
	// prefetched holds sources read ahead by LoadManifest, each consumed by its first read
	prefetched map[string][]byte
}

// Registry owns the shader dependency graph: compiled shader files, the programs linked from
// them, and the two-way association between both. All methods must be called from the thread
// that owns the graphics context.
type Registry interface {
	// AddFile registers a shader file by path. The stage is inferred from the extension before
	// any backend call. The file is not loaded; call Reload on it. Registering a path twice
	// returns the existing file.
	//
	// Parameters:
	//   - path: the shader source path
	//
	// Returns:
	//   - ShaderFile: the registered file
	//   - error: ErrUnknownShaderStage if the extension does not name a stage
	AddFile(path string) (ShaderFile, error)

	// AddProgram registers an empty program under a unique key.
	//
	// Parameters:
	//   - key: the program key
	//
	// Returns:
	//   - Program: the registered program
	//   - error: ErrDuplicateProgram if the key is taken
	AddProgram(key string) (Program, error)

	// File returns the file with the given identifier, or nil.
	File(id FileID) ShaderFile

	// FileByPath returns the file registered for path.
	FileByPath(path string) (ShaderFile, bool)

	// Program returns the program registered under key.
	Program(key string) (Program, bool)

	// ProgramByID returns the program with the given identifier, or nil.
	ProgramByID(id ProgramID) Program

	// Files returns every registered file in registration order.
	Files() []ShaderFile

	// Programs returns every registered program in registration order.
	Programs() []Program

	// ReloadPath reloads the file registered for path and then every program depending on it.
	//
	// Parameters:
	//   - path: the shader source path
	//
	// Returns:
	//   - bool: false if no file is registered for path
	//   - error: the joined file and program errors
	ReloadPath(path string) (bool, error)

	// ReloadAll reloads every file and then every program.
	//
	// Returns:
	//   - error: the joined file and program errors
	ReloadAll() error

	// LoadManifest reads a YAML program manifest and registers, builds and links what it declares.
	// The manifest's root is resolved relative to the manifest file's directory.
	//
	// Parameters:
	//   - path: the manifest path, read through the registry's SourceReader
	//
	// Returns:
	//   - error: a parse error, or the joined build errors
	LoadManifest(path string) error

	// LoadManifestBytes is LoadManifest for manifest data already in memory. Its root is used as-is.
	LoadManifestBytes(data []byte) error

	// Release cleans every file and program, releasing all backend shader objects.
	Release()
}

var _ Registry = &registry{}

// NewRegistry creates an empty Registry bound to a backend.
//
// Parameters:
//   - b: the graphics backend, must not be nil
//   - options: a variadic list of RegistryBuilderOption functions to configure the Registry
//
// Returns:
//   - Registry: the registry
func NewRegistry(b backend.Backend, options ...RegistryBuilderOption) Registry {
	if b == nil {
		panic("shader: NewRegistry requires a backend")
	}
	r := &registry{
		backend:        b,
		reader:         OSReader,
		diag:           os.Stdout,
		pp:             NewPreProcessor(),
		blocks:         uniform.Blocks(),
		filePaths:      make(map[string]FileID),
		keys:           make(map[string]ProgramID),
		preloadWorkers: max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *registry) diagf(format string, args ...any) {
	fmt.Fprintf(r.diag, format, args...)
}

func (r *registry) readSource(path string) ([]byte, error) {
	if data, ok := r.prefetched[path]; ok {
		delete(r.prefetched, path)
		return data, nil
	}
	return r.reader.ReadSource(path)
}

func (r *registry) AddFile(path string) (ShaderFile, error) {
	path = filepath.Clean(path)
	if id, ok := r.filePaths[path]; ok {
		return r.files[id], nil
	}
	stage, err := StageFromPath(path)
	if err != nil {
		return nil, err
	}
	f := &shaderFile{reg: r, id: FileID(len(r.files)), path: path, stage: stage}
	r.files = append(r.files, f)
	r.filePaths[path] = f.id
	return f, nil
}

func (r *registry) AddProgram(key string) (Program, error) {
	if _, ok := r.keys[key]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateProgram, key)
	}
	p := &program{reg: r, id: ProgramID(len(r.programs)), key: key, slot: &HandleSlot{}}
	r.programs = append(r.programs, p)
	r.keys[key] = p.id
	return p, nil
}

func (r *registry) File(id FileID) ShaderFile {
	if id < 0 || int(id) >= len(r.files) {
		return nil
	}
	return r.files[id]
}

func (r *registry) FileByPath(path string) (ShaderFile, bool) {
	id, ok := r.filePaths[filepath.Clean(path)]
	if !ok {
		return nil, false
	}
	return r.files[id], true
}

func (r *registry) Program(key string) (Program, bool) {
	id, ok := r.keys[key]
	if !ok {
		return nil, false
	}
	return r.programs[id], true
}

func (r *registry) ProgramByID(id ProgramID) Program {
	if id < 0 || int(id) >= len(r.programs) {
		return nil
	}
	return r.programs[id]
}

func (r *registry) Files() []ShaderFile {
	out := make([]ShaderFile, len(r.files))
	for i, f := range r.files {
		out[i] = f
	}
	return out
}

func (r *registry) Programs() []Program {
	out := make([]Program, len(r.programs))
	for i, p := range r.programs {
		out[i] = p
	}
	return out
}

func (r *registry) ReloadPath(path string) (bool, error) {
	id, ok := r.filePaths[filepath.Clean(path)]
	if !ok {
		return false, nil
	}
	f := r.files[id]
	errs := []error{f.Reload()}
	for _, p := range f.dependents {
		errs = append(errs, r.programs[p].Reload())
	}
	err := errors.Join(errs...)
	common.Logger().Info("shader file reloaded", "path", f.path, "dependents", len(f.dependents), "ok", err == nil)
	return true, err
}

func (r *registry) ReloadAll() error {
	var errs []error
	for _, f := range r.files {
		errs = append(errs, f.Reload())
	}
	for _, p := range r.programs {
		errs = append(errs, p.Reload())
	}
	return errors.Join(errs...)
}

func (r *registry) Release() {
	for _, f := range r.files {
		f.Clean()
	}
	for _, p := range r.programs {
		p.Clean()
	}
}
