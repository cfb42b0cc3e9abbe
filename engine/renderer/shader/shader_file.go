package shader

import (
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
)

// FileID addresses a ShaderFile inside its Registry. IDs are stable for the registry's lifetime.
type FileID int

// shaderFile is the implementation of the ShaderFile interface.
type shaderFile struct {
	reg   *registry
	id    FileID
	path  string
	stage backend.Stage

	built  bool
	handle uint32
	source string

	// dependents are the programs that declared this file as a dependency
	dependents []ProgramID
}

// ShaderFile is one compiled shader stage loaded from a source file. A file knows the programs
// that depend on it so that releasing its stage first releases every program linked against it.
type ShaderFile interface {
	// ID returns the file's stable identifier within its registry.
	//
	// Returns:
	//   - FileID: the identifier
	ID() FileID

	// Path returns the source path. It is fixed at construction.
	//
	// Returns:
	//   - string: the cleaned source path
	Path() string

	// Stage returns the stage inferred from the file extension. It is fixed at construction.
	//
	// Returns:
	//   - backend.Stage: the shader stage
	Stage() backend.Stage

	// IsBuilt reports whether the stage compiled and its backend handle is live.
	//
	// Returns:
	//   - bool: true if built
	IsBuilt() bool

	// GPUHandle returns the backend shader handle, or 0 if not built.
	//
	// Returns:
	//   - uint32: the backend handle
	GPUHandle() uint32

	// Source returns the pre-processed source text of the last successful read.
	//
	// Returns:
	//   - string: the source text, empty if never read
	Source() string

	// Dependents returns the programs that declared this file as a dependency, in registration order.
	//
	// Returns:
	//   - []ProgramID: the dependent program identifiers
	Dependents() []ProgramID

	// Reload cleans the file, then reads, pre-processes and compiles its source.
	// Failures are written to the registry's diagnostic sink, leave the file not built,
	// and leave no backend shader allocated.
	//
	// Returns:
	//   - error: ErrSourceNotFound, or a *BuildError wrapping ErrBuildFailure
	Reload() error

	// Clean releases the built stage. Every dependent program is cleaned first.
	// Does nothing if the file is not built.
	Clean()
}

var _ ShaderFile = &shaderFile{}

// StageFromPath infers the shader stage from a file name's extension.
//
// Parameters:
//   - path: the shader file path
//
// Returns:
//   - backend.Stage: StageVertex for .vert, StageFragment for .frag
//   - error: ErrUnknownShaderStage for any other or a missing extension
func StageFromPath(path string) (backend.Stage, error) {
	ext := filepath.Ext(filepath.Base(path))
	switch ext {
	case ".vert":
		return backend.StageVertex, nil
	case ".frag":
		return backend.StageFragment, nil
	case "", ".":
		return 0, fmt.Errorf("%w: could not determine ending of %q", ErrUnknownShaderStage, path)
	default:
		return 0, fmt.Errorf("%w: unknown ending %q for %q", ErrUnknownShaderStage, ext[1:], path)
	}
}

func (f *shaderFile) ID() FileID {
	return f.id
}

func (f *shaderFile) Path() string {
	return f.path
}

func (f *shaderFile) Stage() backend.Stage {
	return f.stage
}

func (f *shaderFile) IsBuilt() bool {
	return f.built
}

func (f *shaderFile) GPUHandle() uint32 {
	if !f.built {
		return 0
	}
	return f.handle
}

func (f *shaderFile) Source() string {
	return f.source
}

func (f *shaderFile) Dependents() []ProgramID {
	return append([]ProgramID(nil), f.dependents...)
}

func (f *shaderFile) addDependent(p ProgramID) bool {
	var added bool
	f.dependents, added = common.AppendUnique(f.dependents, p)
	return added
}

func (f *shaderFile) Reload() error {
	f.Clean()

	raw, err := f.reg.readSource(f.path)
	if err != nil {
		f.reg.diagf("Error: %s does not exist!\n", f.path)
		common.Logger().Warn("shader source unreadable", "path", f.path, "error", err)
		return fmt.Errorf("%w: %s: %w", ErrSourceNotFound, f.path, err)
	}

	source, err := f.reg.pp.Process(string(raw))
	if err != nil {
		f.reg.diagf("Error: Can't pre-process %s\n%v\n", f.path, err)
		common.Logger().Warn("shader pre-processing failed", "path", f.path, "error", err)
		return &BuildError{Name: f.path, Stage: "preprocess", Log: err.Error()}
	}
	f.source = source

	b := f.reg.backend
	id := b.CreateShader(f.stage)
	if ok, log := b.CompileShader(id, source); !ok {
		f.reg.diagf("Error: Can't compile %s\nCode:\n%s\n%s\n", f.path, source, log)
		b.DeleteShader(id)
		common.Logger().Warn("shader compile failed", "path", f.path, "stage", f.stage)
		return &BuildError{Name: f.path, Stage: "compile", Log: log}
	}

	f.handle = id
	f.built = true
	common.Logger().Debug("shader compiled", "path", f.path, "stage", f.stage, "handle", id)
	return nil
}

func (f *shaderFile) Clean() {
	if !f.built {
		return
	}
	for _, p := range f.dependents {
		f.reg.programs[p].Clean()
	}
	f.reg.backend.DeleteShader(f.handle)
	f.handle = 0
	f.built = false
}
