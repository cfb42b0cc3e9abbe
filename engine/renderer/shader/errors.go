package shader

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownShaderStage is a configuration error: the file name has no extension or one that
	// does not name a shader stage (.vert, .frag).
	ErrUnknownShaderStage = errors.New("shader: unknown shader stage")

	// ErrBuildFailure is wrapped by every compile or link failure.
	ErrBuildFailure = errors.New("shader: build failure")

	// ErrDependencyNotBuilt is returned when a program is reloaded while one of its shader files is not built.
	ErrDependencyNotBuilt = errors.New("shader: dependency not built")

	// ErrSourceNotFound is returned when a shader file's source cannot be read.
	ErrSourceNotFound = errors.New("shader: source not found")

	// ErrDuplicateProgram is returned when a program key is registered twice.
	ErrDuplicateProgram = errors.New("shader: duplicate program")

	// ErrForeignResource is returned when a file or program from another registry is passed in.
	ErrForeignResource = errors.New("shader: resource belongs to another registry")
)

// BuildError describes a failed compile or link. It wraps ErrBuildFailure.
type BuildError struct {
	// Name is the shader file path or the program key.
	Name string

	// Stage is "compile", "link" or "preprocess".
	Stage string

	// Log is the backend's info log or the pre-processor error text.
	Log string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("shader: %s of %s failed: %s", e.Stage, e.Name, e.Log)
}

func (e *BuildError) Unwrap() error {
	return ErrBuildFailure
}
