package geometry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned for rejected arguments such as a negative epsilon, a raw
	// vertex shorter than the layout or a triangle index without a vertex. Nothing is mutated.
	ErrInvalidParameter = errors.New("geometry: invalid parameter")

	// ErrMissingAttribute is wrapped by MissingAttributeError.
	ErrMissingAttribute = errors.New("geometry: missing attribute")

	// ErrNoShader is returned by Adapt when no shader has been bound.
	ErrNoShader = errors.New("geometry: no shader bound")

	// ErrShaderUnusable is returned by Adapt when the bound handle is not usable.
	ErrShaderUnusable = errors.New("geometry: shader is not usable")

	// ErrNotResident is returned by Adapt when the buffer has no GPU allocation.
	ErrNotResident = errors.New("geometry: buffer is not resident")
)

// MissingAttributeError reports a layout slot the active program does not declare. The buffer
// stays incompatible with that program until its id changes.
type MissingAttributeError struct {
	Name    string
	Program uint32
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("geometry: attribute %q does not exist in program %d", e.Name, e.Program)
}

func (e *MissingAttributeError) Unwrap() error {
	return ErrMissingAttribute
}
