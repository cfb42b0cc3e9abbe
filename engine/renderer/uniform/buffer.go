// Package uniform manages typed uniform buffer objects and the engine's global uniform blocks.
package uniform

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
)

// Block is implemented by the value types stored in a uniform Buffer. The layout of the Go type
// must match the std140 layout of the GLSL block it mirrors.
type Block interface {
	// BlockName returns the uniform block name as declared in GLSL.
	BlockName() string

	// Binding returns the fixed binding point of the block.
	Binding() uint32
}

// Buffer is a uniform buffer object holding one value of a block type. Writes through Get are
// tracked and uploaded on the next Update.
type Buffer[T Block] struct {
	backend backend.Backend
	id      uint32
	value   T
	dirty   bool
}

// NewBuffer allocates a uniform buffer sized for T and binds it to T's binding point.
// The zero value is considered dirty so the first Update uploads it.
//
// Parameters:
//   - b: the graphics backend
//
// Returns:
//   - *Buffer[T]: the allocated buffer
func NewBuffer[T Block](b backend.Backend) *Buffer[T] {
	u := &Buffer[T]{backend: b, dirty: true}
	u.id = b.CreateBuffer()
	u.bind()
	b.BufferData(backend.BufferTargetUniform, make([]byte, unsafe.Sizeof(u.value)))
	return u
}

func (u *Buffer[T]) bind() {
	u.backend.BindBufferBase(backend.BufferTargetUniform, u.value.Binding(), u.id)
}

// Get returns a pointer to the stored value for modification and marks the buffer dirty.
func (u *Buffer[T]) Get() *T {
	u.dirty = true
	return &u.value
}

// Read returns a copy of the stored value without marking the buffer dirty.
func (u *Buffer[T]) Read() T {
	return u.value
}

// Dirty reports whether the stored value changed since the last upload.
func (u *Buffer[T]) Dirty() bool {
	return u.dirty
}

// ID returns the backend buffer handle, 0 after Release.
func (u *Buffer[T]) ID() uint32 {
	return u.id
}

// Update binds the buffer to its binding point and uploads the stored value if it is dirty.
//
// Returns:
//   - bool: true if data was uploaded
func (u *Buffer[T]) Update() bool {
	if u.id == 0 {
		return false
	}
	u.bind()
	if !u.dirty {
		return false
	}
	u.backend.BufferSubData(backend.BufferTargetUniform, 0, common.StructToBytes(&u.value))
	u.dirty = false
	return true
}

// Release deletes the backend buffer. The buffer must not be updated afterwards.
func (u *Buffer[T]) Release() {
	if u.id == 0 {
		return
	}
	u.backend.DeleteBuffer(u.id)
	u.id = 0
}
