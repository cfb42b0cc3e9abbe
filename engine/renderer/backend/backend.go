// Package backend defines the graphics API boundary consumed by the geometry and shader packages.
// Every GPU object crosses this boundary as an opaque unsigned handle, so any implementation exposing
// the capability set below (OpenGL, a recording fake, ...) can drive the engine.
package backend

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Stage identifies a programmable shader stage.
type Stage int

const (
	// StageVertex is the vertex processing stage.
	StageVertex Stage = iota

	// StageFragment is the fragment processing stage.
	StageFragment
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// WGPU maps the stage to its WebGPU visibility flag.
//
// Returns:
//   - wgpu.ShaderStage: the matching stage flag, or wgpu.ShaderStageNone for unknown stages
func (s Stage) WGPU() wgpu.ShaderStage {
	switch s {
	case StageVertex:
		return wgpu.ShaderStageVertex
	case StageFragment:
		return wgpu.ShaderStageFragment
	default:
		return wgpu.ShaderStageNone
	}
}

// BufferTarget identifies the binding point a buffer is bound to.
type BufferTarget int

const (
	// BufferTargetArray holds interleaved vertex attributes.
	BufferTargetArray BufferTarget = iota

	// BufferTargetElementArray holds triangle indices.
	BufferTargetElementArray

	// BufferTargetUniform holds uniform block data.
	BufferTargetUniform
)

// DrawMode identifies the primitive topology of a draw call.
type DrawMode int

const (
	// DrawModeTriangles draws independent triangles.
	DrawModeTriangles DrawMode = iota

	// DrawModeTriangleStrip draws a strip of triangles sharing edges.
	DrawModeTriangleStrip
)

// Backend is the capability set the engine requires from a graphics API.
// All calls must be issued from the thread that owns the graphics context.
type Backend interface {
	// CreateShader allocates a shader object for the given stage.
	//
	// Parameters:
	//   - stage: the shader stage
	//
	// Returns:
	//   - uint32: the shader handle
	CreateShader(stage Stage) uint32

	// CompileShader uploads source text to a shader object and compiles it.
	//
	// Parameters:
	//   - shader: the shader handle
	//   - source: the complete source text
	//
	// Returns:
	//   - bool: true if compilation succeeded
	//   - string: the backend's info log, empty on success
	CompileShader(shader uint32, source string) (bool, string)

	// DeleteShader releases a shader object.
	DeleteShader(shader uint32)

	// CreateProgram allocates a program object.
	CreateProgram() uint32

	// AttachShader attaches a compiled shader object to a program.
	AttachShader(program, shader uint32)

	// LinkProgram links every attached shader of a program.
	//
	// Parameters:
	//   - program: the program handle
	//
	// Returns:
	//   - bool: true if linking succeeded
	//   - string: the backend's info log, empty on success
	LinkProgram(program uint32) (bool, string)

	// DeleteProgram releases a program object.
	DeleteProgram(program uint32)

	// UseProgram selects a program for subsequent draw calls.
	UseProgram(program uint32)

	// AttribLocation resolves a named vertex attribute of a linked program.
	//
	// Parameters:
	//   - program: the program handle
	//   - name: the attribute name
	//
	// Returns:
	//   - uint32: the attribute location
	//   - bool: false if the program has no active attribute with that name
	AttribLocation(program uint32, name string) (uint32, bool)

	// UniformBlockBinding assigns a uniform block of a linked program to a binding point.
	//
	// Parameters:
	//   - program: the linked program handle
	//   - block: the uniform block name
	//   - binding: the uniform buffer binding point
	//
	// Returns:
	//   - bool: false if the program has no active block with that name
	UniformBlockBinding(program uint32, block string, binding uint32) bool

	// CreateVertexArray allocates a vertex array object.
	CreateVertexArray() uint32

	// BindVertexArray binds a vertex array object, 0 unbinds.
	BindVertexArray(vao uint32)

	// DeleteVertexArray releases a vertex array object.
	DeleteVertexArray(vao uint32)

	// CreateBuffer allocates a buffer object.
	CreateBuffer() uint32

	// BindBuffer binds a buffer object to a target, 0 unbinds.
	BindBuffer(target BufferTarget, buffer uint32)

	// BindBufferBase binds a buffer object to an indexed binding point of a target.
	BindBufferBase(target BufferTarget, binding, buffer uint32)

	// BufferData replaces the whole storage of the buffer bound to target.
	BufferData(target BufferTarget, data []byte)

	// BufferSubData overwrites part of the storage of the buffer bound to target.
	BufferSubData(target BufferTarget, offset int, data []byte)

	// DeleteBuffer releases a buffer object.
	DeleteBuffer(buffer uint32)

	// EnableAttribute enables the vertex attribute array at a location for the bound vertex array.
	EnableAttribute(location uint32)

	// AttributePointer describes how a float32 attribute is read from the bound array buffer.
	//
	// Parameters:
	//   - location: the attribute location
	//   - components: the number of float32 components
	//   - stride: the distance between consecutive vertices in bytes
	//   - offset: the offset of the first component in bytes
	AttributePointer(location uint32, components, stride, offset int)

	// DrawElements issues an indexed draw of count uint32 indices from the bound element buffer.
	DrawElements(mode DrawMode, count int)

	// DrawArrays issues a non-indexed draw of count vertices starting at first.
	DrawArrays(mode DrawMode, first, count int)
}

// Stats reports the number of live GPU objects an implementation currently holds.
// Implementations that track allocations expose it for profiling and leak tests.
type Stats struct {
	Shaders      int
	Programs     int
	VertexArrays int
	Buffers      int
}

// StatsProvider is implemented by backends that track live GPU objects.
type StatsProvider interface {
	// Stats returns a snapshot of the live object counts.
	Stats() Stats
}
