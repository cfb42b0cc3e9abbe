//go:build !js

// Package gl implements backend.Backend on top of the OpenGL 4.1 core profile.
// A context must be current on the calling thread before NewBackend is called, and every
// method must be called from that thread.
package gl

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// glBackend is the OpenGL implementation of backend.Backend.
// It counts the objects it creates and deletes so profilers can report live GPU resources.
type glBackend struct {
	stats backend.Stats
}

// Backend is a backend.Backend that also reports live object counts.
type Backend interface {
	backend.Backend
	backend.StatsProvider
}

var _ Backend = &glBackend{}

// NewBackend loads the OpenGL function pointers for the current context.
//
// Returns:
//   - Backend: the OpenGL backend
//   - error: error if the OpenGL bindings could not be initialized
func NewBackend() (Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl: failed to initialize OpenGL bindings: %w", err)
	}
	return &glBackend{}, nil
}

func (b *glBackend) Stats() backend.Stats {
	return b.stats
}

func stageEnum(stage backend.Stage) uint32 {
	if stage == backend.StageFragment {
		return gl.FRAGMENT_SHADER
	}
	return gl.VERTEX_SHADER
}

func targetEnum(target backend.BufferTarget) uint32 {
	switch target {
	case backend.BufferTargetElementArray:
		return gl.ELEMENT_ARRAY_BUFFER
	case backend.BufferTargetUniform:
		return gl.UNIFORM_BUFFER
	default:
		return gl.ARRAY_BUFFER
	}
}

func modeEnum(mode backend.DrawMode) uint32 {
	if mode == backend.DrawModeTriangleStrip {
		return gl.TRIANGLE_STRIP
	}
	return gl.TRIANGLES
}

func dataPtr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}

func (b *glBackend) CreateShader(stage backend.Stage) uint32 {
	b.stats.Shaders++
	return gl.CreateShader(stageEnum(stage))
}

func (b *glBackend) CompileShader(shader uint32, source string) (bool, string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
	return false, strings.TrimRight(log, "\x00")
}

func (b *glBackend) DeleteShader(shader uint32) {
	b.stats.Shaders--
	gl.DeleteShader(shader)
}

func (b *glBackend) CreateProgram() uint32 {
	b.stats.Programs++
	return gl.CreateProgram()
}

func (b *glBackend) AttachShader(program, shader uint32) {
	gl.AttachShader(program, shader)
}

func (b *glBackend) LinkProgram(program uint32) (bool, string) {
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
	return false, strings.TrimRight(log, "\x00")
}

func (b *glBackend) DeleteProgram(program uint32) {
	b.stats.Programs--
	gl.DeleteProgram(program)
}

func (b *glBackend) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (b *glBackend) AttribLocation(program uint32, name string) (uint32, bool) {
	loc := gl.GetAttribLocation(program, gl.Str(name+"\x00"))
	if loc < 0 {
		return 0, false
	}
	return uint32(loc), true
}

func (b *glBackend) UniformBlockBinding(program uint32, block string, binding uint32) bool {
	index := gl.GetUniformBlockIndex(program, gl.Str(block+"\x00"))
	if index == gl.INVALID_INDEX {
		return false
	}
	gl.UniformBlockBinding(program, index, binding)
	return true
}

func (b *glBackend) CreateVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	b.stats.VertexArrays++
	return vao
}

func (b *glBackend) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

func (b *glBackend) DeleteVertexArray(vao uint32) {
	gl.DeleteVertexArrays(1, &vao)
	b.stats.VertexArrays--
}

func (b *glBackend) CreateBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	b.stats.Buffers++
	return buf
}

func (b *glBackend) BindBuffer(target backend.BufferTarget, buffer uint32) {
	gl.BindBuffer(targetEnum(target), buffer)
}

func (b *glBackend) BindBufferBase(target backend.BufferTarget, binding, buffer uint32) {
	gl.BindBufferBase(targetEnum(target), binding, buffer)
}

func (b *glBackend) BufferData(target backend.BufferTarget, data []byte) {
	gl.BufferData(targetEnum(target), len(data), dataPtr(data), gl.STATIC_DRAW)
}

func (b *glBackend) BufferSubData(target backend.BufferTarget, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(targetEnum(target), offset, len(data), gl.Ptr(data))
}

func (b *glBackend) DeleteBuffer(buffer uint32) {
	gl.DeleteBuffers(1, &buffer)
	b.stats.Buffers--
}

func (b *glBackend) EnableAttribute(location uint32) {
	gl.EnableVertexAttribArray(location)
}

func (b *glBackend) AttributePointer(location uint32, components, stride, offset int) {
	gl.VertexAttribPointerWithOffset(location, int32(components), gl.FLOAT, false, int32(stride), uintptr(offset))
}

func (b *glBackend) DrawElements(mode backend.DrawMode, count int) {
	gl.DrawElements(modeEnum(mode), int32(count), gl.UNSIGNED_INT, nil)
}

func (b *glBackend) DrawArrays(mode backend.DrawMode, first, count int) {
	gl.DrawArrays(modeEnum(mode), int32(first), int32(count))
}
