// Package fake provides an in-memory recording implementation of backend.Backend for tests.
// It hands out monotonically increasing handles, tracks every live object, counts calls per
// operation, and records misuse (double deletes, unknown handles) instead of crashing.
package fake

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
)

// Shader is the recorded state of a fake shader object.
type Shader struct {
	Stage    backend.Stage
	Source   string
	Compiled bool
}

// Program is the recorded state of a fake program object.
type Program struct {
	Attached []uint32
	Linked   bool
}

// Draw is a recorded draw call.
type Draw struct {
	Mode        backend.DrawMode
	First       int
	Count       int
	Program     uint32
	VertexArray uint32
}

// Pointer is a recorded attribute pointer configuration.
type Pointer struct {
	VertexArray uint32
	Location    uint32
	Components  int
	Stride      int
	Offset      int
}

// Backend is a recording backend.Backend. The exported fields script its behavior and may be
// changed between calls.
type Backend struct {
	// CompileError returns a non-empty info log to make compilation of source fail.
	CompileError func(source string) string

	// LinkError returns a non-empty info log to make linking of a program fail.
	LinkError func(program uint32) string

	// Attributes is the attribute table shared by every linked program.
	Attributes map[string]uint32

	// ProgramAttributes overrides Attributes for individual programs.
	ProgramAttributes map[uint32]map[string]uint32

	// Blocks is the set of uniform block names every linked program declares.
	Blocks map[string]bool

	// BlockBindings records the binding point assigned to each block per program.
	BlockBindings map[uint32]map[string]uint32

	// Calls counts invocations per method name.
	Calls map[string]int

	// Draws lists every issued draw call in order.
	Draws []Draw

	// Pointers lists every attribute pointer configuration in order.
	Pointers []Pointer

	// Errors lists every misuse observed, such as deleting a handle twice.
	Errors []string

	next     uint32
	shaders  map[uint32]*Shader
	programs map[uint32]*Program
	vaos     map[uint32]bool
	buffers  map[uint32][]byte
	bound    map[backend.BufferTarget]uint32
	bases    map[uint32]uint32
	vao      uint32
	current  uint32
}

var _ backend.Backend = &Backend{}
var _ backend.StatsProvider = &Backend{}

// New creates an empty recording backend.
//
// Returns:
//   - *Backend: the fake backend
func New() *Backend {
	return &Backend{
		Attributes:        make(map[string]uint32),
		ProgramAttributes: make(map[uint32]map[string]uint32),
		Blocks:            make(map[string]bool),
		BlockBindings:     make(map[uint32]map[string]uint32),
		Calls:             make(map[string]int),
		shaders:           make(map[uint32]*Shader),
		programs:          make(map[uint32]*Program),
		vaos:              make(map[uint32]bool),
		buffers:           make(map[uint32][]byte),
		bound:             make(map[backend.BufferTarget]uint32),
		bases:             make(map[uint32]uint32),
	}
}

func (b *Backend) handle() uint32 {
	b.next++
	return b.next
}

func (b *Backend) errorf(format string, args ...any) {
	b.Errors = append(b.Errors, fmt.Sprintf(format, args...))
}

// Stats returns the live object counts.
func (b *Backend) Stats() backend.Stats {
	return backend.Stats{
		Shaders:      len(b.shaders),
		Programs:     len(b.programs),
		VertexArrays: len(b.vaos),
		Buffers:      len(b.buffers),
	}
}

// Shader returns the recorded state of a live shader, or nil.
func (b *Backend) Shader(id uint32) *Shader {
	return b.shaders[id]
}

// Program returns the recorded state of a live program, or nil.
func (b *Backend) Program(id uint32) *Program {
	return b.programs[id]
}

// BufferContents returns the data last uploaded to a live buffer.
func (b *Backend) BufferContents(id uint32) []byte {
	return b.buffers[id]
}

// UniformBinding returns the buffer bound to a uniform binding point, or 0.
func (b *Backend) UniformBinding(binding uint32) uint32 {
	return b.bases[binding]
}

// CurrentProgram returns the program selected by the last UseProgram call.
func (b *Backend) CurrentProgram() uint32 {
	return b.current
}

func (b *Backend) CreateShader(stage backend.Stage) uint32 {
	b.Calls["CreateShader"]++
	id := b.handle()
	b.shaders[id] = &Shader{Stage: stage}
	return id
}

func (b *Backend) CompileShader(shader uint32, source string) (bool, string) {
	b.Calls["CompileShader"]++
	s, ok := b.shaders[shader]
	if !ok {
		b.errorf("CompileShader: unknown shader %d", shader)
		return false, "unknown shader"
	}
	s.Source = source
	if b.CompileError != nil {
		if log := b.CompileError(source); log != "" {
			s.Compiled = false
			return false, log
		}
	}
	s.Compiled = true
	return true, ""
}

func (b *Backend) DeleteShader(shader uint32) {
	b.Calls["DeleteShader"]++
	if _, ok := b.shaders[shader]; !ok {
		b.errorf("DeleteShader: unknown shader %d", shader)
		return
	}
	delete(b.shaders, shader)
}

func (b *Backend) CreateProgram() uint32 {
	b.Calls["CreateProgram"]++
	id := b.handle()
	b.programs[id] = &Program{}
	return id
}

func (b *Backend) AttachShader(program, shader uint32) {
	b.Calls["AttachShader"]++
	p, ok := b.programs[program]
	if !ok {
		b.errorf("AttachShader: unknown program %d", program)
		return
	}
	s, ok := b.shaders[shader]
	if !ok || !s.Compiled {
		b.errorf("AttachShader: shader %d is not a compiled shader", shader)
		return
	}
	p.Attached = append(p.Attached, shader)
}

func (b *Backend) LinkProgram(program uint32) (bool, string) {
	b.Calls["LinkProgram"]++
	p, ok := b.programs[program]
	if !ok {
		b.errorf("LinkProgram: unknown program %d", program)
		return false, "unknown program"
	}
	for _, s := range p.Attached {
		if _, live := b.shaders[s]; !live {
			return false, fmt.Sprintf("attached shader %d was deleted", s)
		}
	}
	if b.LinkError != nil {
		if log := b.LinkError(program); log != "" {
			p.Linked = false
			return false, log
		}
	}
	p.Linked = true
	return true, ""
}

func (b *Backend) DeleteProgram(program uint32) {
	b.Calls["DeleteProgram"]++
	if _, ok := b.programs[program]; !ok {
		b.errorf("DeleteProgram: unknown program %d", program)
		return
	}
	delete(b.programs, program)
	if b.current == program {
		b.current = 0
	}
}

func (b *Backend) UseProgram(program uint32) {
	b.Calls["UseProgram"]++
	if program != 0 {
		if p, ok := b.programs[program]; !ok || !p.Linked {
			b.errorf("UseProgram: program %d is not linked", program)
		}
	}
	b.current = program
}

func (b *Backend) AttribLocation(program uint32, name string) (uint32, bool) {
	b.Calls["AttribLocation"]++
	p, ok := b.programs[program]
	if !ok || !p.Linked {
		b.errorf("AttribLocation: program %d is not linked", program)
		return 0, false
	}
	table := b.Attributes
	if t, ok := b.ProgramAttributes[program]; ok {
		table = t
	}
	loc, ok := table[name]
	return loc, ok
}

func (b *Backend) UniformBlockBinding(program uint32, block string, binding uint32) bool {
	b.Calls["UniformBlockBinding"]++
	p, ok := b.programs[program]
	if !ok || !p.Linked {
		b.errorf("UniformBlockBinding: program %d is not linked", program)
		return false
	}
	if !b.Blocks[block] {
		return false
	}
	if b.BlockBindings[program] == nil {
		b.BlockBindings[program] = make(map[string]uint32)
	}
	b.BlockBindings[program][block] = binding
	return true
}

func (b *Backend) CreateVertexArray() uint32 {
	b.Calls["CreateVertexArray"]++
	id := b.handle()
	b.vaos[id] = true
	return id
}

func (b *Backend) BindVertexArray(vao uint32) {
	b.Calls["BindVertexArray"]++
	if vao != 0 && !b.vaos[vao] {
		b.errorf("BindVertexArray: unknown vertex array %d", vao)
	}
	b.vao = vao
}

func (b *Backend) DeleteVertexArray(vao uint32) {
	b.Calls["DeleteVertexArray"]++
	if !b.vaos[vao] {
		b.errorf("DeleteVertexArray: unknown vertex array %d", vao)
		return
	}
	delete(b.vaos, vao)
	if b.vao == vao {
		b.vao = 0
	}
}

func (b *Backend) CreateBuffer() uint32 {
	b.Calls["CreateBuffer"]++
	id := b.handle()
	b.buffers[id] = nil
	return id
}

func (b *Backend) BindBuffer(target backend.BufferTarget, buffer uint32) {
	b.Calls["BindBuffer"]++
	if _, ok := b.buffers[buffer]; buffer != 0 && !ok {
		b.errorf("BindBuffer: unknown buffer %d", buffer)
	}
	b.bound[target] = buffer
}

func (b *Backend) BindBufferBase(target backend.BufferTarget, binding, buffer uint32) {
	b.Calls["BindBufferBase"]++
	if _, ok := b.buffers[buffer]; !ok {
		b.errorf("BindBufferBase: unknown buffer %d", buffer)
		return
	}
	b.bound[target] = buffer
	if target == backend.BufferTargetUniform {
		b.bases[binding] = buffer
	}
}

func (b *Backend) BufferData(target backend.BufferTarget, data []byte) {
	b.Calls["BufferData"]++
	id := b.bound[target]
	if _, ok := b.buffers[id]; !ok {
		b.errorf("BufferData: no buffer bound to target %d", target)
		return
	}
	b.buffers[id] = slices.Clone(data)
}

func (b *Backend) BufferSubData(target backend.BufferTarget, offset int, data []byte) {
	b.Calls["BufferSubData"]++
	id := b.bound[target]
	buf, ok := b.buffers[id]
	if !ok || offset+len(data) > len(buf) {
		b.errorf("BufferSubData: write of %d bytes at %d out of range for buffer %d", len(data), offset, id)
		return
	}
	copy(buf[offset:], data)
}

func (b *Backend) DeleteBuffer(buffer uint32) {
	b.Calls["DeleteBuffer"]++
	if _, ok := b.buffers[buffer]; !ok {
		b.errorf("DeleteBuffer: unknown buffer %d", buffer)
		return
	}
	delete(b.buffers, buffer)
	for t, id := range b.bound {
		if id == buffer {
			b.bound[t] = 0
		}
	}
}

func (b *Backend) EnableAttribute(location uint32) {
	b.Calls["EnableAttribute"]++
}

func (b *Backend) AttributePointer(location uint32, components, stride, offset int) {
	b.Calls["AttributePointer"]++
	b.Pointers = append(b.Pointers, Pointer{
		VertexArray: b.vao,
		Location:    location,
		Components:  components,
		Stride:      stride,
		Offset:      offset,
	})
}

func (b *Backend) DrawElements(mode backend.DrawMode, count int) {
	b.Calls["DrawElements"]++
	b.draw(mode, 0, count)
}

func (b *Backend) DrawArrays(mode backend.DrawMode, first, count int) {
	b.Calls["DrawArrays"]++
	b.draw(mode, first, count)
}

func (b *Backend) draw(mode backend.DrawMode, first, count int) {
	if p, ok := b.programs[b.current]; !ok || !p.Linked {
		b.errorf("draw: program %d is not linked", b.current)
	}
	b.Draws = append(b.Draws, Draw{Mode: mode, First: first, Count: count, Program: b.current, VertexArray: b.vao})
}
