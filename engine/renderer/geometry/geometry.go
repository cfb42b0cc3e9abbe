// Package geometry assembles indexed meshes in host memory, deduplicates their vertices, tracks
// whether the GPU copy is up to date and binds the vertex layout to the attributes of whichever
// shader program is currently in use.
package geometry

import (
	"fmt"
	"math"
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/layout"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
)

// DefaultEpsilon is the default component tolerance for vertex deduplication.
const DefaultEpsilon float32 = 0.001

// geometryBuffer is the implementation of the GeometryBuffer interface.
type geometryBuffer struct {
	backend backend.Backend
	layout  layout.Layout
	label   string

	vertexData []float32
	indexData  []uint32
	scratch    []float32

	residency Residency
	vao       uint32
	vbo       uint32
	eab       uint32
	// number of indices in the element buffer, stale data is drawn with its own count
	uploaded  int

	// the handle is borrowed, the program that publishes it owns it
	shader     shader.HandleSource
	adapted    bool
	adaptedID  uint32
	compatible bool
	adaptErr   error

	tracking   bool
	indexStart uint32
	epsilon    float32
	index      *vertexIndex
}

// GeometryBuffer accumulates interleaved vertex data and triangle indices, uploads them to the
// GPU and draws them with a bound shader program. It must be used from the thread that owns the
// graphics context.
type GeometryBuffer interface {
	// AddVertex adds a vertex read from its raw struct fields and returns its index. With
	// deduplication enabled an equivalent vertex already in the buffer is returned instead.
	//
	// Parameters:
	//   - raw: the vertex fields in struct order, at least Layout().StructSize() values
	//
	// Returns:
	//   - uint32: the vertex index
	//   - error: ErrInvalidParameter if raw is too short
	AddVertex(raw []float32) (uint32, error)

	// ConnectTriangle adds a triangle between vertices that already exist. Degenerate triangles
	// are accepted as data. A resident buffer becomes stale.
	//
	// Parameters:
	//   - t: the triangle indices
	//
	// Returns:
	//   - error: ErrInvalidParameter if an index has no vertex
	ConnectTriangle(t IndexedTriangle) error

	// AddTriangle adds three raw vertices and the triangle connecting them.
	//
	// Parameters:
	//   - a, b, c: the raw vertices in winding order
	//
	// Returns:
	//   - IndexedTriangle: the indices that were connected
	//   - error: ErrInvalidParameter if any vertex is too short, nothing is added then
	AddTriangle(a, b, c []float32) (IndexedTriangle, error)

	// ConnectQuad adds the quad ABCD of existing vertices as the triangles (A,B,C) and (A,C,D).
	//
	// Parameters:
	//   - a, b, c, d: the corner indices in winding order
	//
	// Returns:
	//   - error: ErrInvalidParameter if an index has no vertex
	ConnectQuad(a, b, c, d uint32) error

	// AddQuad adds four raw vertices and the two triangles (A,B,C) and (A,C,D) covering them.
	//
	// Parameters:
	//   - a, b, c, d: the raw corners in winding order
	//
	// Returns:
	//   - error: ErrInvalidParameter if any vertex is too short, nothing is added then
	AddQuad(a, b, c, d []float32) error

	// Upload copies the host data to the GPU. A resident buffer is left alone, a stale buffer has
	// its previous allocation released before the new one is created. Every upload invalidates
	// the attribute adaptation.
	//
	// Returns:
	//   - bool: true if an allocation was created
	Upload() bool

	// Release deletes the GPU allocation and makes the buffer absent. Host data is kept.
	//
	// Returns:
	//   - bool: false if the buffer was already absent
	Release() bool

	// Destroy releases the GPU allocation and drops all host data, the bound shader and the
	// vertex index. The buffer may be refilled afterwards.
	Destroy()

	// BindShader sets the source of the program handle used for drawing and tries to adapt to it.
	//
	// Parameters:
	//   - src: the handle source, usually a shader.Program or its *shader.HandleSlot
	//
	// Returns:
	//   - error: the result of Adapt
	BindShader(src shader.HandleSource) error

	// Adapt binds every layout slot to the attribute of the same name in the bound program.
	// Adaptation is skipped if it already ran for the current program id, the cached verdict is
	// returned then.
	//
	// Returns:
	//   - error: ErrNotResident, ErrNoShader, ErrShaderUnusable, or a *MissingAttributeError
	Adapt() error

	// Draw issues an indexed draw of the resident data with the bound program. It re-adapts only
	// when the program id changed since the last adaptation.
	//
	// Returns:
	//   - bool: true if a draw call was issued
	Draw() bool

	// LastAdaptError returns the reason the last adaptation failed, or nil.
	LastAdaptError() error

	// SetEpsilon changes the deduplication tolerance and re-indexes the tracked vertices.
	//
	// Parameters:
	//   - epsilon: the tolerance, must be >= 0
	//
	// Returns:
	//   - error: ErrInvalidParameter if epsilon is negative or NaN, the previous value is kept
	SetEpsilon(epsilon float32) error

	// Epsilon returns the deduplication tolerance.
	Epsilon() float32

	// DisableDeduplication stops deduplicating and clears the vertex index.
	//
	// Returns:
	//   - bool: false if deduplication was already disabled
	DisableDeduplication() bool

	// EnableDeduplication starts deduplicating and indexes the existing vertices from start.
	//
	// Parameters:
	//   - start: the first existing vertex to index, values past the end index nothing
	//
	// Returns:
	//   - bool: false if deduplication was already enabled
	EnableDeduplication(start uint32) bool

	// EnableDeduplicationNow starts deduplicating against vertices added from now on.
	EnableDeduplicationNow() bool

	// EnableDeduplicationRetroactive starts deduplicating against every vertex in the buffer.
	EnableDeduplicationRetroactive() bool

	// Deduplicating reports whether deduplication is enabled.
	Deduplicating() bool

	// SizeVertices returns the number of vertices.
	SizeVertices() uint32

	// SizeIndices returns the number of triangle indices, three per triangle.
	SizeIndices() uint32

	// Residency returns the GPU residency state.
	Residency() Residency

	// Layout returns the vertex layout.
	Layout() layout.Layout

	// Vertex returns a copy of the packed components of vertex i, or nil.
	Vertex(i uint32) []float32

	// Indices returns a copy of the triangle indices.
	Indices() []uint32
}

var _ GeometryBuffer = &geometryBuffer{}

// NewGeometryBuffer creates an empty GeometryBuffer for vertices of layout l.
//
// Parameters:
//   - b: the graphics backend, must not be nil
//   - l: the vertex layout, must have at least one slot
//   - options: a variadic list of GeometryBufferBuilderOption functions to configure the buffer
//
// Returns:
//   - GeometryBuffer: the buffer
func NewGeometryBuffer(b backend.Backend, l layout.Layout, options ...GeometryBufferBuilderOption) GeometryBuffer {
	if b == nil {
		panic("geometry: NewGeometryBuffer requires a backend")
	}
	if l.Len() == 0 {
		panic("geometry: NewGeometryBuffer requires a non-empty layout")
	}
	g := &geometryBuffer{
		backend:  b,
		layout:   l,
		scratch:  make([]float32, l.TotalComponents()),
		tracking: true,
		epsilon:  DefaultEpsilon,
	}
	for _, opt := range options {
		opt(g)
	}
	g.index = newVertexIndex(&g.vertexData, l.TotalComponents(), &g.epsilon)
	return g
}

func (g *geometryBuffer) checkRaw(raw ...[]float32) error {
	want := g.layout.StructSize()
	for _, r := range raw {
		if uint32(len(r)) < want {
			return fmt.Errorf("%w: vertex has %d components, layout needs %d", ErrInvalidParameter, len(r), want)
		}
	}
	return nil
}

func (g *geometryBuffer) checkIndices(indices ...uint32) error {
	n := g.SizeVertices()
	for _, i := range indices {
		if i >= n {
			return fmt.Errorf("%w: index %d out of range for %d vertices", ErrInvalidParameter, i, n)
		}
	}
	return nil
}

func (g *geometryBuffer) AddVertex(raw []float32) (uint32, error) {
	if err := g.checkRaw(raw); err != nil {
		return 0, err
	}
	return g.addVertex(raw), nil
}

func (g *geometryBuffer) addVertex(raw []float32) uint32 {
	g.layout.Pack(g.scratch, raw)
	if g.tracking {
		if i, ok := g.index.find(g.scratch); ok {
			return i
		}
	}
	i := g.SizeVertices()
	g.vertexData = append(g.vertexData, g.scratch...)
	if g.tracking {
		g.index.insert(i)
	}
	return i
}

func (g *geometryBuffer) ConnectTriangle(t IndexedTriangle) error {
	idx := t.indices()
	if err := g.checkIndices(idx[:]...); err != nil {
		return err
	}
	g.connect(idx[:]...)
	return nil
}

func (g *geometryBuffer) connect(indices ...uint32) {
	g.indexData = append(g.indexData, indices...)
	if g.residency == ResidencyResident {
		g.residency = ResidencyStale
	}
}

func (g *geometryBuffer) AddTriangle(a, b, c []float32) (IndexedTriangle, error) {
	if err := g.checkRaw(a, b, c); err != nil {
		return IndexedTriangle{}, err
	}
	t := IndexedTriangle{A: g.addVertex(a), B: g.addVertex(b), C: g.addVertex(c)}
	g.connect(t.A, t.B, t.C)
	return t, nil
}

func (g *geometryBuffer) ConnectQuad(a, b, c, d uint32) error {
	if err := g.checkIndices(a, b, c, d); err != nil {
		return err
	}
	g.connect(a, b, c, a, c, d)
	return nil
}

func (g *geometryBuffer) AddQuad(a, b, c, d []float32) error {
	if err := g.checkRaw(a, b, c, d); err != nil {
		return err
	}
	va, vb, vc, vd := g.addVertex(a), g.addVertex(b), g.addVertex(c), g.addVertex(d)
	g.connect(va, vb, vc, va, vc, vd)
	return nil
}

func (g *geometryBuffer) Upload() bool {
	switch g.residency {
	case ResidencyResident:
		return false
	case ResidencyStale:
		g.Release()
	}

	b := g.backend
	g.vao = b.CreateVertexArray()
	b.BindVertexArray(g.vao)

	g.vbo = b.CreateBuffer()
	b.BindBuffer(backend.BufferTargetArray, g.vbo)
	if len(g.vertexData) > 0 {
		b.BufferData(backend.BufferTargetArray, common.SliceToBytes(g.vertexData))
	}

	g.eab = b.CreateBuffer()
	b.BindBuffer(backend.BufferTargetElementArray, g.eab)
	if len(g.indexData) > 0 {
		b.BufferData(backend.BufferTargetElementArray, common.SliceToBytes(g.indexData))
	}

	g.uploaded = len(g.indexData)

	// the new vertex array has no attribute pointers yet
	g.adapted = false
	g.compatible = false
	g.residency = ResidencyResident

	common.Logger().Debug("geometry uploaded",
		"label", g.label,
		"vertices", g.SizeVertices(),
		"indices", g.SizeIndices(),
	)
	return true
}

func (g *geometryBuffer) Release() bool {
	if g.residency == ResidencyAbsent {
		return false
	}
	b := g.backend
	b.DeleteBuffer(g.vbo)
	b.DeleteBuffer(g.eab)
	b.DeleteVertexArray(g.vao)
	g.vao, g.vbo, g.eab = 0, 0, 0
	g.uploaded = 0
	g.residency = ResidencyAbsent
	g.adapted = false
	g.compatible = false
	common.Logger().Debug("geometry released", "label", g.label)
	return true
}

func (g *geometryBuffer) Destroy() {
	g.Release()
	g.vertexData = nil
	g.indexData = nil
	g.index.rebuild(0, 0)
	g.indexStart = 0
	g.shader = nil
	g.adaptErr = nil
}

func (g *geometryBuffer) BindShader(src shader.HandleSource) error {
	g.shader = src
	return g.Adapt()
}

func (g *geometryBuffer) Adapt() error {
	wasCompatible := g.compatible
	g.compatible = false

	if g.residency == ResidencyAbsent {
		return g.fail(ErrNotResident)
	}
	if g.shader == nil {
		g.adapted = false
		return g.fail(ErrNoShader)
	}
	h := g.shader.Handle()
	if !h.Usable {
		g.adapted = false
		return g.fail(ErrShaderUnusable)
	}
	if g.adapted && g.adaptedID == h.ID {
		g.compatible = wasCompatible
		return g.adaptErr
	}

	g.adapted = true
	g.adaptedID = h.ID

	b := g.backend
	b.BindVertexArray(g.vao)
	b.BindBuffer(backend.BufferTargetArray, g.vbo)
	b.BindBuffer(backend.BufferTargetElementArray, g.eab)

	stride := g.layout.Stride()
	for _, s := range g.layout.Slots() {
		loc, ok := b.AttribLocation(h.ID, s.Name)
		if !ok {
			err := &MissingAttributeError{Name: s.Name, Program: h.ID}
			common.Logger().Warn("geometry shader mismatch", "label", g.label, "attribute", s.Name, "program", h.ID)
			return g.fail(err)
		}
		b.EnableAttribute(loc)
		b.AttributePointer(loc, int(s.Components), stride, int(s.BufferOffset)*4)
	}

	g.compatible = true
	g.adaptErr = nil
	common.Logger().Debug("geometry adapted", "label", g.label, "program", h.ID)
	return nil
}

func (g *geometryBuffer) fail(err error) error {
	g.adaptErr = err
	return err
}

func (g *geometryBuffer) Draw() bool {
	if g.shader == nil {
		return false
	}
	h := g.shader.Handle()
	if !h.Usable {
		// a relinked program may come back under the same id
		g.adapted = false
		g.compatible = false
		return false
	}

	changed := !g.adapted || g.adaptedID != h.ID
	if !(g.compatible && !changed) && !(changed && g.Adapt() == nil) {
		return false
	}

	b := g.backend
	b.BindVertexArray(g.vao)
	b.BindBuffer(backend.BufferTargetArray, g.vbo)
	b.BindBuffer(backend.BufferTargetElementArray, g.eab)
	b.UseProgram(h.ID)
	b.DrawElements(backend.DrawModeTriangles, g.uploaded)
	return true
}

func (g *geometryBuffer) LastAdaptError() error {
	return g.adaptErr
}

func (g *geometryBuffer) SetEpsilon(epsilon float32) error {
	if epsilon < 0 || math.IsNaN(float64(epsilon)) {
		return fmt.Errorf("%w: epsilon %v must be >= 0", ErrInvalidParameter, epsilon)
	}
	g.epsilon = epsilon
	if g.tracking {
		g.index.rebuild(g.indexStart, g.SizeVertices())
	}
	return nil
}

func (g *geometryBuffer) Epsilon() float32 {
	return g.epsilon
}

func (g *geometryBuffer) DisableDeduplication() bool {
	if !g.tracking {
		return false
	}
	g.tracking = false
	g.index.clear()
	return true
}

func (g *geometryBuffer) EnableDeduplication(start uint32) bool {
	if g.tracking {
		return false
	}
	g.tracking = true
	g.indexStart = min(start, g.SizeVertices())
	g.index.rebuild(g.indexStart, g.SizeVertices())
	return true
}

func (g *geometryBuffer) EnableDeduplicationNow() bool {
	return g.EnableDeduplication(g.SizeVertices())
}

func (g *geometryBuffer) EnableDeduplicationRetroactive() bool {
	return g.EnableDeduplication(0)
}

func (g *geometryBuffer) Deduplicating() bool {
	return g.tracking
}

func (g *geometryBuffer) SizeVertices() uint32 {
	return uint32(len(g.vertexData)) / g.layout.TotalComponents()
}

func (g *geometryBuffer) SizeIndices() uint32 {
	return uint32(len(g.indexData))
}

func (g *geometryBuffer) Residency() Residency {
	return g.residency
}

func (g *geometryBuffer) Layout() layout.Layout {
	return g.layout
}

func (g *geometryBuffer) Vertex(i uint32) []float32 {
	if i >= g.SizeVertices() {
		return nil
	}
	n := g.layout.TotalComponents()
	return slices.Clone(g.vertexData[i*n : (i+1)*n])
}

func (g *geometryBuffer) Indices() []uint32 {
	return slices.Clone(g.indexData)
}
