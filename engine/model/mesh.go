package model

import "github.com/go-gl/mathgl/mgl32"

// MeshPrimitive is one indexed triangle list of a mesh.
type MeshPrimitive struct {
	Vertices []GPUVertex
	Indices  []uint32

	// BoundsMin and BoundsMax are the corners of the axis-aligned box around Vertices.
	BoundsMin mgl32.Vec3
	BoundsMax mgl32.Vec3
}

// Mesh is imported geometry ready to be appended to a geometry buffer.
type Mesh struct {
	Name       string
	Primitives []MeshPrimitive
}

// VertexCount returns the number of vertices across every primitive.
//
// Returns:
//   - int: the total vertex count
func (m *Mesh) VertexCount() int {
	n := 0
	for _, p := range m.Primitives {
		n += len(p.Vertices)
	}
	return n
}

// TriangleCount returns the number of triangles across every primitive.
//
// Returns:
//   - int: the total triangle count
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, p := range m.Primitives {
		n += len(p.Indices) / 3
	}
	return n
}
