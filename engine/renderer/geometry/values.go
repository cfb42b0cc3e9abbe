package geometry

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// AddVertexValue adds a vertex struct made of float32 based fields. The struct is read as its
// raw float32 view, so its field offsets must match the buffer layout's struct offsets.
//
// Parameters:
//   - g: the buffer to add to
//   - v: the vertex struct
//
// Returns:
//   - uint32: the vertex index
//   - error: ErrInvalidParameter if the struct is smaller than the layout expects
func AddVertexValue[T any](g GeometryBuffer, v T) (uint32, error) {
	return g.AddVertex(common.StructToFloats(&v))
}

// AddTriangleValues adds three vertex structs and the triangle connecting them.
func AddTriangleValues[T any](g GeometryBuffer, a, b, c T) (IndexedTriangle, error) {
	return g.AddTriangle(common.StructToFloats(&a), common.StructToFloats(&b), common.StructToFloats(&c))
}

// AddQuadValues adds four vertex structs and the two triangles (A,B,C) and (A,C,D) covering them.
func AddQuadValues[T any](g GeometryBuffer, a, b, c, d T) error {
	return g.AddQuad(
		common.StructToFloats(&a),
		common.StructToFloats(&b),
		common.StructToFloats(&c),
		common.StructToFloats(&d),
	)
}

// AppendIndexed adds a list of vertex structs and the triangles connecting them, with indices
// relative to the start of vertices. When deduplication is on, repeated vertices collapse onto
// existing ones and the indices are remapped to match. Nothing is added if the indices are not
// whole triangles or reference a vertex outside the list.
//
// Parameters:
//   - g: the buffer to add to
//   - vertices: the vertex structs
//   - indices: the triangle list, three indices per triangle
//
// Returns:
//   - error: ErrInvalidParameter if the indices or the struct size are rejected
func AppendIndexed[T any](g GeometryBuffer, vertices []T, indices []uint32) error {
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a whole number of triangles", ErrInvalidParameter, len(indices))
	}
	for _, i := range indices {
		if int(i) >= len(vertices) {
			return fmt.Errorf("%w: index %d out of range for %d vertices", ErrInvalidParameter, i, len(vertices))
		}
	}
	if len(vertices) > 0 {
		if n, want := len(common.StructToFloats(&vertices[0])), int(g.Layout().StructSize()); n < want {
			return fmt.Errorf("%w: vertex has %d floats, want %d", ErrInvalidParameter, n, want)
		}
	}

	remap := make([]uint32, len(vertices))
	for i := range vertices {
		idx, err := g.AddVertex(common.StructToFloats(&vertices[i]))
		if err != nil {
			return err
		}
		remap[i] = idx
	}
	for i := 0; i < len(indices); i += 3 {
		t := IndexedTriangle{A: remap[indices[i]], B: remap[indices[i+1]], C: remap[indices[i+2]]}
		if err := g.ConnectTriangle(t); err != nil {
			return err
		}
	}
	return nil
}
