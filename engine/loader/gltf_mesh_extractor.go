package loader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-gl/engine/model"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor converts the primitives of a parsed glTF document into triangle lists of
// model.GPUVertex.
type gltfMeshExtractor interface {
	// ExtractMesh extracts every primitive of a single mesh.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - []model.MeshPrimitive: one entry per glTF primitive
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int) ([]model.MeshPrimitive, error)

	// ExtractAllMeshes extracts the primitives of every mesh in document order.
	//
	// Returns:
	//   - []model.MeshPrimitive: all primitives, flattened
	//   - error: error if extraction fails
	ExtractAllMeshes() ([]model.MeshPrimitive, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) ([]model.MeshPrimitive, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := &doc.Meshes[meshIndex]
	result := make([]model.MeshPrimitive, 0, len(mesh.Primitives))
	for i := range mesh.Primitives {
		prim, err := e.extractPrimitive(&mesh.Primitives[i])
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, i, err)
		}
		result = append(result, prim)
	}
	return result, nil
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([]model.MeshPrimitive, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	var all []model.MeshPrimitive
	for i := range doc.Meshes {
		prims, err := e.ExtractMesh(i)
		if err != nil {
			return nil, err
		}
		all = append(all, prims...)
	}
	return all, nil
}

// extractPrimitive reads the attributes of one primitive. Normals and tangents are generated
// when the file omits them; vertex colors default to opaque white.
func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive) (model.MeshPrimitive, error) {
	mode := gltfPrimitiveModeTriangles
	if prim.Mode != nil {
		mode = *prim.Mode
	}
	switch mode {
	case gltfPrimitiveModeTriangles, gltfPrimitiveModeTriangleStrip, gltfPrimitiveModeTriangleFan:
	default:
		return model.MeshPrimitive{}, fmt.Errorf("unsupported primitive mode: %d (only triangles supported)", mode)
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return model.MeshPrimitive{}, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := e.parser.ReadFloats(posAccessor, 3)
	if err != nil {
		return model.MeshPrimitive{}, fmt.Errorf("failed to read positions: %w", err)
	}

	n := len(positions) / 3
	vertices := make([]model.GPUVertex, n)
	for i := range vertices {
		copy(vertices[i].Position[:], positions[i*3:])
		vertices[i].Color = [4]float32{1, 1, 1, 1}
	}

	hasNormals, err := e.readAttribute(prim, "NORMAL", 3, n, func(i int, v []float32) {
		copy(vertices[i].Normal[:], v)
	})
	if err != nil {
		return model.MeshPrimitive{}, err
	}
	if _, err := e.readAttribute(prim, "TEXCOORD_0", 2, n, func(i int, v []float32) {
		copy(vertices[i].TexCoord[:], v)
	}); err != nil {
		return model.MeshPrimitive{}, err
	}
	if err := e.readColors(prim, vertices); err != nil {
		return model.MeshPrimitive{}, err
	}
	hasTangents, err := e.readAttribute(prim, "TANGENT", 4, n, func(i int, v []float32) {
		copy(vertices[i].Tangent[:], v)
	})
	if err != nil {
		return model.MeshPrimitive{}, err
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = e.parser.ReadIndices(*prim.Indices); err != nil {
			return model.MeshPrimitive{}, fmt.Errorf("failed to read indices: %w", err)
		}
	} else {
		indices = make([]uint32, n)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for _, idx := range indices {
		if int(idx) >= n {
			return model.MeshPrimitive{}, fmt.Errorf("index %d out of range for %d vertices", idx, n)
		}
	}

	if indices, err = triangulate(indices, mode); err != nil {
		return model.MeshPrimitive{}, err
	}

	// normals must exist before tangents are orthonormalized against them
	if !hasNormals {
		generateNormals(vertices, indices)
	}
	if !hasTangents {
		generateTangents(vertices, indices)
	}

	bmin, bmax := boundingBox(vertices)
	return model.MeshPrimitive{
		Vertices:  vertices,
		Indices:   indices,
		BoundsMin: bmin,
		BoundsMax: bmax,
	}, nil
}

// readAttribute decodes an optional attribute and hands each element to set.
//
// Returns:
//   - bool: true if the attribute was present
//   - error: error if it was present but unreadable or has the wrong element count
func (e *gltfMeshExtractorImpl) readAttribute(prim *gltfPrimitive, name string, components, n int, set func(i int, v []float32)) (bool, error) {
	acc, ok := prim.Attributes[name]
	if !ok {
		return false, nil
	}
	values, err := e.parser.ReadFloats(acc, components)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(values) != n*components {
		return false, fmt.Errorf("%s has %d elements, want %d", name, len(values)/components, n)
	}
	for i := range n {
		set(i, values[i*components:(i+1)*components])
	}
	return true, nil
}

// readColors reads COLOR_0, which may be RGB or RGBA.
func (e *gltfMeshExtractorImpl) readColors(prim *gltfPrimitive, vertices []model.GPUVertex) error {
	acc, ok := prim.Attributes["COLOR_0"]
	if !ok {
		return nil
	}
	components := 4
	if doc := e.parser.Document(); acc >= 0 && acc < len(doc.Accessors) && doc.Accessors[acc].Type == gltfAccessorTypeVec3 {
		components = 3
	}
	_, err := e.readAttribute(prim, "COLOR_0", components, len(vertices), func(i int, v []float32) {
		copy(vertices[i].Color[:], v)
	})
	return err
}

// triangulate converts strip and fan index sequences into a triangle list.
func triangulate(indices []uint32, mode int) ([]uint32, error) {
	switch mode {
	case gltfPrimitiveModeTriangleStrip:
		var out []uint32
		for i := 2; i < len(indices); i++ {
			if i%2 == 0 {
				out = append(out, indices[i-2], indices[i-1], indices[i])
			} else {
				out = append(out, indices[i-1], indices[i-2], indices[i])
			}
		}
		return out, nil
	case gltfPrimitiveModeTriangleFan:
		var out []uint32
		for i := 2; i < len(indices); i++ {
			out = append(out, indices[0], indices[i-1], indices[i])
		}
		return out, nil
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("triangle list has %d indices, not a multiple of 3", len(indices))
	}
	return indices, nil
}

// boundingBox computes the axis-aligned box around the vertex positions.
func boundingBox(vertices []model.GPUVertex) (mgl32.Vec3, mgl32.Vec3) {
	if len(vertices) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	bmin := mgl32.Vec3(vertices[0].Position)
	bmax := bmin
	for _, v := range vertices[1:] {
		for c := range 3 {
			bmin[c] = min(bmin[c], v.Position[c])
			bmax[c] = max(bmax[c], v.Position[c])
		}
	}
	return bmin, bmax
}

// generateNormals computes smooth vertex normals by accumulating area-weighted face normals.
// Vertices touched by no triangle, or only degenerate ones, get +Y.
func generateNormals(vertices []model.GPUVertex, indices []uint32) {
	accum := make([]mgl32.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := mgl32.Vec3(vertices[i0].Position)
		face := mgl32.Vec3(vertices[i1].Position).Sub(p0).Cross(mgl32.Vec3(vertices[i2].Position).Sub(p0))
		accum[i0] = accum[i0].Add(face)
		accum[i1] = accum[i1].Add(face)
		accum[i2] = accum[i2].Add(face)
	}

	for i, n := range accum {
		if n.Len() < 1e-6 {
			vertices[i].Normal = [3]float32{0, 1, 0}
			continue
		}
		vertices[i].Normal = n.Normalize()
	}
}

// generateTangents computes per-vertex tangents from UV gradients, orthonormalized against the
// vertex normal. W holds the bitangent handedness.
func generateTangents(vertices []model.GPUVertex, indices []uint32) {
	tan := make([]mgl32.Vec3, len(vertices))
	btan := make([]mgl32.Vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := mgl32.Vec3(vertices[i0].Position)
		edge1 := mgl32.Vec3(vertices[i1].Position).Sub(p0)
		edge2 := mgl32.Vec3(vertices[i2].Position).Sub(p0)

		uv0 := mgl32.Vec2(vertices[i0].TexCoord)
		duv1 := mgl32.Vec2(vertices[i1].TexCoord).Sub(uv0)
		duv2 := mgl32.Vec2(vertices[i2].TexCoord).Sub(uv0)

		det := duv1[0]*duv2[1] - duv1[1]*duv2[0]
		if det == 0 {
			continue
		}
		inv := 1 / det
		t := edge1.Mul(duv2[1]).Sub(edge2.Mul(duv1[1])).Mul(inv)
		b := edge2.Mul(duv1[0]).Sub(edge1.Mul(duv2[0])).Mul(inv)

		for _, idx := range [3]uint32{i0, i1, i2} {
			tan[idx] = tan[idx].Add(t)
			btan[idx] = btan[idx].Add(b)
		}
	}

	for i := range vertices {
		normal := mgl32.Vec3(vertices[i].Normal)
		ortho := tan[i].Sub(normal.Mul(normal.Dot(tan[i])))
		if ortho.Len() < 1e-6 {
			vertices[i].Tangent = [4]float32{1, 0, 0, 1}
			continue
		}
		ortho = ortho.Normalize()

		w := float32(1)
		if normal.Cross(ortho).Dot(btan[i]) < 0 {
			w = -1
		}
		vertices[i].Tangent = ortho.Vec4(w)
	}
}
