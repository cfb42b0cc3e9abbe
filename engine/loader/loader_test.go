package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend/fake"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/geometry"
)

// quadBin returns a unit quad in the XY plane: positions, six ushort indices and RGBA8 colors.
func quadBin() []byte {
	var buf bytes.Buffer
	for _, p := range [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}} {
		for _, c := range p {
			_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(c))
		}
	}
	for _, i := range []uint16{0, 1, 2, 0, 2, 3} {
		_ = binary.Write(&buf, binary.LittleEndian, i)
	}
	buf.Write([]byte{255, 0, 0, 255, 0, 255, 0, 255, 0, 0, 255, 255, 255, 255, 255, 0})
	return buf.Bytes()
}

// quadDoc returns a glTF document with one mesh of the given number of quad primitives. An
// empty uri leaves the buffer to the GLB binary chunk.
func quadDoc(t *testing.T, uri string, primitives int) []byte {
	t.Helper()
	prim := map[string]any{
		"attributes": map[string]int{"POSITION": 0, "COLOR_0": 2},
		"indices":    1,
	}
	prims := make([]any, primitives)
	for i := range prims {
		prims[i] = prim
	}
	buffer := map[string]any{"byteLength": 76}
	if uri != "" {
		buffer["uri"] = uri
	}
	doc := map[string]any{
		"asset":  map[string]string{"version": "2.0"},
		"meshes": []any{map[string]any{"name": "Quad", "primitives": prims}},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": gltfComponentTypeFloat, "count": 4, "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": gltfComponentTypeUnsignedShort, "count": 6, "type": "SCALAR"},
			map[string]any{"bufferView": 2, "componentType": gltfComponentTypeUnsignedByte, "normalized": true, "count": 4, "type": "VEC4"},
		},
		"bufferViews": []any{
			map[string]int{"buffer": 0, "byteOffset": 0, "byteLength": 48},
			map[string]int{"buffer": 0, "byteOffset": 48, "byteLength": 12},
			map[string]int{"buffer": 0, "byteOffset": 60, "byteLength": 16},
		},
		"buffers": []any{buffer},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

func dataURI(b []byte) string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(b)
}

func glb(jsonChunk, binChunk []byte) []byte {
	var buf bytes.Buffer
	total := gltfGLBHeaderSize + 2*gltfGLBChunkHeader + len(jsonChunk) + len(binChunk)
	for _, v := range []uint32{gltfGLBMagic, gltfGLBVersion, uint32(total), uint32(len(jsonChunk)), gltfGLBChunkJSON} {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}
	buf.Write(jsonChunk)
	for _, v := range []uint32{uint32(len(binChunk)), gltfGLBChunkBIN} {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}
	buf.Write(binChunk)
	return buf.Bytes()
}

func TestLoadImportsQuad(t *testing.T) {
	fsys := fstest.MapFS{"quad.gltf": {Data: quadDoc(t, dataURI(quadBin()), 1)}}
	l := NewLoader(BackendTypeGLTF, WithFS(fsys))

	m, err := l.Load("quad.gltf")
	require.NoError(t, err)
	assert.Equal(t, "Quad", m.Name)
	require.Len(t, m.Primitives, 1)

	p := m.Primitives[0]
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, p.Indices)
	require.Len(t, p.Vertices, 4)
	assert.Equal(t, [3]float32{1, 1, 0}, p.Vertices[2].Position)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, p.Vertices[0].Color)
	assert.Equal(t, [4]float32{1, 1, 1, 0}, p.Vertices[3].Color)
	for _, v := range p.Vertices {
		assert.Equal(t, [3]float32{0, 0, 1}, v.Normal, "generated from counter-clockwise winding")
		assert.Equal(t, [4]float32{1, 0, 0, 1}, v.Tangent, "degenerate UVs fall back to +X")
	}
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, p.BoundsMin)
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, p.BoundsMax)
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 2, m.TriangleCount())
}

func TestLoadCachesByPath(t *testing.T) {
	fsys := fstest.MapFS{"quad.gltf": {Data: quadDoc(t, dataURI(quadBin()), 1)}}
	l := NewLoader(BackendTypeGLTF, WithFS(fsys), WithMesh("prebuilt", &model.Mesh{Name: "prebuilt"}))

	first, err := l.Load("quad.gltf")
	require.NoError(t, err)
	second, err := l.Load("quad.gltf")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Same(t, first, l.Get("quad.gltf"))
	assert.Len(t, l.Meshes(), 2)

	assert.True(t, l.Evict("quad.gltf"))
	assert.False(t, l.Evict("quad.gltf"))
	assert.Nil(t, l.Get("quad.gltf"))
}

func TestLoadResolvesExternalBuffers(t *testing.T) {
	fsys := fstest.MapFS{
		"models/quad.gltf": {Data: quadDoc(t, "quad.bin", 1)},
		"models/quad.bin":  {Data: quadBin()},
	}
	m, err := NewLoader(BackendTypeGLTF, WithFS(fsys)).Load("models/quad.gltf")
	require.NoError(t, err)
	assert.Len(t, m.Primitives[0].Vertices, 4)
}

func TestLoadGLB(t *testing.T) {
	data := glb(quadDoc(t, "", 1), quadBin())
	fsys := fstest.MapFS{"quad.glb": {Data: data}}
	l := NewLoader(BackendTypeGLTF, WithFS(fsys))

	m, err := l.Load("quad.glb")
	require.NoError(t, err)
	assert.Len(t, m.Primitives[0].Indices, 6)

	r, err := l.LoadReader("stream", bytes.NewReader(data), true)
	require.NoError(t, err)
	assert.Equal(t, m.Primitives, r.Primitives)
	assert.Same(t, r, l.Get("stream"))
}

func TestLoadRejects(t *testing.T) {
	bin := quadBin()
	outOfRange := bytes.Clone(bin)
	binary.LittleEndian.PutUint16(outOfRange[48:], 9)

	cases := map[string][]byte{
		"old version":     bytes.Replace(quadDoc(t, dataURI(bin), 1), []byte(`"2.0"`), []byte(`"1.0"`), 1),
		"bad json":        []byte("{"),
		"index too large": quadDoc(t, dataURI(outOfRange), 1),
		"short buffer":    quadDoc(t, dataURI(bin[:40]), 1),
		"no position":     bytes.Replace(quadDoc(t, dataURI(bin), 1), []byte(`"POSITION"`), []byte(`"WHATEVER"`), 1),
		"no meshes":       []byte(`{"asset":{"version":"2.0"}}`),
		"count overflow": bytes.Replace(quadDoc(t, dataURI(bin), 1),
			[]byte(`"count":4,"type":"VEC3"`), []byte(`"count":2305843009213693952,"type":"VEC3"`), 1),
		"huge count without view": bytes.Replace(quadDoc(t, dataURI(bin), 1),
			[]byte(`"bufferView":0,"componentType":5126,"count":4`), []byte(`"componentType":5126,"count":2305843009213693952`), 1),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			l := NewLoader(BackendTypeGLTF, WithFS(fstest.MapFS{"bad.gltf": {Data: data}}))
			_, err := l.Load("bad.gltf")
			assert.Error(t, err)
			assert.Nil(t, l.Get("bad.gltf"))
		})
	}

	_, err := NewLoader(BackendTypeGLTF).Load("model.obj")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewLoader(BackendTypeGLTF).LoadReader("glb", bytes.NewReader([]byte("nope nope nope")), true)
	assert.ErrorIs(t, err, errInvalidGLBMagic)
}

func TestTriangulate(t *testing.T) {
	strip, err := triangulate([]uint32{0, 1, 2, 3, 4}, gltfPrimitiveModeTriangleStrip)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3, 2, 3, 4}, strip)

	fan, err := triangulate([]uint32{0, 1, 2, 3}, gltfPrimitiveModeTriangleFan)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, fan)

	_, err = triangulate([]uint32{0, 1}, gltfPrimitiveModeTriangles)
	assert.Error(t, err)
}

func TestLoadIntoSharesVerticesAcrossPrimitives(t *testing.T) {
	fsys := fstest.MapFS{"double.gltf": {Data: quadDoc(t, dataURI(quadBin()), 2)}}
	l := NewLoader(BackendTypeGLTF, WithFS(fsys))
	g := geometry.NewGeometryBuffer(fake.New(), model.GPUVertexLayout)

	m, err := l.LoadInto("double.gltf", g)
	require.NoError(t, err)
	assert.Equal(t, 8, m.VertexCount())
	assert.Equal(t, uint32(4), g.SizeVertices())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3, 0, 1, 2, 0, 2, 3}, g.Indices())

	_, err = l.LoadInto("missing.gltf", g)
	assert.Error(t, err)
	assert.Equal(t, uint32(12), g.SizeIndices())
}

func TestReloadPath(t *testing.T) {
	fsys := fstest.MapFS{"quad.gltf": {Data: quadDoc(t, dataURI(quadBin()), 1)}}
	var reloaded []string
	l := NewLoader(BackendTypeGLTF, WithFS(fsys), WithReloadFunc(func(path string, m *model.Mesh) {
		reloaded = append(reloaded, path)
	}))

	ok, err := l.ReloadPath("quad.gltf")
	require.NoError(t, err)
	assert.False(t, ok, "not cached yet")

	first, err := l.Load("quad.gltf")
	require.NoError(t, err)

	fsys["quad.gltf"] = &fstest.MapFile{Data: quadDoc(t, dataURI(quadBin()), 2)}
	ok, err = l.ReloadPath("quad.gltf")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"quad.gltf"}, reloaded)
	assert.Len(t, l.Get("quad.gltf").Primitives, 2)
	assert.NotSame(t, first, l.Get("quad.gltf"))

	current := l.Get("quad.gltf")
	fsys["quad.gltf"] = &fstest.MapFile{Data: []byte("{")}
	ok, err = l.ReloadPath("quad.gltf")
	assert.True(t, ok)
	assert.Error(t, err)
	assert.Same(t, current, l.Get("quad.gltf"))
	assert.Len(t, reloaded, 1)
}

func TestNewLoaderPanicsOnUnknownBackend(t *testing.T) {
	assert.Panics(t, func() { NewLoader(LoaderBackendType(42)) })
}
