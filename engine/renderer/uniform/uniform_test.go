package uniform

import (
	"slices"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend/fake"
)

func TestBlockSizes(t *testing.T) {
	assert.Equal(t, uintptr(128), unsafe.Sizeof(Transforms{}))
	assert.Equal(t, uintptr(5120), unsafe.Sizeof(PerlinNoise{}))
}

func TestBufferUploadsOnlyWhenDirty(t *testing.T) {
	b := fake.New()
	u := NewBuffer[Transforms](b)

	require.Len(t, b.BufferContents(u.ID()), 128)
	assert.Equal(t, u.ID(), b.UniformBinding(TransformsBinding))
	assert.True(t, u.Dirty())

	assert.True(t, u.Update())
	assert.False(t, u.Dirty())
	assert.False(t, u.Update(), "clean buffer must not upload")
	assert.Equal(t, 1, b.Calls["BufferSubData"])

	_ = u.Read()
	assert.False(t, u.Dirty(), "Read must not mark the buffer dirty")

	u.Get().Perspective = mgl32.Ident4()
	assert.True(t, u.Dirty())
	assert.True(t, u.Update())
	assert.Equal(t, 2, b.Calls["BufferSubData"])

	got := b.BufferContents(u.ID())
	assert.Equal(t, common.StructToBytes(&mgl32.Mat4{}), got[:64])
	ident := mgl32.Ident4()
	assert.Equal(t, common.StructToBytes(&ident), got[64:])
	assert.Empty(t, b.Errors)
}

func TestBufferRelease(t *testing.T) {
	b := fake.New()
	u := NewBuffer[PerlinNoise](b)
	u.Release()
	u.Release()

	assert.Zero(t, u.ID())
	assert.False(t, u.Update())
	assert.Equal(t, 1, b.Calls["DeleteBuffer"])
	assert.Zero(t, b.Stats().Buffers)
	assert.Empty(t, b.Errors)
}

func TestNewGlobalsGeneratesPerlinTables(t *testing.T) {
	b := fake.New()
	g := NewGlobals(b, common.NewRandom(7))
	defer g.Release()

	pn := g.PerlinNoise.Read()
	hash := make([]int, 0, PerlinTableSize)
	for _, h := range pn.Hash {
		hash = append(hash, int(h))
	}
	slices.Sort(hash)
	for i, h := range hash {
		require.Equal(t, i, h, "hash must be a permutation of 0..255")
	}
	for _, v := range pn.Vectors {
		assert.InDelta(t, 1.0, v.Vec3().Len(), 1e-5)
		assert.Zero(t, v.W())
	}

	assert.False(t, g.PerlinNoise.Dirty(), "perlin tables are uploaded at creation")
	assert.Equal(t, g.PerlinNoise.ID(), b.UniformBinding(PerlinNoiseBinding))

	g.Update()
	assert.False(t, g.Transforms.Dirty())
	assert.Equal(t, mgl32.Ident4(), g.Transforms.Read().ToWorldSpace)
}

func TestNewGlobalsIsDeterministic(t *testing.T) {
	a := NewGlobals(fake.New(), common.NewRandom(3)).PerlinNoise.Read()
	b := NewGlobals(fake.New(), common.NewRandom(3)).PerlinNoise.Read()
	assert.Equal(t, a, b)

	c := NewGlobals(fake.New(), nil).PerlinNoise.Read()
	d := NewGlobals(fake.New(), common.NewRandom(1)).PerlinNoise.Read()
	assert.Equal(t, c, d)
}

func TestBlocks(t *testing.T) {
	assert.Equal(t, map[string]uint32{"Transforms": 0, "PerlinNoise": 1}, Blocks())
	assert.Contains(t, TransformsSource, "uniform Transforms")
	assert.Contains(t, PerlinNoiseSource, "uniform PerlinNoise")
}
