package uniform

import (
	_ "embed"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
)

// Binding points of the engine's global uniform blocks.
const (
	TransformsBinding  uint32 = 0
	PerlinNoiseBinding uint32 = 1
)

// PerlinTableSize is the number of entries in the perlin permutation and gradient tables.
const PerlinTableSize = 256

// TransformsSource is the GLSL declaration of the Transforms block, matching Transforms.
//
//go:embed assets/transforms.glsl
var TransformsSource string

// PerlinNoiseSource is the GLSL declaration of the PerlinNoise block plus a perlinNoise(vec3)
// function sampling it, matching PerlinNoise.
//
//go:embed assets/perlin_noise.glsl
var PerlinNoiseSource string

// Transforms holds the camera matrices shared by every program.
// Size: 128 bytes (std140).
type Transforms struct {
	ToWorldSpace mgl32.Mat4 // offset  0: world transform
	Perspective  mgl32.Mat4 // offset 64: projection matrix
}

// PerlinNoise holds the permutation and gradient tables sampled by perlinNoise in GLSL.
// The hash table is read as ivec4[64] on the GPU so it packs without std140 array padding.
// Size: 5120 bytes (std140).
type PerlinNoise struct {
	Hash    [PerlinTableSize]int32      // offset    0: permutation of 0..255
	Vectors [PerlinTableSize]mgl32.Vec4 // offset 1024: unit gradients, w is zero
}

func (Transforms) BlockName() string { return "Transforms" }
func (Transforms) Binding() uint32   { return TransformsBinding }

func (PerlinNoise) BlockName() string { return "PerlinNoise" }
func (PerlinNoise) Binding() uint32   { return PerlinNoiseBinding }

// Blocks returns the block name to binding point table of the global blocks.
//
// Returns:
//   - map[string]uint32: a fresh table the caller may modify
func Blocks() map[string]uint32 {
	return map[string]uint32{
		Transforms{}.BlockName():  TransformsBinding,
		PerlinNoise{}.BlockName(): PerlinNoiseBinding,
	}
}

// Globals owns the uniform buffers every program may read.
type Globals struct {
	Transforms  *Buffer[Transforms]
	PerlinNoise *Buffer[PerlinNoise]
}

// NewGlobals allocates the global uniform buffers. The perlin tables are generated from rng and
// uploaded once; they do not change afterwards.
//
// Parameters:
//   - b: the graphics backend
//   - rng: the generator for the perlin tables, nil uses a generator seeded with 1
//
// Returns:
//   - *Globals: the allocated buffers
func NewGlobals(b backend.Backend, rng *common.Random) *Globals {
	if rng == nil {
		rng = common.NewRandom(1)
	}
	g := &Globals{
		Transforms:  NewBuffer[Transforms](b),
		PerlinNoise: NewBuffer[PerlinNoise](b),
	}

	t := g.Transforms.Get()
	t.ToWorldSpace = mgl32.Ident4()
	t.Perspective = mgl32.Ident4()

	pn := g.PerlinNoise.Get()
	for i := range pn.Vectors {
		v := rng.UnitVector3()
		pn.Vectors[i] = mgl32.Vec4{float32(v[0]), float32(v[1]), float32(v[2]), 0}
	}
	for i, p := range rng.Spawn().Perm(PerlinTableSize) {
		pn.Hash[i] = int32(p)
	}
	g.PerlinNoise.Update()

	return g
}

// Update uploads the transforms block if it changed and rebinds it.
func (g *Globals) Update() {
	g.Transforms.Update()
}

// Release deletes both buffers.
func (g *Globals) Release() {
	g.Transforms.Release()
	g.PerlinNoise.Release()
}
