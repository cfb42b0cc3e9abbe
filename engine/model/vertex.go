// Package model defines the engine's standard vertex formats and their attribute layouts.
package model

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/layout"
)

// GPUVertex is the standard lit mesh vertex.
// Size: 64 bytes, every field is float32 based so it can be read as 16 packed floats.
type GPUVertex struct {
	Position [3]float32 `attr:"position"` // offset  0: vertex position in model space
	Normal   [3]float32 `attr:"normal"`   // offset 12: vertex normal for lighting
	TexCoord [2]float32 `attr:"texCoord"` // offset 24: UV texture coordinate
	Color    [4]float32 `attr:"color"`    // offset 32: per-vertex RGBA color
	Tangent  [4]float32 `attr:"tangent"`  // offset 48: tangent (xyz) + handedness (w)
}

// ColorVertex is the minimal unlit vertex: a position and an RGB color.
type ColorVertex struct {
	Position [3]float32 `attr:"position"`
	Color    [3]float32 `attr:"color"`
}

var (
	// GPUVertexLayout is the attribute layout of GPUVertex.
	GPUVertexLayout = layout.MustOf[GPUVertex]()

	// ColorVertexLayout is the attribute layout of ColorVertex.
	ColorVertexLayout = layout.MustOf[ColorVertex]()
)

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}
