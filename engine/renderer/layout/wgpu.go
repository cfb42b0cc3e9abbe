package layout

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuFloatFormats maps a component count to the matching WebGPU vertex format.
var wgpuFloatFormats = [MaxComponents + 1]wgpu.VertexFormat{
	1: wgpu.VertexFormatFloat32,
	2: wgpu.VertexFormatFloat32x2,
	3: wgpu.VertexFormatFloat32x3,
	4: wgpu.VertexFormatFloat32x4,
}

// VertexBufferLayout converts the layout to a WebGPU vertex buffer layout for the packed buffer.
// Shader locations are assigned in slot order starting at 0.
//
// Returns:
//   - wgpu.VertexBufferLayout: the per-vertex buffer layout
func (l Layout) VertexBufferLayout() wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, 0, len(l.slots))
	for i, s := range l.slots {
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         wgpuFloatFormats[s.Components],
			Offset:         uint64(s.BufferOffset) * 4,
			ShaderLocation: uint32(i),
		})
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(l.Stride()),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}
}
