package layout

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAssignsBufferOffsets(t *testing.T) {
	var l Layout
	require.NoError(t, l.Append(Slot("position", 3, 0)))
	require.NoError(t, l.Append(Slot("color", 3, 3)))
	require.NoError(t, l.Append(Slot("uv", 2, 8)))

	slots := l.Slots()
	assert.Equal(t, uint32(0), slots[0].BufferOffset)
	assert.Equal(t, uint32(3), slots[1].BufferOffset)
	assert.Equal(t, uint32(6), slots[2].BufferOffset)
	assert.Equal(t, uint32(8), l.TotalComponents())
	assert.Equal(t, 32, l.Stride())
	assert.Equal(t, uint32(10), l.StructSize())
}

func TestAppendRejectsInvalidSlots(t *testing.T) {
	var l Layout
	assert.ErrorIs(t, l.Append(Slot("position", 0, 0)), ErrInvalidLayout)
	assert.ErrorIs(t, l.Append(Slot("position", 5, 0)), ErrInvalidLayout)
	assert.ErrorIs(t, l.Append(Slot("", 3, 0)), ErrInvalidLayout)
	require.NoError(t, l.Append(Slot("position", 3, 0)))
	assert.ErrorIs(t, l.Append(Slot("position", 3, 3)), ErrInvalidLayout)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, uint32(3), l.TotalComponents())
}

func TestComposeIsPureAndAssociative(t *testing.T) {
	a := MustLayout(Slot("position", 3, 0))
	b := MustLayout(Slot("normal", 3, 3))
	c := MustLayout(Slot("uv", 2, 6))

	left, err := Compose(a, b)
	require.NoError(t, err)
	left, err = Compose(left, c)
	require.NoError(t, err)

	right, err := Compose(b, c)
	require.NoError(t, err)
	right, err = Compose(a, right)
	require.NoError(t, err)

	assert.Equal(t, left.Slots(), right.Slots())
	assert.Equal(t, uint32(8), left.TotalComponents())
	assert.Equal(t, uint32(6), left.Slots()[2].BufferOffset)

	// inputs are untouched
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, uint32(0), b.Slots()[0].BufferOffset)
}

func TestComposeRejectsDuplicateNames(t *testing.T) {
	a := MustLayout(Slot("position", 3, 0))
	_, err := Compose(a, a)
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestAppendToCopyDoesNotAlias(t *testing.T) {
	base := MustLayout(Slot("position", 3, 0), Slot("color", 3, 3))
	x, y := base, base
	require.NoError(t, x.Append(Slot("uv", 2, 6)))
	require.NoError(t, y.Append(Slot("normal", 3, 6)))

	assert.Equal(t, "uv", x.Slots()[2].Name)
	assert.Equal(t, "normal", y.Slots()[2].Name)
	assert.Equal(t, 2, base.Len())
}

func TestPackReordersByStructOffset(t *testing.T) {
	// color is stored first in the struct but packed second
	l := MustLayout(Slot("position", 2, 3), Slot("color", 3, 0))
	dst := make([]float32, l.TotalComponents())
	l.Pack(dst, []float32{0.1, 0.2, 0.3, 5, 6})
	assert.Equal(t, []float32{5, 6, 0.1, 0.2, 0.3}, dst)
}

type testBase struct {
	Position [3]float32 `attr:"position"`
	Normal   [3]float32 `attr:"normal"`
}

type testVertex struct {
	testBase
	Weight  float32
	Color   [4]float32 `attr:"color"`
	Ignored [2]float32 `attr:"-"`
	hidden  float32
}

func TestOfReadsFieldOffsets(t *testing.T) {
	l, err := Of[testVertex]()
	require.NoError(t, err)

	slots := l.Slots()
	require.Len(t, slots, 4)
	assert.Equal(t, AttributeSlot{Name: "position", Components: 3, StructOffset: 0, BufferOffset: 0}, slots[0])
	assert.Equal(t, AttributeSlot{Name: "normal", Components: 3, StructOffset: 3, BufferOffset: 3}, slots[1])
	assert.Equal(t, AttributeSlot{Name: "Weight", Components: 1, StructOffset: 6, BufferOffset: 6}, slots[2])
	assert.Equal(t, AttributeSlot{Name: "color", Components: 4, StructOffset: 7, BufferOffset: 7}, slots[3])
	_ = testVertex{}.hidden
}

func TestOfRejectsNonFloatFields(t *testing.T) {
	type bad struct {
		Bones [4]uint32 `attr:"bones"`
	}
	_, err := Of[bad]()
	assert.ErrorIs(t, err, ErrInvalidLayout)

	_, err = Of[float32]()
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestVertexBufferLayout(t *testing.T) {
	l := MustLayout(Slot("position", 3, 0), Slot("uv", 2, 3), Slot("weight", 1, 5))
	vbl := l.VertexBufferLayout()

	assert.Equal(t, uint64(24), vbl.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, vbl.StepMode)
	require.Len(t, vbl.Attributes, 3)
	assert.Equal(t, wgpu.VertexAttribute{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0}, vbl.Attributes[0])
	assert.Equal(t, wgpu.VertexAttribute{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1}, vbl.Attributes[1])
	assert.Equal(t, wgpu.VertexAttribute{Format: wgpu.VertexFormatFloat32, Offset: 20, ShaderLocation: 2}, vbl.Attributes[2])
}
