package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/uniform"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()

	assert.Equal(t, mgl32.Vec3{0, 0, 3}, c.Position())
	assert.Equal(t, mgl32.Vec3{}, c.Target())
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, c.Up())
	assert.InDelta(t, mgl32.DegToRad(45), c.Fov(), 1e-6)
	assert.Equal(t, float32(1), c.Aspect())

	// the origin sits three units in front of the eye
	p := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -3, p.Z(), 1e-6)
}

func TestOptionsAndSettersRecomputeMatrices(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{0, 0, 10}), WithAspect(2), WithNear(1), WithFar(50))
	assert.True(t, c.ProjectionMatrix().ApproxEqual(mgl32.Perspective(mgl32.DegToRad(45), 2, 1, 50)))

	before := c.ViewMatrix()
	c.SetPosition(mgl32.Vec3{5, 0, 0})
	assert.False(t, before.ApproxEqual(c.ViewMatrix()))
	assert.True(t, c.ViewMatrix().ApproxEqual(mgl32.LookAtV(mgl32.Vec3{5, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})))

	c.SetFov(mgl32.DegToRad(90))
	c.SetAspect(-1)
	assert.Equal(t, float32(2), c.Aspect())
	assert.True(t, c.ProjectionMatrix().ApproxEqual(mgl32.Perspective(mgl32.DegToRad(90), 2, 1, 50)))
}

func TestApplyFillsTransforms(t *testing.T) {
	c := NewCamera(WithTarget(mgl32.Vec3{1, 2, 3}), WithUp(mgl32.Vec3{0, 0, 1}), WithFov(1))

	var tr uniform.Transforms
	c.Apply(&tr)

	assert.Equal(t, c.ViewMatrix(), tr.ToWorldSpace)
	assert.Equal(t, c.ProjectionMatrix(), tr.Perspective)
}
