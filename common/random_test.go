package common

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomIsDeterministic(t *testing.T) {
	a, b := NewRandom(42), NewRandom(42)
	for range 100 {
		assert.Equal(t, a.Uint32(), b.Uint32())
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.Normal(), b.Normal())
	}
	assert.NotEqual(t, NewRandom(1).Uint32(), NewRandom(2).Uint32())
}

func TestRandomFloat64Range(t *testing.T) {
	r := NewRandom(7)
	for range 1000 {
		v := r.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestRandomNormalMoments(t *testing.T) {
	r := NewRandom(3)
	const n = 20000
	var sum, sq float64
	for range n {
		v := r.Normal()
		sum += v
		sq += v * v
	}
	mean := sum / n
	assert.InDelta(t, 0, mean, 0.05)
	assert.InDelta(t, 1, sq/n-mean*mean, 0.05)
}

func TestRandomUnitVectors(t *testing.T) {
	r := NewRandom(9)
	for range 100 {
		v := r.UnitVector3()
		assert.InDelta(t, 1, math.Sqrt(v[0]*v[0]+v[1]*v[1]+v[2]*v[2]), 1e-9)

		n := r.UnitVectorN(5)
		assert.Len(t, n, 5)
		var s float64
		for _, x := range n {
			s += x * x
		}
		assert.InDelta(t, 1, s, 1e-9)
	}
}

func TestRandomPermAndSpawn(t *testing.T) {
	r := NewRandom(11)
	p := r.Perm(256)
	sorted := slices.Clone(p)
	slices.Sort(sorted)
	for i, v := range sorted {
		assert.Equal(t, i, v)
	}

	parent := NewRandom(5)
	child := parent.Spawn()
	again := NewRandom(5).Spawn()
	assert.Equal(t, child.Uint32(), again.Uint32(), "spawned generators follow the parent seed")
	assert.NotEqual(t, parent.Uint32(), NewRandom(5).Uint32(), "spawning advances the parent")
}
