package common

import (
	"math"
	"math/rand/v2"
)

// Random wraps a seeded PCG generator with the distributions the engine needs for procedural data.
// It is not safe for concurrent use.
type Random struct {
	rng *rand.Rand

	// the Box-Muller transform produces two normal samples at a time, the second is kept here
	hasNormal bool
	normal    float64
}

// NewRandom creates a Random seeded with the provided seed. Equal seeds produce equal sequences.
//
// Parameters:
//   - seed: the generator seed
//
// Returns:
//   - *Random: the seeded generator
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomSeeded creates a Random seeded from the runtime's entropy source.
//
// Returns:
//   - *Random: the seeded generator
func NewRandomSeeded() *Random {
	return NewRandom(rand.Uint64())
}

// Float64 returns a uniformly distributed value in [0, 1).
func (r *Random) Float64() float64 {
	return r.rng.Float64()
}

// Uint32 returns a uniformly distributed 32 bit value.
func (r *Random) Uint32() uint32 {
	return r.rng.Uint32()
}

// Perm returns a pseudo-random permutation of [0, n).
func (r *Random) Perm(n int) []int {
	return r.rng.Perm(n)
}

// Normal returns a standard normally distributed value.
// Samples are generated in pairs with the Box-Muller transform and every second call returns the cached one.
//
// Returns:
//   - float64: a sample from N(0, 1)
func (r *Random) Normal() float64 {
	if r.hasNormal {
		r.hasNormal = false
		return r.normal
	}
	u := 1 - r.rng.Float64() // (0, 1]
	phi := 2 * math.Pi * r.rng.Float64()
	radius := math.Sqrt(-2 * math.Log(u))
	r.hasNormal = true
	r.normal = radius * math.Sin(phi)
	return radius * math.Cos(phi)
}

// UnitVector3 returns a uniformly distributed point on the unit sphere.
//
// Returns:
//   - [3]float64: the unit vector (x, y, z)
func (r *Random) UnitVector3() [3]float64 {
	z := 2*r.rng.Float64() - 1
	phi := 2 * math.Pi * r.rng.Float64()
	xy := math.Sqrt(1 - z*z)
	return [3]float64{math.Cos(phi) * xy, math.Sin(phi) * xy, z}
}

// UnitVectorN returns a uniformly distributed unit vector with dim components,
// built by normalizing dim independent normal samples.
//
// Parameters:
//   - dim: the number of components, must be > 0
//
// Returns:
//   - []float64: the unit vector
func (r *Random) UnitVectorN(dim int) []float64 {
	v := make([]float64, dim)
	var s float64
	for i := range v {
		x := r.Normal()
		v[i] = x
		s += x * x
	}
	s = 1 / math.Sqrt(s)
	for i := range v {
		v[i] *= s
	}
	return v
}

// Spawn creates a new independent generator seeded from this one.
//
// Returns:
//   - *Random: the child generator
func (r *Random) Spawn() *Random {
	return NewRandom(r.rng.Uint64())
}
