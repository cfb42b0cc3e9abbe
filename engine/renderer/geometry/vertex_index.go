package geometry

import (
	"math"

	"github.com/google/btree"
)

// indexDegree is the btree node degree of the vertex index.
const indexDegree = 16

// vertexKey is a vertex index entry: a stored vertex filed under its first packed component.
type vertexKey struct {
	first  float32
	stored uint32
}

// keyLess orders entries exactly by first component, then by vertex index.
func keyLess(l, r vertexKey) bool {
	if l.first != r.first {
		return l.first < r.first
	}
	return l.stored < r.stored
}

// vertexIndex maps vertex content to the first index it was stored under. Two vertices are
// equivalent when every component is equal or differs by less than epsilon.
//
// Epsilon equality is not transitive, so the tree is never ordered by it. Lookups scan the
// entries whose first component lies near the pending vertex and compare each
// candidate in full.
type vertexIndex struct {
	tree *btree.BTreeG[vertexKey]

	data    *[]float32
	stride  uint32
	epsilon *float32
}

func newVertexIndex(data *[]float32, stride uint32, epsilon *float32) *vertexIndex {
	return &vertexIndex{
		tree:    btree.NewG(indexDegree, keyLess),
		data:    data,
		stride:  stride,
		epsilon: epsilon,
	}
}

func (idx *vertexIndex) stored(i uint32) []float32 {
	off := i * idx.stride
	return (*idx.data)[off : off+idx.stride]
}

func near(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d == 0 || d < eps
}

// find returns the lowest stored index equivalent to v.
func (idx *vertexIndex) find(v []float32) (uint32, bool) {
	eps := *idx.epsilon
	// the window is wider than epsilon so rounding at its edges never drops a candidate
	lo, hi := v[0]-2*eps, v[0]+2*eps
	best, found := uint32(math.MaxUint32), false
	idx.tree.AscendGreaterOrEqual(vertexKey{first: lo}, func(k vertexKey) bool {
		if k.first > hi {
			return false
		}
		if k.stored >= best || !near(k.first, v[0], eps) {
			return true
		}
		c := idx.stored(k.stored)
		for j := range v {
			if !near(c[j], v[j], eps) {
				return true
			}
		}
		best, found = k.stored, true
		return true
	})
	return best, found
}

// insert adds the stored vertex i unless an equivalent vertex is already indexed.
func (idx *vertexIndex) insert(i uint32) bool {
	v := idx.stored(i)
	if _, ok := idx.find(v); ok {
		return false
	}
	idx.tree.ReplaceOrInsert(vertexKey{first: v[0], stored: i})
	return true
}

// rebuild clears the index and inserts the stored vertices [start, end) in order.
func (idx *vertexIndex) rebuild(start, end uint32) {
	idx.tree.Clear(false)
	for i := start; i < end; i++ {
		idx.insert(i)
	}
}

func (idx *vertexIndex) clear() {
	idx.tree.Clear(false)
}

func (idx *vertexIndex) len() int {
	return idx.tree.Len()
}

// each visits the representative index of every equivalence class in content order.
func (idx *vertexIndex) each(fn func(uint32)) {
	idx.tree.Ascend(func(k vertexKey) bool {
		fn(k.stored)
		return true
	})
}
