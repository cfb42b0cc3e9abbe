package geometry

// IndexedTriangle is a triangle given by three vertex indices.
type IndexedTriangle struct {
	A, B, C uint32
}

// Offset returns the triangle with every index shifted by off, used to place a mesh fragment
// after vertices that were already added.
func (t IndexedTriangle) Offset(off uint32) IndexedTriangle {
	return IndexedTriangle{A: t.A + off, B: t.B + off, C: t.C + off}
}

func (t IndexedTriangle) indices() [3]uint32 {
	return [3]uint32{t.A, t.B, t.C}
}
