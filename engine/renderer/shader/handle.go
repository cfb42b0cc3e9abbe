package shader

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
)

// Handle is the stable descriptor consumers hold for a linked program: the backend program
// handle and whether it may currently be used.
type Handle struct {
	ID     uint32
	Usable bool
}

// Use selects the program on the backend if the handle is usable.
//
// Parameters:
//   - b: the backend to select the program on
//
// Returns:
//   - bool: true if the program was selected
func (h Handle) Use(b backend.Backend) bool {
	if h.Usable {
		b.UseProgram(h.ID)
	}
	return h.Usable
}

// ApplyPostProcessing selects the program and draws a four-vertex triangle strip, the usual
// full-screen pass for post-processing shaders that generate their own positions.
//
// Parameters:
//   - b: the backend to draw with
//
// Returns:
//   - bool: true if the pass was drawn
func (h Handle) ApplyPostProcessing(b backend.Backend) bool {
	if h.Usable {
		b.UseProgram(h.ID)
		b.DrawArrays(backend.DrawModeTriangleStrip, 0, 4)
	}
	return h.Usable
}

// HandleSource is anything a consumer can read the current Handle from.
type HandleSource interface {
	// Handle returns the current handle value.
	Handle() Handle
}

// HandleSlot is a single-writer, many-reader cell holding a Handle. The owning program writes it
// on link and clean; readers may load it at any time and never observe an id and usable flag
// that do not belong together. The zero value holds an unusable handle.
type HandleSlot struct {
	// bit 32 holds the usable flag, the low 32 bits the program id
	v atomic.Uint64
}

var _ HandleSource = &HandleSlot{}

const usableBit = 1 << 32

// Handle loads the current handle.
func (s *HandleSlot) Handle() Handle {
	v := s.v.Load()
	return Handle{ID: uint32(v), Usable: v&usableBit != 0}
}

// publish stores a freshly linked program id and marks it usable in a single write.
func (s *HandleSlot) publish(id uint32) {
	s.v.Store(uint64(id) | usableBit)
}

// revoke clears the usable flag and leaves the id in place.
func (s *HandleSlot) revoke() {
	s.v.Store(uint64(uint32(s.v.Load())))
}
