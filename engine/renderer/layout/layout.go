// Package layout describes how the float32 fields of a vertex struct map to named shader attributes.
// A Layout is an ordered list of AttributeSlots. Each slot knows where its components live in the
// caller's struct and where they land in the packed, interleaved GPU buffer.
package layout

import (
	"errors"
	"fmt"
	"slices"
)

// MaxComponents is the largest component count a single vertex attribute may have.
const MaxComponents = 4

// ErrInvalidLayout is returned when a slot or struct cannot be described by a Layout.
var ErrInvalidLayout = errors.New("layout: invalid layout")

// AttributeSlot describes one named vertex attribute. All offsets and counts are in float32 units.
type AttributeSlot struct {
	// Name is the shader attribute name the slot binds to.
	Name string

	// Components is the number of float32 values the attribute holds (1-4).
	Components uint32

	// StructOffset is the offset of the first component inside the caller's vertex struct.
	// It is never validated against the struct; Of derives it from the struct itself.
	StructOffset uint32

	// BufferOffset is the offset of the first component inside one packed GPU vertex.
	// It is assigned by Append and equals the sum of the components of all earlier slots.
	BufferOffset uint32
}

// Slot creates an AttributeSlot with its BufferOffset left for Append to assign.
//
// Parameters:
//   - name: the shader attribute name
//   - components: the number of float32 components
//   - structOffset: the float32 offset of the field inside the vertex struct
//
// Returns:
//   - AttributeSlot: the slot
func Slot(name string, components, structOffset uint32) AttributeSlot {
	return AttributeSlot{Name: name, Components: components, StructOffset: structOffset}
}

// Layout is an ordered sequence of attribute slots. The zero value is an empty layout.
// Layouts are values: Compose and NewLayout never alias the slots of their inputs.
type Layout struct {
	slots []AttributeSlot
	total uint32
}

// NewLayout builds a layout by appending each slot in order.
//
// Parameters:
//   - slots: the slots to append
//
// Returns:
//   - Layout: the composed layout
//   - error: ErrInvalidLayout if any slot is invalid
func NewLayout(slots ...AttributeSlot) (Layout, error) {
	var l Layout
	for _, s := range slots {
		if err := l.Append(s); err != nil {
			return Layout{}, err
		}
	}
	return l, nil
}

// MustLayout is like NewLayout but panics on an invalid slot. Intended for package-level layouts.
func MustLayout(slots ...AttributeSlot) Layout {
	l, err := NewLayout(slots...)
	if err != nil {
		panic(err)
	}
	return l
}

// Append adds a slot to the end of the layout, recording the pre-append total as its BufferOffset.
//
// Parameters:
//   - s: the slot to append, its BufferOffset is overwritten
//
// Returns:
//   - error: ErrInvalidLayout if the component count is outside 1..MaxComponents or the name is empty or taken
func (l *Layout) Append(s AttributeSlot) error {
	if s.Components == 0 || s.Components > MaxComponents {
		return fmt.Errorf("%w: attribute %q has %d components, want 1..%d", ErrInvalidLayout, s.Name, s.Components, MaxComponents)
	}
	if s.Name == "" {
		return fmt.Errorf("%w: attribute at struct offset %d has no name", ErrInvalidLayout, s.StructOffset)
	}
	if _, ok := l.Slot(s.Name); ok {
		return fmt.Errorf("%w: attribute %q appears twice", ErrInvalidLayout, s.Name)
	}
	s.BufferOffset = l.total
	// clip capacity so appending to a copy of l never writes into l's backing array
	l.slots = append(slices.Clip(l.slots), s)
	l.total += s.Components
	return nil
}

// Compose returns a new layout equal to the given layouts concatenated in order.
// Composition is associative: Compose(Compose(a, b), c) equals Compose(a, Compose(b, c)).
//
// Parameters:
//   - layouts: the layouts to concatenate
//
// Returns:
//   - Layout: the concatenated layout with BufferOffsets reassigned
//   - error: ErrInvalidLayout if two layouts share an attribute name
func Compose(layouts ...Layout) (Layout, error) {
	var out Layout
	for _, l := range layouts {
		for _, s := range l.slots {
			if err := out.Append(s); err != nil {
				return Layout{}, err
			}
		}
	}
	return out, nil
}

// Slots returns a copy of the slots in order.
func (l Layout) Slots() []AttributeSlot {
	return slices.Clone(l.slots)
}

// Len returns the number of slots.
func (l Layout) Len() int {
	return len(l.slots)
}

// TotalComponents returns the number of float32 values in one packed vertex.
func (l Layout) TotalComponents() uint32 {
	return l.total
}

// Stride returns the size of one packed vertex in bytes.
func (l Layout) Stride() int {
	return int(l.total) * 4
}

// StructSize returns the minimum number of float32 values a raw vertex must contain so every
// slot can be read from it.
func (l Layout) StructSize() uint32 {
	var size uint32
	for _, s := range l.slots {
		size = max(size, s.StructOffset+s.Components)
	}
	return size
}

// Slot looks up a slot by attribute name.
//
// Parameters:
//   - name: the attribute name
//
// Returns:
//   - AttributeSlot: the slot, zero if not found
//   - bool: true if the slot exists
func (l Layout) Slot(name string) (AttributeSlot, bool) {
	for _, s := range l.slots {
		if s.Name == name {
			return s, true
		}
	}
	return AttributeSlot{}, false
}

// Pack copies the components of each slot from a raw struct view into dst in buffer order.
//
// Parameters:
//   - dst: destination with room for TotalComponents values
//   - raw: the raw vertex, at least StructSize values
func (l Layout) Pack(dst, raw []float32) {
	for _, s := range l.slots {
		copy(dst[s.BufferOffset:s.BufferOffset+s.Components], raw[s.StructOffset:s.StructOffset+s.Components])
	}
}
