package layout

import (
	"fmt"
	"reflect"
)

// tagName is the struct tag that names the shader attribute a field binds to.
// A value of "-" skips the field; an absent tag uses the Go field name.
const tagName = "attr"

// Of builds a Layout from the exported fields of the vertex struct T, in declaration order.
// Each field must be a float32 or an array of 1..MaxComponents float32 values; anonymous
// embedded structs are flattened. Struct offsets come from the compiler's field offsets,
// so the layout always agrees with the struct's memory.
//
// Example:
//
//	type Vertex struct {
//	    Position [3]float32 `attr:"position"`
//	    Color    [3]float32 `attr:"color"`
//	}
//	l, err := layout.Of[Vertex]()
//
// Returns:
//   - Layout: the layout derived from T
//   - error: ErrInvalidLayout if T is not a struct of float32 based fields
func Of[T any]() (Layout, error) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return Layout{}, fmt.Errorf("%w: %s is not a struct", ErrInvalidLayout, t)
	}
	var l Layout
	if err := appendFields(&l, t, 0); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// MustOf is like Of but panics if T cannot be described.
func MustOf[T any]() Layout {
	l, err := Of[T]()
	if err != nil {
		panic(err)
	}
	return l
}

func appendFields(l *Layout, t reflect.Type, base uintptr) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, tagged := f.Tag.Lookup(tagName)
		if name == "-" {
			continue
		}
		offset := base + f.Offset
		if f.Anonymous && f.Type.Kind() == reflect.Struct && !tagged {
			if err := appendFields(l, f.Type, offset); err != nil {
				return err
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		components, err := fieldComponents(f)
		if err != nil {
			return err
		}
		if offset%4 != 0 {
			return fmt.Errorf("%w: field %s is not aligned to a float32 boundary", ErrInvalidLayout, f.Name)
		}
		if err := l.Append(Slot(name, components, uint32(offset/4))); err != nil {
			return err
		}
	}
	return nil
}

func fieldComponents(f reflect.StructField) (uint32, error) {
	switch f.Type.Kind() {
	case reflect.Float32:
		return 1, nil
	case reflect.Array:
		if f.Type.Elem().Kind() == reflect.Float32 {
			return uint32(f.Type.Len()), nil
		}
	}
	return 0, fmt.Errorf("%w: field %s has type %s, want float32 or [N]float32", ErrInvalidLayout, f.Name, f.Type)
}
