package common

// AppendUnique appends v to s only if s does not already contain it.
//
// Parameters:
//   - s: the slice to append to
//   - v: the value to append
//
// Returns:
//   - []T: the resulting slice
//   - bool: true if v was appended, false if it was already present
func AppendUnique[T comparable](s []T, v T) ([]T, bool) {
	for _, e := range s {
		if e == v {
			return s, false
		}
	}
	return append(s, v), true
}

// FlipImageY flips tightly packed RGBA pixel rows in place so the first row becomes the last.
// Image decoders produce top-down rows while GL texture uploads expect bottom-up rows.
//
// Parameters:
//   - pixels: RGBA pixel data, 4 bytes per pixel, at least width*height*4 bytes
//   - width: image width in pixels
//   - height: image height in pixels
func FlipImageY(pixels []byte, width, height int) {
	stride := width * 4
	for i := 0; i < height/2; i++ {
		top := pixels[i*stride : (i+1)*stride]
		bottom := pixels[(height-i-1)*stride : (height-i)*stride]
		for j := range top {
			top[j], bottom[j] = bottom[j], top[j]
		}
	}
}
