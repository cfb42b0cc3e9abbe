package common

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendUnique(t *testing.T) {
	s, added := AppendUnique([]int{1, 2}, 3)
	assert.True(t, added)
	assert.Equal(t, []int{1, 2, 3}, s)

	s, added = AppendUnique(s, 2)
	assert.False(t, added)
	assert.Equal(t, []int{1, 2, 3}, s)
}

func TestFlipImageY(t *testing.T) {
	// 1x3 image, one RGBA pixel per row
	pixels := []byte{
		1, 1, 1, 1,
		2, 2, 2, 2,
		3, 3, 3, 3,
	}
	FlipImageY(pixels, 1, 3)
	assert.Equal(t, []byte{3, 3, 3, 3, 2, 2, 2, 2, 1, 1, 1, 1}, pixels)

	even := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	FlipImageY(even, 2, 2)
	assert.Equal(t, []byte{9, 10, 11, 12, 13, 14, 15, 16, 1, 2, 3, 4, 5, 6, 7, 8}, even)
}

func TestStructViews(t *testing.T) {
	v := struct {
		A [2]float32
		B float32
	}{A: [2]float32{1, 2}, B: 3}
	assert.Equal(t, []float32{1, 2, 3}, StructToFloats(&v))
	assert.Len(t, StructToBytes(&v), 12)
	assert.Len(t, SliceToBytes([]uint32{1, 2}), 8)
	assert.Nil(t, SliceToBytes([]uint32{}))
}

func TestLogger(t *testing.T) {
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError), "silent by default")

	var sb strings.Builder
	SetLogger(slog.New(slog.NewTextHandler(&sb, nil)))
	defer SetLogger(nil)

	Logger().Info("hello", "k", 1)
	assert.Contains(t, sb.String(), "msg=hello k=1")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}
