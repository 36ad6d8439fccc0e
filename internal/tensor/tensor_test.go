package tensor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSlice(t *testing.T) {
	x, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)

	assert.Equal(t, Shape{2, 3}, x.Shape())
	assert.Equal(t, float32(6), x.At(1, 2))
	assert.Equal(t, []float32{4, 5, 6}, x.Row(1))

	_, err = FromSlice([]float32{1, 2, 3}, Shape{2, 2})
	assert.Error(t, err)
}

func TestFromSlice_Copies(t *testing.T) {
	src := []float32{1, 2}
	x, err := FromSlice(src, Shape{2})
	require.NoError(t, err)

	src[0] = 100
	assert.Equal(t, float32(1), x.At(0))
}

func TestNew_InvalidShape(t *testing.T) {
	_, err := New(Shape{3, 0})
	assert.Error(t, err)
}

func TestView_SharesData(t *testing.T) {
	x := Full(Shape{2, 2, 3}, 1)
	v, err := x.View(Shape{2, 6})
	require.NoError(t, err)

	v.Set(7, 1, 5)
	assert.Equal(t, float32(7), x.At(1, 1, 2))
	assert.NotSame(t, x, v)

	_, err = x.View(Shape{5})
	assert.Error(t, err)
}

func TestClone_IsDeep(t *testing.T) {
	x := Full(Shape{3}, 2)
	c := x.Clone()
	c.Data()[0] = 9
	assert.Equal(t, float32(2), x.At(0))
}

func TestArgmaxRows(t *testing.T) {
	x, err := FromSlice([]float32{
		0.1, 0.9, 0.0,
		3, 3, 1, // tie resolves to the first index
	}, Shape{2, 3})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 0}, x.ArgmaxRows())
}

func TestItem_PanicsOnVector(t *testing.T) {
	assert.Panics(t, func() { Zeros(Shape{2}).Item() })
	assert.Equal(t, float32(3), Full(Shape{1}, 3).Item())
}

func TestExpectShape(t *testing.T) {
	assert.NoError(t, ExpectShape("op", Shape{4, 50, 50, 3}, Shape{Any, 50, 50, 3}))

	err := ExpectShape("model", Shape{4, 40, 40, 3}, Shape{Any, 50, 50, 3})
	require.Error(t, err)

	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "model", shapeErr.Op)
	assert.Equal(t, "model: expected shape (N,50,50,3), got (4,40,40,3)", err.Error())

	assert.Error(t, ExpectShape("rank", Shape{50, 50, 3}, Shape{Any, 50, 50, 3}))
}

func TestPaddingWindow(t *testing.T) {
	tests := []struct {
		name                string
		padding             Padding
		in, window, stride  int
		wantOut, wantBefore int
	}{
		{"same conv keeps size", Same, 50, 5, 1, 50, 2},
		{"same pool halves even", Same, 50, 2, 2, 25, 0},
		{"same pool rounds odd up", Same, 25, 2, 2, 13, 0},
		{"valid conv shrinks", Valid, 28, 5, 1, 24, 0},
		{"valid pool", Valid, 24, 2, 2, 12, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, before := tt.padding.Window(tt.in, tt.window, tt.stride)
			assert.Equal(t, tt.wantOut, out)
			assert.Equal(t, tt.wantBefore, before)
		})
	}
}
