package nn

import (
	"fmt"

	"github.com/born-ml/squarenet/internal/tensor"
)

// MaxPool2D applies 2D max pooling over the spatial axes of NHWC input.
//
// With Same padding and a 2x2 window at stride 2:
//
//	50x50 -> 25x25
//	25x25 -> 13x13 (the last window only covers the final row/column)
//
// MaxPool2D has no trainable parameters.
type MaxPool2D struct {
	size    int
	stride  int
	padding tensor.Padding
	backend tensor.Backend
}

// NewMaxPool2D creates a new max pooling layer.
func NewMaxPool2D(size, stride int, padding tensor.Padding, backend tensor.Backend) *MaxPool2D {
	if size <= 0 || stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid size %d or stride %d", size, stride))
	}
	return &MaxPool2D{
		size:    size,
		stride:  stride,
		padding: padding,
		backend: backend,
	}
}

// Forward applies max pooling.
func (m *MaxPool2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	out, _ := m.backend.MaxPool2D(input, m.size, m.stride, m.padding)
	return out
}

// Parameters returns an empty slice.
func (m *MaxPool2D) Parameters() []*Parameter {
	return []*Parameter{}
}

// OutputSize returns the spatial output size for an input of h x w.
func (m *MaxPool2D) OutputSize(h, w int) (int, int) {
	outH, _ := m.padding.Window(h, m.size, m.stride)
	outW, _ := m.padding.Window(w, m.size, m.stride)
	return outH, outW
}

// String returns a human-readable representation.
func (m *MaxPool2D) String() string {
	return fmt.Sprintf("MaxPool2D(size=%d, stride=%d, padding=%v)", m.size, m.stride, m.padding)
}
