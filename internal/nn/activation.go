package nn

import (
	"github.com/born-ml/squarenet/internal/tensor"
)

// ReLU applies the rectified linear unit: max(0, x).
type ReLU struct {
	backend tensor.Backend
}

// NewReLU creates a new ReLU activation.
func NewReLU(backend tensor.Backend) *ReLU {
	return &ReLU{backend: backend}
}

// Forward applies ReLU element-wise.
func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	return r.backend.ReLU(input)
}

// Parameters returns an empty slice.
func (r *ReLU) Parameters() []*Parameter {
	return []*Parameter{}
}

// Flatten collapses every dimension after the batch: [N, ...] -> [N, prod(...)].
type Flatten struct {
	backend tensor.Backend
}

// NewFlatten creates a new Flatten layer.
func NewFlatten(backend tensor.Backend) *Flatten {
	return &Flatten{backend: backend}
}

// Forward reshapes the input without copying.
func (f *Flatten) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	n := shape[0]
	return f.backend.Reshape(input, tensor.Shape{n, input.NumElements() / n})
}

// Parameters returns an empty slice.
func (f *Flatten) Parameters() []*Parameter {
	return []*Parameter{}
}
