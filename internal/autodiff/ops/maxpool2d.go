package ops

import "github.com/born-ml/squarenet/internal/tensor"

// MaxPool2DOp records a max pooling operation for autodiff.
//
// Backward: each output gradient flows only to the input position that held
// the window maximum; every other position receives zero.
//
// Example (2x2 pool, stride=2):
//
//	Input:  [[1, 2],  Output: [4]  Input Grad: [[0, 0],
//	         [3, 4]]                             [0, grad]]
type MaxPool2DOp struct {
	input      *tensor.Tensor
	output     *tensor.Tensor
	maxIndices []int // Flat input index of each output's maximum
}

// NewMaxPool2DOp creates a new MaxPool2D operation from the indices the
// forward kernel reported.
func NewMaxPool2DOp(input, output *tensor.Tensor, maxIndices []int) *MaxPool2DOp {
	return &MaxPool2DOp{
		input:      input,
		output:     output,
		maxIndices: maxIndices,
	}
}

// Inputs returns [input].
func (op *MaxPool2DOp) Inputs() []*tensor.Tensor {
	return []*tensor.Tensor{op.input}
}

// Output returns the pooled tensor.
func (op *MaxPool2DOp) Output() *tensor.Tensor {
	return op.output
}

// Backward routes the output gradient to the winning input positions.
func (op *MaxPool2DOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{backend.MaxPool2DBackward(op.input, outputGrad, op.maxIndices)}
}
