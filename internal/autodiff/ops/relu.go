package ops

import "github.com/born-ml/squarenet/internal/tensor"

// ReLUOp represents a ReLU activation: output = max(0, x).
//
// Backward pass:
//   - d(ReLU(x))/dx = 1 if x > 0, else 0
//
// The gradient is computed by building a mask where input > 0 and
// multiplying the output gradient by it.
type ReLUOp struct {
	input  *tensor.Tensor
	output *tensor.Tensor
}

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(input, output *tensor.Tensor) *ReLUOp {
	return &ReLUOp{
		input:  input,
		output: output,
	}
}

// Backward computes the input gradient for ReLU.
func (op *ReLUOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{backend.Mul(outputGrad, reluMask(op.input))}
}

// Inputs returns [x].
func (op *ReLUOp) Inputs() []*tensor.Tensor {
	return []*tensor.Tensor{op.input}
}

// Output returns max(0, x).
func (op *ReLUOp) Output() *tensor.Tensor {
	return op.output
}

func reluMask(input *tensor.Tensor) *tensor.Tensor {
	mask := tensor.Zeros(input.Shape())
	maskData := mask.Data()
	for i, v := range input.Data() {
		if v > 0 {
			maskData[i] = 1
		}
	}
	return mask
}
