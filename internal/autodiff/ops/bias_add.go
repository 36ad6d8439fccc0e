package ops

import "github.com/born-ml/squarenet/internal/tensor"

// BiasAddOp represents a bias broadcast over the last dimension: y = x + bias.
//
// Backward pass:
//   - dL/dx = dL/dy
//   - dL/dbias = dL/dy summed over every leading dimension
type BiasAddOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewBiasAddOp creates a new BiasAddOp.
func NewBiasAddOp(x, bias, output *tensor.Tensor) *BiasAddOp {
	return &BiasAddOp{
		inputs: []*tensor.Tensor{x, bias},
		output: output,
	}
}

// Backward computes gradients for the input and the bias.
func (op *BiasAddOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{outputGrad, backend.SumToLastDim(outputGrad)}
}

// Inputs returns [x, bias].
func (op *BiasAddOp) Inputs() []*tensor.Tensor {
	return op.inputs
}

// Output returns x + bias.
func (op *BiasAddOp) Output() *tensor.Tensor {
	return op.output
}
