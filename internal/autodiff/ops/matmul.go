package ops

import "github.com/born-ml/squarenet/internal/tensor"

// MatMulOp represents matrix multiplication: C = A @ B.
//
// Backward pass:
//   - dL/dA = dL/dC @ B^T
//   - dL/dB = A^T @ dL/dC
type MatMulOp struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b, output *tensor.Tensor) *MatMulOp {
	return &MatMulOp{
		inputs: []*tensor.Tensor{a, b},
		output: output,
	}
}

// Backward computes input gradients for matrix multiplication.
func (op *MatMulOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.Tensor{
		backend.MatMulTransB(outputGrad, b),
		backend.MatMulTransA(a, outputGrad),
	}
}

// Inputs returns [A, B].
func (op *MatMulOp) Inputs() []*tensor.Tensor {
	return op.inputs
}

// Output returns A @ B.
func (op *MatMulOp) Output() *tensor.Tensor {
	return op.output
}
