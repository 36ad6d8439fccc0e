// Package ops defines the differentiable operations recorded on a gradient tape.
//
// Each operation keeps the tensors it needs from the forward pass and computes
// input gradients from the output gradient:
//   - AddOp: element-wise addition (d(a+b)/da = 1, d(a+b)/db = 1)
//   - MulOp: element-wise multiplication (d(a*b)/da = b, d(a*b)/db = a)
//   - MatMulOp: matrix multiplication (dA = grad@B^T, dB = A^T@grad)
//   - BiasAddOp: bias broadcast (dbias = sum of grad over leading dims)
//   - ReLUOp: rectifier (grad passes where x > 0)
//   - ReshapeOp: view change (grad reshaped back)
//   - Conv2DOp: NHWC convolution
//   - MaxPool2DOp: max pooling (grad routed to the winning inputs)
//   - CrossEntropyOp: fused softmax cross-entropy
package ops

import "github.com/born-ml/squarenet/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// The result is aligned with Inputs; a nil entry means no gradient flows.
	Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.Tensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.Tensor
}
