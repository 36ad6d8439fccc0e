package ops

import "github.com/born-ml/squarenet/internal/tensor"

// Conv2DOp records a 2D convolution for autodiff.
//
// Forward: output = Conv2D(input, kernel, stride, padding)
//
// Backward:
//   - d_input:  transposed convolution of d_output with the kernel
//   - d_kernel: correlation of the input with d_output
type Conv2DOp struct {
	input   *tensor.Tensor
	kernel  *tensor.Tensor
	output  *tensor.Tensor
	stride  int
	padding tensor.Padding
}

// NewConv2DOp creates a new Conv2D operation.
func NewConv2DOp(input, kernel, output *tensor.Tensor, stride int, padding tensor.Padding) *Conv2DOp {
	return &Conv2DOp{
		input:   input,
		kernel:  kernel,
		output:  output,
		stride:  stride,
		padding: padding,
	}
}

// Inputs returns [input, kernel].
func (op *Conv2DOp) Inputs() []*tensor.Tensor {
	return []*tensor.Tensor{op.input, op.kernel}
}

// Output returns the output tensor.
func (op *Conv2DOp) Output() *tensor.Tensor {
	return op.output
}

// Backward delegates both gradients to the backend.
//
// Given outputGrad [N, H_out, W_out, C_out], returns
// inputGrad [N, H, W, C_in] and kernelGrad [KH, KW, C_in, C_out].
func (op *Conv2DOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	inputGrad := backend.Conv2DInputBackward(op.input, op.kernel, outputGrad, op.stride, op.padding)
	kernelGrad := backend.Conv2DKernelBackward(op.input, op.kernel, outputGrad, op.stride, op.padding)
	return []*tensor.Tensor{inputGrad, kernelGrad}
}
