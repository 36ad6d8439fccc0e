package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Implementations:
//   - CPU: pure Go kernels over gonum BLAS (internal/backend/cpu)
//   - Autodiff: decorator that records differentiable ops on a gradient tape
//
// Operations panic when their inputs violate shape invariants; callers facing
// user-supplied data validate with ExpectShape first.
type Backend interface {
	// Element-wise binary operations on equally shaped tensors.
	Add(a, b *Tensor) *Tensor
	Mul(a, b *Tensor) *Tensor

	// Matrix operations on 2-D tensors.
	MatMul(a, b *Tensor) *Tensor       // [M,K] @ [K,N] -> [M,N]
	MatMulTransA(a, b *Tensor) *Tensor // [K,M]^T @ [K,N] -> [M,N]
	MatMulTransB(a, b *Tensor) *Tensor // [M,K] @ [N,K]^T -> [M,N]

	// AddBias broadcasts bias [C] over the last dimension of x.
	AddBias(x, bias *Tensor) *Tensor
	// SumToLastDim reduces every leading dimension of x, leaving [C].
	SumToLastDim(x *Tensor) *Tensor

	// Activation functions.
	ReLU(x *Tensor) *Tensor

	// Shape operations.
	Reshape(x *Tensor, newShape Shape) *Tensor

	// Convolution over NHWC input with an HWIO kernel.
	Conv2D(input, kernel *Tensor, stride int, padding Padding) *Tensor
	Conv2DInputBackward(input, kernel, grad *Tensor, stride int, padding Padding) *Tensor
	Conv2DKernelBackward(input, kernel, grad *Tensor, stride int, padding Padding) *Tensor

	// MaxPool2D pools NHWC input and returns the flat input index of every
	// selected maximum, used to route gradients backwards.
	MaxPool2D(input *Tensor, size, stride int, padding Padding) (*Tensor, []int)
	MaxPool2DBackward(input, grad *Tensor, maxIndices []int) *Tensor

	// SoftmaxCrossEntropy returns the batch mean of -sum(labels * log_softmax(logits))
	// as a single-element tensor. logits and labels are [N,C].
	SoftmaxCrossEntropy(logits, labels *Tensor) *Tensor
	SoftmaxCrossEntropyBackward(logits, labels, grad *Tensor) *Tensor

	// Metadata
	Name() string
}
