// Package autodiff implements reverse-mode automatic differentiation using the
// decorator pattern.
//
// AutodiffBackend wraps a compute backend and records every differentiable
// operation on a GradientTape while recording is enabled. Walking the tape in
// reverse yields the gradient of a scalar loss with respect to every tensor
// that took part in computing it.
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	loss := model.Loss(...)
//	grads := autodiff.Backward(loss, backend)
//	optimizer.Step(grads)
//	backend.Tape().Clear()
package autodiff

import (
	"github.com/born-ml/squarenet/internal/autodiff/ops"
	"github.com/born-ml/squarenet/internal/tensor"
)

// AutodiffBackend wraps a Backend and adds automatic differentiation.
// It implements tensor.Backend and records operations in a GradientTape.
type AutodiffBackend[B tensor.Backend] struct {
	inner B             // Wrapped backend
	tape  *GradientTape // Records operations for backpropagation
}

// New creates a new AutodiffBackend wrapping the given backend.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control.
func (b *AutodiffBackend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend for direct access.
func (b *AutodiffBackend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Add performs element-wise addition and records the operation.
func (b *AutodiffBackend[B]) Add(a, c *tensor.Tensor) *tensor.Tensor {
	result := b.inner.Add(a, c)
	b.tape.Record(ops.NewAddOp(a, c, result))
	return result
}

// Mul performs element-wise multiplication and records the operation.
func (b *AutodiffBackend[B]) Mul(a, c *tensor.Tensor) *tensor.Tensor {
	result := b.inner.Mul(a, c)
	b.tape.Record(ops.NewMulOp(a, c, result))
	return result
}

// MatMul performs matrix multiplication and records the operation.
func (b *AutodiffBackend[B]) MatMul(a, c *tensor.Tensor) *tensor.Tensor {
	result := b.inner.MatMul(a, c)
	b.tape.Record(ops.NewMatMulOp(a, c, result))
	return result
}

// MatMulTransA is not recorded; it only appears in backward passes.
func (b *AutodiffBackend[B]) MatMulTransA(a, c *tensor.Tensor) *tensor.Tensor {
	return b.inner.MatMulTransA(a, c)
}

// MatMulTransB is not recorded; it only appears in backward passes.
func (b *AutodiffBackend[B]) MatMulTransB(a, c *tensor.Tensor) *tensor.Tensor {
	return b.inner.MatMulTransB(a, c)
}

// AddBias broadcasts bias over the last dimension and records the operation.
func (b *AutodiffBackend[B]) AddBias(x, bias *tensor.Tensor) *tensor.Tensor {
	result := b.inner.AddBias(x, bias)
	b.tape.Record(ops.NewBiasAddOp(x, bias, result))
	return result
}

// SumToLastDim is not recorded; it only appears in backward passes.
func (b *AutodiffBackend[B]) SumToLastDim(x *tensor.Tensor) *tensor.Tensor {
	return b.inner.SumToLastDim(x)
}

// ReLU applies the rectifier and records the operation.
func (b *AutodiffBackend[B]) ReLU(x *tensor.Tensor) *tensor.Tensor {
	result := b.inner.ReLU(x)
	b.tape.Record(ops.NewReLUOp(x, result))
	return result
}

// Reshape returns a view with a new shape and records the operation.
func (b *AutodiffBackend[B]) Reshape(x *tensor.Tensor, newShape tensor.Shape) *tensor.Tensor {
	result := b.inner.Reshape(x, newShape)
	b.tape.Record(ops.NewReshapeOp(x, result))
	return result
}

// Conv2D performs 2D convolution and records the operation.
func (b *AutodiffBackend[B]) Conv2D(input, kernel *tensor.Tensor, stride int, padding tensor.Padding) *tensor.Tensor {
	result := b.inner.Conv2D(input, kernel, stride, padding)
	b.tape.Record(ops.NewConv2DOp(input, kernel, result, stride, padding))
	return result
}

// Conv2DInputBackward delegates to the inner backend without recording.
func (b *AutodiffBackend[B]) Conv2DInputBackward(input, kernel, grad *tensor.Tensor, stride int, padding tensor.Padding) *tensor.Tensor {
	return b.inner.Conv2DInputBackward(input, kernel, grad, stride, padding)
}

// Conv2DKernelBackward delegates to the inner backend without recording.
func (b *AutodiffBackend[B]) Conv2DKernelBackward(input, kernel, grad *tensor.Tensor, stride int, padding tensor.Padding) *tensor.Tensor {
	return b.inner.Conv2DKernelBackward(input, kernel, grad, stride, padding)
}

// MaxPool2D performs max pooling and records the operation together with the
// winning indices needed to route gradients.
func (b *AutodiffBackend[B]) MaxPool2D(input *tensor.Tensor, size, stride int, padding tensor.Padding) (*tensor.Tensor, []int) {
	result, indices := b.inner.MaxPool2D(input, size, stride, padding)
	b.tape.Record(ops.NewMaxPool2DOp(input, result, indices))
	return result, indices
}

// MaxPool2DBackward delegates to the inner backend without recording.
func (b *AutodiffBackend[B]) MaxPool2DBackward(input, grad *tensor.Tensor, maxIndices []int) *tensor.Tensor {
	return b.inner.MaxPool2DBackward(input, grad, maxIndices)
}

// SoftmaxCrossEntropy computes the mean loss and records the operation.
// Labels are treated as constants and never receive a gradient.
func (b *AutodiffBackend[B]) SoftmaxCrossEntropy(logits, labels *tensor.Tensor) *tensor.Tensor {
	result := b.inner.SoftmaxCrossEntropy(logits, labels)
	b.tape.Record(ops.NewCrossEntropyOp(logits, labels, result))
	return result
}

// SoftmaxCrossEntropyBackward delegates to the inner backend without recording.
func (b *AutodiffBackend[B]) SoftmaxCrossEntropyBackward(logits, labels, grad *tensor.Tensor) *tensor.Tensor {
	return b.inner.SoftmaxCrossEntropyBackward(logits, labels, grad)
}
