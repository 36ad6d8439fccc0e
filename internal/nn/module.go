// Package nn implements the neural network building blocks of squarenet.
//
// This package provides:
//   - Module interface: Base interface for stateless-mode components
//   - Parameter: Named trainable tensors with gradient slots
//   - Conv2D, MaxPool2D, Linear, ReLU, Flatten: NHWC layers
//   - Dropout: Mode-aware regularisation
//   - SoftmaxCrossEntropy, Accuracy: loss and metric on one-hot labels
//   - Sequential: Container for stacking layers
//
// Layers compute through a tensor.Backend. When that backend is an
// autodiff.AutodiffBackend with recording enabled, every forward pass is
// recorded and can be differentiated.
package nn

import (
	"github.com/born-ml/squarenet/internal/tensor"
)

// Module is the base interface for neural network components whose forward
// pass does not depend on a Mode.
//
// Modules can be composed to build larger blocks:
//
//	block := nn.NewSequential(
//	    nn.NewConv2D("conv1", 3, 32, 5, 1, tensor.Same, init, backend),
//	    nn.NewReLU(backend),
//	    nn.NewMaxPool2D(2, 2, tensor.Same, backend),
//	)
type Module interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor) *tensor.Tensor

	// Parameters returns all trainable parameters of this module.
	// Returns an empty slice for modules without trainable parameters.
	Parameters() []*Parameter
}
