// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers, initialisers and losses squarenet is built from.
//
// Example:
//
//	init := nn.DefaultInit(rand.New(rand.NewPCG(1, 2)))
//	net := nn.NewSequential(
//	    nn.NewConv2D("conv1", 3, 32, 5, 1, tensor.Same, init, backend),
//	    nn.NewReLU(backend),
//	    nn.NewMaxPool2D(2, 2, tensor.Same, backend),
//	    nn.NewFlatten(backend),
//	    nn.NewLinear("fc", 25*25*32, 10, init, backend),
//	)
package nn

import (
	"math/rand/v2"

	"github.com/born-ml/squarenet/internal/nn"
	"github.com/born-ml/squarenet/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module = nn.Module

// Parameter represents a trainable parameter in a neural network.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// InitPolicy decides the initial values of weights and biases.
type InitPolicy = nn.InitPolicy

// DefaultInit draws weights from a truncated normal with stddev 0.1 and sets
// biases to 0.1.
func DefaultInit(rng *rand.Rand) InitPolicy {
	return nn.DefaultInit(rng)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear = nn.Linear

// NewLinear creates a dense layer with weight [in, out] and bias [out].
func NewLinear(name string, inFeatures, outFeatures int, init InitPolicy, backend tensor.Backend) *Linear {
	return nn.NewLinear(name, inFeatures, outFeatures, init, backend)
}

// Conv2D represents a 2D convolutional layer over NHWC input.
type Conv2D = nn.Conv2D

// NewConv2D creates a square-kernel convolution with bias.
func NewConv2D(
	name string,
	inChannels, outChannels, kernelSize, stride int,
	padding tensor.Padding,
	init InitPolicy,
	backend tensor.Backend,
) *Conv2D {
	return nn.NewConv2D(name, inChannels, outChannels, kernelSize, stride, padding, init, backend)
}

// MaxPool2D represents a 2D max pooling layer.
type MaxPool2D = nn.MaxPool2D

// NewMaxPool2D creates a max pooling layer.
func NewMaxPool2D(size, stride int, padding tensor.Padding, backend tensor.Backend) *MaxPool2D {
	return nn.NewMaxPool2D(size, stride, padding, backend)
}

// ReLU represents the Rectified Linear Unit activation function.
type ReLU = nn.ReLU

// NewReLU creates a new ReLU activation layer.
func NewReLU(backend tensor.Backend) *ReLU {
	return nn.NewReLU(backend)
}

// Flatten reshapes [N, ...] to [N, features].
type Flatten = nn.Flatten

// NewFlatten creates a flatten layer.
func NewFlatten(backend tensor.Backend) *Flatten {
	return nn.NewFlatten(backend)
}

// Sequential chains modules.
type Sequential = nn.Sequential

// NewSequential creates a sequential container.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// Regularisation

// Mode selects training or inference behaviour.
type Mode = nn.Mode

// Modes.
const (
	Training  = nn.Training
	Inference = nn.Inference
)

// Dropout randomly zeroes activations in Training mode.
type Dropout = nn.Dropout

// NewDropout creates a dropout layer keeping each activation with probability keepProb.
func NewDropout(keepProb float32, rng *rand.Rand, backend tensor.Backend) *Dropout {
	return nn.NewDropout(keepProb, rng, backend)
}

// Losses and metrics

// SoftmaxCrossEntropy returns the batch-mean cross-entropy of raw logits
// against one-hot labels.
func SoftmaxCrossEntropy(backend tensor.Backend, logits, labels *tensor.Tensor) (*tensor.Tensor, error) {
	return nn.SoftmaxCrossEntropy(backend, logits, labels)
}

// Accuracy returns the fraction of rows whose argmax matches the label.
func Accuracy(logits, labels *tensor.Tensor) float32 {
	return nn.Accuracy(logits, labels)
}

// CollectGrads copies backward-pass gradients into each Parameter.
func CollectGrads(params []*Parameter, grads map[*tensor.Tensor]*tensor.Tensor) {
	nn.CollectGrads(params, grads)
}
