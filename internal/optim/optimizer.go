// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - Adam: Adaptive Moment Estimation (the trainer default)
//   - SGD: Stochastic Gradient Descent with momentum
//
// Example usage:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 1e-4})
//
//	backend.Tape().StartRecording()
//	loss := ...
//	grads := autodiff.Backward(loss, backend)
//	optimizer.Step(grads)
//	optimizer.ZeroGrad()
//	backend.Tape().Clear()
package optim

import (
	"fmt"
	"strings"

	"github.com/born-ml/squarenet/internal/nn"
	"github.com/born-ml/squarenet/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update model parameters in place from a gradient map keyed by
// parameter tensor, as returned by autodiff.Backward.
type Optimizer interface {
	// Step applies gradient updates to all parameters.
	// Parameters without an entry in grads are left unchanged.
	Step(grads map[*tensor.Tensor]*tensor.Tensor)

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// Names of the optimizers selectable with New.
const (
	NameAdam = "adam"
	NameSGD  = "sgd"
)

// New creates an optimizer by name ("adam" or "sgd") with the given learning
// rate and the remaining hyperparameters at their defaults. SGD uses momentum 0.9.
func New(name string, params []*nn.Parameter, lr float32) (Optimizer, error) {
	switch strings.ToLower(name) {
	case NameAdam:
		return NewAdam(params, AdamConfig{LR: lr}), nil
	case NameSGD:
		return NewSGD(params, SGDConfig{LR: lr, Momentum: 0.9}), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q (want %q or %q)", name, NameAdam, NameSGD)
	}
}

// getGradient retrieves the gradient for a parameter.
//
// Returns nil if the parameter wasn't part of the computation graph.
func getGradient(param *nn.Parameter, grads map[*tensor.Tensor]*tensor.Tensor) *tensor.Tensor {
	if param == nil {
		return nil
	}
	grad := grads[param.Tensor()]
	if grad != nil && !grad.Shape().Equal(param.Tensor().Shape()) {
		panic(fmt.Sprintf("optim: gradient shape %v does not match parameter %s %v",
			grad.Shape(), param.Name(), param.Tensor().Shape()))
	}
	return grad
}
