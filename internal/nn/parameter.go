package nn

import (
	"github.com/born-ml/squarenet/internal/tensor"
)

// Parameter represents a trainable tensor in a neural network.
//
// The tensor is created once and updated in place by an optimizer, so its
// pointer identity is stable for the lifetime of a model and can key the
// gradient map returned by a backward pass.
type Parameter struct {
	name   string         // Parameter name (e.g., "conv1.weight")
	tensor *tensor.Tensor // The parameter tensor
	grad   *tensor.Tensor // Gradient from the last backward pass
}

// NewParameter creates a new trainable parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// Grad returns the gradient tensor, or nil before the first backward pass.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// SetGrad sets the gradient tensor.
func (p *Parameter) SetGrad(grad *tensor.Tensor) {
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}

// CollectGrads copies the gradients of params out of a backward-pass result
// into each Parameter. Parameters that did not take part get a nil gradient.
func CollectGrads(params []*Parameter, grads map[*tensor.Tensor]*tensor.Tensor) {
	for _, p := range params {
		p.grad = grads[p.tensor]
	}
}

// CountParameters returns the total number of scalar weights in params.
func CountParameters(params []*Parameter) int {
	n := 0
	for _, p := range params {
		n += p.tensor.NumElements()
	}
	return n
}
