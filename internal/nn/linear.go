package nn

import (
	"fmt"

	"github.com/born-ml/squarenet/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs: y = x @ W + b
// where:
//   - x has shape [batch_size, in_features]
//   - W has shape [in_features, out_features]
//   - b has shape [out_features]
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter
	bias        *Parameter
	backend     tensor.Backend
}

// NewLinear creates a new Linear layer. Parameter names are prefixed with name.
func NewLinear(name string, inFeatures, outFeatures int, init InitPolicy, backend tensor.Backend) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("linear: invalid features in=%d, out=%d", inFeatures, outFeatures))
	}
	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter(name+".weight", init.Weight(tensor.Shape{inFeatures, outFeatures})),
		bias:        NewParameter(name+".bias", init.Bias(tensor.Shape{outFeatures})),
		backend:     backend,
	}
}

// Forward computes x @ W + b.
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("linear: expected 2D input [batch, features], got shape %v", shape))
	}
	if shape[1] != l.inFeatures {
		panic(fmt.Sprintf("linear: expected input with %d features, got %d", l.inFeatures, shape[1]))
	}
	out := l.backend.MatMul(input, l.weight.Tensor())
	return l.backend.AddBias(out, l.bias.Tensor())
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// String returns a human-readable representation.
func (l *Linear) String() string {
	return fmt.Sprintf("Linear(%d, %d)", l.inFeatures, l.outFeatures)
}
