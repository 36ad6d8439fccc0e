package nn

import (
	"fmt"

	"github.com/born-ml/squarenet/internal/tensor"
)

// Conv2D is a 2D convolutional layer over NHWC input.
//
// Performs: output = Conv2D(input, weight) + bias
//
// Input shape:  [batch, height, width, in_channels]
// Weight shape: [kernel, kernel, in_channels, out_channels]
// Bias shape:   [out_channels]
// Output shape: [batch, out_h, out_w, out_channels]
//
// With Same padding out_h = ceil(height / stride).
type Conv2D struct {
	inChannels  int
	outChannels int
	kernelSize  int
	stride      int
	padding     tensor.Padding

	weight *Parameter
	bias   *Parameter

	backend tensor.Backend
}

// NewConv2D creates a new 2D convolutional layer. Parameter names are
// prefixed with name ("conv1" yields "conv1.weight" and "conv1.bias").
func NewConv2D(
	name string,
	inChannels, outChannels int,
	kernelSize, stride int,
	padding tensor.Padding,
	init InitPolicy,
	backend tensor.Backend,
) *Conv2D {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelSize <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}

	weightShape := tensor.Shape{kernelSize, kernelSize, inChannels, outChannels}
	return &Conv2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  kernelSize,
		stride:      stride,
		padding:     padding,
		weight:      NewParameter(name+".weight", init.Weight(weightShape)),
		bias:        NewParameter(name+".bias", init.Bias(tensor.Shape{outChannels})),
		backend:     backend,
	}
}

// Forward applies the convolution and adds the bias.
func (c *Conv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := c.backend.Conv2D(input, c.weight.Tensor(), c.stride, c.padding)
	return c.backend.AddBias(out, c.bias.Tensor())
}

// Parameters returns [weight, bias].
func (c *Conv2D) Parameters() []*Parameter {
	return []*Parameter{c.weight, c.bias}
}

// Weight returns the kernel parameter.
func (c *Conv2D) Weight() *Parameter {
	return c.weight
}

// Bias returns the bias parameter.
func (c *Conv2D) Bias() *Parameter {
	return c.bias
}

// OutputSize returns the spatial output size for an input of h x w.
func (c *Conv2D) OutputSize(h, w int) (int, int) {
	outH, _ := c.padding.Window(h, c.kernelSize, c.stride)
	outW, _ := c.padding.Window(w, c.kernelSize, c.stride)
	return outH, outW
}

// String returns a human-readable representation.
func (c *Conv2D) String() string {
	return fmt.Sprintf("Conv2D(%d, %d, kernel=%d, stride=%d, padding=%v)",
		c.inChannels, c.outChannels, c.kernelSize, c.stride, c.padding)
}
