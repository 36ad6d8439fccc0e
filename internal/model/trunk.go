package model

import (
	"math/rand/v2"

	"github.com/born-ml/squarenet/internal/nn"
	"github.com/born-ml/squarenet/internal/tensor"
)

// Trunk is the shared feature extractor:
//
//	conv 5x5 -> ReLU -> maxpool 2x2 -> conv 5x5 -> ReLU -> maxpool 2x2
//	-> flatten -> dense -> ReLU -> dropout
//
// It maps [N, H, W, C] images to [N, Hidden] features.
type Trunk struct {
	features *nn.Sequential
	dropout  *nn.Dropout
}

func newTrunk(arch Architecture, init nn.InitPolicy, rng *rand.Rand, backend tensor.Backend) *Trunk {
	return &Trunk{
		features: nn.NewSequential(
			nn.NewConv2D("conv1", arch.Channels, arch.Conv1Filters, arch.KernelSize, 1, tensor.Same, init, backend),
			nn.NewReLU(backend),
			nn.NewMaxPool2D(poolSize, poolSize, tensor.Same, backend),
			nn.NewConv2D("conv2", arch.Conv1Filters, arch.Conv2Filters, arch.KernelSize, 1, tensor.Same, init, backend),
			nn.NewReLU(backend),
			nn.NewMaxPool2D(poolSize, poolSize, tensor.Same, backend),
			nn.NewFlatten(backend),
			nn.NewLinear("fc1", arch.FlatFeatures(), arch.Hidden, init, backend),
			nn.NewReLU(backend),
		),
		dropout: nn.NewDropout(arch.KeepProb, rng, backend),
	}
}

// Forward extracts features. Dropout is only active in Training mode.
func (t *Trunk) Forward(images *tensor.Tensor, mode nn.Mode) *tensor.Tensor {
	return t.dropout.Forward(t.features.Forward(images), mode)
}

// Parameters returns the trunk parameters in layer order.
func (t *Trunk) Parameters() []*nn.Parameter {
	return t.features.Parameters()
}

// String describes the trunk layers.
func (t *Trunk) String() string {
	return t.features.String()
}
