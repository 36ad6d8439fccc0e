// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/squarenet/autodiff"
	"github.com/born-ml/squarenet/backend/cpu"
	"github.com/born-ml/squarenet/nn"
	"github.com/born-ml/squarenet/optim"
	"github.com/born-ml/squarenet/tensor"
)

func TestPublicAPI_TrainStep(t *testing.T) {
	backend := autodiff.New(cpu.NewWithConfig(cpu.Sequential()))
	rng := rand.New(rand.NewPCG(11, 12))
	init := nn.DefaultInit(rng)

	net := nn.NewSequential(
		nn.NewConv2D("conv", 3, 4, 3, 1, tensor.Same, init, backend),
		nn.NewReLU(backend),
		nn.NewMaxPool2D(2, 2, tensor.Same, backend),
		nn.NewFlatten(backend),
		nn.NewLinear("fc", 3*3*4, 3, init, backend),
	)

	images := tensor.Zeros(tensor.Shape{4, 6, 6, 3})
	for i := range images.Data() {
		images.Data()[i] = rng.Float32()
	}
	labels, err := tensor.FromSlice([]float32{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		1, 0, 0,
	}, tensor.Shape{4, 3})
	require.NoError(t, err)

	lossOf := func() float32 {
		loss, err := nn.SoftmaxCrossEntropy(backend, net.Forward(images), labels)
		require.NoError(t, err)
		return loss.Item()
	}
	before := lossOf()

	opt := optim.NewAdam(net.Parameters(), optim.AdamConfig{LR: 1e-4})
	backend.Tape().StartRecording()
	loss, err := nn.SoftmaxCrossEntropy(backend, net.Forward(images), labels)
	require.NoError(t, err)
	grads := autodiff.Backward(loss, backend)
	backend.Tape().StopRecording()
	backend.Tape().Clear()

	nn.CollectGrads(net.Parameters(), grads)
	for _, p := range net.Parameters() {
		assert.NotNil(t, p.Grad(), "parameter %s has no gradient", p.Name())
	}
	opt.Step(grads)

	assert.Less(t, lossOf(), before)
}

func TestPublicAPI_ShapeError(t *testing.T) {
	err := tensor.ExpectShape("model", tensor.Shape{4, 40, 40, 3}, tensor.Shape{tensor.Any, 50, 50, 3})
	var shapeErr *tensor.ShapeError
	assert.ErrorAs(t, err, &shapeErr)
}
