package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/squarenet/internal/autodiff"
	"github.com/born-ml/squarenet/internal/backend/cpu"
	"github.com/born-ml/squarenet/internal/nn"
	"github.com/born-ml/squarenet/internal/optim"
	"github.com/born-ml/squarenet/internal/tensor"
)

func scalarParam(name string, v float32) *nn.Parameter {
	return nn.NewParameter(name, tensor.Full(tensor.Shape{1}, v))
}

func gradOf(param *nn.Parameter, g float32) map[*tensor.Tensor]*tensor.Tensor {
	return map[*tensor.Tensor]*tensor.Tensor{
		param.Tensor(): tensor.Full(tensor.Shape{1}, g),
	}
}

func TestSGD_SimpleUpdate(t *testing.T) {
	param := scalarParam("x", 2)
	optimizer := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.1})

	optimizer.Step(gradOf(param, 1))

	// x_new = 2.0 - 0.1 * 1.0
	assert.InDelta(t, 1.9, param.Tensor().Item(), 1e-6)
}

func TestSGD_WithMomentum(t *testing.T) {
	param := scalarParam("x", 1)
	optimizer := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	// v_1 = 1.0, x_1 = 1.0 - 0.1 * 1.0 = 0.9
	optimizer.Step(gradOf(param, 1))
	assert.InDelta(t, 0.9, param.Tensor().Item(), 1e-6)

	// v_2 = 0.9 * 1.0 + 1.0 = 1.9, x_2 = 0.9 - 0.1 * 1.9 = 0.71
	optimizer.Step(gradOf(param, 1))
	assert.InDelta(t, 0.71, param.Tensor().Item(), 1e-5)
}

func TestSGD_GetSetLR(t *testing.T) {
	optimizer := optim.NewSGD(nil, optim.SGDConfig{})
	assert.Equal(t, float32(0.01), optimizer.GetLR(), "default learning rate")

	optimizer.SetLR(0.5)
	assert.Equal(t, float32(0.5), optimizer.GetLR())
}

func TestAdam_SimpleUpdate(t *testing.T) {
	param := scalarParam("x", 1)
	optimizer := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 0.1})

	optimizer.Step(gradOf(param, 0.5))

	// After bias correction the first step moves by lr * sign(grad).
	assert.InDelta(t, 0.9, param.Tensor().Item(), 1e-5)
	assert.Equal(t, 1, optimizer.GetTimestep())
}

func TestAdam_BiasCorrection(t *testing.T) {
	param := scalarParam("x", 0)
	optimizer := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 1e-4})

	// A constant gradient keeps m_hat/sqrt(v_hat) at 1, so every step is -lr.
	for i := 0; i < 10; i++ {
		optimizer.Step(gradOf(param, 3))
	}
	assert.InDelta(t, -1e-3, param.Tensor().Item(), 1e-7)
}

func TestAdam_EpsilonOnUncorrectedMoment(t *testing.T) {
	param := scalarParam("x", 1)
	optimizer := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 0.1, Eps: 1})

	optimizer.Step(gradOf(param, 0.5))

	// lr_t = 0.1*sqrt(0.001)/0.1, m = 0.05, sqrt(v) = sqrt(0.00025).
	// Adding eps to sqrt(v_hat) instead would give 0.9667.
	assert.InDelta(t, 0.998443, param.Tensor().Item(), 1e-5)
}

func TestAdam_SkipsMissingGradients(t *testing.T) {
	used := scalarParam("used", 1)
	unused := scalarParam("unused", 1)
	optimizer := optim.NewAdam([]*nn.Parameter{used, unused}, optim.AdamConfig{})

	optimizer.Step(gradOf(used, 1))

	assert.Less(t, used.Tensor().Item(), float32(1))
	assert.Equal(t, float32(1), unused.Tensor().Item())
}

func TestAdam_ZeroGrad(t *testing.T) {
	param := scalarParam("x", 1)
	param.SetGrad(tensor.Full(tensor.Shape{1}, 1))

	optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{}).ZeroGrad()
	assert.Nil(t, param.Grad())
}

func TestAdam_ShapeMismatchPanics(t *testing.T) {
	param := nn.NewParameter("w", tensor.Zeros(tensor.Shape{2, 2}))
	optimizer := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{})

	assert.Panics(t, func() {
		optimizer.Step(map[*tensor.Tensor]*tensor.Tensor{param.Tensor(): tensor.Zeros(tensor.Shape{4})})
	})
}

func TestNew(t *testing.T) {
	params := []*nn.Parameter{scalarParam("x", 1)}

	adam, err := optim.New("adam", params, 1e-4)
	require.NoError(t, err)
	assert.IsType(t, &optim.Adam{}, adam)
	assert.Equal(t, float32(1e-4), adam.GetLR())

	sgd, err := optim.New("SGD", params, 0.05)
	require.NoError(t, err)
	assert.IsType(t, &optim.SGD{}, sgd)

	_, err = optim.New("rmsprop", params, 0.1)
	assert.Error(t, err)
}

// Minimise (w - 3)^2 for w in R^2 through the tape: w converges to 3.
func TestConvergence_Quadratic(t *testing.T) {
	for _, name := range []string{optim.NameAdam, optim.NameSGD} {
		t.Run(name, func(t *testing.T) {
			backend := autodiff.New(cpu.New())
			param := nn.NewParameter("w", tensor.Zeros(tensor.Shape{1, 2}))
			optimizer, err := optim.New(name, []*nn.Parameter{param}, 0.05)
			require.NoError(t, err)

			target := tensor.Full(tensor.Shape{2}, -3)
			ones := tensor.Full(tensor.Shape{2, 1}, 1)

			for i := 0; i < 500; i++ {
				backend.Tape().StartRecording()
				diff := backend.AddBias(param.Tensor(), target)
				loss := backend.MatMul(backend.Mul(diff, diff), ones)
				grads := autodiff.Backward(loss, backend)
				backend.Tape().Clear()

				optimizer.Step(grads)
				optimizer.ZeroGrad()
			}

			for _, v := range param.Tensor().Data() {
				assert.InDelta(t, 3, v, 0.05)
			}
		})
	}
}
