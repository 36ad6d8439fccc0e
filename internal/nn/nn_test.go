package nn_test

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/squarenet/internal/autodiff"
	"github.com/born-ml/squarenet/internal/backend/cpu"
	"github.com/born-ml/squarenet/internal/nn"
	"github.com/born-ml/squarenet/internal/tensor"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(42, 1))
}

func mustTensor(t *testing.T, data []float32, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return x
}

func TestParameter(t *testing.T) {
	data := tensor.Full(tensor.Shape{3}, 1)
	param := nn.NewParameter("test_param", data)

	assert.Equal(t, "test_param", param.Name())
	assert.Same(t, data, param.Tensor())
	assert.Nil(t, param.Grad())

	grad := tensor.Full(tensor.Shape{3}, 0.5)
	nn.CollectGrads([]*nn.Parameter{param}, map[*tensor.Tensor]*tensor.Tensor{data: grad})
	assert.Same(t, grad, param.Grad())

	param.ZeroGrad()
	assert.Nil(t, param.Grad())
}

func TestTruncatedNormal(t *testing.T) {
	const stddev = 0.1
	w := nn.TruncatedNormal(tensor.Shape{100, 100}, stddev, testRand())

	var sum, sumSq float64
	for _, v := range w.Data() {
		require.LessOrEqual(t, math.Abs(float64(v)), 2*stddev+1e-6, "sample beyond two sigma")
		sum += float64(v)
		sumSq += float64(v) * float64(v)
	}
	n := float64(w.NumElements())
	mean := sum / n
	// Truncation at 2 sigma shrinks the stddev to about 0.88 sigma.
	std := math.Sqrt(sumSq/n - mean*mean)
	assert.InDelta(t, 0, mean, 0.005)
	assert.InDelta(t, 0.088, std, 0.005)
}

func TestDefaultInit(t *testing.T) {
	init := nn.DefaultInit(testRand())
	assert.Equal(t, 0.1, init.WeightStddev)

	bias := init.Bias(tensor.Shape{4})
	for _, v := range bias.Data() {
		assert.Equal(t, float32(0.1), v)
	}
}

func TestConv2D_Shapes(t *testing.T) {
	backend := cpu.New()
	conv := nn.NewConv2D("conv1", 3, 32, 5, 1, tensor.Same, nn.DefaultInit(testRand()), backend)

	params := conv.Parameters()
	require.Len(t, params, 2)
	assert.Equal(t, "conv1.weight", params[0].Name())
	assert.Equal(t, tensor.Shape{5, 5, 3, 32}, params[0].Tensor().Shape())
	assert.Equal(t, "conv1.bias", params[1].Name())
	assert.Equal(t, tensor.Shape{32}, params[1].Tensor().Shape())

	out := conv.Forward(tensor.Zeros(tensor.Shape{2, 50, 50, 3}))
	assert.Equal(t, tensor.Shape{2, 50, 50, 32}, out.Shape())
	// Zero input: every output equals the bias.
	assert.Equal(t, float32(0.1), out.At(1, 49, 0, 31))
}

func TestMaxPool2D_OutputSize(t *testing.T) {
	pool := nn.NewMaxPool2D(2, 2, tensor.Same, cpu.New())

	h, w := pool.OutputSize(50, 50)
	assert.Equal(t, 25, h)
	assert.Equal(t, 25, w)

	h, w = pool.OutputSize(25, 25)
	assert.Equal(t, 13, h)
	assert.Equal(t, 13, w)

	assert.Empty(t, pool.Parameters())
}

func TestLinear_Forward(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewLinear("fc", 3, 2, nn.DefaultInit(testRand()), backend)

	copy(layer.Weight().Tensor().Data(), []float32{1, 0, 0, 1, 1, 1})
	copy(layer.Bias().Tensor().Data(), []float32{0.5, -0.5})

	out := layer.Forward(mustTensor(t, []float32{1, 2, 3}, tensor.Shape{1, 3}))
	assert.Equal(t, []float32{4.5, 4.5}, out.Data())

	assert.Panics(t, func() { layer.Forward(tensor.Zeros(tensor.Shape{1, 4})) })
}

func TestSequential(t *testing.T) {
	backend := cpu.New()
	init := nn.DefaultInit(testRand())
	block := nn.NewSequential(
		nn.NewConv2D("conv", 3, 4, 3, 1, tensor.Same, init, backend),
		nn.NewReLU(backend),
		nn.NewMaxPool2D(2, 2, tensor.Same, backend),
		nn.NewFlatten(backend),
		nn.NewLinear("fc", 5*5*4, 6, init, backend),
	)

	out := block.Forward(tensor.Full(tensor.Shape{3, 10, 10, 3}, 0.5))

	assert.Equal(t, tensor.Shape{3, 6}, out.Shape())
	assert.Len(t, block.Parameters(), 4)
	assert.Equal(t, 5, block.Len())
	assert.Equal(t, 3*3*3*4+4+100*6+6, nn.CountParameters(block.Parameters()))
	assert.Contains(t, block.String(), "Conv2D(3, 4, kernel=3, stride=1, padding=SAME)")
}

func TestDropout_InferenceIsIdentity(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	dropout := nn.NewDropout(0.5, testRand(), backend)

	x := tensor.Full(tensor.Shape{4, 8}, 3)
	first := dropout.Forward(x, nn.Inference)
	second := dropout.Forward(x, nn.Inference)

	assert.Equal(t, x.Data(), first.Data())
	assert.Equal(t, first.Data(), second.Data())
	assert.Equal(t, 0, backend.Tape().NumOps(), "inference dropout records nothing")
}

func TestDropout_Training(t *testing.T) {
	dropout := nn.NewDropout(0.5, testRand(), cpu.New())

	x := tensor.Full(tensor.Shape{100, 100}, 1)
	out := dropout.Forward(x, nn.Training)

	kept := 0
	for _, v := range out.Data() {
		switch v {
		case 0:
		case 2:
			kept++
		default:
			t.Fatalf("unexpected dropout output %v", v)
		}
	}
	assert.InDelta(t, 0.5, float64(kept)/float64(x.NumElements()), 0.03)
	assert.Equal(t, float32(1), x.At(0, 0), "input must not be modified")
}

func TestDropout_InvalidKeepProb(t *testing.T) {
	assert.Panics(t, func() { nn.NewDropout(0, testRand(), cpu.New()) })
	assert.Panics(t, func() { nn.NewDropout(1.5, testRand(), cpu.New()) })
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "training", nn.Training.String())
	assert.Equal(t, "inference", nn.Inference.String())
}

func TestSoftmaxCrossEntropy(t *testing.T) {
	backend := cpu.New()

	logits := mustTensor(t, []float32{0, 0, 0}, tensor.Shape{1, 3})
	labels := mustTensor(t, []float32{0, 1, 0}, tensor.Shape{1, 3})

	loss, err := nn.SoftmaxCrossEntropy(backend, logits, labels)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(3), loss.Item(), 1e-6)
}

func TestSoftmaxCrossEntropy_RejectsBadLabels(t *testing.T) {
	backend := cpu.New()
	logits := tensor.Zeros(tensor.Shape{2, 3})

	tests := []struct {
		name   string
		labels []float32
	}{
		{"two hot", []float32{1, 1, 0, 0, 1, 0}},
		{"none hot", []float32{0, 0, 0, 0, 1, 0}},
		{"fractional", []float32{0.5, 0.5, 0, 0, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := nn.SoftmaxCrossEntropy(backend, logits, mustTensor(t, tt.labels, tensor.Shape{2, 3}))
			assert.Error(t, err)
		})
	}

	_, err := nn.SoftmaxCrossEntropy(backend, logits, tensor.Zeros(tensor.Shape{2, 7}))
	var shapeErr *tensor.ShapeError
	assert.True(t, errors.As(err, &shapeErr))
}

func TestAccuracy(t *testing.T) {
	labels := mustTensor(t, []float32{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		0, 1, 0,
	}, tensor.Shape{4, 3})

	perfect := mustTensor(t, []float32{
		5, 1, 1,
		0, 2, 1,
		-1, -2, 0,
		0.1, 0.2, 0.1,
	}, tensor.Shape{4, 3})
	assert.Equal(t, float32(1), nn.Accuracy(perfect, labels))

	half := mustTensor(t, []float32{
		5, 1, 1,
		3, 2, 1,
		-1, -2, 0,
		0.3, 0.2, 0.1,
	}, tensor.Shape{4, 3})
	assert.Equal(t, float32(0.5), nn.Accuracy(half, labels))
	assert.Equal(t, 2, nn.Correct(half, labels))
}
