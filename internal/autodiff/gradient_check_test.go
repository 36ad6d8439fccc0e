package autodiff_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/squarenet/internal/autodiff"
	"github.com/born-ml/squarenet/internal/backend/cpu"
	"github.com/born-ml/squarenet/internal/tensor"
)

// smallNet is conv -> flatten -> dense -> bias -> softmax cross-entropy.
// Every step is smooth so central differences agree with the tape.
type smallNet struct {
	x, kernel, weight, bias, labels *tensor.Tensor
}

func newSmallNet(seed uint64) *smallNet {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	random := func(shape tensor.Shape, scale float64) *tensor.Tensor {
		x := tensor.Zeros(shape)
		for i := range x.Data() {
			x.Data()[i] = float32(rng.NormFloat64() * scale)
		}
		return x
	}
	labels := tensor.Zeros(tensor.Shape{2, 3})
	labels.Set(1, 0, 1)
	labels.Set(1, 1, 2)
	return &smallNet{
		x:      random(tensor.Shape{2, 4, 4, 2}, 1),
		kernel: random(tensor.Shape{3, 3, 2, 2}, 0.5),
		weight: random(tensor.Shape{4 * 4 * 2, 3}, 0.3),
		bias:   random(tensor.Shape{3}, 0.1),
		labels: labels,
	}
}

func (n *smallNet) loss(b tensor.Backend) *tensor.Tensor {
	h := b.Conv2D(n.x, n.kernel, 1, tensor.Same)
	flat := b.Reshape(h, tensor.Shape{2, 4 * 4 * 2})
	logits := b.AddBias(b.MatMul(flat, n.weight), n.bias)
	return b.SoftmaxCrossEntropy(logits, n.labels)
}

// numericalGradient perturbs every element of param and measures the loss
// with central differences on the plain CPU backend.
func numericalGradient(n *smallNet, param *tensor.Tensor, epsilon float32) []float64 {
	plain := cpu.New()
	out := make([]float64, param.NumElements())
	data := param.Data()
	for i := range data {
		orig := data[i]
		data[i] = orig + epsilon
		plus := float64(n.loss(plain).Item())
		data[i] = orig - epsilon
		minus := float64(n.loss(plain).Item())
		data[i] = orig
		out[i] = (plus - minus) / (2 * float64(epsilon))
	}
	return out
}

func TestNumericalGradient_ConvDenseCrossEntropy(t *testing.T) {
	net := newSmallNet(7)

	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	grads := autodiff.Backward(net.loss(backend), backend)

	params := map[string]*tensor.Tensor{
		"kernel": net.kernel,
		"weight": net.weight,
		"bias":   net.bias,
		"input":  net.x,
	}
	for name, param := range params {
		t.Run(name, func(t *testing.T) {
			got := grads[param]
			if !assert.NotNil(t, got, "missing gradient") {
				return
			}
			assert.Equal(t, param.Shape(), got.Shape())

			want := numericalGradient(net, param, 1e-2)
			for i, w := range want {
				assert.InDelta(t, w, got.Data()[i], 2e-3, "element %d", i)
			}
		})
	}
}
