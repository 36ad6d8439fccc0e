package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/squarenet/internal/tensor"
)

func TestCPUBackend_SoftmaxCrossEntropy(t *testing.T) {
	backend := newTestBackend()

	logits := mustTensor(t, []float32{0, 0, 10, 0}, tensor.Shape{2, 2})
	labels := mustTensor(t, []float32{1, 0, 1, 0}, tensor.Shape{2, 2})

	loss := backend.SoftmaxCrossEntropy(logits, labels)

	want := (math.Log(2) + math.Log1p(math.Exp(-10))) / 2
	assert.Equal(t, tensor.Shape{1}, loss.Shape())
	assert.InDelta(t, want, loss.Item(), 1e-6)
}

func TestCPUBackend_SoftmaxCrossEntropy_LargeLogits(t *testing.T) {
	backend := newTestBackend()

	logits := mustTensor(t, []float32{1000, 0}, tensor.Shape{1, 2})
	labels := mustTensor(t, []float32{0, 1}, tensor.Shape{1, 2})

	loss := backend.SoftmaxCrossEntropy(logits, labels).Item()
	assert.False(t, math.IsNaN(float64(loss)))
	assert.InDelta(t, 1000, loss, 1e-3)

	grad := backend.SoftmaxCrossEntropyBackward(logits, labels, tensor.Full(tensor.Shape{1}, 1))
	assert.True(t, float32SliceEqual(grad.Data(), []float32{1, -1}), grad.Data())
}

func TestCPUBackend_SoftmaxCrossEntropyBackward(t *testing.T) {
	backend := newTestBackend()

	logits := mustTensor(t, []float32{0, 0, 0, 0}, tensor.Shape{2, 2})
	labels := mustTensor(t, []float32{1, 0, 0, 1}, tensor.Shape{2, 2})

	grad := backend.SoftmaxCrossEntropyBackward(logits, labels, tensor.Full(tensor.Shape{1}, 2))

	// 2 * (0.5 - y) / 2
	assert.True(t, float32SliceEqual(grad.Data(), []float32{-0.5, 0.5, 0.5, -0.5}), grad.Data())
}

func TestCPUBackend_SoftmaxCrossEntropy_ShapeMismatch(t *testing.T) {
	backend := newTestBackend()

	assert.Panics(t, func() {
		backend.SoftmaxCrossEntropy(tensor.Zeros(tensor.Shape{2, 7}), tensor.Zeros(tensor.Shape{2, 3}))
	})
}
