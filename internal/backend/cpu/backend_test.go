package cpu

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/squarenet/internal/parallel"
	"github.com/born-ml/squarenet/internal/tensor"
)

// Helper to create test backend.
func newTestBackend() *CPUBackend {
	return New()
}

// Helper to check float32 slices are equal within epsilon.
func float32SliceEqual(a, b []float32) bool {
	const epsilon = 1e-5
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > epsilon {
			return false
		}
	}
	return true
}

func mustTensor(t *testing.T, data []float32, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return x
}

func randomTensor(rng *rand.Rand, shape tensor.Shape) *tensor.Tensor {
	x := tensor.Zeros(shape)
	for i := range x.Data() {
		x.Data()[i] = float32(rng.NormFloat64())
	}
	return x
}

func dot(a, b *tensor.Tensor) float64 {
	var sum float64
	for i, v := range a.Data() {
		sum += float64(v) * float64(b.Data()[i])
	}
	return sum
}

func TestCPUBackend_New(t *testing.T) {
	backend := New()
	if backend == nil {
		t.Fatal("New() returned nil")
	}
	if backend.Name() != "CPU" {
		t.Errorf("Expected name 'CPU', got '%s'", backend.Name())
	}
	assert.False(t, NewWithConfig(parallel.Sequential()).Parallel().Enabled)
}

func TestCPUBackend_Add(t *testing.T) {
	backend := newTestBackend()

	a := mustTensor(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := mustTensor(t, []float32{10, 11, 12, 13, 14, 15}, tensor.Shape{2, 3})

	result := backend.Add(a, b)
	expected := []float32{11, 13, 15, 17, 19, 21}
	if !float32SliceEqual(result.Data(), expected) {
		t.Errorf("Add failed: got %v, expected %v", result.Data(), expected)
	}
	assert.Equal(t, float32(1), a.At(0, 0), "inputs must not be modified")

	assert.Panics(t, func() { backend.Add(a, tensor.Zeros(tensor.Shape{3, 2})) })
}

func TestCPUBackend_Mul(t *testing.T) {
	backend := newTestBackend()

	a := mustTensor(t, []float32{1, 2, 3}, tensor.Shape{3})
	b := mustTensor(t, []float32{2, 0, -1}, tensor.Shape{3})

	assert.Equal(t, []float32{2, 0, -3}, backend.Mul(a, b).Data())
}

func TestCPUBackend_AddBias(t *testing.T) {
	backend := newTestBackend()

	x := mustTensor(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{1, 1, 2, 3})
	bias := mustTensor(t, []float32{0.1, 0.2, 0.3}, tensor.Shape{3})

	result := backend.AddBias(x, bias)
	assert.True(t, float32SliceEqual(result.Data(), []float32{1.1, 2.2, 3.3, 4.1, 5.2, 6.3}), result.Data())

	assert.Panics(t, func() { backend.AddBias(x, tensor.Zeros(tensor.Shape{2})) })
}

func TestCPUBackend_SumToLastDim(t *testing.T) {
	backend := newTestBackend()

	x := mustTensor(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})
	result := backend.SumToLastDim(x)

	assert.Equal(t, tensor.Shape{2}, result.Shape())
	assert.Equal(t, []float32{9, 12}, result.Data())
}

func TestCPUBackend_ReLU(t *testing.T) {
	backend := newTestBackend()

	x := mustTensor(t, []float32{-2, -0.5, 0, 0.5, 2}, tensor.Shape{5})
	assert.Equal(t, []float32{0, 0, 0, 0.5, 2}, backend.ReLU(x).Data())
}

func TestCPUBackend_Reshape(t *testing.T) {
	backend := newTestBackend()

	x := tensor.Zeros(tensor.Shape{2, 3, 3, 4})
	flat := backend.Reshape(x, tensor.Shape{2, 36})

	assert.Equal(t, tensor.Shape{2, 36}, flat.Shape())
	assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{5, 7}) })
}

func TestCPUBackend_MatMul(t *testing.T) {
	backend := newTestBackend()
	expected := []float32{58, 64, 139, 154}

	t.Run("Plain", func(t *testing.T) {
		a := mustTensor(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		b := mustTensor(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})
		result := backend.MatMul(a, b)
		assert.Equal(t, tensor.Shape{2, 2}, result.Shape())
		assert.True(t, float32SliceEqual(result.Data(), expected), result.Data())
	})

	t.Run("TransA", func(t *testing.T) {
		a := mustTensor(t, []float32{1, 4, 2, 5, 3, 6}, tensor.Shape{3, 2})
		b := mustTensor(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})
		result := backend.MatMulTransA(a, b)
		assert.True(t, float32SliceEqual(result.Data(), expected), result.Data())
	})

	t.Run("TransB", func(t *testing.T) {
		a := mustTensor(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		b := mustTensor(t, []float32{7, 9, 11, 8, 10, 12}, tensor.Shape{2, 3})
		result := backend.MatMulTransB(a, b)
		assert.True(t, float32SliceEqual(result.Data(), expected), result.Data())
	})

	t.Run("InnerMismatch", func(t *testing.T) {
		assert.Panics(t, func() {
			backend.MatMul(tensor.Zeros(tensor.Shape{2, 3}), tensor.Zeros(tensor.Shape{2, 3}))
		})
	})
}
