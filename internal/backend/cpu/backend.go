// Package cpu implements the CPU backend: NHWC convolution and pooling kernels,
// dense matrix products over gonum BLAS, and the fused softmax cross-entropy.
package cpu

import (
	"fmt"

	"github.com/born-ml/squarenet/internal/parallel"
	"github.com/born-ml/squarenet/internal/tensor"
)

// CPUBackend implements tensor.Backend on the host CPU.
type CPUBackend struct {
	par parallel.Config
}

// New creates a CPU backend sized to the host.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{par: cfg}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Parallel returns the loop configuration used by the kernels.
func (cpu *CPUBackend) Parallel() parallel.Config {
	return cpu.par
}

// Add performs element-wise addition of equally shaped tensors.
func (cpu *CPUBackend) Add(a, b *tensor.Tensor) *tensor.Tensor {
	mustSameShape("add", a, b)
	result := tensor.Zeros(a.Shape())
	out, aData, bData := result.Data(), a.Data(), b.Data()
	for i := range out {
		out[i] = aData[i] + bData[i]
	}
	return result
}

// Mul performs element-wise multiplication of equally shaped tensors.
func (cpu *CPUBackend) Mul(a, b *tensor.Tensor) *tensor.Tensor {
	mustSameShape("mul", a, b)
	result := tensor.Zeros(a.Shape())
	out, aData, bData := result.Data(), a.Data(), b.Data()
	for i := range out {
		out[i] = aData[i] * bData[i]
	}
	return result
}

// AddBias adds bias [C] to every position of x along its last dimension.
func (cpu *CPUBackend) AddBias(x, bias *tensor.Tensor) *tensor.Tensor {
	channels := lastDim("add_bias", x)
	if len(bias.Shape()) != 1 || bias.Shape()[0] != channels {
		panic(fmt.Sprintf("add_bias: bias shape %v does not match last dimension %d of %v",
			bias.Shape(), channels, x.Shape()))
	}
	result := x.Clone()
	out, b := result.Data(), bias.Data()
	for start := 0; start < len(out); start += channels {
		row := out[start : start+channels]
		for c := range row {
			row[c] += b[c]
		}
	}
	return result
}

// SumToLastDim sums x over every leading dimension, producing [C].
func (cpu *CPUBackend) SumToLastDim(x *tensor.Tensor) *tensor.Tensor {
	channels := lastDim("sum_to_last_dim", x)
	result := tensor.Zeros(tensor.Shape{channels})
	out, in := result.Data(), x.Data()
	for start := 0; start < len(in); start += channels {
		row := in[start : start+channels]
		for c, v := range row {
			out[c] += v
		}
	}
	return result
}

// ReLU computes max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.Tensor) *tensor.Tensor {
	result := tensor.Zeros(x.Shape())
	out := result.Data()
	for i, v := range x.Data() {
		if v > 0 {
			out[i] = v
		}
	}
	return result
}

// Reshape returns a view of x with a new shape. No data is copied.
func (cpu *CPUBackend) Reshape(x *tensor.Tensor, newShape tensor.Shape) *tensor.Tensor {
	view, err := x.View(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return view
}

func mustSameShape(op string, a, b *tensor.Tensor) {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, a.Shape(), b.Shape()))
	}
}

func lastDim(op string, x *tensor.Tensor) int {
	shape := x.Shape()
	if len(shape) == 0 {
		panic(fmt.Sprintf("%s: expected at least 1-D tensor, got scalar", op))
	}
	return shape[len(shape)-1]
}
