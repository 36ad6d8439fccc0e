package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"

	"github.com/born-ml/squarenet/internal/tensor"
)

// Conv2DInputBackward computes the gradient of a convolution with respect to its input.
//
//	dCols = dOut @ W^T, then col2im folds the patches back onto [N,H,W,Cin].
func (cpu *CPUBackend) Conv2DInputBackward(input, kernel, grad *tensor.Tensor, stride int, padding tensor.Padding) *tensor.Tensor {
	g := newConvGeometry("conv2d_input_backward", input, kernel, stride, padding)
	checkConvGrad("conv2d_input_backward", g, grad)

	dCols := make([]float32, g.rows()*g.patch())
	gemm(blas.NoTrans, blas.Trans,
		matrix(grad.Data(), g.rows(), g.cout),
		matrix(kernel.Data(), g.patch(), g.cout),
		matrix(dCols, g.rows(), g.patch()))

	return tensor.Wrap(col2im(dCols, g, cpu.par), input.Shape())
}

// Conv2DKernelBackward computes the gradient of a convolution with respect to its kernel.
//
//	dW = cols^T @ dOut, with cols recomputed from the input.
func (cpu *CPUBackend) Conv2DKernelBackward(input, kernel, grad *tensor.Tensor, stride int, padding tensor.Padding) *tensor.Tensor {
	g := newConvGeometry("conv2d_kernel_backward", input, kernel, stride, padding)
	checkConvGrad("conv2d_kernel_backward", g, grad)

	cols := im2col(input.Data(), g, cpu.par)
	dKernel := tensor.Zeros(kernel.Shape())
	gemm(blas.Trans, blas.NoTrans,
		matrix(cols, g.rows(), g.patch()),
		matrix(grad.Data(), g.rows(), g.cout),
		matrix(dKernel.Data(), g.patch(), g.cout))
	return dKernel
}

func checkConvGrad(op string, g convGeometry, grad *tensor.Tensor) {
	want := tensor.Shape{g.n, g.hOut, g.wOut, g.cout}
	if !grad.Shape().Equal(want) {
		panic(fmt.Sprintf("%s: gradient shape %v, expected %v", op, grad.Shape(), want))
	}
}
