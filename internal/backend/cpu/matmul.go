package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/squarenet/internal/tensor"
)

// MatMul computes a @ b for a [M,K] and b [K,N].
func (cpu *CPUBackend) MatMul(a, b *tensor.Tensor) *tensor.Tensor {
	m, k := dims2("matmul", a)
	k2, n := dims2("matmul", b)
	if k != k2 {
		panic(fmt.Sprintf("matmul: inner dimensions differ: %v @ %v", a.Shape(), b.Shape()))
	}
	out := tensor.Zeros(tensor.Shape{m, n})
	gemm(blas.NoTrans, blas.NoTrans, general(a), general(b), general(out))
	return out
}

// MatMulTransA computes a^T @ b for a [K,M] and b [K,N].
func (cpu *CPUBackend) MatMulTransA(a, b *tensor.Tensor) *tensor.Tensor {
	k, m := dims2("matmul_trans_a", a)
	k2, n := dims2("matmul_trans_a", b)
	if k != k2 {
		panic(fmt.Sprintf("matmul_trans_a: inner dimensions differ: %v^T @ %v", a.Shape(), b.Shape()))
	}
	out := tensor.Zeros(tensor.Shape{m, n})
	gemm(blas.Trans, blas.NoTrans, general(a), general(b), general(out))
	return out
}

// MatMulTransB computes a @ b^T for a [M,K] and b [N,K].
func (cpu *CPUBackend) MatMulTransB(a, b *tensor.Tensor) *tensor.Tensor {
	m, k := dims2("matmul_trans_b", a)
	n, k2 := dims2("matmul_trans_b", b)
	if k != k2 {
		panic(fmt.Sprintf("matmul_trans_b: inner dimensions differ: %v @ %v^T", a.Shape(), b.Shape()))
	}
	out := tensor.Zeros(tensor.Shape{m, n})
	gemm(blas.NoTrans, blas.Trans, general(a), general(b), general(out))
	return out
}

func dims2(op string, t *tensor.Tensor) (rows, cols int) {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("%s: expected 2-D tensor, got shape %v", op, shape))
	}
	return shape[0], shape[1]
}

func general(t *tensor.Tensor) blas32.General {
	shape := t.Shape()
	return matrix(t.Data(), shape[0], shape[1])
}

func matrix(data []float32, rows, cols int) blas32.General {
	return blas32.General{Rows: rows, Cols: cols, Stride: cols, Data: data}
}

// gemm computes c = op(a) @ op(b), overwriting c.
func gemm(tA, tB blas.Transpose, a, b, c blas32.General) {
	blas32.Gemm(tA, tB, 1, a, b, 0, c)
}
