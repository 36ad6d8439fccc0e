package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"

	"github.com/born-ml/squarenet/internal/parallel"
	"github.com/born-ml/squarenet/internal/tensor"
)

// convGeometry captures the sizes of one NHWC x HWIO convolution.
type convGeometry struct {
	n, h, w, cin    int
	kh, kw, cout    int
	hOut, wOut      int
	padTop, padLeft int
	stride          int
}

// rows is the number of output positions across the batch.
func (g convGeometry) rows() int { return g.n * g.hOut * g.wOut }

// patch is the length of one flattened receptive field.
func (g convGeometry) patch() int { return g.kh * g.kw * g.cin }

func newConvGeometry(op string, input, kernel *tensor.Tensor, stride int, padding tensor.Padding) convGeometry {
	in, k := input.Shape(), kernel.Shape()
	if len(in) != 4 {
		panic(fmt.Sprintf("%s: input must be 4-D [N,H,W,C], got %v", op, in))
	}
	if len(k) != 4 {
		panic(fmt.Sprintf("%s: kernel must be 4-D [KH,KW,Cin,Cout], got %v", op, k))
	}
	if in[3] != k[2] {
		panic(fmt.Sprintf("%s: input channels %d != kernel input channels %d", op, in[3], k[2]))
	}
	if stride < 1 {
		panic(fmt.Sprintf("%s: stride must be >= 1, got %d", op, stride))
	}
	g := convGeometry{
		n: in[0], h: in[1], w: in[2], cin: in[3],
		kh: k[0], kw: k[1], cout: k[3],
		stride: stride,
	}
	g.hOut, g.padTop = padding.Window(g.h, g.kh, stride)
	g.wOut, g.padLeft = padding.Window(g.w, g.kw, stride)
	if g.hOut <= 0 || g.wOut <= 0 {
		panic(fmt.Sprintf("%s: kernel %dx%d does not fit input %dx%d with %v padding",
			op, g.kh, g.kw, g.h, g.w, padding))
	}
	return g
}

// Conv2D convolves input [N,H,W,Cin] with kernel [KH,KW,Cin,Cout].
//
// The input is unfolded into a [N*Hout*Wout, KH*KW*Cin] patch matrix whose
// columns follow the kernel's (ky, kx, c) memory order, so a single GEMM
// against the kernel viewed as [KH*KW*Cin, Cout] yields the NHWC output.
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.Tensor, stride int, padding tensor.Padding) *tensor.Tensor {
	g := newConvGeometry("conv2d", input, kernel, stride, padding)

	cols := im2col(input.Data(), g, cpu.par)
	out := tensor.Zeros(tensor.Shape{g.n, g.hOut, g.wOut, g.cout})
	gemm(blas.NoTrans, blas.NoTrans,
		matrix(cols, g.rows(), g.patch()),
		matrix(kernel.Data(), g.patch(), g.cout),
		matrix(out.Data(), g.rows(), g.cout))
	return out
}

// im2col unfolds every receptive field into a row. Padding cells stay zero.
func im2col(in []float32, g convGeometry, cfg parallel.Config) []float32 {
	patch := g.patch()
	cols := make([]float32, g.rows()*patch)

	parallel.ForBatch(g.n, g.hOut, func(b, oy int) {
		imgBase := b * g.h * g.w * g.cin
		for ox := 0; ox < g.wOut; ox++ {
			row := cols[((b*g.hOut+oy)*g.wOut+ox)*patch:][:patch]
			for ky := 0; ky < g.kh; ky++ {
				iy := oy*g.stride + ky - g.padTop
				if iy < 0 || iy >= g.h {
					continue
				}
				for kx := 0; kx < g.kw; kx++ {
					ix := ox*g.stride + kx - g.padLeft
					if ix < 0 || ix >= g.w {
						continue
					}
					src := in[imgBase+(iy*g.w+ix)*g.cin:][:g.cin]
					copy(row[(ky*g.kw+kx)*g.cin:], src)
				}
			}
		}
	}, cfg)
	return cols
}

// col2im scatters patch-matrix rows back onto an NHWC image, accumulating
// overlapping windows. Images are independent, so the batch runs in parallel.
func col2im(cols []float32, g convGeometry, cfg parallel.Config) []float32 {
	patch := g.patch()
	img := make([]float32, g.n*g.h*g.w*g.cin)

	cfg.MinChunkSize = 1
	parallel.For(g.n, func(b int) {
		imgBase := b * g.h * g.w * g.cin
		for oy := 0; oy < g.hOut; oy++ {
			for ox := 0; ox < g.wOut; ox++ {
				row := cols[((b*g.hOut+oy)*g.wOut+ox)*patch:][:patch]
				for ky := 0; ky < g.kh; ky++ {
					iy := oy*g.stride + ky - g.padTop
					if iy < 0 || iy >= g.h {
						continue
					}
					for kx := 0; kx < g.kw; kx++ {
						ix := ox*g.stride + kx - g.padLeft
						if ix < 0 || ix >= g.w {
							continue
						}
						dst := img[imgBase+(iy*g.w+ix)*g.cin:][:g.cin]
						src := row[(ky*g.kw+kx)*g.cin:][:g.cin]
						for c, v := range src {
							dst[c] += v
						}
					}
				}
			}
		}
	}, cfg)
	return img
}
