package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/squarenet/internal/parallel"
	"github.com/born-ml/squarenet/internal/tensor"
)

// MaxPool2D applies max pooling over the spatial axes of an NHWC tensor.
//
// Padding cells never win: with Same padding a window hanging past the border
// only considers the input cells it covers. The returned indices hold, for every
// output element, the flat input index of the selected maximum.
func (cpu *CPUBackend) MaxPool2D(input *tensor.Tensor, size, stride int, padding tensor.Padding) (*tensor.Tensor, []int) {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("maxpool2d: input must be 4-D [N,H,W,C], got %v", shape))
	}
	if size < 1 || stride < 1 {
		panic(fmt.Sprintf("maxpool2d: size and stride must be >= 1, got %d and %d", size, stride))
	}
	n, h, w, c := shape[0], shape[1], shape[2], shape[3]
	hOut, padTop := padding.Window(h, size, stride)
	wOut, padLeft := padding.Window(w, size, stride)
	if hOut <= 0 || wOut <= 0 {
		panic(fmt.Sprintf("maxpool2d: window %d does not fit input %dx%d with %v padding", size, h, w, padding))
	}

	out := tensor.Zeros(tensor.Shape{n, hOut, wOut, c})
	indices := make([]int, out.NumElements())
	in, dst := input.Data(), out.Data()

	parallel.ForBatch(n, hOut, func(b, oy int) {
		y0 := max(oy*stride-padTop, 0)
		y1 := min(oy*stride-padTop+size, h)
		for ox := 0; ox < wOut; ox++ {
			x0 := max(ox*stride-padLeft, 0)
			x1 := min(ox*stride-padLeft+size, w)
			outBase := ((b*hOut+oy)*wOut + ox) * c
			for ch := 0; ch < c; ch++ {
				best := float32(math.Inf(-1))
				bestIdx := -1
				for iy := y0; iy < y1; iy++ {
					for ix := x0; ix < x1; ix++ {
						idx := ((b*h+iy)*w+ix)*c + ch
						if bestIdx < 0 || in[idx] > best {
							best = in[idx]
							bestIdx = idx
						}
					}
				}
				dst[outBase+ch] = best
				indices[outBase+ch] = bestIdx
			}
		}
	}, cpu.par)

	return out, indices
}

// MaxPool2DBackward routes each output gradient to the input element that won its window.
func (cpu *CPUBackend) MaxPool2DBackward(input, grad *tensor.Tensor, maxIndices []int) *tensor.Tensor {
	if len(maxIndices) != grad.NumElements() {
		panic(fmt.Sprintf("maxpool2d_backward: %d indices for gradient of shape %v",
			len(maxIndices), grad.Shape()))
	}
	result := tensor.Zeros(input.Shape())
	dst, g := result.Data(), grad.Data()
	// Windows may overlap when stride < size, so accumulate sequentially.
	for i, idx := range maxIndices {
		dst[idx] += g[i]
	}
	return result
}
