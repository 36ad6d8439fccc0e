package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/squarenet/internal/tensor"
)

// SoftmaxCrossEntropy computes mean_i(-sum_j labels[i,j] * log_softmax(logits)[i,j]).
//
// Uses the log-sum-exp trick with float64 accumulation:
//
//	log_softmax(x)_j = x_j - max(x) - log(sum(exp(x - max(x))))
func (cpu *CPUBackend) SoftmaxCrossEntropy(logits, labels *tensor.Tensor) *tensor.Tensor {
	n, c := checkLossShapes("softmax_cross_entropy", logits, labels)

	var total float64
	for i := 0; i < n; i++ {
		row := logits.Row(i)
		target := labels.Row(i)
		maxVal, logSum := logSumExp(row)
		for j := 0; j < c; j++ {
			if target[j] == 0 {
				continue
			}
			logProb := float64(row[j]) - maxVal - logSum
			total -= float64(target[j]) * logProb
		}
	}
	return tensor.Full(tensor.Shape{1}, float32(total/float64(n)))
}

// SoftmaxCrossEntropyBackward returns the gradient with respect to the logits:
//
//	dlogits[i,j] = grad * (softmax(x)[i,j] * sum_k labels[i,k] - labels[i,j]) / N
func (cpu *CPUBackend) SoftmaxCrossEntropyBackward(logits, labels, grad *tensor.Tensor) *tensor.Tensor {
	n, c := checkLossShapes("softmax_cross_entropy_backward", logits, labels)
	scale := float64(grad.Item()) / float64(n)

	result := tensor.Zeros(logits.Shape())
	for i := 0; i < n; i++ {
		row := logits.Row(i)
		target := labels.Row(i)
		dst := result.Row(i)
		maxVal, logSum := logSumExp(row)

		var labelSum float64
		for _, y := range target {
			labelSum += float64(y)
		}
		for j := 0; j < c; j++ {
			p := math.Exp(float64(row[j]) - maxVal - logSum)
			dst[j] = float32(scale * (p*labelSum - float64(target[j])))
		}
	}
	return result
}

func logSumExp(row []float32) (maxVal, logSum float64) {
	maxVal = math.Inf(-1)
	for _, v := range row {
		maxVal = math.Max(maxVal, float64(v))
	}
	var sum float64
	for _, v := range row {
		sum += math.Exp(float64(v) - maxVal)
	}
	return maxVal, math.Log(sum)
}

func checkLossShapes(op string, logits, labels *tensor.Tensor) (n, c int) {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("%s: logits must be 2-D [N,C], got %v", op, shape))
	}
	if !labels.Shape().Equal(shape) {
		panic(fmt.Sprintf("%s: labels shape %v does not match logits %v", op, labels.Shape(), shape))
	}
	return shape[0], shape[1]
}
