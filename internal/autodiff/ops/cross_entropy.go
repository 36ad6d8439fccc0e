package ops

import "github.com/born-ml/squarenet/internal/tensor"

// CrossEntropyOp records the fused softmax cross-entropy loss.
//
// Forward: loss = mean_i(-sum_j y[i,j] * log_softmax(logits)[i,j])
//
// Backward: dL/dlogits = grad * (softmax(logits) - y) / N for one-hot y.
// Labels are constants: their gradient entry is nil.
type CrossEntropyOp struct {
	logits *tensor.Tensor
	labels *tensor.Tensor
	output *tensor.Tensor
}

// NewCrossEntropyOp creates a new CrossEntropyOp.
func NewCrossEntropyOp(logits, labels, output *tensor.Tensor) *CrossEntropyOp {
	return &CrossEntropyOp{
		logits: logits,
		labels: labels,
		output: output,
	}
}

// Inputs returns [logits, labels].
func (op *CrossEntropyOp) Inputs() []*tensor.Tensor {
	return []*tensor.Tensor{op.logits, op.labels}
}

// Output returns the scalar loss.
func (op *CrossEntropyOp) Output() *tensor.Tensor {
	return op.output
}

// Backward computes the gradient with respect to the logits.
func (op *CrossEntropyOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{
		backend.SoftmaxCrossEntropyBackward(op.logits, op.labels, outputGrad),
		nil,
	}
}
