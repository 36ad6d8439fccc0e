package nn

import (
	"fmt"

	"github.com/born-ml/squarenet/internal/tensor"
)

// SoftmaxCrossEntropy computes the mean over the batch of
// -sum_j labels[i,j] * log(softmax(logits[i])_j).
//
// logits are raw, unnormalised scores [N, C]; labels are one-hot [N, C].
// Shape mismatches return a *tensor.ShapeError and labels that are not one-hot
// return an error, before anything is computed or recorded.
//
// The log-sum-exp formulation keeps the loss finite for large logits.
func SoftmaxCrossEntropy(backend tensor.Backend, logits, labels *tensor.Tensor) (*tensor.Tensor, error) {
	if err := tensor.ExpectShape("softmax_cross_entropy", logits.Shape(), tensor.Shape{tensor.Any, tensor.Any}); err != nil {
		return nil, err
	}
	if err := tensor.ExpectShape("softmax_cross_entropy", labels.Shape(), logits.Shape()); err != nil {
		return nil, err
	}
	if err := ValidateOneHot(labels); err != nil {
		return nil, err
	}
	return backend.SoftmaxCrossEntropy(logits, labels), nil
}

// ValidateOneHot checks that every row of a 2-D label tensor contains exactly
// one 1 and zeros elsewhere.
func ValidateOneHot(labels *tensor.Tensor) error {
	shape := labels.Shape()
	if len(shape) != 2 {
		return fmt.Errorf("one-hot labels must be 2-D [N, C], got %v", shape)
	}
	for i := 0; i < shape[0]; i++ {
		ones := 0
		for j, v := range labels.Row(i) {
			switch v {
			case 1:
				ones++
			case 0:
			default:
				return fmt.Errorf("label row %d: value %v at class %d is not 0 or 1", i, v, j)
			}
		}
		if ones != 1 {
			return fmt.Errorf("label row %d: expected exactly one hot class, got %d", i, ones)
		}
	}
	return nil
}

// Accuracy returns the fraction of rows whose logits argmax equals the label
// argmax. The result is in [0, 1]; an empty batch yields 0.
func Accuracy(logits, labels *tensor.Tensor) float32 {
	if !logits.Shape().Equal(labels.Shape()) {
		panic(fmt.Sprintf("accuracy: logits %v and labels %v differ in shape", logits.Shape(), labels.Shape()))
	}
	return float32(Correct(logits, labels)) / float32(max(logits.Shape()[0], 1))
}

// Correct returns the number of rows whose logits argmax equals the label argmax.
func Correct(logits, labels *tensor.Tensor) int {
	predicted := logits.ArgmaxRows()
	expected := labels.ArgmaxRows()
	correct := 0
	for i := range predicted {
		if predicted[i] == expected[i] {
			correct++
		}
	}
	return correct
}
