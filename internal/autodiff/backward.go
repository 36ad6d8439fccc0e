package autodiff

import (
	"github.com/born-ml/squarenet/internal/tensor"
)

// BackwardCapable is a backend that records onto a gradient tape.
// AutodiffBackend implements this interface.
type BackwardCapable interface {
	tensor.Backend
	Tape() *GradientTape
}

// Backward computes the gradient of a single-element loss with respect to every
// tensor recorded on the backend's tape.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	loss := backend.SoftmaxCrossEntropy(logits, labels)
//	grads := autodiff.Backward(loss, backend)
//	dLogits := grads[logits]
func Backward(loss *tensor.Tensor, backend BackwardCapable) map[*tensor.Tensor]*tensor.Tensor {
	tape := backend.Tape()
	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}
	if loss.NumElements() != 1 {
		panic("backward: loss must be a single-element tensor, got shape " + loss.Shape().String())
	}
	return tape.Backward(loss, tensor.Full(loss.Shape(), 1), backend)
}
