package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/squarenet/internal/tensor"
)

// Mode selects between training and inference behaviour of mode-aware layers.
type Mode int

const (
	// Training enables stochastic regularisation.
	Training Mode = iota
	// Inference makes every layer deterministic.
	Inference
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Training:
		return "training"
	case Inference:
		return "inference"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Dropout randomly zeroes activations during training.
//
// In Training mode each element is kept with probability keepProb and scaled
// by 1/keepProb, so the expected activation is unchanged. In Inference mode
// Dropout is the identity and records nothing on a gradient tape.
type Dropout struct {
	keepProb float32
	rng      *rand.Rand
	backend  tensor.Backend
}

// NewDropout creates a Dropout layer. keepProb must be in (0, 1].
func NewDropout(keepProb float32, rng *rand.Rand, backend tensor.Backend) *Dropout {
	if keepProb <= 0 || keepProb > 1 {
		panic(fmt.Sprintf("dropout: keep probability must be in (0, 1], got %v", keepProb))
	}
	return &Dropout{
		keepProb: keepProb,
		rng:      rng,
		backend:  backend,
	}
}

// Forward applies dropout according to mode.
func (d *Dropout) Forward(input *tensor.Tensor, mode Mode) *tensor.Tensor {
	if mode == Inference || d.keepProb == 1 {
		return input
	}

	mask := tensor.Zeros(input.Shape())
	scale := 1 / d.keepProb
	maskData := mask.Data()
	for i := range maskData {
		if d.rng.Float32() < d.keepProb {
			maskData[i] = scale
		}
	}
	return d.backend.Mul(input, mask)
}

// KeepProb returns the probability of keeping an activation.
func (d *Dropout) KeepProb() float32 {
	return d.keepProb
}

// Parameters returns an empty slice.
func (d *Dropout) Parameters() []*Parameter {
	return []*Parameter{}
}
