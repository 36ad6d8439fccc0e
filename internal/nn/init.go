package nn

import (
	"math/rand/v2"

	"github.com/born-ml/squarenet/internal/tensor"
)

// InitPolicy describes how a layer initialises its parameters.
type InitPolicy struct {
	// WeightStddev is the standard deviation of the truncated normal used
	// for weights and kernels.
	WeightStddev float64
	// BiasValue is the constant every bias starts from.
	BiasValue float32
	// Rand supplies the randomness for weights. A seeded source makes
	// initialisation reproducible.
	Rand *rand.Rand
}

// DefaultInit returns the policy used by the square classifier:
// weights ~ truncated N(0, 0.1), biases = 0.1.
func DefaultInit(rng *rand.Rand) InitPolicy {
	return InitPolicy{
		WeightStddev: 0.1,
		BiasValue:    0.1,
		Rand:         rng,
	}
}

// Weight draws a weight tensor of the given shape.
func (p InitPolicy) Weight(shape tensor.Shape) *tensor.Tensor {
	return TruncatedNormal(shape, p.WeightStddev, p.Rand)
}

// Bias creates a bias tensor of the given shape.
func (p InitPolicy) Bias(shape tensor.Shape) *tensor.Tensor {
	return Constant(shape, p.BiasValue)
}

// TruncatedNormal fills a tensor with samples from N(0, stddev^2), redrawing
// any sample that falls more than two standard deviations from the mean.
func TruncatedNormal(shape tensor.Shape, stddev float64, rng *rand.Rand) *tensor.Tensor {
	t := tensor.Zeros(shape)
	data := t.Data()
	for i := range data {
		v := rng.NormFloat64()
		for v < -2 || v > 2 {
			v = rng.NormFloat64()
		}
		data[i] = float32(v * stddev)
	}
	return t
}

// Constant creates a tensor with every element set to value.
func Constant(shape tensor.Shape, value float32) *tensor.Tensor {
	return tensor.Full(shape, value)
}
