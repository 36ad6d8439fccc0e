package model

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/born-ml/squarenet/internal/tensor"
)

// Architecture holds the sizes of the two-headed network.
type Architecture struct {
	Height       int     `yaml:"height"`
	Width        int     `yaml:"width"`
	Channels     int     `yaml:"channels"`
	Conv1Filters int     `yaml:"conv1_filters"`
	Conv2Filters int     `yaml:"conv2_filters"`
	KernelSize   int     `yaml:"kernel_size"`
	Hidden       int     `yaml:"hidden"`
	KeepProb     float32 `yaml:"keep_prob"`
}

// DefaultArchitecture returns the 50x50x3 chess-square network:
// two 5x5 convolutions with 32 and 64 filters and a 1024-wide hidden layer.
func DefaultArchitecture() Architecture {
	return Architecture{
		Height:       50,
		Width:        50,
		Channels:     3,
		Conv1Filters: 32,
		Conv2Filters: 64,
		KernelSize:   5,
		Hidden:       1024,
		KeepProb:     0.5,
	}
}

// Pooling window and stride of both pooling stages.
const poolSize = 2

// Validate reports every invalid field.
func (a Architecture) Validate() error {
	var err error
	positive := map[string]int{
		"height":        a.Height,
		"width":         a.Width,
		"channels":      a.Channels,
		"conv1_filters": a.Conv1Filters,
		"conv2_filters": a.Conv2Filters,
		"kernel_size":   a.KernelSize,
		"hidden":        a.Hidden,
	}
	for _, name := range []string{"height", "width", "channels", "conv1_filters", "conv2_filters", "kernel_size", "hidden"} {
		if positive[name] <= 0 {
			err = multierr.Append(err, errors.Errorf("architecture: %s must be positive, got %d", name, positive[name]))
		}
	}
	if a.KeepProb <= 0 || a.KeepProb > 1 {
		err = multierr.Append(err, errors.Errorf("architecture: keep_prob must be in (0, 1], got %v", a.KeepProb))
	}
	return err
}

// PooledSize returns the spatial size after both Same-padded pooling stages.
// Convolutions are Same-padded with stride 1 and keep the size.
func (a Architecture) PooledSize() (h, w int) {
	h, w = a.Height, a.Width
	for range 2 {
		h, _ = tensor.Same.Window(h, poolSize, poolSize)
		w, _ = tensor.Same.Window(w, poolSize, poolSize)
	}
	return h, w
}

// FlatFeatures returns the length of the flattened trunk feature map
// (13*13*64 = 10816 for the default architecture).
func (a Architecture) FlatFeatures() int {
	h, w := a.PooledSize()
	return h * w * a.Conv2Filters
}

// InputShape returns the accepted image batch shape [N, H, W, C].
func (a Architecture) InputShape() tensor.Shape {
	return tensor.Shape{tensor.Any, a.Height, a.Width, a.Channels}
}
