package dataset

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/pkg/errors"

	"github.com/born-ml/squarenet/internal/tensor"
)

// Sample is one labelled square: an HWC float32 image scaled to [0, 1].
type Sample struct {
	Image []float32
	Label Label
}

// Batch holds a batch of samples as tensors.
type Batch struct {
	Images      *tensor.Tensor // [N, H, W, C]
	PieceLabels *tensor.Tensor // [N, 7] one-hot
	ColorLabels *tensor.Tensor // [N, 3] one-hot
}

// Len returns the number of samples in the batch.
func (b Batch) Len() int {
	return b.Images.Shape()[0]
}

// Split is an immutable set of samples plus a shuffled read cursor.
//
// Only NextBatch mutates a Split, so a Split must not be shared between
// goroutines that call it.
type Split struct {
	name                    string
	height, width, channels int
	samples                 []Sample

	rng    *rand.Rand
	perm   []int
	cursor int
	epoch  int

	once sync.Once
	full Batch
}

// NewSplit creates a split over samples. Every sample image must hold
// height*width*channels values. rng drives the per-epoch shuffle.
func NewSplit(name string, samples []Sample, height, width, channels int, rng *rand.Rand) (*Split, error) {
	if len(samples) == 0 {
		return nil, errors.Errorf("%s split: no samples", name)
	}
	size := height * width * channels
	for i, s := range samples {
		if len(s.Image) != size {
			return nil, errors.Errorf("%s split: sample %d has %d values, want %d (%dx%dx%d)",
				name, i, len(s.Image), size, height, width, channels)
		}
		if err := s.Label.Valid(); err != nil {
			return nil, errors.Wrapf(err, "%s split: sample %d", name, i)
		}
	}
	sp := &Split{
		name:     name,
		height:   height,
		width:    width,
		channels: channels,
		samples:  samples,
		rng:      rng,
	}
	sp.shuffle()
	return sp, nil
}

// Name returns the split name ("train" or "test").
func (s *Split) Name() string {
	return s.name
}

// Len returns the number of samples.
func (s *Split) Len() int {
	return len(s.samples)
}

// Epoch returns the number of completed passes over the split.
func (s *Split) Epoch() int {
	return s.epoch
}

// Labels returns the labels of every sample in storage order.
func (s *Split) Labels() []Label {
	labels := make([]Label, len(s.samples))
	for i, sample := range s.samples {
		labels[i] = sample.Label
	}
	return labels
}

func (s *Split) shuffle() {
	s.perm = s.rng.Perm(len(s.samples))
	s.cursor = 0
}

// NextBatch returns the next n samples of the current shuffled order.
// When an epoch is exhausted the split reshuffles and continues, so every
// batch has exactly n samples and every sample is seen once per epoch.
func (s *Split) NextBatch(n int) Batch {
	if n <= 0 {
		panic(fmt.Sprintf("dataset: batch size must be positive, got %d", n))
	}
	indices := make([]int, n)
	for i := range indices {
		if s.cursor == len(s.perm) {
			s.epoch++
			s.shuffle()
		}
		indices[i] = s.perm[s.cursor]
		s.cursor++
	}
	return s.gather(indices)
}

// Slice returns samples [start, end) in storage order.
func (s *Split) Slice(start, end int) Batch {
	if start < 0 || end > len(s.samples) || start >= end {
		panic(fmt.Sprintf("dataset: invalid slice [%d, %d) of %d samples", start, end, len(s.samples)))
	}
	indices := make([]int, end-start)
	for i := range indices {
		indices[i] = start + i
	}
	return s.gather(indices)
}

// Images returns every image of the split as [N, H, W, C].
func (s *Split) Images() *tensor.Tensor {
	return s.all().Images
}

// PieceLabels returns every piece label of the split as one-hot [N, 7].
func (s *Split) PieceLabels() *tensor.Tensor {
	return s.all().PieceLabels
}

// ColorLabels returns every color label of the split as one-hot [N, 3].
func (s *Split) ColorLabels() *tensor.Tensor {
	return s.all().ColorLabels
}

func (s *Split) all() Batch {
	s.once.Do(func() {
		s.full = s.Slice(0, len(s.samples))
	})
	return s.full
}

func (s *Split) gather(indices []int) Batch {
	size := s.height * s.width * s.channels
	images := tensor.Zeros(tensor.Shape{len(indices), s.height, s.width, s.channels})
	data := images.Data()
	labels := make([]Label, len(indices))
	for i, idx := range indices {
		copy(data[i*size:(i+1)*size], s.samples[idx].Image)
		labels[i] = s.samples[idx].Label
	}
	pieces, colors := OneHotLabels(labels)
	return Batch{Images: images, PieceLabels: pieces, ColorLabels: colors}
}

// DataSets groups the training and test splits.
type DataSets struct {
	Train *Split
	Test  *Split
}

// ValidateBatch checks that a batch has matching sizes, one-hot label rows
// and consistent piece/color pairs.
func ValidateBatch(b Batch) error {
	n := b.Len()
	if err := tensor.ExpectShape("piece labels", b.PieceLabels.Shape(), tensor.Shape{n, PieceClasses}); err != nil {
		return err
	}
	if err := tensor.ExpectShape("color labels", b.ColorLabels.Shape(), tensor.Shape{n, ColorClasses}); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		piece, err := hotIndex(b.PieceLabels.Row(i))
		if err != nil {
			return errors.Wrapf(err, "piece label row %d", i)
		}
		color, err := hotIndex(b.ColorLabels.Row(i))
		if err != nil {
			return errors.Wrapf(err, "color label row %d", i)
		}
		if err := (Label{Piece: Piece(piece), Color: Color(color)}).Valid(); err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
	}
	return nil
}

func hotIndex(row []float32) (int, error) {
	hot := -1
	for j, v := range row {
		switch {
		case v == 1 && hot < 0:
			hot = j
		case v == 1:
			return 0, errors.New("more than one hot class")
		case v != 0:
			return 0, errors.Errorf("value %v at class %d is not 0 or 1", v, j)
		}
	}
	if hot < 0 {
		return 0, errors.New("no hot class")
	}
	return hot, nil
}
