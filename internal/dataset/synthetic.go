package dataset

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

// Synthetic renders n squares cycling through AllLabels.
//
// Each square is a noisy grey background; occupied squares carry a centred bar
// whose height encodes the piece and whose brightness encodes the color. Every
// value is a multiple of 1/255, so the samples survive an 8-bit image round trip.
func Synthetic(n, height, width int, rng *rand.Rand) []Sample {
	labels := AllLabels()
	samples := make([]Sample, n)
	for i := range samples {
		label := labels[i%len(labels)]
		samples[i] = Sample{Image: renderSquare(label, height, width, rng), Label: label}
	}
	return samples
}

func renderSquare(label Label, height, width int, rng *rand.Rand) []float32 {
	img := make([]float32, height*width*Channels)
	for i := range img {
		img[i] = quantize(0.5 + 0.1*(rng.Float64()-0.5))
	}
	if label.Piece == Empty {
		return img
	}

	fill := quantize(0.95)
	if label.Color == Black {
		fill = quantize(0.05)
	}
	barHeight := max(1, (int(label.Piece)+1)*height/(PieceClasses+1))
	x0, x1 := width/4, width-width/4
	for y := height - barHeight; y < height; y++ {
		for x := x0; x < x1; x++ {
			px := img[(y*width+x)*Channels:][:Channels]
			for c := range px {
				px[c] = fill
			}
		}
	}
	return img
}

func quantize(v float64) float32 {
	return float32(math.Round(v*255)) / 255
}

// NewSyntheticDataSets builds in-memory train and test splits of synthetic squares.
func NewSyntheticDataSets(nTrain, nTest, height, width int, seed uint64) (*DataSets, error) {
	rng := rand.New(rand.NewPCG(seed, 3))
	train, err := NewSplit(TrainDir, Synthetic(nTrain, height, width, rng), height, width, Channels,
		rand.New(rand.NewPCG(seed, 1)))
	if err != nil {
		return nil, err
	}
	test, err := NewSplit(TestDir, Synthetic(nTest, height, width, rng), height, width, Channels,
		rand.New(rand.NewPCG(seed, 2)))
	if err != nil {
		return nil, err
	}
	return &DataSets{Train: train, Test: test}, nil
}

// Image formats WriteImages can produce.
const (
	FormatPNG = "png"
	FormatBMP = "bmp"
)

// WriteImages stores samples under dir/<label>/<index>.<format>, the layout
// ReadDataSets expects for one split.
func WriteImages(dir string, samples []Sample, height, width int, format string) error {
	var encode func(io.Writer, image.Image) error
	switch format {
	case FormatPNG:
		encode = png.Encode
	case FormatBMP:
		encode = bmp.Encode
	default:
		return errors.Errorf("unsupported image format %q", format)
	}

	for i, s := range samples {
		if len(s.Image) != height*width*Channels {
			return errors.Errorf("sample %d has %d values, want %d", i, len(s.Image), height*width*Channels)
		}
		labelDir := filepath.Join(dir, s.Label.String())
		if err := os.MkdirAll(labelDir, 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", labelDir)
		}
		path := filepath.Join(labelDir, fmt.Sprintf("%05d.%s", i, format))
		if err := writeImage(path, floatsToImage(s.Image, height, width), encode); err != nil {
			return err
		}
	}
	return nil
}

// WriteSynthetic writes a synthetic dataset tree with train/ and test/ splits.
func WriteSynthetic(dir string, nTrain, nTest, height, width int, seed uint64, format string) error {
	rng := rand.New(rand.NewPCG(seed, 3))
	if err := WriteImages(filepath.Join(dir, TrainDir), Synthetic(nTrain, height, width, rng), height, width, format); err != nil {
		return err
	}
	if nTest == 0 {
		return nil
	}
	return WriteImages(filepath.Join(dir, TestDir), Synthetic(nTest, height, width, rng), height, width, format)
}

func writeImage(path string, img image.Image, encode func(io.Writer, image.Image) error) (err error) {
	f, err := os.Create(path) //nolint:gosec // output path chosen by the operator
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "closing %s", path)
		}
	}()
	if err := encode(f, img); err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}
	return nil
}

func floatsToImage(data []float32, height, width int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := data[(y*width+x)*Channels:][:Channels]
			img.SetNRGBA(x, y, color.NRGBA{R: toByte(px[0]), G: toByte(px[1]), B: toByte(px[2]), A: 255})
		}
	}
	return img
}

func toByte(v float32) uint8 {
	return uint8(math.Round(float64(min(max(v, 0), 1)) * 255))
}
