package dataset

import (
	"context"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io/fs"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder
	"golang.org/x/sync/errgroup"
)

// Channels is the number of color channels of every sample (RGB).
const Channels = 3

// Split directory names under the dataset root.
const (
	TrainDir = "train"
	TestDir  = "test"
)

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".webp": true,
}

// Options controls how ReadDataSets finds and decodes images.
type Options struct {
	// Dir is the dataset root holding train/ and optionally test/.
	Dir string
	// Height and Width are the sample size; other images are resized.
	Height, Width int
	// TestFraction of the training images is held out when test/ is absent.
	TestFraction float64
	// Seed drives the hold-out selection and the batch shuffles.
	Seed uint64
	// Workers bounds the number of concurrent decoders.
	Workers int
}

// DefaultOptions returns options for 50x50 squares under dir.
func DefaultOptions(dir string) Options {
	return Options{
		Dir:          dir,
		Height:       50,
		Width:        50,
		TestFraction: 0.1,
		Seed:         1,
		Workers:      runtime.NumCPU(),
	}
}

func (o Options) validate() error {
	var err error
	if o.Dir == "" {
		err = multierr.Append(err, errors.New("dataset directory is empty"))
	}
	if o.Height <= 0 || o.Width <= 0 {
		err = multierr.Append(err, errors.Errorf("invalid sample size %dx%d", o.Height, o.Width))
	}
	if o.TestFraction < 0 || o.TestFraction >= 1 {
		err = multierr.Append(err, errors.Errorf("test fraction %v not in [0, 1)", o.TestFraction))
	}
	return err
}

type labelledFile struct {
	path  string
	label Label
}

// ReadDataSets loads <Dir>/train/<label>/* and <Dir>/test/<label>/*, where
// <label> is "empty" or "<color>_<piece>". Without a test directory the test
// split is drawn from the training images using TestFraction.
//
// Every unparsable label directory is reported in the returned error.
func ReadDataSets(ctx context.Context, opts Options, logger *zap.SugaredLogger) (*DataSets, error) {
	if err := opts.validate(); err != nil {
		return nil, errors.Wrap(err, "dataset options")
	}
	start := time.Now()

	trainFiles, err := listLabelled(filepath.Join(opts.Dir, TrainDir), logger)
	if err != nil {
		return nil, err
	}

	var testFiles []labelledFile
	testRoot := filepath.Join(opts.Dir, TestDir)
	info, statErr := os.Stat(testRoot)
	switch {
	case statErr == nil && !info.IsDir():
		return nil, errors.Errorf("%s is not a directory", testRoot)
	case statErr == nil:
		if testFiles, err = listLabelled(testRoot, logger); err != nil {
			return nil, err
		}
	case !errors.Is(statErr, fs.ErrNotExist):
		return nil, errors.Wrapf(statErr, "checking %s", testRoot)
	default:
		trainFiles, testFiles, err = holdOut(trainFiles, opts.TestFraction, opts.Seed)
		if err != nil {
			return nil, err
		}
		logger.Infow("no test directory, holding out training images",
			"fraction", opts.TestFraction, "test", len(testFiles))
	}

	trainSamples, err := decodeAll(ctx, trainFiles, opts)
	if err != nil {
		return nil, errors.Wrap(err, "loading train split")
	}
	testSamples, err := decodeAll(ctx, testFiles, opts)
	if err != nil {
		return nil, errors.Wrap(err, "loading test split")
	}

	train, err := NewSplit(TrainDir, trainSamples, opts.Height, opts.Width, Channels,
		rand.New(rand.NewPCG(opts.Seed, 1)))
	if err != nil {
		return nil, err
	}
	test, err := NewSplit(TestDir, testSamples, opts.Height, opts.Width, Channels,
		rand.New(rand.NewPCG(opts.Seed, 2)))
	if err != nil {
		return nil, err
	}

	logger.Infow("dataset loaded",
		"dir", opts.Dir, "train", train.Len(), "test", test.Len(), "elapsed", time.Since(start))
	return &DataSets{Train: train, Test: test}, nil
}

// listLabelled lists the images of every label directory under root.
func listLabelled(root string, logger *zap.SugaredLogger) ([]labelledFile, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", root)
	}

	var (
		files     []labelledFile
		labelErrs error
	)
	for _, entry := range entries {
		if !entry.IsDir() {
			logger.Debugw("skipping file outside label directory", "path", filepath.Join(root, entry.Name()))
			continue
		}
		label, err := ParseLabel(entry.Name())
		if err != nil {
			labelErrs = multierr.Append(labelErrs, errors.Wrapf(err, "directory %s", filepath.Join(root, entry.Name())))
			continue
		}
		dir := filepath.Join(root, entry.Name())
		images, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", dir)
		}
		for _, img := range images {
			if img.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(img.Name()))] {
				logger.Debugw("skipping non-image entry", "path", filepath.Join(dir, img.Name()))
				continue
			}
			files = append(files, labelledFile{path: filepath.Join(dir, img.Name()), label: label})
		}
	}
	if labelErrs != nil {
		return nil, labelErrs
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no images found under %s", root)
	}
	return files, nil
}

// holdOut moves a seeded random fraction of files into a test set.
func holdOut(files []labelledFile, fraction float64, seed uint64) (train, test []labelledFile, err error) {
	if len(files) < 2 {
		return nil, nil, errors.Errorf("need at least 2 images to hold out a test split, have %d", len(files))
	}
	nTest := int(math.Round(fraction * float64(len(files))))
	nTest = min(max(nTest, 1), len(files)-1)

	perm := rand.New(rand.NewPCG(seed, 0)).Perm(len(files))
	for i, idx := range perm {
		if i < nTest {
			test = append(test, files[idx])
		} else {
			train = append(train, files[idx])
		}
	}
	return train, test, nil
}

// decodeAll decodes files concurrently, preserving their order.
func decodeAll(ctx context.Context, files []labelledFile, opts Options) ([]Sample, error) {
	samples := make([]Sample, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := decodeImage(f.path, opts.Height, opts.Width)
			if err != nil {
				return err
			}
			samples[i] = Sample{Image: img, Label: f.label}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return samples, nil
}

// decodeImage reads an image file as HWC RGB floats in [0, 1], resizing it
// to height x width when needed.
func decodeImage(path string, height, width int) ([]float32, error) {
	f, err := os.Open(path) //nolint:gosec // dataset paths come from the operator
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		img = resize.Resize(uint(width), uint(height), img, resize.Bilinear)
	}
	return imageToFloats(img), nil
}

// imageToFloats flattens an image to HWC RGB floats scaled by 1/255.
func imageToFloats(img image.Image) []float32 {
	b := img.Bounds()
	out := make([]float32, 0, b.Dx()*b.Dy()*Channels)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out = append(out, float32(c.R)/255, float32(c.G)/255, float32(c.B)/255)
		}
	}
	return out
}
