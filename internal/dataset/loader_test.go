package dataset

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/squarenet/internal/logging"
)

func testOptions(dir string) Options {
	opts := DefaultOptions(dir)
	opts.Height, opts.Width = 8, 8
	opts.Workers = 3
	return opts
}

func TestReadDataSets_RoundTrip(t *testing.T) {
	for _, format := range []string{FormatPNG, FormatBMP} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			rng := rand.New(rand.NewPCG(5, 6))
			train := Synthetic(26, 8, 8, rng)
			test := Synthetic(13, 8, 8, rng)
			require.NoError(t, WriteImages(filepath.Join(dir, TrainDir), train, 8, 8, format))
			require.NoError(t, WriteImages(filepath.Join(dir, TestDir), test, 8, 8, format))

			ds, err := ReadDataSets(context.Background(), testOptions(dir), logging.NewTestLogger(t))
			require.NoError(t, err)
			assert.Equal(t, 26, ds.Train.Len())
			assert.Equal(t, 13, ds.Test.Len())

			// Test samples are listed label by label; compare them as multisets.
			want := map[string]int{}
			for _, s := range test {
				want[s.Label.String()]++
			}
			got := map[string]int{}
			for _, l := range ds.Test.Labels() {
				got[l.String()]++
			}
			assert.Equal(t, want, got)

			// Pixel values survive the 8-bit round trip exactly.
			byLabel := map[Label][]float32{}
			for _, s := range test {
				byLabel[s.Label] = s.Image
			}
			for i, s := range ds.Test.samples {
				assert.Equal(t, byLabel[s.Label], s.Image, "sample %d (%s)", i, s.Label)
			}
			require.NoError(t, ValidateBatch(ds.Train.NextBatch(10)))
		})
	}
}

func TestReadDataSets_HoldsOutTestSplit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteSynthetic(dir, 20, 0, 8, 8, 9, FormatPNG))

	opts := testOptions(dir)
	opts.TestFraction = 0.25

	logger, logs := logging.NewObservedTestLogger(t)
	ds, err := ReadDataSets(context.Background(), opts, logger)
	require.NoError(t, err)

	assert.Equal(t, 15, ds.Train.Len())
	assert.Equal(t, 5, ds.Test.Len())
	assert.Equal(t, 1, logs.FilterMessage("no test directory, holding out training images").Len())
}

func TestReadDataSets_ResizesImages(t *testing.T) {
	dir := t.TempDir()
	labelDir := filepath.Join(dir, TrainDir, "white_queen")
	require.NoError(t, os.MkdirAll(labelDir, 0o755))

	img := image.NewNRGBA(image.Rect(0, 0, 20, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 20; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 0, B: 255, A: 255})
		}
	}
	for _, name := range []string{"a.png", "b.png"} {
		f, err := os.Create(filepath.Join(labelDir, name))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
	}
	require.NoError(t, os.WriteFile(filepath.Join(labelDir, "notes.txt"), []byte("ignored"), 0o644))

	ds, err := ReadDataSets(context.Background(), testOptions(dir), logging.NewTestLogger(t))
	require.NoError(t, err)

	images := ds.Train.Images()
	assert.Equal(t, []int{1, 8, 8, 3}, []int(images.Shape()))
	assert.InDelta(t, 1, images.At(0, 4, 4, 0), 2.0/255)
	assert.InDelta(t, 0, images.At(0, 4, 4, 1), 2.0/255)
	assert.Equal(t, Label{Piece: Queen, Color: White}, ds.Train.Labels()[0])
}

func TestReadDataSets_ReportsEveryBadLabel(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteSynthetic(dir, 13, 13, 8, 8, 1, FormatPNG))
	for _, bad := range []string{"purple_pawn", "white_empty"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, TrainDir, bad), 0o755))
	}

	_, err := ReadDataSets(context.Background(), testOptions(dir), logging.NewTestLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purple_pawn")
	assert.Contains(t, err.Error(), "white_empty")
}

func TestReadDataSets_Errors(t *testing.T) {
	logger := logging.NewTestLogger(t)

	_, err := ReadDataSets(context.Background(), testOptions(t.TempDir()), logger)
	assert.Error(t, err, "missing train directory")

	opts := testOptions("")
	opts.TestFraction = 1.5
	_, err = ReadDataSets(context.Background(), opts, logger)
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, WriteSynthetic(dir, 13, 13, 8, 8, 1, FormatPNG))
	corrupt := filepath.Join(dir, TrainDir, "empty", "zz.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a png"), 0o644))
	_, err = ReadDataSets(context.Background(), testOptions(dir), logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zz.png")
}

func TestReadDataSets_TestPathNotDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteSynthetic(dir, 20, 0, 8, 8, 9, FormatPNG))
	require.NoError(t, os.WriteFile(filepath.Join(dir, TestDir), []byte("x"), 0o644))

	logger, logs := logging.NewObservedTestLogger(t)
	_, err := ReadDataSets(context.Background(), testOptions(dir), logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
	assert.Zero(t, logs.FilterMessage("no test directory, holding out training images").Len())
}

func TestReadDataSets_Cancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteSynthetic(dir, 13, 13, 8, 8, 1, FormatPNG))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadDataSets(ctx, testOptions(dir), logging.NewTestLogger(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSynthetic(t *testing.T) {
	samples := Synthetic(26, 10, 10, rand.New(rand.NewPCG(1, 1)))
	require.Len(t, samples, 26)

	for i, s := range samples {
		assert.Equal(t, AllLabels()[i%13], s.Label)
		assert.Len(t, s.Image, 10*10*3)
	}

	ds, err := NewSyntheticDataSets(13, 13, 10, 10, 4)
	require.NoError(t, err)
	assert.Equal(t, 13, ds.Train.Len())
	assert.Equal(t, 13, ds.Test.Len())
}
