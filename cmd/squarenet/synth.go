package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/born-ml/squarenet/internal/dataset"
)

func synthAction(c *cli.Context) error {
	out := c.String(synthFlagOut)
	nTrain, nTest := c.Int(synthFlagTrain), c.Int(synthFlagTest)
	size := c.Int(synthFlagSize)
	if nTrain <= 0 || nTest < 0 || size <= 0 {
		return errors.Errorf("synth: need train > 0, test >= 0 and size > 0, got %d, %d, %d", nTrain, nTest, size)
	}
	format := c.String(synthFlagFormat)
	if err := dataset.WriteSynthetic(out, nTrain, nTest, size, size, c.Uint64(flagSeed), format); err != nil {
		return err
	}
	_, err := fmt.Fprintf(c.App.Writer, "wrote %d train and %d test squares to %s\n", nTrain, nTest, out)
	return err
}
