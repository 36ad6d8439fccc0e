// Package main is the squarenet command: it trains the two-headed
// chess-square classifier and generates synthetic datasets.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "v0.1.0-dev"

const (
	// Flags.
	flagConfig     = "config"
	flagData       = "data"
	flagSynthetic  = "synthetic"
	flagIterations = "iterations"
	flagSeed       = "seed"
	flagLogLevel   = "log-level"

	synthFlagOut    = "out"
	synthFlagTrain  = "train"
	synthFlagTest   = "test"
	synthFlagSize   = "size"
	synthFlagFormat = "format"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		stop()
		log.Fatal(err)
	}
}

func trainFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load configuration from `FILE` (YAML)",
		},
		&cli.StringFlag{
			Name:  flagData,
			Usage: "dataset root `DIR` holding train/ and optionally test/",
		},
		&cli.IntFlag{
			Name:  flagSynthetic,
			Usage: "train on `N` generated squares instead of a dataset directory",
		},
		&cli.IntFlag{
			Name:  flagIterations,
			Usage: "number of training iterations",
		},
		&cli.Uint64Flag{
			Name:  flagSeed,
			Usage: "seed for initialisation, shuffling and dropout",
		},
		&cli.StringFlag{
			Name:  flagLogLevel,
			Usage: "log level (debug, info, warn, error); defaults to $SQUARENET_LOG_LEVEL",
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "squarenet",
		Usage:   "train a piece and color classifier for chessboard squares",
		Version: version,
		Flags:   trainFlags(),
		Action:  trainAction,
		Commands: []*cli.Command{
			{
				Name:   "train",
				Usage:  "train the classifier and report accuracy every evaluation interval",
				Flags:  trainFlags(),
				Action: trainAction,
			},
			{
				Name:      "synth",
				Usage:     "write a synthetic dataset in the train/<label>/ layout",
				UsageText: "squarenet synth --out DIR [--train N] [--test N]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     synthFlagOut,
						Aliases:  []string{"o"},
						Required: true,
						Usage:    "output `DIR`",
					},
					&cli.IntFlag{
						Name:  synthFlagTrain,
						Value: 1000,
						Usage: "number of training images",
					},
					&cli.IntFlag{
						Name:  synthFlagTest,
						Value: 100,
						Usage: "number of test images (0 to let training hold out a fraction)",
					},
					&cli.IntFlag{
						Name:  synthFlagSize,
						Value: 50,
						Usage: "square side in pixels",
					},
					&cli.StringFlag{
						Name:  synthFlagFormat,
						Value: "png",
						Usage: "image format (png or bmp)",
					},
					&cli.Uint64Flag{
						Name:  flagSeed,
						Value: 1,
						Usage: "generator seed",
					},
				},
				Action: synthAction,
			},
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprintf(c.App.Writer, "squarenet %s\n", version)
					return err
				},
			},
		},
	}
}
