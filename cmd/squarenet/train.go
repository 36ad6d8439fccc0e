package main

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/born-ml/squarenet/internal/autodiff"
	"github.com/born-ml/squarenet/internal/backend/cpu"
	"github.com/born-ml/squarenet/internal/config"
	"github.com/born-ml/squarenet/internal/dataset"
	"github.com/born-ml/squarenet/internal/logging"
	"github.com/born-ml/squarenet/internal/model"
	"github.com/born-ml/squarenet/internal/parallel"
	"github.com/born-ml/squarenet/internal/trainer"
)

// loadConfig layers defaults, the optional config file and explicit flags.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}
	if c.IsSet(flagData) {
		cfg.Data.Dir = c.String(flagData)
	}
	if c.IsSet(flagSynthetic) {
		cfg.Data.Synthetic = c.Int(flagSynthetic)
	}
	if c.IsSet(flagIterations) {
		cfg.Train.Iterations = c.Int(flagIterations)
	}
	if c.IsSet(flagSeed) {
		cfg.Seed = c.Uint64(flagSeed)
	}
	if c.IsSet(flagLogLevel) {
		cfg.LogLevel = c.String(flagLogLevel)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func trainAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger("squarenet", cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		//nolint:errcheck // stderr sync fails on some terminals
		_ = logger.Sync()
	}()

	info := parallel.DetectCPU()
	logger.Infow("cpu",
		"brand", info.Brand,
		"cores", info.LogicalCores,
		"avx2", info.AVX2,
		"fma3", info.FMA3,
	)

	data, err := loadData(c.Context, cfg, logger)
	if err != nil {
		return err
	}

	backend := autodiff.New(cpu.New())
	m, err := model.New(cfg.Model, backend, rand.New(rand.NewPCG(cfg.Seed, 0)))
	if err != nil {
		return err
	}
	logger.Debugf("model:\n%v", m)

	tr, err := trainer.New(cfg.Train, m, backend, data, c.App.Writer, logger)
	if err != nil {
		return err
	}
	summary, err := tr.Run(c.Context)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, summary)
	return err
}

func loadData(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) (*dataset.DataSets, error) {
	if n := cfg.Data.Synthetic; n > 0 {
		logger.Infow("generating synthetic squares", "train", n, "test", max(n/10, 1))
		return dataset.NewSyntheticDataSets(n, max(n/10, 1), cfg.Model.Height, cfg.Model.Width, cfg.Seed)
	}
	return dataset.ReadDataSets(ctx, cfg.DatasetOptions(), logger)
}
