// Package config assembles the run configuration of squarenet from
// defaults, an optional YAML file and command-line overrides.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/squarenet/internal/dataset"
	"github.com/born-ml/squarenet/internal/logging"
	"github.com/born-ml/squarenet/internal/model"
	"github.com/born-ml/squarenet/internal/trainer"
)

// Data selects where training samples come from.
type Data struct {
	// Dir is the dataset root holding train/ and optionally test/.
	Dir string `yaml:"dir"`
	// TestFraction of train/ is held out when test/ is absent.
	TestFraction float64 `yaml:"test_fraction"`
	// Workers bounds concurrent image decoding.
	Workers int `yaml:"workers"`
	// Synthetic, when positive, replaces Dir with that many generated
	// training squares (plus a tenth as many test squares).
	Synthetic int `yaml:"synthetic"`
}

// Config is the complete run configuration.
type Config struct {
	Seed     uint64             `yaml:"seed"`
	LogLevel string             `yaml:"log_level"`
	Data     Data               `yaml:"data"`
	Model    model.Architecture `yaml:"model"`
	Train    trainer.Config     `yaml:"train"`
}

// Default returns the configuration of the reference training run.
func Default() Config {
	opts := dataset.DefaultOptions("./data")
	return Config{
		Seed: opts.Seed,
		Data: Data{
			Dir:          opts.Dir,
			TestFraction: opts.TestFraction,
			Workers:      opts.Workers,
		},
		Model: model.DefaultArchitecture(),
		Train: trainer.DefaultConfig(),
	}
}

// Load reads a YAML file over the defaults. Fields absent from the file keep
// their default values; unknown fields are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "reading config")
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var err error
	if c.Data.Synthetic < 0 {
		err = multierr.Append(err, errors.Errorf("data: synthetic must not be negative, got %d", c.Data.Synthetic))
	}
	if c.Data.Synthetic == 0 && c.Data.Dir == "" {
		err = multierr.Append(err, errors.New("data: dir is required unless synthetic is set"))
	}
	if c.Data.TestFraction < 0 || c.Data.TestFraction >= 1 {
		err = multierr.Append(err, errors.Errorf("data: test_fraction must be in [0, 1), got %v", c.Data.TestFraction))
	}
	if c.Data.Workers <= 0 {
		err = multierr.Append(err, errors.Errorf("data: workers must be positive, got %d", c.Data.Workers))
	}
	if c.Model.Channels != dataset.Channels {
		err = multierr.Append(err, errors.Errorf("model: channels must be %d (RGB), got %d", dataset.Channels, c.Model.Channels))
	}
	if _, lerr := logging.ParseLevel(c.LogLevel); lerr != nil {
		err = multierr.Append(err, lerr)
	}
	err = multierr.Append(err, c.Model.Validate())
	return multierr.Append(err, c.Train.Validate())
}

// DatasetOptions converts the data section into loader options.
func (c Config) DatasetOptions() dataset.Options {
	opts := dataset.DefaultOptions(c.Data.Dir)
	opts.Height = c.Model.Height
	opts.Width = c.Model.Width
	opts.TestFraction = c.Data.TestFraction
	opts.Workers = c.Data.Workers
	opts.Seed = c.Seed
	return opts
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling config")
	}
	return out, nil
}
