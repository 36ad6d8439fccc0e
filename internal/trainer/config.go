package trainer

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/born-ml/squarenet/internal/optim"
)

// Config controls the training loop.
type Config struct {
	// Iterations is the fixed number of optimizer steps.
	Iterations int `yaml:"iterations"`
	// BatchSize is the number of training samples per step.
	BatchSize int `yaml:"batch_size"`
	// EvalEvery is the interval, in iterations, between accuracy reports.
	EvalEvery int `yaml:"eval_every"`
	// EvalBatchSize bounds how many test samples are evaluated at once.
	EvalBatchSize int `yaml:"eval_batch_size"`
	// LearningRate of the optimizer.
	LearningRate float32 `yaml:"learning_rate"`
	// Optimizer is "adam" or "sgd".
	Optimizer string `yaml:"optimizer"`
}

// DefaultConfig returns 20000 Adam steps at 1e-4 on batches of 50,
// evaluating every 100 steps.
func DefaultConfig() Config {
	return Config{
		Iterations:    20000,
		BatchSize:     50,
		EvalEvery:     100,
		EvalBatchSize: 500,
		LearningRate:  1e-4,
		Optimizer:     optim.NameAdam,
	}
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var err error
	if c.Iterations <= 0 {
		err = multierr.Append(err, errors.Errorf("trainer: iterations must be positive, got %d", c.Iterations))
	}
	if c.BatchSize <= 0 {
		err = multierr.Append(err, errors.Errorf("trainer: batch_size must be positive, got %d", c.BatchSize))
	}
	if c.EvalEvery <= 0 {
		err = multierr.Append(err, errors.Errorf("trainer: eval_every must be positive, got %d", c.EvalEvery))
	}
	if c.EvalBatchSize <= 0 {
		err = multierr.Append(err, errors.Errorf("trainer: eval_batch_size must be positive, got %d", c.EvalBatchSize))
	}
	if c.LearningRate <= 0 {
		err = multierr.Append(err, errors.Errorf("trainer: learning_rate must be positive, got %v", c.LearningRate))
	}
	if c.Optimizer != optim.NameAdam && c.Optimizer != optim.NameSGD {
		err = multierr.Append(err, errors.Errorf("trainer: optimizer must be %q or %q, got %q",
			optim.NameAdam, optim.NameSGD, c.Optimizer))
	}
	return err
}
