// Package trainer runs the fixed-iteration joint training loop of the
// two-headed model and reports piece and color accuracy as it goes.
package trainer

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/born-ml/squarenet/internal/autodiff"
	"github.com/born-ml/squarenet/internal/dataset"
	"github.com/born-ml/squarenet/internal/model"
	"github.com/born-ml/squarenet/internal/nn"
	"github.com/born-ml/squarenet/internal/optim"
)

// State is the lifecycle stage of a Trainer.
type State int

const (
	// Initialized means Run has not been called.
	Initialized State = iota
	// Training means the loop is running, or was cancelled before completion.
	Training
	// Completed means every iteration ran.
	Completed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Training:
		return "training"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StepLoss holds the loss values of one training step.
type StepLoss struct {
	Piece float32
	Color float32
	Joint float32
}

// Trainer owns one training run of a model over a pair of splits.
//
// The model must have been built on backend, so that its forward pass is
// recorded on backend's tape.
type Trainer struct {
	cfg     Config
	model   *model.Model
	backend autodiff.BackwardCapable
	data    *dataset.DataSets
	opt     optim.Optimizer
	out     io.Writer
	logger  *zap.SugaredLogger

	state       State
	evaluations []Evaluation
}

// New creates a trainer. Progress lines go to out; diagnostics go to logger.
func New(
	cfg Config,
	m *model.Model,
	backend autodiff.BackwardCapable,
	data *dataset.DataSets,
	out io.Writer,
	logger *zap.SugaredLogger,
) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if data == nil || data.Train == nil || data.Test == nil {
		return nil, errors.New("trainer: both train and test splits are required")
	}
	opt, err := optim.New(cfg.Optimizer, m.Parameters(), cfg.LearningRate)
	if err != nil {
		return nil, errors.Wrap(err, "trainer")
	}
	return &Trainer{
		cfg:     cfg,
		model:   m,
		backend: backend,
		data:    data,
		opt:     opt,
		out:     out,
		logger:  logger,
		state:   Initialized,
	}, nil
}

// State returns the current lifecycle stage.
func (t *Trainer) State() State {
	return t.state
}

// Evaluations returns every evaluation recorded so far.
func (t *Trainer) Evaluations() []Evaluation {
	return t.evaluations
}

// Run trains for cfg.Iterations steps. Every EvalEvery iterations, before the
// step, it evaluates the current batch and the whole test split and writes
// the two progress lines.
//
// Cancelling ctx stops the loop between iterations; Run then returns
// ctx.Err() and the trainer stays in the Training state.
func (t *Trainer) Run(ctx context.Context) (Summary, error) {
	if t.state != Initialized {
		return Summary{}, errors.Errorf("trainer: cannot run in state %v", t.state)
	}
	t.state = Training
	t.logger.Infow("training started",
		"iterations", t.cfg.Iterations,
		"batch_size", t.cfg.BatchSize,
		"optimizer", t.cfg.Optimizer,
		"lr", t.opt.GetLR(),
		"parameters", t.model.NumParameters(),
		"train", t.data.Train.Len(),
		"test", t.data.Test.Len(),
	)

	var stepTime, evalTime time.Duration
	start := time.Now()
	for i := 0; i < t.cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			t.logger.Warnw("training cancelled", "step", i, "error", err)
			return Summary{}, err
		}

		batch := t.data.Train.NextBatch(t.cfg.BatchSize)

		if i%t.cfg.EvalEvery == 0 {
			evalStart := time.Now()
			ev, err := t.evaluate(i, batch)
			if err != nil {
				return Summary{}, err
			}
			evalTime += time.Since(evalStart)
			t.evaluations = append(t.evaluations, ev)
			if err := WriteProgress(t.out, ev); err != nil {
				return Summary{}, errors.Wrap(err, "trainer: writing progress")
			}
		}

		stepStart := time.Now()
		loss, err := t.Step(batch)
		if err != nil {
			return Summary{}, errors.Wrapf(err, "trainer: step %d", i)
		}
		stepTime += time.Since(stepStart)

		if i%t.cfg.EvalEvery == 0 {
			t.logger.Debugw("loss",
				"step", i,
				"piece", loss.Piece,
				"color", loss.Color,
				"joint", loss.Joint,
				"epoch", t.data.Train.Epoch(),
			)
		}
	}
	t.state = Completed

	summary, err := NewSummary(t.cfg.Iterations, t.evaluations, time.Since(start))
	if err != nil {
		return Summary{}, err
	}
	t.logger.Infow("training completed",
		"elapsed", summary.Elapsed,
		"step_time", stepTime,
		"eval_time", evalTime,
		"final_test_piece", summary.Final.TestPiece,
		"final_test_color", summary.Final.TestColor,
	)
	return summary, nil
}

// Step runs one training step on batch: a Training-mode forward pass, the
// joint loss, backpropagation through the tape and one optimizer update of
// every parameter.
func (t *Trainer) Step(batch dataset.Batch) (StepLoss, error) {
	tape := t.backend.Tape()
	tape.StartRecording()
	defer func() {
		tape.StopRecording()
		tape.Clear()
	}()

	logits, err := t.model.Forward(batch.Images, nn.Training)
	if err != nil {
		return StepLoss{}, err
	}
	loss, err := t.model.Loss(logits, model.Labels{Piece: batch.PieceLabels, Color: batch.ColorLabels})
	if err != nil {
		return StepLoss{}, err
	}

	grads := autodiff.Backward(loss.Joint, t.backend)
	params := t.model.Parameters()
	nn.CollectGrads(params, grads)
	if t.logger.Desugar().Core().Enabled(zap.DebugLevel) {
		t.logger.Debugw("gradients", "norm", gradNorm(params))
	}
	t.opt.Step(grads)
	t.opt.ZeroGrad()

	return StepLoss{
		Piece: loss.Piece.Item(),
		Color: loss.Color.Item(),
		Joint: loss.Joint.Item(),
	}, nil
}

// gradNorm returns the global L2 norm of the collected parameter gradients.
func gradNorm(params []*nn.Parameter) float64 {
	var sum float64
	for _, p := range params {
		if p.Grad() == nil {
			continue
		}
		for _, g := range p.Grad().Data() {
			sum += float64(g) * float64(g)
		}
	}
	return math.Sqrt(sum)
}
