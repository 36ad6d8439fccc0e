package trainer

import (
	"github.com/born-ml/squarenet/internal/dataset"
	"github.com/born-ml/squarenet/internal/model"
	"github.com/born-ml/squarenet/internal/nn"
)

// Evaluation holds the accuracies measured at one step.
type Evaluation struct {
	Step       int
	TrainPiece float32
	TrainColor float32
	TestPiece  float32
	TestColor  float32
}

// Accuracy is the fraction of correctly classified samples per head.
type Accuracy struct {
	Piece float32
	Color float32
}

// counts of correct predictions per head
type correct struct {
	piece, color, total int
}

func (c correct) accuracy() Accuracy {
	if c.total == 0 {
		return Accuracy{}
	}
	return Accuracy{
		Piece: float32(c.piece) / float32(c.total),
		Color: float32(c.color) / float32(c.total),
	}
}

func (t *Trainer) evaluate(step int, batch dataset.Batch) (Evaluation, error) {
	train, err := t.Evaluate(batch)
	if err != nil {
		return Evaluation{}, err
	}
	test, err := t.EvaluateSplit(t.data.Test)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{
		Step:       step,
		TrainPiece: train.Piece,
		TrainColor: train.Color,
		TestPiece:  test.Piece,
		TestColor:  test.Color,
	}, nil
}

// Evaluate returns the Inference-mode accuracy of both heads on batch.
func (t *Trainer) Evaluate(batch dataset.Batch) (Accuracy, error) {
	c, err := t.count(batch)
	if err != nil {
		return Accuracy{}, err
	}
	return c.accuracy(), nil
}

// EvaluateSplit returns the Inference-mode accuracy over every sample of
// split. Samples are evaluated EvalBatchSize at a time and the counts summed,
// so the result equals a single whole-split evaluation.
func (t *Trainer) EvaluateSplit(split *dataset.Split) (Accuracy, error) {
	var total correct
	for start := 0; start < split.Len(); start += t.cfg.EvalBatchSize {
		end := min(start+t.cfg.EvalBatchSize, split.Len())
		c, err := t.count(split.Slice(start, end))
		if err != nil {
			return Accuracy{}, err
		}
		total.piece += c.piece
		total.color += c.color
		total.total += c.total
	}
	return total.accuracy(), nil
}

func (t *Trainer) count(batch dataset.Batch) (correct, error) {
	var (
		c   correct
		err error
	)
	t.backend.Tape().NoGrad(func() {
		var logits model.Logits
		logits, err = t.model.Forward(batch.Images, nn.Inference)
		if err != nil {
			return
		}
		c = correct{
			piece: nn.Correct(logits.Piece, batch.PieceLabels),
			color: nn.Correct(logits.Color, batch.ColorLabels),
			total: batch.Len(),
		}
	})
	return c, err
}
