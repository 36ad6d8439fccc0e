package trainer

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// WriteProgress writes the two accuracy lines of one evaluation:
//
//	step 100 accuracy: train p 0.42, train c 0.61
//	                  test  p 0.40, test  c 0.58
func WriteProgress(w io.Writer, ev Evaluation) error {
	_, err := fmt.Fprintf(w, "step %d accuracy: train p %.2f, train c %.2f\n"+
		"                  test  p %.2f, test  c %.2f\n",
		ev.Step, ev.TrainPiece, ev.TrainColor, ev.TestPiece, ev.TestColor)
	return err
}

// HeadStats summarises the test accuracy of one head over a run.
type HeadStats struct {
	Final float64
	Best  float64
	Mean  float64
}

// Summary describes a completed run.
type Summary struct {
	Iterations  int
	Evaluations int
	Elapsed     time.Duration
	Final       Evaluation
	Piece       HeadStats
	Color       HeadStats
}

// NewSummary aggregates the evaluations of a run.
func NewSummary(iterations int, evaluations []Evaluation, elapsed time.Duration) (Summary, error) {
	if len(evaluations) == 0 {
		return Summary{}, errors.New("trainer: no evaluations to summarise")
	}
	piece := make(stats.Float64Data, len(evaluations))
	color := make(stats.Float64Data, len(evaluations))
	for i, ev := range evaluations {
		piece[i] = float64(ev.TestPiece)
		color[i] = float64(ev.TestColor)
	}
	pieceStats, err := headStats(piece)
	if err != nil {
		return Summary{}, errors.Wrap(err, "piece accuracy")
	}
	colorStats, err := headStats(color)
	if err != nil {
		return Summary{}, errors.Wrap(err, "color accuracy")
	}
	return Summary{
		Iterations:  iterations,
		Evaluations: len(evaluations),
		Elapsed:     elapsed,
		Final:       evaluations[len(evaluations)-1],
		Piece:       pieceStats,
		Color:       colorStats,
	}, nil
}

func headStats(data stats.Float64Data) (HeadStats, error) {
	best, err := data.Max()
	if err != nil {
		return HeadStats{}, err
	}
	mean, err := data.Mean()
	if err != nil {
		return HeadStats{}, err
	}
	return HeadStats{Final: data[len(data)-1], Best: best, Mean: mean}, nil
}

// String renders the run totals followed by a table of test accuracies.
func (s Summary) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Head", "Final", "Best", "Mean"})
	for _, row := range []struct {
		name string
		h    HeadStats
	}{
		{"piece", s.Piece},
		{"color", s.Color},
	} {
		t.AppendRow(table.Row{
			row.name,
			fmt.Sprintf("%.4f", row.h.Final),
			fmt.Sprintf("%.4f", row.h.Best),
			fmt.Sprintf("%.4f", row.h.Mean),
		})
	}
	return fmt.Sprintf("%d iterations, %d evaluations in %v\n%s",
		s.Iterations, s.Evaluations, s.Elapsed.Round(time.Millisecond), t.Render())
}
