package model

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/squarenet/internal/dataset"
	"github.com/born-ml/squarenet/internal/nn"
	"github.com/born-ml/squarenet/internal/tensor"
)

// Head is one classification output of the network.
//
// Heads share the trunk features but own disjoint parameters and produce
// disjoint loss terms.
type Head interface {
	// Name identifies the head ("piece" or "color").
	Name() string
	// Classes is the number of logits per sample.
	Classes() int
	// Logits maps [N, Hidden] features to raw scores [N, Classes].
	Logits(features *tensor.Tensor) *tensor.Tensor
	// Loss returns the batch-mean softmax cross-entropy against one-hot labels.
	Loss(logits, labels *tensor.Tensor) (*tensor.Tensor, error)
	// Parameters returns the head's own parameters.
	Parameters() []*nn.Parameter
}

// classifierHead is a dense layer producing raw logits.
type classifierHead struct {
	name    string
	classes int
	fc      *nn.Linear
	backend tensor.Backend
}

func newClassifierHead(name string, hidden, classes int, init nn.InitPolicy, backend tensor.Backend) *classifierHead {
	return &classifierHead{
		name:    name,
		classes: classes,
		fc:      nn.NewLinear(name, hidden, classes, init, backend),
		backend: backend,
	}
}

// NewPieceHead creates the 7-way piece classifier.
func NewPieceHead(hidden int, init nn.InitPolicy, backend tensor.Backend) Head {
	return newClassifierHead("piece", hidden, dataset.PieceClasses, init, backend)
}

// NewColorHead creates the 3-way color classifier.
func NewColorHead(hidden int, init nn.InitPolicy, backend tensor.Backend) Head {
	return newClassifierHead("color", hidden, dataset.ColorClasses, init, backend)
}

func (h *classifierHead) Name() string { return h.name }

func (h *classifierHead) Classes() int { return h.classes }

func (h *classifierHead) Logits(features *tensor.Tensor) *tensor.Tensor {
	return h.fc.Forward(features)
}

func (h *classifierHead) Loss(logits, labels *tensor.Tensor) (*tensor.Tensor, error) {
	if err := tensor.ExpectShape(h.name+" labels", labels.Shape(), tensor.Shape{logits.Shape()[0], h.classes}); err != nil {
		return nil, err
	}
	loss, err := nn.SoftmaxCrossEntropy(h.backend, logits, labels)
	if err != nil {
		return nil, errors.Wrapf(err, "%s head", h.name)
	}
	return loss, nil
}

func (h *classifierHead) Parameters() []*nn.Parameter {
	return h.fc.Parameters()
}

func (h *classifierHead) String() string {
	return fmt.Sprintf("%sHead(%v)", h.name, h.fc)
}
