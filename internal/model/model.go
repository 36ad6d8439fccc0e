// Package model implements the two-headed chess-square classifier.
//
// A shared convolutional trunk turns a [N, 50, 50, 3] image batch into
// [N, 1024] features; a piece head and a color head map those features to
// 7 and 3 raw logits. Training minimises the sum of both heads'
// cross-entropies.
package model

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/born-ml/squarenet/internal/nn"
	"github.com/born-ml/squarenet/internal/tensor"
)

// Logits holds the raw scores of both heads.
type Logits struct {
	Piece *tensor.Tensor // [N, 7]
	Color *tensor.Tensor // [N, 3]
}

// Labels holds one-hot targets for both heads.
type Labels struct {
	Piece *tensor.Tensor // [N, 7]
	Color *tensor.Tensor // [N, 3]
}

// Loss holds the per-head losses and their sum. Each is a single-element tensor.
type Loss struct {
	Piece *tensor.Tensor
	Color *tensor.Tensor
	Joint *tensor.Tensor
}

// Model owns the trunk, the two heads and every parameter.
type Model struct {
	arch    Architecture
	backend tensor.Backend
	trunk   *Trunk
	piece   Head
	color   Head
}

// New builds a model with freshly initialised parameters: weights from a
// truncated normal with stddev 0.1, biases at 0.1. rng seeds both the
// initialisation and the dropout masks.
func New(arch Architecture, backend tensor.Backend, rng *rand.Rand) (*Model, error) {
	if err := arch.Validate(); err != nil {
		return nil, err
	}
	init := nn.DefaultInit(rng)
	return &Model{
		arch:    arch,
		backend: backend,
		trunk:   newTrunk(arch, init, rng, backend),
		piece:   NewPieceHead(arch.Hidden, init, backend),
		color:   NewColorHead(arch.Hidden, init, backend),
	}, nil
}

// Forward runs the network on images [N, H, W, C]. A batch of any other
// shape fails with a *tensor.ShapeError before any computation.
func (m *Model) Forward(images *tensor.Tensor, mode nn.Mode) (Logits, error) {
	if err := tensor.ExpectShape("model", images.Shape(), m.arch.InputShape()); err != nil {
		return Logits{}, err
	}
	features := m.trunk.Forward(images, mode)
	return Logits{
		Piece: m.piece.Logits(features),
		Color: m.color.Logits(features),
	}, nil
}

// Loss computes both head losses and the joint loss piece + color.
func (m *Model) Loss(logits Logits, labels Labels) (Loss, error) {
	piece, err := m.piece.Loss(logits.Piece, labels.Piece)
	if err != nil {
		return Loss{}, err
	}
	color, err := m.color.Loss(logits.Color, labels.Color)
	if err != nil {
		return Loss{}, err
	}
	return Loss{
		Piece: piece,
		Color: color,
		Joint: m.backend.Add(piece, color),
	}, nil
}

// Parameters returns every trainable parameter: trunk first, then the heads.
func (m *Model) Parameters() []*nn.Parameter {
	params := m.trunk.Parameters()
	params = append(params, m.piece.Parameters()...)
	return append(params, m.color.Parameters()...)
}

// Heads returns the piece and color heads.
func (m *Model) Heads() []Head {
	return []Head{m.piece, m.color}
}

// Architecture returns the sizes the model was built with.
func (m *Model) Architecture() Architecture {
	return m.arch
}

// NumParameters returns the number of trainable scalars.
func (m *Model) NumParameters() int {
	return nn.CountParameters(m.Parameters())
}

// String describes the network.
func (m *Model) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Model(input=%v, flat=%d, params=%d)\n", m.arch.InputShape(), m.arch.FlatFeatures(), m.NumParameters())
	b.WriteString(m.trunk.String())
	for _, h := range m.Heads() {
		fmt.Fprintf(&b, "\n%v", h)
	}
	return b.String()
}
