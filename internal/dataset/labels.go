// Package dataset provides the chess-square dataset: labels, one-hot encoding,
// shuffled batching, a directory loader and a synthetic generator.
package dataset

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/squarenet/internal/tensor"
)

// Piece is the piece type on a square. Empty is the sentinel for a square
// without a piece.
type Piece int

// Piece classes, in one-hot index order.
const (
	Pawn Piece = iota
	Knight
	Bishop
	Rook
	Queen
	King
	Empty
)

// PieceClasses is the length of a piece one-hot vector.
const PieceClasses = 7

var pieceNames = [PieceClasses]string{"pawn", "knight", "bishop", "rook", "queen", "king", "empty"}

func (p Piece) String() string {
	if p < 0 || int(p) >= PieceClasses {
		return fmt.Sprintf("Piece(%d)", int(p))
	}
	return pieceNames[p]
}

// Color is the color of the piece on a square. None marks an empty square.
type Color int

// Color classes, in one-hot index order.
const (
	White Color = iota
	Black
	None
)

// ColorClasses is the length of a color one-hot vector.
const ColorClasses = 3

var colorNames = [ColorClasses]string{"white", "black", "none"}

func (c Color) String() string {
	if c < 0 || int(c) >= ColorClasses {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	return colorNames[c]
}

// Label is the joint piece/color annotation of one square.
type Label struct {
	Piece Piece
	Color Color
}

// EmptySquare is the label of a square without a piece.
var EmptySquare = Label{Piece: Empty, Color: None}

// Valid reports whether both classes are in range and a square is empty
// exactly when it has no color.
func (l Label) Valid() error {
	if l.Piece < 0 || int(l.Piece) >= PieceClasses {
		return errors.Errorf("piece class %d out of range", int(l.Piece))
	}
	if l.Color < 0 || int(l.Color) >= ColorClasses {
		return errors.Errorf("color class %d out of range", int(l.Color))
	}
	if (l.Piece == Empty) != (l.Color == None) {
		return errors.Errorf("inconsistent label %s/%s: empty squares and only empty squares have no color",
			l.Color, l.Piece)
	}
	return nil
}

// String returns the directory name of the label: "empty" or "<color>_<piece>".
func (l Label) String() string {
	if l.Piece == Empty && l.Color == None {
		return "empty"
	}
	return l.Color.String() + "_" + l.Piece.String()
}

// ParseLabel parses "empty" or "<color>_<piece>" (e.g. "white_knight").
func ParseLabel(s string) (Label, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "empty" {
		return EmptySquare, nil
	}
	colorName, pieceName, ok := strings.Cut(name, "_")
	if !ok {
		return Label{}, errors.Errorf("label %q: want \"empty\" or \"<color>_<piece>\"", s)
	}
	color, ok := lookup(colorNames[:], colorName)
	if !ok {
		return Label{}, errors.Errorf("label %q: unknown color %q", s, colorName)
	}
	piece, ok := lookup(pieceNames[:], pieceName)
	if !ok {
		return Label{}, errors.Errorf("label %q: unknown piece %q", s, pieceName)
	}
	if Color(color) == None || Piece(piece) == Empty {
		return Label{}, errors.Errorf("label %q: empty squares are spelled \"empty\"", s)
	}
	l := Label{Piece: Piece(piece), Color: Color(color)}
	if err := l.Valid(); err != nil {
		return Label{}, errors.Wrapf(err, "label %q", s)
	}
	return l, nil
}

func lookup(names []string, name string) (int, bool) {
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// AllLabels lists the 13 valid labels: every color/piece pair plus the empty square.
func AllLabels() []Label {
	labels := make([]Label, 0, 2*(PieceClasses-1)+1)
	for _, c := range []Color{White, Black} {
		for p := Pawn; p <= King; p++ {
			labels = append(labels, Label{Piece: p, Color: c})
		}
	}
	return append(labels, EmptySquare)
}

// OneHotLabels encodes the piece and color labels of samples as [N,7] and [N,3].
func OneHotLabels(labels []Label) (pieces, colors *tensor.Tensor) {
	n := len(labels)
	pieces = tensor.Zeros(tensor.Shape{n, PieceClasses})
	colors = tensor.Zeros(tensor.Shape{n, ColorClasses})
	for i, l := range labels {
		pieces.Row(i)[l.Piece] = 1
		colors.Row(i)[l.Color] = 1
	}
	return pieces, colors
}
