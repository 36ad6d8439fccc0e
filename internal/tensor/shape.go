package tensor

import (
	"fmt"
	"strings"
)

// Any matches every size of a dimension in ExpectShape.
const Any = -1

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// String formats the shape as (d0,d1,...).
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		if d == Any {
			parts[i] = "N"
			continue
		}
		parts[i] = fmt.Sprint(d)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// ShapeError reports a tensor whose shape does not match what an operation expects.
type ShapeError struct {
	Op   string
	Want Shape
	Got  Shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: expected shape %v, got %v", e.Op, e.Want, e.Got)
}

// ExpectShape returns a *ShapeError when got does not match want.
// Dimensions of want set to Any match every size.
func ExpectShape(op string, got, want Shape) error {
	if len(got) != len(want) {
		return &ShapeError{Op: op, Want: want.Clone(), Got: got.Clone()}
	}
	for i := range want {
		if want[i] != Any && want[i] != got[i] {
			return &ShapeError{Op: op, Want: want.Clone(), Got: got.Clone()}
		}
	}
	return nil
}

// Padding selects how windowed operations (convolution, pooling) treat borders.
type Padding int

const (
	// Valid only places windows that fit entirely inside the input.
	Valid Padding = iota
	// Same pads the input so that out = ceil(in / stride). When the total padding
	// is odd the extra row/column goes after the input.
	Same
)

// String returns the conventional upper-case name.
func (p Padding) String() string {
	switch p {
	case Valid:
		return "VALID"
	case Same:
		return "SAME"
	default:
		return "UNKNOWN"
	}
}

// Window computes the output size of a sliding window along one spatial axis and
// the number of padding cells placed before the input.
//
// Examples for a 2-wide window with stride 2 and Same padding:
//
//	50 -> 25 (no padding)
//	25 -> 13 (one padding cell after the input)
func (p Padding) Window(in, window, stride int) (out, before int) {
	switch p {
	case Same:
		out = (in + stride - 1) / stride
		total := (out-1)*stride + window - in
		if total < 0 {
			total = 0
		}
		return out, total / 2
	default:
		return (in-window)/stride + 1, 0
	}
}
