// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the dense float32 tensor used by squarenet.
//
// Image batches are NHWC [N, H, W, C] and convolution kernels are HWIO
// [kH, kW, in, out].
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(x.ArgmaxRows()) // [1 1]
package tensor

import (
	"github.com/born-ml/squarenet/internal/tensor"
)

// Tensor is a dense, row-major float32 tensor.
type Tensor = tensor.Tensor

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// Backend is the set of kernels a compute backend provides.
type Backend = tensor.Backend

// ShapeError reports a tensor whose shape does not match what an operation expects.
type ShapeError = tensor.ShapeError

// Padding selects how convolution and pooling windows treat borders.
type Padding = tensor.Padding

// Padding modes.
const (
	Valid = tensor.Valid
	Same  = tensor.Same
)

// Any matches every size of a dimension in ExpectShape.
const Any = tensor.Any

// New allocates a zero-filled tensor.
func New(shape Shape) (*Tensor, error) {
	return tensor.New(shape)
}

// Zeros allocates a zero-filled tensor and panics on an invalid shape.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Full allocates a tensor with every element set to value.
func Full(shape Shape, value float32) *Tensor {
	return tensor.Full(shape, value)
}

// FromSlice copies data into a new tensor of the given shape.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// ExpectShape returns a *ShapeError when got does not match want.
func ExpectShape(op string, got, want Shape) error {
	return tensor.ExpectShape(op, got, want)
}
