// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Shape and Dim, the static type information attached to every node
// of the tensor IR.
//
// Shape represents the dtype and dimensions of a tensor, or a tuple of such shapes. The dtype
// comes from github.com/gomlx/gopjrt/dtypes, and dtypes.InvalidDType is used for an element type
// that is not yet known.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a tensor. It may be unknown (see MakeUnknownRank),
//     which is different from a rank-0 scalar.
//   - Axis: the index of a dimension.
//   - Dimension: the size of a tensor along one of its axes. See Dim: it can be static,
//     symbolic or unknown.
//   - Scalar: a shape with rank 0.
//
// Example: `shapes.Make(dtypes.Float32, 2, 3)` is the shape of a 2x3 float32 matrix, printed
// as `(Float32)[2 3]`. `shapes.MakeDims(dtypes.Float32, shapes.Sym("batch"), shapes.D(3))`
// has a symbolic batch axis, printed as `(Float32)[batch 3]`.
package shapes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// UnknownRank is returned by Shape.Rank when the rank is not known.
const UnknownRank = -1

// Shape of a tensor or of a tuple of tensors.
//
// Use Make, MakeDims, MakeUnknownRank or MakeTuple to create a new shape.
// Shapes are values, and all methods return new shapes, never changing the receiver.
type Shape struct {
	DType       dtypes.DType
	Dimensions  []Dim
	TupleShapes []Shape // Shapes of the tuple elements, if this is a tuple.

	unknownRank bool
	tuple       bool
}

// Make returns a Shape with static dimensions. It panics for negative dimensions.
// See MakeDims for symbolic dimensions, and MakeTuple for tuple shapes.
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	return Shape{DType: dtype, Dimensions: Dims(dimensions...)}
}

// MakeDims returns a Shape with the given dimensions, which may be symbolic or unknown.
func MakeDims(dtype dtypes.DType, dimensions ...Dim) Shape {
	return Shape{DType: dtype, Dimensions: slices.Clone(dimensions)}
}

// MakeUnknownRank returns a Shape whose rank is not known.
func MakeUnknownRank(dtype dtypes.DType) Shape {
	return Shape{DType: dtype, unknownRank: true}
}

// MakeUnknownDims returns a Shape with the given rank, but with all dimensions unknown.
// If rank is UnknownRank, it returns MakeUnknownRank(dtype).
func MakeUnknownDims(dtype dtypes.DType, rank int) Shape {
	if rank == UnknownRank {
		return MakeUnknownRank(dtype)
	}
	if rank < 0 {
		exceptions.Panicf("shapes.MakeUnknownDims(%s, %d): invalid rank", dtype, rank)
	}
	return Shape{DType: dtype, Dimensions: make([]Dim, rank)}
}

// MakeTuple returns a shape representing a tuple of elements with the given shapes.
func MakeTuple(elements []Shape) Shape {
	tupleShapes := make([]Shape, len(elements))
	for ii, element := range elements {
		tupleShapes[ii] = element.Clone()
	}
	return Shape{DType: dtypes.InvalidDType, TupleShapes: tupleShapes, tuple: true}
}

// IsTuple returns whether the shape represents a tuple.
func (s Shape) IsTuple() bool { return s.tuple }

// TupleSize returns the number of elements in the tuple, if it is a tuple.
func (s Shape) TupleSize() int { return len(s.TupleShapes) }

// HasKnownRank returns whether the rank of a (non-tuple) shape is known.
func (s Shape) HasKnownRank() bool { return !s.unknownRank && !s.tuple }

// Rank of the shape, that is, the number of dimensions. It returns UnknownRank if it is not known,
// or if the shape is a tuple.
func (s Shape) Rank() int {
	if !s.HasKnownRank() {
		return UnknownRank
	}
	return len(s.Dimensions)
}

// IsScalar returns whether the shape represents a scalar, that is there are no dimensions (rank==0).
func (s Shape) IsScalar() bool { return s.Rank() == 0 }

// HasKnownDType returns whether the element type is known.
func (s Shape) HasKnownDType() bool { return s.DType != dtypes.InvalidDType }

// IsStatic returns whether the rank and all dimensions are statically known.
func (s Shape) IsStatic() bool {
	if !s.HasKnownRank() {
		return false
	}
	for _, dim := range s.Dimensions {
		if !dim.IsStatic() {
			return false
		}
	}
	return true
}

// Dim returns the dimension of the given axis. axis can take negative numbers, in which
// case it counts as starting from the end -- so axis=-1 refers to the last axis.
// Like with a slice indexing, it panics for an out-of-bound axis or if the rank is unknown.
func (s Shape) Dim(axis int) Dim {
	rank := s.Rank()
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += rank
	}
	if rank == UnknownRank || adjustedAxis < 0 || adjustedAxis >= rank {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, rank, s)
	}
	return s.Dimensions[adjustedAxis]
}

// Size returns the number of elements: the product of all dimensions. It is unknown if the rank
// is unknown.
func (s Shape) Size() Dim {
	if !s.HasKnownRank() {
		return Unknown()
	}
	size := D(1)
	for _, dim := range s.Dimensions {
		size = size.Mul(dim)
	}
	return size
}

// WithDType returns a copy of the shape with the dtype changed.
func (s Shape) WithDType(dtype dtypes.DType) Shape {
	s2 := s.Clone()
	s2.DType = dtype
	return s2
}

// Shape returns a shallow copy of itself. It implements the HasShape interface.
func (s Shape) Shape() Shape { return s }

// String implements stringer, pretty-prints the shape.
func (s Shape) String() string {
	if s.tuple {
		parts := make([]string, 0, s.TupleSize())
		for _, element := range s.TupleShapes {
			parts = append(parts, element.String())
		}
		return fmt.Sprintf("Tuple<%s>", strings.Join(parts, ", "))
	}
	dtype := "?"
	if s.HasKnownDType() {
		dtype = s.DType.String()
	}
	if s.unknownRank {
		return fmt.Sprintf("(%s)[...]", dtype)
	}
	if s.Rank() == 0 {
		return fmt.Sprintf("(%s)", dtype)
	}
	return fmt.Sprintf("(%s)%v", dtype, s.Dimensions)
}

// Equal compares two shapes structurally: dtype, rank and dimensions must be identical.
// Symbolic dimensions are only equal if they are the same expression; unknown dimensions are
// equal to each other (structurally, not as values).
func (s Shape) Equal(s2 Shape) bool {
	if s.DType != s2.DType {
		return false
	}
	return s.EqualDimensions(s2)
}

// EqualDimensions compares two shapes for structural equality of dimensions. Dtypes can be different.
func (s Shape) EqualDimensions(s2 Shape) bool {
	if s.tuple != s2.tuple {
		return false
	}
	if s.tuple {
		if s.TupleSize() != s2.TupleSize() {
			return false
		}
		for ii, element := range s.TupleShapes {
			if !element.Equal(s2.TupleShapes[ii]) {
				return false
			}
		}
		return true
	}
	if s.unknownRank != s2.unknownRank || s.Rank() != s2.Rank() {
		return false
	}
	for axis, dim := range s.Dimensions {
		if !dim.Identical(s2.Dimensions[axis]) {
			return false
		}
	}
	return true
}

// CompareDimensions returns Yes if both shapes have provably the same dimensions, No if they
// provably differ (in rank or in some static dimension) and Maybe otherwise.
func (s Shape) CompareDimensions(s2 Shape) Tribool {
	if !s.HasKnownRank() || !s2.HasKnownRank() {
		return Maybe
	}
	if s.Rank() != s2.Rank() {
		return No
	}
	result := Yes
	for axis, dim := range s.Dimensions {
		result = result.And(dim.Compare(s2.Dimensions[axis]))
	}
	return result
}

// Clone returns a new deep copy of the shape.
func (s Shape) Clone() (s2 Shape) {
	s2.DType = s.DType
	s2.unknownRank = s.unknownRank
	s2.tuple = s.tuple
	s2.Dimensions = slices.Clone(s.Dimensions)
	if s.TupleSize() > 0 {
		s2.TupleShapes = make([]Shape, 0, len(s.TupleShapes))
		for _, subShape := range s.TupleShapes {
			s2.TupleShapes = append(s2.TupleShapes, subShape.Clone())
		}
	}
	return
}

// ConcatenateDimensions of two shapes. The resulting rank is the sum of both ranks, and the dtype is
// taken from s1. If any of the ranks is unknown, the result has unknown rank.
// It doesn't work for tuples.
func ConcatenateDimensions(s1, s2 Shape) (shape Shape) {
	if s1.tuple || s2.tuple {
		exceptions.Panicf("shapes.ConcatenateDimensions(%s, %s): tuples not supported", s1, s2)
	}
	if !s1.HasKnownRank() || !s2.HasKnownRank() {
		return MakeUnknownRank(s1.DType)
	}
	shape.DType = s1.DType
	shape.Dimensions = make([]Dim, 0, s1.Rank()+s2.Rank())
	shape.Dimensions = append(shape.Dimensions, s1.Dimensions...)
	shape.Dimensions = append(shape.Dimensions, s2.Dimensions...)
	return
}
