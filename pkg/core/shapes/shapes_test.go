// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"testing"

	. "github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	shape0 := Make(Float64)
	require.True(t, shape0.IsScalar())
	require.False(t, shape0.IsTuple())
	require.Equal(t, 0, shape0.Rank())
	require.Len(t, shape0.Dimensions, 0)
	require.True(t, shape0.Size().IsValue(1))
	require.Equal(t, "(Float64)", shape0.String())

	shape1 := Make(Float32, 4, 3, 2)
	require.False(t, shape1.IsScalar())
	require.Equal(t, 3, shape1.Rank())
	require.True(t, shape1.IsStatic())
	require.True(t, shape1.Size().IsValue(4*3*2))
	require.Equal(t, "(Float32)[4 3 2]", shape1.String())

	shape2 := MakeDims(Int64, Sym("batch"), D(3), Unknown())
	require.False(t, shape2.IsStatic())
	require.Equal(t, "(Int64)[batch 3 ?]", shape2.String())
	require.True(t, shape2.Size().IsUnknown())

	require.Panics(t, func() { _ = Make(Float32, 2, -1) })
}

func TestUnknownRank(t *testing.T) {
	s := MakeUnknownRank(Float32)
	require.False(t, s.HasKnownRank())
	require.Equal(t, UnknownRank, s.Rank())
	require.False(t, s.IsScalar())
	require.False(t, s.IsStatic())
	require.True(t, s.Size().IsUnknown())
	require.Equal(t, "(Float32)[...]", s.String())
	require.False(t, s.Equal(Make(Float32)))
	require.True(t, s.Equal(MakeUnknownRank(Float32)))
	require.Equal(t, Maybe, s.CompareDimensions(Make(Float32, 2)))

	unknownDType := MakeUnknownDims(InvalidDType, 2)
	require.False(t, unknownDType.HasKnownDType())
	require.Equal(t, "(?)[? ?]", unknownDType.String())
	require.True(t, MakeUnknownDims(Float32, UnknownRank).Equal(s))
}

func TestDimAccess(t *testing.T) {
	shape := Make(Float32, 4, 3, 2)
	require.True(t, shape.Dim(0).IsValue(4))
	require.True(t, shape.Dim(-1).IsValue(2))
	require.True(t, shape.Dim(-3).IsValue(4))
	require.Panics(t, func() { _ = shape.Dim(3) })
	require.Panics(t, func() { _ = shape.Dim(-4) })
	require.Panics(t, func() { _ = MakeUnknownRank(Float32).Dim(0) })
}

func TestTuple(t *testing.T) {
	elements := []Shape{Make(Float32, 2), Make(Int32, 3, 4)}
	tuple := MakeTuple(elements)
	require.True(t, tuple.IsTuple())
	require.Equal(t, 2, tuple.TupleSize())
	require.Equal(t, UnknownRank, tuple.Rank())
	require.Equal(t, "Tuple<(Float32)[2], (Int32)[3 4]>", tuple.String())

	// MakeTuple copies its elements.
	elements[0].Dimensions[0] = D(7)
	require.True(t, tuple.TupleShapes[0].Dim(0).IsValue(2))

	require.True(t, MakeTuple(nil).IsTuple())
	require.False(t, MakeTuple(nil).Equal(Make(InvalidDType)))
}

func TestEqualAndCompare(t *testing.T) {
	n := Sym("n")
	a := MakeDims(Float32, n, D(3))
	require.True(t, a.Equal(MakeDims(Float32, Sym("n"), D(3))))
	require.False(t, a.Equal(MakeDims(Float32, Sym("m"), D(3))))
	require.False(t, a.Equal(a.WithDType(Int32)))
	require.True(t, a.EqualDimensions(a.WithDType(Int32)))

	require.Equal(t, Yes, a.CompareDimensions(MakeDims(Int8, n, D(3))))
	require.Equal(t, Maybe, a.CompareDimensions(Make(Float32, 5, 3)))
	require.Equal(t, No, a.CompareDimensions(Make(Float32, 5, 4)))
	require.Equal(t, No, a.CompareDimensions(Make(Float32, 3)))
}

func TestClone(t *testing.T) {
	original := MakeTuple([]Shape{Make(Float32, 2, 3)})
	clone := original.Clone()
	require.True(t, original.Equal(clone))
	clone.TupleShapes[0].Dimensions[0] = D(9)
	require.True(t, original.TupleShapes[0].Dim(0).IsValue(2))
}

func TestConcatenateDimensions(t *testing.T) {
	s := ConcatenateDimensions(Make(Float32, 2), MakeDims(Float32, Sym("n"), D(3)))
	require.Equal(t, "(Float32)[2 n 3]", s.String())
	require.False(t, ConcatenateDimensions(Make(Float32, 2), MakeUnknownRank(Float32)).HasKnownRank())
	require.Panics(t, func() { _ = ConcatenateDimensions(MakeTuple(nil), Make(Float32)) })
}
