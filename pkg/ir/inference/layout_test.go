// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package inference

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/pkg/core/indexmap"
	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/gomlx/tensorir/pkg/ir"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

func TestLayoutTransform(t *testing.T) {
	tiling := must.M1(indexmap.Parse("i, j => i, j / 4, j % 4"))
	zero := ir.Some(ir.PrimValue{DType: dtypes.Float32, Value: float32(0)})

	// Exact tiling.
	output, deferred, err := LayoutTransformOp(f32(3, 8), ir.LayoutTransformAttrs{IndexMap: tiling})
	require.NoError(t, err)
	requireShape(t, f32(3, 2, 4), output)
	require.Empty(t, deferred)

	// Padding required.
	_, _, err = LayoutTransformOp(f32(3, 10), ir.LayoutTransformAttrs{IndexMap: tiling})
	require.True(t, ir.IsShapeError(err))
	output, _, err = LayoutTransformOp(f32(3, 10), ir.LayoutTransformAttrs{IndexMap: tiling, PadValue: zero})
	require.NoError(t, err)
	requireShape(t, f32(3, 3, 4), output)

	// Symbolic: padding can't be decided.
	output, deferred, err = LayoutTransformOp(sym(3, "n"), ir.LayoutTransformAttrs{IndexMap: tiling})
	require.NoError(t, err)
	require.Equal(t, "(Float32)[3 ceildiv(n, 4) 4]", output.String())
	require.Len(t, deferred, 1)
	_, deferred, err = LayoutTransformOp(sym(3, "n"), ir.LayoutTransformAttrs{IndexMap: tiling, PadValue: zero})
	require.NoError(t, err)
	require.Empty(t, deferred)

	// Transpose.
	transpose := must.M1(indexmap.Parse("i, j => j, i"))
	output, _, err = LayoutTransformOp(f32(3, 5), ir.LayoutTransformAttrs{IndexMap: transpose})
	require.NoError(t, err)
	requireShape(t, f32(5, 3), output)

	// Rank mismatch, missing map.
	_, _, err = LayoutTransformOp(f32(3, 5, 7), ir.LayoutTransformAttrs{IndexMap: transpose})
	require.True(t, ir.IsShapeError(err))
	_, _, err = LayoutTransformOp(f32(3, 5), ir.LayoutTransformAttrs{})
	require.True(t, ir.IsSchemaError(err))

	// Unknown rank: the number of outputs of the map is known.
	output, _, err = LayoutTransformOp(shapes.MakeUnknownRank(dtypes.Float32), ir.LayoutTransformAttrs{IndexMap: tiling})
	require.NoError(t, err)
	require.Equal(t, 3, output.Rank())

	// Axis separators.
	_, _, err = LayoutTransformOp(f32(3, 8), ir.LayoutTransformAttrs{IndexMap: tiling, AxisSeparators: ir.Some([]int{1, 2})})
	require.NoError(t, err)
	_, _, err = LayoutTransformOp(f32(3, 8), ir.LayoutTransformAttrs{IndexMap: tiling, AxisSeparators: ir.Some([]int{2, 1})})
	require.True(t, ir.IsSchemaError(err))
	_, _, err = LayoutTransformOp(f32(3, 8), ir.LayoutTransformAttrs{IndexMap: tiling, AxisSeparators: ir.Some([]int{3})})
	require.True(t, ir.IsShapeError(err))
	_, _, err = LayoutTransformOp(f32(3, 8), ir.LayoutTransformAttrs{IndexMap: tiling, InputAxisSeparators: ir.Some([]int{0})})
	require.True(t, ir.IsShapeError(err))
}

func TestPhysicalShape(t *testing.T) {
	physical, err := PhysicalShape(f32(2, 3, 4, 5), []int{1, 3})
	require.NoError(t, err)
	requireShape(t, f32(2, 12, 5), physical)

	physical, err = PhysicalShape(f32(2, 3, 4), nil)
	require.NoError(t, err)
	requireShape(t, f32(24), physical)

	physical, err = PhysicalShape(sym("n", 3, 4), []int{2})
	require.NoError(t, err)
	require.Equal(t, "(Float32)[3 * n 4]", physical.String())

	_, err = PhysicalShape(f32(2, 3), []int{2})
	require.True(t, ir.IsShapeError(err))
}
