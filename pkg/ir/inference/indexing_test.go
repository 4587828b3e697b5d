// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package inference

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/gomlx/tensorir/pkg/ir"
	"github.com/stretchr/testify/require"
)

func i64(dims ...int) shapes.Shape { return shapes.Make(dtypes.Int64, dims...) }

func TestGatherElements(t *testing.T) {
	output, deferred, err := GatherElementsOp(f32(4, 5), i64(4, 2), 1)
	require.NoError(t, err)
	requireShape(t, f32(4, 2), output)
	require.Len(t, deferred, 1)
	require.Contains(t, deferred[0].Description, "bounds")

	_, _, err = GatherElementsOp(f32(4, 5), i64(4), 0)
	require.True(t, ir.IsShapeError(err))
	_, _, err = GatherElementsOp(f32(4, 5), i64(3, 2), 1)
	require.True(t, ir.IsShapeError(err))
	_, _, err = GatherElementsOp(f32(4, 5), i64(4, 2), 2)
	require.True(t, ir.IsShapeError(err))

	output, _, err = GatherElementsOp(shapes.MakeUnknownRank(dtypes.Float32), i64(4, 2), 0)
	require.NoError(t, err)
	requireShape(t, f32(4, 2), output)
	// Different symbols on the non-gathered axis are checked at runtime.
	output, deferred, err = GatherElementsOp(sym("n", 5), sym("m", 2).WithDType(dtypes.Int64), 1)
	require.NoError(t, err)
	requireShape(t, sym("m", 2), output)
	require.Len(t, deferred, 2)
	require.Equal(t, "gather_elements", deferred[1].Op)
	require.Contains(t, deferred[1].Description, "dimensions n and m must be equal")
}

func TestGatherND(t *testing.T) {
	output, deferred, err := GatherNDOp(f32(4, 5, 6), i64(3, 2), 0)
	require.NoError(t, err)
	requireShape(t, f32(3, 6), output)
	require.Len(t, deferred, 1)

	output, _, err = GatherNDOp(f32(4, 5, 6), i64(3, 3), 0)
	require.NoError(t, err)
	requireShape(t, f32(3), output)

	// Batch dims.
	output, _, err = GatherNDOp(f32(2, 5, 6), i64(2, 7, 1), 1)
	require.NoError(t, err)
	requireShape(t, f32(2, 7, 6), output)
	_, _, err = GatherNDOp(f32(2, 5, 6), i64(3, 7, 1), 1)
	require.True(t, ir.IsShapeError(err))
	output, deferred, err = GatherNDOp(sym("b", 5, 6), sym("c", 7, 1).WithDType(dtypes.Int64), 1)
	require.NoError(t, err)
	require.Equal(t, "(Float32)[? 7 6]", output.String())
	require.Len(t, deferred, 2)
	require.Contains(t, deferred[1].Description, "batch axis 0: dimensions b and c must be equal")

	// Errors.
	_, _, err = GatherNDOp(f32(4, 5, 6), i64(3, 4), 0)
	require.True(t, ir.IsShapeError(err))
	_, _, err = GatherNDOp(f32(4, 5, 6), i64(3, 2), -1)
	require.True(t, ir.IsSchemaError(err))
	_, _, err = GatherNDOp(f32(4, 5, 6), i64(), 0)
	require.True(t, ir.IsShapeError(err))
	_, _, err = GatherNDOp(f32(4, 5, 6), i64(3, 2), 2)
	require.True(t, ir.IsShapeError(err))

	// Symbolic number of indexed axes: rank can't be known.
	output, _, err = GatherNDOp(f32(4, 5, 6), sym("n", "k").WithDType(dtypes.Int64), 0)
	require.NoError(t, err)
	require.False(t, output.HasKnownRank())

	// Symbolic dimensions pass through.
	output, _, err = GatherNDOp(sym("n", 5), sym("m", 1).WithDType(dtypes.Int32), 0)
	require.NoError(t, err)
	requireShape(t, sym("m", 5), output)
}

func TestIndexTensor(t *testing.T) {
	output, deferred, err := IndexTensorOp(f32(5, 6, 7), []shapes.Shape{i64(3), i64(3)})
	require.NoError(t, err)
	requireShape(t, f32(3, 7), output)
	require.Len(t, deferred, 1)

	// Index tensors are broadcast together.
	output, _, err = IndexTensorOp(f32(5, 6, 7), []shapes.Shape{i64(4, 1), i64(3)})
	require.NoError(t, err)
	requireShape(t, f32(4, 3, 7), output)

	_, _, err = IndexTensorOp(f32(5, 6, 7), []shapes.Shape{i64(4), i64(3)})
	require.True(t, ir.IsShapeError(err))
	_, _, err = IndexTensorOp(f32(5), []shapes.Shape{i64(4), i64(4)})
	require.True(t, ir.IsShapeError(err))
	_, _, err = IndexTensorOp(f32(5), nil)
	require.True(t, ir.IsSchemaError(err))

	// Symbolic dimensions that may or may not broadcast.
	output, deferred, err = IndexTensorOp(f32(5, 6), []shapes.Shape{sym("n").WithDType(dtypes.Int64), i64(3)})
	require.NoError(t, err)
	requireShape(t, f32(3), output)
	require.Len(t, deferred, 2)

	// Two unknown dimensions may still differ at runtime.
	unknownIndices := shapes.MakeDims(dtypes.Int64, shapes.Unknown())
	output, deferred, err = IndexTensorOp(f32(5, 6, 7), []shapes.Shape{unknownIndices, unknownIndices})
	require.NoError(t, err)
	require.Equal(t, "(Float32)[? 7]", output.String())
	require.Len(t, deferred, 2)
	require.Equal(t, "index tensors must be broadcastable", deferred[1].Description)

	// A single unknown index tensor has nothing to be broadcast with.
	_, deferred, err = IndexTensorOp(f32(5, 6, 7), []shapes.Shape{unknownIndices})
	require.NoError(t, err)
	require.Len(t, deferred, 1)
}

func TestIndexPut(t *testing.T) {
	output, deferred, err := IndexPutOp(f32(5, 6), []shapes.Shape{i64(3)}, f32(6))
	require.NoError(t, err)
	requireShape(t, f32(5, 6), output)
	require.Len(t, deferred, 1)

	_, _, err = IndexPutOp(f32(5, 6), []shapes.Shape{i64(3)}, f32(1))
	require.NoError(t, err)
	_, _, err = IndexPutOp(f32(5, 6), []shapes.Shape{i64(3)}, f32(4))
	require.True(t, ir.IsShapeError(err))
	_, _, err = IndexPutOp(f32(5, 6), []shapes.Shape{i64(3)}, f32(2, 3, 6))
	require.True(t, ir.IsShapeError(err))
	_, _, err = IndexPutOp(f32(5, 6), []shapes.Shape{i64(3)}, shapes.Make(dtypes.Float64, 6))
	require.True(t, ir.IsShapeError(err))
}

func TestMeshgrid(t *testing.T) {
	output, err := MeshgridOp([]shapes.Shape{f32(2), f32(3), f32(4)}, ir.IndexingIJ)
	require.NoError(t, err)
	require.Equal(t, 3, output.TupleSize())
	for _, grid := range output.TupleShapes {
		requireShape(t, f32(2, 3, 4), grid)
	}

	output, err = MeshgridOp([]shapes.Shape{f32(2), f32(3), f32(4)}, ir.IndexingXY)
	require.NoError(t, err)
	requireShape(t, f32(3, 2, 4), output.TupleShapes[1])

	// Scalars count as size 1.
	output, err = MeshgridOp([]shapes.Shape{f32(), f32(3)}, ir.IndexingIJ)
	require.NoError(t, err)
	requireShape(t, f32(1, 3), output.TupleShapes[0])

	_, err = MeshgridOp([]shapes.Shape{f32(2, 2)}, ir.IndexingIJ)
	require.True(t, ir.IsShapeError(err))
	_, err = MeshgridOp([]shapes.Shape{f32(2)}, "ji")
	require.True(t, ir.IsSchemaError(err))
	_, err = MeshgridOp(nil, ir.IndexingIJ)
	require.True(t, ir.IsSchemaError(err))
}

func TestScatterElements(t *testing.T) {
	output, deferred, err := ScatterElementsOp(f32(4, 5), i64(2, 5), f32(2, 5), 0, ir.ReductionAdd)
	require.NoError(t, err)
	requireShape(t, f32(4, 5), output)
	require.Len(t, deferred, 1)

	output, _, err = ScatterElementsOp(f32(4, 5), i64(2, 5), f32(2, 5), 0, ir.ReductionMean)
	require.NoError(t, err)
	requireShape(t, f32(4, 5), output)

	_, _, err = ScatterElementsOp(f32(4, 5), i64(2, 5), f32(2, 5), 0, "xor")
	require.True(t, ir.IsSchemaError(err))
	_, _, err = ScatterElementsOp(f32(4, 5), i64(2, 5), f32(2, 4), 0, ir.ReductionUpdate)
	require.True(t, ir.IsShapeError(err))
	_, _, err = ScatterElementsOp(f32(4, 5), i64(2), f32(2), 0, ir.ReductionUpdate)
	require.True(t, ir.IsShapeError(err))
	_, _, err = ScatterElementsOp(f32(4, 5), i64(2, 5), f32(2, 5), 2, ir.ReductionUpdate)
	require.True(t, ir.IsShapeError(err))
	_, _, err = ScatterElementsOp(f32(4, 5), i64(2, 5), shapes.Make(dtypes.Int32, 2, 5), 0, ir.ReductionUpdate)
	require.True(t, ir.IsShapeError(err))

	// indices and updates with different symbolic dimensions.
	output, deferred, err = ScatterElementsOp(f32(4, 5), sym("n", 5).WithDType(dtypes.Int64), sym("m", 5), 0, ir.ReductionUpdate)
	require.NoError(t, err)
	requireShape(t, f32(4, 5), output)
	require.Len(t, deferred, 2)
	require.Equal(t, "scatter_elements", deferred[1].Op)
	require.Contains(t, deferred[1].Description, "dimensions n and m must be equal")
}

func TestScatterND(t *testing.T) {
	output, deferred, err := ScatterNDOp(f32(4, 5, 6), i64(3, 2), f32(3, 6), ir.ReductionUpdate)
	require.NoError(t, err)
	requireShape(t, f32(4, 5, 6), output)
	require.Len(t, deferred, 1)

	_, _, err = ScatterNDOp(f32(4, 5, 6), i64(3, 2), f32(3, 5), ir.ReductionUpdate)
	require.True(t, ir.IsShapeError(err))
	_, _, err = ScatterNDOp(f32(4, 5, 6), i64(3, 2), f32(3), ir.ReductionUpdate)
	require.True(t, ir.IsShapeError(err))
	_, _, err = ScatterNDOp(f32(4, 5, 6), i64(3, 4), f32(3), ir.ReductionUpdate)
	require.True(t, ir.IsShapeError(err))
	_, _, err = ScatterNDOp(f32(4, 5, 6), i64(3, 2), f32(3, 6), ir.ReductionMean)
	require.True(t, ir.IsSchemaError(err))
	_, _, err = ScatterNDOp(f32(4, 5, 6), i64(3, 2), f32(3, 6), "xor")
	require.True(t, ir.IsSchemaError(err))

	// Symbolic update dimensions are checked later.
	_, deferred, err = ScatterNDOp(f32(4, 5, 6), i64(3, 2), sym("n", 6), ir.ReductionMax)
	require.NoError(t, err)
	require.Len(t, deferred, 2)
}

func TestOneHot(t *testing.T) {
	on, off := ir.PrimValue{DType: dtypes.Float32, Value: float32(1)}, ir.PrimValue{DType: dtypes.Float32, Value: float32(0)}
	output, err := OneHotOp(i64(2, 3), on, off, 4, -1)
	require.NoError(t, err)
	requireShape(t, f32(2, 3, 4), output)

	output, err = OneHotOp(i64(2, 3), on, off, 4, 0)
	require.NoError(t, err)
	requireShape(t, f32(4, 2, 3), output)

	_, err = OneHotOp(i64(2, 3), on, off, 0, -1)
	require.True(t, ir.IsSchemaError(err))
	_, err = OneHotOp(i64(2, 3), on, off, 4, 3)
	require.True(t, ir.IsShapeError(err))
	_, err = OneHotOp(i64(2, 3), on, ir.PrimValue{DType: dtypes.Int32, Value: int32(0)}, 4, -1)
	require.True(t, ir.IsShapeError(err))
}
