// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package inference

import (
	"fmt"
	"slices"

	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/gomlx/tensorir/pkg/ir"
)

// indexBoundsCheck is the deferred check of every operator reading index values.
func indexBoundsCheck(op ir.OpType, where string) ir.DeferredCheck {
	return deferredCheck(op, "index values must be within the bounds of "+where)
}

// GatherElementsOp returns the shape of gather_elements(data, indices, axis): the shape of indices,
// with data's dtype. indices and data must have the same rank and match in every axis but axis.
func GatherElementsOp(data, indices shapes.Shape, axis int) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	op := ir.OpTypeGatherElements
	name := op.String()
	deferred = []ir.DeferredCheck{indexBoundsCheck(op, fmt.Sprintf("axis %d of data", axis))}
	if !data.HasKnownRank() || !indices.HasKnownRank() {
		if data.HasKnownRank() {
			if _, err = adjustAxis(name, axis, data.Rank()); err != nil {
				return
			}
		}
		return indices.WithDType(data.DType), deferred, nil
	}
	if data.Rank() != indices.Rank() {
		return output, nil, ir.Shapef(name, "data %s and indices %s must have the same rank", data, indices)
	}
	adjustedAxis, err := adjustAxis(name, axis, data.Rank())
	if err != nil {
		return
	}
	for d, dim := range indices.Dimensions {
		if d == adjustedAxis {
			continue
		}
		what := fmt.Sprintf("axis %d of data and indices", d)
		_, dimDeferred, unifyErr := unifyDims(name, what, data.Dimensions[d], dim)
		if unifyErr != nil {
			return output, nil, unifyErr
		}
		if dimDeferred {
			deferred = append(deferred, equalDimsCheck(op, what, data.Dimensions[d], dim))
		}
	}
	return indices.WithDType(data.DType), deferred, nil
}

// GatherNDOp returns the shape of gather_nd(data, indices, batchDims):
// indices.shape[:-1] + data.shape[batchDims+k:], where k = indices.shape[-1] is the number of
// indexed axes. The first batchDims axes of data and indices must match.
func GatherNDOp(data, indices shapes.Shape, batchDims int) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	op := ir.OpTypeGatherND
	name := op.String()
	if batchDims < 0 {
		return output, nil, ir.Schemaf(name, "batch_dims must be non-negative, got %d", batchDims)
	}
	deferred = []ir.DeferredCheck{indexBoundsCheck(op, "the indexed axes of data")}
	if !data.HasKnownRank() || !indices.HasKnownRank() {
		return shapes.MakeUnknownRank(data.DType), deferred, nil
	}
	if indices.Rank() < 1 {
		return output, nil, ir.Shapef(name, "indices must have rank at least 1, got %s", indices)
	}
	if batchDims >= indices.Rank() || batchDims > data.Rank() {
		return output, nil, ir.Shapef(name, "batch_dims=%d too large for data %s and indices %s", batchDims, data, indices)
	}
	batch := make([]shapes.Dim, batchDims)
	for axis := range batchDims {
		what := fmt.Sprintf("batch axis %d", axis)
		var dimDeferred bool
		batch[axis], dimDeferred, err = unifyDims(name, what, data.Dimensions[axis], indices.Dimensions[axis])
		if err != nil {
			return output, nil, err
		}
		if dimDeferred {
			deferred = append(deferred, equalDimsCheck(op, what, data.Dimensions[axis], indices.Dimensions[axis]))
		}
	}
	k, ok := indices.Dim(-1).Value()
	if !ok {
		return shapes.MakeUnknownRank(data.DType), deferred, nil
	}
	if k > data.Rank()-batchDims {
		return output, nil, ir.Shapef(name, "indices last dimension %d exceeds the %d non-batch axes of data %s",
			k, data.Rank()-batchDims, data)
	}
	dims := slices.Concat(batch, indices.Dimensions[batchDims:indices.Rank()-1], data.Dimensions[batchDims+k:])
	return shapes.MakeDims(data.DType, dims...), deferred, nil
}

// IndexTensorOp returns the shape of index_tensor(data, indices) (advanced indexing, as in data[i0, i1, ...]):
// the index tensors are broadcast together, and their broadcast shape replaces the first len(indices)
// axes of data.
func IndexTensorOp(data shapes.Shape, indices []shapes.Shape) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	return indexedShape(ir.OpTypeIndexTensor, data, indices)
}

func indexedShape(op ir.OpType, data shapes.Shape, indices []shapes.Shape) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	name := op.String()
	if len(indices) == 0 {
		return output, nil, ir.Schemaf(name, "requires at least one index tensor")
	}
	if data.HasKnownRank() && len(indices) > data.Rank() {
		return output, nil, ir.Shapef(name, "%d index tensors given for data %s of rank %d", len(indices), data, data.Rank())
	}
	dims, knownRank, broadcastDeferred, err := broadcastShapes(name, indices)
	if err != nil {
		return
	}
	deferred = []ir.DeferredCheck{indexBoundsCheck(op, "the indexed axes of data")}
	if broadcastDeferred {
		deferred = append(deferred, deferredCheck(op, "index tensors must be broadcastable"))
	}
	if !knownRank || !data.HasKnownRank() {
		return shapes.MakeUnknownRank(data.DType), deferred, nil
	}
	dims = append(dims, data.Dimensions[len(indices):]...)
	return shapes.MakeDims(data.DType, dims...), deferred, nil
}

// IndexPutOp returns the shape of index_put(data, indices, values): data's shape.
// values must be broadcastable to the shape of index_tensor(data, indices), and have data's dtype.
func IndexPutOp(data shapes.Shape, indices []shapes.Shape, values shapes.Shape) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	op := ir.OpTypeIndexPut
	name := op.String()
	if _, err = peerDType(name, data, values); err != nil {
		return
	}
	indexed, deferred, err := indexedShape(op, data, indices)
	if err != nil {
		return
	}
	if indexed.HasKnownRank() && values.HasKnownRank() {
		if values.Rank() > indexed.Rank() {
			return output, nil, ir.Shapef(name, "values %s has larger rank than the indexed shape %v", values, indexed.Dimensions)
		}
		offset := indexed.Rank() - values.Rank()
		for axis, dim := range values.Dimensions {
			target := indexed.Dimensions[offset+axis]
			if dim.IsValue(1) {
				continue
			}
			switch dim.Compare(target) {
			case shapes.No:
				return output, nil, ir.Shapef(name, "values %s can't be broadcast to the indexed shape %v", values, indexed.Dimensions)
			case shapes.Maybe:
				deferred = append(deferred, deferredCheck(op, fmt.Sprintf("dimension %s of axis %d of values must be 1 or %s", dim, axis, target)))
			}
		}
	}
	return data.Clone(), deferred, nil
}

// MeshgridOp returns the tuple shape of meshgrid(tensors, indexing): one grid per input tensor, each with
// shape (len(t1), ..., len(tN)). With "xy" indexing the first two axes are swapped.
func MeshgridOp(tensors []shapes.Shape, indexing ir.MeshgridIndexing) (output shapes.Shape, err error) {
	name := ir.OpTypeMeshgrid.String()
	if indexing != ir.IndexingIJ && indexing != ir.IndexingXY {
		return output, ir.Schemaf(name, "indexing must be %q or %q, got %q", ir.IndexingIJ, ir.IndexingXY, indexing)
	}
	if len(tensors) == 0 {
		return output, ir.Schemaf(name, "requires at least one tensor")
	}
	dtype, err := peerDType(name, tensors...)
	if err != nil {
		return
	}
	dims := make([]shapes.Dim, len(tensors))
	for ii, tensor := range tensors {
		switch tensor.Rank() {
		case shapes.UnknownRank:
			dims[ii] = shapes.Unknown()
		case 0:
			dims[ii] = shapes.D(1)
		case 1:
			dims[ii] = tensor.Dimensions[0]
		default:
			return output, ir.Shapef(name, "tensor #%d must be 0-D or 1-D, got %s", ii, tensor)
		}
	}
	if indexing == ir.IndexingXY && len(dims) >= 2 {
		dims[0], dims[1] = dims[1], dims[0]
	}
	grids := make([]shapes.Shape, len(tensors))
	for ii := range grids {
		grids[ii] = shapes.MakeDims(dtype, dims...)
	}
	return shapes.MakeTuple(grids), nil
}

// checkReduction returns a SchemaError if the reduction is not valid for the operator.
func checkReduction(op ir.OpType, reduction ir.ScatterReduction) error {
	valid := ir.ValidReductions(op)
	if !slices.Contains(valid, reduction) {
		return ir.Schemaf(op.String(), "invalid reduction %q, valid values are %q", reduction, valid)
	}
	return nil
}

// ScatterElementsOp returns the shape of scatter_elements(data, indices, updates, axis, reduction): data's shape.
// indices and updates must have the same shape, and the same rank as data.
//
// With the "mean" reduction, updates to the same position are accumulated and then divided by their
// count, so the result doesn't depend on the order of the duplicate indices.
func ScatterElementsOp(data, indices, updates shapes.Shape, axis int, reduction ir.ScatterReduction) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	op := ir.OpTypeScatterElements
	name := op.String()
	if err = checkReduction(op, reduction); err != nil {
		return
	}
	if _, err = peerDType(name, data, updates); err != nil {
		return
	}
	deferred = []ir.DeferredCheck{indexBoundsCheck(op, fmt.Sprintf("axis %d of data", axis))}
	if data.HasKnownRank() {
		if _, err = adjustAxis(name, axis, data.Rank()); err != nil {
			return
		}
	}
	if indices.HasKnownRank() && updates.HasKnownRank() {
		if indices.Rank() != updates.Rank() {
			return output, nil, ir.Shapef(name, "indices %s and updates %s must have the same shape", indices, updates)
		}
		for axis, dim := range indices.Dimensions {
			what := fmt.Sprintf("axis %d of indices and updates", axis)
			_, dimDeferred, unifyErr := unifyDims(name, what, dim, updates.Dimensions[axis])
			if unifyErr != nil {
				return output, nil, unifyErr
			}
			if dimDeferred {
				deferred = append(deferred, equalDimsCheck(op, what, dim, updates.Dimensions[axis]))
			}
		}
	}
	if indices.HasKnownRank() && data.HasKnownRank() && indices.Rank() != data.Rank() {
		return output, nil, ir.Shapef(name, "indices %s must have the same rank as data %s", indices, data)
	}
	return data.Clone(), deferred, nil
}

// ScatterNDOp returns the shape of scatter_nd(data, indices, updates, reduction): data's shape.
// updates must have shape indices.shape[:-1] + data.shape[k:], where k = indices.shape[-1].
func ScatterNDOp(data, indices, updates shapes.Shape, reduction ir.ScatterReduction) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	op := ir.OpTypeScatterND
	name := op.String()
	if err = checkReduction(op, reduction); err != nil {
		return
	}
	if _, err = peerDType(name, data, updates); err != nil {
		return
	}
	deferred = []ir.DeferredCheck{indexBoundsCheck(op, "the indexed axes of data")}
	output = data.Clone()
	if !data.HasKnownRank() || !indices.HasKnownRank() || !updates.HasKnownRank() {
		return
	}
	if indices.Rank() < 1 {
		return output, nil, ir.Shapef(name, "indices must have rank at least 1, got %s", indices)
	}
	k, ok := indices.Dim(-1).Value()
	if !ok {
		deferred = append(deferred, deferredCheck(op, "updates shape must be indices.shape[:-1] + data.shape[indices.shape[-1]:]"))
		return
	}
	if k > data.Rank() {
		return output, nil, ir.Shapef(name, "indices last dimension %d exceeds the rank of data %s", k, data)
	}
	expected := slices.Concat(indices.Dimensions[:indices.Rank()-1], data.Dimensions[k:])
	if len(expected) != updates.Rank() {
		return output, nil, ir.Shapef(name, "updates %s must have shape %v", updates, expected)
	}
	for axis, dim := range expected {
		_, axisDeferred, unifyErr := unifyDims(name, fmt.Sprintf("axis %d of updates", axis), dim, updates.Dimensions[axis])
		if unifyErr != nil {
			return output, nil, ir.Shapef(name, "updates %s must have shape %v", updates, expected)
		}
		if axisDeferred {
			deferred = append(deferred, deferredCheck(op, fmt.Sprintf("dimension %s of axis %d of updates must be %s",
				updates.Dimensions[axis], axis, dim)))
		}
	}
	return
}

// OneHotOp returns the shape of one_hot(indices, onValue, offValue, depth, axis): a new axis of size
// depth is inserted at axis, resolved against the output rank. The dtype is the one of the on/off values.
func OneHotOp(indices shapes.Shape, onValue, offValue ir.PrimValue, depth, axis int) (output shapes.Shape, err error) {
	name := ir.OpTypeOneHot.String()
	if depth <= 0 {
		return output, ir.Schemaf(name, "depth must be positive, got %d", depth)
	}
	if onValue.DType != offValue.DType {
		return output, ir.Shapef(name, "on_value (%s) and off_value (%s) must have the same dtype", onValue.DType, offValue.DType)
	}
	if !indices.HasKnownRank() {
		return shapes.MakeUnknownRank(onValue.DType), nil
	}
	adjustedAxis, err := adjustAxis(name, axis, indices.Rank()+1)
	if err != nil {
		return
	}
	dims := slices.Insert(slices.Clone(indices.Dimensions), adjustedAxis, shapes.D(depth))
	return shapes.MakeDims(onValue.DType, dims...), nil
}
