// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package inference

import (
	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/gomlx/tensorir/pkg/ir"
)

// LayoutTransformOp returns the shape of layout_transform(x, ...): the index map is applied to
// the dimensions of x.
//
// If the mapping requires implicit padding (e.g. tiling 10 elements in tiles of 4) a pad value
// must be given. If padding can't be decided because of symbolic dimensions, it's left as a
// deferred check.
func LayoutTransformOp(x shapes.Shape, attrs ir.LayoutTransformAttrs) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	op := ir.OpTypeLayoutTransform
	name := op.String()
	m := attrs.IndexMap
	if m == nil {
		return output, nil, ir.Schemaf(name, "index_map is required")
	}
	if x.HasKnownRank() {
		if err = checkAxisSeparators(name, "input_axis_separators", attrs.InputAxisSeparators, x.Rank()); err != nil {
			return
		}
	}
	if err = checkAxisSeparators(name, "axis_separators", attrs.AxisSeparators, m.NumOutputs()); err != nil {
		return
	}
	if !x.HasKnownRank() {
		return shapes.MakeUnknownDims(x.DType, m.NumOutputs()), nil, nil
	}
	dims, padding, mapErr := m.MapShape(x.Dimensions)
	if mapErr != nil {
		return output, nil, ir.Shapef(name, "%v", mapErr)
	}
	switch padding {
	case shapes.Yes:
		if !attrs.PadValue.IsSome() {
			return output, nil, ir.Shapef(name, "index map %q requires implicit padding of %s, but no pad_value was given", m, x)
		}
	case shapes.Maybe:
		if !attrs.PadValue.IsSome() {
			deferred = append(deferred, deferredCheck(op, "index map must not require implicit padding, since no pad_value was given"))
		}
	}
	return shapes.MakeDims(x.DType, dims...), deferred, nil
}

// checkAxisSeparators validates that separators are strictly increasing positions in (0, rank).
func checkAxisSeparators(op, attrName string, separators ir.Optional[[]int], rank int) error {
	values, ok := separators.Get()
	if !ok {
		return nil
	}
	for ii, separator := range values {
		if ii > 0 && separator <= values[ii-1] {
			return ir.Schemaf(op, "%s must be strictly increasing, got %v", attrName, values)
		}
		if separator <= 0 || separator >= rank {
			return ir.Shapef(op, "%s %v out of range for rank %d", attrName, values, rank)
		}
	}
	return nil
}

// PhysicalShape returns the dimensions of the physical buffer of a tensor with the given shape,
// when its axes are grouped by the axis separators: each group of axes is flattened into one dimension.
// Without separators the buffer is flat.
func PhysicalShape(shape shapes.Shape, separators []int) (shapes.Shape, error) {
	if !shape.HasKnownRank() {
		return shapes.MakeUnknownDims(shape.DType, len(separators)+1), nil
	}
	if err := checkAxisSeparators("physical_shape", "axis_separators", ir.Some(separators), shape.Rank()); err != nil {
		return shapes.Shape{}, err
	}
	bounds := append(append([]int{0}, separators...), shape.Rank())
	dims := make([]shapes.Dim, len(bounds)-1)
	for ii := range dims {
		group := shapes.D(1)
		for _, dim := range shape.Dimensions[bounds[ii]:bounds[ii+1]] {
			group = group.Mul(dim)
		}
		dims[ii] = group
	}
	return shapes.MakeDims(shape.DType, dims...), nil
}
