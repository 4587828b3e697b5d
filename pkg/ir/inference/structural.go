// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package inference

import (
	"fmt"
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/gomlx/tensorir/pkg/ir"
)

// BroadcastToOp returns the shape of broadcast_to(x, target): the target shape, with x's dtype.
// Each dimension of x, aligned from the trailing axis, must be 1 or equal to the target's.
func BroadcastToOp(x, target shapes.Shape) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	op := ir.OpTypeBroadcastTo
	if !target.HasKnownRank() {
		return shapes.MakeUnknownRank(x.DType), nil, nil
	}
	output = target.WithDType(x.DType)
	if !x.HasKnownRank() {
		return
	}
	if x.Rank() > target.Rank() {
		return output, nil, ir.Shapef(op.String(), "can't broadcast %s with rank %d to a shape of rank %d (%v)",
			x, x.Rank(), target.Rank(), target.Dimensions)
	}
	offset := target.Rank() - x.Rank()
	for axis, dim := range x.Dimensions {
		targetDim := target.Dimensions[offset+axis]
		if dim.IsValue(1) {
			continue
		}
		switch dim.Compare(targetDim) {
		case shapes.No:
			return output, nil, ir.Shapef(op.String(), "dimension %s of axis %d of %s is neither 1 nor the target dimension %s",
				dim, axis, x, targetDim)
		case shapes.Maybe:
			deferred = append(deferred, deferredCheck(op, fmt.Sprintf("dimension %s of axis %d must be 1 or %s", dim, axis, targetDim)))
		}
	}
	return
}

// ConcatOp returns the shape of concat(tensors, axis).
// If axis is None, the operands are flattened to rank-1 before concatenation.
func ConcatOp(tensors []shapes.Shape, axis ir.Optional[int]) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	op := ir.OpTypeConcat
	name := op.String()
	if len(tensors) == 0 {
		return output, nil, ir.Schemaf(name, "requires at least one tensor")
	}
	dtype, err := peerDType(name, tensors...)
	if err != nil {
		return
	}
	axisValue, hasAxis := axis.Get()
	if !hasAxis {
		total := shapes.D(0)
		for _, tensor := range tensors {
			total = total.Add(tensor.Size())
		}
		return shapes.MakeDims(dtype, total), nil, nil
	}

	// Rank taken from the first operand with a known rank.
	rank := shapes.UnknownRank
	firstIdx := -1
	for ii, tensor := range tensors {
		if tensor.HasKnownRank() {
			rank = tensor.Rank()
			firstIdx = ii
			break
		}
	}
	if rank == shapes.UnknownRank {
		return shapes.MakeUnknownRank(dtype), nil, nil
	}
	if rank == 0 {
		return output, nil, ir.Shapef(name, "can't concatenate scalars, use stack instead")
	}
	adjustedAxis, err := adjustAxis(name, axisValue, rank)
	if err != nil {
		return
	}
	dims := slices.Clone(tensors[firstIdx].Dimensions)
	dims[adjustedAxis] = shapes.D(0)
	for ii, tensor := range tensors {
		if !tensor.HasKnownRank() {
			dims[adjustedAxis] = shapes.Unknown()
			continue
		}
		if tensor.Rank() != rank {
			return output, nil, ir.Shapef(name, "mismatched ranks: tensor #%d has rank %d, expected rank %d", ii, tensor.Rank(), rank)
		}
		for d, dim := range tensor.Dimensions {
			if d == adjustedAxis {
				dims[d] = dims[d].Add(dim)
				continue
			}
			if ii == firstIdx {
				continue
			}
			what := fmt.Sprintf("tensor #%d, axis %d", ii, d)
			previous := dims[d]
			var dimDeferred bool
			dims[d], dimDeferred, err = unifyDims(name, what, previous, dim)
			if err != nil {
				return
			}
			if dimDeferred {
				deferred = append(deferred, equalDimsCheck(op, what, previous, dim))
			}
		}
	}
	return shapes.MakeDims(dtype, dims...), deferred, nil
}

// ExpandDimsOp returns the shape of expand_dims(x, axes): axes are positions in the output,
// where size-1 dimensions are inserted.
func ExpandDimsOp(x shapes.Shape, axes []int) (output shapes.Shape, err error) {
	name := ir.OpTypeExpandDims.String()
	for ii, axis := range axes {
		if slices.Contains(axes[:ii], axis) {
			return output, ir.Shapef(name, "axis %d given more than once (axes=%v)", axis, axes)
		}
	}
	if !x.HasKnownRank() {
		return shapes.MakeUnknownRank(x.DType), nil
	}
	outRank := x.Rank() + len(axes)
	inserted := make([]bool, outRank)
	for _, axis := range axes {
		adjusted, err := adjustAxis(name, axis, outRank)
		if err != nil {
			return output, err
		}
		if inserted[adjusted] {
			return output, ir.Shapef(name, "axis %d given more than once (axes=%v, output rank %d)", adjusted, axes, outRank)
		}
		inserted[adjusted] = true
	}
	dims := make([]shapes.Dim, 0, outRank)
	next := 0
	for axis := range outRank {
		if inserted[axis] {
			dims = append(dims, shapes.D(1))
		} else {
			dims = append(dims, x.Dimensions[next])
			next++
		}
	}
	return shapes.MakeDims(x.DType, dims...), nil
}

// FlattenOp returns the shape of flatten(x): a single dimension with all the elements of x.
func FlattenOp(x shapes.Shape) (output shapes.Shape, err error) {
	return shapes.MakeDims(x.DType, x.Size()), nil
}

// PermuteDimsOp returns the shape of permute_dims(x, axes). If axes is None the axes are reversed.
func PermuteDimsOp(x shapes.Shape, axes ir.Optional[[]int]) (output shapes.Shape, err error) {
	name := ir.OpTypePermuteDims.String()
	permutation, hasAxes := axes.Get()
	if !x.HasKnownRank() {
		if !hasAxes {
			return shapes.MakeUnknownRank(x.DType), nil
		}
		// x must have one axis per entry of axes.
		x = shapes.MakeUnknownDims(x.DType, len(permutation))
	}
	rank := x.Rank()
	if !hasAxes {
		dims := slices.Clone(x.Dimensions)
		slices.Reverse(dims)
		return shapes.MakeDims(x.DType, dims...), nil
	}
	if len(permutation) != rank {
		return output, ir.Shapef(name, "axes %v must have one entry per axis of %s (rank %d)", permutation, x, rank)
	}
	used := make([]bool, rank)
	dims := make([]shapes.Dim, rank)
	for ii, axis := range permutation {
		adjusted, err := adjustAxis(name, axis, rank)
		if err != nil {
			return output, err
		}
		if used[adjusted] {
			return output, ir.Shapef(name, "axes %v is not a permutation: axis %d repeated", permutation, adjusted)
		}
		used[adjusted] = true
		dims[ii] = x.Dimensions[adjusted]
	}
	return shapes.MakeDims(x.DType, dims...), nil
}

// InversePermutation returns the permutation that undoes permute_dims with the given (non-negative) axes.
func InversePermutation(axes []int) []int {
	inverse := make([]int, len(axes))
	for ii, axis := range axes {
		inverse[axis] = ii
	}
	return inverse
}

// ReshapeOp returns the shape of reshape(x, target). The target must have the same number of
// elements as x: it's an error if they provably differ, and a deferred check if it can't be decided.
//
// A -1 in a literal target is resolved before, see ResolveReshapeTarget.
func ReshapeOp(x, target shapes.Shape) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	op := ir.OpTypeReshape
	if !target.HasKnownRank() {
		return shapes.MakeUnknownRank(x.DType), nil, nil
	}
	output = target.WithDType(x.DType)
	if !x.HasKnownRank() {
		deferred = append(deferred, deferredCheck(op, fmt.Sprintf("input must have %s elements", target.Size())))
		return
	}
	inSize, outSize := x.Size(), target.Size()
	switch inSize.Compare(outSize) {
	case shapes.No:
		err = ir.Shapef(op.String(), "can't reshape %s (%s elements) to %v (%s elements)", x, inSize, target.Dimensions, outSize)
	case shapes.Maybe:
		deferred = append(deferred, deferredCheck(op, fmt.Sprintf("number of elements %s must equal %s", inSize, outSize)))
	}
	return
}

// InferredDim marks, in ResolveReshapeTarget, the entry of a reshape target that is inferred from
// the number of elements of the input.
const InferredDim = -1

// ResolveReshapeTarget converts a literal reshape target to a shape value. Entries are either an int
// or a shapes.Dim. At most one entry can be InferredDim (-1): it is resolved so the number of elements
// is preserved.
func ResolveReshapeTarget(x shapes.Shape, target []any) (shapes.Shape, error) {
	name := ir.OpTypeReshape.String()
	dims := make([]shapes.Dim, len(target))
	inferredAxis := -1
	for ii, entry := range target {
		switch v := entry.(type) {
		case shapes.Dim:
			dims[ii] = v
		case int:
			switch {
			case v == InferredDim:
				if inferredAxis >= 0 {
					return shapes.Shape{}, ir.Schemaf(name, "only one dimension can be -1, got %v", target)
				}
				inferredAxis = ii
			case v < 0:
				return shapes.Shape{}, ir.Schemaf(name, "invalid negative dimension %d in %v", v, target)
			default:
				dims[ii] = shapes.D(v)
			}
		default:
			return shapes.Shape{}, ir.Schemaf(name, "invalid entry %v (%T) in target shape", entry, entry)
		}
	}
	if inferredAxis < 0 {
		return shapes.MakeDims(dtypes.InvalidDType, dims...), nil
	}

	others := shapes.D(1)
	for ii, dim := range dims {
		if ii != inferredAxis {
			others = others.Mul(dim)
		}
	}
	if others.IsValue(0) {
		return shapes.Shape{}, ir.Shapef(name, "can't infer the -1 dimension of %v, the other dimensions have 0 elements", target)
	}
	size := x.Size()
	sizeValue, sizeOk := size.Value()
	othersValue, othersOk := others.Value()
	switch {
	case sizeOk && othersOk:
		if sizeValue%othersValue != 0 {
			return shapes.Shape{}, ir.Shapef(name, "can't reshape %s (%d elements) to %v: not divisible by %d",
				x, sizeValue, target, othersValue)
		}
		dims[inferredAxis] = shapes.D(sizeValue / othersValue)
	case others.IsUnknown() || size.IsUnknown():
		dims[inferredAxis] = shapes.Unknown()
	default:
		dims[inferredAxis] = size.FloorDiv(others)
	}
	return shapes.MakeDims(dtypes.InvalidDType, dims...), nil
}

// SplitOp returns the tuple shape of split(x, indicesOrSections, axis).
//
// With Sections(n), all sections but the last have ceil(extent/n) elements, and the last one holds
// the remainder (which may be empty: 5 split in 4 gives 2, 2, 1, 0). With Indices, the axis is
// split at the given positions.
func SplitOp(x shapes.Shape, indicesOrSections ir.IndicesOrSections, axis int) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	op := ir.OpTypeSplit
	name := op.String()
	var numOutputs int
	switch v := indicesOrSections.(type) {
	case ir.Sections:
		if v <= 0 {
			return output, nil, ir.Schemaf(name, "number of sections must be positive, got %d", v)
		}
		numOutputs = int(v)
	case ir.Indices:
		for ii, index := range v {
			if index < 0 {
				return output, nil, ir.Schemaf(name, "split indices must be non-negative, got %v", []int(v))
			}
			if ii > 0 && index < v[ii-1] {
				return output, nil, ir.Schemaf(name, "split indices must be increasing, got %v", []int(v))
			}
		}
		numOutputs = len(v) + 1
	default:
		return output, nil, ir.Schemaf(name, "indices_or_sections is required")
	}

	elements := make([]shapes.Shape, numOutputs)
	if !x.HasKnownRank() {
		for ii := range elements {
			elements[ii] = shapes.MakeUnknownRank(x.DType)
		}
		return shapes.MakeTuple(elements), nil, nil
	}
	adjustedAxis, err := adjustAxis(name, axis, x.Rank())
	if err != nil {
		return
	}
	extent := x.Dimensions[adjustedAxis]
	sizes := make([]shapes.Dim, numOutputs)
	switch v := indicesOrSections.(type) {
	case ir.Sections:
		n := int(v)
		if size, ok := extent.Value(); ok {
			sectionSize := (size + n - 1) / n
			for ii := range sizes {
				sizes[ii] = shapes.D(min(sectionSize, max(0, size-ii*sectionSize)))
			}
		} else {
			sectionSize := extent.CeilDiv(shapes.D(n))
			for ii := range n - 1 {
				sizes[ii] = sectionSize
			}
			sizes[n-1] = extent.Sub(sectionSize.Mul(shapes.D(n - 1)))
			if n > 1 {
				deferred = append(deferred, deferredCheck(op, fmt.Sprintf("extent %s must be at least %s to fill %d sections",
					extent, sectionSize.Mul(shapes.D(n-1)), n)))
			}
		}
	case ir.Indices:
		if size, ok := extent.Value(); ok && len(v) > 0 && v[len(v)-1] > size {
			return output, nil, ir.Shapef(name, "split index %d out of range for axis %d with %d elements", v[len(v)-1], adjustedAxis, size)
		}
		previous := 0
		for ii, index := range v {
			sizes[ii] = shapes.D(index - previous)
			previous = index
		}
		sizes[len(v)] = extent.Sub(shapes.D(previous))
		if !extent.IsStatic() && len(v) > 0 {
			deferred = append(deferred, deferredCheck(op, fmt.Sprintf("split index %d must not exceed extent %s", previous, extent)))
		}
	}
	for ii, size := range sizes {
		dims := slices.Clone(x.Dimensions)
		dims[adjustedAxis] = size
		elements[ii] = shapes.MakeDims(x.DType, dims...)
	}
	return shapes.MakeTuple(elements), deferred, nil
}

// SqueezeOp returns the shape of squeeze(x, axes).
//
// If axes is None all the static dimensions equal to 1 are removed; if x has dimensions that are
// not static, the output rank can't be known. Explicitly selected axes must be 1: it's an error if
// they are statically different, and a deferred check if they are not static.
func SqueezeOp(x shapes.Shape, axes ir.Optional[[]int]) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	op := ir.OpTypeSqueeze
	name := op.String()
	if !x.HasKnownRank() {
		return shapes.MakeUnknownRank(x.DType), nil, nil
	}
	selected, hasAxes := axes.Get()
	if !hasAxes {
		dims := make([]shapes.Dim, 0, x.Rank())
		for _, dim := range x.Dimensions {
			if !dim.IsStatic() {
				return shapes.MakeUnknownRank(x.DType), nil, nil
			}
			if !dim.IsValue(1) {
				dims = append(dims, dim)
			}
		}
		return shapes.MakeDims(x.DType, dims...), nil, nil
	}
	adjustedAxes := make([]int, 0, len(selected))
	for _, axis := range selected {
		adjusted, err := adjustAxis(name, axis, x.Rank())
		if err != nil {
			return output, nil, err
		}
		if slices.Contains(adjustedAxes, adjusted) {
			continue
		}
		dim := x.Dimensions[adjusted]
		switch dim.Compare(shapes.D(1)) {
		case shapes.No:
			return output, nil, ir.Shapef(name, "can't squeeze axis %d of %s, its dimension is %s", adjusted, x, dim)
		case shapes.Maybe:
			deferred = append(deferred, deferredCheck(op, fmt.Sprintf("dimension %s of axis %d must be 1", dim, adjusted)))
		}
		adjustedAxes = append(adjustedAxes, adjusted)
	}
	return shapes.MakeDims(x.DType, removeAxes(x.Dimensions, adjustedAxes)...), deferred, nil
}

// StackOp returns the shape of stack(tensors, axis): a new axis with one entry per tensor is inserted
// at axis (default 0), resolved against the output rank.
func StackOp(tensors []shapes.Shape, axis ir.Optional[int]) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	op := ir.OpTypeStack
	name := op.String()
	if len(tensors) == 0 {
		return output, nil, ir.Schemaf(name, "requires at least one tensor")
	}
	dtype, err := peerDType(name, tensors...)
	if err != nil {
		return
	}
	var dims []shapes.Dim
	rank := shapes.UnknownRank
	for ii, tensor := range tensors {
		if !tensor.HasKnownRank() {
			continue
		}
		if rank == shapes.UnknownRank {
			rank = tensor.Rank()
			dims = slices.Clone(tensor.Dimensions)
			continue
		}
		if tensor.Rank() != rank {
			return output, nil, ir.Shapef(name, "mismatched ranks: tensor #%d has rank %d, expected rank %d", ii, tensor.Rank(), rank)
		}
		for d, dim := range tensor.Dimensions {
			what := fmt.Sprintf("tensor #%d, axis %d", ii, d)
			previous := dims[d]
			var dimDeferred bool
			dims[d], dimDeferred, err = unifyDims(name, what, previous, dim)
			if err != nil {
				return
			}
			if dimDeferred {
				deferred = append(deferred, equalDimsCheck(op, what, previous, dim))
			}
		}
	}
	if rank == shapes.UnknownRank {
		return shapes.MakeUnknownRank(dtype), nil, nil
	}
	adjustedAxis, err := adjustAxis(name, axis.Or(0), rank+1)
	if err != nil {
		return
	}
	dims = slices.Insert(dims, adjustedAxis, shapes.D(len(tensors)))
	return shapes.MakeDims(dtype, dims...), deferred, nil
}

// CollapseSumToOp returns the shape of collapse_sum_to(data, target): the target shape, with data's dtype.
// data's shape must be a broadcast of target.
func CollapseSumToOp(data, target shapes.Shape) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	return collapseSum(ir.OpTypeCollapseSumTo, data, target)
}

// CollapseSumLikeOp returns the shape of collapse_sum_like(data, collapseTarget): the shape of collapseTarget,
// with data's dtype.
func CollapseSumLikeOp(data, collapseTarget shapes.Shape) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	return collapseSum(ir.OpTypeCollapseSumLike, data, collapseTarget)
}

func collapseSum(op ir.OpType, data, target shapes.Shape) (output shapes.Shape, deferred []ir.DeferredCheck, err error) {
	if !target.HasKnownRank() {
		return shapes.MakeUnknownRank(data.DType), nil, nil
	}
	output = target.WithDType(data.DType)
	if !data.HasKnownRank() {
		return
	}
	if target.Rank() > data.Rank() {
		return output, nil, ir.Shapef(op.String(), "can't collapse %s to a shape of larger rank %v", data, target.Dimensions)
	}
	offset := data.Rank() - target.Rank()
	for axis, dim := range target.Dimensions {
		dataDim := data.Dimensions[offset+axis]
		if dim.IsValue(1) {
			continue
		}
		switch dim.Compare(dataDim) {
		case shapes.No:
			return output, nil, ir.Shapef(op.String(), "target dimension %s of axis %d is neither 1 nor the data dimension %s",
				dim, axis, dataDim)
		case shapes.Maybe:
			deferred = append(deferred, deferredCheck(op, fmt.Sprintf("target dimension %s of axis %d must be 1 or %s", dim, axis, dataDim)))
		}
	}
	return
}

// RepeatOp returns the shape of repeat(data, repeats, axis). If axis is None, data is flattened first.
func RepeatOp(data shapes.Shape, repeats int, axis ir.Optional[int]) (output shapes.Shape, err error) {
	name := ir.OpTypeRepeat.String()
	if repeats <= 0 {
		return output, ir.Schemaf(name, "repeats must be positive, got %d", repeats)
	}
	axisValue, hasAxis := axis.Get()
	if !hasAxis {
		return shapes.MakeDims(data.DType, data.Size().Mul(shapes.D(repeats))), nil
	}
	if !data.HasKnownRank() {
		return shapes.MakeUnknownRank(data.DType), nil
	}
	adjustedAxis, err := adjustAxis(name, axisValue, data.Rank())
	if err != nil {
		return
	}
	dims := slices.Clone(data.Dimensions)
	dims[adjustedAxis] = dims[adjustedAxis].Mul(shapes.D(repeats))
	return shapes.MakeDims(data.DType, dims...), nil
}

// TileOp returns the shape of tile(data, repeats). The shorter of data's dimensions and repeats is
// left-padded with 1s to match the longer one.
func TileOp(data shapes.Shape, repeats []int) (output shapes.Shape, err error) {
	name := ir.OpTypeTile.String()
	for _, r := range repeats {
		if r < 0 {
			return output, ir.Schemaf(name, "repeats must be non-negative, got %v", repeats)
		}
	}
	if !data.HasKnownRank() {
		return shapes.MakeUnknownRank(data.DType), nil
	}
	rank := max(data.Rank(), len(repeats))
	dims := make([]shapes.Dim, rank)
	dataOffset, repeatsOffset := rank-data.Rank(), rank-len(repeats)
	for axis := range rank {
		dim := shapes.D(1)
		if axis >= dataOffset {
			dim = data.Dimensions[axis-dataOffset]
		}
		if axis >= repeatsOffset {
			dim = dim.Mul(shapes.D(repeats[axis-repeatsOffset]))
		}
		dims[axis] = dim
	}
	return shapes.MakeDims(data.DType, dims...), nil
}

// FlipOp returns the shape of flip(data, axis): the same as data.
func FlipOp(data shapes.Shape, axis int) (output shapes.Shape, err error) {
	if data.HasKnownRank() {
		if _, err = adjustAxis(ir.OpTypeFlip.String(), axis, data.Rank()); err != nil {
			return
		}
	}
	return data.Clone(), nil
}
