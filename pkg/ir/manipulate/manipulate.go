// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package manipulate provides the node builders of the tensor manipulation operators:
// one factory per operator, plus Build to create any operator by name.
//
// Factories normalize their arguments (defaults, tuple vs list of tensors), run the shape
// inference and return a new immutable node carrying the inferred shape. If the arguments are
// invalid they return an *ir.SchemaError or an *ir.ShapeError, and no node is built.
//
// Example:
//
//	x := ir.NewVar("x", shapes.MakeDims(dtypes.Float32, shapes.Sym("batch"), shapes.D(12)))
//	y, err := manipulate.ReshapeTo(x, -1, 3, 4)  // y.Shape() == (Float32)[batch 3 4]
package manipulate

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/tensorir/pkg/core/indexmap"
	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/gomlx/tensorir/pkg/ir"
	"github.com/gomlx/tensorir/pkg/ir/inference"
	"k8s.io/klog/v2"
)

// build runs the inference and creates the Call node.
func build(op ir.OpType, args []ir.Expr, attrs ir.Attrs) (ir.Expr, error) {
	result, err := inference.Infer(op, args, attrs)
	if err != nil {
		return nil, err
	}
	call := ir.NewCall(op, args, attrs, result.Shape, result.Deferred)
	if klog.V(2).Enabled() {
		klog.Infof("built %s -> %s", call, result.Shape)
		for _, check := range result.Deferred {
			klog.Infof("  deferred check: %s", check)
		}
	}
	return call, nil
}

// tensorList returns the node holding a list of tensors: a single tuple-typed node is used
// as is, otherwise the tensors are grouped in a new Tuple.
func tensorList(tensors []ir.Expr) ir.Expr {
	if len(tensors) == 1 && tensors[0] != nil {
		if _, isTuple := tensors[0].(*ir.Tuple); isTuple || tensors[0].Shape().IsTuple() {
			return tensors[0]
		}
	}
	return ir.NewTuple(tensors...)
}

// BroadcastTo broadcasts x to the shape given by the shape value node.
func BroadcastTo(x ir.Expr, shape ir.Expr) (ir.Expr, error) {
	return build(ir.OpTypeBroadcastTo, []ir.Expr{x, shape}, ir.BroadcastToAttrs{})
}

// Concat concatenates the tensors along axis. If axis is None, the tensors are flattened first.
// tensors can also be a single tuple-typed node.
func Concat(tensors []ir.Expr, axis ir.Optional[int]) (ir.Expr, error) {
	return build(ir.OpTypeConcat, []ir.Expr{tensorList(tensors)}, ir.ConcatAttrs{Axis: axis})
}

// ExpandDims inserts size-1 axes at the given positions of the output.
func ExpandDims(x ir.Expr, axis ...int) (ir.Expr, error) {
	return build(ir.OpTypeExpandDims, []ir.Expr{x}, ir.ExpandDimsAttrs{Axis: axis})
}

// Flatten reshapes x to a single dimension.
func Flatten(x ir.Expr) (ir.Expr, error) {
	return build(ir.OpTypeFlatten, []ir.Expr{x}, ir.FlattenAttrs{})
}

// LayoutTransform changes the layout of x according to the index map.
func LayoutTransform(x ir.Expr, indexMap *indexmap.IndexMap, padValue ir.Optional[ir.PrimValue],
	axisSeparators, inputAxisSeparators ir.Optional[[]int]) (ir.Expr, error) {
	return build(ir.OpTypeLayoutTransform, []ir.Expr{x}, ir.LayoutTransformAttrs{
		IndexMap:            indexMap,
		PadValue:            padValue,
		AxisSeparators:      axisSeparators,
		InputAxisSeparators: inputAxisSeparators,
	})
}

// PermuteDims permutes the axes of x. If axes is None, the axes are reversed.
func PermuteDims(x ir.Expr, axes ir.Optional[[]int]) (ir.Expr, error) {
	return build(ir.OpTypePermuteDims, []ir.Expr{x}, ir.PermuteDimsAttrs{Axes: axes})
}

// Reshape x to the shape given by the shape value node (an ir.ShapeExpr or ir.ShapeVar).
func Reshape(x ir.Expr, shape ir.Expr) (ir.Expr, error) {
	return build(ir.OpTypeReshape, []ir.Expr{x, shape}, ir.ReshapeAttrs{})
}

// ReshapeTo reshapes x to a literal shape. Each dimension is either an int or a shapes.Dim, and
// one of them can be -1, in which case it is inferred from the number of elements of x.
func ReshapeTo(x ir.Expr, dims ...any) (ir.Expr, error) {
	if x == nil {
		return nil, ir.Schemaf(ir.OpTypeReshape.String(), "argument \"x\" is nil")
	}
	target, err := inference.ResolveReshapeTarget(x.Shape(), dims)
	if err != nil {
		return nil, err
	}
	return Reshape(x, ir.NewShapeExpr(target.Dimensions...))
}

// Split x along axis, either in a number of sections (ir.Sections) or at the given indices (ir.Indices).
// It returns a tuple-typed node: use TupleGetItem to access the parts.
func Split(x ir.Expr, indicesOrSections ir.IndicesOrSections, axis int) (ir.Expr, error) {
	return build(ir.OpTypeSplit, []ir.Expr{x}, ir.SplitAttrs{IndicesOrSections: indicesOrSections, Axis: axis})
}

// Squeeze removes the given size-1 axes. If axis is None, all the axes of size 1 are removed.
func Squeeze(x ir.Expr, axis ir.Optional[[]int]) (ir.Expr, error) {
	return build(ir.OpTypeSqueeze, []ir.Expr{x}, ir.SqueezeAttrs{Axis: axis})
}

// Stack the tensors along a new axis (default 0).
func Stack(tensors []ir.Expr, axis ir.Optional[int]) (ir.Expr, error) {
	return build(ir.OpTypeStack, []ir.Expr{tensorList(tensors)}, ir.StackAttrs{Axis: axis})
}

// CollapseSumLike sums data to the shape of collapseTarget.
func CollapseSumLike(data, collapseTarget ir.Expr) (ir.Expr, error) {
	return build(ir.OpTypeCollapseSumLike, []ir.Expr{data, collapseTarget}, ir.CollapseSumLikeAttrs{})
}

// CollapseSumTo sums data to the shape given by the shape value node.
func CollapseSumTo(data, shape ir.Expr) (ir.Expr, error) {
	return build(ir.OpTypeCollapseSumTo, []ir.Expr{data, shape}, ir.CollapseSumToAttrs{})
}

// Repeat each element of data repeats times along axis. If axis is None, data is flattened first.
func Repeat(data ir.Expr, repeats int, axis ir.Optional[int]) (ir.Expr, error) {
	return build(ir.OpTypeRepeat, []ir.Expr{data}, ir.RepeatAttrs{Repeats: repeats, Axis: axis})
}

// Tile data by the repeats given per axis.
func Tile(data ir.Expr, repeats ...int) (ir.Expr, error) {
	return build(ir.OpTypeTile, []ir.Expr{data}, ir.TileAttrs{Repeats: repeats})
}

// Flip reverses the order of the elements of data along axis.
func Flip(data ir.Expr, axis int) (ir.Expr, error) {
	return build(ir.OpTypeFlip, []ir.Expr{data}, ir.FlipAttrs{Axis: axis})
}

// GatherElements gathers elements of data along axis, at the positions given by indices.
func GatherElements(data, indices ir.Expr, axis int) (ir.Expr, error) {
	return build(ir.OpTypeGatherElements, []ir.Expr{data, indices}, ir.GatherElementsAttrs{Axis: axis})
}

// GatherND gathers slices of data: the last axis of indices holds the index into the first axes of data
// (after the batchDims axes).
func GatherND(data, indices ir.Expr, batchDims int) (ir.Expr, error) {
	return build(ir.OpTypeGatherND, []ir.Expr{data, indices}, ir.GatherNDAttrs{BatchDims: batchDims})
}

// IndexTensor indexes data with a list of index tensors, like data[i0, i1, ...] in numpy.
// indices can also be a single tuple-typed node.
func IndexTensor(data ir.Expr, indices []ir.Expr) (ir.Expr, error) {
	return build(ir.OpTypeIndexTensor, []ir.Expr{data, tensorList(indices)}, ir.IndexTensorAttrs{})
}

// IndexPut returns data with values written (or added, if accumulate) at the positions given by indices.
func IndexPut(data ir.Expr, indices []ir.Expr, values ir.Expr, accumulate bool) (ir.Expr, error) {
	return build(ir.OpTypeIndexPut, []ir.Expr{data, tensorList(indices), values}, ir.IndexPutAttrs{Accumulate: accumulate})
}

// Meshgrid returns a tuple with one coordinate grid per 1-D input tensor. indexing defaults to "ij" if empty.
func Meshgrid(tensors []ir.Expr, indexing ir.MeshgridIndexing) (ir.Expr, error) {
	if indexing == "" {
		indexing = ir.IndexingIJ
	}
	return build(ir.OpTypeMeshgrid, []ir.Expr{tensorList(tensors)}, ir.MeshgridAttrs{Indexing: indexing})
}

// ScatterElements writes updates into data along axis, at the positions given by indices, combining
// them with reduction. reduction defaults to "update" if empty.
func ScatterElements(data, indices, updates ir.Expr, axis int, reduction ir.ScatterReduction) (ir.Expr, error) {
	if reduction == "" {
		reduction = ir.ReductionUpdate
	}
	return build(ir.OpTypeScatterElements, []ir.Expr{data, indices, updates},
		ir.ScatterElementsAttrs{Axis: axis, Reduction: reduction})
}

// ScatterND writes slices of updates into data, at the positions given by the last axis of indices.
// reduction defaults to "update" if empty.
func ScatterND(data, indices, updates ir.Expr, reduction ir.ScatterReduction) (ir.Expr, error) {
	if reduction == "" {
		reduction = ir.ReductionUpdate
	}
	return build(ir.OpTypeScatterND, []ir.Expr{data, indices, updates}, ir.ScatterNDAttrs{Reduction: reduction})
}

// OneHot returns a tensor with a new axis of size depth, set to onValue at the position given by
// indices, and offValue elsewhere.
func OneHot(indices ir.Expr, onValue, offValue ir.PrimValue, depth, axis int) (ir.Expr, error) {
	return build(ir.OpTypeOneHot, []ir.Expr{indices, onValue, offValue}, ir.OneHotAttrs{Depth: depth, Axis: axis})
}

// TupleGetItem selects element index of a tuple-typed node, like the result of Split or Meshgrid.
func TupleGetItem(tuple ir.Expr, index int) (ir.Expr, error) {
	return ir.NewTupleGetItem(tuple, index)
}

// Build creates a node for the operator with the given name, with attributes given by name.
// Missing attributes take their default values, and attributes are validated against the
// registry schema. Arguments for lists of tensors must be tuple-typed nodes.
func Build(name string, args []ir.Expr, attrs map[string]any) (ir.Expr, error) {
	def, found := ir.LookupOp(name)
	if !found {
		return nil, ir.Schemaf(name, "unknown operator")
	}
	if err := def.CheckArity(len(args)); err != nil {
		return nil, err
	}
	record, err := def.ResolveAttrs(attrs)
	if err != nil {
		return nil, err
	}
	return build(def.Type, args, record)
}

// Shape is a convenience to create a shape value node: each dimension is an int, a shapes.Dim,
// or a string with the name of a symbolic dimension. It panics for any other type.
func Shape(dims ...any) *ir.ShapeExpr {
	converted := make([]shapes.Dim, len(dims))
	for ii, dim := range dims {
		switch v := dim.(type) {
		case int:
			converted[ii] = shapes.D(v)
		case shapes.Dim:
			converted[ii] = v
		case string:
			converted[ii] = shapes.Sym(v)
		default:
			exceptions.Panicf("manipulate.Shape(): invalid dimension %v (%T)", dim, dim)
		}
	}
	return ir.NewShapeExpr(converted...)
}
