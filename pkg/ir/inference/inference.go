// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package inference holds the shape inference rules of the tensor manipulation operators.
//
// There is one pure function per operator (e.g. ReshapeOp, ConcatOp), taking the shapes of the
// inputs and the attributes, and returning the output shape, the checks that can only be done
// at runtime, or a SchemaError/ShapeError (see package ir).
//
// Infer dispatches on the attributes record of the operator. Rules never raise an error only
// because they can't prove legality with symbolic dimensions: instead they return a partially
// known shape and a DeferredCheck.
package inference

import (
	"fmt"
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/gomlx/tensorir/pkg/ir"
	"github.com/pkg/errors"
)

// Result of the inference of one operator application.
type Result struct {
	Shape    shapes.Shape
	Deferred []ir.DeferredCheck
}

// Infer validates the arguments and attributes of the operator and returns its output shape.
//
// The attributes record must belong to op. Arguments are checked against the roles declared in
// the registry: shape arguments must be ir.ShapeValued, scalars must be ir.PrimValue, and
// tensor lists must be tuple-typed.
func Infer(op ir.OpType, args []ir.Expr, attrs ir.Attrs) (result Result, err error) {
	if !op.IsValid() {
		return Result{}, errors.Errorf("inference.Infer(): invalid operator %s", op)
	}
	def := op.Def()
	if err = def.CheckArity(len(args)); err != nil {
		return
	}
	if attrs == nil {
		return Result{}, ir.Schemaf(op.String(), "missing attributes record")
	}
	if attrs.OpType() != op {
		return Result{}, ir.Schemaf(op.String(), "attributes record %T belongs to operator %s", attrs, attrs.OpType())
	}
	in, err := collectInputs(def, args)
	if err != nil {
		return
	}

	var deferred []ir.DeferredCheck
	switch a := attrs.(type) {
	case ir.BroadcastToAttrs:
		result.Shape, deferred, err = BroadcastToOp(in.shapes[0], in.values[1])
	case ir.ConcatAttrs:
		result.Shape, deferred, err = ConcatOp(in.lists[0], a.Axis)
	case ir.ExpandDimsAttrs:
		result.Shape, err = ExpandDimsOp(in.shapes[0], a.Axis)
	case ir.FlattenAttrs:
		result.Shape, err = FlattenOp(in.shapes[0])
	case ir.LayoutTransformAttrs:
		result.Shape, deferred, err = LayoutTransformOp(in.shapes[0], a)
	case ir.PermuteDimsAttrs:
		result.Shape, err = PermuteDimsOp(in.shapes[0], a.Axes)
	case ir.ReshapeAttrs:
		result.Shape, deferred, err = ReshapeOp(in.shapes[0], in.values[1])
	case ir.SplitAttrs:
		result.Shape, deferred, err = SplitOp(in.shapes[0], a.IndicesOrSections, a.Axis)
	case ir.SqueezeAttrs:
		result.Shape, deferred, err = SqueezeOp(in.shapes[0], a.Axis)
	case ir.StackAttrs:
		result.Shape, deferred, err = StackOp(in.lists[0], a.Axis)
	case ir.CollapseSumLikeAttrs:
		result.Shape, deferred, err = CollapseSumLikeOp(in.shapes[0], in.shapes[1])
	case ir.CollapseSumToAttrs:
		result.Shape, deferred, err = CollapseSumToOp(in.shapes[0], in.values[1])
	case ir.RepeatAttrs:
		result.Shape, err = RepeatOp(in.shapes[0], a.Repeats, a.Axis)
	case ir.TileAttrs:
		result.Shape, err = TileOp(in.shapes[0], a.Repeats)
	case ir.FlipAttrs:
		result.Shape, err = FlipOp(in.shapes[0], a.Axis)
	case ir.GatherElementsAttrs:
		result.Shape, deferred, err = GatherElementsOp(in.shapes[0], in.shapes[1], a.Axis)
	case ir.GatherNDAttrs:
		result.Shape, deferred, err = GatherNDOp(in.shapes[0], in.shapes[1], a.BatchDims)
	case ir.IndexTensorAttrs:
		result.Shape, deferred, err = IndexTensorOp(in.shapes[0], in.lists[1])
	case ir.IndexPutAttrs:
		result.Shape, deferred, err = IndexPutOp(in.shapes[0], in.lists[1], in.shapes[2])
	case ir.MeshgridAttrs:
		result.Shape, err = MeshgridOp(in.lists[0], a.Indexing)
	case ir.ScatterElementsAttrs:
		result.Shape, deferred, err = ScatterElementsOp(in.shapes[0], in.shapes[1], in.shapes[2], a.Axis, a.Reduction)
	case ir.ScatterNDAttrs:
		result.Shape, deferred, err = ScatterNDOp(in.shapes[0], in.shapes[1], in.shapes[2], a.Reduction)
	case ir.OneHotAttrs:
		result.Shape, err = OneHotOp(in.shapes[0], in.scalars[1], in.scalars[2], a.Depth, a.Axis)
	default:
		return Result{}, errors.Errorf("inference.Infer(): no inference rule for attributes %T of operator %s", attrs, op)
	}
	if err != nil {
		return Result{}, err
	}
	result.Deferred = deferred
	return
}

// inputs holds the arguments of an operator, decoded according to their roles.
// Each slice is indexed by the argument position.
type inputs struct {
	shapes  []shapes.Shape   // Shapes of tensor arguments.
	values  []shapes.Shape   // Values of shape arguments.
	lists   [][]shapes.Shape // Element shapes of tensor list arguments.
	scalars []ir.PrimValue   // Static scalar arguments.
}

func collectInputs(def *ir.OpDef, args []ir.Expr) (in inputs, err error) {
	n := len(args)
	in = inputs{
		shapes:  make([]shapes.Shape, n),
		values:  make([]shapes.Shape, n),
		lists:   make([][]shapes.Shape, n),
		scalars: make([]ir.PrimValue, n),
	}
	opName := def.Name()
	for ii, arg := range args {
		spec := def.Args[ii]
		if arg == nil {
			return in, ir.Schemaf(opName, "argument %q is nil", spec.Name)
		}
		if tuple, ok := arg.(*ir.Tuple); ok {
			for jj, field := range tuple.Fields() {
				if field == nil {
					return in, ir.Schemaf(opName, "element #%d of argument %q is nil", jj, spec.Name)
				}
			}
		}
		argShape := arg.Shape()
		switch spec.Role {
		case ir.RoleShape:
			value, ok := arg.(ir.ShapeValued)
			if !ok {
				return in, ir.Schemaf(opName, "argument %q must be a shape value, got %s", spec.Name, arg)
			}
			in.values[ii] = value.ShapeValue()
		case ir.RoleScalar:
			value, ok := arg.(ir.PrimValue)
			if !ok {
				return in, ir.Schemaf(opName, "argument %q must be a static scalar value, got %s", spec.Name, arg)
			}
			in.scalars[ii] = value
		case ir.RoleTensors, ir.RoleIndicesTuple:
			if !argShape.IsTuple() {
				return in, ir.Schemaf(opName, "argument %q must be a tuple of tensors, got %s", spec.Name, argShape)
			}
			for jj, element := range argShape.TupleShapes {
				if element.IsTuple() {
					return in, ir.Schemaf(opName, "element #%d of argument %q must be a tensor, got %s", jj, spec.Name, element)
				}
				if spec.Role == ir.RoleIndicesTuple {
					if err = checkIndexDType(opName, spec.Name, element); err != nil {
						return
					}
				}
			}
			in.lists[ii] = argShape.TupleShapes
		default:
			if argShape.IsTuple() {
				return in, ir.Schemaf(opName, "argument %q must be a tensor, got %s", spec.Name, argShape)
			}
			if spec.Role == ir.RoleIndices {
				if err = checkIndexDType(opName, spec.Name, argShape); err != nil {
					return
				}
			}
			in.shapes[ii] = argShape
		}
	}
	return
}

// checkIndexDType returns a SchemaError if the dtype is known and is not an integer.
func checkIndexDType(op, name string, shape shapes.Shape) error {
	if shape.HasKnownDType() && !shape.DType.IsInt() {
		return ir.Schemaf(op, "%s must have an integer dtype, got %s", name, shape.DType)
	}
	return nil
}

// peerDType returns the common dtype of peer operands, ignoring unknown dtypes.
// It returns a ShapeError if two known dtypes differ.
func peerDType(op string, operands ...shapes.Shape) (dtypes.DType, error) {
	dtype := dtypes.InvalidDType
	for ii, operand := range operands {
		if !operand.HasKnownDType() {
			continue
		}
		if dtype == dtypes.InvalidDType {
			dtype = operand.DType
			continue
		}
		if operand.DType != dtype {
			return dtype, ir.Shapef(op, "mismatched dtypes: %s and %s (operand #%d)", dtype, operand.DType, ii)
		}
	}
	return dtype, nil
}

// adjustAxis resolves a negative axis against rank, and returns a ShapeError if it is out of range.
func adjustAxis(op string, axis, rank int) (int, error) {
	adjusted := axis
	if adjusted < 0 {
		adjusted += rank
	}
	if adjusted < 0 || adjusted >= rank {
		return 0, ir.Shapef(op, "axis %d out of range for rank %d", axis, rank)
	}
	return adjusted, nil
}

// unifyDims merges two dimensions that must be equal: it returns a ShapeError if they provably differ,
// and whether their equality is left to be checked at runtime.
func unifyDims(op string, what string, d1, d2 shapes.Dim) (dim shapes.Dim, deferred bool, err error) {
	switch d1.Compare(d2) {
	case shapes.No:
		return d1, false, ir.Shapef(op, "%s: dimensions %s and %s don't match", what, d1, d2)
	case shapes.Yes:
		return d1, false, nil
	}
	return d1.Unify(d2), true, nil
}

// broadcastDim returns the broadcast of two dimensions, following numpy rules: equal dimensions,
// or one of them is 1. It returns a ShapeError if they are provably not broadcastable.
func broadcastDim(op string, d1, d2 shapes.Dim) (dim shapes.Dim, deferred bool, err error) {
	switch {
	case d1.IsValue(1):
		return d2, false, nil
	case d2.IsValue(1):
		return d1, false, nil
	}
	switch d1.Compare(d2) {
	case shapes.Yes:
		return d1, false, nil
	case shapes.No:
		return d1, false, ir.Shapef(op, "dimensions %s and %s are not broadcastable", d1, d2)
	}
	// One of them may still be 1 at runtime.
	if d1.IsStatic() {
		return d1, true, nil
	}
	if d2.IsStatic() {
		return d2, true, nil
	}
	// Also two unknown dimensions: they may be different at runtime.
	return shapes.Unknown(), true, nil
}

// broadcastShapes broadcasts the dimensions of all given shapes, aligned from the trailing axis.
// If any rank is unknown, the result has an unknown rank.
func broadcastShapes(op string, operands []shapes.Shape) (dims []shapes.Dim, knownRank bool, deferred bool, err error) {
	for _, operand := range operands {
		if !operand.HasKnownRank() {
			return nil, false, false, nil
		}
	}
	rank := 0
	for _, operand := range operands {
		rank = max(rank, operand.Rank())
	}
	dims = make([]shapes.Dim, rank)
	for ii := range dims {
		dims[ii] = shapes.D(1)
	}
	for _, operand := range operands {
		offset := rank - operand.Rank()
		for axis, dim := range operand.Dimensions {
			var axisDeferred bool
			dims[offset+axis], axisDeferred, err = broadcastDim(op, dims[offset+axis], dim)
			if err != nil {
				return nil, false, false, err
			}
			deferred = deferred || axisDeferred
		}
	}
	return dims, true, deferred, nil
}

func deferredCheck(op ir.OpType, description string) ir.DeferredCheck {
	return ir.DeferredCheck{Op: op.String(), Description: description}
}

// equalDimsCheck is the runtime check of two dimensions that unifyDims couldn't prove equal.
func equalDimsCheck(op ir.OpType, what string, d1, d2 shapes.Dim) ir.DeferredCheck {
	return deferredCheck(op, fmt.Sprintf("%s: dimensions %s and %s must be equal", what, d1, d2))
}

// removeAxes returns the dimensions without the given (already adjusted) axes.
func removeAxes(dims []shapes.Dim, axes []int) []shapes.Dim {
	result := make([]shapes.Dim, 0, len(dims))
	for axis, dim := range dims {
		if !slices.Contains(axes, axis) {
			result = append(result, dim)
		}
	}
	return result
}
