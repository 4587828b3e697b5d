// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ir defines the immutable expression nodes of the tensor IR, the operator registry and
// the error taxonomy used when building nodes.
//
// Nodes are created with their type (a shapes.Shape) already inferred, and are never changed
// afterwards. Operator nodes (Call) are built by the factories in package manipulate, which
// validate the arguments and run the shape inference in package inference.
package ir

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Expr is an immutable node of the IR. It is a closed set of types: Var, ShapeExpr, ShapeVar,
// PrimValue, Tuple, TupleGetItem and Call.
type Expr interface {
	// Shape returns the type of the node: a tensor shape (dtype and dimensions), or a tuple of them.
	Shape() shapes.Shape

	// String returns a short textual representation of the node.
	String() string

	isExpr()
}

// ShapeValued is implemented by the nodes whose value is a shape: ShapeExpr and ShapeVar.
// Operators like reshape and broadcast_to take their target shape from it.
type ShapeValued interface {
	Expr

	// ShapeValue returns the shape held by the node. The DType is not used.
	ShapeValue() shapes.Shape
}

// Var is a named input of the graph, with a user given type.
type Var struct {
	ID    uuid.UUID
	Name  string
	shape shapes.Shape
}

var _ Expr = (*Var)(nil)

// NewVar returns a new variable with a unique ID.
func NewVar(name string, shape shapes.Shape) *Var {
	return &Var{ID: uuid.New(), Name: name, shape: shape.Clone()}
}

// Shape implements Expr.
func (v *Var) Shape() shapes.Shape { return v.shape.Clone() }

// String implements Expr.
func (v *Var) String() string {
	if v.Name == "" {
		return "%" + v.ID.String()[:8]
	}
	return v.Name
}

func (v *Var) isExpr() {}

// ShapeExpr is a literal shape value, e.g. the target of a reshape.
// Its type is the one of a rank-1 Int64 tensor, with one element per dimension.
type ShapeExpr struct {
	value shapes.Shape
}

var _ ShapeValued = (*ShapeExpr)(nil)

// NewShapeExpr returns a literal shape value with the given dimensions.
func NewShapeExpr(dims ...shapes.Dim) *ShapeExpr {
	return &ShapeExpr{value: shapes.MakeDims(dtypes.InvalidDType, dims...)}
}

// Shape implements Expr.
func (s *ShapeExpr) Shape() shapes.Shape { return shapes.Make(dtypes.Int64, len(s.value.Dimensions)) }

// ShapeValue implements ShapeValued.
func (s *ShapeExpr) ShapeValue() shapes.Shape { return s.value.Clone() }

// String implements Expr.
func (s *ShapeExpr) String() string {
	parts := make([]string, len(s.value.Dimensions))
	for ii, dim := range s.value.Dimensions {
		parts[ii] = dim.String()
	}
	return fmt.Sprintf("shape(%s)", strings.Join(parts, ", "))
}

func (s *ShapeExpr) isExpr() {}

// ShapeVar is a shape value only known at runtime. Only its number of dimensions may be known.
type ShapeVar struct {
	Name string
	ndim int
}

var _ ShapeValued = (*ShapeVar)(nil)

// NewShapeVar returns a runtime shape value with ndim dimensions. Use shapes.UnknownRank if the
// number of dimensions is not known.
func NewShapeVar(name string, ndim int) *ShapeVar {
	if ndim < 0 && ndim != shapes.UnknownRank {
		exceptions.Panicf("ir.NewShapeVar(%q, %d): invalid number of dimensions", name, ndim)
	}
	return &ShapeVar{Name: name, ndim: ndim}
}

// Shape implements Expr.
func (s *ShapeVar) Shape() shapes.Shape {
	if s.ndim == shapes.UnknownRank {
		return shapes.MakeDims(dtypes.Int64, shapes.Unknown())
	}
	return shapes.Make(dtypes.Int64, s.ndim)
}

// ShapeValue implements ShapeValued.
func (s *ShapeVar) ShapeValue() shapes.Shape {
	return shapes.MakeUnknownDims(dtypes.InvalidDType, s.ndim)
}

// String implements Expr.
func (s *ShapeVar) String() string { return s.Name }

func (s *ShapeVar) isExpr() {}

// PrimValue is a static scalar value, e.g. the on_value of one_hot or the pad_value of layout_transform.
type PrimValue struct {
	DType dtypes.DType
	Value any
}

var _ Expr = PrimValue{}

// NewPrimValue wraps a Go scalar value. It returns an error if the Go type has no corresponding dtype.
func NewPrimValue(value any) (PrimValue, error) {
	if value == nil {
		return PrimValue{}, errors.New("ir.NewPrimValue(nil): a value is required")
	}
	dtype := dtypes.FromAny(value)
	if dtype == dtypes.InvalidDType {
		return PrimValue{}, errors.Errorf("ir.NewPrimValue(%v): unsupported Go type %T", value, value)
	}
	return PrimValue{DType: dtype, Value: value}, nil
}

// PrimValueOf converts a number to a PrimValue of the given dtype.
func PrimValueOf(dtype dtypes.DType, value float64) (PrimValue, error) {
	var v any
	switch dtype {
	case dtypes.Bool:
		v = value != 0
	case dtypes.Int8:
		v = int8(value)
	case dtypes.Int16:
		v = int16(value)
	case dtypes.Int32:
		v = int32(value)
	case dtypes.Int64:
		v = int64(value)
	case dtypes.Uint8:
		v = uint8(value)
	case dtypes.Uint16:
		v = uint16(value)
	case dtypes.Uint32:
		v = uint32(value)
	case dtypes.Uint64:
		v = uint64(value)
	case dtypes.Float16:
		v = float16.Fromfloat32(float32(value))
	case dtypes.BFloat16:
		v = bfloat16.FromFloat64(value)
	case dtypes.Float32:
		v = float32(value)
	case dtypes.Float64:
		v = value
	case dtypes.Complex64:
		v = complex(float32(value), 0)
	case dtypes.Complex128:
		v = complex(value, 0)
	default:
		return PrimValue{}, errors.Errorf("ir.PrimValueOf(%s, %g): dtype not supported", dtype, value)
	}
	return PrimValue{DType: dtype, Value: v}, nil
}

// Shape implements Expr: PrimValue is a scalar.
func (p PrimValue) Shape() shapes.Shape { return shapes.Make(p.DType) }

// String implements Expr.
func (p PrimValue) String() string {
	return fmt.Sprintf("%v:%s", p.Value, p.DType)
}

func (p PrimValue) isExpr() {}

// Tuple groups an ordered list of nodes.
type Tuple struct {
	fields []Expr
}

var _ Expr = (*Tuple)(nil)

// NewTuple returns a tuple with the given fields.
func NewTuple(fields ...Expr) *Tuple {
	return &Tuple{fields: slices.Clone(fields)}
}

// Fields returns a copy of the list of fields.
func (t *Tuple) Fields() []Expr { return slices.Clone(t.fields) }

// Len returns the number of fields.
func (t *Tuple) Len() int { return len(t.fields) }

// Shape implements Expr.
func (t *Tuple) Shape() shapes.Shape {
	elements := make([]shapes.Shape, len(t.fields))
	for ii, field := range t.fields {
		elements[ii] = field.Shape()
	}
	return shapes.MakeTuple(elements)
}

// String implements Expr.
func (t *Tuple) String() string {
	parts := make([]string, len(t.fields))
	for ii, field := range t.fields {
		parts[ii] = field.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t *Tuple) isExpr() {}

// TupleGetItem selects one element of a tuple-typed node, like the outputs of split or meshgrid.
type TupleGetItem struct {
	tuple Expr
	index int
	shape shapes.Shape
}

var _ Expr = (*TupleGetItem)(nil)

// NewTupleGetItem returns a node selecting the element index of tuple. Negative indices count from the end.
func NewTupleGetItem(tuple Expr, index int) (*TupleGetItem, error) {
	if tuple == nil {
		return nil, errors.New("TupleGetItem requires a tuple, got nil")
	}
	tupleShape := tuple.Shape()
	if !tupleShape.IsTuple() {
		return nil, errors.Errorf("TupleGetItem requires a tuple, got %s of type %s", tuple, tupleShape)
	}
	n := tupleShape.TupleSize()
	adjusted := index
	if adjusted < 0 {
		adjusted += n
	}
	if adjusted < 0 || adjusted >= n {
		return nil, errors.Errorf("TupleGetItem index %d out of range for tuple of %d elements", index, n)
	}
	return &TupleGetItem{tuple: tuple, index: adjusted, shape: tupleShape.TupleShapes[adjusted]}, nil
}

// Tuple returns the tuple-typed node it selects from.
func (g *TupleGetItem) Tuple() Expr { return g.tuple }

// Index returns the (non-negative) index of the selected element.
func (g *TupleGetItem) Index() int { return g.index }

// Shape implements Expr.
func (g *TupleGetItem) Shape() shapes.Shape { return g.shape.Clone() }

// String implements Expr.
func (g *TupleGetItem) String() string { return fmt.Sprintf("%s[%d]", g.tuple, g.index) }

func (g *TupleGetItem) isExpr() {}

// Call is the application of an operator to its arguments and attributes, with the inferred type attached.
type Call struct {
	op       OpType
	args     []Expr
	attrs    Attrs
	shape    shapes.Shape
	deferred []DeferredCheck
}

var _ Expr = (*Call)(nil)

// NewCall creates the node for an operator application, with its already inferred shape.
//
// It doesn't validate anything: it is meant to be used by the node builders, after inference.
// It panics if attrs doesn't belong to op.
func NewCall(op OpType, args []Expr, attrs Attrs, shape shapes.Shape, deferred []DeferredCheck) *Call {
	if attrs == nil || attrs.OpType() != op {
		exceptions.Panicf("ir.NewCall(%s): attributes %T don't belong to the operator", op, attrs)
	}
	return &Call{
		op:       op,
		args:     slices.Clone(args),
		attrs:    CloneAttrs(attrs),
		shape:    shape.Clone(),
		deferred: slices.Clone(deferred),
	}
}

// Op returns the operator.
func (c *Call) Op() OpType { return c.op }

// Args returns a copy of the arguments.
func (c *Call) Args() []Expr { return slices.Clone(c.args) }

// Attrs returns a copy of the attributes record of the operator.
func (c *Call) Attrs() Attrs { return CloneAttrs(c.attrs) }

// Deferred returns the checks left to the execution stage.
func (c *Call) Deferred() []DeferredCheck { return slices.Clone(c.deferred) }

// Shape implements Expr.
func (c *Call) Shape() shapes.Shape { return c.shape.Clone() }

// String implements Expr.
func (c *Call) String() string {
	parts := make([]string, 0, len(c.args)+1)
	for _, arg := range c.args {
		parts = append(parts, arg.String())
	}
	if attrs := FormatAttrs(c.attrs); attrs != "" {
		parts = append(parts, attrs)
	}
	return fmt.Sprintf("%s(%s)", c.op, strings.Join(parts, ", "))
}

func (c *Call) isExpr() {}
