// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package indexmap defines IndexMap, a function from an input index tuple to an output
// index tuple, used to describe layout transformations of tensors.
//
// Output indices are affine expressions of the input indices, extended with floor-division
// and floor-modulo by positive constants -- enough to express tiling and packing layouts:
//
//	// NCHW -> NCHW4c
//	m, err := indexmap.Parse("n, c, h, w => n, c / 4, h, w, c % 4")
//
// Division and modulo are always floor operations, since indices are non-negative.
package indexmap

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/pkg/errors"
)

// Op is the operation of an Expr node.
type Op int

const (
	OpVar Op = iota
	OpConst
	OpAdd
	OpMul
	OpFloorDiv
	OpFloorMod
)

// Expr is one node of an index expression. Expressions are immutable once built.
type Expr struct {
	Op    Op
	Var   int // Input index, for OpVar.
	Const int // Value for OpConst, and the constant operand of OpMul, OpFloorDiv and OpFloorMod.
	X, Y  *Expr
}

// Var returns the expression for the input index ii.
func Var(ii int) *Expr { return &Expr{Op: OpVar, Var: ii} }

// Const returns a constant expression.
func Const(c int) *Expr { return &Expr{Op: OpConst, Const: c} }

// Add returns x + y.
func Add(x, y *Expr) *Expr { return &Expr{Op: OpAdd, X: x, Y: y} }

// Mul returns x * c.
func Mul(x *Expr, c int) *Expr { return &Expr{Op: OpMul, X: x, Const: c} }

// FloorDiv returns floor(x / c).
func FloorDiv(x *Expr, c int) *Expr { return &Expr{Op: OpFloorDiv, X: x, Const: c} }

// FloorMod returns x mod c.
func FloorMod(x *Expr, c int) *Expr { return &Expr{Op: OpFloorMod, X: x, Const: c} }

func (e *Expr) format(names []string) string {
	switch e.Op {
	case OpVar:
		if e.Var >= 0 && e.Var < len(names) {
			return names[e.Var]
		}
		return fmt.Sprintf("i%d", e.Var)
	case OpConst:
		return strconv.Itoa(e.Const)
	case OpAdd:
		return fmt.Sprintf("(%s + %s)", e.X.format(names), e.Y.format(names))
	case OpMul:
		return fmt.Sprintf("%s * %d", e.X.formatOperand(names), e.Const)
	case OpFloorDiv:
		return fmt.Sprintf("%s / %d", e.X.formatOperand(names), e.Const)
	case OpFloorMod:
		return fmt.Sprintf("%s %% %d", e.X.formatOperand(names), e.Const)
	}
	return "<invalid>"
}

// formatOperand formats e as the left operand of a multiplicative operation.
func (e *Expr) formatOperand(names []string) string {
	s := e.format(names)
	if e.Op == OpMul || e.Op == OpFloorDiv || e.Op == OpFloorMod {
		return "(" + s + ")"
	}
	return s
}

func (e *Expr) validate(numInputs int) error {
	if e == nil {
		return errors.New("nil index expression")
	}
	switch e.Op {
	case OpVar:
		if e.Var < 0 || e.Var >= numInputs {
			return errors.Errorf("index expression references input #%d, but the map has %d inputs", e.Var, numInputs)
		}
		return nil
	case OpConst:
		if e.Const < 0 {
			return errors.Errorf("index expression uses negative constant %d", e.Const)
		}
		return nil
	case OpAdd:
		if err := e.X.validate(numInputs); err != nil {
			return err
		}
		return e.Y.validate(numInputs)
	case OpMul:
		if e.Const < 0 {
			return errors.Errorf("index expression multiplies by negative constant %d", e.Const)
		}
		return e.X.validate(numInputs)
	case OpFloorDiv, OpFloorMod:
		if e.Const <= 0 {
			return errors.Errorf("index expression divides by non-positive constant %d", e.Const)
		}
		return e.X.validate(numInputs)
	}
	return errors.Errorf("invalid index expression operation %d", e.Op)
}

// IndexMap maps an input index tuple to an output index tuple.
type IndexMap struct {
	names   []string
	outputs []*Expr
}

// New creates an IndexMap with the given input names (one per input index) and output expressions.
func New(inputNames []string, outputs ...*Expr) (*IndexMap, error) {
	if len(outputs) == 0 {
		return nil, errors.New("index map requires at least one output expression")
	}
	seen := make(map[string]bool, len(inputNames))
	for _, name := range inputNames {
		if !token.IsIdentifier(name) {
			return nil, errors.Errorf("invalid index map input name %q", name)
		}
		if seen[name] {
			return nil, errors.Errorf("index map input name %q defined more than once", name)
		}
		seen[name] = true
	}
	for ii, output := range outputs {
		if err := output.validate(len(inputNames)); err != nil {
			return nil, errors.WithMessagef(err, "output #%d of index map", ii)
		}
	}
	return &IndexMap{
		names:   append([]string(nil), inputNames...),
		outputs: append([]*Expr(nil), outputs...),
	}, nil
}

// Identity returns the identity map for the given rank.
func Identity(rank int) *IndexMap {
	names := make([]string, rank)
	outputs := make([]*Expr, rank)
	for ii := range rank {
		names[ii] = fmt.Sprintf("i%d", ii)
		outputs[ii] = Var(ii)
	}
	return &IndexMap{names: names, outputs: outputs}
}

// NumInputs returns the number of input indices of the map.
func (m *IndexMap) NumInputs() int { return len(m.names) }

// NumOutputs returns the number of output indices of the map.
func (m *IndexMap) NumOutputs() int { return len(m.outputs) }

// String returns the map in the same format accepted by Parse.
func (m *IndexMap) String() string {
	parts := make([]string, len(m.outputs))
	for ii, output := range m.outputs {
		parts[ii] = output.format(m.names)
	}
	return fmt.Sprintf("%s => %s", strings.Join(m.names, ", "), strings.Join(parts, ", "))
}

// Apply maps a concrete input index to the output index.
func (m *IndexMap) Apply(indices ...int) ([]int, error) {
	if len(indices) != m.NumInputs() {
		return nil, errors.Errorf("index map %q takes %d indices, %d given", m, m.NumInputs(), len(indices))
	}
	results := make([]int, len(m.outputs))
	for ii, output := range m.outputs {
		results[ii] = output.eval(indices)
	}
	return results, nil
}

func (e *Expr) eval(indices []int) int {
	switch e.Op {
	case OpVar:
		return indices[e.Var]
	case OpConst:
		return e.Const
	case OpAdd:
		return e.X.eval(indices) + e.Y.eval(indices)
	case OpMul:
		return e.X.eval(indices) * e.Const
	case OpFloorDiv:
		return e.X.eval(indices) / e.Const
	case OpFloorMod:
		return e.X.eval(indices) % e.Const
	}
	return 0
}

// extent returns the number of distinct values the expression can take, when each input index
// ranges over [0, dims[ii]). It is the maximum value plus one.
func (e *Expr) extent(dims []shapes.Dim) shapes.Dim {
	one := shapes.D(1)
	switch e.Op {
	case OpVar:
		return dims[e.Var]
	case OpConst:
		return shapes.D(e.Const + 1)
	case OpAdd:
		x, y := e.X.extent(dims), e.Y.extent(dims)
		if x.IsValue(0) || y.IsValue(0) {
			return shapes.D(0)
		}
		return x.Add(y).Sub(one)
	case OpMul:
		x := e.X.extent(dims)
		if x.IsValue(0) {
			return x
		}
		if e.Const == 0 {
			return one
		}
		return x.Sub(one).Mul(shapes.D(e.Const)).Add(one)
	case OpFloorDiv:
		return e.X.extent(dims).CeilDiv(shapes.D(e.Const))
	case OpFloorMod:
		x := e.X.extent(dims)
		if size, ok := x.Value(); ok {
			return shapes.D(min(size, e.Const))
		}
		return shapes.D(e.Const)
	}
	return shapes.Unknown()
}

// inexactTiling returns Yes if some floor-division in the expression splits a static extent
// that is not a multiple of the divisor.
func (e *Expr) inexactTiling(dims []shapes.Dim) shapes.Tribool {
	switch e.Op {
	case OpVar, OpConst:
		return shapes.No
	case OpAdd:
		x, y := e.X.inexactTiling(dims), e.Y.inexactTiling(dims)
		if x == shapes.Yes || y == shapes.Yes {
			return shapes.Yes
		}
		if x == shapes.Maybe || y == shapes.Maybe {
			return shapes.Maybe
		}
		return shapes.No
	case OpMul:
		return e.X.inexactTiling(dims)
	case OpFloorDiv:
		inner := e.X.inexactTiling(dims)
		if inner == shapes.Yes {
			return shapes.Yes
		}
		size, ok := e.X.extent(dims).Value()
		if !ok {
			return shapes.Maybe
		}
		if size%e.Const != 0 {
			return shapes.Yes
		}
		return inner
	case OpFloorMod:
		return e.X.inexactTiling(dims)
	}
	return shapes.Maybe
}

// MapShape returns the output dimensions of the map when applied to a tensor with the given
// input dimensions, and whether the mapping requires implicit padding: that happens when the
// output holds more elements than the input, for instance splitting an axis of 10 elements in
// tiles of 4.
//
// Padding is Maybe when it can't be decided because of symbolic dimensions.
func (m *IndexMap) MapShape(dims []shapes.Dim) (output []shapes.Dim, padding shapes.Tribool, err error) {
	if len(dims) != m.NumInputs() {
		err = errors.Errorf("index map %q takes %d input axes, but the shape has %d", m, m.NumInputs(), len(dims))
		return
	}
	output = make([]shapes.Dim, len(m.outputs))
	padding = shapes.No
	for ii, expr := range m.outputs {
		output[ii] = expr.extent(dims)
		switch expr.inexactTiling(dims) {
		case shapes.Yes:
			padding = shapes.Yes
		case shapes.Maybe:
			if padding == shapes.No {
				padding = shapes.Maybe
			}
		}
	}

	// With static shapes the element count decides.
	inputSize := shapes.MakeDims(dtypes.InvalidDType, dims...).Size()
	outputSize := shapes.MakeDims(dtypes.InvalidDType, output...).Size()
	inSize, inOk := inputSize.Value()
	outSize, outOk := outputSize.Value()
	if inOk && outOk {
		if outSize > inSize {
			padding = shapes.Yes
		} else {
			padding = shapes.No
		}
	}
	return
}

// Parse an index map from its text form: a comma-separated list of input names, "=>",
// and a comma-separated list of output expressions using +, *, / (floor division) and % (floor modulo).
//
// Example: "n, c, h, w => n, c / 4, h, w, c % 4".
func Parse(text string) (*IndexMap, error) {
	lhs, rhs, found := strings.Cut(text, "=>")
	if !found {
		return nil, errors.Errorf("invalid index map %q: missing \"=>\" between inputs and outputs", text)
	}
	var names []string
	if strings.TrimSpace(lhs) != "" {
		for _, name := range strings.Split(lhs, ",") {
			names = append(names, strings.TrimSpace(name))
		}
	}
	nameToIndex := make(map[string]int, len(names))
	for ii, name := range names {
		nameToIndex[name] = ii
	}

	// Outputs are parsed as arguments of a Go call expression.
	node, err := parser.ParseExpr("f(" + rhs + ")")
	if err != nil {
		return nil, errors.Wrapf(err, "invalid index map %q", text)
	}
	call, ok := node.(*ast.CallExpr)
	if !ok {
		return nil, errors.Errorf("invalid index map %q: failed to parse output expressions", text)
	}
	outputs := make([]*Expr, len(call.Args))
	for ii, arg := range call.Args {
		outputs[ii], err = convertAST(arg, nameToIndex)
		if err != nil {
			return nil, errors.WithMessagef(err, "invalid output #%d of index map %q", ii, text)
		}
	}
	return New(names, outputs...)
}

func convertAST(node ast.Expr, nameToIndex map[string]int) (*Expr, error) {
	switch n := node.(type) {
	case *ast.ParenExpr:
		return convertAST(n.X, nameToIndex)
	case *ast.Ident:
		ii, found := nameToIndex[n.Name]
		if !found {
			return nil, errors.Errorf("unknown index variable %q", n.Name)
		}
		return Var(ii), nil
	case *ast.BasicLit:
		if n.Kind != token.INT {
			return nil, errors.Errorf("only integer constants are allowed, got %s", n.Value)
		}
		c, err := strconv.Atoi(n.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid constant %s", n.Value)
		}
		return Const(c), nil
	case *ast.BinaryExpr:
		x, err := convertAST(n.X, nameToIndex)
		if err != nil {
			return nil, err
		}
		y, err := convertAST(n.Y, nameToIndex)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case token.ADD:
			return Add(x, y), nil
		case token.MUL:
			if y.Op == OpConst {
				return Mul(x, y.Const), nil
			}
			if x.Op == OpConst {
				return Mul(y, x.Const), nil
			}
			return nil, errors.New("multiplication requires a constant operand")
		case token.QUO, token.REM:
			if y.Op != OpConst {
				return nil, errors.Errorf("the right operand of %s must be a constant", n.Op)
			}
			if n.Op == token.QUO {
				return FloorDiv(x, y.Const), nil
			}
			return FloorMod(x, y.Const), nil
		}
		return nil, errors.Errorf("operation %s not supported in index maps", n.Op)
	}
	return nil, errors.Errorf("unsupported index expression of type %T", node)
}
