// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package program loads the YAML programs used by the tensorir command line tool: a list of
// variables with their types, and a list of operator applications over them, built in order.
//
// Example:
//
//	vars:
//	  - {name: x, dtype: float32, shape: [batch, 12]}
//	  - {name: s, shape_value: [batch, 3, 4]}
//	  - {name: on, dtype: float32, value: 1}
//	nodes:
//	  - {name: y, op: reshape, args: [x, s]}
//	  - {name: parts, op: split, args: [y], attrs: {indices_or_sections: 2, axis: 2}}
//	  - {name: both, op: concat, args: [["parts[0]", "parts[1]"]], attrs: {axis: 0}}
//
// Shape entries are either integers, the name of a symbolic dimension or "?" for an unknown
// dimension. An argument is the name of a variable or node, "name[i]" for an element of a
// tuple-typed node (quoted, since brackets are part of the YAML syntax), or a list of those for
// operators taking a list of tensors.
package program

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/gomlx/tensorir/pkg/ir"
	"github.com/gomlx/tensorir/pkg/ir/manipulate"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

// Program as read from a YAML file.
type Program struct {
	Vars  []VarDecl  `yaml:"vars"`
	Nodes []NodeDecl `yaml:"nodes"`
}

// VarDecl declares one input of the program. Exactly one of Shape, UnknownRank, ShapeValue,
// ShapeRank or Value must be set:
//
//   - Shape or UnknownRank: a tensor variable, with an optional DType.
//   - ShapeValue: a literal shape value, as used by reshape or broadcast_to.
//   - ShapeRank: a shape variable with the given number of dimensions (-1 if unknown).
//   - Value: a scalar constant of the given DType.
type VarDecl struct {
	Name        string   `yaml:"name"`
	DType       string   `yaml:"dtype,omitempty"`
	Shape       []any    `yaml:"shape,omitempty"`
	UnknownRank bool     `yaml:"unknown_rank,omitempty"`
	ShapeValue  []any    `yaml:"shape_value,omitempty"`
	ShapeRank   *int     `yaml:"shape_rank,omitempty"`
	Value       *float64 `yaml:"value,omitempty"`
}

// NodeDecl declares one operator application.
type NodeDecl struct {
	Name  string         `yaml:"name"`
	Op    string         `yaml:"op"`
	Args  []any          `yaml:"args"`
	Attrs map[string]any `yaml:"attrs,omitempty"`
}

// Parse reads a program. Unknown fields are rejected.
func Parse(r io.Reader) (*Program, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	p := &Program{}
	if err := decoder.Decode(p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty program")
		}
		return nil, errors.Wrap(err, "failed to parse program")
	}
	return p, nil
}

// Load reads the program from the file in path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open program")
	}
	defer func() { _ = f.Close() }()
	p, err := Parse(f)
	if err != nil {
		return nil, errors.WithMessagef(err, "program %q", path)
	}
	return p, nil
}

// Result of building one node of the program.
type Result struct {
	Name string
	Op   string
	Args []string // Arguments as written in the program.
	Node ir.Expr
}

// Call returns the node's operator application, or nil if the node is not a Call.
func (r Result) Call() *ir.Call {
	call, _ := r.Node.(*ir.Call)
	return call
}

// Build creates the variables and the nodes of the program, in order. The symbolic dimensions
// with a value in bindings are replaced before any node is built.
//
// Errors are annotated with the name of the variable or node: use ir.IsSchemaError and
// ir.IsShapeError to inspect them.
func (p *Program) Build(bindings shapes.Bindings) ([]Result, error) {
	if len(bindings) > 0 {
		klog.V(1).Infof("building program with bindings %s", bindings.Key())
	}
	env := make(map[string]ir.Expr, len(p.Vars)+len(p.Nodes))
	for _, decl := range p.Vars {
		if err := checkName(env, decl.Name); err != nil {
			return nil, err
		}
		v, err := decl.build(bindings)
		if err != nil {
			return nil, errors.WithMessagef(err, "variable %q", decl.Name)
		}
		env[decl.Name] = v
	}

	results := make([]Result, 0, len(p.Nodes))
	for _, decl := range p.Nodes {
		if err := checkName(env, decl.Name); err != nil {
			return nil, err
		}
		args := make([]ir.Expr, len(decl.Args))
		texts := make([]string, len(decl.Args))
		for ii, raw := range decl.Args {
			var err error
			args[ii], texts[ii], err = resolveArg(env, raw)
			if err != nil {
				return nil, errors.WithMessagef(err, "node %q", decl.Name)
			}
		}
		node, err := manipulate.Build(decl.Op, args, decl.Attrs)
		if err != nil {
			return nil, errors.WithMessagef(err, "node %q", decl.Name)
		}
		klog.V(1).Infof("node %s: %s", decl.Name, node.Shape())
		env[decl.Name] = node
		results = append(results, Result{Name: decl.Name, Op: decl.Op, Args: texts, Node: node})
	}
	return results, nil
}

func checkName(env map[string]ir.Expr, name string) error {
	if name == "" {
		return errors.New("missing name of variable or node")
	}
	if strings.ContainsAny(name, "[](), ") {
		return errors.Errorf("invalid name %q", name)
	}
	if _, found := env[name]; found {
		return errors.Errorf("name %q defined more than once", name)
	}
	return nil
}

func (decl VarDecl) build(bindings shapes.Bindings) (ir.Expr, error) {
	kinds := 0
	for _, set := range []bool{decl.Shape != nil || decl.UnknownRank, decl.ShapeValue != nil, decl.ShapeRank != nil, decl.Value != nil} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, errors.New("exactly one of shape (or unknown_rank), shape_value, shape_rank or value must be given")
	}
	dtype, err := ParseDType(decl.DType)
	if err != nil {
		return nil, err
	}
	switch {
	case decl.UnknownRank:
		if decl.Shape != nil {
			return nil, errors.New("shape and unknown_rank are exclusive")
		}
		return ir.NewVar(decl.Name, shapes.MakeUnknownRank(dtype)), nil
	case decl.Shape != nil:
		dims, err := parseDims(decl.Shape)
		if err != nil {
			return nil, err
		}
		return ir.NewVar(decl.Name, shapes.MakeDims(dtype, dims...).Resolve(bindings)), nil
	case decl.ShapeValue != nil:
		dims, err := parseDims(decl.ShapeValue)
		if err != nil {
			return nil, err
		}
		resolved := shapes.MakeDims(dtypes.InvalidDType, dims...).Resolve(bindings)
		return ir.NewShapeExpr(resolved.Dimensions...), nil
	case decl.ShapeRank != nil:
		if *decl.ShapeRank < shapes.UnknownRank {
			return nil, errors.Errorf("invalid shape_rank %d", *decl.ShapeRank)
		}
		return ir.NewShapeVar(decl.Name, *decl.ShapeRank), nil
	default:
		if dtype == dtypes.InvalidDType {
			return nil, errors.New("scalar values require a dtype")
		}
		value, err := ir.PrimValueOf(dtype, *decl.Value)
		if err != nil {
			return nil, err
		}
		return value, nil
	}
}

// ParseDType converts a dtype name (e.g. "float32", "Float32" or "F32") to a DType.
// The empty string is an unknown dtype.
func ParseDType(name string) (dtypes.DType, error) {
	if name == "" {
		return dtypes.InvalidDType, nil
	}
	if dtype, found := dtypes.MapOfNames[name]; found {
		return dtype, nil
	}
	for key, dtype := range dtypes.MapOfNames {
		if strings.EqualFold(key, name) {
			return dtype, nil
		}
	}
	return dtypes.InvalidDType, errors.Errorf("unknown dtype %q", name)
}

func parseDims(entries []any) ([]shapes.Dim, error) {
	dims := make([]shapes.Dim, len(entries))
	for ii, entry := range entries {
		switch v := entry.(type) {
		case int:
			if v < 0 {
				return nil, errors.Errorf("invalid negative dimension %d in %v", v, entries)
			}
			dims[ii] = shapes.D(v)
		case string:
			switch {
			case v == "?":
				dims[ii] = shapes.Unknown()
			case v == "":
				return nil, errors.Errorf("invalid empty dimension name in %v", entries)
			default:
				dims[ii] = shapes.Sym(v)
			}
		default:
			return nil, errors.Errorf("invalid dimension %v (%T) in %v", entry, entry, entries)
		}
	}
	return dims, nil
}

// resolveArg returns the expression for an argument of a node and its text.
func resolveArg(env map[string]ir.Expr, raw any) (ir.Expr, string, error) {
	switch v := raw.(type) {
	case string:
		expr, err := lookup(env, v)
		return expr, v, err
	case []any:
		fields := make([]ir.Expr, len(v))
		texts := make([]string, len(v))
		for ii, element := range v {
			name, ok := element.(string)
			if !ok {
				return nil, "", errors.Errorf("invalid list element %v (%T): lists can only hold names", element, element)
			}
			var err error
			if fields[ii], err = lookup(env, name); err != nil {
				return nil, "", err
			}
			texts[ii] = name
		}
		return ir.NewTuple(fields...), "(" + strings.Join(texts, ", ") + ")", nil
	}
	return nil, "", errors.Errorf("invalid argument %v (%T)", raw, raw)
}

// lookup a name, or a "name[index]" element of a tuple-typed node.
func lookup(env map[string]ir.Expr, text string) (ir.Expr, error) {
	name, indexText, isItem := strings.Cut(strings.TrimSuffix(text, "]"), "[")
	if strings.ContainsAny(name, "[]") || (isItem && !strings.HasSuffix(text, "]")) {
		return nil, errors.Errorf("invalid argument %q", text)
	}
	expr, found := env[name]
	if !found {
		return nil, errors.Errorf("undefined name %q", name)
	}
	if !isItem {
		return expr, nil
	}
	index, err := strconv.Atoi(indexText)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid index in %q", text)
	}
	return manipulate.TupleGetItem(expr, index)
}
