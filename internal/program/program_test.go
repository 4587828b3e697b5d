// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package program

import (
	"strings"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/gomlx/tensorir/pkg/ir"
	"github.com/google/go-cmp/cmp"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

const exampleProgram = `
vars:
  - {name: x, dtype: float32, shape: [batch, 12]}
  - {name: s, shape_value: [batch, 3, 4]}
  - {name: idx, dtype: int64, shape: [5, 1]}
  - {name: on, dtype: float32, value: 1}
  - {name: off, dtype: float32, value: 0}
nodes:
  - {name: y, op: reshape, args: [x, s]}
  - {name: parts, op: split, args: [y], attrs: {indices_or_sections: 2, axis: 2}}
  - {name: first, op: permute_dims, args: ["parts[0]"], attrs: {axes: [2, 0, 1]}}
  - {name: both, op: concat, args: [[first, first]], attrs: {axis: 0}}
  - {name: g, op: gather_nd, args: [x, idx]}
  - {name: hot, op: one_hot, args: [idx, on, off], attrs: {depth: 3}}
`

func shapesOf(results []Result) map[string]string {
	m := make(map[string]string, len(results))
	for _, r := range results {
		m[r.Name] = r.Node.Shape().String()
	}
	return m
}

func TestBuild(t *testing.T) {
	p := must.M1(Parse(strings.NewReader(exampleProgram)))
	require.Len(t, p.Vars, 5)
	require.Len(t, p.Nodes, 6)

	results, err := p.Build(nil)
	require.NoError(t, err)
	want := map[string]string{
		"y":     "(Float32)[batch 3 4]",
		"parts": "Tuple<(Float32)[batch 3 2], (Float32)[batch 3 2]>",
		"first": "(Float32)[2 batch 3]",
		"both":  "(Float32)[4 batch 3]",
		"g":     "(Float32)[5 12]",
		"hot":   "(Float32)[5 1 3]",
	}
	if diff := cmp.Diff(want, shapesOf(results)); diff != "" {
		t.Errorf("unexpected shapes (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"parts[0]"}, results[2].Args)
	require.Equal(t, []string{"(first, first)"}, results[3].Args)
	require.Len(t, results[4].Call().Deferred(), 1)

	// Bindings are applied to the variables before building.
	results, err = p.Build(shapes.Bindings{"batch": 8})
	require.NoError(t, err)
	require.Equal(t, "(Float32)[4 8 3]", shapesOf(results)["both"])
}

func TestBuildErrors(t *testing.T) {
	build := func(text string) error {
		p, err := Parse(strings.NewReader(text))
		if err != nil {
			return err
		}
		_, err = p.Build(nil)
		return err
	}

	// Unknown fields are rejected.
	err := build("vars:\n  - {name: x, dtype: float32, shap: [2]}\n")
	require.Error(t, err)
	require.Contains(t, err.Error(), "shap")

	err = build("")
	require.ErrorContains(t, err, "empty program")

	// Errors of the operators keep their kind.
	err = build(`
vars: [{name: x, dtype: float32, shape: [2, 3]}]
nodes: [{name: y, op: flip, args: [x], attrs: {axis: 2}}]`)
	require.True(t, ir.IsShapeError(err))
	require.Contains(t, err.Error(), `node "y"`)

	err = build(`
vars: [{name: x, dtype: float32, shape: [2, 3]}]
nodes: [{name: y, op: scatter_nd, args: [x, x, x], attrs: {reduction: xor}}]`)
	require.True(t, ir.IsSchemaError(err))

	err = build(`
vars: [{name: x, dtype: float32, shape: [2, 3]}]
nodes: [{name: y, op: flatten, args: [z]}]`)
	require.ErrorContains(t, err, `undefined name "z"`)

	err = build(`
vars: [{name: x, dtype: float32, shape: [2, 3]}, {name: x, shape_rank: 2}]`)
	require.ErrorContains(t, err, "more than once")

	err = build(`
vars: [{name: x, dtype: float32, shape: [2, 3], value: 1}]`)
	require.ErrorContains(t, err, "exactly one")

	err = build(`
vars: [{name: x, dtype: float42, shape: [2, 3]}]`)
	require.ErrorContains(t, err, "unknown dtype")

	err = build(`
vars: [{name: x, value: 1}]`)
	require.ErrorContains(t, err, "require a dtype")

	err = build(`
vars: [{name: x, dtype: float32, shape: [2, -3]}]`)
	require.ErrorContains(t, err, "negative")

	err = build(`
vars: [{name: x, dtype: float32, shape: [2, 3]}]
nodes: [{name: y, op: flatten, args: ["x[0]"]}]`)
	require.Error(t, err)
}

func TestVarKinds(t *testing.T) {
	p := must.M1(Parse(strings.NewReader(`
vars:
  - {name: u, unknown_rank: true}
  - {name: s, shape_rank: -1}
  - {name: t, dtype: int32, shape: ["?", n]}
  - {name: h, dtype: f16, value: 0.5}
nodes:
  - {name: y, op: reshape, args: [t, s]}
  - {name: z, op: flatten, args: [u]}
`)))
	results, err := p.Build(nil)
	require.NoError(t, err)
	require.Equal(t, "(Int32)[...]", results[0].Node.Shape().String())
	require.Equal(t, "(?)[?]", results[1].Node.Shape().String())
}

func TestParseDType(t *testing.T) {
	for name, want := range map[string]dtypes.DType{
		"float32": dtypes.Float32,
		"Float32": dtypes.Float32,
		"F32":     dtypes.Float32,
		"int64":   dtypes.Int64,
		"bool":    dtypes.Bool,
		"":        dtypes.InvalidDType,
	} {
		got, err := ParseDType(name)
		require.NoError(t, err, "dtype %q", name)
		require.Equal(t, want, got, "dtype %q", name)
	}
	_, err := ParseDType("float42")
	require.Error(t, err)
}
