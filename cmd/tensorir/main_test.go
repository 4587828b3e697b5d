// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"testing"

	"github.com/gomlx/tensorir/pkg/ir"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with the given arguments and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"))
}

func TestRootCommand(t *testing.T) {
	t.Setenv(FormatEnv, "")
	cmd := newRootCommand()
	assert.Equal(t, "tensorir", cmd.Use)
	for _, name := range []string{"infer", "ops"} {
		subCmd, _, err := cmd.Find([]string{name})
		require.NoError(t, err, "command %s should exist", name)
		assert.Equal(t, name, subCmd.Name())
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	t.Setenv(FormatEnv, "table")
	formatFlag = newRootCommand().PersistentFlags().Lookup("format")
	assert.Equal(t, "table", formatFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "ops", "--format=json")
	require.ErrorContains(t, err, `invalid format "json"`)
}

func TestInfer(t *testing.T) {
	g := newGoldie(t)

	out, err := run(t, "infer", "--format=text", "testdata/example.yaml")
	require.NoError(t, err)
	g.Assert(t, "infer_example", []byte(out))

	out, err = run(t, "infer", "--format=text", "--bind", "batch=8", "testdata/example.yaml")
	require.NoError(t, err)
	g.Assert(t, "infer_example_bound", []byte(out))
}

func TestInferTable(t *testing.T) {
	out, err := run(t, "infer", "--format=table", "--bind", "batch=8", "testdata/example.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Deferred Checks")
	assert.Contains(t, out, "(Float32)[4 8 3]")
	assert.Contains(t, out, "split(y, indices_or_sections=2, axis=2)")
	assert.Contains(t, out, "index values must be within the bounds")
	assert.Contains(t, out, "6 nodes, 1 deferred checks")

	// Symbolic sizes are not known.
	out, err = run(t, "infer", "--format=table", "testdata/example.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "(Float32)[batch 3 4]")
}

func TestInferErrors(t *testing.T) {
	_, err := run(t, "infer", "testdata/invalid.yaml")
	require.Error(t, err)
	assert.True(t, ir.IsShapeError(err))

	_, err = run(t, "infer", "testdata/missing.yaml")
	require.ErrorContains(t, err, "failed to open program")

	_, err = run(t, "infer", "--bind", "batch", "testdata/example.yaml")
	require.ErrorContains(t, err, "invalid binding")

	_, err = run(t, "infer", "--bind", "batch=8", "--bind", "batch=4", "testdata/example.yaml")
	require.ErrorContains(t, err, "conflicting values")

	_, err = run(t, "infer")
	require.Error(t, err)
}

func TestOps(t *testing.T) {
	out, err := run(t, "ops", "--format=text")
	require.NoError(t, err)
	assert.Contains(t, out, "gather_nd(data: data, indices: indices)\n  batch_dims: int = 0\n")
	assert.Contains(t, out, "layout_transform(x: data)\n  index_map: index_map (required)\n")
	assert.Contains(t, out, "  reduction: string = update {update, add, mul, max, min}\n")
	assert.Contains(t, out, "one_hot(indices: indices, on_value: scalar, off_value: scalar)\n")
	for _, def := range ir.Defs() {
		assert.Contains(t, out, def.Name()+"(")
	}

	out, err = run(t, "ops", "--format=table")
	require.NoError(t, err)
	assert.Contains(t, out, "Attributes")
	assert.Contains(t, out, "meshgrid")
}
