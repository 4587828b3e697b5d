// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/tensorir/internal/program"
	"github.com/gomlx/tensorir/pkg/core/shapes"
	"github.com/gomlx/tensorir/pkg/ir"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func newInferCommand(opts *rootOptions) *cobra.Command {
	var bindingFlags []string
	cmd := &cobra.Command{
		Use:   "infer FILE",
		Short: "Build the nodes of a program and print their inferred shapes",
		Long: `infer reads a YAML program (variables and operator applications), builds every node in
order and prints the shape inferred for each one. Checks that can only be verified at execution
time are listed under their node.

Symbolic dimensions can be given a value with --bind name=value (repeatable).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			bindings, err := parseBindings(bindingFlags)
			if err != nil {
				return err
			}
			p, err := program.Load(args[0])
			if err != nil {
				return err
			}
			results, err := p.Build(bindings)
			if err != nil {
				return err
			}
			klog.V(1).Infof("built %d nodes from %s", len(results), args[0])
			if opts.Format == "table" {
				return writeResultsTable(cmd.OutOrStdout(), results)
			}
			return writeResultsText(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringArrayVar(&bindingFlags, "bind", nil, "value of a symbolic dimension, as name=value")
	return cmd
}

func parseBindings(flags []string) (shapes.Bindings, error) {
	bindings := make(shapes.Bindings, len(flags))
	for _, text := range flags {
		b, err := shapes.ParseBinding(text)
		if err != nil {
			return nil, err
		}
		if err = bindings.Merge(b); err != nil {
			return nil, err
		}
	}
	return bindings, nil
}

// callText formats a node as "op(args..., attrs...)", using the argument names as written in the program.
func callText(r program.Result) string {
	parts := append([]string(nil), r.Args...)
	if call := r.Call(); call != nil {
		if attrs := ir.FormatAttrs(call.Attrs()); attrs != "" {
			parts = append(parts, attrs)
		}
	}
	return fmt.Sprintf("%s(%s)", r.Op, strings.Join(parts, ", "))
}

func deferredOf(r program.Result) []ir.DeferredCheck {
	if call := r.Call(); call != nil {
		return call.Deferred()
	}
	return nil
}

func writeResultsText(w io.Writer, results []program.Result) error {
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%s = %s : %s\n", r.Name, callText(r), r.Node.Shape()); err != nil {
			return err
		}
		for _, check := range deferredOf(r) {
			if _, err := fmt.Fprintf(w, "  deferred: %s\n", check); err != nil {
				return err
			}
		}
	}
	return nil
}

// sizeColumns returns the number of elements and bytes of a shape, or "?" if not static.
func sizeColumns(shape shapes.Shape) (elements, bytes string) {
	elements, bytes = "?", "?"
	if !shape.HasKnownRank() {
		return
	}
	size, ok := shape.Size().Value()
	if !ok {
		return
	}
	elements = humanize.Comma(int64(size))
	if shape.HasKnownDType() {
		bytes = humanize.Bytes(uint64(size) * uint64(shape.DType.Size()))
	}
	return
}

func writeResultsTable(w io.Writer, results []program.Result) error {
	table := newTable([]string{"Node", "Operator", "Shape", "Elements", "Bytes", "Deferred Checks"}, 3, 4)
	var numDeferred int
	for _, r := range results {
		shape := r.Node.Shape()
		elements, bytes := sizeColumns(shape)
		deferred := deferredOf(r)
		numDeferred += len(deferred)
		descriptions := make([]string, len(deferred))
		for ii, check := range deferred {
			descriptions[ii] = check.Description
		}
		table.Row(r.Name, callText(r), shape.String(), elements, bytes, strings.Join(descriptions, "\n"))
	}
	if _, err := fmt.Fprintln(w, table.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s nodes, %s deferred checks\n",
		humanize.Comma(int64(len(results))), humanize.Comma(int64(numDeferred)))
	return err
}
