// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gomlx/tensorir/pkg/ir"
	"github.com/spf13/cobra"
)

func newOpsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "ops",
		Short:         "List the registered operators with their arguments and attributes",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format == "table" {
				return writeOpsTable(cmd.OutOrStdout())
			}
			return writeOpsText(cmd.OutOrStdout())
		},
	}
}

func argsText(def *ir.OpDef) string {
	parts := make([]string, len(def.Args))
	for ii, arg := range def.Args {
		parts[ii] = fmt.Sprintf("%s: %s", arg.Name, arg.Role)
	}
	return strings.Join(parts, ", ")
}

// attrText formats an attribute as "name: kind", followed by "(required)", its default value or its
// valid values.
func attrText(spec ir.AttrSpec) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", spec.Name, spec.Kind)
	switch {
	case spec.Required:
		sb.WriteString(" (required)")
	case spec.Default != nil:
		fmt.Fprintf(&sb, " = %v", spec.Default)
	}
	if len(spec.Enum) > 0 {
		fmt.Fprintf(&sb, " {%s}", strings.Join(spec.Enum, ", "))
	}
	return sb.String()
}

func writeOpsText(w io.Writer) error {
	for _, def := range ir.Defs() {
		if _, err := fmt.Fprintf(w, "%s(%s)\n", def.Name(), argsText(def)); err != nil {
			return err
		}
		for _, spec := range def.Attrs {
			if _, err := fmt.Fprintf(w, "  %s\n", attrText(spec)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeOpsTable(w io.Writer) error {
	table := newTable([]string{"Operator", "Arguments", "Attributes"})
	for _, def := range ir.Defs() {
		attrs := make([]string, len(def.Attrs))
		for ii, spec := range def.Attrs {
			attrs[ii] = attrText(spec)
		}
		table.Row(def.Name(), argsText(def), strings.Join(attrs, "\n"))
	}
	_, err := fmt.Fprintln(w, table.Render())
	return err
}
