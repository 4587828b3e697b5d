// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"slices"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// FormatEnv is the environment variable with the default output format.
const FormatEnv = "TENSORIR_FORMAT"

var validFormats = []string{"text", "table"}

// rootOptions holds the flags shared by all commands.
type rootOptions struct {
	Format string
}

func defaultFormat() string {
	if format := os.Getenv(FormatEnv); format != "" {
		return format
	}
	return "text"
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "tensorir",
		Short: "Shape inference for tensor manipulation operators",
		Long: `tensorir builds the tensor manipulation operators (reshape, split, gather_nd, ...) of a
program and reports the shape inferred for each node, including the checks deferred to
execution time because of symbolic dimensions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return errors.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.Format, "format", defaultFormat(),
		"output format (text|table), defaults to $"+FormatEnv+" if set")
	cmd.AddCommand(newInferCommand(opts))
	cmd.AddCommand(newOpsCommand(opts))
	return cmd
}
