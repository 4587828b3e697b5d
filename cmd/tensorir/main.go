// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// tensorir builds the tensor manipulation operators of a YAML program and reports the inferred
// shapes, or lists the registered operators.
//
// Usage:
//
//	tensorir infer program.yaml [--bind batch=8] [--format=table|text]
//	tensorir ops [--format=table|text]
//
// The default format can be set with the environment variable TENSORIR_FORMAT.
package main

import (
	"flag"
	"os"

	"k8s.io/klog/v2"
)

func main() {
	klog.InitFlags(nil)
	root := newRootCommand()
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	if err := root.Execute(); err != nil {
		klog.Errorf("%v", err)
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}
