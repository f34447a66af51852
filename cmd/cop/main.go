// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Command cop is the engine's command-line front end: it exposes the
// Parameters struct as flags, the way github.com/irifrance/gini's
// cmd/gini exposes solver options as flag.* variables, translated into a
// cobra command tree (§A.3 of the expanded design) instead of the flat
// flag package.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cop",
		Short: "cop is a finite-domain constraint programming execution core",
	}
	root.AddCommand(newSolveCmd())
	root.AddCommand(newBenchCmd())
	root.AddCommand(newServeMetricsCmd())
	return root
}
