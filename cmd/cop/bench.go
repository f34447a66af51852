// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-air/cop"
	"github.com/go-air/cop/bench"
	"github.com/go-air/cop/inter"
	"github.com/go-air/cop/modelgen"
)

func newBenchCmd() *cobra.Command {
	var (
		perInstance time.Duration
		sizes       []int
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "run the reference models across a range of sizes and report timings",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := rand.New(rand.NewSource(seed))
			suite := bench.Suite{Name: "reference-models"}
			for _, n := range sizes {
				n := n
				suite.Cases = append(suite.Cases,
					bench.Case{
						Name: fmt.Sprintf("queens-%d", n),
						Build: func(s *cop.Solver) ([]inter.IntVar, inter.DecisionBuilder) {
							return modelgen.NQueens(s, n)
						},
					},
					bench.Case{
						Name: fmt.Sprintf("coloring-%d", n),
						Build: func(s *cop.Solver) ([]inter.IntVar, inter.DecisionBuilder) {
							return modelgen.GraphColoring(s, rng, n, n*2, 4)
						},
					},
				)
			}

			results := bench.Run(suite, perInstance, cop.DefaultParameters())
			for _, r := range results {
				status := "solved"
				if !r.Solved {
					status = "no-solution"
					if r.TimedOut {
						status = "timed-out"
					}
				}
				fmt.Printf("%-20s %-12s %10s  branches=%d fails=%d\n",
					r.Case, status, r.Dur.Round(time.Millisecond), r.Stats.Branches, r.Stats.Fails)
				if r.Error != "" {
					fmt.Printf("  error: %s\n", r.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&perInstance, "dur", 5*time.Second, "max per-instance duration")
	cmd.Flags().IntSliceVar(&sizes, "sizes", []int{4, 8, 12}, "model sizes to run")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed for generated models")

	return cmd
}
