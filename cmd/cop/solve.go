// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-air/cop"
	"github.com/go-air/cop/config"
	"github.com/go-air/cop/inter"
	"github.com/go-air/cop/metrics"
	"github.com/go-air/cop/modelgen"
	"github.com/go-air/cop/monitor"

	"github.com/prometheus/client_golang/prometheus"
)

func newSolveCmd() *cobra.Command {
	var (
		configPath       string
		model            string
		size             int
		edges            int
		colors           int
		parts            int
		seed             int64
		timeout          time.Duration
		traceSearch      bool
		tracePropagation bool
		showConstraints  bool
		profileFile      string
		exportFile       string
		enableMetrics    bool
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "build and solve one of the reference models",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := cop.DefaultParameters()
			if configPath != "" {
				p, err := config.Load(configPath)
				if err != nil {
					return err
				}
				params = p
			}
			params.TraceSearch = params.TraceSearch || traceSearch
			params.TracePropagation = params.TracePropagation || tracePropagation
			params.ShowConstraints = params.ShowConstraints || showConstraints
			if profileFile != "" {
				params.ProfileFile = profileFile
			}
			if exportFile != "" {
				params.ExportFile = exportFile
			}
			if enableMetrics {
				params.ProfileLevel = cop.ProfileNormal
			}

			s := cop.New("cop-solve", params)
			rng := rand.New(rand.NewSource(seed))

			var (
				vars []inter.IntVar
				db   inter.DecisionBuilder
			)
			switch model {
			case "queens":
				vars, db = modelgen.NQueens(s, size)
			case "send-more-money":
				vars, db = modelgen.SendMoreMoney(s)
			case "coloring":
				vars, db = modelgen.GraphColoring(s, rng, size, edges, colors)
			case "partition":
				vars, db = modelgen.Partition(s, size, parts)
			default:
				return fmt.Errorf("unknown model %q (want queens, send-more-money, coloring, partition)", model)
			}

			mons := []inter.Monitor{monitor.NewDeadline(timeout)}
			var collector *metrics.Collector
			if params.ProfileLevel == cop.ProfileNormal {
				collector = metrics.NewCollector(s, prometheus.DefaultRegisterer)
				mons = append(mons, collector)
			}

			found := s.Solve(db, mons...)
			if !found {
				fmt.Printf("no solution (state=%s)\n", s.State())
				return nil
			}
			for _, v := range vars {
				fmt.Printf("%s = %d\n", v.Name(), v.Min())
			}
			st := s.Stats()
			fmt.Printf("branches=%d fails=%d decisions=%d solutions=%d\n",
				st.Branches, st.Fails, st.Decisions, st.Solutions)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file with Parameters")
	cmd.Flags().StringVar(&model, "model", "queens", "model to solve: queens, send-more-money, coloring, partition")
	cmd.Flags().IntVar(&size, "size", 8, "model size (board/node/element count)")
	cmd.Flags().IntVar(&edges, "edges", 10, "edge count (coloring model)")
	cmd.Flags().IntVar(&colors, "colors", 3, "color count (coloring model)")
	cmd.Flags().IntVar(&parts, "parts", 2, "part count (partition model)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed for generated models")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "wall-clock deadline")
	cmd.Flags().BoolVar(&traceSearch, "trace-search", false, "trace search-level events")
	cmd.Flags().BoolVar(&tracePropagation, "trace-propagation", false, "trace propagation-level events")
	cmd.Flags().BoolVar(&showConstraints, "show-constraints", false, "log each posted constraint")
	cmd.Flags().StringVar(&profileFile, "profile-file", "", "write a binary profile event log here")
	cmd.Flags().StringVar(&exportFile, "export-file", "", "write a binary export event log here")
	cmd.Flags().BoolVar(&enableMetrics, "metrics", false, "mirror counters onto the default Prometheus registry")

	return cmd
}
