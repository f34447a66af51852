// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/go-air/cop"
	"github.com/go-air/cop/metrics"
	"github.com/go-air/cop/modelgen"
	"github.com/go-air/cop/monitor"
)

func newServeMetricsCmd() *cobra.Command {
	var (
		addr string
		size int
	)

	cmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "solve a reference model on a loop, serving its counters over /metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			http.Handle("/metrics", promhttp.Handler())
			go func() {
				log.Fatal(http.ListenAndServe(addr, nil))
			}()

			rng := rand.New(rand.NewSource(1))
			params := cop.DefaultParameters()
			params.ProfileLevel = cop.ProfileNormal

			first := cop.New("cop-serve-metrics", params)
			collector := metrics.NewCollector(first, prometheus.DefaultRegisterer)

			for s := first; ; s = cop.New("cop-serve-metrics", params) {
				collector.Bind(s)
				_, db := modelgen.GraphColoring(s, rng, size, size*2, 4)
				deadline := monitor.NewDeadline(5 * time.Second)
				s.Solve(db, deadline, collector)
				collector.Sync()
				time.Sleep(time.Second)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":9090", "address to serve /metrics on")
	cmd.Flags().IntVar(&size, "size", 20, "node count for the looping coloring model")

	return cmd
}
