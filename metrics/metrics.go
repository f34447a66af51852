// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package metrics mirrors a Solver's counters onto Prometheus
// instrumentation, active when a Solver is constructed with
// ProfileLevel == cop.ProfileNormal (§6).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-air/cop"
	"github.com/go-air/cop/inter"
)

// Collector mirrors a Solver's Stats onto a fixed set of Prometheus
// counters/gauges, updated from Sync on every PeriodicCheck (§5), which
// runs once per main-loop step, so a scrape always sees numbers at most one
// step stale.
type Collector struct {
	inter.BaseMonitor

	solver *cop.Solver

	branches  prometheus.Counter
	fails     prometheus.Counter
	decisions prometheus.Counter
	solutions prometheus.Counter
	queueWave prometheus.Gauge

	// last* track what has already been added to each Counter, since
	// Stats is a monotonic snapshot but prometheus.Counter only exposes
	// Add, not Set.
	lastBranches  float64
	lastFails     float64
	lastDecisions float64
	lastSolutions float64
}

// NewCollector builds a Collector for s and registers its metrics with
// reg (typically prometheus.DefaultRegisterer).
func NewCollector(s *cop.Solver, reg prometheus.Registerer) *Collector {
	labels := prometheus.Labels{"solver": s.Name()}
	c := &Collector{
		solver: s,
		branches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "cop",
			Name:        "branches_total",
			Help:        "Total choice points pushed during search.",
			ConstLabels: labels,
		}),
		fails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "cop",
			Name:        "fails_total",
			Help:        "Total fail escapes triggered during search.",
			ConstLabels: labels,
		}),
		decisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "cop",
			Name:        "decisions_total",
			Help:        "Total decisions fetched from decision builders.",
			ConstLabels: labels,
		}),
		solutions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "cop",
			Name:        "solutions_total",
			Help:        "Total accepted solutions.",
			ConstLabels: labels,
		}),
		queueWave: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "cop",
			Name:        "queue_wave",
			Help:        "Current propagation queue wave stamp.",
			ConstLabels: labels,
		}),
	}
	reg.MustRegister(c.branches, c.fails, c.decisions, c.solutions, c.queueWave)
	return c
}

// Bind retargets the Collector at a new Solver instance — e.g. a
// long-running serve-metrics loop that builds a fresh Solver per model run
// but keeps exposing the same registered metric names. The next Sync
// measures deltas against the new Solver's (zeroed) Stats.
func (c *Collector) Bind(s *cop.Solver) {
	c.solver = s
	c.lastBranches, c.lastFails, c.lastDecisions, c.lastSolutions = 0, 0, 0, 0
}

// Sync pushes the solver's current Stats onto the Prometheus counters,
// unless the bound Solver's ProfileLevel is ProfileNone, in which case it
// does nothing (§6): a Collector can be wired in unconditionally and still
// honor a config file that turns profiling off.
// Counters only move forward, so Sync adds the delta since the last call.
func (c *Collector) Sync() {
	if c.solver.Params().ProfileLevel != cop.ProfileNormal {
		return
	}
	st := c.solver.Stats()
	c.branches.Add(float64(st.Branches) - c.lastBranches)
	c.lastBranches = float64(st.Branches)
	c.fails.Add(float64(st.Fails) - c.lastFails)
	c.lastFails = float64(st.Fails)
	c.decisions.Add(float64(st.Decisions) - c.lastDecisions)
	c.lastDecisions = float64(st.Decisions)
	c.solutions.Add(float64(st.Solutions) - c.lastSolutions)
	c.lastSolutions = float64(st.Solutions)
	c.queueWave.Set(float64(c.solver.Queue().Stamp()))
}

// PeriodicCheck implements inter.Monitor: every PeriodicCheck hook during
// search also syncs metrics, so a concurrent /metrics scrape sees
// near-live numbers without the caller adding its own polling loop.
func (c *Collector) PeriodicCheck(e inter.Engine) {
	c.Sync()
}
