// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/go-air/cop"
	"github.com/go-air/cop/intvar"
)

func solveOneVar(s *cop.Solver, lo, hi int) {
	v := intvar.New(s, lo, hi, "v")
	p := intvar.NewPhase(v)
	s.NewSearch(p)
	for s.NextSolution() {
	}
	s.EndSearch()
}

func TestNewCollectorRegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := cop.New("c1", cop.DefaultParameters())
	NewCollector(s, reg)

	n, err := testutil.GatherAndCount(reg,
		"cop_branches_total", "cop_fails_total", "cop_decisions_total",
		"cop_solutions_total", "cop_queue_wave")
	if err != nil {
		t.Fatalf("GatherAndCount: %v", err)
	}
	if n != 5 {
		t.Errorf("GatherAndCount = %d, want 5 registered metrics", n)
	}
}

func TestSyncAddsDeltaSinceLastCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	params := cop.DefaultParameters()
	params.ProfileLevel = cop.ProfileNormal
	s := cop.New("c2", params)
	c := NewCollector(s, reg)

	solveOneVar(s, 0, 1)
	c.Sync()

	st := s.Stats()
	if got := testutil.ToFloat64(c.solutions); got != float64(st.Solutions) {
		t.Errorf("solutions counter = %v, want %v", got, st.Solutions)
	}
	if got := testutil.ToFloat64(c.decisions); got != float64(st.Decisions) {
		t.Errorf("decisions counter = %v, want %v", got, st.Decisions)
	}

	// a second Sync with no further search activity must add nothing.
	solBefore := testutil.ToFloat64(c.solutions)
	c.Sync()
	if got := testutil.ToFloat64(c.solutions); got != solBefore {
		t.Errorf("solutions counter moved from %v to %v on a no-op Sync", solBefore, got)
	}
}

func TestBindResetsDeltaBaseline(t *testing.T) {
	reg := prometheus.NewRegistry()
	params := cop.DefaultParameters()
	params.ProfileLevel = cop.ProfileNormal
	s1 := cop.New("c3a", params)
	c := NewCollector(s1, reg)

	solveOneVar(s1, 0, 2)
	c.Sync()
	firstTotal := testutil.ToFloat64(c.solutions)
	if firstTotal == 0 {
		t.Fatalf("setup: expected at least one solution recorded")
	}

	s2 := cop.New("c3b", params)
	c.Bind(s2)
	solveOneVar(s2, 0, 0)
	c.Sync()

	// the counter is cumulative across the registry's lifetime, but the
	// delta added for s2 must be based on s2's own (reset) baseline, not
	// double-counted against s1's leftover totals.
	st2 := s2.Stats()
	want := firstTotal + float64(st2.Solutions)
	if got := testutil.ToFloat64(c.solutions); got != want {
		t.Errorf("solutions counter = %v, want %v", got, want)
	}
}
