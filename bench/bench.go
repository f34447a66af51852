// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package bench runs a suite of model instances through the engine and
// records per-instance timing and outcome, the in-process counterpart of
// github.com/irifrance/gini's src/gini/bench instance runner: where that
// runner forked a CLI solver binary per instance and scraped its exit
// status, bench builds and solves each instance directly against package
// cop, since the engine under benchmark is a library, not a subprocess.
package bench

import (
	"fmt"
	"time"

	"github.com/go-air/cop"
	"github.com/go-air/cop/inter"
	"github.com/go-air/cop/monitor"
)

// Case names one buildable model instance: Build posts the model's
// variables and constraints on s and returns a decision builder to drive
// the search.
type Case struct {
	Name  string
	Build func(s *cop.Solver) (vars []inter.IntVar, db inter.DecisionBuilder)
}

// Suite is an ordered list of Cases, run sequentially by Run.
type Suite struct {
	Name  string
	Cases []Case
}

// Result is one Case's outcome, matching the InstRun fields (Start, Dur,
// Result, Error) from github.com/irifrance/gini's src/gini/bench, minus
// the process-rusage fields (UDur, SDur), which have no meaning for an
// in-process solve.
type Result struct {
	Case     string
	Start    time.Time
	Dur      time.Duration
	Solved   bool
	TimedOut bool
	Stats    cop.Stats
	Error    string
}

// Run solves every Case in suite in order, giving each up to perInstance
// wall-clock time via a monitor.Deadline, and returns one Result per Case.
func Run(suite Suite, perInstance time.Duration, params cop.Parameters) []Result {
	results := make([]Result, 0, len(suite.Cases))
	for _, c := range suite.Cases {
		results = append(results, runOne(c, perInstance, params))
	}
	return results
}

func runOne(c Case, perInstance time.Duration, params cop.Parameters) (res Result) {
	res = Result{Case: c.Name, Start: time.Now()}
	defer func() {
		res.Dur = time.Since(res.Start)
		if r := recover(); r != nil {
			res.Error = fmt.Sprintf("%v", r)
		}
	}()

	s := cop.New(c.Name, params)
	_, db := c.Build(s)

	deadline := monitor.NewDeadline(perInstance)
	s.NewSearch(db, deadline)
	res.Solved = s.NextSolution()
	infeasible := s.State() == cop.ProblemInfeasible
	s.EndSearch()
	res.Stats = s.Stats()
	if !res.Solved && !infeasible {
		res.TimedOut = true
	}
	return res
}
