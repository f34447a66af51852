// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package cop

// Stats is a snapshot of the engine's search counters, read through
// Solver.Stats(). The grouping mirrors github.com/irifrance/gini's own
// ReadStats(*Stats) idiom (internal/xo/s.go): one struct, filled in
// place, rather than a grab-bag of individual accessor methods.
type Stats struct {
	Branches  int64
	Fails     int64
	Decisions int64
	Solutions int64
}

func (st *Stats) reset() {
	*st = Stats{}
}
