// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package intvar

import "github.com/go-air/cop/internal/pqueue"

// ClosureDemon adapts a plain function to inter.Demon, the way most
// reference constraint libraries wire up their propagators: one method per
// watched variable that just re-runs the constraint's whole propagate
// step. Constraints needing per-variable incrementality should implement
// inter.Demon directly instead.
type ClosureDemon struct {
	pqueue.Stamped
	run  func() error
	prio pqueue.Priority
}

// NewClosureDemon creates a Demon at the given priority running fn.
func NewClosureDemon(prio pqueue.Priority, fn func() error) *ClosureDemon {
	return &ClosureDemon{run: fn, prio: prio}
}

func (d *ClosureDemon) Run() error                { return d.run() }
func (d *ClosureDemon) Priority() pqueue.Priority { return d.prio }
