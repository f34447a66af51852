// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package monitor holds concrete Monitor implementations that are useful
// across many models but are not part of the engine core: a wall-clock
// deadline lives here; package cop installs the
// mandatory trace monitor itself (it needs access to engine-internal
// state a plain inter.Monitor cannot see).
package monitor

import (
	"time"

	"github.com/go-air/cop/inter"
)

// Deadline is a concrete cooperative-cancellation Monitor (base spec §5,
// §C.2), grounded directly on the original implementation's
// RegularLimit/PeriodicCheck pattern: it requests should_finish once a
// wall-clock deadline passes, and the driver observes the request the
// next time it calls PeriodicCheck (once at the start of every main-loop
// step).
//
// Precision is bounded by the longest uninterrupted demon run, exactly as
// the base spec's timeout design notes describe.
type Deadline struct {
	inter.BaseMonitor
	deadline time.Time
}

// NewDeadline returns a Deadline that requests search termination once d
// has elapsed from the moment this call returns.
func NewDeadline(d time.Duration) *Deadline {
	return &Deadline{deadline: time.Now().Add(d)}
}

func (m *Deadline) PeriodicCheck(e inter.Engine) {
	if !time.Now().Before(m.deadline) {
		e.RequestFinish()
	}
}
