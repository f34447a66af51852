// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package cop

import (
	"log"

	"github.com/go-air/cop/inter"
	"github.com/go-air/cop/internal/wire"
)

// monitorList is the ordered list of observers attached to one Search
// (§4.4, §5): the mandatory trace monitor first, then any profiler, then
// the caller's monitors; a decision builder cannot append monitors to it.
// Hooks fire in registration order; acceptSolution requires every monitor
// to accept, short-circuiting on the first refusal.
type monitorList []inter.Monitor

func (ms monitorList) enterSearch() {
	for _, m := range ms {
		m.EnterSearch()
	}
}

func (ms monitorList) exitSearch() {
	for _, m := range ms {
		m.ExitSearch()
	}
}

func (ms monitorList) restartSearch() {
	for _, m := range ms {
		m.RestartSearch()
	}
}

func (ms monitorList) beginInitialPropagation() {
	for _, m := range ms {
		m.BeginInitialPropagation()
	}
}

func (ms monitorList) endInitialPropagation() {
	for _, m := range ms {
		m.EndInitialPropagation()
	}
}

func (ms monitorList) applyDecision(d inter.Decision) {
	for _, m := range ms {
		m.ApplyDecision(d)
	}
}

func (ms monitorList) refuteDecision(d inter.Decision) {
	for _, m := range ms {
		m.RefuteDecision(d)
	}
}

func (ms monitorList) afterDecision(d inter.Decision, applied bool) {
	for _, m := range ms {
		m.AfterDecision(d, applied)
	}
}

func (ms monitorList) beginFail() {
	for _, m := range ms {
		m.BeginFail()
	}
}

func (ms monitorList) endFail() {
	for _, m := range ms {
		m.EndFail()
	}
}

func (ms monitorList) acceptSolution() bool {
	for _, m := range ms {
		if !m.AcceptSolution() {
			return false
		}
	}
	return true
}

func (ms monitorList) periodicCheck(e inter.Engine) {
	for _, m := range ms {
		m.PeriodicCheck(e)
	}
}

// beginDemonRun and endDemonRun fan out to whichever monitors in the list
// also implement inter.PropagationMonitor (§9): not every Monitor cares
// about propagation-level events, so this checks each one individually
// rather than requiring the narrower interface of the whole list.
func (ms monitorList) beginDemonRun(d inter.Demon) {
	for _, m := range ms {
		if pm, ok := m.(inter.PropagationMonitor); ok {
			pm.BeginDemonRun(d)
		}
	}
}

func (ms monitorList) endDemonRun(d inter.Demon) {
	for _, m := range ms {
		if pm, ok := m.(inter.PropagationMonitor); ok {
			pm.EndDemonRun(d)
		}
	}
}

// traceMonitor is the mandatory monitor every Search installs first
// (§4.5.1 step 3). Being first in registration order it cannot observe any
// other monitor's effect; a caller wanting that should append its own
// tracer last, per §5's "last registered monitor is the print-trace"
// guidance.
type traceMonitor struct {
	inter.BaseMonitor
	inter.BasePropagationMonitor
	log    *log.Logger
	search bool
	propag bool
}

func newTraceMonitor(logger *log.Logger, traceSearch, tracePropagation bool) *traceMonitor {
	return &traceMonitor{log: logger, search: traceSearch, propag: tracePropagation}
}

func (t *traceMonitor) EnterSearch() {
	if t.search {
		t.log.Printf("enter_search")
	}
}

func (t *traceMonitor) ExitSearch() {
	if t.search {
		t.log.Printf("exit_search")
	}
}

func (t *traceMonitor) RestartSearch() {
	if t.search {
		t.log.Printf("restart_search")
	}
}

func (t *traceMonitor) ApplyDecision(d inter.Decision) {
	if t.search {
		t.log.Printf("apply %s", d)
	}
}

func (t *traceMonitor) RefuteDecision(d inter.Decision) {
	if t.search {
		t.log.Printf("refute %s", d)
	}
}

func (t *traceMonitor) BeginFail() {
	if t.search {
		t.log.Printf("fail")
	}
}

func (t *traceMonitor) BeginDemonRun(d inter.Demon) {
	if t.propag {
		t.log.Printf("demon run")
	}
}

// profileMonitor mirrors search events onto a wire.Writer, backing the
// profile_file/export_file parameters (§6).
type profileMonitor struct {
	inter.BaseMonitor
	w *wire.Writer
	s *Solver
}

func newProfileMonitor(w *wire.Writer, s *Solver) *profileMonitor {
	return &profileMonitor{w: w, s: s}
}

func (p *profileMonitor) EnterSearch()   { p.write(wire.EventEnterSearch, "") }
func (p *profileMonitor) ExitSearch()    { p.write(wire.EventExitSearch, "") }
func (p *profileMonitor) RestartSearch() { p.write(wire.EventRestartSearch, "") }
func (p *profileMonitor) BeginFail()     { p.write(wire.EventBeginFail, "") }
func (p *profileMonitor) ApplyDecision(d inter.Decision) {
	p.write(wire.EventApplyDecision, d.String())
}
func (p *profileMonitor) RefuteDecision(d inter.Decision) {
	p.write(wire.EventRefuteDecision, d.String())
}

func (p *profileMonitor) write(kind wire.EventKind, label string) {
	_ = p.w.Write(wire.Event{Kind: kind, Counter: uint64(p.s.stats.Branches), Label: label})
	_ = p.w.Flush()
}
