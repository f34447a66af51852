// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package cop is the execution core of a finite-domain constraint
// programming solver: a reversible trail, a multi-priority propagation
// queue, and a depth-first search driver with choice points, nested
// sub-searches, and observable events.
//
// The variable and constraint library itself lives outside this package
// (see package intvar for a minimal reference instance); cop only defines
// the Engine the library programs against.
package cop

import (
	"log"
	"math/rand"
	"os"

	"github.com/go-air/cop/inter"
	"github.com/go-air/cop/internal/pqueue"
	"github.com/go-air/cop/internal/searchstate"
	"github.com/go-air/cop/internal/trail"
	"github.com/go-air/cop/internal/wire"
)

// UsageError reports a programmer error in the engine's state machine
// (§7.4): mismatched sentinel codes, pop on an empty marker stack,
// nested_solve with no active search, and the like. UsageErrors are fatal
// by convention — callers that want to convert one into a clean message
// wrap the call that can panic in recover.
type UsageError string

func (e UsageError) Error() string { return string(e) }

// Solver is the engine: the process-wide root object owning the trail, the
// propagation queue, the stack of active searches, and the state machine
// (§3, §6). A Solver is not safe for concurrent use (§5): it runs on
// exactly one goroutine.
type Solver struct {
	name   string
	params Parameters

	log *log.Logger

	trail *trail.Trail
	queue *pqueue.Queue
	names *namer
	cast  *castIndex
	rng   *rand.Rand

	// boot is the top-level search slot, reused across successive
	// NewSearch calls, and also the escape/stack context used when no
	// search is active at all (e.g. CheckAssignment, PushState called
	// from outside any search).
	boot     *Search
	searches []*Search

	state State
	stats Stats

	constraints    []inter.Constraint
	permanentFalse bool

	profileW *wire.Writer
	profileF *os.File
	exportW  *wire.Writer
	exportF  *os.File
}

// New constructs a Solver named name with the given Parameters, matching
// the base spec's `Solver::new(name, parameters)` factory (§6).
func New(name string, params Parameters) *Solver {
	codec := trail.Codec(trail.IdentityCodec{})
	if params.TrailCompression == CompressionGeneric {
		codec = trail.GenericCodec{}
	}
	t := trail.New(trail.Config{BlockSize: params.TrailBlockSize, Compression: codec})
	s := &Solver{
		name:   name,
		params: params,
		log:    log.New(os.Stderr, "cop: ", log.LstdFlags),
		trail:  t,
		names:  newNamer(params.StoreNames),
		cast:   newCastIndex(),
		rng:    rand.New(rand.NewSource(1)),
		state:  OutsideSearch,
	}
	s.queue = pqueue.New(func(c pqueue.Constraint) error { return c.Post() })
	s.queue.SetDemonHooks(
		func(d pqueue.StampHolder) { s.currentSearch().monitors.beginDemonRun(d) },
		func(d pqueue.StampHolder) { s.currentSearch().monitors.endDemonRun(d) },
	)

	topStack := searchstate.New(t, s.queue)
	topStack.PushSentinel(searchstate.ConstructorSentinel)
	topStack.PushSentinel(searchstate.InitialSearchSentinel)
	s.boot = &Search{stack: topStack, topLevel: true}

	if params.ProfileFile != "" {
		f, err := os.Create(params.ProfileFile)
		if err != nil {
			s.log.Printf("profile_file: %v", err)
		} else {
			s.profileF = f
			s.profileW = wire.NewWriter(f)
		}
	}
	if params.ExportFile != "" {
		f, err := os.Create(params.ExportFile)
		if err != nil {
			s.log.Printf("export_file: %v", err)
		} else {
			s.exportF = f
			s.exportW = wire.NewWriter(f)
		}
	}
	return s
}

// Name returns the solver's construction-time name.
func (s *Solver) Name() string { return s.name }

// State returns the current engine state (§3).
func (s *Solver) State() State { return s.state }

// Stats returns a snapshot of the engine's search counters.
func (s *Solver) Stats() Stats { return s.stats }

// Params returns the Parameters this Solver was constructed with.
func (s *Solver) Params() Parameters { return s.params }

// Trail returns the engine's reversible state store. Exported for
// in-module domain packages (e.g. intvar) that need to log reversible
// fields directly; external Constraint/Decision code should prefer the
// inter.Engine methods (PushState/PopState/FreezeQueue/...) instead.
func (s *Solver) Trail() *trail.Trail { return s.trail }

// Queue returns the engine's propagation queue. See Trail for the same
// in-module-only caveat.
func (s *Solver) Queue() *pqueue.Queue { return s.queue }

// Rand returns the engine's shared random generator, for decision builders
// that need randomized tie-breaking.
func (s *Solver) Rand() *rand.Rand { return s.rng }

// NameAuto returns a fresh synthetic name with the given prefix, honoring
// name_all_variables (§6); callers that build anonymous variables call
// this instead of a bare counter so names stay stable across merged models.
func (s *Solver) NameAuto(prefix string) string { return s.names.autoName(prefix) }

// RegisterName records name -> obj if store_names is enabled (§6).
func (s *Solver) RegisterName(name string, obj interface{}) { s.names.register(name, obj) }

// LookupName returns the object registered under name, if any.
func (s *Solver) LookupName(name string) (interface{}, bool) { return s.names.lookup(name) }

// CastFor returns the cast constraint whose target is v, if any (§4.3).
func (s *Solver) CastFor(v inter.IntVar) (inter.CastConstraint, bool) { return s.cast.CastFor(v) }

func (s *Solver) currentSearch() *Search {
	if len(s.searches) == 0 {
		return s.boot
	}
	return s.searches[len(s.searches)-1]
}

// Fail implements the inter.Engine contract (§4.5.3): if the current
// search has an active fail-escape, it counts the fail, notifies
// monitors, and unwinds via panic/recover to that escape's driver loop.
// Otherwise (fail called outside any search) it posts a permanent false
// constraint so the next propagation fails deterministically, per §5's
// jmpbuf_filled guard.
func (s *Solver) Fail() {
	cur := s.currentSearch()
	if !cur.escapeActive {
		s.postPermanentFalse()
		return
	}
	s.stats.Fails++
	cur.monitors.beginFail()
	if s.profileW != nil {
		_ = s.profileW.Write(wire.Event{Kind: wire.EventBeginFail, Counter: uint64(s.stats.Branches)})
	}
	panic(failSignal{})
}

func (s *Solver) postPermanentFalse() {
	s.permanentFalse = true
	s.log.Printf("fail() called outside any fail-escape scope; posting permanent false constraint")
}

// PushState pushes a SIMPLE checkpoint marker on the current search's
// marker stack (§4.4, §6).
func (s *Solver) PushState() { s.currentSearch().stack.PushSimple() }

// PopState pops the top marker, rewinding the trail to it (§4.4, §6).
func (s *Solver) PopState() { s.currentSearch().stack.PopState() }

// PushReversibleAction implements the inter.Engine contract (§3, §C.5):
// it delegates to the current search's marker stack so action runs
// automatically on backtrack.
func (s *Solver) PushReversibleAction(action func(), skipRewind bool) {
	s.currentSearch().stack.PushReversibleAction(action, skipRewind)
}

// FreezeQueue defers propagation until a matching UnfreezeQueue (§4.2, §6).
func (s *Solver) FreezeQueue() { s.queue.Freeze() }

// UnfreezeQueue resumes propagation once every FreezeQueue call has a
// matching UnfreezeQueue (§4.2, §6).
func (s *Solver) UnfreezeQueue() { s.queue.Unfreeze() }

// RequestFinish lets a Monitor's PeriodicCheck ask the current search to
// stop exploring and report no further solutions (§5).
func (s *Solver) RequestFinish() { s.currentSearch().shouldFinish = true }

// RequestRestart lets a Monitor's PeriodicCheck ask the current search to
// discard its exploration so far and restart from its root (§5).
func (s *Solver) RequestRestart() { s.currentSearch().shouldRestart = true }

// constraintAdapter adapts an inter.Constraint (post + initial_propagate)
// to the pqueue.Constraint contract (a single Post() error), running both
// halves inside one frozen queue window per post_and_propagate (§4.3).
type constraintAdapter struct {
	s *Solver
	c inter.Constraint
}

func (a constraintAdapter) Post() error { return a.s.postAndPropagate(a.c) }

func (s *Solver) postAndPropagate(c inter.Constraint) error {
	if s.permanentFalse {
		s.Fail()
		return nil
	}
	s.queue.Freeze()
	defer s.queue.Unfreeze()
	if err := c.Post(s); err != nil {
		return err
	}
	return c.InitialPropagate(s)
}

// AddConstraint posts c: it is queued for post_and_propagate and, unless
// propagation is already draining its to-add list, propagated immediately
// (§4.3, §6).
func (s *Solver) AddConstraint(c inter.Constraint) error {
	if s.params.ShowConstraints {
		s.log.Printf("add_constraint %v", c)
	}
	s.constraints = append(s.constraints, c)
	return s.queue.AddConstraint(constraintAdapter{s: s, c: c})
}

// AddCastConstraint posts cc and additionally records it in the cast side
// index, keyed by its target variable (§4.3, §6).
func (s *Solver) AddCastConstraint(cc inter.CastConstraint) error {
	s.cast.add(cc)
	return s.AddConstraint(cc)
}

// IntVarAssignment pairs a variable with a value for CheckAssignment.
type IntVarAssignment struct {
	Var   inter.IntVar
	Value int
}

// CheckAssignment propagates the given var/value pairs without branching,
// reports whether the assignment survives propagation, and always restores
// every variable touched (§6).
func (s *Solver) CheckAssignment(assignment []IntVarAssignment) bool {
	cur := s.currentSearch()
	cur.stack.PushSimple()
	defer cur.stack.PopState()

	failed := cur.underEscape(func() {
		for _, a := range assignment {
			a.Var.SetValue(a.Value)
		}
		if s.permanentFalse {
			s.Fail()
		}
		if err := s.queue.ProcessConstraints(); err != nil {
			panic(err)
		}
	})
	if failed {
		s.queue.AfterFailure()
	}
	return !failed
}
