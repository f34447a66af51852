// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package inter holds the interfaces that bind the engine to domain
// objects it does not itself implement: variables, constraints, demons,
// decisions, decision builders, and monitors.
//
// Package inter is the "Variable & constraint interface" component of the
// base spec (§4.3): it is the contract, not the library. Concrete
// variable/constraint implementations (see package intvar for a minimal
// reference instance) are external collaborators.
package inter

import "github.com/go-air/cop/internal/pqueue"

// Engine is the minimal facet of the engine a Demon, Decision, or
// DecisionBuilder needs to mutate state and raise a fail. It is
// implemented by *cop.Solver.
type Engine interface {
	Fail()
	PushState()
	PopState()
	FreezeQueue()
	UnfreezeQueue()

	// PushReversibleAction schedules action to run automatically the next
	// time the current search backtracks past this point, matching the
	// original's AddBacktrackAction (§3, §C.5). skipRewind is true for a
	// pure side-effect action with no trail state underneath it to
	// rewind (the original's "fast" flag) — e.g. reversing a Demon.Inhibit
	// call, whose own Desinhibit closure is the only state that needs
	// restoring.
	PushReversibleAction(action func(), skipRewind bool)

	// RequestFinish and RequestRestart let a Monitor's PeriodicCheck (the
	// cooperative-cancellation hook, §5) set the current search's
	// should_finish/should_restart flags without the monitor needing to
	// know about package cop's internal Search type.
	RequestFinish()
	RequestRestart()
}

// DomainChange categorizes what kind of narrowing just happened to a
// variable, matching the base spec's "when_bound/when_range/when_domain"
// observer categories (§4.3). A narrower category implies the wider ones:
// a Bound change is also a Range change and a Domain change.
type DomainChange int

const (
	// DomainChanged fires on every narrowing, however small.
	DomainChanged DomainChange = iota
	// RangeChanged fires when Min or Max moved.
	RangeChanged
	// BoundChanged fires only when the variable became fixed to one value.
	BoundChanged
)

// IntVar is the engine-facing contract for an integer domain variable.
// Implementations must log reversible fields to the trail before mutating
// them and must enqueue every demon subscribed to a category that the
// mutation satisfies (§3, §4.3). A mutation that empties the domain must
// call Engine.Fail.
type IntVar interface {
	Min() int
	Max() int
	Bound() bool
	OldMin() int
	OldMax() int

	SetMin(v int)
	SetMax(v int)
	SetRange(lo, hi int)
	SetValue(v int)
	RemoveValue(v int)
	RemoveInterval(lo, hi int)
	SetValues(vs []int)
	RemoveValues(vs []int)

	// WhenBound, WhenRange, and WhenDomain subscribe d to the matching
	// DomainChange category on this variable.
	WhenBound(d Demon)
	WhenRange(d Demon)
	WhenDomain(d Demon)

	Name() string
	SetName(string)
}

// BoolVar specializes IntVar to a {0,1} domain and additionally
// implements trail.BoolVarRestorer so the trail can restore it through the
// boolean-variable partition (§3).
type BoolVar interface {
	IntVar
	TrailRestore()
}

// Demon is a passive reactor scheduled to run when a variable it watches
// changes (§3). Demon embeds pqueue.StampHolder so the engine's queue can
// schedule it without a separate registry.
type Demon interface {
	pqueue.StampHolder
}

// Constraint is a posted relationship between variables (§4.3). Post
// subscribes demons without narrowing; InitialPropagate does the first,
// possibly narrowing, pass. PostAndPropagate is a convenience the engine
// calls to run both inside one frozen queue window so the queue drains
// once at the end.
type Constraint interface {
	Post(e Engine) error
	InitialPropagate(e Engine) error
}

// CastConstraint is a Constraint representing "Target == Expr": the engine
// keeps these in a side index (§4.3) so a decision builder or monitor can
// find the expression behind an anonymous variable.
type CastConstraint interface {
	Constraint
	Target() IntVar
	Expr() string
}

// Decision is a binary branching unit. Apply is taken on the left branch,
// Refute on the right; both may mutate variables and may fail.
type Decision interface {
	Apply(e Engine) error
	Refute(e Engine) error
	String() string
}

// DecisionModification is the result of a branch-selector hook
// (`modify_decision`, §4.5.2) examining the next Decision before it is
// applied.
type DecisionModification int

const (
	NoChange DecisionModification = iota
	SwitchBranches
	KeepLeft
	KeepRight
	KillBoth
)

// DecisionBuilder produces the next Decision at the current search node,
// or signals a leaf by returning a nil Decision.
type DecisionBuilder interface {
	Next(e Engine) (Decision, error)
}

// Monitor observes search-level events. Every method has a no-op default
// via BaseMonitor, so implementations only override the hooks they need.
type Monitor interface {
	EnterSearch()
	ExitSearch()
	RestartSearch()
	BeginInitialPropagation()
	EndInitialPropagation()
	ApplyDecision(d Decision)
	RefuteDecision(d Decision)
	AfterDecision(d Decision, applied bool)
	BeginFail()
	EndFail()
	AcceptSolution() bool
	PeriodicCheck(e Engine)
}

// PropagationMonitor observes propagation-level events (variable
// mutations, demon runs) rather than search-level ones. It shares enough
// shape with Monitor (via BasePropagationMonitor) that a single tracer can
// implement both and observe everything happening in the engine, per the
// base spec's design notes (§9).
type PropagationMonitor interface {
	BeginDemonRun(d Demon)
	EndDemonRun(d Demon)
}

// BaseMonitor gives every Monitor method a no-op body; embed it and
// override only what you need.
type BaseMonitor struct{}

func (BaseMonitor) EnterSearch()                           {}
func (BaseMonitor) ExitSearch()                            {}
func (BaseMonitor) RestartSearch()                         {}
func (BaseMonitor) BeginInitialPropagation()               {}
func (BaseMonitor) EndInitialPropagation()                 {}
func (BaseMonitor) ApplyDecision(d Decision)               {}
func (BaseMonitor) RefuteDecision(d Decision)              {}
func (BaseMonitor) AfterDecision(d Decision, applied bool) {}
func (BaseMonitor) BeginFail()                             {}
func (BaseMonitor) EndFail()                               {}
func (BaseMonitor) AcceptSolution() bool                   { return true }
func (BaseMonitor) PeriodicCheck(e Engine)                 {}

// BasePropagationMonitor gives every PropagationMonitor method a no-op
// body.
type BasePropagationMonitor struct{}

func (BasePropagationMonitor) BeginDemonRun(d Demon) {}
func (BasePropagationMonitor) EndDemonRun(d Demon)   {}
