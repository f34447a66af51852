// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package cop

import (
	"github.com/go-air/cop/inter"
	"github.com/go-air/cop/internal/searchstate"
)

// Sentinel codes, re-exported from package searchstate so callers never
// need to import it directly (§3, §4.4).
const (
	ConstructorSentinel   = searchstate.ConstructorSentinel
	InitialSearchSentinel = searchstate.InitialSearchSentinel
	RootNodeSentinel      = searchstate.RootNodeSentinel
)

// failSignal is the private panic value used to implement the fail-escape
// (§5, §9): a non-local jump to the innermost active Search's driver loop.
// It is scoped per Search by ordinary Go call-stack nesting — a nested
// search's own underEscape call shadows the outer one for the duration of
// nested propagation, exactly as §5 requires.
type failSignal struct{}

// Search is one level of the engine's search stack: the top-level search
// (reused across NewSearch calls via Solver.boot) or a nested search
// pushed by NestedSolve (§3, §4.4, §4.5).
type Search struct {
	stack    *searchstate.Stack
	monitors monitorList
	db       inter.DecisionBuilder

	// branchSelector is the modify_decision hook (§4.5.2): it may rewrite
	// or veto the next Decision before it is applied. A nil selector is
	// equivalent to always returning NO_CHANGE.
	branchSelector func(inter.Engine, inter.Decision) inter.DecisionModification

	depth     int
	leftDepth int

	shouldFinish  bool
	shouldRestart bool
	escapeActive  bool

	topLevel bool
}

// floorSentinel is the sentinel code that bounds this search's own scope:
// ROOT_NODE for the top-level search (between root propagation and search
// end it carries two sentinels, INITIAL_SEARCH below ROOT_NODE), and
// INITIAL_SEARCH for a nested search, which never pushes a second sentinel
// of its own (§3's sentinel-discipline invariant).
func (srch *Search) floorSentinel() int {
	if srch.topLevel {
		return RootNodeSentinel
	}
	return InitialSearchSentinel
}

func (srch *Search) onStraySimple(s *Solver) func() {
	return func() {
		s.log.Printf("search: SIMPLE marker encountered mid-backtrack")
	}
}

// underEscape runs fn with this search's fail-escape installed: a call to
// Solver.Fail anywhere underneath fn panics with failSignal, caught here
// and reported as failed=true. Any other panic propagates unchanged.
func (srch *Search) underEscape(fn func()) (failed bool) {
	prev := srch.escapeActive
	srch.escapeActive = true
	defer func() {
		srch.escapeActive = prev
		if r := recover(); r != nil {
			if _, ok := r.(failSignal); ok {
				failed = true
				return
			}
			panic(r)
		}
	}()
	fn()
	return false
}

// checkFail polls for a pending permanent-false flag or a monitor-requested
// finish/restart and, if found, raises a fail (§5's check_fail). It runs
// once at the start of every main-loop step; the other monitor hooks do not
// poll.
func (srch *Search) checkFail(s *Solver) {
	if s.permanentFalse {
		s.Fail()
	}
	srch.monitors.periodicCheck(s)
	if srch.shouldFinish || srch.shouldRestart {
		s.Fail()
	}
}

func (srch *Search) modifyDecision(s *Solver, d inter.Decision) inter.DecisionModification {
	if srch.branchSelector == nil {
		return inter.NoChange
	}
	return srch.branchSelector(s, d)
}

// step runs exactly one main-loop iteration (§4.5.2): refuting a pending
// right-branch decision if any, then asking the decision builder for
// successive decisions until one is actually applied (descending a level)
// or the node is a leaf.
func (srch *Search) step(s *Solver, fd inter.Decision) (leaf bool, nextFd inter.Decision) {
	srch.checkFail(s)

	if fd != nil {
		srch.stack.PushChoicePoint(fd, searchstate.Right, srch.depth)
		srch.monitors.refuteDecision(fd)
		s.stats.Branches++
		if err := fd.Refute(s); err != nil {
			s.log.Printf("decision refute error: %v", err)
			s.Fail()
		}
		srch.monitors.afterDecision(fd, false)
		srch.depth++
	}

	for {
		d, err := srch.db.Next(s)
		if err != nil {
			s.log.Printf("decision builder error: %v", err)
			s.Fail()
		}
		if d == nil {
			break
		}
		if IsFailDecision(d) {
			s.Fail()
			continue
		}
		switch srch.modifyDecision(s, d) {
		case inter.SwitchBranches:
			d = reverseDecision{inner: d}
			fallthrough
		case inter.NoChange:
			s.stats.Decisions++
			srch.stack.PushChoicePoint(d, searchstate.Left, srch.depth)
			srch.monitors.applyDecision(d)
			s.stats.Branches++
			if err := d.Apply(s); err != nil {
				s.log.Printf("decision apply error: %v", err)
				s.Fail()
			}
			srch.monitors.afterDecision(d, true)
			srch.leftDepth++
			srch.depth++
			return false, nil
		case inter.KeepLeft:
			s.stats.Decisions++
			srch.monitors.applyDecision(d)
			s.stats.Branches++
			if err := d.Apply(s); err != nil {
				s.log.Printf("decision apply error: %v", err)
				s.Fail()
			}
			srch.monitors.afterDecision(d, true)
			srch.leftDepth++
			srch.depth++
			continue
		case inter.KeepRight:
			s.stats.Decisions++
			srch.monitors.refuteDecision(d)
			s.stats.Branches++
			if err := d.Refute(s); err != nil {
				s.log.Printf("decision refute error: %v", err)
				s.Fail()
			}
			srch.monitors.afterDecision(d, false)
			srch.depth++
			continue
		case inter.KillBoth:
			s.Fail()
		}
	}

	if !srch.monitors.acceptSolution() {
		s.Fail()
	}
	s.stats.Solutions++
	return true, nil
}

// runMainLoop drives step to a solution or exhaustion (§4.5.2, §4.5.3),
// starting from the given pending right-branch decision (nil if none) and
// search depth.
func (srch *Search) runMainLoop(s *Solver, fd inter.Decision, depth int) bool {
	srch.depth = depth
	for {
		var leaf bool
		var next inter.Decision
		failed := srch.underEscape(func() {
			leaf, next = srch.step(s, fd)
		})
		if failed {
			s.queue.AfterFailure()
			srch.monitors.endFail()
			switch {
			case srch.shouldFinish:
				srch.stack.BacktrackToSentinel(srch.floorSentinel())
				srch.shouldFinish = false
				srch.shouldRestart = false
				return false
			case srch.shouldRestart:
				srch.stack.BacktrackToSentinel(srch.floorSentinel())
				srch.stack.PushSentinel(srch.floorSentinel())
				srch.shouldRestart = false
				srch.monitors.restartSearch()
				fd = nil
				continue
			default:
				res := srch.stack.BacktrackOneLevel(srch.floorSentinel(), srch.onStraySimple(s))
				if res.NoMore {
					return false
				}
				fd = res.RightDecision
				srch.depth = res.Depth
				continue
			}
		}
		if leaf {
			return true
		}
		fd = next
	}
}

// installMonitors assembles the ordered monitor list for a (re)started
// search (§4.5.1 step 3): the mandatory trace monitor, the profiler if
// configured, then the caller's monitors. A decision builder has no way to
// add monitors of its own to the list.
func (s *Solver) installMonitors(caller []inter.Monitor) monitorList {
	traceAll := s.params.TraceLevel == TraceNormal
	ms := monitorList{newTraceMonitor(s.log, s.params.TraceSearch || traceAll, s.params.TracePropagation || traceAll)}
	if s.profileW != nil {
		ms = append(ms, newProfileMonitor(s.profileW, s))
	}
	if s.exportW != nil {
		ms = append(ms, newProfileMonitor(s.exportW, s))
	}
	ms = append(ms, caller...)
	return ms
}

// NewSearch installs db and monitors as the top-level search (§4.5.1
// new_search). It refuses if a search is already active; callers already
// inside a search must use NestedSolve.
func (s *Solver) NewSearch(db inter.DecisionBuilder, mon ...inter.Monitor) {
	if len(s.searches) != 0 {
		panic(UsageError("cop: NewSearch called while a search is already active"))
	}
	s.boot.stack.BacktrackToSentinel(InitialSearchSentinel)
	s.boot.monitors = s.installMonitors(mon)
	s.boot.db = db
	s.boot.depth = 0
	s.boot.leftDepth = 0
	s.boot.shouldFinish = false
	s.boot.shouldRestart = false
	s.boot.branchSelector = nil
	s.state = OutsideSearch
	s.boot.monitors.enterSearch()
	s.boot.stack.PushSentinel(InitialSearchSentinel)
	s.searches = append(s.searches, s.boot)
}

// NextSolution advances the current top-level search to its next solution
// (§4.5.1 next_solution).
func (s *Solver) NextSolution() bool {
	srch := s.currentSearch()
	switch s.state {
	case ProblemInfeasible, NoMoreSolutions:
		return false
	case AtSolution:
		res := srch.stack.BacktrackOneLevel(srch.floorSentinel(), srch.onStraySimple(s))
		if res.NoMore {
			s.state = NoMoreSolutions
			return false
		}
		s.state = InSearch
		found := srch.runMainLoop(s, res.RightDecision, res.Depth)
		s.state = stateFor(found)
		return found
	case OutsideSearch:
		s.state = InRootNode
		srch.monitors.beginInitialPropagation()
		failed := srch.underEscape(func() {
			if s.params.NoSolve {
				s.Fail()
			}
			if s.permanentFalse {
				s.Fail()
			}
			if err := s.queue.ProcessConstraints(); err != nil {
				s.log.Printf("initial propagation error: %v", err)
				s.Fail()
			}
		})
		if failed {
			s.queue.AfterFailure()
			srch.stack.BacktrackToSentinel(InitialSearchSentinel)
			s.state = ProblemInfeasible
			return false
		}
		srch.monitors.endInitialPropagation()
		if srch.topLevel {
			srch.stack.PushSentinel(RootNodeSentinel)
		}
		s.state = InSearch
		found := srch.runMainLoop(s, nil, srch.depth)
		s.state = stateFor(found)
		return found
	default:
		panic(UsageError("cop: NextSolution called in an unexpected engine state"))
	}
}

func stateFor(found bool) State {
	if found {
		return AtSolution
	}
	return NoMoreSolutions
}

// EndSearch tears down the top-level search, restoring the engine to
// OUTSIDE_SEARCH with exactly one INITIAL_SEARCH sentinel remaining, ready
// for the next NewSearch (§8 invariant).
func (s *Solver) EndSearch() {
	if len(s.searches) == 0 {
		panic(UsageError("cop: EndSearch with no active search"))
	}
	srch := s.searches[len(s.searches)-1]
	srch.monitors.exitSearch()
	// A failure at the root has already popped the INITIAL_SEARCH sentinel.
	if srch.stack.SentinelPushed > 0 {
		srch.stack.BacktrackToSentinel(InitialSearchSentinel)
	}
	srch.stack.PushSentinel(InitialSearchSentinel)
	s.searches = s.searches[:len(s.searches)-1]
	s.state = OutsideSearch
}

// RestartSearch is the public restart verb (§6): equivalent to a monitor
// calling RequestRestart, consumed the next time the main loop faults.
func (s *Solver) RestartSearch() { s.RequestRestart() }

// Solve runs a complete one-shot search: NewSearch, a single NextSolution,
// EndSearch (§6).
func (s *Solver) Solve(db inter.DecisionBuilder, mon ...inter.Monitor) bool {
	s.NewSearch(db, mon...)
	found := s.NextSolution()
	s.EndSearch()
	return found
}

// NestedSolve runs db as a nested search inside the caller's active search
// (§4.5.4). If restore is true, every side effect of the nested search is
// undone, whether or not a solution is found. If restore is false,
// reversible actions are promoted onto the parent search, so side effects
// that outlive the nested search (e.g. branch-selector uninstallation)
// survive regardless of whether a solution was accepted (§D.2).
func (s *Solver) NestedSolve(db inter.DecisionBuilder, restore bool, mon ...inter.Monitor) bool {
	parent := s.currentSearch()
	if len(s.searches) == 0 {
		panic(UsageError("cop: NestedSolve called with no active search"))
	}
	nested := &Search{
		stack:    searchstate.New(s.trail, s.queue),
		monitors: s.installMonitors(mon),
		db:       db,
		topLevel: false,
	}
	if !restore {
		// Every REVERSIBLE_ACTION this nested search backtracks over from
		// here on — whether while exploring sibling branches or while
		// exhausting down to its own sentinel — is handed to the parent
		// unrun instead, so it survives regardless of whether a solution
		// is ever found.
		nested.stack.PromoteActionsTo(parent.stack)
	}
	nested.monitors.enterSearch()
	nested.stack.PushSentinel(InitialSearchSentinel)
	s.searches = append(s.searches, nested)

	prevState := s.state
	s.state = OutsideSearch
	found := s.NextSolution()

	if found {
		if restore {
			nested.stack.BacktrackToSentinel(InitialSearchSentinel)
		} else {
			nested.stack.JumpToSentinelWhenNested(InitialSearchSentinel, parent.stack)
		}
	}
	// If !found, the nested search's own exhaustion logic already backed
	// out through its whole stack, running every action along the way
	// (restore) or promoting it (no restore); there is nothing left to do
	// here.
	nested.monitors.exitSearch()
	s.searches = s.searches[:len(s.searches)-1]
	s.state = prevState
	return found
}
