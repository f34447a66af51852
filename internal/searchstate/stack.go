// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package searchstate

import (
	"fmt"

	"github.com/go-air/cop/inter"
	"github.com/go-air/cop/internal/pqueue"
	"github.com/go-air/cop/internal/trail"
)

// Sentinel codes. The constructor sentinel is pushed once, for the engine's
// lifetime, and never counted by SentinelPushed (§4.4).
const (
	ConstructorSentinel = iota
	InitialSearchSentinel
	RootNodeSentinel
)

// Stack is one search's marker stack: the reversible half of a Search
// (base spec §3, §4.4). It owns no variables or demons — only the
// bookkeeping needed to push checkpoints and rewind to them.
type Stack struct {
	trail   *trail.Trail
	queue   *pqueue.Queue
	markers []Marker

	// SentinelPushed counts sentinels on this stack, excluding the
	// constructor sentinel, enforcing the sentinel-discipline invariant
	// (§3): 1 before root propagation, 2 after, for a top-level search; 1
	// while inside a nested search.
	SentinelPushed int

	// promoteTo, when set, redirects every REVERSIBLE_ACTION this stack
	// backtracks over onto promoteTo's marker stack instead of running it.
	// A nested search started with restore=false sets this on itself for
	// its whole lifetime, so side effects it installs survive regardless
	// of whether it exhausts without a solution (§4.4, §4.5.4, §D.2).
	promoteTo *Stack
}

// PromoteActionsTo redirects every REVERSIBLE_ACTION this stack
// backtracks over, for the remainder of its life, onto parent's marker
// stack instead of running it in place. Must be set before any
// backtracking on this stack begins.
func (s *Stack) PromoteActionsTo(parent *Stack) {
	s.promoteTo = parent
}

// runReversibleAction is the common handling for a popped REVERSIBLE_ACTION
// marker, shared by BacktrackOneLevel and BacktrackToSentinel: promote it
// unrun if promoteTo is set, otherwise run it now.
func (s *Stack) runReversibleAction(m Marker) {
	if s.promoteTo != nil {
		s.promoteTo.markers = append(s.promoteTo.markers, m)
		return
	}
	if m.Action != nil {
		m.Action()
	}
}

// New creates a Stack bound to t and q. Both are shared with the owning
// engine; Stack never constructs its own trail or queue.
func New(t *trail.Trail, q *pqueue.Queue) *Stack {
	return &Stack{trail: t, queue: q}
}

// Depth returns the current marker-stack depth, for diagnostics.
func (s *Stack) Depth() int { return len(s.markers) }

// push is the common implementation of every exported Push* method:
// it captures trail sizes (unless capture is false), appends the marker,
// and bumps the queue stamp so previously-deduplicated demons become
// eligible again for the fresh wave a state transition implies.
func (s *Stack) push(m Marker, capture bool) {
	m.Captured = capture
	if capture {
		m.Sizes = s.trail.SizeOf()
	}
	s.markers = append(s.markers, m)
	s.queue.IncreaseStamp()
}

// PushSimple pushes a user checkpoint marker.
func (s *Stack) PushSimple() {
	s.push(Marker{Tag: Simple}, true)
}

// PushReversibleAction pushes a marker whose payload is run on rewind. If
// skipRewind is true ("action without state save"), the trail is not
// captured/rewound for this marker, making side-effect-free actions cheap
// to push (§3, §4.4).
func (s *Stack) PushReversibleAction(action func(), skipRewind bool) {
	s.push(Marker{Tag: ReversibleAction, Action: action, SkipRewind: skipRewind}, !skipRewind)
}

// PushChoicePoint pushes a choice-point marker for d on the given branch at
// the given search depth.
func (s *Stack) PushChoicePoint(d inter.Decision, b Branch, depth int) {
	s.push(Marker{Tag: ChoicePoint, Decision: d, Branch: b, Depth: depth}, true)
}

// PushSentinel pushes a sentinel marker tagged with code, and increments
// SentinelPushed unless code is the constructor sentinel.
func (s *Stack) PushSentinel(code int) {
	s.push(Marker{Tag: Sentinel, SentinelCode: code}, true)
	if code != ConstructorSentinel {
		s.SentinelPushed++
	}
}

// PopState pops the top marker, rewinding the trail to it if its sizes
// were captured, and bumps the queue stamp. PopState panics if the stack
// is empty (§7.4: pop on an empty marker stack is a usage error).
func (s *Stack) PopState() Marker {
	if len(s.markers) == 0 {
		panic(UsageError("searchstate: PopState on an empty marker stack"))
	}
	m := s.markers[len(s.markers)-1]
	s.markers = s.markers[:len(s.markers)-1]
	if m.Captured {
		s.trail.RewindTo(m.Sizes)
	}
	s.queue.IncreaseStamp()
	return m
}

// UsageError reports a programmer error in the search state machine (see
// base spec §7.4).
type UsageError string

func (e UsageError) Error() string { return string(e) }

// BacktrackResult is returned by BacktrackOneLevel/BacktrackToSentinel.
type BacktrackResult struct {
	// NoMore is true if backtracking exhausted the stack down to the
	// expected sentinel: no unexplored right branch remains.
	NoMore bool
	// RightDecision is the Decision to explore next (the right branch of
	// the choice point found on its left side), or nil if NoMore.
	RightDecision inter.Decision
	// Depth is the search depth to restore (from the choice-point payload),
	// valid only when RightDecision != nil.
	Depth int
}

// RunRevAction is the shape of a REVERSIBLE_ACTION runner. Nothing in this
// package takes one: the backtrack helpers run each popped action through
// runReversibleAction, after the trail (if captured) has been rewound.
type RunRevAction func(action func())

// BacktrackOneLevel pops markers until it finds an unexplored right
// branch, a matching sentinel, or a programmer error (§4.4):
//
//   - SENTINEL: decrements SentinelPushed, verifies expectedSentinel
//     matches, and reports NoMore.
//   - CHOICE_POINT on the left: stops and returns its Decision as the
//     right-branch decision to explore, with the depth to restore.
//   - CHOICE_POINT on the right: already fully explored; keep popping.
//   - REVERSIBLE_ACTION: runs its action (or promotes it, see promoteTo),
//     then keeps popping.
//   - SIMPLE: should not occur mid-search; logged via onStraySimple and
//     then keeps popping, matching the base spec's "log and continue".
func (s *Stack) BacktrackOneLevel(expectedSentinel int, onStraySimple func()) BacktrackResult {
	for {
		m := s.PopState()
		switch m.Tag {
		case Sentinel:
			s.SentinelPushed--
			if m.SentinelCode != expectedSentinel {
				panic(UsageError(fmt.Sprintf(
					"searchstate: sentinel mismatch on backtrack: got %d want %d",
					m.SentinelCode, expectedSentinel)))
			}
			return BacktrackResult{NoMore: true}
		case ChoicePoint:
			if m.Branch == Left {
				return BacktrackResult{RightDecision: m.Decision, Depth: m.Depth}
			}
			// right branch already explored both sides; continue popping.
		case ReversibleAction:
			s.runReversibleAction(m)
		case Simple:
			if onStraySimple != nil {
				onStraySimple()
			}
		}
	}
}

// BacktrackToSentinel pops markers until a sentinel matching code is
// found, running (or promoting, see promoteTo) every REVERSIBLE_ACTION
// payload along the way. It is used to tear down a nested or top-level
// search outright, discarding any choice points rather than returning a
// right-branch decision.
func (s *Stack) BacktrackToSentinel(code int) {
	for {
		m := s.PopState()
		switch m.Tag {
		case Sentinel:
			s.SentinelPushed--
			if m.SentinelCode == code {
				return
			}
		case ReversibleAction:
			s.runReversibleAction(m)
		}
	}
}

// JumpToSentinelWhenNested walks this (nested) stack top-down until its
// sentinel matching code is reached, promoting every REVERSIBLE_ACTION
// marker onto parent and dropping everything else, including the
// trail/queue effects markers would otherwise have rewound. This is used
// on a successful nested search that should keep its side effects (§4.4,
// §4.5.4): the parent inherits exactly the reversible actions that should
// outlive the nested search (e.g. a branch-selector uninstallation).
//
// This complements promoteTo: a nested search that exhausts without a
// solution never stops mid-stack, so its own backtracking (via promoteTo)
// already promoted everything by the time it returns. A nested search
// that finds a leaf stops with its stack untouched, which is what this
// function walks and promotes explicitly.
func (s *Stack) JumpToSentinelWhenNested(code int, parent *Stack) {
	for {
		if len(s.markers) == 0 {
			panic(UsageError("searchstate: JumpToSentinelWhenNested: sentinel not found"))
		}
		m := s.markers[len(s.markers)-1]
		s.markers = s.markers[:len(s.markers)-1]
		if m.Tag == Sentinel {
			s.SentinelPushed--
			if m.SentinelCode == code {
				return
			}
			continue
		}
		if m.Tag == ReversibleAction {
			parent.markers = append(parent.markers, m)
		}
	}
}
