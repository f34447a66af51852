// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package searchstate

import (
	"testing"

	"github.com/go-air/cop/inter"
	"github.com/go-air/cop/internal/pqueue"
	"github.com/go-air/cop/internal/trail"
)

type fakeDecision struct{ name string }

func (d *fakeDecision) Apply(e inter.Engine) error  { return nil }
func (d *fakeDecision) Refute(e inter.Engine) error { return nil }
func (d *fakeDecision) String() string              { return d.name }

func newStack() *Stack {
	tr := trail.New(trail.Config{})
	q := pqueue.New(func(pqueue.Constraint) error { return nil })
	return New(tr, q)
}

func TestPushSimplePopRewindsTrail(t *testing.T) {
	s := newStack()
	x := 0
	s.PushSimple()
	s.trail.SaveInt(&x)
	x = 42
	s.PopState()
	if x != 0 {
		t.Errorf("x = %d, want 0", x)
	}
}

func TestPushSentinelCountsExceptConstructor(t *testing.T) {
	s := newStack()
	s.PushSentinel(ConstructorSentinel)
	if s.SentinelPushed != 0 {
		t.Fatalf("SentinelPushed = %d after constructor sentinel, want 0", s.SentinelPushed)
	}
	s.PushSentinel(InitialSearchSentinel)
	if s.SentinelPushed != 1 {
		t.Fatalf("SentinelPushed = %d, want 1", s.SentinelPushed)
	}
}

func TestPopStateOnEmptyPanics(t *testing.T) {
	s := newStack()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic on PopState of empty stack")
		}
	}()
	s.PopState()
}

func TestReversibleActionRunsOnPop(t *testing.T) {
	s := newStack()
	ran := false
	s.PushReversibleAction(func() { ran = true }, false)
	s.PopState()
	if ran {
		t.Errorf("PopState alone must not run the action; only backtrack helpers do")
	}
}

func TestBacktrackOneLevelRunsReversibleActions(t *testing.T) {
	s := newStack()
	s.PushSentinel(InitialSearchSentinel)
	ran := false
	s.PushReversibleAction(func() { ran = true }, true)

	res := s.BacktrackOneLevel(InitialSearchSentinel, nil)
	if !res.NoMore {
		t.Fatalf("expected NoMore backtrack result")
	}
	if !ran {
		t.Errorf("reversible action did not run during backtrack")
	}
	if s.SentinelPushed != 0 {
		t.Errorf("SentinelPushed = %d after backtrack to matching sentinel, want 0", s.SentinelPushed)
	}
}

func TestBacktrackOneLevelFindsLeftChoicePoint(t *testing.T) {
	s := newStack()
	s.PushSentinel(InitialSearchSentinel)
	d := &fakeDecision{name: "d"}
	s.PushChoicePoint(d, Left, 3)

	res := s.BacktrackOneLevel(InitialSearchSentinel, nil)
	if res.NoMore {
		t.Fatalf("expected an unexplored right branch, got NoMore")
	}
	if res.Depth != 3 {
		t.Errorf("Depth = %d, want 3", res.Depth)
	}
}

func TestBacktrackOneLevelSkipsExploredRightChoicePoint(t *testing.T) {
	s := newStack()
	s.PushSentinel(InitialSearchSentinel)
	d := &fakeDecision{name: "d"}
	s.PushChoicePoint(d, Right, 1)

	res := s.BacktrackOneLevel(InitialSearchSentinel, nil)
	if !res.NoMore {
		t.Errorf("right-branch choice point should be skipped, not returned")
	}
}

func TestBacktrackOneLevelLogsStraySimple(t *testing.T) {
	s := newStack()
	s.PushSentinel(InitialSearchSentinel)
	s.PushSimple()

	logged := false
	res := s.BacktrackOneLevel(InitialSearchSentinel, func() { logged = true })
	if !res.NoMore {
		t.Fatalf("expected NoMore")
	}
	if !logged {
		t.Errorf("onStraySimple hook was not called")
	}
}

func TestBacktrackOneLevelMismatchedSentinelPanics(t *testing.T) {
	s := newStack()
	s.PushSentinel(RootNodeSentinel)
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic on sentinel mismatch")
		}
	}()
	s.BacktrackOneLevel(InitialSearchSentinel, nil)
}

func TestBacktrackToSentinelDiscardsChoicePoints(t *testing.T) {
	s := newStack()
	s.PushSentinel(InitialSearchSentinel)
	s.PushSentinel(RootNodeSentinel)
	d := &fakeDecision{name: "d"}
	s.PushChoicePoint(d, Left, 1)

	s.BacktrackToSentinel(RootNodeSentinel)
	if s.Depth() != 1 {
		t.Fatalf("Depth = %d after backtrack to RootNodeSentinel, want 1 (InitialSearchSentinel remains)", s.Depth())
	}

	s.BacktrackToSentinel(InitialSearchSentinel)
	if s.Depth() != 0 {
		t.Errorf("Depth = %d after final backtrack, want 0", s.Depth())
	}
}

func TestJumpToSentinelWhenNestedPromotesReversibleActions(t *testing.T) {
	parent := newStack()
	nested := &Stack{trail: parent.trail, queue: parent.queue}
	nested.PushSentinel(InitialSearchSentinel)
	ran := false
	nested.PushReversibleAction(func() { ran = true }, true)

	nested.JumpToSentinelWhenNested(InitialSearchSentinel, parent)
	if ran {
		t.Errorf("JumpToSentinelWhenNested must not run the action itself")
	}
	if parent.Depth() != 1 {
		t.Fatalf("parent.Depth() = %d, want 1 (promoted action)", parent.Depth())
	}
	if nested.Depth() != 0 {
		t.Errorf("nested.Depth() = %d, want 0", nested.Depth())
	}
}

func TestPromoteActionsToRedirectsBacktrackOneLevel(t *testing.T) {
	parent := newStack()
	parent.PushSentinel(InitialSearchSentinel)
	nested := &Stack{trail: parent.trail, queue: parent.queue}
	nested.PromoteActionsTo(parent)
	nested.PushSentinel(InitialSearchSentinel)
	ran := false
	nested.PushReversibleAction(func() { ran = true }, true)

	res := nested.BacktrackOneLevel(InitialSearchSentinel, nil)
	if !res.NoMore {
		t.Fatalf("expected NoMore backtrack result")
	}
	if ran {
		t.Errorf("promoted action ran during nested backtrack; it should only run when parent backtracks over it")
	}
	if parent.Depth() != 2 {
		t.Fatalf("parent.Depth() = %d, want 2 (its own sentinel plus the promoted action)", parent.Depth())
	}

	parent.BacktrackOneLevel(InitialSearchSentinel, nil)
	if !ran {
		t.Errorf("promoted action never ran on parent backtrack")
	}
}

func TestJumpToSentinelWhenNestedMissingSentinelPanics(t *testing.T) {
	parent := newStack()
	nested := &Stack{trail: parent.trail, queue: parent.queue}
	nested.PushSimple()

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic when sentinel is never found")
		}
	}()
	nested.JumpToSentinelWhenNested(InitialSearchSentinel, parent)
}
