// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package cop

import (
	"testing"

	"github.com/go-air/cop/inter"
	"github.com/go-air/cop/intvar"
)

// A trivial satisfiable model finds exactly one solution and then reports
// no more.
func TestSolveFindsSingleSolutionThenExhausts(t *testing.T) {
	s := New("s1", DefaultParameters())
	x := intvar.New(s, 0, 0, "x")
	y := intvar.New(s, 0, 1, "y")
	if err := s.AddConstraint(&intvar.Equality{X: x, Y: y}); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}
	db := intvar.NewPhase(x, y)

	s.NewSearch(db)
	if !s.NextSolution() {
		t.Fatalf("expected a solution")
	}
	if s.State() != AtSolution {
		t.Fatalf("State() = %v, want AtSolution", s.State())
	}
	if x.Min() != 0 || y.Min() != 0 {
		t.Errorf("x=%d y=%d, want both 0", x.Min(), y.Min())
	}
	if s.NextSolution() {
		t.Errorf("expected no further solution")
	}
	if s.State() != NoMoreSolutions {
		t.Fatalf("State() = %v, want NoMoreSolutions", s.State())
	}
	s.EndSearch()
	if s.State() != OutsideSearch {
		t.Errorf("State() = %v after EndSearch, want OutsideSearch", s.State())
	}
}

// A model whose domains are disjoint fails at the root and Solve reports
// no solution without corrupting the engine's state machine.
func TestSolveInfeasibleAtRoot(t *testing.T) {
	s := New("s2", DefaultParameters())
	x := intvar.New(s, 0, 0, "x")
	y := intvar.New(s, 1, 1, "y")
	if err := s.AddConstraint(&intvar.Equality{X: x, Y: y}); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}
	db := intvar.NewPhase(x, y)

	if s.Solve(db) {
		t.Fatalf("expected infeasible problem")
	}
	if s.State() != OutsideSearch {
		t.Errorf("State() = %v after Solve on infeasible problem, want OutsideSearch", s.State())
	}
}

// Three variables constrained all-different over {0,1,2} have exactly
// six solutions (the permutations of the domain); exhaustive enumeration
// finds every one exactly once and then reports no more.
func TestAllDifferentEnumeratesAllPermutations(t *testing.T) {
	s := New("permutations", DefaultParameters())
	vars := []inter.IntVar{
		intvar.New(s, 0, 2, "a"),
		intvar.New(s, 0, 2, "b"),
		intvar.New(s, 0, 2, "c"),
	}
	if err := s.AddConstraint(&intvar.AllDifferentBC{Vars: vars}); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}
	// AllDifferentBC only removes a bound value from the other variables,
	// but that is enough for every solution found to be a genuine
	// permutation.
	db := intvar.NewPhase(vars...)

	s.NewSearch(db)
	seen := map[[3]int]bool{}
	count := 0
	for s.NextSolution() {
		count++
		var perm [3]int
		vals := map[int]bool{}
		for i, v := range vars {
			if !v.Bound() {
				t.Fatalf("solution %d has unbound variable", count)
			}
			perm[i] = v.Min()
			vals[v.Min()] = true
		}
		if len(vals) != 3 {
			t.Fatalf("solution %d is not a permutation: %v", count, perm)
		}
		if seen[perm] {
			t.Fatalf("solution %v repeated", perm)
		}
		seen[perm] = true
		if count > 20 {
			t.Fatalf("runaway enumeration past 20 solutions")
		}
	}
	if count != 6 {
		t.Errorf("solution count = %d, want 6", count)
	}
	s.EndSearch()
}

// Backtracking across a choice point restores a variable's domain
// exactly: the second solution must see the first choice's value removed,
// not the whole domain reset.
func TestBacktrackRestoresDomain(t *testing.T) {
	s := New("s4", DefaultParameters())
	x := intvar.New(s, 0, 2, "x")
	db := intvar.NewPhase(x)

	s.NewSearch(db)
	if !s.NextSolution() {
		t.Fatalf("expected first solution (x=0)")
	}
	if x.Min() != 0 {
		t.Fatalf("x = %d, want 0 at first solution", x.Min())
	}
	if !s.NextSolution() {
		t.Fatalf("expected second solution after backtrack")
	}
	if x.Min() != 1 {
		t.Errorf("x = %d, want 1 at second solution (0 removed by refuted left branch)", x.Min())
	}
	if !s.NextSolution() {
		t.Fatalf("expected third solution")
	}
	if x.Min() != 2 {
		t.Errorf("x = %d, want 2 at third solution", x.Min())
	}
	if s.NextSolution() {
		t.Errorf("expected exhaustion after all three values tried")
	}
	s.EndSearch()
}

// CheckAssignment reports a failing assignment without disturbing either
// variable's domain afterward.
func TestCheckAssignmentRestoresOnFailure(t *testing.T) {
	s := New("s5", DefaultParameters())
	x := intvar.New(s, 0, 1, "x")
	y := intvar.New(s, 0, 1, "y")
	if err := s.AddConstraint(&intvar.NotEqual{X: x, Y: y}); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}

	ok := s.CheckAssignment([]IntVarAssignment{{Var: x, Value: 0}, {Var: y, Value: 0}})
	if ok {
		t.Errorf("expected CheckAssignment to fail: x and y both forced to 0 violates NotEqual")
	}
	if x.Min() != 0 || x.Max() != 1 {
		t.Errorf("x domain disturbed: [%d,%d], want [0,1]", x.Min(), x.Max())
	}
	if y.Min() != 0 || y.Max() != 1 {
		t.Errorf("y domain disturbed: [%d,%d], want [0,1]", y.Min(), y.Max())
	}
}

// A succeeding CheckAssignment still restores state afterward: it answers
// a what-if question, it does not commit the assignment.
func TestCheckAssignmentRestoresOnSuccess(t *testing.T) {
	s := New("s5b", DefaultParameters())
	x := intvar.New(s, 0, 3, "x")

	ok := s.CheckAssignment([]IntVarAssignment{{Var: x, Value: 2}})
	if !ok {
		t.Fatalf("expected CheckAssignment to succeed")
	}
	if x.Min() != 0 || x.Max() != 3 {
		t.Errorf("x domain = [%d,%d] after CheckAssignment, want [0,3] restored", x.Min(), x.Max())
	}
}

// NestedSolve with restore=true undoes every side effect of the nested
// search, even the solution it found, leaving the parent exactly as it
// was before the nested call.
func TestNestedSolveRestoreUndoesSideEffects(t *testing.T) {
	s := New("s6", DefaultParameters())
	outer := intvar.New(s, 0, 5, "outer")
	db := intvar.NewPhase(outer)

	s.NewSearch(db)
	if !s.NextSolution() {
		t.Fatalf("expected outer solution")
	}

	inner := intvar.New(s, 7, 9, "inner")
	innerDB := intvar.NewPhase(inner)
	found := s.NestedSolve(innerDB, true)
	if !found {
		t.Fatalf("expected nested search to find a solution")
	}
	if inner.Min() != 7 || inner.Max() != 9 {
		t.Errorf("inner domain = [%d,%d] after restoring nested solve, want [7,9]", inner.Min(), inner.Max())
	}
	if outer.Min() != 0 {
		t.Errorf("outer = %d after nested restore, want undisturbed 0", outer.Min())
	}

	s.EndSearch()
}

// NestedSolve with restore=false promotes the nested search's reversible
// actions onto the parent search's own marker stack, so a later parent
// backtrack still runs them; with restore=true they run immediately when
// the nested search itself unwinds and never reach the parent at all.
func TestNestedSolveWithoutRestorePromotesReversibleActions(t *testing.T) {
	s := New("s6b", DefaultParameters())
	outer := intvar.New(s, 0, 1, "outer")
	db := intvar.NewPhase(outer)

	s.NewSearch(db)
	if !s.NextSolution() {
		t.Fatalf("expected outer solution")
	}

	ran := false
	found := s.NestedSolve(&pushActionBuilder{ran: &ran}, false)
	if !found {
		t.Fatalf("expected nested search to find its trivial solution")
	}
	if ran {
		t.Errorf("reversible action ran during NestedSolve itself; it should only run when the parent later backtracks past it")
	}

	parent := s.currentSearch()
	parent.stack.BacktrackOneLevel(parent.floorSentinel(), nil)
	if !ran {
		t.Errorf("reversible action promoted by NestedSolve(restore=false) never ran on parent backtrack")
	}
	s.EndSearch()
}

// NestedSolve with restore=true unwinds the nested search's own stack
// immediately, which runs its reversible actions right there rather than
// promoting them to the parent: nothing is left for the parent to run
// later.
func TestNestedSolveWithRestoreRunsActionsImmediately(t *testing.T) {
	s := New("s6c", DefaultParameters())
	outer := intvar.New(s, 0, 1, "outer")
	db := intvar.NewPhase(outer)

	s.NewSearch(db)
	if !s.NextSolution() {
		t.Fatalf("expected outer solution")
	}

	ran := false
	found := s.NestedSolve(&pushActionBuilder{ran: &ran}, true)
	if !found {
		t.Fatalf("expected nested search to find its trivial solution")
	}
	if !ran {
		t.Errorf("expected restore=true to run the nested action immediately while unwinding its own stack")
	}

	ran = false
	parent := s.currentSearch()
	parent.stack.BacktrackOneLevel(parent.floorSentinel(), nil)
	if ran {
		t.Errorf("reversible action ran again on parent backtrack even though it was never promoted")
	}
	s.EndSearch()
}

// NestedSolve with restore=false must promote reversible actions
// regardless of whether the nested search finds a solution: an exhausted
// nested search still hands its side-effect cleanup to the parent instead
// of running it in place while backtracking to its own sentinel (§D.2).
func TestNestedSolveWithoutRestorePromotesReversibleActionsOnExhaustion(t *testing.T) {
	s := New("s6d", DefaultParameters())
	outer := intvar.New(s, 0, 1, "outer")
	db := intvar.NewPhase(outer)

	s.NewSearch(db)
	if !s.NextSolution() {
		t.Fatalf("expected outer solution")
	}

	ran := false
	found := s.NestedSolve(&pushThenFailBuilder{ran: &ran}, false)
	if found {
		t.Fatalf("expected nested search to exhaust without a solution")
	}
	if ran {
		t.Errorf("reversible action ran while the nested search exhausted; it should only run when the parent later backtracks past it")
	}

	parent := s.currentSearch()
	parent.stack.BacktrackOneLevel(parent.floorSentinel(), nil)
	if !ran {
		t.Errorf("reversible action promoted by the exhausted NestedSolve(restore=false) never ran on parent backtrack")
	}
	s.EndSearch()
}

// pushThenFailBuilder pushes a reversible action on its first decision,
// then fails both branches of that one decision so the nested search
// exhausts without ever accepting a leaf.
type pushThenFailBuilder struct {
	ran    *bool
	pushed bool
	tried  bool
}

func (b *pushThenFailBuilder) Next(e inter.Engine) (inter.Decision, error) {
	sv := e.(*Solver)
	if !b.pushed {
		b.pushed = true
		sv.currentSearch().stack.PushReversibleAction(func() { *b.ran = true }, true)
	}
	if b.tried {
		return nil, nil
	}
	b.tried = true
	return failBothBranchesDecision{}, nil
}

type failBothBranchesDecision struct{}

func (failBothBranchesDecision) Apply(e inter.Engine) error  { e.Fail(); return nil }
func (failBothBranchesDecision) Refute(e inter.Engine) error { e.Fail(); return nil }
func (failBothBranchesDecision) String() string              { return "failBothBranchesDecision" }

// pushActionBuilder is a one-shot DecisionBuilder whose single decision
// pushes a reversible action onto the current search's own marker stack
// and then leaves immediately (nil at depth 1).
type pushActionBuilder struct {
	ran   *bool
	asked bool
}

func (b *pushActionBuilder) Next(e inter.Engine) (inter.Decision, error) {
	if b.asked {
		return nil, nil
	}
	b.asked = true
	return pushActionDecision{ran: b.ran}, nil
}

type pushActionDecision struct{ ran *bool }

func (d pushActionDecision) Apply(e inter.Engine) error {
	sv := e.(*Solver)
	sv.currentSearch().stack.PushReversibleAction(func() { *d.ran = true }, false)
	return nil
}
func (d pushActionDecision) Refute(e inter.Engine) error { return nil }
func (d pushActionDecision) String() string              { return "pushActionDecision" }

// Stats.Solutions increments exactly once per NextSolution call that finds
// a solution, and Stats.Branches/Decisions track the choice points
// explored getting there.
func TestStatsTrackSolutionsAndBranches(t *testing.T) {
	s := New("stats", DefaultParameters())
	x := intvar.New(s, 0, 1, "x")
	db := intvar.NewPhase(x)

	s.NewSearch(db)
	n := 0
	for s.NextSolution() {
		n++
	}
	s.EndSearch()

	st := s.Stats()
	if int64(n) != st.Solutions {
		t.Errorf("Stats.Solutions = %d, want %d (NextSolution true count)", st.Solutions, n)
	}
	if st.Decisions == 0 {
		t.Errorf("Stats.Decisions = 0, want > 0")
	}
	if st.Branches == 0 {
		t.Errorf("Stats.Branches = 0, want > 0")
	}
}

// A DecisionBuilder returning FailDecision forces an immediate fail at the
// current node without ever calling Apply or Refute.
func TestFailDecisionForcesImmediateFail(t *testing.T) {
	s := New("faildecision", DefaultParameters())
	if s.Solve(failOnceBuilder{}) {
		t.Fatalf("expected no solution: builder always returns FailDecision")
	}
}

type failOnceBuilder struct{}

func (failOnceBuilder) Next(e inter.Engine) (inter.Decision, error) {
	return FailDecision, nil
}

// RequestFinish, observed at the next PeriodicCheck, stops the search
// without raising ProblemInfeasible: it reports NoMoreSolutions even
// though solutions may remain unexplored.
func TestRequestFinishStopsSearchEarly(t *testing.T) {
	s := New("finish", DefaultParameters())
	x := intvar.New(s, 0, 100, "x")
	db := intvar.NewPhase(x)

	s.NewSearch(db)
	if !s.NextSolution() {
		t.Fatalf("expected a first solution")
	}
	s.RequestFinish()
	if s.NextSolution() {
		t.Errorf("expected RequestFinish to stop the search")
	}
	if s.State() != NoMoreSolutions {
		t.Errorf("State() = %v, want NoMoreSolutions", s.State())
	}
	s.EndSearch()
}

// AddConstraint posted mid-search (from inside a Decision.Apply, say) is
// propagated immediately rather than deferred to the next NextSolution.
func TestAddConstraintPropagatesImmediatelyMidSearch(t *testing.T) {
	s := New("midsearch", DefaultParameters())
	x := intvar.New(s, 0, 5, "x")
	y := intvar.New(s, 0, 5, "y")
	db := intvar.NewPhase(x)

	s.NewSearch(db)
	if !s.NextSolution() {
		t.Fatalf("expected a solution for x")
	}
	if err := s.AddConstraint(&intvar.Equality{X: x, Y: y}); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}
	if y.Min() != x.Min() || y.Max() != x.Max() {
		t.Errorf("y domain = [%d,%d] after mid-search AddConstraint, want [%d,%d]", y.Min(), y.Max(), x.Min(), x.Min())
	}
	s.EndSearch()
}

// CastFor recovers the CastConstraint registered for a target variable
// through AddCastConstraint, and reports false for any variable never
// used as a cast target.
func TestCastForLooksUpByTarget(t *testing.T) {
	s := New("cast", DefaultParameters())
	x := intvar.New(s, 0, 5, "x")
	y := intvar.New(s, 0, 5, "y")
	cc := &equalityCast{Equality: intvar.Equality{X: x, Y: y}}

	if err := s.AddCastConstraint(cc); err != nil {
		t.Fatalf("AddCastConstraint: %v", err)
	}
	got, ok := s.CastFor(x)
	if !ok || got != cc {
		t.Errorf("CastFor(x) = (%v, %v), want (%v, true)", got, ok, cc)
	}
	if _, ok := s.CastFor(y); ok {
		t.Errorf("CastFor(y) = true, want false: y is never a cast target")
	}
}

// equalityCast adapts intvar.Equality to inter.CastConstraint for the
// CastFor lookup test above; intvar ships no cast constraint of its own
// since casts are a modeling-layer concept the reference library doesn't
// need for its own propagators.
type equalityCast struct {
	intvar.Equality
}

func (c *equalityCast) Target() inter.IntVar { return c.X }
func (c *equalityCast) Expr() string         { return c.Y.Name() }
