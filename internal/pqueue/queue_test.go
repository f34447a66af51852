// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package pqueue

import "testing"

type testDemon struct {
	Stamped
	prio Priority
	run  func() error
}

func (d *testDemon) Run() error         { return d.run() }
func (d *testDemon) Priority() Priority { return d.prio }

func newDemon(prio Priority, run func() error) *testDemon {
	return &testDemon{prio: prio, run: run}
}

func TestEnqueueDedupesWithinWave(t *testing.T) {
	q := New(func(Constraint) error { return nil })
	q.Freeze()

	runs := 0
	d := newDemon(Normal, func() error { runs++; return nil })

	q.Enqueue(d)
	q.Enqueue(d)
	q.Enqueue(d)

	q.Unfreeze()
	if runs != 1 {
		t.Errorf("runs = %d, want 1 (dedup within a wave)", runs)
	}
}

func TestEnqueueRefiresAcrossWaves(t *testing.T) {
	q := New(func(Constraint) error { return nil })
	runs := 0
	d := newDemon(Normal, func() error { runs++; return nil })

	q.Enqueue(d)
	q.IncreaseStamp()
	q.Enqueue(d)

	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}

func TestPriorityOrdering(t *testing.T) {
	q := New(func(Constraint) error { return nil })
	q.Freeze()

	var order []string
	var normal2 *testDemon
	var varDemon *testDemon
	normal1 := newDemon(Normal, func() error { order = append(order, "normal1"); return nil })
	normal2 = newDemon(Normal, func() error { order = append(order, "normal2"); return nil })
	varDemon = newDemon(Var, func() error {
		order = append(order, "var")
		q.Enqueue(normal2)
		return nil
	})
	delayed := newDemon(Delayed, func() error { order = append(order, "delayed"); return nil })

	q.Enqueue(delayed)
	q.Enqueue(varDemon)
	q.Enqueue(normal1)

	q.Unfreeze()

	want := []string{"normal1", "var", "normal2", "delayed"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q (full: %v)", i, order[i], want[i], order)
		}
	}
}

func TestFreezeDefersProcessing(t *testing.T) {
	q := New(func(Constraint) error { return nil })
	q.Freeze()
	q.Freeze()

	ran := false
	d := newDemon(Normal, func() error { ran = true; return nil })
	q.Enqueue(d)
	if ran {
		t.Fatalf("demon ran while frozen")
	}

	q.Unfreeze()
	if ran {
		t.Fatalf("demon ran with freezeLevel still > 0")
	}

	q.Unfreeze()
	if !ran {
		t.Errorf("demon did not run after last Unfreeze")
	}
}

func TestUnfreezeWithoutFreezePanics(t *testing.T) {
	q := New(func(Constraint) error { return nil })
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic on unmatched Unfreeze")
		}
	}()
	q.Unfreeze()
}

func TestAfterFailureDiscardsQueuedDemons(t *testing.T) {
	q := New(func(Constraint) error { return nil })
	q.Freeze()
	ran := false
	d := newDemon(Normal, func() error { ran = true; return nil })
	q.Enqueue(d)

	hookRan := false
	q.OnFail(func() { hookRan = true })
	q.AfterFailure()

	q.Unfreeze()
	if ran {
		t.Errorf("demon queued before AfterFailure still ran")
	}
	if !hookRan {
		t.Errorf("OnFail hook did not run")
	}
}

func TestAddConstraintDrainsReentrantly(t *testing.T) {
	q := New(nil)
	var order []int
	q.postFn = func(c Constraint) error {
		return c.Post()
	}

	var addSecond Constraint
	first := constraintFunc(func() error {
		order = append(order, 1)
		return q.AddConstraint(addSecond)
	})
	second := constraintFunc(func() error {
		order = append(order, 2)
		return nil
	})
	addSecond = second

	if err := q.AddConstraint(first); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

type constraintFunc func() error

func (f constraintFunc) Post() error { return f() }

func TestInhibitStopsEnqueue(t *testing.T) {
	q := New(func(Constraint) error { return nil })
	q.Freeze()
	ran := false
	d := newDemon(Normal, func() error { ran = true; return nil })
	Inhibit(d)
	q.Enqueue(d)
	q.Unfreeze()
	if ran {
		t.Errorf("inhibited demon ran")
	}

	Desinhibit(d, 0)
	q.Freeze()
	q.Enqueue(d)
	q.Unfreeze()
	if !ran {
		t.Errorf("desinhibited demon did not run")
	}
}

func TestDemonHooksBracketEveryRun(t *testing.T) {
	q := New(func(Constraint) error { return nil })
	q.Freeze()

	var events []string
	q.SetDemonHooks(
		func(d StampHolder) { events = append(events, "begin") },
		func(d StampHolder) { events = append(events, "end") },
	)
	d := newDemon(Normal, func() error { events = append(events, "run"); return nil })
	q.Enqueue(d)
	q.Unfreeze()

	want := []string{"begin", "run", "end"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events = %v, want %v", events, want)
		}
	}
}
