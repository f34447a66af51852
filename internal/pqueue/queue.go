// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package pqueue implements the engine's propagation queue: three
// single-priority FIFOs of demons, run to a fixed point on every
// propagation wave.
//
// The queue deliberately knows nothing about variables or domains — it
// only schedules and runs Demon values — matching the base spec's
// separation between the queue (§4.2) and the variable/constraint
// contract (§4.3).
package pqueue

// Priority is one of the three demon priorities. Within a priority,
// demons run in strict FIFO order; across priorities NORMAL preempts VAR
// which preempts DELAYED, except that VAR drains one demon at a time so a
// NORMAL demon created by a VAR firing gets a chance to run before the next
// VAR demon, as described in base spec §4.2.
type Priority int

const (
	Normal Priority = iota
	Var
	Delayed
	numPriorities
)

// Demon is a passive reactor scheduled to run when a variable it watches
// changes. Stamp is engine-owned bookkeeping used for deduplication within
// one propagation wave; a Demon implementation should embed *Stamped (or
// otherwise store its stamp in a field the Queue can read/write through
// the StampHolder interface) rather than managing it itself.
type Demon interface {
	Run() error
	Priority() Priority
}

// StampHolder is implemented by queued demons to let the Queue read and
// write the wave stamp at which the demon was last enqueued (lowered by one
// once it starts running), without the Queue owning demon storage directly.
type StampHolder interface {
	Demon
	Stamp() int64
	SetStamp(int64)
}

// inhibited is the stamp value that marks a demon as inhibited: it is
// larger than any real wave stamp could reach in a single process run's
// lifetime, as required by "Inhibition sets its stamp to the maximum
// value".
const inhibited = int64(1) << 62

// Inhibit marks d as inhibited. It does not touch the trail; callers that
// need inhibition to be reversible (base spec §3, §C.5) must log the prior
// stamp themselves before calling this, typically via a REVERSIBLE_ACTION
// marker.
func Inhibit(d StampHolder) { d.SetStamp(inhibited) }

// Desinhibit clears inhibition, restoring d's stamp to s (the value saved
// before Inhibit was called).
func Desinhibit(d StampHolder, s int64) { d.SetStamp(s) }

// Stamped is an embeddable helper giving a concrete Demon type a
// StampHolder implementation.
type Stamped struct{ stamp int64 }

func (s *Stamped) Stamp() int64     { return s.stamp }
func (s *Stamped) SetStamp(v int64) { s.stamp = v }

// ActionOnFail is run once, and then cleared, the next time AfterFailure
// runs, giving constraint implementers a hook to release transient state
// allocated during propagation regardless of how the wave ended.
type ActionOnFail func()

// Constraint is something that can be posted (subscribing demons) and
// incrementally propagated, matching the Adder half of the base spec's
// add_constraint/process_constraints contract (§4.2). The queue only
// needs Post to drive `to_add` draining; the caller's propagate step lives
// outside the queue, wired in by the engine.
type Constraint interface {
	Post() error
}

// DemonHook is called immediately before or after a demon runs, letting
// the engine notify propagation-level observers without the queue itself
// knowing anything about monitors.
type DemonHook func(StampHolder)

// Queue is the engine's three-priority FIFO of demons.
type Queue struct {
	fifos       [numPriorities][]StampHolder
	stamp       int64
	freezeLevel int
	inProcess   bool
	onFail      ActionOnFail
	toAdd       []Constraint
	inAdd       bool
	postFn      func(Constraint) error

	beginDemon DemonHook
	endDemon   DemonHook
}

// SetDemonHooks installs begin/end hooks run around every demon's Run,
// letting the engine wire its monitor list's BeginDemonRun/EndDemonRun
// (base spec's propagation-level tracing, §9) without the queue needing
// to import anything about monitors. Either hook may be nil.
func (q *Queue) SetDemonHooks(begin, end DemonHook) {
	q.beginDemon = begin
	q.endDemon = end
}

func (q *Queue) runDemon(d StampHolder) error {
	if q.beginDemon != nil {
		q.beginDemon(d)
	}
	// Once d starts running, a later change in this same wave must be able
	// to schedule it again; an inhibited demon keeps its stamp.
	if d.Stamp() != inhibited {
		d.SetStamp(q.stamp - 1)
	}
	err := d.Run()
	if q.endDemon != nil {
		q.endDemon(d)
	}
	return err
}

// New creates an empty Queue. postFn is called once per constraint drained
// from the to-add scratch list by ProcessConstraints; it is supplied by the
// engine so the queue itself stays free of Constraint propagation
// semantics beyond scheduling the post.
func New(postFn func(Constraint) error) *Queue {
	return &Queue{stamp: 1, postFn: postFn}
}

// Stamp returns the queue's current wave stamp.
func (q *Queue) Stamp() int64 { return q.stamp }

// IncreaseStamp starts a new propagation wave without freezing, so that
// externally-triggered re-scheduling (e.g. after a fail) deduplicates
// against a fresh baseline.
func (q *Queue) IncreaseStamp() { q.stamp++ }

// Enqueue schedules d to run unless it is already waiting in the queue for
// the current wave (d.Stamp() < q.Stamp()). Deduplication (base spec
// §4.2/§8): enqueuing a demon again before it runs is a no-op, however many
// changes fire it; Process lowers its stamp when it starts running, so a
// change made after that schedules it once more.
func (q *Queue) Enqueue(d StampHolder) {
	if d.Stamp() >= q.stamp {
		return
	}
	d.SetStamp(q.stamp)
	q.fifos[d.Priority()] = append(q.fifos[d.Priority()], d)
	q.processIfUnfrozen()
}

// Freeze increments the nesting counter and bumps the stamp so demons
// enqueued while frozen re-fire correctly once thawed, and demons that
// already ran in an earlier wave are eligible to run again.
func (q *Queue) Freeze() {
	q.freezeLevel++
	q.stamp++
}

// Unfreeze decrements the nesting counter; once it reaches zero the queue
// resumes draining automatically.
func (q *Queue) Unfreeze() {
	if q.freezeLevel == 0 {
		panic("pqueue: Unfreeze without matching Freeze")
	}
	q.freezeLevel--
	q.processIfUnfrozen()
}

func (q *Queue) processIfUnfrozen() {
	if q.freezeLevel == 0 {
		q.Process()
	}
}

// Process drains the queue to a fixed point: NORMAL demons run to
// exhaustion; whenever NORMAL is empty one VAR demon runs (which may
// enqueue more NORMAL demons, interleaving them as described in base spec
// §4.2); once both NORMAL and VAR are empty, one DELAYED demon runs; the
// whole cycle repeats until all three FIFOs are empty.
//
// Process is reentrancy-guarded: a demon that (directly or transitively)
// triggers another Enqueue/Process while already inside Process just
// returns, relying on the outer call to keep draining.
func (q *Queue) Process() error {
	if q.inProcess {
		return nil
	}
	q.inProcess = true
	defer func() { q.inProcess = false }()

	for q.nonEmpty() {
		for len(q.fifos[Normal]) > 0 || len(q.fifos[Var]) > 0 {
			for len(q.fifos[Normal]) > 0 {
				d := q.popFront(Normal)
				if err := q.runDemon(d); err != nil {
					return err
				}
			}
			if len(q.fifos[Var]) > 0 {
				d := q.popFront(Var)
				if err := q.runDemon(d); err != nil {
					return err
				}
			}
		}
		if len(q.fifos[Delayed]) > 0 {
			d := q.popFront(Delayed)
			if err := q.runDemon(d); err != nil {
				return err
			}
		}
	}
	return nil
}

func (q *Queue) nonEmpty() bool {
	return len(q.fifos[Normal]) > 0 || len(q.fifos[Var]) > 0 || len(q.fifos[Delayed]) > 0
}

func (q *Queue) popFront(p Priority) StampHolder {
	d := q.fifos[p][0]
	q.fifos[p] = q.fifos[p][1:]
	return d
}

// OnFail sets the hook run once by AfterFailure.
func (q *Queue) OnFail(f ActionOnFail) { q.onFail = f }

// AfterFailure discards every queued demon, runs and clears the
// ActionOnFail hook if any, and resets the reentrancy guards and stamp
// mechanics so the next propagation wave starts clean.
func (q *Queue) AfterFailure() {
	for p := Priority(0); p < numPriorities; p++ {
		q.fifos[p] = q.fifos[p][:0]
	}
	if q.onFail != nil {
		f := q.onFail
		q.onFail = nil
		f()
	}
	q.inProcess = false
	q.inAdd = false
	q.toAdd = q.toAdd[:0]
	q.stamp++
}

// AddConstraint queues c for post+propagate. If the queue is not already
// draining the to-add list, AddConstraint drains it immediately (via
// ProcessConstraints), including any constraints appended to it while
// draining — posting a constraint may itself post others.
func (q *Queue) AddConstraint(c Constraint) error {
	q.toAdd = append(q.toAdd, c)
	if q.inAdd {
		return nil
	}
	return q.ProcessConstraints()
}

// ProcessConstraints drains toAdd, calling postFn for each constraint in
// order, including constraints appended to toAdd during the drain.
func (q *Queue) ProcessConstraints() error {
	if q.inAdd {
		return nil
	}
	q.inAdd = true
	defer func() { q.inAdd = false }()
	for len(q.toAdd) > 0 {
		c := q.toAdd[0]
		q.toAdd = q.toAdd[1:]
		if err := q.postFn(c); err != nil {
			return err
		}
	}
	return nil
}
