// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package intvar is a minimal reference variable/constraint library used
// to exercise and test the engine in package cop. It is intentionally not
// a production-grade finite-domain library (the library itself is out of
// scope for the engine core) -- just enough domain to run the engine's own
// test scenarios end to end.
package intvar

import (
	"sort"

	"github.com/go-air/cop"
	"github.com/go-air/cop/inter"
)

// Var is a bounds-only integer domain: Min/Max plus a small sorted hole
// list for the rare interior removal that touches neither bound. Domain
// changes are logged to the engine's trail before they take effect and
// enqueue every demon subscribed to a satisfied change category, matching
// the Variable contract (§3, §4.3 of the base design).
type Var struct {
	s    *cop.Solver
	name string

	min, max int
	// holesBox boxes the current []int hole list so it can be saved and
	// restored wholesale through Trail.SavePtr; a fresh slice header is
	// installed on every mutation rather than mutating in place, so the
	// boxed old value stays valid after a rewind.
	holesBox interface{}

	oldMin, oldMax int
	waveStamp      int64

	whenBound  []inter.Demon
	whenRange  []inter.Demon
	whenDomain []inter.Demon
}

// New creates an integer variable with initial domain [lo, hi]. If name is
// empty and name_all_variables is set, a synthetic name is minted.
func New(s *cop.Solver, lo, hi int, name string) *Var {
	if name == "" && s.Params().NameAllVariables {
		name = s.NameAuto("v")
	}
	v := &Var{s: s, name: name, min: lo, max: hi, oldMin: lo, oldMax: hi}
	s.RegisterName(name, v)
	return v
}

func (v *Var) Min() int     { return v.min }
func (v *Var) Max() int     { return v.max }
func (v *Var) Bound() bool  { return v.min == v.max }
func (v *Var) OldMin() int  { return v.oldMin }
func (v *Var) OldMax() int  { return v.oldMax }
func (v *Var) Name() string { return v.name }

func (v *Var) SetName(n string) {
	v.name = n
	v.s.RegisterName(n, v)
}

func (v *Var) holes() []int {
	hs, _ := v.holesBox.([]int)
	return hs
}

// freshenWave snapshots (min, max) into (oldMin, oldMax) exactly once per
// propagation wave, at the first mutation touching this variable in that
// wave, preserving OldMin <= Min <= Max <= OldMax across the wave (§3).
func (v *Var) freshenWave() {
	stamp := v.s.Queue().Stamp()
	if v.waveStamp == stamp {
		return
	}
	v.waveStamp = stamp
	v.oldMin, v.oldMax = v.min, v.max
}

func (v *Var) enqueueAll(ds []inter.Demon) {
	for _, d := range ds {
		v.s.Queue().Enqueue(d)
	}
}

// notifyRange fires WhenDomain and WhenRange demons, and WhenBound demons
// too if the mutation left the variable bound (a narrower category implies
// the wider ones, §3).
func (v *Var) notifyRange() {
	v.enqueueAll(v.whenDomain)
	v.enqueueAll(v.whenRange)
	if v.Bound() {
		v.enqueueAll(v.whenBound)
	}
}

// notifyDomain fires only WhenDomain demons, for a mutation (a hole) that
// changed neither bound.
func (v *Var) notifyDomain() {
	v.enqueueAll(v.whenDomain)
}

// pruneHolesToBounds drops any hole outside [min, max]; called after a
// bound tightens, since a hole beyond a new bound is no longer meaningful.
func (v *Var) pruneHolesToBounds() {
	hs := v.holes()
	if len(hs) == 0 {
		return
	}
	kept := hs[:0:0]
	for _, h := range hs {
		if h > v.min && h < v.max {
			kept = append(kept, h)
		}
	}
	if len(kept) != len(hs) {
		v.s.Trail().SavePtr(&v.holesBox)
		v.holesBox = kept
	}
}

// SetMin raises the lower bound to lo, failing if the domain empties.
func (v *Var) SetMin(lo int) {
	if lo <= v.min {
		return
	}
	v.freshenWave()
	v.s.Trail().SaveInt(&v.min)
	v.min = lo
	if v.min > v.max {
		v.s.Fail()
		return
	}
	v.skipHoleAtBound(true)
	v.pruneHolesToBounds()
	v.notifyRange()
}

// SetMax lowers the upper bound to hi, failing if the domain empties.
func (v *Var) SetMax(hi int) {
	if hi >= v.max {
		return
	}
	v.freshenWave()
	v.s.Trail().SaveInt(&v.max)
	v.max = hi
	if v.min > v.max {
		v.s.Fail()
		return
	}
	v.skipHoleAtBound(false)
	v.pruneHolesToBounds()
	v.notifyRange()
}

// SetRange intersects the domain with [lo, hi].
func (v *Var) SetRange(lo, hi int) {
	v.SetMin(lo)
	v.SetMax(hi)
}

// SetValue fixes the domain to exactly value.
func (v *Var) SetValue(value int) {
	v.SetMin(value)
	v.SetMax(value)
}

// skipHoleAtBound advances min (fromMin=true) or retreats max past any
// hole that now sits exactly at the tightened bound, so a bound never
// rests on a removed value.
func (v *Var) skipHoleAtBound(fromMin bool) {
	for {
		hs := v.holes()
		if len(hs) == 0 {
			return
		}
		if fromMin {
			if hs[0] != v.min {
				return
			}
			v.s.Trail().SavePtr(&v.holesBox)
			v.holesBox = append([]int{}, hs[1:]...)
			v.s.Trail().SaveInt(&v.min)
			v.min++
		} else {
			last := hs[len(hs)-1]
			if last != v.max {
				return
			}
			v.s.Trail().SavePtr(&v.holesBox)
			v.holesBox = append([]int{}, hs[:len(hs)-1]...)
			v.s.Trail().SaveInt(&v.max)
			v.max--
		}
	}
}

// RemoveValue removes a single value from the domain: at a bound this is a
// bound tightening; strictly interior it is recorded as a hole.
func (v *Var) RemoveValue(value int) {
	if value < v.min || value > v.max {
		return
	}
	if value == v.min {
		v.SetMin(value + 1)
		return
	}
	if value == v.max {
		v.SetMax(value - 1)
		return
	}
	v.freshenWave()
	hs := v.holes()
	i := sort.SearchInts(hs, value)
	if i < len(hs) && hs[i] == value {
		return
	}
	next := make([]int, 0, len(hs)+1)
	next = append(next, hs[:i]...)
	next = append(next, value)
	next = append(next, hs[i:]...)
	v.s.Trail().SavePtr(&v.holesBox)
	v.holesBox = next
	v.notifyDomain()
}

// RemoveInterval removes every value in [lo, hi] from the domain.
func (v *Var) RemoveInterval(lo, hi int) {
	if hi < lo {
		return
	}
	if lo <= v.min && hi >= v.max {
		v.freshenWave()
		v.s.Fail()
		return
	}
	if lo <= v.min {
		v.SetMin(hi + 1)
		return
	}
	if hi >= v.max {
		v.SetMax(lo - 1)
		return
	}
	for x := lo; x <= hi; x++ {
		v.RemoveValue(x)
	}
}

// SetValues restricts the domain to exactly the given values.
func (v *Var) SetValues(vs []int) {
	if len(vs) == 0 {
		v.s.Fail()
		return
	}
	lo, hi := vs[0], vs[0]
	allowed := make(map[int]bool, len(vs))
	for _, x := range vs {
		allowed[x] = true
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	v.SetRange(lo, hi)
	for x := v.min; x <= v.max; x++ {
		if !allowed[x] {
			v.RemoveValue(x)
		}
	}
}

// RemoveValues removes every value in vs from the domain.
func (v *Var) RemoveValues(vs []int) {
	for _, x := range vs {
		v.RemoveValue(x)
	}
}

func (v *Var) WhenBound(d inter.Demon)  { v.whenBound = append(v.whenBound, d) }
func (v *Var) WhenRange(d inter.Demon)  { v.whenRange = append(v.whenRange, d) }
func (v *Var) WhenDomain(d inter.Demon) { v.whenDomain = append(v.whenDomain, d) }

var _ inter.IntVar = (*Var)(nil)
