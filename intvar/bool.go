// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package intvar

import (
	"github.com/go-air/cop"
	"github.com/go-air/cop/inter"
)

// boolState encodes a BoolVar's domain: Unassigned admits both 0 and 1.
type boolState byte

const (
	unassigned boolState = iota
	isFalse
	isTrue
)

// BoolVar specializes Var to a {0,1} domain, backed by a single trailed
// state byte restored through the trail's dedicated boolean-variable
// partition (trail.SaveBoolVar/TrailRestore) rather than the general
// int-cell partition, matching the base design's Trail entry kinds (§3).
type BoolVar struct {
	s    *cop.Solver
	name string

	state boolState
	// prevStates is a private shadow stack of prior states, one entry per
	// trail.SaveBoolVar call outstanding on this variable; TrailRestore
	// pops it, and the trail's own LIFO restore order keeps it correct.
	prevStates []boolState

	// oldState and waveStamp mirror Var's freshenWave pattern (var.go):
	// oldState is snapshotted from state exactly once per propagation wave,
	// at the first assign() call touching this variable in that wave.
	oldState  boolState
	waveStamp int64

	whenBound  []inter.Demon
	whenRange  []inter.Demon
	whenDomain []inter.Demon
}

// NewBool creates an unassigned boolean variable.
func NewBool(s *cop.Solver, name string) *BoolVar {
	if name == "" && s.Params().NameAllVariables {
		name = s.NameAuto("b")
	}
	v := &BoolVar{s: s, name: name}
	s.RegisterName(name, v)
	return v
}

func (v *BoolVar) Min() int {
	if v.state == isTrue {
		return 1
	}
	return 0
}

func (v *BoolVar) Max() int {
	if v.state == isFalse {
		return 0
	}
	return 1
}

func (v *BoolVar) Bound() bool { return v.state != unassigned }

// OldMin and OldMax report the bounds as of the start of the current
// propagation wave rather than the live state, matching Var's OldMin/
// OldMax contract (§3, inter/s.go).
func (v *BoolVar) OldMin() int {
	if v.oldState == isTrue {
		return 1
	}
	return 0
}

func (v *BoolVar) OldMax() int {
	if v.oldState == isFalse {
		return 0
	}
	return 1
}

func (v *BoolVar) Name() string { return v.name }

func (v *BoolVar) SetName(n string) {
	v.name = n
	v.s.RegisterName(n, v)
}

func (v *BoolVar) enqueueAll(ds []inter.Demon) {
	for _, d := range ds {
		v.s.Queue().Enqueue(d)
	}
}

// freshenWave snapshots state into oldState exactly once per propagation
// wave, at the first assign touching this variable in that wave, mirroring
// Var.freshenWave (var.go).
func (v *BoolVar) freshenWave() {
	stamp := v.s.Queue().Stamp()
	if v.waveStamp == stamp {
		return
	}
	v.waveStamp = stamp
	v.oldState = v.state
}

func (v *BoolVar) assign(want boolState) {
	switch v.state {
	case unassigned:
		v.freshenWave()
		v.prevStates = append(v.prevStates, v.state)
		v.s.Trail().SaveBoolVar(v)
		v.state = want
		v.enqueueAll(v.whenDomain)
		v.enqueueAll(v.whenRange)
		v.enqueueAll(v.whenBound)
	case want:
		// already assigned consistently
	default:
		v.s.Fail()
	}
}

// SetMin implements inter.IntVar: SetMin(1) fixes the variable to true.
func (v *BoolVar) SetMin(lo int) {
	if lo <= 0 {
		return
	}
	v.assign(isTrue)
}

// SetMax implements inter.IntVar: SetMax(0) fixes the variable to false.
func (v *BoolVar) SetMax(hi int) {
	if hi >= 1 {
		return
	}
	v.assign(isFalse)
}

func (v *BoolVar) SetRange(lo, hi int) {
	v.SetMin(lo)
	v.SetMax(hi)
}

func (v *BoolVar) SetValue(value int) {
	if value == 0 {
		v.assign(isFalse)
	} else {
		v.assign(isTrue)
	}
}

func (v *BoolVar) RemoveValue(value int) {
	if value == 0 {
		v.assign(isTrue)
	} else if value == 1 {
		v.assign(isFalse)
	}
}

func (v *BoolVar) RemoveInterval(lo, hi int) {
	if lo <= 0 && hi >= 0 {
		v.RemoveValue(0)
	}
	if lo <= 1 && hi >= 1 {
		v.RemoveValue(1)
	}
}

func (v *BoolVar) SetValues(vs []int) {
	has0, has1 := false, false
	for _, x := range vs {
		has0 = has0 || x == 0
		has1 = has1 || x == 1
	}
	if !has0 {
		v.assign(isTrue)
	}
	if !has1 {
		v.assign(isFalse)
	}
}

func (v *BoolVar) RemoveValues(vs []int) {
	for _, x := range vs {
		v.RemoveValue(x)
	}
}

func (v *BoolVar) WhenBound(d inter.Demon)  { v.whenBound = append(v.whenBound, d) }
func (v *BoolVar) WhenRange(d inter.Demon)  { v.whenRange = append(v.whenRange, d) }
func (v *BoolVar) WhenDomain(d inter.Demon) { v.whenDomain = append(v.whenDomain, d) }

// TrailRestore implements trail.BoolVarRestorer.
func (v *BoolVar) TrailRestore() {
	n := len(v.prevStates)
	v.state = v.prevStates[n-1]
	v.prevStates = v.prevStates[:n-1]
}

var (
	_ inter.IntVar  = (*BoolVar)(nil)
	_ inter.BoolVar = (*BoolVar)(nil)
)
