// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package intvar

import (
	"fmt"

	"github.com/go-air/cop/inter"
	"github.com/go-air/cop/internal/pqueue"
)

// Equality posts X == Y, maintained by bounds propagation in both
// directions (§4.3's post/initial_propagate contract). Once both sides are
// bound its own demon has nothing left to do, so it inhibits itself
// reversibly (§3, §C.5): backtracking past the binding that triggered this
// automatically desinhibits it again.
type Equality struct {
	X, Y inter.IntVar

	fwd *ClosureDemon
}

func (c *Equality) String() string { return fmt.Sprintf("%s == %s", c.X.Name(), c.Y.Name()) }

func (c *Equality) Post(e inter.Engine) error {
	c.fwd = NewClosureDemon(pqueue.Normal, func() error { c.propagate(e); return nil })
	c.X.WhenRange(c.fwd)
	c.Y.WhenRange(c.fwd)
	return nil
}

func (c *Equality) InitialPropagate(e inter.Engine) error {
	c.propagate(e)
	return nil
}

func (c *Equality) propagate(e inter.Engine) {
	c.X.SetMin(c.Y.Min())
	c.X.SetMax(c.Y.Max())
	c.Y.SetMin(c.X.Min())
	c.Y.SetMax(c.X.Max())
	if c.X.Bound() && c.Y.Bound() {
		prevStamp := c.fwd.Stamp()
		pqueue.Inhibit(c.fwd)
		e.PushReversibleAction(func() { pqueue.Desinhibit(c.fwd, prevStamp) }, true)
	}
}

// LinearSum posts sum(coeffs[i] * vars[i]) == target, maintained by
// bounds-consistency propagation: after every change, each variable's
// bounds are tightened from the bounds of the others (§4.3).
type LinearSum struct {
	Vars   []inter.IntVar
	Coeffs []int
	Target int
}

func (c *LinearSum) String() string {
	return fmt.Sprintf("linear_sum(%d terms) == %d", len(c.Vars), c.Target)
}

func (c *LinearSum) Post(e inter.Engine) error {
	d := NewClosureDemon(pqueue.Normal, func() error { c.propagate(); return nil })
	for _, v := range c.Vars {
		v.WhenRange(d)
	}
	return nil
}

func (c *LinearSum) InitialPropagate(e inter.Engine) error {
	c.propagate()
	return nil
}

func (c *LinearSum) termBounds(i int) (lo, hi int) {
	coef := c.Coeffs[i]
	v := c.Vars[i]
	if coef >= 0 {
		return coef * v.Min(), coef * v.Max()
	}
	return coef * v.Max(), coef * v.Min()
}

func (c *LinearSum) propagate() {
	n := len(c.Vars)
	sumLo, sumHi := 0, 0
	lo := make([]int, n)
	hi := make([]int, n)
	for i := range c.Vars {
		lo[i], hi[i] = c.termBounds(i)
		sumLo += lo[i]
		sumHi += hi[i]
	}
	for i, v := range c.Vars {
		restLo := sumLo - lo[i]
		restHi := sumHi - hi[i]
		coef := c.Coeffs[i]
		// term_i must land in [target - restHi, target - restLo]
		termLo := c.Target - restHi
		termHi := c.Target - restLo
		if coef > 0 {
			v.SetMin(ceilDiv(termLo, coef))
			v.SetMax(floorDiv(termHi, coef))
		} else if coef < 0 {
			v.SetMin(ceilDiv(termHi, coef))
			v.SetMax(floorDiv(termLo, coef))
		}
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) == (b < 0)) {
		q++
	}
	return q
}

// AllDifferentBC posts a bounds-consistency approximation of allDifferent:
// whenever a variable becomes bound, its value is removed from every other
// variable's domain. This is the cheapest member of the allDifferent
// family, included as a worked example of the Constraint contract rather
// than a complete Hall-interval bounds-consistency filter.
type AllDifferentBC struct {
	Vars []inter.IntVar
}

func (c *AllDifferentBC) String() string {
	return fmt.Sprintf("all_different(%d vars)", len(c.Vars))
}

func (c *AllDifferentBC) Post(e inter.Engine) error {
	for i, v := range c.Vars {
		i := i
		d := NewClosureDemon(pqueue.Var, func() error { c.propagateFrom(i); return nil })
		v.WhenBound(d)
	}
	return nil
}

func (c *AllDifferentBC) InitialPropagate(e inter.Engine) error {
	for i, v := range c.Vars {
		if v.Bound() {
			c.propagateFrom(i)
		}
	}
	return nil
}

func (c *AllDifferentBC) propagateFrom(i int) {
	fixed := c.Vars[i]
	if !fixed.Bound() {
		return
	}
	val := fixed.Min()
	for j, v := range c.Vars {
		if j == i {
			continue
		}
		v.RemoveValue(val)
	}
}

// NotEqual posts X != Y: once either side is bound, its value is removed
// from the other side's domain (as a hole when it is interior). Like
// AllDifferentBC, it does nothing while both sides are unbound.
type NotEqual struct {
	X, Y inter.IntVar
}

func (c *NotEqual) String() string { return fmt.Sprintf("%s != %s", c.X.Name(), c.Y.Name()) }

func (c *NotEqual) Post(e inter.Engine) error {
	dx := NewClosureDemon(pqueue.Var, func() error { c.propagate(); return nil })
	c.X.WhenBound(dx)
	c.Y.WhenBound(dx)
	return nil
}

func (c *NotEqual) InitialPropagate(e inter.Engine) error {
	c.propagate()
	return nil
}

func (c *NotEqual) propagate() {
	if c.X.Bound() {
		c.Y.RemoveValue(c.X.Min())
	}
	if c.Y.Bound() {
		c.X.RemoveValue(c.Y.Min())
	}
}
