// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package modelgen

import (
	"fmt"

	"github.com/go-air/cop"
	"github.com/go-air/cop/inter"
	"github.com/go-air/cop/intvar"
)

// Partition posts a model asking for a partition of n elements into k
// parts: one variable per element holding its part index, domain [0,
// k-1]. Every solution assigns each element to exactly one part, matching
// the meaning of github.com/irifrance/gini's gen.Partition but expressed
// as a direct assignment variable instead of an exactly-one boolean
// matrix. Returns the element variables and a Phase decision builder
// over them.
func Partition(s *cop.Solver, n, k int) ([]inter.IntVar, inter.DecisionBuilder) {
	parts := make([]inter.IntVar, n)
	for i := 0; i < n; i++ {
		parts[i] = intvar.New(s, 0, k-1, fmt.Sprintf("part_%d", i))
	}
	return parts, intvar.NewPhase(parts...)
}

// BalancedPartition posts Partition together with a constraint that every
// part receives the same number of elements. For each part it adds one
// BoolVar membership indicator per element and a LinearSum requiring the
// indicators to add up to n/k, since intvar has no cardinality propagator
// of its own. When n is not a multiple of k it returns the plain Partition
// model, without the balance constraint.
func BalancedPartition(s *cop.Solver, n, k int) ([]inter.IntVar, inter.DecisionBuilder) {
	parts, db := Partition(s, n, k)
	if n%k != 0 {
		return parts, db
	}
	share := n / k
	for p := 0; p < k; p++ {
		indicators := make([]inter.IntVar, n)
		terms := make([]int, n)
		for i := 0; i < n; i++ {
			b := intvar.NewBool(s, fmt.Sprintf("in_part_%d_elem_%d", p, i))
			indicators[i] = b
			terms[i] = 1
			// b == 1 iff parts[i] == p, linked both ways through the
			// equality SetValue/RemoveValue pair that WhenBound triggers.
			_ = s.AddConstraint(&partMembership{part: parts[i], indicator: b, value: p})
		}
		_ = s.AddConstraint(&intvar.LinearSum{Vars: indicators, Coeffs: terms, Target: share})
	}
	return parts, db
}

// partMembership links indicator to whether part currently equals value:
// binding the indicator fixes part accordingly, and part becoming bound
// (to value or away from it) fixes the indicator.
type partMembership struct {
	part      inter.IntVar
	indicator inter.IntVar
	value     int
}

func (c *partMembership) String() string {
	return fmt.Sprintf("%s == (%s == %d)", c.indicator.Name(), c.part.Name(), c.value)
}

func (c *partMembership) Post(e inter.Engine) error {
	d := intvar.NewClosureDemon(0, func() error { c.propagate(); return nil })
	c.part.WhenDomain(d)
	c.indicator.WhenBound(d)
	return nil
}

func (c *partMembership) InitialPropagate(e inter.Engine) error {
	c.propagate()
	return nil
}

func (c *partMembership) propagate() {
	if c.indicator.Bound() {
		if c.indicator.Min() == 1 {
			c.part.SetValue(c.value)
		} else {
			c.part.RemoveValue(c.value)
		}
	}
	if c.part.Bound() {
		if c.part.Min() == c.value {
			c.indicator.SetValue(1)
		} else {
			c.indicator.SetValue(0)
		}
	} else if c.part.Max() < c.value || c.part.Min() > c.value {
		c.indicator.SetValue(0)
	}
}
