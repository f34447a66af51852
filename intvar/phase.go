// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package intvar

import (
	"fmt"

	"github.com/go-air/cop/inter"
)

// assignDecision is the classic CP binary split: the left branch fixes a
// variable to a value, the right branch excludes that value, matching the
// base spec's example DecisionBuilder (§4.4).
type assignDecision struct {
	v     inter.IntVar
	value int
}

func (d *assignDecision) Apply(e inter.Engine) error {
	d.v.SetValue(d.value)
	return nil
}

func (d *assignDecision) Refute(e inter.Engine) error {
	d.v.RemoveValue(d.value)
	return nil
}

func (d *assignDecision) String() string {
	return fmt.Sprintf("%s == %d", d.v.Name(), d.value)
}

// Phase is a first-unbound, assign-min-first DecisionBuilder: at each node
// it picks the earliest variable in Vars that is not yet bound and branches
// on fixing it to its current minimum. It is the simplest member of the
// DecisionBuilder family, included as a worked example of the contract
// (§4.4) rather than a general search-strategy library.
type Phase struct {
	Vars []inter.IntVar
}

// NewPhase builds a Phase over vars, branching on them in the given order.
func NewPhase(vars ...inter.IntVar) *Phase {
	return &Phase{Vars: vars}
}

// Next implements inter.DecisionBuilder.
func (p *Phase) Next(e inter.Engine) (inter.Decision, error) {
	for _, v := range p.Vars {
		if !v.Bound() {
			return &assignDecision{v: v, value: v.Min()}, nil
		}
	}
	return nil, nil
}
