// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package cop

import "github.com/go-air/cop/inter"

// castIndex is the side index of cast constraints (§4.3): constraints of
// the shape "target == expr", keyed by their target variable so a decision
// builder or monitor can recover the expression behind an anonymous
// variable.
type castIndex struct {
	byTarget map[inter.IntVar]inter.CastConstraint
}

func newCastIndex() *castIndex {
	return &castIndex{byTarget: make(map[inter.IntVar]inter.CastConstraint)}
}

func (c *castIndex) add(cc inter.CastConstraint) {
	c.byTarget[cc.Target()] = cc
}

// CastFor returns the cast constraint whose target is v, if any.
func (c *castIndex) CastFor(v inter.IntVar) (inter.CastConstraint, bool) {
	cc, ok := c.byTarget[v]
	return cc, ok
}
