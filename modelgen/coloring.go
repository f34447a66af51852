// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package modelgen

import (
	"fmt"
	"math/rand"

	"github.com/go-air/cop"
	"github.com/go-air/cop/inter"
	"github.com/go-air/cop/intvar"
)

// GraphColoring posts a model asking whether a random graph with n nodes
// and m edges can be colored with k colors such that no two adjacent
// nodes share a color. It returns one IntVar per node (domain [0, k-1])
// and a Phase decision builder over them, grounded on
// github.com/irifrance/gini's gen.RandColor CNF encoding but expressed
// directly in node-color variables instead of a per-(node,color) boolean
// matrix.
func GraphColoring(s *cop.Solver, rng *rand.Rand, n, m, k int) ([]inter.IntVar, inter.DecisionBuilder) {
	adj := RandGraph(rng, n, m)

	colors := make([]inter.IntVar, n)
	ivars := make([]*intvar.Var, n)
	for i := range colors {
		v := intvar.New(s, 0, k-1, fmt.Sprintf("color_%d", i))
		ivars[i] = v
		colors[i] = v
	}

	for a, neighbors := range adj {
		for _, b := range neighbors {
			if b >= a {
				continue
			}
			_ = s.AddConstraint(&intvar.NotEqual{X: ivars[a], Y: ivars[b]})
		}
	}

	return colors, intvar.NewPhase(colors...)
}
