// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package modelgen

import (
	"fmt"

	"github.com/go-air/cop"
	"github.com/go-air/cop/inter"
	"github.com/go-air/cop/intvar"
)

// NQueens posts the n-queens model: one variable per row holding that
// row's queen column, all different, with the two diagonals (col+row,
// col-row) also all different. The diagonals are modeled as derived
// variables linked back to the row variables by LinearSum, since
// AllDifferentBC operates on IntVars rather than arbitrary expressions.
// Returns the row variables and a Phase decision builder over them.
func NQueens(s *cop.Solver, n int) ([]inter.IntVar, inter.DecisionBuilder) {
	cols := make([]inter.IntVar, n)
	colv := make([]*intvar.Var, n)
	diagUp := make([]inter.IntVar, n)
	diagDown := make([]inter.IntVar, n)

	for i := 0; i < n; i++ {
		v := intvar.New(s, 0, n-1, fmt.Sprintf("col_%d", i))
		colv[i] = v
		cols[i] = v

		up := intvar.New(s, i, n-1+i, fmt.Sprintf("diag_up_%d", i))
		diagUp[i] = up
		_ = s.AddConstraint(&intvar.LinearSum{
			Vars:   []inter.IntVar{up, v},
			Coeffs: []int{1, -1},
			Target: i,
		})

		down := intvar.New(s, -i, n-1-i, fmt.Sprintf("diag_down_%d", i))
		diagDown[i] = down
		_ = s.AddConstraint(&intvar.LinearSum{
			Vars:   []inter.IntVar{down, v},
			Coeffs: []int{1, -1},
			Target: -i,
		})
	}

	_ = s.AddConstraint(&intvar.AllDifferentBC{Vars: cols})
	_ = s.AddConstraint(&intvar.AllDifferentBC{Vars: diagUp})
	_ = s.AddConstraint(&intvar.AllDifferentBC{Vars: diagDown})

	return cols, intvar.NewPhase(cols...)
}
