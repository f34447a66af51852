// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package modelgen

import (
	"github.com/go-air/cop"
	"github.com/go-air/cop/inter"
	"github.com/go-air/cop/intvar"
)

// SendMoreMoney posts the classic verbal-arithmetic puzzle SEND + MORE =
// MONEY: eight distinct digits S,E,N,D,M,O,R,Y with S and M nonzero,
// satisfying the column-weighted sum. Returns the eight letter variables
// in that order and a Phase decision builder over them.
func SendMoreMoney(s *cop.Solver) ([]inter.IntVar, inter.DecisionBuilder) {
	digit := func(name string, nonzero bool) *intvar.Var {
		lo := 0
		if nonzero {
			lo = 1
		}
		return intvar.New(s, lo, 9, name)
	}

	S := digit("S", true)
	E := digit("E", false)
	N := digit("N", false)
	D := digit("D", false)
	M := digit("M", true)
	O := digit("O", false)
	R := digit("R", false)
	Y := digit("Y", false)

	letters := []inter.IntVar{S, E, N, D, M, O, R, Y}
	_ = s.AddConstraint(&intvar.AllDifferentBC{Vars: letters})

	// SEND = 1000*S + 100*E + 10*N + D
	// MORE = 1000*M + 100*O + 10*R + E
	// MONEY = 10000*M + 1000*O + 100*N + 10*E + Y
	// SEND + MORE - MONEY == 0
	_ = s.AddConstraint(&intvar.LinearSum{
		Vars: []inter.IntVar{
			S, E, N, D,
			M, O, R, E,
			M, O, N, E, Y,
		},
		Coeffs: []int{
			1000, 100, 10, 1,
			1000, 100, 10, 1,
			-10000, -1000, -100, -10, -1,
		},
		Target: 0,
	})

	return letters, intvar.NewPhase(letters...)
}
