// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package cop

// State is the engine-wide state machine from base spec §4.5.1.
type State int

const (
	OutsideSearch State = iota
	InRootNode
	InSearch
	AtSolution
	NoMoreSolutions
	ProblemInfeasible
)

func (s State) String() string {
	switch s {
	case OutsideSearch:
		return "OUTSIDE_SEARCH"
	case InRootNode:
		return "IN_ROOT_NODE"
	case InSearch:
		return "IN_SEARCH"
	case AtSolution:
		return "AT_SOLUTION"
	case NoMoreSolutions:
		return "NO_MORE_SOLUTIONS"
	case ProblemInfeasible:
		return "PROBLEM_INFEASIBLE"
	default:
		return "UNKNOWN_STATE"
	}
}
