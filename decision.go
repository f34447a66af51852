// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package cop

import "github.com/go-air/cop/inter"

// reverseDecision swaps Apply and Refute without mutating the wrapped
// Decision, implementing the SWITCH_BRANCHES decision modification (§4.5.2).
type reverseDecision struct {
	inner inter.Decision
}

func (r reverseDecision) Apply(e inter.Engine) error  { return r.inner.Refute(e) }
func (r reverseDecision) Refute(e inter.Engine) error { return r.inner.Apply(e) }
func (r reverseDecision) String() string              { return "Reverse(" + r.inner.String() + ")" }

// failDecisionT is the engine's distinguished fail decision: a
// DecisionBuilder returns it to force an immediate fail at the current node
// rather than returning a real Decision or nil (§4.5.2).
type failDecisionT struct{}

func (failDecisionT) Apply(inter.Engine) error  { return nil }
func (failDecisionT) Refute(inter.Engine) error { return nil }
func (failDecisionT) String() string            { return "FailDecision" }

// FailDecision is the sentinel value a DecisionBuilder.Next may return to
// force a fail at the current search node.
var FailDecision inter.Decision = failDecisionT{}

// IsFailDecision reports whether d is FailDecision.
func IsFailDecision(d inter.Decision) bool {
	_, ok := d.(failDecisionT)
	return ok
}
