// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package searchstate implements the search state machine (§4.4 of the
// base spec): the marker stack, sentinel discipline, choice-point
// records, and the backtrack primitives built on top of package trail and
// package pqueue.
package searchstate

import (
	"github.com/go-air/cop/inter"
	"github.com/go-air/cop/internal/trail"
)

// Tag identifies the kind of a StateMarker.
type Tag int

const (
	Simple Tag = iota
	ReversibleAction
	ChoicePoint
	Sentinel
)

func (t Tag) String() string {
	switch t {
	case Simple:
		return "SIMPLE"
	case ReversibleAction:
		return "REVERSIBLE_ACTION"
	case ChoicePoint:
		return "CHOICE_POINT"
	case Sentinel:
		return "SENTINEL"
	default:
		return "UNKNOWN_TAG"
	}
}

// Branch distinguishes the left (Apply) and right (Refute) sides of a
// choice point.
type Branch int

const (
	Left Branch = iota
	Right
)

// Marker is a single entry on a search's marker stack: a snapshot of
// every trail partition's size at push time, plus a tag and its payload.
type Marker struct {
	Tag      Tag
	Captured bool // whether Sizes holds a real snapshot
	Sizes    trail.Sizes

	// ReversibleAction payload.
	Action     func()
	SkipRewind bool // "action without state save": push_state(REVERSIBLE_ACTION, flag=1)

	// ChoicePoint payload.
	Decision inter.Decision
	Branch   Branch
	Depth    int

	// Sentinel payload.
	SentinelCode int
}
