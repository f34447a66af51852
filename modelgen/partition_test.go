// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package modelgen

import (
	"testing"

	"github.com/go-air/cop"
)

func TestPartitionAssignsEachElementWithinRange(t *testing.T) {
	s := cop.New("partition", cop.DefaultParameters())
	parts, db := Partition(s, 6, 3)
	if len(parts) != 6 {
		t.Fatalf("len(parts) = %d, want 6", len(parts))
	}

	s.NewSearch(db)
	if !s.NextSolution() {
		t.Fatalf("expected a solution")
	}
	for _, p := range parts {
		if p.Min() < 0 || p.Min() > 2 {
			t.Errorf("%s = %d, want in [0,2]", p.Name(), p.Min())
		}
	}
	s.EndSearch()
}

func TestBalancedPartitionSplitsEvenly(t *testing.T) {
	s := cop.New("balanced-partition", cop.DefaultParameters())
	parts, db := BalancedPartition(s, 6, 3)

	s.NewSearch(db)
	if !s.NextSolution() {
		t.Fatalf("expected a balanced solution for 6 elements into 3 parts")
	}
	counts := make([]int, 3)
	for _, p := range parts {
		counts[p.Min()]++
	}
	for i, c := range counts {
		if c != 2 {
			t.Errorf("part %d has %d elements, want 2", i, c)
		}
	}
	s.EndSearch()
}

func TestBalancedPartitionFallsBackWhenNotDivisible(t *testing.T) {
	s := cop.New("balanced-partition-uneven", cop.DefaultParameters())
	parts, db := BalancedPartition(s, 5, 3)
	if len(parts) != 5 {
		t.Fatalf("len(parts) = %d, want 5", len(parts))
	}

	s.NewSearch(db)
	if !s.NextSolution() {
		t.Fatalf("expected Partition's plain (unbalanced) model to still be solvable")
	}
	s.EndSearch()
}
