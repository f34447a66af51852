// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package modelgen

import (
	"testing"

	"github.com/go-air/cop"
)

func TestSendMoreMoneyHasTheClassicUniqueSolution(t *testing.T) {
	s := cop.New("sendmoremoney", cop.DefaultParameters())
	letters, db := SendMoreMoney(s)
	if len(letters) != 8 {
		t.Fatalf("len(letters) = %d, want 8", len(letters))
	}

	s.NewSearch(db)
	if !s.NextSolution() {
		t.Fatalf("expected a solution")
	}
	want := map[string]int{"S": 9, "E": 5, "N": 6, "D": 7, "M": 1, "O": 0, "R": 8, "Y": 2}
	for _, v := range letters {
		if got, ok := want[v.Name()]; ok && v.Min() != got {
			t.Errorf("%s = %d, want %d", v.Name(), v.Min(), got)
		}
	}
	if s.NextSolution() {
		t.Errorf("expected SEND+MORE=MONEY to have a unique solution")
	}
	s.EndSearch()
}
