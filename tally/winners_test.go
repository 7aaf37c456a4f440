// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"reflect"
	"testing"

	"github.com/danielhkuo/quickly-elect/models"
)

func winnerIDs(pw models.PositionWinners) []models.CandidateID {
	ids := []models.CandidateID{}
	for _, w := range pw.Winners {
		ids = append(ids, w.CandidateID)
	}
	return ids
}

func positionTally(seats int, counts map[models.CandidateID]int) models.PositionTally {
	res := models.ResultsSnapshot{
		Positions: []models.Position{{ID: 1, Seats: seats, Status: models.PositionOpen}},
	}
	for id, n := range counts {
		res.Candidates = append(res.Candidates, models.Candidate{ID: id, PositionID: 1, Active: true})
		res.Counts = append(res.Counts, models.CandidateCount{PositionID: 1, CandidateID: id, VoteCount: n})
	}
	return Aggregate(res)[0]
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyLowestID, false},
		{"candidate_id", PolicyLowestID, false},
		{"RUNOFF", PolicyRunoff, false},
		{"coin_flip", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestResolveCouncilorExample(t *testing.T) {
	pt := Aggregate(councilorResults())[0]

	pw := Resolve(pt, PolicyLowestID)
	if got := winnerIDs(pw); !reflect.DeepEqual(got, []models.CandidateID{21, 22}) {
		t.Errorf("winners = %v, want [21 22]", got)
	}
	if !pw.TieAtCutoff || pw.RunoffRequired {
		t.Errorf("expected tie flagged without runoff: %+v", pw)
	}
	if !reflect.DeepEqual(pw.TiedCandidates, []models.CandidateID{22, 23}) {
		t.Errorf("tied candidates = %v, want [22 23]", pw.TiedCandidates)
	}
	if pw.Winners[0].Rank != 1 || pw.Winners[1].Rank != 2 {
		t.Errorf("ranks not 1-based: %+v", pw.Winners)
	}

	// Same answer on every call
	for i := 0; i < 50; i++ {
		again := Resolve(Aggregate(councilorResults())[0], PolicyLowestID)
		if !reflect.DeepEqual(again, pw) {
			t.Fatalf("iteration %d: tie-break not stable: %+v", i, again)
		}
	}
}

func TestResolveRunoff(t *testing.T) {
	pt := Aggregate(councilorResults())[0]

	pw := Resolve(pt, PolicyRunoff)
	if got := winnerIDs(pw); !reflect.DeepEqual(got, []models.CandidateID{21}) {
		t.Errorf("winners = %v, want [21]", got)
	}
	if !pw.RunoffRequired || !pw.TieAtCutoff {
		t.Errorf("expected runoff: %+v", pw)
	}
	if !reflect.DeepEqual(pw.TiedCandidates, []models.CandidateID{22, 23}) {
		t.Errorf("tied candidates = %v", pw.TiedCandidates)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		seats      int
		counts     map[models.CandidateID]int
		policy     Policy
		wantIDs    []models.CandidateID
		wantTie    bool
		wantRunoff bool
	}{
		{"clear winner", 1, map[models.CandidateID]int{1: 4, 2: 9, 3: 1}, PolicyLowestID, []models.CandidateID{2}, false, false},
		{"tie above cutoff is no cutoff tie", 2, map[models.CandidateID]int{1: 5, 2: 5, 3: 1}, PolicyRunoff, []models.CandidateID{1, 2}, false, false},
		{"fewer candidates than seats", 3, map[models.CandidateID]int{1: 1, 2: 0}, PolicyLowestID, []models.CandidateID{1, 2}, false, false},
		{"zero votes lowest id", 2, map[models.CandidateID]int{3: 0, 1: 0, 2: 0}, PolicyLowestID, []models.CandidateID{1, 2}, true, false},
		{"zero votes runoff", 1, map[models.CandidateID]int{1: 0, 2: 0}, PolicyRunoff, []models.CandidateID{}, true, true},
		{"three way tie for one seat", 1, map[models.CandidateID]int{7: 2, 5: 2, 6: 2}, PolicyLowestID, []models.CandidateID{5}, true, false},
		{"no candidates", 1, map[models.CandidateID]int{}, PolicyLowestID, []models.CandidateID{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pw := Resolve(positionTally(tt.seats, tt.counts), tt.policy)
			if got := winnerIDs(pw); !reflect.DeepEqual(got, tt.wantIDs) {
				t.Errorf("winners = %v, want %v", got, tt.wantIDs)
			}
			if pw.TieAtCutoff != tt.wantTie {
				t.Errorf("TieAtCutoff = %v, want %v", pw.TieAtCutoff, tt.wantTie)
			}
			if pw.RunoffRequired != tt.wantRunoff {
				t.Errorf("RunoffRequired = %v, want %v", pw.RunoffRequired, tt.wantRunoff)
			}
		})
	}
}

func TestResolveWinnerBound(t *testing.T) {
	counts := map[models.CandidateID]int{1: 3, 2: 8, 3: 8, 4: 2, 5: 8, 6: 0, 7: 3}

	for seats := 1; seats <= 8; seats++ {
		for _, policy := range []Policy{PolicyLowestID, PolicyRunoff} {
			pt := positionTally(seats, counts)
			pw := Resolve(pt, policy)

			if len(pw.Winners) > seats {
				t.Errorf("seats=%d %s: %d winners", seats, policy, len(pw.Winners))
			}

			won := map[models.CandidateID]bool{}
			minWinner := int(^uint(0) >> 1)
			for _, w := range pw.Winners {
				won[w.CandidateID] = true
				if w.VoteCount < minWinner {
					minWinner = w.VoteCount
				}
			}
			for _, e := range pt.Candidates {
				if !won[e.CandidateID] && len(pw.Winners) > 0 && e.VoteCount > minWinner {
					t.Errorf("seats=%d %s: loser %d has %d votes > winner minimum %d",
						seats, policy, e.CandidateID, e.VoteCount, minWinner)
				}
			}
		}
	}
}

func TestResolveAllSkipsClosed(t *testing.T) {
	tallies := []models.PositionTally{
		{Position: models.Position{ID: 1, Seats: 1, Status: models.PositionOpen}, Candidates: []models.TallyEntry{}},
		{Position: models.Position{ID: 2, Seats: 1, Status: models.PositionClosed}, Candidates: []models.TallyEntry{}},
	}

	if got := ResolveAll(tallies, PolicyLowestID, false); len(got) != 1 || got[0].Position.ID != 1 {
		t.Errorf("closed position not skipped: %+v", got)
	}
	if got := ResolveAll(tallies, PolicyLowestID, true); len(got) != 2 {
		t.Errorf("closed position should be resolved when included: %+v", got)
	}
}
