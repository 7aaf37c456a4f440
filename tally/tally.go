// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"cmp"
	"slices"

	"github.com/danielhkuo/quickly-elect/models"
)

type countKey struct {
	position  models.PositionID
	candidate models.CandidateID
}

// Aggregate computes per-position counts and percentages. Every candidate
// bound to a position appears, including zero-vote and inactive ones.
// Positions come back in ascending ID order and candidates by count
// descending, then candidate ID ascending.
func Aggregate(res models.ResultsSnapshot) []models.PositionTally {
	counts := make(map[countKey]int, len(res.Counts))
	for _, c := range res.Counts {
		counts[countKey{c.PositionID, c.CandidateID}] += c.VoteCount
	}

	byPosition := make(map[models.PositionID][]models.TallyEntry, len(res.Positions))
	known := make(map[countKey]bool, len(res.Candidates))
	for _, c := range res.Candidates {
		k := countKey{c.PositionID, c.ID}
		known[k] = true
		byPosition[c.PositionID] = append(byPosition[c.PositionID], models.TallyEntry{
			CandidateID: c.ID,
			Name:        c.FullName(),
			Active:      c.Active,
			VoteCount:   counts[k],
		})
	}
	// Votes whose candidate row is missing from the read still count
	for k, n := range counts {
		if !known[k] {
			byPosition[k.position] = append(byPosition[k.position], models.TallyEntry{
				CandidateID: k.candidate,
				VoteCount:   n,
			})
		}
	}

	positions := slices.Clone(res.Positions)
	slices.SortFunc(positions, func(a, b models.Position) int {
		return cmp.Compare(a.ID, b.ID)
	})

	out := make([]models.PositionTally, 0, len(positions))
	for _, p := range positions {
		entries := byPosition[p.ID]
		if entries == nil {
			entries = []models.TallyEntry{}
		}

		total := 0
		for _, e := range entries {
			total += e.VoteCount
		}
		for i := range entries {
			entries[i].Percentage = Percentage(entries[i].VoteCount, total)
		}
		SortEntries(entries)

		out = append(out, models.PositionTally{
			Position:   p,
			TotalVotes: total,
			Candidates: entries,
		})
	}

	return out
}

// Percentage is count/total*100, or 0 when total is 0.
func Percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// SortEntries orders by vote count descending, then candidate ID ascending.
func SortEntries(entries []models.TallyEntry) {
	slices.SortFunc(entries, func(a, b models.TallyEntry) int {
		if c := cmp.Compare(b.VoteCount, a.VoteCount); c != 0 {
			return c
		}
		return cmp.Compare(a.CandidateID, b.CandidateID)
	})
}
