// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"slices"
	"strings"

	"github.com/danielhkuo/quickly-elect/models"
)

// Policy decides who wins when candidates are tied at the last seat.
type Policy string

const (
	// PolicyLowestID gives tied seats to the lowest candidate IDs.
	PolicyLowestID Policy = "candidate_id"
	// PolicyRunoff withholds tied seats and flags the position for a runoff.
	PolicyRunoff Policy = "runoff"
)

// ParsePolicy accepts a policy name. Empty means PolicyLowestID.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyLowestID:
		return PolicyLowestID, nil
	case PolicyRunoff:
		return PolicyRunoff, nil
	default:
		return "", fmt.Errorf("unknown tie-break policy %q (use %s or %s)", s, PolicyLowestID, PolicyRunoff)
	}
}

func (p Policy) String() string { return string(p) }

// Resolve picks up to seats winners from a position tally. When the
// seats-th and (seats+1)-th candidates have equal counts, TieAtCutoff is set
// and TiedCandidates lists everyone at the cutoff count. With zero total
// votes every candidate is tied at zero and the policy still applies.
func Resolve(pt models.PositionTally, policy Policy) models.PositionWinners {
	entries := slices.Clone(pt.Candidates)
	SortEntries(entries)

	pw := models.PositionWinners{
		Position:   pt.Position,
		TotalVotes: pt.TotalVotes,
		Winners:    []models.Winner{},
	}

	seats := pt.Position.Seats
	if seats <= 0 {
		return pw
	}

	picked := entries
	if len(entries) > seats {
		cutoff := entries[seats-1].VoteCount
		if entries[seats].VoteCount == cutoff {
			pw.TieAtCutoff = true
			for _, e := range entries {
				if e.VoteCount == cutoff {
					pw.TiedCandidates = append(pw.TiedCandidates, e.CandidateID)
				}
			}
		}

		switch {
		case pw.TieAtCutoff && policy == PolicyRunoff:
			pw.RunoffRequired = true
			picked = nil
			for _, e := range entries[:seats] {
				if e.VoteCount > cutoff {
					picked = append(picked, e)
				}
			}
		default:
			picked = entries[:seats]
		}
	}

	for i, e := range picked {
		pw.Winners = append(pw.Winners, models.Winner{
			Rank:        i + 1,
			CandidateID: e.CandidateID,
			Name:        e.Name,
			VoteCount:   e.VoteCount,
		})
	}

	return pw
}

// ResolveAll resolves every tally, skipping closed positions unless
// includeClosed is set.
func ResolveAll(tallies []models.PositionTally, policy Policy, includeClosed bool) []models.PositionWinners {
	out := make([]models.PositionWinners, 0, len(tallies))
	for _, pt := range tallies {
		if !includeClosed && !pt.Position.IsOpen() {
			continue
		}
		out = append(out, Resolve(pt, policy))
	}
	return out
}
