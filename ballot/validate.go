// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"fmt"
	"slices"

	"github.com/danielhkuo/quickly-elect/catalog"
	"github.com/danielhkuo/quickly-elect/models"
)

// Validate checks a voter's ballot against a catalog snapshot and flattens
// it into the selections to commit. Checks run in a fixed order and stop at
// the first failure:
//
//  1. the voter is active and has not voted (ErrNotEligible)
//  2. every position is open (ErrPositionClosed)
//  3. every candidate is active and runs for that position (ErrInvalidCandidate)
//  4. no position has more selections than seats (ErrTooManySelections)
//
// Positions are visited in ascending ID order so the reported failure does
// not depend on map iteration. Repeated candidate IDs within a position
// count once.
func Validate(voter models.Voter, b models.Ballot, snap *catalog.Snapshot) (models.ValidatedBallot, error) {
	if !voter.CanVote() {
		return models.ValidatedBallot{}, fmt.Errorf("%w: voter %d", models.ErrNotEligible, voter.ID)
	}

	ids := make([]models.PositionID, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	positions := make([]models.Position, len(ids))
	for i, id := range ids {
		p, ok := snap.Position(id)
		if !ok || !p.IsOpen() {
			return models.ValidatedBallot{}, fmt.Errorf("%w: position %d", models.ErrPositionClosed, id)
		}
		positions[i] = p
	}

	selected := make([][]models.CandidateID, len(ids))
	for i, id := range ids {
		picks := dedupe(b[id])
		for _, cid := range picks {
			c, ok := snap.Candidate(cid)
			if !ok || !c.Active || c.PositionID != id {
				return models.ValidatedBallot{}, fmt.Errorf("%w: candidate %d for position %d",
					models.ErrInvalidCandidate, cid, id)
			}
		}
		selected[i] = picks
	}

	vb := models.ValidatedBallot{Positions: ids}
	for i, p := range positions {
		if len(selected[i]) > p.Seats {
			return models.ValidatedBallot{}, fmt.Errorf("%w: position %d allows %d, got %d",
				models.ErrTooManySelections, p.ID, p.Seats, len(selected[i]))
		}
		for _, cid := range selected[i] {
			vb.Selections = append(vb.Selections, models.Selection{PositionID: p.ID, CandidateID: cid})
		}
	}

	return vb, nil
}

// dedupe returns the distinct IDs in ascending order.
func dedupe(ids []models.CandidateID) []models.CandidateID {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
