// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/danielhkuo/quickly-elect/models"
)

// Entry is an open position with its active candidates in ID order.
type Entry struct {
	Position   models.Position
	Candidates []models.Candidate
}

// Snapshot is an immutable view of the open positions and their active
// candidates. It is safe for concurrent use.
type Snapshot struct {
	positions  map[models.PositionID]Entry
	candidates map[models.CandidateID]models.Candidate
	order      []models.PositionID
	builtAt    time.Time
}

// NewSnapshot indexes positions and candidates. Closed positions and
// inactive candidates are dropped, as are candidates whose position is not
// in the list.
func NewSnapshot(positions []models.Position, candidates []models.Candidate, builtAt time.Time) *Snapshot {
	s := &Snapshot{
		positions:  make(map[models.PositionID]Entry, len(positions)),
		candidates: make(map[models.CandidateID]models.Candidate, len(candidates)),
		builtAt:    builtAt,
	}

	for _, p := range positions {
		if !p.IsOpen() {
			continue
		}
		s.positions[p.ID] = Entry{Position: p}
		s.order = append(s.order, p.ID)
	}
	slices.Sort(s.order)

	for _, c := range candidates {
		e, ok := s.positions[c.PositionID]
		if !ok || !c.Active {
			continue
		}
		e.Candidates = append(e.Candidates, c)
		s.positions[c.PositionID] = e
		s.candidates[c.ID] = c
	}
	for id, e := range s.positions {
		slices.SortFunc(e.Candidates, func(a, b models.Candidate) int {
			return cmp.Compare(a.ID, b.ID)
		})
		s.positions[id] = e
	}

	return s
}

// BuildSnapshot loads a snapshot through the catalog collaborator.
func BuildSnapshot(ctx context.Context, r Reader, now time.Time) (*Snapshot, error) {
	positions, err := r.OpenPositions(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []models.Candidate
	for _, p := range positions {
		cs, err := r.ActiveCandidates(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, cs...)
	}

	return NewSnapshot(positions, candidates, now), nil
}

// Position returns an open position.
func (s *Snapshot) Position(id models.PositionID) (models.Position, bool) {
	e, ok := s.positions[id]
	return e.Position, ok
}

// Candidate returns an active candidate of an open position.
func (s *Snapshot) Candidate(id models.CandidateID) (models.Candidate, bool) {
	c, ok := s.candidates[id]
	return c, ok
}

// Entries lists open positions in ascending ID order. The candidate slices
// are shared and must not be modified.
func (s *Snapshot) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.positions[id])
	}
	return out
}

func (s *Snapshot) Len() int { return len(s.order) }

func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }
