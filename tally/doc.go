// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally turns a ledger read into per-position results and winners.

# Aggregation

Aggregate is a pure function over a models.ResultsSnapshot:

	tallies := tally.Aggregate(res)

Each position lists every candidate bound to it, with vote count and
percentage of the position total. Percentages are 0 when nobody voted for
the position. Candidates are ordered by count descending, ties by candidate
ID ascending, so repeated calls over the same ledger return identical output.

# Winners

Resolve takes the first seats entries of a tally:

	pw := tally.Resolve(pt, tally.PolicyLowestID)

A tie at the cutoff (seats-th and next candidate with equal counts) is
always reported through TieAtCutoff and TiedCandidates. The policy decides
the seat:

  - candidate_id: lowest candidate ID takes the seat
  - runoff: tied seats stay empty and RunoffRequired is set

A position nobody voted for still returns its first seats candidates by ID
under candidate_id.
*/
package tally
