// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, response, and error types shared by
the engine and the API.

# Domain Types

Catalog records and ledger rows:

  - Position: an office with a seat count and open/closed status
  - Candidate: runs for exactly one position, may be deactivated
  - Voter: login, bcrypt credential hash, status, has_voted flag
  - Vote: one selected candidate inside a committed ballot

Identifiers are typed (PositionID, CandidateID, VoterID) so a candidate ID
can never be passed where a position ID is expected.

# Ballots

A Ballot maps positions to selected candidates. After validation it becomes
a ValidatedBallot, the flattened list of selections the ledger commits:

	b := models.Ballot{1: {10, 11}, 2: {20}}

# Results

ResultsSnapshot is the raw read (positions, candidates, grouped counts).
PositionTally and PositionWinners are derived from it on every query.

# Errors

Sentinel errors (ErrNotEligible, ErrPositionClosed, ErrInvalidCandidate,
ErrTooManySelections, ErrConflict, ErrStorage) form the rejection taxonomy.
ReasonOf maps any wrapped error onto the stable reason code returned in
ErrorResponse.Reason.
*/
package models
