// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election is the engine facade used by the API and the admin CLI.

# Submitting

	svc := election.Open(conn, dialect, election.Options{CatalogTTL: 5 * time.Second})
	receipt, err := svc.SubmitBallot(ctx, login, credential, models.Ballot{1: {11}})

SubmitBallot runs the credential check, ballot.Validate against the cached
catalog snapshot, then ledger.Commit. Rejections are returned unchanged and
never retried; match them with errors.Is or models.ReasonOf. A voter who has
already voted is rejected with models.ErrConflict whether the second ballot
loses at validation or inside the commit.

# Reading

GetTally and GetWinners recompute from the ledger on every call. Both
accept a nil position ID for all positions.
*/
package election
