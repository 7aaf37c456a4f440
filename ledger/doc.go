// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger is the vote store: atomic ballot commits and consistent
result reads.

# Commit

	receipt, err := l.Commit(ctx, voter.ID, validated)

A commit is one transaction:

 1. re-read the touched positions and selected candidates; reject with
    ErrPositionClosed, ErrInvalidCandidate or ErrTooManySelections if the
    catalog changed since validation
 2. UPDATE voters SET has_voted = TRUE WHERE id = ? AND has_voted = FALSE
    AND status = 'active'; zero rows means ErrConflict (already voted) or
    ErrNotEligible
 3. insert the ballot row (voter_id is UNIQUE) and every vote
 4. commit

Nothing is written unless every step succeeds. A cancelled context rolls
the transaction back. Storage errors wrap models.ErrStorage.

# Results

Results returns the raw snapshot consumed by package tally. PostgreSQL reads
run under REPEATABLE READ; SQLite transactions are serializable already.
*/
package ledger
