// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the fiber request handlers for the election API.

# Handler Types

Handlers depend on narrow service interfaces, not on the database:

  - VotingHandler: voter login and ballot submission (BallotService)
  - ResultsHandler: tallies and winners (ResultsService)

*election.Service satisfies both:

	svc := election.Open(conn, db.SQLite, election.Options{})
	voting := handlers.NewVotingHandler(svc)
	results := handlers.NewResultsHandler(svc)

# Submission

	POST /voters/login -> Login (ballot form for an eligible voter)
	POST /ballots      -> SubmitBallot (201 with a receipt)

Request bodies carry the voter's login and credential. A ballot lists
selections per position; positions left out are abstentions.

# Results

	GET /results                -> GetResults
	GET /positions/:id/results  -> GetPositionResults
	GET /winners                -> GetWinners
	GET /positions/:id/winners  -> GetPositionWinners

Results are recomputed from the ledger on every request and are provisional
while voting is open.

# Errors

Engine rejections are rendered by middleware.RejectionResponse, which maps
each reason code onto an HTTP status. Malformed input is a 400.
*/
package handlers
