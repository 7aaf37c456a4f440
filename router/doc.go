// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the quickly-elect API.

# Route Registration

NewRouter builds the election service on a database and returns a fiber app
with all endpoints:

	app := router.NewRouter(conn, cfg)

NewApp mounts the same routes over any Engine, which is useful in tests.

# Endpoints

Health:

	GET /health

Voting, under /api/v1 with the request timeout applied:

	POST /api/v1/voters/login - Ballot form for an eligible voter
	POST /api/v1/ballots      - Submit a ballot (rate limited per client IP)

Results, under /api/v1:

	GET /api/v1/results               - Tallies for every position
	GET /api/v1/positions/:id/results - Tally for one position
	GET /api/v1/winners               - Winners for open positions
	GET /api/v1/positions/:id/winners - Winners for one position

# Middleware

Every request passes through panic recovery, request ID assignment,
zerolog request logging and CORS. Errors returned from handlers are rendered by middleware.ErrorHandler.
*/
package router
