// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the quickly-elect API server.

quickly-elect accepts one ballot per eligible voter across a set of
positions, each with a number of seats, and tallies the results on demand.

# Starting the Server

The server reads CLI flags, then environment variables, then an optional
.env file in the working directory:

	DATABASE_URL=election.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string

Optional settings:

  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - PORT (-p): Server port (default: 3318)
  - TIE_BREAK (-tie-break): candidate_id or runoff
  - CATALOG_TTL, REQUEST_TIMEOUT, SUBMIT_RATE_LIMIT, LOG_LEVEL, LOG_FILE

See package cliparse for the full list.

# Architecture

  - election: the engine facade (login, submit, tally, winners)
  - catalog: positions, candidates and voters; cached snapshots
  - ballot: validation of a ballot against a catalog snapshot
  - ledger: atomic ballot commit and result reads
  - tally: counting and winner resolution by seats
  - handlers, router, middleware: the fiber HTTP surface
  - db: dialects, schema, seeding
  - logger: zerolog configuration
  - cmd/electionctl: admin CLI for migrate, seed, tally and winners

# Graceful Shutdown

The server shuts down on SIGINT or SIGTERM.
*/
package main
