// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation, and election seeding for
both SQLite and PostgreSQL.

# Connecting

	d, _ := db.ParseDialect(cfg.DatabaseType)
	conn, err := db.Open(cfg.DatabaseURL, d)

SQLite connections get foreign_keys and busy_timeout pragmas and are capped
at one open connection. Queries elsewhere are built with d.Builder() so the
placeholder style ($1 or ?) matches the backend.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal().Err(err).Send()
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - positions: office name, seat count, open/closed status
  - candidates: bound to one position, active flag
  - voters: login, bcrypt credential hash, status, has_voted
  - ballots: one row per committed ballot, voter_id UNIQUE
  - votes: one row per selected candidate, append-only

# Relationships

	positions 1──* candidates
	voters    1──1 ballots
	ballots   1──* votes
	votes     *──1 candidates, positions

# Seeding

Seed imports a models.ElectionDefinition in one transaction, hashing voter
credentials with bcrypt first:

	counts, err := db.Seed(ctx, conn, d, def, db.SeedOptions{})

# Constraint Errors

IsUniqueViolation recognizes duplicate-key errors from lib/pq (SQLSTATE
23505) and modernc.org/sqlite.
*/
package db
