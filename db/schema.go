// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Statements run one at a time and use only types both SQLite and
// PostgreSQL accept.
var schema = []string{
	// Positions
	`CREATE TABLE IF NOT EXISTS positions (
    id BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    seats INTEGER NOT NULL CHECK (seats > 0),
    status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed'))
)`,

	// Candidates
	`CREATE TABLE IF NOT EXISTS candidates (
    id BIGINT PRIMARY KEY,
    position_id BIGINT NOT NULL REFERENCES positions(id) ON DELETE CASCADE,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL DEFAULT '',
    active BOOLEAN NOT NULL DEFAULT TRUE
)`,
	`CREATE INDEX IF NOT EXISTS idx_candidates_position_id ON candidates(position_id)`,

	// Voters
	`CREATE TABLE IF NOT EXISTS voters (
    id BIGINT PRIMARY KEY,
    login TEXT NOT NULL UNIQUE,
    credential_hash TEXT NOT NULL,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
    has_voted BOOLEAN NOT NULL DEFAULT FALSE
)`,

	// Ballots, one per voter
	`CREATE TABLE IF NOT EXISTS ballots (
    id TEXT PRIMARY KEY,
    voter_id BIGINT NOT NULL UNIQUE REFERENCES voters(id),
    cast_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,

	// Votes
	`CREATE TABLE IF NOT EXISTS votes (
    ballot_id TEXT NOT NULL REFERENCES ballots(id) ON DELETE CASCADE,
    position_id BIGINT NOT NULL REFERENCES positions(id),
    voter_id BIGINT NOT NULL REFERENCES voters(id),
    candidate_id BIGINT NOT NULL REFERENCES candidates(id),
    PRIMARY KEY (ballot_id, candidate_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_votes_position_candidate ON votes(position_id, candidate_id)`,
}
