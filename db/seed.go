// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/models"
)

type SeedOptions struct {
	// CredentialCost is the bcrypt cost for voter credentials. 0 uses the
	// bcrypt default.
	CredentialCost int
}

// SeedCounts reports how many rows Seed inserted.
type SeedCounts struct {
	Positions  int
	Candidates int
	Voters     int
}

// Seed imports an election definition in a single transaction. Either the
// whole definition is inserted or nothing is.
func Seed(ctx context.Context, conn *sql.DB, d Dialect, def models.ElectionDefinition, opts SeedOptions) (SeedCounts, error) {
	if err := checkDefinition(def); err != nil {
		return SeedCounts{}, err
	}

	// Hash before opening the transaction; bcrypt is slow.
	hashes := make([]string, len(def.Voters))
	for i, v := range def.Voters {
		h, err := auth.HashCredential(v.Credential, opts.CredentialCost)
		if err != nil {
			return SeedCounts{}, fmt.Errorf("voter %d: %w", v.ID, err)
		}
		hashes[i] = h
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return SeedCounts{}, errors.Wrap(err, "begin seed")
	}
	defer tx.Rollback()

	b := d.Builder()

	if len(def.Positions) > 0 {
		q := b.Insert("positions").Columns("id", "name", "seats", "status")
		for _, p := range def.Positions {
			status := p.Status
			if status == "" {
				status = models.PositionOpen
			}
			q = q.Values(p.ID, p.Name, p.Seats, string(status))
		}
		if err := execBuilt(ctx, tx, q); err != nil {
			return SeedCounts{}, errors.Wrap(err, "insert positions")
		}
	}

	if len(def.Candidates) > 0 {
		q := b.Insert("candidates").Columns("id", "position_id", "first_name", "last_name", "active")
		for _, c := range def.Candidates {
			q = q.Values(c.ID, c.PositionID, c.FirstName, c.LastName, c.Active)
		}
		if err := execBuilt(ctx, tx, q); err != nil {
			return SeedCounts{}, errors.Wrap(err, "insert candidates")
		}
	}

	if len(def.Voters) > 0 {
		q := b.Insert("voters").Columns("id", "login", "credential_hash", "first_name", "last_name", "status", "has_voted")
		for i, v := range def.Voters {
			status := v.Status
			if status == "" {
				status = models.VoterActive
			}
			q = q.Values(v.ID, v.Login, hashes[i], v.FirstName, v.LastName, string(status), false)
		}
		if err := execBuilt(ctx, tx, q); err != nil {
			return SeedCounts{}, errors.Wrap(err, "insert voters")
		}
	}

	if err := tx.Commit(); err != nil {
		return SeedCounts{}, errors.Wrap(err, "commit seed")
	}

	return SeedCounts{
		Positions:  len(def.Positions),
		Candidates: len(def.Candidates),
		Voters:     len(def.Voters),
	}, nil
}

// Sqlizer is satisfied by every squirrel builder.
type Sqlizer interface {
	ToSql() (string, []interface{}, error)
}

// ExecBuilt renders a squirrel builder and executes it on tx.
func ExecBuilt(ctx context.Context, tx *sql.Tx, q Sqlizer) (sql.Result, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build query")
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return res, nil
}

func execBuilt(ctx context.Context, tx *sql.Tx, q Sqlizer) error {
	_, err := ExecBuilt(ctx, tx, q)
	return err
}

func checkDefinition(def models.ElectionDefinition) error {
	positions := make(map[models.PositionID]bool, len(def.Positions))
	for _, p := range def.Positions {
		if p.Name == "" {
			return fmt.Errorf("position %d: name is required", p.ID)
		}
		if p.Seats <= 0 {
			return fmt.Errorf("position %d: seats must be positive", p.ID)
		}
		if p.Status != "" && p.Status != models.PositionOpen && p.Status != models.PositionClosed {
			return fmt.Errorf("position %d: invalid status %q", p.ID, p.Status)
		}
		if positions[p.ID] {
			return fmt.Errorf("position %d: duplicate id", p.ID)
		}
		positions[p.ID] = true
	}

	for _, c := range def.Candidates {
		if c.FirstName == "" {
			return fmt.Errorf("candidate %d: first name is required", c.ID)
		}
		if !positions[c.PositionID] {
			return fmt.Errorf("candidate %d: unknown position %d", c.ID, c.PositionID)
		}
	}

	logins := make(map[string]bool, len(def.Voters))
	for _, v := range def.Voters {
		if v.Login == "" {
			return fmt.Errorf("voter %d: login is required", v.ID)
		}
		if v.Status != "" && v.Status != models.VoterActive && v.Status != models.VoterInactive {
			return fmt.Errorf("voter %d: invalid status %q", v.ID, v.Status)
		}
		if logins[v.Login] {
			return fmt.Errorf("voter %d: duplicate login %q", v.ID, v.Login)
		}
		logins[v.Login] = true
	}

	return nil
}
