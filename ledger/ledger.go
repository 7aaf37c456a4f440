// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/models"
)

// Ledger is the append-only vote store. Votes are only ever inserted, and
// only by Commit.
type Ledger struct {
	conn    *sql.DB
	dialect db.Dialect
	newID   func() string
}

func New(conn *sql.DB, d db.Dialect) *Ledger {
	return &Ledger{conn: conn, dialect: d, newID: auth.NewBallotID}
}

type voterState struct {
	HasVoted bool               `db:"has_voted"`
	Status   models.VoterStatus `db:"status"`
}

// Commit records a validated ballot. In one transaction it re-checks the
// catalog rows the ballot touches, flips the voter's has_voted flag with a
// conditional update, and inserts the ballot and its votes. Any failure
// rolls everything back.
func (l *Ledger) Commit(ctx context.Context, voterID models.VoterID, vb models.ValidatedBallot) (models.Receipt, error) {
	tx, err := l.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.Receipt{}, db.StorageError("begin commit", err)
	}
	defer tx.Rollback()

	if err := l.recheckCatalog(ctx, tx, vb); err != nil {
		return models.Receipt{}, err
	}

	if err := l.markVoted(ctx, tx, voterID); err != nil {
		return models.Receipt{}, err
	}

	ballotID := l.newID()
	b := l.dialect.Builder()

	_, err = db.ExecBuilt(ctx, tx, b.Insert("ballots").
		Columns("id", "voter_id").
		Values(ballotID, voterID))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return models.Receipt{}, fmt.Errorf("%w: voter %d", models.ErrConflict, voterID)
		}
		return models.Receipt{}, db.StorageError("insert ballot", err)
	}

	if len(vb.Selections) > 0 {
		q := b.Insert("votes").Columns("ballot_id", "position_id", "voter_id", "candidate_id")
		for _, s := range vb.Selections {
			q = q.Values(ballotID, s.PositionID, voterID, s.CandidateID)
		}
		if _, err := db.ExecBuilt(ctx, tx, q); err != nil {
			return models.Receipt{}, db.StorageError("insert votes", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Receipt{}, db.StorageError("commit ballot", err)
	}

	return models.Receipt{
		BallotID:  ballotID,
		VoterID:   voterID,
		VoteCount: len(vb.Selections),
	}, nil
}

// recheckCatalog repeats the catalog half of validation against the rows
// visible to tx, so a position closed or a candidate deactivated after the
// snapshot was taken cannot receive votes.
func (l *Ledger) recheckCatalog(ctx context.Context, tx *sql.Tx, vb models.ValidatedBallot) error {
	if len(vb.Positions) == 0 {
		return nil
	}

	posQuery := l.dialect.Builder().
		Select("id", "name", "seats", "status").
		From("positions").
		Where(sq.Eq{"id": vb.Positions})
	if l.dialect == db.Postgres {
		posQuery = posQuery.Suffix("FOR SHARE")
	}

	var positions []models.Position
	if err := selectBuilt(ctx, tx, &positions, posQuery); err != nil {
		return db.StorageError("recheck positions", err)
	}
	byID := make(map[models.PositionID]models.Position, len(positions))
	for _, p := range positions {
		byID[p.ID] = p
	}
	for _, id := range vb.Positions {
		p, ok := byID[id]
		if !ok || !p.IsOpen() {
			return fmt.Errorf("%w: position %d", models.ErrPositionClosed, id)
		}
	}

	if len(vb.Selections) == 0 {
		return nil
	}

	ids := make([]models.CandidateID, len(vb.Selections))
	for i, s := range vb.Selections {
		ids[i] = s.CandidateID
	}
	candQuery := l.dialect.Builder().
		Select("id", "position_id", "first_name", "last_name", "active").
		From("candidates").
		Where(sq.Eq{"id": ids})
	if l.dialect == db.Postgres {
		candQuery = candQuery.Suffix("FOR SHARE")
	}

	var candidates []models.Candidate
	if err := selectBuilt(ctx, tx, &candidates, candQuery); err != nil {
		return db.StorageError("recheck candidates", err)
	}
	cands := make(map[models.CandidateID]models.Candidate, len(candidates))
	for _, c := range candidates {
		cands[c.ID] = c
	}
	for _, s := range vb.Selections {
		c, ok := cands[s.CandidateID]
		if !ok || !c.Active || c.PositionID != s.PositionID {
			return fmt.Errorf("%w: candidate %d for position %d", models.ErrInvalidCandidate, s.CandidateID, s.PositionID)
		}
	}

	for _, id := range vb.Positions {
		if n := vb.SelectionsFor(id); n > byID[id].Seats {
			return fmt.Errorf("%w: position %d allows %d, got %d", models.ErrTooManySelections, id, byID[id].Seats, n)
		}
	}

	return nil
}

// markVoted is the check-and-set on has_voted. Concurrent commits for the
// same voter serialize on the voter row; the loser sees zero rows affected.
func (l *Ledger) markVoted(ctx context.Context, tx *sql.Tx, voterID models.VoterID) error {
	res, err := db.ExecBuilt(ctx, tx, l.dialect.Builder().
		Update("voters").
		Set("has_voted", true).
		Where(sq.Eq{
			"id":        voterID,
			"has_voted": false,
			"status":    string(models.VoterActive),
		}))
	if err != nil {
		return db.StorageError("mark voter", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return db.StorageError("mark voter", err)
	}
	if n == 1 {
		return nil
	}

	// Zero rows: find out why
	query, args, err := l.dialect.Builder().
		Select("has_voted", "status").
		From("voters").
		Where(sq.Eq{"id": voterID}).
		ToSql()
	if err != nil {
		return db.StorageError("build voter query", err)
	}

	var st voterState
	if err := sqlscan.Get(ctx, tx, &st, query, args...); err != nil {
		if sqlscan.NotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: voter %d not found", models.ErrNotEligible, voterID)
		}
		return db.StorageError("load voter", err)
	}
	if st.HasVoted {
		return fmt.Errorf("%w: voter %d", models.ErrConflict, voterID)
	}
	return fmt.Errorf("%w: voter %d is %s", models.ErrNotEligible, voterID, st.Status)
}

func selectBuilt(ctx context.Context, q sqlscan.Querier, dst interface{}, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	return sqlscan.Select(ctx, q, dst, query, args...)
}
