// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/models"
)

// Reader is the read-only catalog collaborator.
type Reader interface {
	OpenPositions(ctx context.Context) ([]models.Position, error)
	ActiveCandidates(ctx context.Context, positionID models.PositionID) ([]models.Candidate, error)
	Voter(ctx context.Context, id models.VoterID) (models.Voter, error)
	VoterByLogin(ctx context.Context, login string) (models.Voter, error)
}

var (
	positionColumns  = []string{"id", "name", "seats", "status"}
	candidateColumns = []string{"id", "position_id", "first_name", "last_name", "active"}
	voterColumns     = []string{"id", "login", "credential_hash", "first_name", "last_name", "status", "has_voted"}
)

// Store reads the catalog tables created by db.CreateSchema.
type Store struct {
	conn    *sql.DB
	dialect db.Dialect
}

func NewStore(conn *sql.DB, d db.Dialect) *Store {
	return &Store{conn: conn, dialect: d}
}

func (s *Store) OpenPositions(ctx context.Context) ([]models.Position, error) {
	q := s.dialect.Builder().
		Select(positionColumns...).
		From("positions").
		Where(sq.Eq{"status": string(models.PositionOpen)}).
		OrderBy("id")

	var positions []models.Position
	if err := s.selectBuilt(ctx, &positions, q); err != nil {
		return nil, db.StorageError("load open positions", err)
	}
	return positions, nil
}

func (s *Store) ActiveCandidates(ctx context.Context, positionID models.PositionID) ([]models.Candidate, error) {
	q := s.dialect.Builder().
		Select(candidateColumns...).
		From("candidates").
		Where(sq.Eq{"position_id": positionID, "active": true}).
		OrderBy("id")

	var candidates []models.Candidate
	if err := s.selectBuilt(ctx, &candidates, q); err != nil {
		return nil, db.StorageError(fmt.Sprintf("load candidates for position %d", positionID), err)
	}
	return candidates, nil
}

func (s *Store) Voter(ctx context.Context, id models.VoterID) (models.Voter, error) {
	return s.getVoter(ctx, sq.Eq{"id": id})
}

func (s *Store) VoterByLogin(ctx context.Context, login string) (models.Voter, error) {
	return s.getVoter(ctx, sq.Eq{"login": login})
}

func (s *Store) getVoter(ctx context.Context, where sq.Eq) (models.Voter, error) {
	query, args, err := s.dialect.Builder().
		Select(voterColumns...).
		From("voters").
		Where(where).
		ToSql()
	if err != nil {
		return models.Voter{}, db.StorageError("build voter query", err)
	}

	var v models.Voter
	if err := sqlscan.Get(ctx, s.conn, &v, query, args...); err != nil {
		if sqlscan.NotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return models.Voter{}, models.ErrVoterNotFound
		}
		return models.Voter{}, db.StorageError("load voter", err)
	}
	return v, nil
}

func (s *Store) selectBuilt(ctx context.Context, dst interface{}, q sq.SelectBuilder) error {
	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	return sqlscan.Select(ctx, s.conn, dst, query, args...)
}
