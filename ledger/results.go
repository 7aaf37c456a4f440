// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/models"
)

// Results reads positions, candidates and grouped vote counts inside one
// read transaction, so a ballot's votes are seen all together or not at
// all. A nil positionID reads every position.
func (l *Ledger) Results(ctx context.Context, positionID *models.PositionID) (models.ResultsSnapshot, error) {
	tx, err := l.conn.BeginTx(ctx, l.dialect.ReadTxOptions())
	if err != nil {
		return models.ResultsSnapshot{}, db.StorageError("begin results", err)
	}
	defer tx.Rollback()

	b := l.dialect.Builder()
	posQuery := b.Select("id", "name", "seats", "status").From("positions").OrderBy("id")
	candQuery := b.Select("id", "position_id", "first_name", "last_name", "active").From("candidates").OrderBy("id")
	countQuery := b.Select("position_id", "candidate_id", "COUNT(*) AS vote_count").
		From("votes").
		GroupBy("position_id", "candidate_id")
	if positionID != nil {
		posQuery = posQuery.Where(sq.Eq{"id": *positionID})
		candQuery = candQuery.Where(sq.Eq{"position_id": *positionID})
		countQuery = countQuery.Where(sq.Eq{"position_id": *positionID})
	}

	var res models.ResultsSnapshot
	if err := selectBuilt(ctx, tx, &res.Positions, posQuery); err != nil {
		return models.ResultsSnapshot{}, db.StorageError("read positions", err)
	}
	if positionID != nil && len(res.Positions) == 0 {
		return models.ResultsSnapshot{}, fmt.Errorf("%w: %d", models.ErrPositionNotFound, *positionID)
	}
	if err := selectBuilt(ctx, tx, &res.Candidates, candQuery); err != nil {
		return models.ResultsSnapshot{}, db.StorageError("read candidates", err)
	}
	if err := selectBuilt(ctx, tx, &res.Counts, countQuery); err != nil {
		return models.ResultsSnapshot{}, db.StorageError("read vote counts", err)
	}

	if err := tx.Commit(); err != nil {
		return models.ResultsSnapshot{}, db.StorageError("finish results", err)
	}
	return res, nil
}
