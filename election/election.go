// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/ballot"
	"github.com/danielhkuo/quickly-elect/catalog"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/ledger"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/tally"
)

// CatalogSource supplies catalog snapshots and voter lookups.
type CatalogSource interface {
	Snapshot(ctx context.Context) (*catalog.Snapshot, error)
	VoterByLogin(ctx context.Context, login string) (models.Voter, error)
}

// Ledger commits ballots and reads results.
type Ledger interface {
	Commit(ctx context.Context, voterID models.VoterID, vb models.ValidatedBallot) (models.Receipt, error)
	Results(ctx context.Context, positionID *models.PositionID) (models.ResultsSnapshot, error)
}

type Dependencies struct {
	Catalog CatalogSource
	Ledger  Ledger
	Policy  tally.Policy
	// ResolveClosed includes closed positions in winner resolution.
	ResolveClosed bool
}

// Options configure Open.
type Options struct {
	CatalogTTL    time.Duration
	Policy        tally.Policy
	ResolveClosed bool
}

// Service is the ballot submission and tabulation engine.
type Service struct {
	catalog       CatalogSource
	ledger        Ledger
	policy        tally.Policy
	resolveClosed bool
}

func NewService(deps Dependencies) *Service {
	policy := deps.Policy
	if policy == "" {
		policy = tally.PolicyLowestID
	}
	return &Service{
		catalog:       deps.Catalog,
		ledger:        deps.Ledger,
		policy:        policy,
		resolveClosed: deps.ResolveClosed,
	}
}

// Open wires a Service to the SQL catalog and ledger on conn.
func Open(conn *sql.DB, d db.Dialect, opts Options) *Service {
	return NewService(Dependencies{
		Catalog:       catalog.NewCache(catalog.NewStore(conn, d), opts.CatalogTTL),
		Ledger:        ledger.New(conn, d),
		Policy:        opts.Policy,
		ResolveClosed: opts.ResolveClosed,
	})
}

func (s *Service) Policy() tally.Policy { return s.policy }

// authenticate resolves a login and checks the credential. Every failure is
// reported as ErrNotEligible so callers cannot probe which logins exist.
func (s *Service) authenticate(ctx context.Context, login, credential string) (models.Voter, error) {
	voter, err := s.catalog.VoterByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, models.ErrVoterNotFound) {
			auth.BurnCredentialCheck(credential)
			return models.Voter{}, fmt.Errorf("%w: unknown login", models.ErrNotEligible)
		}
		return models.Voter{}, err
	}

	if err := auth.VerifyCredential(voter.CredentialHash, credential); err != nil {
		return models.Voter{}, fmt.Errorf("%w: %w", models.ErrNotEligible, err)
	}
	return voter, nil
}

// Login checks the credential and returns the ballot form: every open
// position with its seat count and active candidates.
func (s *Service) Login(ctx context.Context, login, credential string) (models.BallotForm, error) {
	voter, err := s.authenticate(ctx, login, credential)
	if err != nil {
		return models.BallotForm{}, err
	}
	if !voter.CanVote() {
		return models.BallotForm{}, fmt.Errorf("%w: voter %d", models.ErrNotEligible, voter.ID)
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return models.BallotForm{}, err
	}

	form := models.BallotForm{Voter: voter, Positions: make([]models.BallotPosition, 0, snap.Len())}
	for _, e := range snap.Entries() {
		candidates := e.Candidates
		if candidates == nil {
			candidates = []models.Candidate{}
		}
		form.Positions = append(form.Positions, models.BallotPosition{
			Position:   e.Position,
			Candidates: candidates,
		})
	}
	return form, nil
}

// SubmitBallot authenticates, validates and commits a ballot.
func (s *Service) SubmitBallot(ctx context.Context, login, credential string, b models.Ballot) (models.Receipt, error) {
	voter, err := s.authenticate(ctx, login, credential)
	if err != nil {
		log.Info().Str("login", login).Str("reason", models.ReasonOf(err)).Msg("ballot rejected")
		return models.Receipt{}, err
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return models.Receipt{}, err
	}

	vb, err := ballot.Validate(voter, b, snap)
	if err != nil {
		// A voter who already voted gets the same answer as a lost commit race
		if voter.HasVoted && errors.Is(err, models.ErrNotEligible) {
			err = fmt.Errorf("%w: voter %d", models.ErrConflict, voter.ID)
		}
		log.Info().Int64("voter_id", int64(voter.ID)).Str("reason", models.ReasonOf(err)).Msg("ballot rejected")
		return models.Receipt{}, err
	}

	receipt, err := s.ledger.Commit(ctx, voter.ID, vb)
	if err != nil {
		lvl := zerolog.InfoLevel
		if errors.Is(err, models.ErrStorage) {
			lvl = zerolog.ErrorLevel
		}
		log.WithLevel(lvl).Err(err).Int64("voter_id", int64(voter.ID)).Str("reason", models.ReasonOf(err)).Msg("ballot commit failed")
		return models.Receipt{}, err
	}

	log.Info().
		Int64("voter_id", int64(voter.ID)).
		Str("ballot_id", receipt.BallotID).
		Int("votes", receipt.VoteCount).
		Msg("ballot committed")
	return receipt, nil
}

// GetTally recomputes counts and percentages from the ledger. A nil
// positionID covers every position.
func (s *Service) GetTally(ctx context.Context, positionID *models.PositionID) ([]models.PositionTally, error) {
	res, err := s.ledger.Results(ctx, positionID)
	if err != nil {
		return nil, err
	}
	return tally.Aggregate(res), nil
}

// GetWinners resolves winners bounded by seats, recomputed on every call.
// Closed positions are left out unless the service resolves them; asking
// for one directly returns ErrPositionClosed.
func (s *Service) GetWinners(ctx context.Context, positionID *models.PositionID) ([]models.PositionWinners, error) {
	tallies, err := s.GetTally(ctx, positionID)
	if err != nil {
		return nil, err
	}

	if positionID != nil && !s.resolveClosed {
		for _, pt := range tallies {
			if !pt.Position.IsOpen() {
				return nil, fmt.Errorf("%w: position %d", models.ErrPositionClosed, pt.Position.ID)
			}
		}
	}

	return tally.ResolveAll(tallies, s.policy, s.resolveClosed), nil
}
