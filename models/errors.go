// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

// Rejection and failure taxonomy shared by the validator, ledger and
// read side. Callers match with errors.Is.
var (
	ErrNotEligible       = errors.New("voter is not eligible to vote")
	ErrPositionClosed    = errors.New("position is not open for voting")
	ErrInvalidCandidate  = errors.New("candidate is not valid for this position")
	ErrTooManySelections = errors.New("too many candidates selected for position")
	ErrConflict          = errors.New("voter has already cast a ballot")
	ErrStorage           = errors.New("storage failure")

	ErrPositionNotFound = errors.New("position not found")
	ErrVoterNotFound    = errors.New("voter not found")
)

// Reason codes surfaced to API callers
const (
	ReasonNotEligible       = "not_eligible"
	ReasonPositionClosed    = "position_closed"
	ReasonInvalidCandidate  = "invalid_candidate"
	ReasonTooManySelections = "too_many_selections"
	ReasonConflict          = "conflict"
	ReasonStorage           = "storage_failure"
	ReasonPositionNotFound  = "position_not_found"
)

// ReasonOf maps an error onto its reason code. Unknown errors return "".
func ReasonOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConflict):
		return ReasonConflict
	case errors.Is(err, ErrNotEligible), errors.Is(err, ErrVoterNotFound):
		return ReasonNotEligible
	case errors.Is(err, ErrPositionClosed):
		return ReasonPositionClosed
	case errors.Is(err, ErrInvalidCandidate):
		return ReasonInvalidCandidate
	case errors.Is(err, ErrTooManySelections):
		return ReasonTooManySelections
	case errors.Is(err, ErrPositionNotFound):
		return ReasonPositionNotFound
	case errors.Is(err, ErrStorage):
		return ReasonStorage
	default:
		return ""
	}
}
