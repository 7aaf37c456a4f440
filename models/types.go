package models

import "strings"

type PositionID int64
type CandidateID int64
type VoterID int64

// Position status constants
type PositionStatus string

const (
	PositionOpen   PositionStatus = "open"
	PositionClosed PositionStatus = "closed"
)

// Voter status constants
type VoterStatus string

const (
	VoterActive   VoterStatus = "active"
	VoterInactive VoterStatus = "inactive"
)

// Domain types

type Position struct {
	ID     PositionID     `json:"position_id" db:"id"`
	Name   string         `json:"name" db:"name"`
	Seats  int            `json:"seats" db:"seats"`
	Status PositionStatus `json:"status" db:"status"`
}

func (p Position) IsOpen() bool {
	return p.Status == PositionOpen
}

type Candidate struct {
	ID         CandidateID `json:"candidate_id" db:"id"`
	PositionID PositionID  `json:"position_id" db:"position_id"`
	FirstName  string      `json:"first_name" db:"first_name"`
	LastName   string      `json:"last_name" db:"last_name"`
	Active     bool        `json:"active" db:"active"`
}

func (c Candidate) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type Voter struct {
	ID             VoterID     `json:"voter_id" db:"id"`
	Login          string      `json:"login" db:"login"`
	CredentialHash string      `json:"-" db:"credential_hash"` // Never expose in JSON
	FirstName      string      `json:"first_name" db:"first_name"`
	LastName       string      `json:"last_name" db:"last_name"`
	Status         VoterStatus `json:"status" db:"status"`
	HasVoted       bool        `json:"has_voted" db:"has_voted"`
}

// CanVote reports whether the voter may still cast a ballot.
func (v Voter) CanVote() bool {
	return v.Status == VoterActive && !v.HasVoted
}

// Vote is one selected candidate inside a committed ballot.
type Vote struct {
	BallotID    string      `json:"ballot_id" db:"ballot_id"`
	PositionID  PositionID  `json:"position_id" db:"position_id"`
	VoterID     VoterID     `json:"voter_id" db:"voter_id"`
	CandidateID CandidateID `json:"candidate_id" db:"candidate_id"`
}

// Ballot maps each position to the set of candidates the voter selected.
// Omitted positions are abstentions.
type Ballot map[PositionID][]CandidateID

type Selection struct {
	PositionID  PositionID
	CandidateID CandidateID
}

// ValidatedBallot is a ballot that passed validation against a catalog
// snapshot. Positions lists every position the ballot touched, including
// those with zero selections.
type ValidatedBallot struct {
	Positions  []PositionID
	Selections []Selection
}

// SelectionsFor returns how many candidates were selected for a position.
func (vb ValidatedBallot) SelectionsFor(id PositionID) int {
	n := 0
	for _, s := range vb.Selections {
		if s.PositionID == id {
			n++
		}
	}
	return n
}

type Receipt struct {
	BallotID  string  `json:"ballot_id"`
	VoterID   VoterID `json:"voter_id"`
	VoteCount int     `json:"vote_count"`
}

// Result types

// CandidateCount is the number of votes one candidate received.
type CandidateCount struct {
	PositionID  PositionID  `db:"position_id"`
	CandidateID CandidateID `db:"candidate_id"`
	VoteCount   int         `db:"vote_count"`
}

// ResultsSnapshot is everything the tally needs, read at one point in time.
type ResultsSnapshot struct {
	Positions  []Position
	Candidates []Candidate
	Counts     []CandidateCount
}

type TallyEntry struct {
	CandidateID CandidateID `json:"candidate_id"`
	Name        string      `json:"name"`
	Active      bool        `json:"active"`
	VoteCount   int         `json:"vote_count"`
	Percentage  float64     `json:"percentage"`
}

type PositionTally struct {
	Position   Position     `json:"position"`
	TotalVotes int          `json:"total_votes"`
	Candidates []TallyEntry `json:"candidates"`
}

type Winner struct {
	Rank        int         `json:"rank"` // 1-indexed ranking
	CandidateID CandidateID `json:"candidate_id"`
	Name        string      `json:"name"`
	VoteCount   int         `json:"vote_count"`
}

type PositionWinners struct {
	Position       Position      `json:"position"`
	TotalVotes     int           `json:"total_votes"`
	Winners        []Winner      `json:"winners"`
	TieAtCutoff    bool          `json:"tie_at_cutoff"`
	RunoffRequired bool          `json:"runoff_required"`
	TiedCandidates []CandidateID `json:"tied_candidates,omitempty"`
}

// Request types

type LoginRequest struct {
	Login      string `json:"login"`
	Credential string `json:"credential"`
}

type BallotSelection struct {
	PositionID   PositionID    `json:"position_id"`
	CandidateIDs []CandidateID `json:"candidate_ids"`
}

type SubmitBallotRequest struct {
	Login      string            `json:"login"`
	Credential string            `json:"credential"`
	Selections []BallotSelection `json:"selections"`
}

// Ballot folds the request selections into a Ballot. Repeated position
// entries are merged.
func (r SubmitBallotRequest) Ballot() Ballot {
	b := make(Ballot, len(r.Selections))
	for _, sel := range r.Selections {
		b[sel.PositionID] = append(b[sel.PositionID], sel.CandidateIDs...)
	}
	return b
}

// Response types

type BallotPosition struct {
	Position   Position    `json:"position"`
	Candidates []Candidate `json:"candidates"`
}

type BallotForm struct {
	Voter     Voter            `json:"voter"`
	Positions []BallotPosition `json:"positions"`
}

type SubmitBallotResponse struct {
	BallotID  string `json:"ballot_id"`
	VoteCount int    `json:"vote_count"`
	Message   string `json:"message"`
}

type TallyResponse struct {
	Positions []PositionTally `json:"positions"`
}

type WinnersResponse struct {
	TieBreak  string            `json:"tie_break"`
	Positions []PositionWinners `json:"positions"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// Seed types

// ElectionDefinition is the import format for positions, candidates and
// voters. Voter credentials are plaintext and hashed on import.
type ElectionDefinition struct {
	Positions  []Position    `json:"positions"`
	Candidates []Candidate   `json:"candidates"`
	Voters     []VoterRecord `json:"voters"`
}

type VoterRecord struct {
	ID         VoterID     `json:"voter_id"`
	Login      string      `json:"login"`
	Credential string      `json:"credential"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Status     VoterStatus `json:"status"`
}
