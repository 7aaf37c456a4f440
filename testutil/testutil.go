// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/tally"
)

// InactiveLogin and InactiveCredential belong to the inactive voter in
// StandardElection.
const (
	InactiveVoterID    models.VoterID = 999
	InactiveLogin                     = "inactive"
	InactiveCredential                = "pw-inactive"
)

// Positions and candidates of StandardElection
const (
	President models.PositionID = 1 // 1 seat, open
	Councilor models.PositionID = 2 // 2 seats, open
	Treasurer models.PositionID = 3 // 1 seat, closed

	PresAlice models.CandidateID = 11
	PresBob   models.CandidateID = 12
	PresCarol models.CandidateID = 13 // inactive

	CouncilA models.CandidateID = 21
	CouncilB models.CandidateID = 22
	CouncilC models.CandidateID = 23

	TreasDan models.CandidateID = 31
)

// SetupTestDB creates a fresh SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(filepath.Join(t.TempDir(), "election.db"), db.SQLite)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     ":memory:",
		DatabaseType:    string(db.SQLite),
		CatalogTTL:      0,
		RequestTimeout:  5 * time.Second,
		TieBreak:        tally.PolicyLowestID,
		SubmitRateLimit: 0,
		LogLevel:        "disabled",
	}
}

// VoterLogin returns the login and credential of the i-th active voter in
// StandardElection.
func VoterLogin(i int) (login, credential string) {
	return fmt.Sprintf("voter-%03d", i), fmt.Sprintf("pw-%03d", i)
}

// VoterID returns the ID of the i-th active voter in StandardElection.
func VoterID(i int) models.VoterID {
	return models.VoterID(1000 + i)
}

// StandardElection builds a definition with three positions, one of them
// closed, and the given number of active voters plus one inactive voter.
func StandardElection(voters int) models.ElectionDefinition {
	def := models.ElectionDefinition{
		Positions: []models.Position{
			{ID: President, Name: "President", Seats: 1, Status: models.PositionOpen},
			{ID: Councilor, Name: "Councilor", Seats: 2, Status: models.PositionOpen},
			{ID: Treasurer, Name: "Treasurer", Seats: 1, Status: models.PositionClosed},
		},
		Candidates: []models.Candidate{
			{ID: PresAlice, PositionID: President, FirstName: "Alice", LastName: "Reyes", Active: true},
			{ID: PresBob, PositionID: President, FirstName: "Bob", LastName: "Santos", Active: true},
			{ID: PresCarol, PositionID: President, FirstName: "Carol", LastName: "Diaz", Active: false},
			{ID: CouncilA, PositionID: Councilor, FirstName: "A", Active: true},
			{ID: CouncilB, PositionID: Councilor, FirstName: "B", Active: true},
			{ID: CouncilC, PositionID: Councilor, FirstName: "C", Active: true},
			{ID: TreasDan, PositionID: Treasurer, FirstName: "Dan", LastName: "Cruz", Active: true},
		},
	}

	for i := 1; i <= voters; i++ {
		login, cred := VoterLogin(i)
		def.Voters = append(def.Voters, models.VoterRecord{
			ID:         VoterID(i),
			Login:      login,
			Credential: cred,
			FirstName:  "Voter",
			LastName:   fmt.Sprint(i),
			Status:     models.VoterActive,
		})
	}
	def.Voters = append(def.Voters, models.VoterRecord{
		ID:         InactiveVoterID,
		Login:      InactiveLogin,
		Credential: InactiveCredential,
		Status:     models.VoterInactive,
	})

	return def
}

// SeedTestElection imports def with the cheapest bcrypt cost
func SeedTestElection(t *testing.T, conn *sql.DB, def models.ElectionDefinition) {
	t.Helper()

	_, err := db.Seed(context.Background(), conn, db.SQLite, def, db.SeedOptions{CredentialCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("Failed to seed test election: %v", err)
	}
}

// CastTestBallot writes a ballot straight to the ledger tables, bypassing
// validation. Used to set up tallies.
func CastTestBallot(t *testing.T, conn *sql.DB, voterID models.VoterID, selections ...models.Selection) string {
	t.Helper()

	ballotID := auth.NewBallotID()
	tx, err := conn.Begin()
	if err != nil {
		t.Fatalf("Failed to begin ballot: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE voters SET has_voted = TRUE WHERE id = ?`, voterID); err != nil {
		t.Fatalf("Failed to mark voter: %v", err)
	}
	if _, err := tx.Exec(`INSERT INTO ballots (id, voter_id) VALUES (?, ?)`, ballotID, voterID); err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}
	for _, s := range selections {
		_, err := tx.Exec(`
			INSERT INTO votes (ballot_id, position_id, voter_id, candidate_id)
			VALUES (?, ?, ?, ?)
		`, ballotID, s.PositionID, voterID, s.CandidateID)
		if err != nil {
			t.Fatalf("Failed to create test vote: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit test ballot: %v", err)
	}

	return ballotID
}

// CountVotes returns the number of vote rows, optionally for one voter
func CountVotes(t *testing.T, conn *sql.DB, voterID models.VoterID) int {
	t.Helper()

	var n int
	var err error
	if voterID == 0 {
		err = conn.QueryRow(`SELECT COUNT(*) FROM votes`).Scan(&n)
	} else {
		err = conn.QueryRow(`SELECT COUNT(*) FROM votes WHERE voter_id = ?`, voterID).Scan(&n)
	}
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return n
}

// CountBallots returns the number of committed ballots for a voter
func CountBallots(t *testing.T, conn *sql.DB, voterID models.VoterID) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM ballots WHERE voter_id = ?`, voterID).Scan(&n); err != nil {
		t.Fatalf("Failed to count ballots: %v", err)
	}
	return n
}

// HasVoted reads the voter's has_voted flag
func HasVoted(t *testing.T, conn *sql.DB, voterID models.VoterID) bool {
	t.Helper()

	var voted bool
	if err := conn.QueryRow(`SELECT has_voted FROM voters WHERE id = ?`, voterID).Scan(&voted); err != nil {
		t.Fatalf("Failed to read has_voted: %v", err)
	}
	return voted
}

// SetPositionStatus changes a position's status, standing in for the
// administrative collaborator.
func SetPositionStatus(t *testing.T, conn *sql.DB, id models.PositionID, status models.PositionStatus) {
	t.Helper()

	if _, err := conn.Exec(`UPDATE positions SET status = ? WHERE id = ?`, string(status), id); err != nil {
		t.Fatalf("Failed to update position: %v", err)
	}
}

// SetCandidateActive toggles a candidate's active flag
func SetCandidateActive(t *testing.T, conn *sql.DB, id models.CandidateID, active bool) {
	t.Helper()

	if _, err := conn.Exec(`UPDATE candidates SET active = ? WHERE id = ?`, active, id); err != nil {
		t.Fatalf("Failed to update candidate: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// ReadBody drains and returns the response body
func ReadBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return body
}

// AssertStatus checks that the response has the expected status code and
// returns the body
func AssertStatus(t *testing.T, resp *http.Response, expected int) []byte {
	t.Helper()
	body := ReadBody(t, resp)
	if resp.StatusCode != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, resp.StatusCode, body)
	}
	return body
}

// AssertJSON decodes a response body into the provided struct
func AssertJSON(t *testing.T, body []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v. Body: %s", err, body)
	}
}
