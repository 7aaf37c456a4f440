// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/tally"
	"github.com/danielhkuo/quickly-elect/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

// seededDB writes StandardElection to a definition file and imports it
func seededDB(t *testing.T, voters int) string {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "election.db")
	defPath := filepath.Join(dir, "election.json")

	raw, err := json.Marshal(testutil.StandardElection(voters))
	if err != nil {
		t.Fatalf("Failed to marshal definition: %v", err)
	}
	if err := os.WriteFile(defPath, raw, 0o600); err != nil {
		t.Fatalf("Failed to write definition: %v", err)
	}

	out, err := run(t, "seed", "-d", dbPath, "--file", defPath, "--cost", "4")
	if err != nil {
		t.Fatalf("seed failed: %v\n%s", err, out)
	}
	return dbPath
}

func castVotes(t *testing.T, dbPath string) {
	t.Helper()

	conn, err := db.Open(dbPath, db.SQLite)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()

	// Councilor: A 2, B 1, C 1
	testutil.CastTestBallot(t, conn, testutil.VoterID(1),
		models.Selection{PositionID: testutil.President, CandidateID: testutil.PresBob},
		models.Selection{PositionID: testutil.Councilor, CandidateID: testutil.CouncilA},
		models.Selection{PositionID: testutil.Councilor, CandidateID: testutil.CouncilB},
	)
	testutil.CastTestBallot(t, conn, testutil.VoterID(2),
		models.Selection{PositionID: testutil.President, CandidateID: testutil.PresBob},
		models.Selection{PositionID: testutil.Councilor, CandidateID: testutil.CouncilA},
		models.Selection{PositionID: testutil.Councilor, CandidateID: testutil.CouncilC},
	)
	testutil.CastTestBallot(t, conn, testutil.VoterID(3),
		models.Selection{PositionID: testutil.Treasurer, CandidateID: testutil.TreasDan},
	)
}

func TestMigrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "election.db")

	for i := 0; i < 2; i++ {
		out, err := run(t, "migrate", "--db", dbPath)
		if err != nil {
			t.Fatalf("migrate run %d failed: %v", i, err)
		}
		if !strings.Contains(out, "schema ready (sqlite)") {
			t.Errorf("Unexpected output: %q", out)
		}
	}
}

func TestMissingDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := run(t, "migrate"); err == nil {
		t.Error("Expected error without a database URL")
	}
	if _, err := run(t, "migrate", "-d", "x.db", "-t", "mysql"); err == nil {
		t.Error("Expected error for unknown database type")
	}
}

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	defPath := filepath.Join(dir, "election.json")
	raw, _ := json.Marshal(testutil.StandardElection(2))
	if err := os.WriteFile(defPath, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "seed", "-d", filepath.Join(dir, "election.db"), "-f", defPath, "--cost", "4")
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	// Two active voters plus the inactive one
	if !strings.Contains(out, "seeded 3 positions, 7 candidates and 3 voters") {
		t.Errorf("Unexpected output: %q", out)
	}

	// The same IDs again violate primary keys and nothing is written
	if _, err := run(t, "seed", "-d", filepath.Join(dir, "election.db"), "-f", defPath, "--cost", "4"); err == nil {
		t.Error("Expected reseeding the same definition to fail")
	}
}

func TestSeedBadInput(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "election.db")

	if _, err := run(t, "seed", "-d", dbPath); err == nil {
		t.Error("Expected error without --file")
	}
	if _, err := run(t, "seed", "-d", dbPath, "-f", filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for a missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "seed", "-d", dbPath, "-f", bad); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestTally(t *testing.T) {
	dbPath := seededDB(t, 3)
	castVotes(t, dbPath)

	out, err := run(t, "tally", "-d", dbPath)
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	for _, want := range []string{
		"President (#1, 1 seat, open): 2 votes",
		"Councilor (#2, 2 seats, open): 4 votes",
		"Treasurer (#3, 1 seat, closed): 1 vote",
		"100.00%",
		"50.00%",
		"(inactive)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("tally output missing %q:\n%s", want, out)
		}
	}
}

func TestTallyJSON(t *testing.T) {
	dbPath := seededDB(t, 3)
	castVotes(t, dbPath)

	out, err := run(t, "tally", "-d", dbPath, "--position", "2", "--json")
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}

	var resp models.TallyResponse
	testutil.AssertJSON(t, []byte(out), &resp)
	if len(resp.Positions) != 1 {
		t.Fatalf("Expected 1 position, got %d", len(resp.Positions))
	}
	pt := resp.Positions[0]
	if pt.TotalVotes != 4 || pt.Candidates[0].CandidateID != testutil.CouncilA || pt.Candidates[0].VoteCount != 2 {
		t.Errorf("Unexpected councilor tally: %+v", pt)
	}
}

func TestTallyErrors(t *testing.T) {
	dbPath := seededDB(t, 1)

	if _, err := run(t, "tally", "-d", dbPath, "--position", "99"); err == nil {
		t.Error("Expected error for unknown position")
	}
	if _, err := run(t, "tally", "-d", dbPath, "--position", "-2"); err == nil {
		t.Error("Expected error for negative position")
	}
}

func TestWinners(t *testing.T) {
	dbPath := seededDB(t, 3)
	castVotes(t, dbPath)

	out, err := run(t, "winners", "-d", dbPath)
	if err != nil {
		t.Fatalf("winners failed: %v", err)
	}
	for _, want := range []string{
		"1st",
		"Bob Santos",
		"tie at cutoff between [22 23]",
		// Closed positions are resolved by the admin tool
		"Dan Cruz",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("winners output missing %q:\n%s", want, out)
		}
	}
}

func TestWinnersRunoffJSON(t *testing.T) {
	dbPath := seededDB(t, 3)
	castVotes(t, dbPath)

	out, err := run(t, "winners", "-d", dbPath, "--position", "2", "--tie-break", "runoff", "--json")
	if err != nil {
		t.Fatalf("winners failed: %v", err)
	}

	var resp models.WinnersResponse
	testutil.AssertJSON(t, []byte(out), &resp)
	if resp.TieBreak != string(tally.PolicyRunoff) {
		t.Errorf("Expected runoff, got %q", resp.TieBreak)
	}
	pw := resp.Positions[0]
	if !pw.RunoffRequired || len(pw.Winners) != 1 || pw.Winners[0].CandidateID != testutil.CouncilA {
		t.Errorf("Expected only A seated pending runoff, got %+v", pw)
	}

	if _, err := run(t, "winners", "-d", dbPath, "--tie-break", "coin_flip"); err == nil {
		t.Error("Expected error for unknown tie-break policy")
	}
}
