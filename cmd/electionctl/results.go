// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/tally"
)

type resultsOptions struct {
	position int64
	asJSON   bool
}

func (o *resultsOptions) bind(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&o.position, "position", 0, "Only this position ID")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "Print JSON instead of a table")
}

func (o *resultsOptions) positionID() (*models.PositionID, error) {
	switch {
	case o.position < 0:
		return nil, fmt.Errorf("invalid position %d", o.position)
	case o.position == 0:
		return nil, nil
	default:
		id := models.PositionID(o.position)
		return &id, nil
	}
}

func newTallyCmd(opts *rootOptions) *cobra.Command {
	ro := &resultsOptions{}

	cmd := &cobra.Command{
		Use:   "tally",
		Short: "Print vote counts per position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ro.positionID()
			if err != nil {
				return err
			}

			conn, d, err := opts.open()
			if err != nil {
				return err
			}
			defer conn.Close()

			svc := election.Open(conn, d, election.Options{})
			tallies, err := svc.GetTally(cmd.Context(), id)
			if err != nil {
				return err
			}

			if ro.asJSON {
				return writeJSON(cmd.OutOrStdout(), models.TallyResponse{Positions: tallies})
			}
			for _, pt := range tallies {
				printTally(cmd.OutOrStdout(), pt)
			}
			return nil
		},
	}
	ro.bind(cmd)

	return cmd
}

func newWinnersCmd(opts *rootOptions) *cobra.Command {
	ro := &resultsOptions{}
	var tieBreak string

	cmd := &cobra.Command{
		Use:   "winners",
		Short: "Print winners per position, including closed positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ro.positionID()
			if err != nil {
				return err
			}
			policy, err := tally.ParsePolicy(tieBreak)
			if err != nil {
				return err
			}

			conn, d, err := opts.open()
			if err != nil {
				return err
			}
			defer conn.Close()

			svc := election.Open(conn, d, election.Options{Policy: policy, ResolveClosed: true})
			winners, err := svc.GetWinners(cmd.Context(), id)
			if err != nil {
				return err
			}

			if ro.asJSON {
				return writeJSON(cmd.OutOrStdout(), models.WinnersResponse{TieBreak: policy.String(), Positions: winners})
			}
			for _, pw := range winners {
				printWinners(cmd.OutOrStdout(), pw)
			}
			return nil
		},
	}
	ro.bind(cmd)
	cmd.Flags().StringVar(&tieBreak, "tie-break", string(tally.PolicyLowestID), "Tie-break policy (candidate_id or runoff)")

	return cmd
}

func printHeader(w io.Writer, p models.Position, total int) {
	fmt.Fprintf(w, "%s (#%d, %s, %s): %s\n",
		p.Name, p.ID,
		english.Plural(p.Seats, "seat", ""),
		p.Status,
		english.Plural(total, "vote", ""),
	)
}

func printTally(w io.Writer, pt models.PositionTally) {
	printHeader(w, pt.Position, pt.TotalVotes)
	for _, e := range pt.Candidates {
		name := e.Name
		if !e.Active {
			name += " (inactive)"
		}
		fmt.Fprintf(w, "  %-6d %-28s %8s %7.2f%%\n", e.CandidateID, name, humanize.Comma(int64(e.VoteCount)), e.Percentage)
	}
	fmt.Fprintln(w)
}

func printWinners(w io.Writer, pw models.PositionWinners) {
	printHeader(w, pw.Position, pw.TotalVotes)
	for _, win := range pw.Winners {
		fmt.Fprintf(w, "  %-4s %-6d %-28s %8s\n", humanize.Ordinal(win.Rank), win.CandidateID, win.Name, humanize.Comma(int64(win.VoteCount)))
	}
	if pw.TieAtCutoff {
		fmt.Fprintf(w, "  tie at cutoff between %v\n", pw.TiedCandidates)
	}
	if pw.RunoffRequired {
		fmt.Fprintln(w, "  runoff required")
	}
	fmt.Fprintln(w)
}

func writeJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
