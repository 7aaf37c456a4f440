// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize/english"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/models"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var file string
	var cost int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import positions, candidates and voters from a JSON definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read definition: %w", err)
			}

			var def models.ElectionDefinition
			if err := json.Unmarshal(raw, &def); err != nil {
				return fmt.Errorf("failed to parse %s: %w", file, err)
			}

			conn, d, err := opts.open()
			if err != nil {
				return err
			}
			defer conn.Close()

			counts, err := db.Seed(cmd.Context(), conn, d, def, db.SeedOptions{CredentialCost: cost})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s, %s and %s\n",
				english.Plural(counts.Positions, "position", ""),
				english.Plural(counts.Candidates, "candidate", ""),
				english.Plural(counts.Voters, "voter", ""),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Election definition JSON file")
	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost for voter credentials (0 = default)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
