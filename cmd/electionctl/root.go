// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"database/sql"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/logger"
)

type rootOptions struct {
	databaseURL  string
	databaseType string
	logLevel     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "electionctl",
		Short:         "Administer a quickly-elect database",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logger.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			logger.Configure(level, "")
			return nil
		},
	}

	_ = cliparse.LoadEnvFile(".env")

	dbType := os.Getenv("DATABASE_TYPE")
	if dbType == "" {
		dbType = string(db.SQLite)
	}

	cmd.PersistentFlags().StringVarP(&opts.databaseURL, "db", "d", os.Getenv("DATABASE_URL"), "SQLite path or PostgreSQL connection string")
	cmd.PersistentFlags().StringVarP(&opts.databaseType, "db-type", "t", dbType, "Database type (sqlite or postgres)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", zerolog.WarnLevel.String(), "Log level")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newTallyCmd(opts),
		newWinnersCmd(opts),
	)

	return cmd
}

// open connects to the configured database and makes sure the schema exists
func (o *rootOptions) open() (*sql.DB, db.Dialect, error) {
	if o.databaseURL == "" {
		return nil, "", errMissingDatabase
	}

	d, err := db.ParseDialect(o.databaseType)
	if err != nil {
		return nil, "", err
	}

	conn, err := db.Open(o.databaseURL, d)
	if err != nil {
		return nil, "", err
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, "", err
	}

	return conn, d, nil
}
