// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	_ = cliparse.LoadEnvFile(".env")
	cfg, err := cliparse.ParseFlags(os.Args[1:])

LoadEnvFile never overrides variables already present in the environment.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite path or PostgreSQL connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - CatalogTTL: how stale the cached catalog snapshot may be (default: 5s)
  - RequestTimeout: deadline applied to every API request (default: 10s)
  - TieBreak: winner tie-break policy, candidate_id or runoff
  - ResolveClosed: resolve winners for closed positions too (default: false)
  - SubmitRateLimit: ballot submissions per client IP per minute (default: 20, 0 disables)
  - LogLevel, LogFile: logger settings (see package logger)
  - ReusePort: bind with SO_REUSEPORT

# CLI Flags and Environment Variables

	-p                  PORT
	-d                  DATABASE_URL
	-t                  DATABASE_TYPE
	-catalog-ttl        CATALOG_TTL
	-request-timeout    REQUEST_TIMEOUT
	-tie-break          TIE_BREAK
	-resolve-closed     RESOLVE_CLOSED_POSITIONS
	-submit-rate-limit  SUBMIT_RATE_LIMIT
	-log-level          LOG_LEVEL
	-log-file           LOG_FILE
	-reuseport          REUSEPORT

CLI flags take precedence over environment variables, which take precedence
over defaults.

# Validation

ParseFlags returns an error if DATABASE_URL is missing or any value fails to
parse (unknown database type, tie-break policy, malformed duration).
*/
package cliparse
