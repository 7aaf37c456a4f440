// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ballot validates a voter's ballot against the catalog. Validate is
// a pure function; the ledger repeats the catalog checks inside its commit
// transaction.
package ballot
