// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides the voter credential check and ID generation.

# Credentials

Voter credentials are stored as bcrypt hashes:

	hash, err := auth.HashCredential(plain, 0) // 0 = bcrypt.DefaultCost
	err = auth.VerifyCredential(hash, plain)

VerifyCredential returns ErrInvalidCredential for any mismatch, including an
empty or malformed hash. When a login matches no voter, call
BurnCredentialCheck so the response time does not reveal which logins exist.

# Ballot IDs

Committed ballots are keyed by a random UUID:

	id := auth.NewBallotID()

# ID Generation

Random hex IDs, used for request correlation IDs:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
