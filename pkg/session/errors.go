package session

import "errors"

var (
	// ErrSessionNotFound is the single negative outcome Validate and Refresh
	// return. Missing, expired and malformed tokens, as well as store
	// failures, all collapse into it so callers cannot be used as an oracle
	// distinguishing "bad token" from "backend down". The distinguishing
	// cause is logged, never returned.
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrTokenGeneration indicates the crypto/rand source failed.
	ErrTokenGeneration = errors.New("session.token_generation_failed")

	// ErrStoreWrite indicates the store did not confirm a session write.
	ErrStoreWrite = errors.New("session.store_write_failed")

	// ErrMalformedRow indicates a stored row is missing required columns.
	ErrMalformedRow = errors.New("session.malformed_row")
)
