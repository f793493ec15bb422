package ledger

import "errors"

var (
	// ErrInvalidAmount rejects non-positive expense amounts.
	ErrInvalidAmount = errors.New("amount must be a positive number")

	// ErrNotFound covers deletes of unknown ids and of protected daily
	// credit entries.
	ErrNotFound = errors.New("entry not found")

	// ErrInvalidFormat rejects malformed snapshot payloads.
	ErrInvalidFormat = errors.New("invalid snapshot format")

	// ErrPersistence wraps store failures. When returned from a mutation,
	// the in-memory state has already been rolled back.
	ErrPersistence = errors.New("persistence failed")
)
