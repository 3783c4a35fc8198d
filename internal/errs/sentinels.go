// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Protocol-level sentinels. Their messages are sent to clients verbatim.
var (
	// ErrNotAuthenticated indicates a missing/unknown token or bad login credentials.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotPermitted indicates a valid token whose role denies the command kind.
	ErrNotPermitted = errors.New("not permitted")

	// ErrBadRequest indicates an unknown kind or list name, or a malformed payload.
	ErrBadRequest = errors.New("bad request")

	// ErrStore wraps any failure of the underlying data store.
	ErrStore = errors.New("store error")

	// ErrPoolExhausted indicates no pooled connection became available in time.
	ErrPoolExhausted = errors.New("pool exhausted")

	// ErrInternal is reported when a handler panicked.
	ErrInternal = errors.New("internal error")
)

// Store-level sentinels, reported to clients wrapped in ErrStore.
var (
	// ErrNotFound indicates the requested entity does not exist or no row was affected.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., user name taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")
)
