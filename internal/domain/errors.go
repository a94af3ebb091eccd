package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Store gateway errors
	ErrMsgStoreUnavailable = "backing store unavailable"
	ErrMsgMalformedRecord  = "malformed record"

	// Unlock errors
	ErrMsgAlreadyEarned = "achievement already earned"

	// Input errors
	ErrMsgUserIDRequired  = "user id is required"
	ErrMsgSessionRequired = "session is required"
	ErrMsgInvalidInput    = "invalid input"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// ErrStoreUnavailable marks a transient fetch failure: the backing store
	// was unreachable or returned a server error. Results are never cached
	// on this path and the caller may retry.
	ErrStoreUnavailable = errors.New(ErrMsgStoreUnavailable)

	// ErrMalformedRecord marks a fetched record that failed to parse into
	// the expected shape. The offending record is skipped, not fatal.
	ErrMalformedRecord = errors.New(ErrMsgMalformedRecord)

	// ErrAlreadyEarned is returned by InsertUserAchievement when a record
	// for the (user, achievement) pair already exists. Treated as success
	// by the resolution service, never surfaced to callers.
	ErrAlreadyEarned = errors.New(ErrMsgAlreadyEarned)

	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)
