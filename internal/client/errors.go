package client

import "errors"

// Credential failures are detected locally, before any dial attempt.
var (
	ErrCredentialMissing   = errors.New("no credential in token store")
	ErrCredentialExpired   = errors.New("credential expired")
	ErrCredentialMalformed = errors.New("credential malformed")
)

// Application-level send failures. These are reported to the caller
// immediately and never retried automatically.
var (
	ErrEmptyMessage      = errors.New("message text is empty")
	ErrNoActiveRoom      = errors.New("no active room")
	ErrConnectionNotOpen = errors.New("connection not open")
)
