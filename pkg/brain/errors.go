package brain

import "errors"

// Sentinel errors for the orchestrator boundary. None of them escape
// Process: every turn resolves to a Result, and these only classify what
// went wrong.
var (
	// ErrSessionNotFound means the caller referenced a user without a
	// registered session. Recoverable: create a session first.
	ErrSessionNotFound = errors.New("session not found")

	// ErrQuotaExceeded means the tier's usage limits were hit. No
	// backend call is made.
	ErrQuotaExceeded = errors.New("usage quota exceeded")

	// ErrToolNotPermitted means the session's tier lacks the requested
	// capability. The tool is not executed.
	ErrToolNotPermitted = errors.New("tool not permitted for tier")

	// ErrConfiguration means session creation failed because no usable
	// backend credential exists. Fatal to that session only.
	ErrConfiguration = errors.New("reasoning backend is not configured")

	// ErrBackendTimeout means the reasoning backend exceeded its call
	// deadline.
	ErrBackendTimeout = errors.New("reasoning backend timed out")
)
