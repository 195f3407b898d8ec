package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated indicates that no principal is attached to the request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden indicates an authenticated principal lacking the permission.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation indicates malformed mutating input.
	ErrValidation = errors.New("validation failed")
	// ErrConfiguration indicates a stored rule or setting that cannot be honoured.
	ErrConfiguration = errors.New("configuration error")
	// ErrConflict indicates a write that would clobber state the caller has not seen.
	ErrConflict = errors.New("conflict")
	// ErrUpstreamUnavailable indicates the identity provider or store could not be reached.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
