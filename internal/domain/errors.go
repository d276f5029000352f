package domain

import "errors"

var (
	// ErrNotFound is returned when the requested link, session or upload
	// does not exist. Adapters map it to 404.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput covers missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict covers illegal state transitions and re-signing an
	// already signed agreement.
	ErrConflict = errors.New("conflict")
	// ErrVersionConflict is returned when a session write carries a stale
	// version token. Callers must re-read and retry.
	ErrVersionConflict = errors.New("version conflict")
	// ErrForbidden is returned for callers outside the permitted admin
	// network range or without a valid staff token.
	ErrForbidden = errors.New("forbidden")
	// ErrUpstream marks a failed call to the CRM, messaging or
	// challenge provider. The wrapping UpstreamError carries the
	// upstream response body as detail.
	ErrUpstream = errors.New("upstream dependency failed")

	// ErrNoNumberOnFile is surfaced verbatim when passcode delivery has
	// no resolvable destination. The message is part of the API contract.
	ErrNoNumberOnFile = errors.New("No WhatsApp number on file")

	// ErrSignatureRequired is returned when a document is requested
	// before the prerequisite signature exists.
	ErrSignatureRequired = errors.New("not available for this link")
)

// UpstreamError wraps ErrUpstream with the operation that failed and the
// detail string taken from the upstream response body.
type UpstreamError struct {
	Op     string
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Detail == "" {
		return e.Op + " failed"
	}
	return e.Op + " failed: " + e.Detail
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }
