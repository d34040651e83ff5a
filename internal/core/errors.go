package core

import "errors"

var (
	// ErrInvalidIdentity means the subject is missing, not a string, or too long.
	ErrInvalidIdentity = errors.New("invalid identity")

	// ErrInvalidCredentials means the presented client credentials do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMissingCredentials means a policy required client credentials the request did not carry.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrSigningFailure means the claim set could not be encoded or signed.
	ErrSigningFailure = errors.New("signing failure")
)

// RejectionError is returned by credential verification.
// Reason is safe to return to the caller, Err is one of the sentinel errors above.
type RejectionError struct {
	Reason string
	Err    error
}

func (e *RejectionError) Error() string {
	return e.Err.Error() + ": " + e.Reason
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

func Reject(err error, reason string) *RejectionError {
	return &RejectionError{Reason: reason, Err: err}
}
