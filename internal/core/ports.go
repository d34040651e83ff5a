package core

import "time"

// CredentialVerifier checks the client credentials of a request.
// Implementations: Disabled, Advisory, Strict, FixedServerCredential.
type CredentialVerifier interface {
	// Name returns the policy name (as used in config).
	Name() string
	// Verify returns nil if the request may proceed, or a *RejectionError.
	Verify(req ClaimRequest) error
}

// TokenIssuer signs a validated identity into a token.
type TokenIssuer interface {
	Issue(identity ValidatedIdentity, now time.Time) (*IssuedToken, error)
}
