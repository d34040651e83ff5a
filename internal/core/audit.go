package core

import "time"

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "token.issue")
	Action string `json:"action"`

	// Subject is the validated subject, empty if identity validation failed
	Subject string `json:"subject,omitempty"`

	// Audience is the resolved audience
	Audience string `json:"audience,omitempty"`

	// ClientID is the client identifier the caller presented
	ClientID string `json:"client_id,omitempty"`

	// Anonymous mirrors the isAnonymous claim
	Anonymous bool `json:"anonymous"`

	// Policy is the credential verification policy in effect
	Policy string `json:"policy"`

	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	Stacktrace string `json:"stacktrace,omitempty"`

	// TokenFingerprint identifies the issued token; the token itself is never recorded
	TokenFingerprint string    `json:"token_fingerprint,omitempty"`
	ExpiresAt        time.Time `json:"expires_at,omitzero"`
}

type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}
