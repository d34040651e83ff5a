package core

import "time"

// MaxSubjectLength caps the size of the sub claim.
const MaxSubjectLength = 50

// ClaimRequest is the untrusted payload posted by the chat widget (or any other caller).
// Fields are kept loosely typed because the wire format is whatever the browser SDK sends,
// the Validator decides what is acceptable.
type ClaimRequest struct {
	// ClientID is the caller's client identifier.
	ClientID any `mapstructure:"clientId" json:"clientId,omitempty"`

	// ClientSecret is the caller's client secret.
	// Only meaningful for the strict and fixed verification policies.
	ClientSecret any `mapstructure:"clientSecret" json:"clientSecret,omitempty"`

	// Identity is the preferred subject field.
	Identity any `mapstructure:"identity" json:"identity,omitempty"`

	// UserID is an alternate subject field, used when Identity is empty.
	UserID any `mapstructure:"userId" json:"userId,omitempty"`

	// Audience overrides the configured default audience.
	Audience any `mapstructure:"audience" json:"audience,omitempty"`

	// Aud is an alias of Audience.
	Aud any `mapstructure:"aud" json:"aud,omitempty"`

	// IsAnonymous is passed through into the isAnonymous claim.
	IsAnonymous any `mapstructure:"isAnonymous" json:"isAnonymous,omitempty"`
}

// ValidatedIdentity is produced by the Validator and consumed once by the Issuer.
type ValidatedIdentity struct {
	// Subject is the non-empty, length-bounded subject.
	Subject string

	// Audience is the resolved audience.
	Audience string

	// IsAnonymous is the coerced anonymity flag.
	IsAnonymous bool

	// ClientID is the client identifier the caller presented, if any.
	ClientID string
}

// IssuedToken is the result of a successful Issue operation.
// The service keeps no record of it.
type IssuedToken struct {
	// Value is the compact header.payload.signature form.
	Value string `json:"jwt"`

	// Claims are the claims encoded in Value.
	Claims Claims `json:"-"`

	// ExpiresAt is the time the token stops being valid.
	ExpiresAt time.Time `json:"-"`

	// Fingerprint identifies the token in audit logs without exposing it.
	Fingerprint string `json:"-"`
}
