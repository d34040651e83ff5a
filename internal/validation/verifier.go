package validation

import (
	"fmt"

	"github.com/darmiel/chatsts/internal/config"
	"github.com/darmiel/chatsts/internal/core"
)

var (
	_ core.CredentialVerifier = DisabledVerifier{}
	_ core.CredentialVerifier = AdvisoryVerifier{}
	_ core.CredentialVerifier = StrictVerifier{}
	_ core.CredentialVerifier = FixedCredentialVerifier{}
)

// Public rejection reasons.
const (
	ReasonInvalidCredentials = "Invalid credentials"
	ReasonInvalidClientID    = "Invalid clientId"
	ReasonMissingCredentials = "Missing client credentials"
)

// NewVerifier returns the verification policy selected by cfg.Mode.
// cfg must have been validated.
func NewVerifier(cfg config.ClientConfig) (core.CredentialVerifier, error) {
	switch cfg.Mode {
	case config.ModeDisabled:
		return DisabledVerifier{}, nil
	case config.ModeAdvisory:
		return AdvisoryVerifier{expectedID: cfg.ID}, nil
	case config.ModeStrict:
		return StrictVerifier{expectedID: cfg.ID, expectedSecret: cfg.Secret.Reveal()}, nil
	case config.ModeFixed:
		return FixedCredentialVerifier{expectedID: cfg.ID, expectedSecret: cfg.Secret.Reveal()}, nil
	default:
		return nil, fmt.Errorf("unknown client verification mode '%s'", cfg.Mode)
	}
}

// DisabledVerifier accepts every request.
type DisabledVerifier struct{}

func (DisabledVerifier) Name() string { return config.ModeDisabled }

func (DisabledVerifier) Verify(core.ClaimRequest) error { return nil }

// AdvisoryVerifier only rejects a request that names a different client.
// Requests without a clientId (absent or "") pass, a clientId that is not a string never matches.
type AdvisoryVerifier struct {
	expectedID string
}

func (AdvisoryVerifier) Name() string { return config.ModeAdvisory }

func (v AdvisoryVerifier) Verify(req core.ClaimRequest) error {
	if req.ClientID == nil || req.ClientID == "" || v.expectedID == "" {
		return nil
	}
	clientID, ok := req.ClientID.(string)
	if !ok || !SecureEqual(clientID, v.expectedID) {
		return core.Reject(core.ErrInvalidCredentials, ReasonInvalidClientID)
	}
	return nil
}

// StrictVerifier requires the caller to present the expected client id and secret.
type StrictVerifier struct {
	expectedID     string
	expectedSecret string
}

func (StrictVerifier) Name() string { return config.ModeStrict }

func (v StrictVerifier) Verify(req core.ClaimRequest) error {
	clientID := stringValue(req.ClientID)
	clientSecret := stringValue(req.ClientSecret)

	// evaluate both comparisons so a wrong id costs the same as a wrong secret
	idOK := SecureEqual(clientID, v.expectedID)
	secretOK := SecureEqual(clientSecret, v.expectedSecret)

	if clientID == "" || clientSecret == "" || !idOK || !secretOK {
		return core.Reject(core.ErrInvalidCredentials, ReasonInvalidCredentials)
	}
	return nil
}

// FixedCredentialVerifier is used for server-to-server calls with a fixed client identity.
// Both values are always required.
type FixedCredentialVerifier struct {
	expectedID     string
	expectedSecret string
}

func (FixedCredentialVerifier) Name() string { return config.ModeFixed }

func (v FixedCredentialVerifier) Verify(req core.ClaimRequest) error {
	clientID := stringValue(req.ClientID)
	clientSecret := stringValue(req.ClientSecret)
	if clientID == "" || clientSecret == "" {
		return core.Reject(core.ErrMissingCredentials, ReasonMissingCredentials)
	}

	idOK := SecureEqual(clientID, v.expectedID)
	secretOK := SecureEqual(clientSecret, v.expectedSecret)
	if !idOK || !secretOK {
		return core.Reject(core.ErrInvalidCredentials, ReasonInvalidCredentials)
	}
	return nil
}
