package validation

import (
	"fmt"
	"unicode/utf16"

	"github.com/darmiel/chatsts/internal/config"
	"github.com/darmiel/chatsts/internal/core"
)

// Validator turns an untrusted ClaimRequest into a ValidatedIdentity.
// It is safe for concurrent use.
type Validator struct {
	verifier        core.CredentialVerifier
	defaultAudience string
}

func NewValidator(cfg *config.Config) (*Validator, error) {
	verifier, err := NewVerifier(cfg.Client)
	if err != nil {
		return nil, err
	}
	return NewValidatorWithVerifier(verifier, cfg.Token.Audience), nil
}

func NewValidatorWithVerifier(verifier core.CredentialVerifier, defaultAudience string) *Validator {
	return &Validator{
		verifier:        verifier,
		defaultAudience: defaultAudience,
	}
}

// Policy returns the name of the credential verification policy.
func (v *Validator) Policy() string {
	return v.verifier.Name()
}

// Validate checks identity first, then credentials.
// Errors wrap core.ErrInvalidIdentity, core.ErrInvalidCredentials or core.ErrMissingCredentials.
func (v *Validator) Validate(req core.ClaimRequest) (*core.ValidatedIdentity, error) {
	subject, err := ExtractSubject(req)
	if err != nil {
		return nil, err
	}

	if err := v.verifier.Verify(req); err != nil {
		return nil, err
	}

	return &core.ValidatedIdentity{
		Subject:     subject,
		Audience:    ResolveAudience(req, v.defaultAudience),
		IsAnonymous: CoerceBool(req.IsAnonymous),
		ClientID:    stringValue(req.ClientID),
	}, nil
}

// ExtractSubject returns the first non-empty string among identity and userId.
func ExtractSubject(req core.ClaimRequest) (string, error) {
	subject := firstNonEmpty(req.Identity, req.UserID)
	if subject == "" {
		return "", core.Reject(core.ErrInvalidIdentity, "identity is missing")
	}
	if n := subjectLength(subject); n > core.MaxSubjectLength {
		return "", core.Reject(core.ErrInvalidIdentity,
			fmt.Sprintf("identity has %d characters, at most %d are allowed", n, core.MaxSubjectLength))
	}
	return subject, nil
}

// subjectLength counts UTF-16 code units, the way the browser SDK measures strings.
// Characters outside the BMP count twice.
func subjectLength(s string) int {
	n := 0
	for _, r := range s {
		// ranging never yields surrogates, invalid bytes decode to U+FFFD
		n += utf16.RuneLen(r)
	}
	return n
}

// ResolveAudience returns the requested audience (audience, then aud) or the default.
func ResolveAudience(req core.ClaimRequest, defaultAudience string) string {
	if aud := firstNonEmpty(req.Audience, req.Aud); aud != "" {
		return aud
	}
	return defaultAudience
}

// CoerceBool accepts a boolean or the strings "true" / "false".
// Everything else is false.
func CoerceBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	default:
		return false
	}
}

func firstNonEmpty(values ...any) string {
	for _, v := range values {
		if s := stringValue(v); s != "" {
			return s
		}
	}
	return ""
}

// stringValue returns v if it is a string, "" otherwise.
func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
