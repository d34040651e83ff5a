package service

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/chatsts/internal/audit"
	"github.com/darmiel/chatsts/internal/core"
	"github.com/darmiel/chatsts/internal/validation"
)

// Public error messages.
const (
	MsgInvalidIdentity = "Invalid or missing user identity"
	MsgSigningFailed   = "Failed to sign token"
)

// TokenService validates a claim request and issues a token for it.
type TokenService struct {
	validator *validation.Validator
	issuer    core.TokenIssuer
	auditor   core.Auditor
	now       func() time.Time
}

type Option func(*TokenService)

// WithClock replaces time.Now as the source of iat.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

func WithAuditor(auditor core.Auditor) Option {
	return func(s *TokenService) {
		if auditor != nil {
			s.auditor = auditor
		}
	}
}

func NewTokenService(validator *validation.Validator, issuer core.TokenIssuer, opts ...Option) *TokenService {
	s := &TokenService{
		validator: validator,
		issuer:    issuer,
		auditor:   audit.NewNoopAuditor(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the name of the credential verification policy in effect.
func (s *TokenService) Policy() string {
	return s.validator.Policy()
}

// IssueToken runs the validator and the issuer for req.
// Returned errors are *HTTPError.
func (s *TokenService) IssueToken(ctx context.Context, req core.ClaimRequest) (*core.IssuedToken, error) {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)
	now := s.now()

	auditEntry := core.AuditEntry{
		ID:       reqID,
		Time:     now,
		Action:   "token.issue",
		Policy:   s.validator.Policy(),
		ClientID: clientIDForAudit(req),
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for token issuance")
		}
	}()

	identity, err := s.validator.Validate(req)
	if err != nil {
		auditEntry.Stacktrace = err.Error()
		return nil, s.rejection(&auditEntry, err)
	}
	auditEntry.Subject = identity.Subject
	auditEntry.Audience = identity.Audience
	auditEntry.Anonymous = identity.IsAnonymous

	subLogger := logger.With().Str("sub", identity.Subject).Logger()
	logger = &subLogger

	token, err := s.issuer.Issue(*identity, now)
	if err != nil {
		auditEntry.Error = "signing failed"
		auditEntry.Stacktrace = err.Error()
		logger.Error().Err(err).Msg("JWT signing error")
		return nil, httpError(http.StatusInternalServerError, MsgSigningFailed, err)
	}

	auditEntry.Success = true
	auditEntry.TokenFingerprint = token.Fingerprint
	auditEntry.ExpiresAt = token.ExpiresAt

	logger.Debug().
		Str("aud", identity.Audience).
		Bool("anonymous", identity.IsAnonymous).
		Time("expires_at", token.ExpiresAt).
		Msg("token issued")

	return token, nil
}

func (s *TokenService) rejection(entry *core.AuditEntry, err error) error {
	reason := ""
	var rejection *core.RejectionError
	if errors.As(err, &rejection) {
		reason = rejection.Reason
	}
	if reason == "" {
		reason = validation.ReasonInvalidCredentials
	}

	switch {
	case errors.Is(err, core.ErrInvalidIdentity):
		entry.Error = "invalid identity"
		return httpError(http.StatusBadRequest, MsgInvalidIdentity, err)
	case errors.Is(err, core.ErrMissingCredentials):
		entry.Error = "missing credentials"
		return httpError(http.StatusUnauthorized, reason, err)
	case errors.Is(err, core.ErrInvalidCredentials):
		entry.Error = "invalid credentials"
		return httpError(http.StatusUnauthorized, reason, err)
	default:
		entry.Error = "validation error"
		return httpError(http.StatusInternalServerError, "internal server error", err)
	}
}

// maxAuditClientIDBytes bounds the presented client id in audit entries.
const maxAuditClientIDBytes = 128

// clientIDForAudit records the presented client id only if it is a string,
// cut to at most maxAuditClientIDBytes on a rune boundary.
func clientIDForAudit(req core.ClaimRequest) string {
	id, _ := req.ClientID.(string)
	if len(id) <= maxAuditClientIDBytes {
		return id
	}
	cut := maxAuditClientIDBytes
	for cut > 0 && !utf8.RuneStart(id[cut]) {
		cut--
	}
	return id[:cut]
}
