package issuer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/darmiel/chatsts/internal/audit"
	"github.com/darmiel/chatsts/internal/config"
	"github.com/darmiel/chatsts/internal/core"
)

var _ core.TokenIssuer = (*Issuer)(nil)

// Issuer signs claim sets with HS256.
type Issuer struct {
	signingKey []byte
	issuer     string
	lifetime   time.Duration
}

func New(cfg config.TokenConfig) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, config.ErrMissingSecret
	}
	if cfg.Lifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive")
	}
	return &Issuer{
		signingKey: []byte(cfg.Secret.Reveal()),
		issuer:     cfg.Issuer,
		lifetime:   cfg.LifetimeDuration(),
	}, nil
}

// BuildClaims constructs the claim set for identity at now.
func (i *Issuer) BuildClaims(identity core.ValidatedIdentity, now time.Time) core.Claims {
	iat := now.Unix()
	return core.Claims{
		Subject:     identity.Subject,
		Issuer:      i.issuer,
		Audience:    identity.Audience,
		IssuedAt:    iat,
		ExpiresAt:   iat + int64(i.lifetime/time.Second),
		IsAnonymous: identity.IsAnonymous,
	}
}

// Issue signs the claims for identity. Errors wrap core.ErrSigningFailure.
func (i *Issuer) Issue(identity core.ValidatedIdentity, now time.Time) (*core.IssuedToken, error) {
	claims := i.BuildClaims(identity, now)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(i.signingKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrSigningFailure, err)
	}

	return &core.IssuedToken{
		Value:       signedToken,
		Claims:      claims,
		ExpiresAt:   time.Unix(claims.ExpiresAt, 0),
		Fingerprint: audit.CalculateFingerprint(signedToken),
	}, nil
}

var ErrInvalidToken = errors.New("invalid token")

// Verify parses token, checks the HS256 signature against the signing key,
// the issuer and the expiry, and returns its claims.
func (i *Issuer) Verify(token string, opts ...jwt.ParserOption) (*core.Claims, error) {
	return Verify(token, i.signingKey, append([]jwt.ParserOption{jwt.WithIssuer(i.issuer)}, opts...)...)
}

// VerifyIgnoringExpiry checks the signature and the issuer of token but none of its time claims.
func (i *Issuer) VerifyIgnoringExpiry(token string) (*core.Claims, error) {
	// WithoutClaimsValidation also skips WithIssuer, so the issuer is compared here
	claims, err := Verify(token, i.signingKey, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	if claims.Issuer != i.issuer {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, jwt.ErrTokenInvalidIssuer)
	}
	return claims, nil
}

// Verify checks token against key without any issuer expectation.
func Verify(token string, key []byte, opts ...jwt.ParserOption) (*core.Claims, error) {
	opts = append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
	}, opts...)

	var claims core.Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// Decode returns the claims of token without verifying its signature.
// Only use it to display tokens.
func Decode(token string) (*core.Claims, error) {
	var claims core.Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return &claims, nil
}
