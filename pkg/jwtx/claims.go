package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default lifetimes, overridable through configuration.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 60 * time.Minute

	// DefaultRefreshWindow is how long after issuance a token may still be
	// exchanged for a new one, even when it has expired.
	DefaultRefreshWindow = 14 * 24 * time.Hour
)

// UserClaim is the principal snapshot carried in every access token.
type UserClaim struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Claims are access-token claims used across services.
type Claims struct {
	jwt.RegisteredClaims

	User UserClaim `json:"user"`
}

// NewAccessClaims builds claims with exp = iat + ttl and nbf = iat.
func NewAccessClaims(issuer string, user UserClaim, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		User: user,
	}
}

// NewJTI returns a random identifier for the "jti" claim. It is
// informational only, revocation keys on the token fingerprint.
func NewJTI() string {
	return uuid.NewString()
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateNotBefore reports ErrNotYetValid when now < nbf.
func (c *Claims) ValidateNotBefore(now time.Time) error {
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}

// Age returns how long ago the token was issued. Tokens without iat are
// treated as infinitely old.
func (c *Claims) Age(now time.Time) time.Duration {
	if c.IssuedAt == nil {
		return time.Duration(1<<63 - 1)
	}
	return now.Sub(c.IssuedAt.Time)
}
