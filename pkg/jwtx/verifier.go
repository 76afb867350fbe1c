package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	// Verify checks the signature and the nbf <= now < exp window.
	Verify(token string) (Claims, error)

	// VerifySignature checks the signature and issuer only. Time claims are
	// left to the caller, which is what refresh needs.
	VerifySignature(token string) (Claims, error)
}

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// HMACVerifier validates tokens signed by an HMACSigner with the same secret.
type HMACVerifier struct {
	method *jwt.SigningMethodHMAC
	secret []byte
	issuer string

	// Now is the clock used for exp/nbf. Defaults to time.Now.
	Now func() time.Time
}

// NewVerifierHMAC creates a verifier that only accepts alg, signed with
// secret and, when issuer is non-empty, issued by issuer.
func NewVerifierHMAC(alg string, secret []byte, issuer string) (*HMACVerifier, error) {
	method, err := hmacMethod(alg)
	if err != nil {
		return nil, err
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrWeakSecret, MinSecretLength, len(secret))
	}
	return &HMACVerifier{method: method, secret: secret, issuer: issuer, Now: time.Now}, nil
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *HMACVerifier) Verify(tokenStr string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	return v.parse(tokenStr, opts...)
}

// VerifySignature validates the signature without looking at exp, nbf or iat.
func (v *HMACVerifier) VerifySignature(tokenStr string) (Claims, error) {
	c, err := v.parse(tokenStr, jwt.WithoutClaimsValidation())
	if err != nil {
		return Claims{}, err
	}
	if err := c.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	return c, nil
}

func (v *HMACVerifier) parse(tokenStr string, opts ...jwt.ParserOption) (Claims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{v.method.Alg()}))
	parser := jwt.NewParser(opts...)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	if !token.Valid || claims.Subject == "" {
		return Claims{}, ErrInvalidClaim
	}
	return *claims, nil
}

func (v *HMACVerifier) now() time.Time {
	if v.Now == nil {
		return time.Now()
	}
	return v.Now()
}

// mapParseError folds jwt/v5 errors into this package's sentinels. Structural
// problems are checked before time problems.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
