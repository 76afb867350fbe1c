package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Flamchu/Slack-like-backend/pkg/cryptox"
	"github.com/Flamchu/Slack-like-backend/pkg/jwtx"
)

var ErrMissingSecret = errors.New("JWT_SECRET or JWT_SECRET_FILE is required outside dev")

// LoadSigningSecret resolves the HMAC secret from JWT_SECRET, then
// JWT_SECRET_FILE. In dev a random secret is generated instead, which means
// every restart invalidates all outstanding tokens.
func LoadSigningSecret(cfg Config, logger *slog.Logger) ([]byte, error) {
	secret := cfg.JWTSecret
	if secret == "" && cfg.JWTSecretFile != "" {
		raw, err := os.ReadFile(cfg.JWTSecretFile)
		if err != nil {
			return nil, fmt.Errorf("read JWT_SECRET_FILE: %w", err)
		}
		secret = strings.TrimSpace(string(raw))
	}

	if secret == "" {
		if !cfg.IsDev() {
			return nil, ErrMissingSecret
		}
		generated, err := cryptox.GenerateToken(jwtx.MinSecretLength)
		if err != nil {
			return nil, fmt.Errorf("generate ephemeral secret: %w", err)
		}
		logger.Warn("no JWT secret configured, using an ephemeral one; tokens will not survive a restart")
		secret = generated
	}

	if len(secret) < jwtx.MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", jwtx.ErrWeakSecret, jwtx.MinSecretLength, len(secret))
	}
	return []byte(secret), nil
}

// newTokenKeys builds the signer and verifier pair for cfg.JWTAlgorithm.
func newTokenKeys(cfg Config, secret []byte) (*jwtx.HMACSigner, *jwtx.HMACVerifier, error) {
	signer, err := jwtx.NewSignerHMAC(cfg.JWTAlgorithm, secret)
	if err != nil {
		return nil, nil, fmt.Errorf("signer: %w", err)
	}
	verifier, err := jwtx.NewVerifierHMAC(cfg.JWTAlgorithm, secret, cfg.Issuer)
	if err != nil {
		return nil, nil, fmt.Errorf("verifier: %w", err)
	}
	return signer, verifier, nil
}
