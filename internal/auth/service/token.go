package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/activity"
	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
	"github.com/Flamchu/Slack-like-backend/internal/auth/revocation"
	"github.com/Flamchu/Slack-like-backend/internal/auth/store"
	"github.com/Flamchu/Slack-like-backend/pkg/cryptox"
	"github.com/Flamchu/Slack-like-backend/pkg/jwtx"
	"github.com/Flamchu/Slack-like-backend/pkg/slogx"
)

// TokenType is the token_type reported with every issued token.
const TokenType = "Bearer"

// TokenService issues, validates, refreshes and revokes access tokens.
//
// The Verifier must share the service clock, otherwise exp and nbf are
// judged against a different "now" than the refresh window.
type TokenService struct {
	Signer      jwtx.Signer
	Verifier    jwtx.Verifier
	Store       store.Store
	Revocations revocation.Checker
	Recorder    activity.Recorder

	Issuer        string
	AccessTTL     time.Duration
	RefreshWindow time.Duration

	Now func() time.Time
}

// Issue signs a new access token for u. It has no side effects.
func (s *TokenService) Issue(ctx context.Context, u domain.User) (domain.IssuedToken, error) {
	if u.ID == "" {
		return domain.IssuedToken{}, fmt.Errorf("issue token: %w", ErrUserNotFound)
	}

	ttl := s.accessTTL()
	claims := jwtx.NewAccessClaims(s.Issuer, jwtx.UserClaim{
		ID:    u.ID,
		Email: u.Email,
		Role:  string(u.Role),
	}, ttl, s.now())

	raw, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("sign access token: %w", err)
	}

	return domain.IssuedToken{
		AccessToken: raw,
		TokenType:   TokenType,
		ExpiresIn:   int64(ttl / time.Second),
	}, nil
}

// Validate authenticates raw and returns the principal it was issued for.
func (s *TokenService) Validate(ctx context.Context, raw string) (domain.User, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.User{}, ErrTokenNotProvided
	}

	// 1) signature and time window
	claims, err := s.Verifier.Verify(raw)
	if err != nil {
		return domain.User{}, mapVerifyError(err)
	}

	// 2) revocation
	if err := s.checkRevoked(ctx, raw); err != nil {
		return domain.User{}, err
	}

	// 3) principal
	return s.loadPrincipal(ctx, claims.Subject)
}

// Refresh exchanges raw for a new token. An expired token is accepted as
// long as it was issued within the refresh window. The replaced token is
// revoked before the new one is handed out.
func (s *TokenService) Refresh(ctx context.Context, raw string) (domain.IssuedToken, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.IssuedToken{}, ErrTokenNotProvided
	}
	now := s.now()
	l := slogx.FromContext(ctx)

	// 1) signature only; nbf still applies
	claims, err := s.Verifier.VerifySignature(raw)
	if err != nil {
		return domain.IssuedToken{}, mapVerifyError(err)
	}
	if err := claims.ValidateNotBefore(now); err != nil {
		return domain.IssuedToken{}, ErrTokenNotYetValid
	}

	// 2) refresh window
	if claims.Age(now) > s.refreshWindow() {
		l.Info("refresh refused, token too old", slog.String("user_id", claims.Subject))
		return domain.IssuedToken{}, &RefreshFailedError{Reason: RefreshReasonTooOld}
	}

	// 3) revocation and principal
	if err := s.checkRevoked(ctx, raw); err != nil {
		return domain.IssuedToken{}, err
	}
	u, err := s.loadPrincipal(ctx, claims.Subject)
	if err != nil {
		return domain.IssuedToken{}, err
	}

	// 4) retire the old token; a token that cannot be revoked is not replaced
	if err := s.Revocations.Put(ctx, cryptox.FingerprintToken(raw), s.refreshWindow()); err != nil {
		return domain.IssuedToken{}, fmt.Errorf("revoke replaced token: %w", err)
	}

	// 5) issue
	tok, err := s.Issue(ctx, u)
	if err != nil {
		return domain.IssuedToken{}, err
	}

	s.recorder().Record(ctx, domain.ActivityEntry{
		Action:      domain.ActivityTokenRefreshed,
		Description: "Access token refreshed",
		UserID:      u.ID,
	})
	return tok, nil
}

// Invalidate revokes raw. Any non-empty string is accepted and repeating the
// call is harmless.
func (s *TokenService) Invalidate(ctx context.Context, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrTokenNotProvided
	}

	if err := s.Revocations.Put(ctx, cryptox.FingerprintToken(raw), s.refreshWindow()); err != nil {
		return fmt.Errorf("invalidate token: %w", err)
	}

	if claims, err := s.Verifier.VerifySignature(raw); err == nil {
		s.recorder().Record(ctx, domain.ActivityEntry{
			Action:      domain.ActivityUserLogout,
			Description: "User logged out",
			UserID:      claims.Subject,
		})
	}
	return nil
}

func (s *TokenService) checkRevoked(ctx context.Context, raw string) error {
	revoked, err := s.Revocations.Contains(ctx, cryptox.FingerprintToken(raw))
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

func (s *TokenService) loadPrincipal(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("load principal: %w", err)
	}
	if !u.Active {
		return domain.User{}, ErrUserInactive
	}
	return u, nil
}

// mapVerifyError turns jwtx errors into service errors. A token for another
// issuer is treated like a forged one.
func mapVerifyError(err error) error {
	switch {
	case errors.Is(err, jwtx.ErrMalformed), errors.Is(err, jwtx.ErrInvalidClaim):
		return ErrTokenMalformed
	case errors.Is(err, jwtx.ErrInvalidSig), errors.Is(err, jwtx.ErrIssuer):
		return ErrSignatureInvalid
	case errors.Is(err, jwtx.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, jwtx.ErrNotYetValid):
		return ErrTokenNotYetValid
	default:
		return fmt.Errorf("verify token: %w", err)
	}
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL <= 0 {
		return jwtx.DefaultAccessTokenTTL
	}
	return s.AccessTTL
}

func (s *TokenService) refreshWindow() time.Duration {
	if s.RefreshWindow <= 0 {
		return jwtx.DefaultRefreshWindow
	}
	return s.RefreshWindow
}

func (s *TokenService) recorder() activity.Recorder {
	if s.Recorder == nil {
		return activity.Nop{}
	}
	return s.Recorder
}

func (s *TokenService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
