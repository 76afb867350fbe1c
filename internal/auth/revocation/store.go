package revocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Flamchu/Slack-like-backend/pkg/slogx"
)

// ErrUnavailable is returned by Contains under FailClosed when the cache
// cannot be read.
var ErrUnavailable = errors.New("revocation: store unavailable")

// Policy decides what Contains reports when the cache errors.
type Policy int

const (
	// FailOpen treats an unreadable cache as "not revoked".
	FailOpen Policy = iota
	// FailClosed refuses to answer, which rejects the request.
	FailClosed
)

func (p Policy) String() string {
	if p == FailClosed {
		return "fail_closed"
	}
	return "fail_open"
}

// Checker is what token validation needs from revocation.
type Checker interface {
	Put(ctx context.Context, fingerprint string, ttl time.Duration) error
	Contains(ctx context.Context, fingerprint string) (bool, error)
}

// Store applies a failure Policy on top of a Cache.
type Store struct {
	Cache  Cache
	Policy Policy
}

func NewStore(cache Cache, policy Policy) *Store {
	return &Store{Cache: cache, Policy: policy}
}

// Put records fingerprint as revoked for ttl. Errors are always returned.
func (s *Store) Put(ctx context.Context, fingerprint string, ttl time.Duration) error {
	if err := s.Cache.Put(ctx, fingerprint, ttl); err != nil {
		slogx.FromContext(ctx).Error("revocation put failed", slog.Any("err", err))
		return fmt.Errorf("revocation put: %w", err)
	}
	return nil
}

// Contains reports whether fingerprint is currently revoked.
func (s *Store) Contains(ctx context.Context, fingerprint string) (bool, error) {
	ok, err := s.Cache.Exists(ctx, fingerprint)
	if err == nil {
		return ok, nil
	}

	log := slogx.FromContext(ctx)
	if s.Policy == FailClosed {
		log.Error("revocation lookup failed, rejecting", slog.Any("err", err))
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	log.Warn("revocation lookup failed, allowing", slog.Any("err", err))
	return false, nil
}
