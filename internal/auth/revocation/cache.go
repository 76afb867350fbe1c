// Package revocation tracks revoked access tokens by fingerprint until they
// can no longer be refreshed.
package revocation

import (
	"context"
	"sync"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/store"
)

// Cache is the storage behind a revocation Store. Put overwrites the TTL of
// an existing fingerprint. Exists never reports an expired entry.
type Cache interface {
	Put(ctx context.Context, fingerprint string, ttl time.Duration) error
	Exists(ctx context.Context, fingerprint string) (bool, error)
}

// MemoryCache is a process-local Cache. Entries expire lazily on read and
// are physically removed by Sweep.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]time.Time

	// Now defaults to time.Now.
	Now func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]time.Time), Now: time.Now}
}

func (c *MemoryCache) Put(_ context.Context, fingerprint string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = c.now().Add(ttl)
	return nil
}

func (c *MemoryCache) Exists(_ context.Context, fingerprint string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	exp, ok := c.entries[fingerprint]
	if !ok {
		return false, nil
	}
	if !c.now().Before(exp) {
		delete(c.entries, fingerprint)
		return false, nil
	}
	return true, nil
}

// Sweep drops every expired entry and returns how many were removed.
func (c *MemoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for fp, exp := range c.entries {
		if !now.Before(exp) {
			delete(c.entries, fp)
			n++
		}
	}
	return n
}

// Len reports the number of entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// StoreCache persists revocations in the revoked_tokens table so they survive
// restarts and are shared between replicas.
type StoreCache struct {
	Repo store.RevokedTokens

	// Now defaults to time.Now.
	Now func() time.Time
}

func NewStoreCache(repo store.RevokedTokens) *StoreCache {
	return &StoreCache{Repo: repo, Now: time.Now}
}

func (c *StoreCache) Put(ctx context.Context, fingerprint string, ttl time.Duration) error {
	return c.Repo.PutRevokedToken(ctx, fingerprint, c.now().Add(ttl))
}

func (c *StoreCache) Exists(ctx context.Context, fingerprint string) (bool, error) {
	return c.Repo.IsTokenRevoked(ctx, fingerprint, c.now())
}

func (c *StoreCache) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
