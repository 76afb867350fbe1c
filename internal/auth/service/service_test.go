package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
	"github.com/Flamchu/Slack-like-backend/internal/auth/revocation"
	"github.com/Flamchu/Slack-like-backend/internal/auth/store"
	"github.com/Flamchu/Slack-like-backend/internal/auth/store/drivers/sqlite"
	"github.com/Flamchu/Slack-like-backend/internal/auth/store/storetest"
	"github.com/Flamchu/Slack-like-backend/pkg/cryptox"
	"github.com/Flamchu/Slack-like-backend/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer = "bartab-chat-test"
	testSecret = "0123456789abcdef0123456789abcdef"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recorder collects entries synchronously.
type recorder struct {
	mu      sync.Mutex
	entries []domain.ActivityEntry
}

func (r *recorder) Record(_ context.Context, e domain.ActivityEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recorder) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type env struct {
	Store   store.Store
	Clock   *clock
	Rec     *recorder
	Cache   *revocation.MemoryCache
	Tokens  *TokenService
	Users   *UserService
	Members *MembershipService
	Invites *InvitationService
	Teams   *TeamService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	return buildEnv(t, s)
}

// newFileEnv uses an on-disk database so transactions really run in parallel.
func newFileEnv(t *testing.T) *env {
	t.Helper()
	s, err := sqlite.NewStore(sqlite.FileDSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	return buildEnv(t, s)
}

func buildEnv(t *testing.T, s store.Store) *env {
	t.Helper()
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	clk := &clock{now: time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)}
	rec := &recorder{}

	signer, err := jwtx.NewSignerHMAC("HS256", []byte(testSecret))
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHMAC("HS256", []byte(testSecret), testIssuer)
	require.NoError(t, err)
	verifier.Now = clk.Now

	cache := revocation.NewMemoryCache()
	cache.Now = clk.Now

	members := &MembershipService{Store: s, Recorder: rec, Now: clk.Now}
	return &env{
		Store: s,
		Clock: clk,
		Rec:   rec,
		Cache: cache,
		Tokens: &TokenService{
			Signer:        signer,
			Verifier:      verifier,
			Store:         s,
			Revocations:   revocation.NewStore(cache, revocation.FailOpen),
			Recorder:      rec,
			Issuer:        testIssuer,
			AccessTTL:     60 * time.Minute,
			RefreshWindow: 20160 * time.Minute,
			Now:           clk.Now,
		},
		Users: &UserService{
			Store:    s,
			Hasher:   &cryptox.Hasher{Pepper: "pepper", Memory: 1024, Iterations: 1, Parallelism: 1},
			Recorder: rec,
			Now:      clk.Now,
		},
		Members: members,
		Invites: &InvitationService{Store: s, Members: members, Recorder: rec, Now: clk.Now},
		Teams:   &TeamService{Store: s, Members: members, Recorder: rec, Now: clk.Now},
	}
}

func (e *env) seedUser(t *testing.T, email string) domain.User {
	return storetest.SeedUser(t, e.Store, email)
}

func (e *env) seedTeam(t *testing.T, owner domain.User) domain.Team {
	return storetest.SeedTeam(t, e.Store, owner, "general")
}
