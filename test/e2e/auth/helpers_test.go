package auth_test

import (
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Flamchu/Slack-like-backend/internal/auth/app"
	"github.com/Flamchu/Slack-like-backend/pkg/authsdk"
	"github.com/Flamchu/Slack-like-backend/pkg/httpx"
)

/*
 * Common helpers for the auth service end-to-end tests. Each test runs the
 * whole application in-process behind an httptest server and drives it
 * through the SDK.
 */

const (
	testSecret   = "e2e-secret-0123456789abcdef-0123456789"
	testPassword = "correct horse battery"
)

var userSeq atomic.Int64

// TestMain raises the rate limits so tests can make many rapid requests.
func TestMain(m *testing.M) {
	relaxed := httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
	httpx.StrictLimit = relaxed
	httpx.ModerateLimit = relaxed
	httpx.LenientLimit = relaxed

	os.Exit(m.Run())
}

type authService struct {
	BaseURL string
	DBFile  string
	Client  *authsdk.SDKClient
}

// baseConfig returns a config with every path inside dir.
func baseConfig(dir string) app.Config {
	return app.Config{
		Issuer:               "bartab-chat-e2e",
		JWTSecret:            testSecret,
		JWTAlgorithm:         "HS256",
		AccessTTL:            time.Hour,
		RefreshWindow:        14 * 24 * time.Hour,
		InvitationTTL:        7 * 24 * time.Hour,
		InvitationMaxPending: 50,
		TeamMaxMembers:       100,
		DatabaseDriver:       app.DriverSQLite,
		DatabaseFile:         filepath.Join(dir, "auth.db"),
		PepperFile:           filepath.Join(dir, "pepper"),
		RevocationBackend:    app.RevocationDatabase,
		ActivityLogEnabled:   true,
		ActivityLogBuffer:    64,
		ActivityLogRetention: 24 * time.Hour,
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "json",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

// startAuthService runs the application for the duration of the test.
func startAuthService(t *testing.T, mutate ...func(*app.Config)) *authService {
	t.Helper()

	cfg := baseConfig(t.TempDir())
	for _, fn := range mutate {
		fn(&cfg)
	}
	require.NoError(t, cfg.Validate())

	application, err := app.New(cfg)
	require.NoError(t, err)
	application.Start()

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		require.NoError(t, application.Shutdown())
	})

	return &authService{
		BaseURL: srv.URL,
		DBFile:  cfg.DatabaseFile,
		Client:  authsdk.NewSDKClient(srv.URL),
	}
}

func newRegistration(firstName string) authsdk.RegisterRequest {
	n := userSeq.Add(1)
	return authsdk.RegisterRequest{
		FirstName:            firstName,
		LastName:             "Tester",
		Email:                fmt.Sprintf("%s.%d@example.com", firstName, n),
		Password:             testPassword,
		PasswordConfirmation: testPassword,
	}
}

// registerSession creates a fresh account and returns an authenticated session.
func registerSession(t *testing.T, svc *authService, firstName string) (*authsdk.Session, authsdk.RegisterRequest) {
	t.Helper()
	req := newRegistration(firstName)
	session, err := svc.Client.RegisterAndAuthenticate(t.Context(), req)
	require.NoError(t, err)
	return session, req
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, authsdk.HasCode(err, code), "expected %s, got %v", code, err)
}
