package auth_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Flamchu/Slack-like-backend/pkg/authsdk"
	"github.com/Flamchu/Slack-like-backend/pkg/httpx"
)

// Not parallel: it swaps the package level strict profile.
func TestLoginRateLimited(t *testing.T) {
	previous := httpx.StrictLimit
	httpx.StrictLimit = httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
	t.Cleanup(func() { httpx.StrictLimit = previous })

	svc := startAuthService(t)

	var lastErr error
	for range 4 {
		_, lastErr = svc.Client.Login(t.Context(), "victim@example.com", "guess")
	}
	requireCode(t, lastErr, authsdk.CodeRateLimitExceeded)

	var apiErr *authsdk.APIError
	require.ErrorAs(t, lastErr, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)

	// a different address in the body has its own bucket
	_, err := svc.Client.Login(t.Context(), "someone-else@example.com", "guess")
	requireCode(t, err, authsdk.CodeInvalidCredentials)
}
