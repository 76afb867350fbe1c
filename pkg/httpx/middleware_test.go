package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Flamchu/Slack-like-backend/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mark("outer"), mark("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestPrincipalContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := httpx.PrincipalFrom(req.Context())
	require.False(t, ok)

	ctx := httpx.WithPrincipal(req.Context(), httpx.Principal{UserID: "u1", Email: "a@b.c", Token: "raw"})
	p, ok := httpx.PrincipalFrom(ctx)
	require.True(t, ok)
	require.Equal(t, "u1", p.UserID)
	require.Equal(t, "raw", p.Token)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteError(rec, http.StatusForbidden, "Forbidden", "not_team_member", "You are not a member of this team")

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Forbidden", body.Error)
	require.Equal(t, "not_team_member", body.Code)
	require.Equal(t, "You are not a member of this team", body.Message)

	_, err := time.Parse(time.RFC3339, body.Timestamp)
	require.NoError(t, err)
}
