package authsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSession_RefreshesExpiredToken(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer old-token" {
			NewAPIError(http.StatusUnauthorized, CodeTokenRevoked, "revoked").WriteError(w)
			return
		}
		refreshes.Add(1)
		_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "new-token", TokenType: "Bearer", ExpiresIn: 3600})
	})
	mux.HandleFunc("GET /v1/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer new-token" {
			NewAPIError(http.StatusUnauthorized, CodeTokenExpired, "expired").WriteError(w)
			return
		}
		_ = json.NewEncoder(w).Encode(ProfileResponse{User: User{ID: "u1", Email: "ada@example.com"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewSDKClient(srv.URL + "/")
	session := client.NewSessionFromToken("old-token", 0)

	u, err := session.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.Equal(t, "new-token", session.AccessToken())

	_, err = session.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(1), refreshes.Load(), "a fresh token is reused")
}

func TestSession_RefreshFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NewAPIError(http.StatusUnauthorized, CodeTokenRefreshFailed, "too old").WriteError(w)
	}))
	defer srv.Close()

	session := NewSDKClient(srv.URL).NewSessionFromToken("stale", 0)
	_, err := session.ListTeams(context.Background())
	require.Error(t, err)
	require.True(t, HasCode(err, CodeTokenRefreshFailed))
}

func TestSession_ClockDrivesRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(TeamListResponse{})
	}))
	defer srv.Close()

	session := NewSDKClient(srv.URL).NewSessionFromToken("tok", 3600)
	base := time.Now()
	session.now = func() time.Time { return base }

	token, err := session.getValidToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok", token)
}

func TestParseErrorResponse(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{"api error", 403, `{"error":"Forbidden","message":"no","code":"not_team_admin","timestamp":"2026-01-01T00:00:00Z"}`, CodeNotTeamAdmin},
		{"plain text", 502, `bad gateway`, CodeServerError},
		{"json without code", 500, `{"error":"x"}`, CodeServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status}
			err := parseErrorResponse(resp, []byte(tt.body))
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.StatusCode)
			require.Equal(t, tt.wantCode, apiErr.Code)
		})
	}

	require.NoError(t, parseErrorResponse(&http.Response{StatusCode: 204}, nil))
}

func TestAPIError_WriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	e := NewAPIError(http.StatusUnprocessableEntity, CodeValidationFailed, "invalid")
	e.Details = map[string]string{"email": "must be a valid email"}
	e.WriteError(rec)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	parsed := parseErrorResponse(&http.Response{StatusCode: rec.Code}, rec.Body.Bytes())
	var apiErr *APIError
	require.ErrorAs(t, parsed, &apiErr)
	require.Equal(t, "Unprocessable Entity", apiErr.Title)
	require.Equal(t, "must be a valid email", apiErr.Details["email"])
	require.True(t, strings.HasSuffix(apiErr.Timestamp, "Z"))
}
