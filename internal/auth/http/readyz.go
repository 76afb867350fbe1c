package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/revocation"
	"github.com/Flamchu/Slack-like-backend/internal/auth/store"
	"github.com/Flamchu/Slack-like-backend/pkg/authsdk"
	"github.com/Flamchu/Slack-like-backend/pkg/httpx"
)

const readyzProbeFingerprint = "readyz-probe"

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe returning uptime, version and the state of the database and revocation cache
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	cache revocation.Cache,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := &authsdk.HealthChecks{
			Database:   "ok",
			Revocation: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(ctx); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if cache != nil {
			if _, err := cache.Exists(ctx, readyzProbeFingerprint); err != nil {
				checks.Revocation = "error: " + err.Error()
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, statusCode, healthResponse(overallStatus, startTime, version, checks))
	}
}
