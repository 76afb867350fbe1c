package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Flamchu/Slack-like-backend/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	// Authentication
	CodeTokenNotProvided      = "token_not_provided"
	CodeTokenMalformed        = "token_malformed"
	CodeTokenInvalid          = "token_invalid"
	CodeTokenExpired          = "token_expired"
	CodeTokenNotYetValid      = "token_not_yet_valid"
	CodeTokenRevoked          = "token_revoked"
	CodeTokenRefreshFailed    = "token_refresh_failed"
	CodeRevocationUnavailable = "revocation_unavailable"
	CodeInvalidCredentials    = "invalid_credentials"
	CodeUserNotFound          = "user_not_found"
	CodeUserInactive          = "user_inactive"

	// Teams and invitations
	CodeTeamNotFound              = "team_not_found"
	CodeNotTeamMember             = "not_team_member"
	CodeNotTeamAdmin              = "not_team_admin"
	CodeNotTeamOwner              = "not_team_owner"
	CodeOwnerCannotLeaveTeam      = "owner_cannot_leave_team"
	CodeTeamFull                  = "team_full"
	CodeAlreadyTeamMember         = "already_team_member"
	CodeInvitationNotFound        = "invitation_not_found"
	CodeInvitationExpired         = "invitation_expired"
	CodeInvitationAlreadyUsed     = "invitation_already_used"
	CodeTooManyPendingInvitations = "too_many_pending_invitations"

	// Requests
	CodeInvalidRequest    = "invalid_request"
	CodeValidationFailed  = "validation_failed"
	CodeConflict          = "conflict"
	CodeRateLimitExceeded = "rate_limit_exceeded"
	CodeServerError       = "server_error"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the error body every endpoint returns. The server writes it
// with WriteError and the client parses it back from failed responses.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Title is a short human title such as "Unauthorized"
	Title string `json:"error"`

	// Message is a human-readable description of the error
	Message string `json:"message"`

	// Code is the stable machine-readable code, one of the Code* constants
	Code string `json:"code"`

	Timestamp string `json:"timestamp"`

	// Details holds per-field messages for validation_failed
	Details map[string]string `json:"details,omitempty"`
}

// NewAPIError builds an APIError titled with the standard status text.
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{
		StatusCode: status,
		Title:      http.StatusText(status),
		Message:    message,
		Code:       code,
	}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

// WriteError writes e as JSON, stamping the current time.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, httpx.ErrorBody{
		Error:     e.Title,
		Message:   e.Message,
		Code:      e.Code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Details:   e.Details,
	})
}

// HasCode reports whether err is an APIError carrying code.
func HasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a failed response into an *APIError.
// Returns nil if the response indicates success (2xx status code).
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	// Fallback: create generic error from status code
	return &APIError{
		StatusCode: resp.StatusCode,
		Title:      http.StatusText(resp.StatusCode),
		Code:       CodeServerError,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
