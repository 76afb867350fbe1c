package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Flamchu/Slack-like-backend/internal/auth/revocation"
	"github.com/Flamchu/Slack-like-backend/internal/auth/service"
	"github.com/Flamchu/Slack-like-backend/pkg/authsdk"
	"github.com/Flamchu/Slack-like-backend/pkg/slogx"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// errorTable is matched in order with errors.Is. Anything unmatched is a 500.
var errorTable = []errorMapping{
	// 401
	{service.ErrTokenNotProvided, http.StatusUnauthorized, authsdk.CodeTokenNotProvided, "Authorization token not provided"},
	{service.ErrTokenMalformed, http.StatusUnauthorized, authsdk.CodeTokenMalformed, "Authorization token is malformed"},
	{service.ErrSignatureInvalid, http.StatusUnauthorized, authsdk.CodeTokenInvalid, "Authorization token is invalid"},
	{service.ErrTokenExpired, http.StatusUnauthorized, authsdk.CodeTokenExpired, "Authorization token has expired"},
	{service.ErrTokenNotYetValid, http.StatusUnauthorized, authsdk.CodeTokenNotYetValid, "Authorization token is not valid yet"},
	{service.ErrTokenRevoked, http.StatusUnauthorized, authsdk.CodeTokenRevoked, "Authorization token has been revoked"},
	{service.ErrTokenRefreshFailed, http.StatusUnauthorized, authsdk.CodeTokenRefreshFailed, "Token can no longer be refreshed, please log in again"},
	{revocation.ErrUnavailable, http.StatusUnauthorized, authsdk.CodeRevocationUnavailable, "Token status could not be verified"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, authsdk.CodeInvalidCredentials, "Invalid credentials"},
	{service.ErrUserNotFound, http.StatusUnauthorized, authsdk.CodeUserNotFound, "User not found"},
	{service.ErrUserInactive, http.StatusUnauthorized, authsdk.CodeUserInactive, "Account is deactivated"},

	// 403
	{service.ErrNotTeamMember, http.StatusForbidden, authsdk.CodeNotTeamMember, "You are not a member of this team"},
	{service.ErrNotTeamAdmin, http.StatusForbidden, authsdk.CodeNotTeamAdmin, "Only team admins can perform this action"},
	{service.ErrNotTeamOwner, http.StatusForbidden, authsdk.CodeNotTeamOwner, "Only the team owner can perform this action"},
	{service.ErrOwnerCannotLeaveTeam, http.StatusForbidden, authsdk.CodeOwnerCannotLeaveTeam, "Team owner cannot leave the team"},
	{service.ErrTeamFull, http.StatusForbidden, authsdk.CodeTeamFull, "Team has reached its member limit"},

	// 404
	{service.ErrTeamNotFound, http.StatusNotFound, authsdk.CodeTeamNotFound, "Team not found"},
	{service.ErrInvitationNotFound, http.StatusNotFound, authsdk.CodeInvitationNotFound, "Invitation not found"},

	// 409
	{service.ErrAlreadyTeamMember, http.StatusConflict, authsdk.CodeAlreadyTeamMember, "User is already a member of this team"},
	{service.ErrTooManyPendingInvitations, http.StatusConflict, authsdk.CodeTooManyPendingInvitations, "Team has too many pending invitations"},
	{service.ErrEmailTaken, http.StatusConflict, authsdk.CodeConflict, "Email is already registered"},
	{service.ErrSlugTaken, http.StatusConflict, authsdk.CodeConflict, "Team slug is already taken"},

	// 410
	{service.ErrInvitationExpired, http.StatusGone, authsdk.CodeInvitationExpired, "Invitation has expired"},
	{service.ErrInvitationAlreadyUsed, http.StatusGone, authsdk.CodeInvitationAlreadyUsed, "Invitation has already been used"},
}

// apiErrorFor maps err to the response body. The bool is false for errors
// that are not part of the API contract.
func apiErrorFor(err error) (*authsdk.APIError, bool) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return authsdk.NewAPIError(m.status, m.code, m.message), true
		}
	}
	return authsdk.NewAPIError(http.StatusInternalServerError, authsdk.CodeServerError, "An internal error occurred"), false
}

// writeError writes the mapped error. Unmapped errors are logged with their
// cause and answered with a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr, known := apiErrorFor(err)
	if !known {
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("err", err))
	}
	apiErr.WriteError(w)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	authsdk.NewAPIError(http.StatusBadRequest, authsdk.CodeInvalidRequest, message).WriteError(w)
}
