package service

import (
	"errors"
	"fmt"
)

// Token errors.
var (
	ErrTokenNotProvided   = errors.New("token_not_provided")
	ErrTokenMalformed     = errors.New("token_malformed")
	ErrTokenExpired       = errors.New("token_expired")
	ErrTokenNotYetValid   = errors.New("token_not_yet_valid")
	ErrSignatureInvalid   = errors.New("token_signature_invalid")
	ErrTokenRevoked       = errors.New("token_revoked")
	ErrTokenRefreshFailed = errors.New("token_refresh_failed")
)

// User and account errors.
var (
	ErrUserNotFound       = errors.New("user_not_found")
	ErrUserInactive       = errors.New("user_inactive")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailTaken         = errors.New("email_taken")
)

// Invitation errors.
var (
	ErrInvitationNotFound        = errors.New("invitation_not_found")
	ErrInvitationExpired         = errors.New("invitation_expired")
	ErrInvitationAlreadyUsed     = errors.New("invitation_already_used")
	ErrAlreadyTeamMember         = errors.New("already_team_member")
	ErrTooManyPendingInvitations = errors.New("too_many_pending_invitations")
)

// Team errors.
var (
	ErrTeamNotFound         = errors.New("team_not_found")
	ErrNotTeamMember        = errors.New("not_team_member")
	ErrNotTeamAdmin         = errors.New("not_team_admin")
	ErrNotTeamOwner         = errors.New("not_team_owner")
	ErrOwnerCannotLeaveTeam = errors.New("owner_cannot_leave_team")
	ErrTeamFull             = errors.New("team_full")
	ErrSlugTaken            = errors.New("slug_taken")
)

// Refresh failure reasons.
const (
	RefreshReasonTooOld = "too_old"
)

// RefreshFailedError reports why a refresh was refused. It matches
// ErrTokenRefreshFailed with errors.Is.
type RefreshFailedError struct {
	Reason string
}

func (e *RefreshFailedError) Error() string {
	return fmt.Sprintf("token_refresh_failed: %s", e.Reason)
}

func (e *RefreshFailedError) Is(target error) bool {
	return target == ErrTokenRefreshFailed
}
