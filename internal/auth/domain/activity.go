package domain

import "time"

// Activity actions recorded after successful auth and team mutations.
const (
	ActivityUserRegistered = "user_registered"
	ActivityUserLogin      = "user_login"
	ActivityUserLogout     = "user_logout"
	ActivityTokenRefreshed = "token_refreshed"
	ActivityTeamCreated    = "team_created"
	ActivityTeamUpdated    = "team_updated"
	ActivityTeamArchived   = "team_archived"
	ActivityUserInvited    = "user_invited"
	ActivityUserJoined     = "user_joined"
	ActivityUserLeft       = "user_left"
)

type ActivityEntry struct {
	ID          string
	Action      string
	Description string
	UserID      string
	TeamID      string
	Metadata    map[string]any
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time
}
