package domain

import "time"

// TeamRole is the role a user holds inside a single team.
type TeamRole string

const (
	TeamRoleMember TeamRole = "member"
	TeamRoleAdmin  TeamRole = "admin"
	TeamRoleOwner  TeamRole = "owner"
)

// HasAdminRights reports whether the role may administer the team.
func (r TeamRole) HasAdminRights() bool {
	return r == TeamRoleAdmin || r == TeamRoleOwner
}

// Valid reports whether r is one of the known team roles.
func (r TeamRole) Valid() bool {
	switch r {
	case TeamRoleMember, TeamRoleAdmin, TeamRoleOwner:
		return true
	}
	return false
}

// Membership rows are never deleted, only deactivated.
type Membership struct {
	ID        string
	TeamID    string
	UserID    string
	Role      TeamRole
	Active    bool
	InvitedBy string // empty when the member was not invited (e.g. the owner)
	JoinedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MemberProfile joins an active membership with the member's profile.
type MemberProfile struct {
	UserID   string
	Name     string
	Email    string
	Role     TeamRole
	JoinedAt time.Time
}
