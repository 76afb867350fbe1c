package domain

import "time"

// InvitationTokenLength is the length of the opaque invitation token.
const InvitationTokenLength = 40

type Invitation struct {
	ID         string
	TeamID     string
	Email      string
	InvitedBy  string
	Token      string
	ExpiresAt  time.Time
	Used       bool
	AcceptedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsValid reports whether the invitation can still be accepted at now.
func (i Invitation) IsValid(now time.Time) bool {
	return !i.Used && now.Before(i.ExpiresAt)
}

// IsExpired reports whether the invitation has passed its expiry at now.
func (i Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
