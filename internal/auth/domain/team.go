package domain

import "time"

type Team struct {
	ID          string
	Name        string
	Slug        string
	Description string
	OwnerID     string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TeamSummary is a team as seen by one of its members.
type TeamSummary struct {
	Team
	Role        TeamRole
	MemberCount int
}
