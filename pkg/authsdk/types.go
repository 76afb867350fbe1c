package authsdk

import "time"

// ============================================================================
// Auth Types
// ============================================================================

// RegisterRequest creates a new account.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,max=255"`
	LastName  string `json:"last_name" validate:"required,max=255"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=128"`

	// PasswordConfirmation must equal Password.
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// LoginRequest exchanges credentials for an access token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned from the refresh endpoint and embedded in
// AuthResponse.
type TokenResponse struct {
	// AccessToken is the signed JWT to send as "Authorization: Bearer ..."
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime of the access token in seconds
	ExpiresIn int `json:"expires_in"`
}

// AuthResponse is returned from register and login.
type AuthResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`

	TokenResponse
}

// User is the public view of an account.
type User struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	FirstName   string     `json:"first_name,omitempty"`
	LastName    string     `json:"last_name,omitempty"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// ProfileResponse is returned from GET /v1/auth/profile.
type ProfileResponse struct {
	User User `json:"user"`
}

// MessageResponse is the body of endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Team Types
// ============================================================================

// Team is the public view of a team.
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	Active      bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TeamSummary is a team as seen by one of its members.
type TeamSummary struct {
	Team

	Role        string `json:"role"`
	MemberCount int    `json:"members_count"`
}

type TeamResponse struct {
	Message string `json:"message"`
	Data    Team   `json:"data"`
}

type TeamListResponse struct {
	Message string        `json:"message"`
	Data    []TeamSummary `json:"data"`
}

// CreateTeamRequest creates a team owned by the caller. Slug is derived from
// Name when omitted.
type CreateTeamRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Slug        string `json:"slug,omitempty" validate:"omitempty,max=255,slug"`
	Description string `json:"description,omitempty" validate:"max=1000"`
}

// UpdateTeamRequest changes the fields that are present.
type UpdateTeamRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// Member is an active member of a team.
type Member struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type MembersResponse struct {
	Message string   `json:"message"`
	Data    []Member `json:"data"`
}

// ============================================================================
// Invitation Types
// ============================================================================

// InviteRequest invites an email address to a team.
type InviteRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// InviteResponse carries the token the invitee redeems via JoinTeam.
type InviteResponse struct {
	Message         string    `json:"message"`
	InvitationToken string    `json:"invitation_token"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// JoinTeamRequest redeems an invitation token.
type JoinTeamRequest struct {
	Token string `json:"token" validate:"required,len=40"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the health check response from /livez and /readyz endpoints.
type HealthResponse struct {
	// Status is "ok" or "degraded"
	Status string `json:"status"`

	// Uptime is the service uptime as a duration string
	Uptime string `json:"uptime"`

	// Version is the service version
	Version string `json:"version"`

	// Checks is only present on /readyz
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency.
type HealthChecks struct {
	Database   string `json:"database"`
	Revocation string `json:"revocation"`
}
