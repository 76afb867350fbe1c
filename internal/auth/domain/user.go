package domain

import "time"

// UserRole is the account-wide role snapshot embedded in issued tokens. It is
// independent of any team role.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User is the principal a token is issued for.
type User struct {
	ID           string
	Email        string
	Name         string
	FirstName    string
	LastName     string
	PasswordHash string // argon2 encoded
	Role         UserRole
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
