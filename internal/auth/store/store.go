package store

import (
	"context"
	"errors"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and so a Tx can hand out the same repositories bound to the
// transaction instead of the pool.
type Store interface {
	Users() Users
	Teams() Teams
	Memberships() Memberships
	Invitations() Invitations
	RevokedTokens() RevokedTokens
	ActivityLogs() ActivityLogs

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks a user up by normalised (lowercase) email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. Returns ErrAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, u domain.User) error

	// TouchLastLogin sets last_login_at and bumps updated_at.
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error

	// SetActive flips the active flag.
	SetActive(ctx context.Context, userID string, active bool) error
}

type Teams interface {
	GetTeamByID(ctx context.Context, id string) (domain.Team, error)

	// CreateTeam inserts a team. Returns ErrAlreadyExists on a duplicate slug.
	CreateTeam(ctx context.Context, t domain.Team) error

	// UpdateTeam writes name, description and updated_at.
	UpdateTeam(ctx context.Context, t domain.Team) error

	// ArchiveTeam sets active=false.
	ArchiveTeam(ctx context.Context, id string, at time.Time) error

	// SlugExists is used while deriving a unique slug from a team name.
	SlugExists(ctx context.Context, slug string) (bool, error)

	// ListTeamsForUser returns active teams the user is an active member of.
	ListTeamsForUser(ctx context.Context, userID string) ([]domain.TeamSummary, error)
}

type Memberships interface {
	// GetActiveMembership returns the active membership row for (team, user).
	GetActiveMembership(ctx context.Context, teamID, userID string) (domain.Membership, error)

	// CreateMembership inserts an active membership. Returns ErrAlreadyExists
	// when an active row for (team, user) already exists.
	CreateMembership(ctx context.Context, m domain.Membership) error

	// DeactivateMembership soft-deletes the active row. Returns ErrNotFound
	// when there is no active row.
	DeactivateMembership(ctx context.Context, teamID, userID string, at time.Time) error

	// CountActiveMembers counts active memberships for a team.
	CountActiveMembers(ctx context.Context, teamID string) (int, error)

	// ListActiveMembers returns active members joined with their profiles.
	ListActiveMembers(ctx context.Context, teamID string) ([]domain.MemberProfile, error)
}

type Invitations interface {
	// GetInvitationByToken fetches an invitation by its exact token.
	GetInvitationByToken(ctx context.Context, token string) (domain.Invitation, error)

	// GetPendingInvitation returns an unused, unexpired invitation for (team, email).
	GetPendingInvitation(ctx context.Context, teamID, email string, now time.Time) (domain.Invitation, error)

	// CountPendingInvitations counts unused, unexpired invitations for a team.
	CountPendingInvitations(ctx context.Context, teamID string, now time.Time) (int, error)

	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// MarkInvitationUsed is a conditional update: it only flips rows that are
	// unused, unexpired and addressed to email. It reports whether exactly one
	// row changed.
	MarkInvitationUsed(ctx context.Context, token, email string, now time.Time) (bool, error)
}

type RevokedTokens interface {
	// PutRevokedToken inserts or refreshes a revocation entry.
	PutRevokedToken(ctx context.Context, fingerprint string, expiresAt time.Time) error

	// IsTokenRevoked reports whether an unexpired entry exists.
	IsTokenRevoked(ctx context.Context, fingerprint string, now time.Time) (bool, error)

	// DeleteExpiredRevokedTokens is housekeeping.
	DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error)
}

type ActivityLogs interface {
	CreateActivityLog(ctx context.Context, e domain.ActivityEntry) error

	// ListTeamActivity returns the newest entries for a team first.
	ListTeamActivity(ctx context.Context, teamID string, limit int) ([]domain.ActivityEntry, error)

	// DeleteActivityBefore is housekeeping for the retention window.
	DeleteActivityBefore(ctx context.Context, before time.Time) (int64, error)
}
