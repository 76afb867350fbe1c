// Package storetest holds a behavioural suite every store.Store driver must
// pass. Drivers call Run from their own tests with a constructor for a fresh,
// migrated store.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
	"github.com/Flamchu/Slack-like-backend/internal/auth/store"
	"github.com/Flamchu/Slack-like-backend/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty, migrated store. It should register its own cleanup.
type Factory func(t *testing.T) store.Store

var base = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

// Run executes the suite against the driver produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("teams", func(t *testing.T) { testTeams(t, newStore(t)) })
	t.Run("memberships", func(t *testing.T) { testMemberships(t, newStore(t)) })
	t.Run("invitations", func(t *testing.T) { testInvitations(t, newStore(t)) })
	t.Run("revoked tokens", func(t *testing.T) { testRevokedTokens(t, newStore(t)) })
	t.Run("activity logs", func(t *testing.T) { testActivityLogs(t, newStore(t)) })
	t.Run("transactions", func(t *testing.T) { testTransactions(t, newStore(t)) })
}

// SeedUser inserts an active user with the given email.
func SeedUser(t *testing.T, s store.Store, email string) domain.User {
	t.Helper()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         email,
		PasswordHash: "argon2id$dummy",
		Role:         domain.UserRoleUser,
		Active:       true,
		CreatedAt:    base,
		UpdatedAt:    base,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

// SeedTeam inserts an active team owned by owner along with the owner's
// membership row.
func SeedTeam(t *testing.T, s store.Store, owner domain.User, name string) domain.Team {
	t.Helper()
	ctx := context.Background()
	team := domain.Team{
		ID:        idx.New().String(),
		Name:      name,
		Slug:      fmt.Sprintf("%s-%s", name, idx.New().String()[20:]),
		OwnerID:   owner.ID,
		Active:    true,
		CreatedAt: base,
		UpdatedAt: base,
	}
	require.NoError(t, s.Teams().CreateTeam(ctx, team))
	require.NoError(t, s.Memberships().CreateMembership(ctx, domain.Membership{
		ID:       idx.New().String(),
		TeamID:   team.ID,
		UserID:   owner.ID,
		Role:     domain.TeamRoleOwner,
		JoinedAt: base,
	}))
	return team
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := SeedUser(t, s, "ada@example.com")

	got, err := s.Users().GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.True(t, got.Active)
	require.Nil(t, got.LastLoginAt)
	require.True(t, got.CreatedAt.Equal(base))

	dup := u
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	_, err = s.Users().GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	login := base.Add(time.Hour)
	require.NoError(t, s.Users().TouchLastLogin(ctx, u.ID, login))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	require.True(t, got.LastLoginAt.Equal(login))

	require.NoError(t, s.Users().SetActive(ctx, u.ID, false))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.Active)

	require.ErrorIs(t, s.Users().SetActive(ctx, "missing", true), store.ErrNotFound)
}

func testTeams(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := SeedUser(t, s, "owner@example.com")
	other := SeedUser(t, s, "other@example.com")
	team := SeedTeam(t, s, owner, "core")

	exists, err := s.Teams().SlugExists(ctx, team.Slug)
	require.NoError(t, err)
	require.True(t, exists)
	exists, err = s.Teams().SlugExists(ctx, "nope")
	require.NoError(t, err)
	require.False(t, exists)

	clash := team
	clash.ID = idx.New().String()
	require.ErrorIs(t, s.Teams().CreateTeam(ctx, clash), store.ErrAlreadyExists)

	team.Name = "Core Platform"
	team.Description = "runtime and tooling"
	team.UpdatedAt = base.Add(time.Minute)
	require.NoError(t, s.Teams().UpdateTeam(ctx, team))
	got, err := s.Teams().GetTeamByID(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, "Core Platform", got.Name)
	require.Equal(t, "runtime and tooling", got.Description)

	require.NoError(t, s.Memberships().CreateMembership(ctx, domain.Membership{
		ID: idx.New().String(), TeamID: team.ID, UserID: other.ID, Role: domain.TeamRoleMember, JoinedAt: base,
	}))

	teams, err := s.Teams().ListTeamsForUser(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	require.Equal(t, team.ID, teams[0].ID)
	require.Equal(t, domain.TeamRoleMember, teams[0].Role)
	require.Equal(t, 2, teams[0].MemberCount)

	require.NoError(t, s.Teams().ArchiveTeam(ctx, team.ID, base.Add(2*time.Minute)))
	require.ErrorIs(t, s.Teams().ArchiveTeam(ctx, team.ID, base), store.ErrNotFound)
	require.ErrorIs(t, s.Teams().UpdateTeam(ctx, team), store.ErrNotFound)

	teams, err = s.Teams().ListTeamsForUser(ctx, other.ID)
	require.NoError(t, err)
	require.Empty(t, teams)

	_, err = s.Teams().GetTeamByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testMemberships(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := SeedUser(t, s, "owner@example.com")
	member := SeedUser(t, s, "member@example.com")
	team := SeedTeam(t, s, owner, "ops")

	m := domain.Membership{
		ID:        idx.New().String(),
		TeamID:    team.ID,
		UserID:    member.ID,
		Role:      domain.TeamRoleMember,
		InvitedBy: owner.ID,
		JoinedAt:  base.Add(time.Minute),
	}
	require.NoError(t, s.Memberships().CreateMembership(ctx, m))

	second := m
	second.ID = idx.New().String()
	require.ErrorIs(t, s.Memberships().CreateMembership(ctx, second), store.ErrAlreadyExists)

	got, err := s.Memberships().GetActiveMembership(ctx, team.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, owner.ID, got.InvitedBy)
	require.True(t, got.Active)

	n, err := s.Memberships().CountActiveMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	members, err := s.Memberships().ListActiveMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, owner.ID, members[0].UserID)
	require.Equal(t, domain.TeamRoleOwner, members[0].Role)
	require.Equal(t, "member@example.com", members[1].Email)

	require.NoError(t, s.Memberships().DeactivateMembership(ctx, team.ID, member.ID, base.Add(time.Hour)))
	require.ErrorIs(t, s.Memberships().DeactivateMembership(ctx, team.ID, member.ID, base), store.ErrNotFound)

	_, err = s.Memberships().GetActiveMembership(ctx, team.ID, member.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Rejoining after leaving creates a fresh active row.
	require.NoError(t, s.Memberships().CreateMembership(ctx, second))
	n, err = s.Memberships().CountActiveMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func testInvitations(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := SeedUser(t, s, "owner@example.com")
	team := SeedTeam(t, s, owner, "design")

	inv := domain.Invitation{
		ID:        idx.New().String(),
		TeamID:    team.ID,
		Email:     "guest@example.com",
		InvitedBy: owner.ID,
		Token:     "tok-0000000000000000000000000000000000001",
		ExpiresAt: base.Add(7 * 24 * time.Hour),
		CreatedAt: base,
	}
	require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))

	expired := inv
	expired.ID = idx.New().String()
	expired.Email = "late@example.com"
	expired.Token = "tok-0000000000000000000000000000000000002"
	expired.ExpiresAt = base.Add(-time.Minute)
	require.NoError(t, s.Invitations().CreateInvitation(ctx, expired))

	dup := inv
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.Invitations().CreateInvitation(ctx, dup), store.ErrAlreadyExists)

	pending, err := s.Invitations().GetPendingInvitation(ctx, team.ID, "guest@example.com", base)
	require.NoError(t, err)
	require.Equal(t, inv.Token, pending.Token)
	require.False(t, pending.Used)

	_, err = s.Invitations().GetPendingInvitation(ctx, team.ID, "late@example.com", base)
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.Invitations().CountPendingInvitations(ctx, team.ID, base)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	now := base.Add(time.Hour)
	ok, err := s.Invitations().MarkInvitationUsed(ctx, inv.Token, "someone@example.com", now)
	require.NoError(t, err)
	require.False(t, ok, "wrong recipient must not consume the invitation")

	ok, err = s.Invitations().MarkInvitationUsed(ctx, expired.Token, expired.Email, now)
	require.NoError(t, err)
	require.False(t, ok, "expired invitations cannot be consumed")

	ok, err = s.Invitations().MarkInvitationUsed(ctx, inv.Token, inv.Email, now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Invitations().MarkInvitationUsed(ctx, inv.Token, inv.Email, now)
	require.NoError(t, err)
	require.False(t, ok, "an invitation is consumed at most once")

	got, err := s.Invitations().GetInvitationByToken(ctx, inv.Token)
	require.NoError(t, err)
	require.True(t, got.Used)
	require.NotNil(t, got.AcceptedAt)
	require.True(t, got.AcceptedAt.Equal(now))

	_, err = s.Invitations().GetInvitationByToken(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testRevokedTokens(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.RevokedTokens()

	require.NoError(t, repo.PutRevokedToken(ctx, "fp-live", base.Add(time.Hour)))
	require.NoError(t, repo.PutRevokedToken(ctx, "fp-old", base.Add(-time.Hour)))

	revoked, err := repo.IsTokenRevoked(ctx, "fp-live", base)
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = repo.IsTokenRevoked(ctx, "fp-old", base)
	require.NoError(t, err)
	require.False(t, revoked, "entries past their expiry no longer count")

	revoked, err = repo.IsTokenRevoked(ctx, "fp-unknown", base)
	require.NoError(t, err)
	require.False(t, revoked)

	// Re-revoking extends the entry.
	require.NoError(t, repo.PutRevokedToken(ctx, "fp-old", base.Add(time.Hour)))
	revoked, err = repo.IsTokenRevoked(ctx, "fp-old", base)
	require.NoError(t, err)
	require.True(t, revoked)

	n, err := repo.DeleteExpiredRevokedTokens(ctx, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func testActivityLogs(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.ActivityLogs()

	for i, action := range []string{domain.ActivityTeamCreated, domain.ActivityUserInvited, domain.ActivityUserJoined} {
		require.NoError(t, repo.CreateActivityLog(ctx, domain.ActivityEntry{
			ID:          idx.New().String(),
			Action:      action,
			Description: action,
			UserID:      "user-1",
			TeamID:      "team-1",
			Metadata:    map[string]any{"seq": i},
			IPAddress:   "10.0.0.1",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.CreateActivityLog(ctx, domain.ActivityEntry{
		ID:          idx.New().String(),
		Action:      domain.ActivityUserLogin,
		Description: "login",
		UserID:      "user-1",
		CreatedAt:   base,
	}))

	entries, err := repo.ListTeamActivity(ctx, "team-1", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, domain.ActivityUserJoined, entries[0].Action)
	require.EqualValues(t, 2, entries[0].Metadata["seq"])
	require.Equal(t, "10.0.0.1", entries[0].IPAddress)
	require.Empty(t, entries[0].UserAgent)

	n, err := repo.DeleteActivityBefore(ctx, base.Add(90*time.Second))
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	entries, err = repo.ListTeamActivity(ctx, "team-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func testTransactions(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := SeedUser(t, s, "owner@example.com")

	boom := fmt.Errorf("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Teams().CreateTeam(ctx, domain.Team{
			ID: "rolled-back", Name: "tmp", Slug: "tmp", OwnerID: owner.ID, Active: true, CreatedAt: base,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)
	_, err = s.Teams().GetTeamByID(ctx, "rolled-back")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Teams().CreateTeam(ctx, domain.Team{
			ID: "committed", Name: "kept", Slug: "kept", OwnerID: owner.ID, Active: true, CreatedAt: base,
		})
	})
	require.NoError(t, err)
	_, err = s.Teams().GetTeamByID(ctx, "committed")
	require.NoError(t, err)

	require.NoError(t, s.Ping(ctx))
}
