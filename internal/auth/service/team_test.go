package service

import (
	"context"
	"testing"

	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Engineering", "engineering"},
		{"  Platform & Infra!  ", "platform-infra"},
		{"Ünïcode Team", "n-code-team"},
		{"---", ""},
		{"a  b__c", "a-b-c"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestTeamService_Create(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.seedUser(t, "owner@example.com")

	team, err := e.Teams.Create(ctx, owner.ID, CreateTeamInput{Name: "Core Team", Description: "the core"})
	require.NoError(t, err)
	require.Equal(t, "core-team", team.Slug)
	require.True(t, team.Active)

	role, err := e.Members.MemberRole(ctx, team.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TeamRoleOwner, role)

	dup, err := e.Teams.Create(ctx, owner.ID, CreateTeamInput{Name: "Core  team"})
	require.NoError(t, err)
	require.Equal(t, "core-team-2", dup.Slug)

	_, err = e.Teams.Create(ctx, owner.ID, CreateTeamInput{Name: "Other", Slug: "core-team"})
	require.ErrorIs(t, err, ErrSlugTaken)

	require.Equal(t, []string{domain.ActivityTeamCreated, domain.ActivityTeamCreated}, e.Rec.Actions())
}

func TestTeamService_UpdateAndArchive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.seedUser(t, "owner@example.com")
	bob := e.seedUser(t, "bob@example.com")

	team, err := e.Teams.Create(ctx, owner.ID, CreateTeamInput{Name: "Ops"})
	require.NoError(t, err)

	name, desc := "Operations", "on call"
	updated, err := e.Teams.Update(ctx, team.ID, owner.ID, UpdateTeamInput{Name: &name, Description: &desc})
	require.NoError(t, err)
	require.Equal(t, "Operations", updated.Name)
	require.Equal(t, "ops", updated.Slug, "the slug is stable")

	got, err := e.Teams.Get(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, "on call", got.Description)

	require.ErrorIs(t, e.Teams.Archive(ctx, team.ID, bob.ID), ErrNotTeamOwner)
	require.NoError(t, e.Teams.Archive(ctx, team.ID, owner.ID))

	_, err = e.Teams.Get(ctx, team.ID)
	require.ErrorIs(t, err, ErrTeamNotFound)

	teams, err := e.Teams.ListForUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Empty(t, teams)
}

func TestTeamService_GetMissing(t *testing.T) {
	e := newEnv(t)
	_, err := e.Teams.Get(context.Background(), "01JNOSUCHTEAM0000000000000")
	require.ErrorIs(t, err, ErrTeamNotFound)
}
