package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/activity"
	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
	"github.com/Flamchu/Slack-like-backend/internal/auth/store"
	"github.com/Flamchu/Slack-like-backend/pkg/idx"
	"github.com/Flamchu/Slack-like-backend/pkg/slogx"
)

// DefaultMaxMembers caps active memberships per team.
const DefaultMaxMembers = 100

// MembershipService is the registry of who belongs to which team.
type MembershipService struct {
	Store      store.Store
	Recorder   activity.Recorder
	MaxMembers int
	Now        func() time.Time
}

// AddMember makes userID an active member of teamID. An existing active
// membership is left untouched and reported as success.
func (s *MembershipService) AddMember(ctx context.Context, teamID, userID string, role domain.TeamRole, inviterID string) (bool, error) {
	return s.AddMemberTx(ctx, s.Store, teamID, userID, role, inviterID)
}

// AddMemberTx is AddMember against st, which may be a transaction.
func (s *MembershipService) AddMemberTx(ctx context.Context, st store.Store, teamID, userID string, role domain.TeamRole, inviterID string) (bool, error) {
	if !role.Valid() {
		return false, fmt.Errorf("add member: invalid role %q", role)
	}

	_, err := st.Memberships().GetActiveMembership(ctx, teamID, userID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("add member: %w", err)
	}

	now := s.now()
	err = st.Memberships().CreateMembership(ctx, domain.Membership{
		ID:        idx.NewAt(now).String(),
		TeamID:    teamID,
		UserID:    userID,
		Role:      role,
		Active:    true,
		InvitedBy: inviterID,
		JoinedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		// lost a race against a concurrent insert of the same pair
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("add member: %w", err)
	}
	return true, nil
}

// RemoveMember deactivates userID's membership of teamID. It reports false
// when there is nothing to remove or when the member owns the team.
func (s *MembershipService) RemoveMember(ctx context.Context, teamID, userID string) (bool, error) {
	m, err := s.Store.Memberships().GetActiveMembership(ctx, teamID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove member: %w", err)
	}
	if m.Role == domain.TeamRoleOwner {
		return false, nil
	}

	err = s.Store.Memberships().DeactivateMembership(ctx, teamID, userID, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove member: %w", err)
	}

	slogx.FromContext(ctx).Info("member left team", slog.String("team_id", teamID), slog.String("user_id", userID))
	s.recorder().Record(ctx, domain.ActivityEntry{
		Action:      domain.ActivityUserLeft,
		Description: "User left the team",
		UserID:      userID,
		TeamID:      teamID,
	})
	return true, nil
}

// Leave is RemoveMember with typed errors for the HTTP layer.
func (s *MembershipService) Leave(ctx context.Context, teamID, userID string) error {
	role, err := s.MemberRole(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if role == domain.TeamRoleOwner {
		return ErrOwnerCannotLeaveTeam
	}
	ok, err := s.RemoveMember(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotTeamMember
	}
	return nil
}

// MemberRole returns the role of an active member, or ErrNotTeamMember.
func (s *MembershipService) MemberRole(ctx context.Context, teamID, userID string) (domain.TeamRole, error) {
	m, err := s.Store.Memberships().GetActiveMembership(ctx, teamID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNotTeamMember
	}
	if err != nil {
		return "", fmt.Errorf("lookup membership: %w", err)
	}
	return m.Role, nil
}

func (s *MembershipService) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	_, err := s.MemberRole(ctx, teamID, userID)
	if errors.Is(err, ErrNotTeamMember) {
		return false, nil
	}
	return err == nil, err
}

func (s *MembershipService) IsAdmin(ctx context.Context, teamID, userID string) (bool, error) {
	role, err := s.MemberRole(ctx, teamID, userID)
	if errors.Is(err, ErrNotTeamMember) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return role.HasAdminRights(), nil
}

func (s *MembershipService) ListMembers(ctx context.Context, teamID string) ([]domain.MemberProfile, error) {
	members, err := s.Store.Memberships().ListActiveMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func (s *MembershipService) ListTeamsForUser(ctx context.Context, userID string) ([]domain.TeamSummary, error) {
	teams, err := s.Store.Teams().ListTeamsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

// checkCapacity returns ErrTeamFull once the team is at MaxMembers.
func (s *MembershipService) checkCapacity(ctx context.Context, st store.Store, teamID string) error {
	n, err := st.Memberships().CountActiveMembers(ctx, teamID)
	if err != nil {
		return fmt.Errorf("count members: %w", err)
	}
	if n >= s.maxMembers() {
		return ErrTeamFull
	}
	return nil
}

func (s *MembershipService) maxMembers() int {
	if s.MaxMembers <= 0 {
		return DefaultMaxMembers
	}
	return s.MaxMembers
}

func (s *MembershipService) recorder() activity.Recorder {
	if s.Recorder == nil {
		return activity.Nop{}
	}
	return s.Recorder
}

func (s *MembershipService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
