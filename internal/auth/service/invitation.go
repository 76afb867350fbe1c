package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/activity"
	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
	"github.com/Flamchu/Slack-like-backend/internal/auth/store"
	"github.com/Flamchu/Slack-like-backend/pkg/cryptox"
	"github.com/Flamchu/Slack-like-backend/pkg/idx"
	"github.com/Flamchu/Slack-like-backend/pkg/slogx"
)

const (
	DefaultInvitationTTL = 7 * 24 * time.Hour
	DefaultMaxPending    = 50
)

// InvitationService issues and redeems team invitations.
type InvitationService struct {
	Store      store.Store
	Members    *MembershipService
	Recorder   activity.Recorder
	TTL        time.Duration
	MaxPending int
	Now        func() time.Time
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Invite returns a pending invitation of email to teamID, creating one when
// none is outstanding. Inviting the same address twice yields the same token.
func (s *InvitationService) Invite(ctx context.Context, teamID, email, inviterID string) (domain.Invitation, error) {
	now := s.now()
	l := slogx.FromContext(ctx)
	email = NormalizeEmail(email)
	if email == "" {
		return domain.Invitation{}, errors.New("invite: email is required")
	}

	// 1) existing members cannot be invited
	if u, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		member, err := s.Members.IsMember(ctx, teamID, u.ID)
		if err != nil {
			return domain.Invitation{}, err
		}
		if member {
			return domain.Invitation{}, ErrAlreadyTeamMember
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Invitation{}, fmt.Errorf("invite: lookup invitee: %w", err)
	}

	// 2) reuse a pending invitation
	inv, err := s.Store.Invitations().GetPendingInvitation(ctx, teamID, email, now)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Invitation{}, fmt.Errorf("invite: lookup pending: %w", err)
	}

	// 3) cap outstanding invitations
	pending, err := s.Store.Invitations().CountPendingInvitations(ctx, teamID, now)
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("invite: count pending: %w", err)
	}
	if pending >= s.maxPending() {
		return domain.Invitation{}, ErrTooManyPendingInvitations
	}

	// 4) mint
	token, err := cryptox.GenerateInvitationToken()
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("invite: generate token: %w", err)
	}
	inv = domain.Invitation{
		ID:        idx.NewAt(now).String(),
		TeamID:    teamID,
		Email:     email,
		InvitedBy: inviterID,
		Token:     token,
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Invitations().CreateInvitation(ctx, inv); err != nil {
		return domain.Invitation{}, fmt.Errorf("invite: create: %w", err)
	}

	l.Info("invitation created", slog.String("team_id", teamID), slog.String("invitation_id", inv.ID))
	s.recorder().Record(ctx, domain.ActivityEntry{
		Action:      domain.ActivityUserInvited,
		Description: "User invited to team",
		UserID:      inviterID,
		TeamID:      teamID,
		Metadata:    map[string]any{"email": email},
	})
	return inv, nil
}

// Accept redeems token for u. It reports false for any token that cannot be
// redeemed; only storage failures are returned as errors.
func (s *InvitationService) Accept(ctx context.Context, token string, u domain.User) (bool, error) {
	_, err := s.AcceptInvitation(ctx, token, u)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrInvitationNotFound),
		errors.Is(err, ErrInvitationExpired),
		errors.Is(err, ErrInvitationAlreadyUsed),
		errors.Is(err, ErrTeamNotFound),
		errors.Is(err, ErrTeamFull):
		return false, nil
	default:
		return false, err
	}
}

// AcceptInvitation redeems token for u and returns the used invitation. The
// invitation is marked used and the membership created in one transaction.
func (s *InvitationService) AcceptInvitation(ctx context.Context, token string, u domain.User) (domain.Invitation, error) {
	now := s.now()
	email := NormalizeEmail(u.Email)

	// 1) lookup; an invitation for someone else is indistinguishable from none
	inv, err := s.Store.Invitations().GetInvitationByToken(ctx, strings.TrimSpace(token))
	if errors.Is(err, store.ErrNotFound) {
		return domain.Invitation{}, ErrInvitationNotFound
	}
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("accept invitation: %w", err)
	}
	if inv.Email != email {
		return domain.Invitation{}, ErrInvitationNotFound
	}
	if inv.Used {
		return domain.Invitation{}, ErrInvitationAlreadyUsed
	}
	if inv.IsExpired(now) {
		return domain.Invitation{}, ErrInvitationExpired
	}

	team, err := s.Store.Teams().GetTeamByID(ctx, inv.TeamID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !team.Active) {
		return domain.Invitation{}, ErrTeamNotFound
	}
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("accept invitation: %w", err)
	}

	// 2) claim and join atomically
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.Members.checkCapacity(ctx, tx, inv.TeamID); err != nil {
			return err
		}

		claimed, err := tx.Invitations().MarkInvitationUsed(ctx, inv.Token, email, now)
		if err != nil {
			return fmt.Errorf("mark invitation used: %w", err)
		}
		if !claimed {
			return ErrInvitationAlreadyUsed
		}

		if _, err := s.Members.AddMemberTx(ctx, tx, inv.TeamID, u.ID, domain.TeamRoleMember, inv.InvitedBy); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Invitation{}, err
	}

	inv.Used = true
	inv.AcceptedAt = &now
	inv.UpdatedAt = now

	slogx.FromContext(ctx).Info("invitation accepted", slog.String("team_id", inv.TeamID), slog.String("user_id", u.ID))
	s.recorder().Record(ctx, domain.ActivityEntry{
		Action:      domain.ActivityUserJoined,
		Description: "User joined the team",
		UserID:      u.ID,
		TeamID:      inv.TeamID,
		Metadata:    map[string]any{"invited_by": inv.InvitedBy},
	})
	return inv, nil
}

func (s *InvitationService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultInvitationTTL
	}
	return s.TTL
}

func (s *InvitationService) maxPending() int {
	if s.MaxPending <= 0 {
		return DefaultMaxPending
	}
	return s.MaxPending
}

func (s *InvitationService) recorder() activity.Recorder {
	if s.Recorder == nil {
		return activity.Nop{}
	}
	return s.Recorder
}

func (s *InvitationService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
