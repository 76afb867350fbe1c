package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/activity"
	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
	"github.com/Flamchu/Slack-like-backend/internal/auth/store"
	"github.com/Flamchu/Slack-like-backend/pkg/idx"
	"github.com/Flamchu/Slack-like-backend/pkg/slogx"
)

// maxSlugLength bounds derived slugs, leaving room for a numeric suffix.
const maxSlugLength = 60

type TeamService struct {
	Store    store.Store
	Members  *MembershipService
	Recorder activity.Recorder
	Now      func() time.Time
}

type CreateTeamInput struct {
	Name        string
	Slug        string // derived from Name when empty
	Description string
}

// UpdateTeamInput carries the fields to change. Nil fields are left alone.
type UpdateTeamInput struct {
	Name        *string
	Description *string
}

// Create inserts a team and makes ownerID its owner in the same transaction.
func (s *TeamService) Create(ctx context.Context, ownerID string, in CreateTeamInput) (domain.Team, error) {
	now := s.now()

	slug, err := s.resolveSlug(ctx, in)
	if err != nil {
		return domain.Team{}, err
	}

	t := domain.Team{
		ID:          idx.NewAt(now).String(),
		Name:        strings.TrimSpace(in.Name),
		Slug:        slug,
		Description: strings.TrimSpace(in.Description),
		OwnerID:     ownerID,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Teams().CreateTeam(ctx, t); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrSlugTaken
			}
			return fmt.Errorf("create team: %w", err)
		}
		_, err := s.Members.AddMemberTx(ctx, tx, t.ID, ownerID, domain.TeamRoleOwner, "")
		return err
	})
	if err != nil {
		return domain.Team{}, err
	}

	slogx.FromContext(ctx).Info("team created", slog.String("team_id", t.ID), slog.String("slug", t.Slug))
	s.recorder().Record(ctx, domain.ActivityEntry{
		Action:      domain.ActivityTeamCreated,
		Description: fmt.Sprintf("Team '%s' was created", t.Name),
		UserID:      ownerID,
		TeamID:      t.ID,
		Metadata:    map[string]any{"team_name": t.Name},
	})
	return t, nil
}

// Get returns an active team.
func (s *TeamService) Get(ctx context.Context, teamID string) (domain.Team, error) {
	t, err := s.Store.Teams().GetTeamByID(ctx, teamID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Team{}, ErrTeamNotFound
	}
	if err != nil {
		return domain.Team{}, fmt.Errorf("get team: %w", err)
	}
	if !t.Active {
		return domain.Team{}, ErrTeamNotFound
	}
	return t, nil
}

// Update changes the name and description. Admin rights are checked by the
// caller.
func (s *TeamService) Update(ctx context.Context, teamID, actorID string, in UpdateTeamInput) (domain.Team, error) {
	t, err := s.Get(ctx, teamID)
	if err != nil {
		return domain.Team{}, err
	}

	var fields []string
	if in.Name != nil {
		t.Name = strings.TrimSpace(*in.Name)
		fields = append(fields, "name")
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
		fields = append(fields, "description")
	}
	if len(fields) == 0 {
		return t, nil
	}
	t.UpdatedAt = s.now()

	if err := s.Store.Teams().UpdateTeam(ctx, t); err != nil {
		return domain.Team{}, fmt.Errorf("update team: %w", err)
	}

	s.recorder().Record(ctx, domain.ActivityEntry{
		Action:      domain.ActivityTeamUpdated,
		Description: fmt.Sprintf("Team '%s' was updated", t.Name),
		UserID:      actorID,
		TeamID:      t.ID,
		Metadata:    map[string]any{"updated_fields": fields},
	})
	return t, nil
}

// Archive deactivates a team. Only the owner may do this.
func (s *TeamService) Archive(ctx context.Context, teamID, actorID string) error {
	t, err := s.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if t.OwnerID != actorID {
		return ErrNotTeamOwner
	}

	if err := s.Store.Teams().ArchiveTeam(ctx, teamID, s.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("archive team: %w", err)
	}

	slogx.FromContext(ctx).Info("team archived", slog.String("team_id", teamID))
	s.recorder().Record(ctx, domain.ActivityEntry{
		Action:      domain.ActivityTeamArchived,
		Description: fmt.Sprintf("Team '%s' was archived", t.Name),
		UserID:      actorID,
		TeamID:      teamID,
		Metadata:    map[string]any{"team_name": t.Name},
	})
	return nil
}

// ListForUser returns the active teams userID belongs to.
func (s *TeamService) ListForUser(ctx context.Context, userID string) ([]domain.TeamSummary, error) {
	return s.Members.ListTeamsForUser(ctx, userID)
}

// resolveSlug uses the requested slug verbatim or derives a free one from
// the name by appending -2, -3, ...
func (s *TeamService) resolveSlug(ctx context.Context, in CreateTeamInput) (string, error) {
	if in.Slug != "" {
		taken, err := s.Store.Teams().SlugExists(ctx, in.Slug)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if taken {
			return "", ErrSlugTaken
		}
		return in.Slug, nil
	}

	base := Slugify(in.Name)
	if base == "" {
		base = "team"
	}
	candidate := base
	for n := 2; ; n++ {
		taken, err := s.Store.Teams().SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

// Slugify lowercases s and collapses every run of non-alphanumerics to a
// single dash.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if len(out) > maxSlugLength {
		out = strings.TrimSuffix(out[:maxSlugLength], "-")
	}
	return out
}

func (s *TeamService) recorder() activity.Recorder {
	if s.Recorder == nil {
		return activity.Nop{}
	}
	return s.Recorder
}

func (s *TeamService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
