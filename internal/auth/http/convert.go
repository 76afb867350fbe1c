package http

import (
	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
	"github.com/Flamchu/Slack-like-backend/pkg/authsdk"
)

func toUser(u domain.User) authsdk.User {
	return authsdk.User{
		ID:          u.ID,
		Name:        u.Name,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Role:        string(u.Role),
		LastLoginAt: u.LastLoginAt,
	}
}

func toToken(t domain.IssuedToken) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		ExpiresIn:   int(t.ExpiresIn),
	}
}

func toTeam(t domain.Team) authsdk.Team {
	return authsdk.Team{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		OwnerID:     t.OwnerID,
		Active:      t.Active,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTeamSummaries(in []domain.TeamSummary) []authsdk.TeamSummary {
	out := make([]authsdk.TeamSummary, 0, len(in))
	for _, t := range in {
		out = append(out, authsdk.TeamSummary{
			Team:        toTeam(t.Team),
			Role:        string(t.Role),
			MemberCount: t.MemberCount,
		})
	}
	return out
}

func toMembers(in []domain.MemberProfile) []authsdk.Member {
	out := make([]authsdk.Member, 0, len(in))
	for _, m := range in {
		out = append(out, authsdk.Member{
			ID:       m.UserID,
			Name:     m.Name,
			Email:    m.Email,
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt,
		})
	}
	return out
}
