package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
	"github.com/Flamchu/Slack-like-backend/internal/auth/service"
	"github.com/Flamchu/Slack-like-backend/pkg/httpx"
	"github.com/Flamchu/Slack-like-backend/pkg/idx"
	"github.com/Flamchu/Slack-like-backend/pkg/slogx"
)

// GuardStep either returns an enriched request to continue with, or an error
// that stops the pipeline.
type GuardStep func(r *http.Request) (*http.Request, error)

var errGuardMisconfigured = errors.New("guard: step requires an earlier step")

type guardCtxKey int

const (
	bearerKey guardCtxKey = iota
	teamKey
)

// Guard builds authorization pipelines for routes.
type Guard struct {
	Tokens  *service.TokenService
	Members *service.MembershipService
	Teams   *service.TeamService
}

// Pipeline runs steps in order before next. The first error is written as
// the response.
func (g *Guard) Pipeline(steps ...GuardStep) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, step := range steps {
				var err error
				if r, err = step(r); err != nil {
					writeError(w, r, err)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Bearer only extracts the token. The refresh endpoint uses it so expired
// tokens get through.
func (g *Guard) Bearer() httpx.Middleware {
	return g.Pipeline(g.BearerStep)
}

func (g *Guard) Authenticated() httpx.Middleware {
	return g.Pipeline(g.BearerStep, g.AuthenticateStep)
}

func (g *Guard) TeamMember() httpx.Middleware {
	return g.Pipeline(g.BearerStep, g.AuthenticateStep, g.TeamStep, g.MemberStep)
}

func (g *Guard) TeamAdmin() httpx.Middleware {
	return g.Pipeline(g.BearerStep, g.AuthenticateStep, g.TeamStep, g.AdminStep)
}

// BearerStep reads "Authorization: Bearer <token>".
func (g *Guard) BearerStep(r *http.Request) (*http.Request, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return r, service.ErrTokenNotProvided
	}
	return r.WithContext(context.WithValue(r.Context(), bearerKey, token)), nil
}

// AuthenticateStep validates the bearer token and attaches the principal.
func (g *Guard) AuthenticateStep(r *http.Request) (*http.Request, error) {
	raw, ok := bearerFrom(r.Context())
	if !ok {
		return r, errGuardMisconfigured
	}

	u, err := g.Tokens.Validate(r.Context(), raw)
	if err != nil {
		return r, err
	}

	ctx := httpx.WithPrincipal(r.Context(), httpx.Principal{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
		Token:  raw,
	})
	ctx = slogx.WithUser(ctx, u.ID)
	return r.WithContext(ctx), nil
}

// TeamStep resolves the {team} path value to an active team.
func (g *Guard) TeamStep(r *http.Request) (*http.Request, error) {
	teamID := r.PathValue("team")
	if !idx.Valid(teamID) {
		return r, service.ErrTeamNotFound
	}

	team, err := g.Teams.Get(r.Context(), teamID)
	if err != nil {
		return r, err
	}
	ctx := context.WithValue(r.Context(), teamKey, team)
	ctx = slogx.WithTeam(ctx, team.ID)
	return r.WithContext(ctx), nil
}

func (g *Guard) MemberStep(r *http.Request) (*http.Request, error) {
	p, team, err := principalAndTeam(r)
	if err != nil {
		return r, err
	}

	ok, err := g.Members.IsMember(r.Context(), team.ID, p.UserID)
	if err != nil {
		return r, err
	}
	if !ok {
		return r, service.ErrNotTeamMember
	}
	return r, nil
}

func (g *Guard) AdminStep(r *http.Request) (*http.Request, error) {
	p, team, err := principalAndTeam(r)
	if err != nil {
		return r, err
	}

	ok, err := g.Members.IsAdmin(r.Context(), team.ID, p.UserID)
	if err != nil {
		return r, err
	}
	if !ok {
		return r, service.ErrNotTeamAdmin
	}
	return r, nil
}

func principalAndTeam(r *http.Request) (httpx.Principal, domain.Team, error) {
	p, ok := httpx.PrincipalFrom(r.Context())
	if !ok {
		return httpx.Principal{}, domain.Team{}, errGuardMisconfigured
	}
	team, ok := teamFrom(r.Context())
	if !ok {
		return httpx.Principal{}, domain.Team{}, errGuardMisconfigured
	}
	return p, team, nil
}

func bearerFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(bearerKey).(string)
	return token, ok && token != ""
}

func teamFrom(ctx context.Context) (domain.Team, bool) {
	t, ok := ctx.Value(teamKey).(domain.Team)
	return t, ok
}
