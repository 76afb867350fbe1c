package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/activity"
	"github.com/Flamchu/Slack-like-backend/internal/auth/revocation"
	"github.com/Flamchu/Slack-like-backend/internal/auth/service"
	"github.com/Flamchu/Slack-like-backend/internal/auth/store"
	"github.com/Flamchu/Slack-like-backend/pkg/httpx"
	"github.com/Flamchu/Slack-like-backend/pkg/slogx"

	_ "github.com/Flamchu/Slack-like-backend/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store           store.Store
	RevocationCache revocation.Cache

	TokenService      *service.TokenService
	UserService       *service.UserService
	TeamService       *service.TeamService
	MembershipService *service.MembershipService
	InvitationService *service.InvitationService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		activity.Middleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	guard := &Guard{
		Tokens:  r.TokenService,
		Members: r.MembershipService,
		Teams:   r.TeamService,
	}

	r.registerAuth(guard)
	r.registerTeams(guard)
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Slack-like Identity Service API
//	@version		0.1.0
//	@description	Accounts, teams, memberships and invitations for the chat backend.
//	@description
//	@description				Access tokens are HMAC-signed JWTs. Expired tokens can be refreshed within the refresh window.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth(guard *Guard) {
	h := &AuthHandler{Users: r.UserService, Tokens: r.TokenService}

	// Account creation and password login are brute-force targets
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// Refresh accepts expired tokens, so it only extracts the bearer
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			guard.Bearer(),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			guard.Authenticated(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/auth/profile",
		httpx.Chain(http.HandlerFunc(h.HandleProfile),
			guard.Authenticated(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerTeams(guard *Guard) {
	h := &TeamHandler{
		Teams:   r.TeamService,
		Members: r.MembershipService,
		Invites: r.InvitationService,
	}

	r.Mux.Handle("GET /v1/teams",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			guard.Authenticated(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/teams",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			guard.Authenticated(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// More specific than /v1/teams/{team} so it wins the match
	r.Mux.Handle("POST /v1/teams/join",
		httpx.Chain(http.HandlerFunc(h.HandleJoin),
			guard.Authenticated(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/teams/{team}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			guard.TeamMember(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/teams/{team}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			guard.TeamAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Ownership is checked by the service
	r.Mux.Handle("DELETE /v1/teams/{team}",
		httpx.Chain(http.HandlerFunc(h.HandleArchive),
			guard.TeamMember(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/teams/{team}/members",
		httpx.Chain(http.HandlerFunc(h.HandleMembers),
			guard.TeamMember(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/teams/{team}/invite",
		httpx.Chain(http.HandlerFunc(h.HandleInvite),
			guard.TeamAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/teams/{team}/leave",
		httpx.Chain(http.HandlerFunc(h.HandleLeave),
			guard.TeamMember(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.RevocationCache),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
