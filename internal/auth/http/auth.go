package http

import (
	"net/http"

	"github.com/Flamchu/Slack-like-backend/internal/auth/service"
	"github.com/Flamchu/Slack-like-backend/pkg/authsdk"
	"github.com/Flamchu/Slack-like-backend/pkg/httpx"
)

type AuthHandler struct {
	Users  *service.UserService
	Tokens *service.TokenService
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Create an account and receive an access token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"Registration"
//	@Success		201		{object}	authsdk.AuthResponse
//	@Failure		409		{object}	authsdk.APIError	"email already registered"
//	@Failure		422		{object}	authsdk.APIError	"validation_failed"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	u, err := h.Users.Register(r.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	tok, err := h.Tokens.Issue(r.Context(), u)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.AuthResponse{
		Message:       "User registered successfully",
		User:          toUser(u),
		TokenResponse: toToken(tok),
	})
}

// HandleLogin godoc
//
//	@Summary		Login
//	@Description	Exchange email and password for an access token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.AuthResponse
//	@Failure		401		{object}	authsdk.APIError	"invalid_credentials, user_inactive"
//	@Failure		429		{object}	authsdk.APIError	"rate_limit_exceeded"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	u, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tok, err := h.Tokens.Issue(r.Context(), u)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.AuthResponse{
		Message:       "Login successful",
		User:          toUser(u),
		TokenResponse: toToken(tok),
	})
}

// HandleLogout godoc
//
//	@Summary		Logout
//	@Description	Revoke the presented access token.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse
//	@Failure		401	{object}	authsdk.APIError
//	@Security		BearerAuth
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())
	if err := h.Tokens.Invalidate(r.Context(), p.Token); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Logout successful"})
}

// HandleRefresh godoc
//
//	@Summary		Refresh
//	@Description	Exchange a token, which may be expired, for a new one. The presented token is revoked.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.TokenResponse
//	@Failure		401	{object}	authsdk.APIError	"token_refresh_failed, token_revoked, ..."
//	@Security		BearerAuth
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	raw, _ := bearerFrom(r.Context())
	tok, err := h.Tokens.Refresh(r.Context(), raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toToken(tok))
}

// HandleProfile godoc
//
//	@Summary		Profile
//	@Description	Return the authenticated user.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.ProfileResponse
//	@Failure		401	{object}	authsdk.APIError
//	@Security		BearerAuth
//	@Router			/v1/auth/profile [get].
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())
	u, err := h.Users.Profile(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{User: toUser(u)})
}
