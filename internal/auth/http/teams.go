package http

import (
	"net/http"

	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
	"github.com/Flamchu/Slack-like-backend/internal/auth/service"
	"github.com/Flamchu/Slack-like-backend/pkg/authsdk"
	"github.com/Flamchu/Slack-like-backend/pkg/httpx"
)

type TeamHandler struct {
	Teams   *service.TeamService
	Members *service.MembershipService
	Invites *service.InvitationService
}

// HandleList godoc
//
//	@Summary	List my teams
//	@Tags		Teams
//	@Produce	json
//	@Success	200	{object}	authsdk.TeamListResponse
//	@Security	BearerAuth
//	@Router		/v1/teams [get].
func (h *TeamHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())
	teams, err := h.Teams.ListForUser(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.TeamListResponse{
		Message: "Teams retrieved successfully",
		Data:    toTeamSummaries(teams),
	})
}

// HandleCreate godoc
//
//	@Summary		Create team
//	@Description	The caller becomes the team owner.
//	@Tags			Teams
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateTeamRequest	true	"Team"
//	@Success		201		{object}	authsdk.TeamResponse
//	@Failure		409		{object}	authsdk.APIError	"slug taken"
//	@Failure		422		{object}	authsdk.APIError	"validation_failed"
//	@Security		BearerAuth
//	@Router			/v1/teams [post].
func (h *TeamHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateTeamRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	p, _ := httpx.PrincipalFrom(r.Context())
	team, err := h.Teams.Create(r.Context(), p.UserID, service.CreateTeamInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, authsdk.TeamResponse{Message: "Team created successfully", Data: toTeam(team)})
}

// HandleGet godoc
//
//	@Summary	Show team
//	@Tags		Teams
//	@Produce	json
//	@Param		team	path		string	true	"Team ID"
//	@Success	200		{object}	authsdk.TeamResponse
//	@Failure	403		{object}	authsdk.APIError	"not_team_member"
//	@Failure	404		{object}	authsdk.APIError	"team_not_found"
//	@Security	BearerAuth
//	@Router		/v1/teams/{team} [get].
func (h *TeamHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	team, _ := teamFrom(r.Context())
	httpx.WriteJSON(w, http.StatusOK, authsdk.TeamResponse{Message: "Team retrieved successfully", Data: toTeam(team)})
}

// HandleUpdate godoc
//
//	@Summary	Update team
//	@Tags		Teams
//	@Accept		json
//	@Produce	json
//	@Param		team	path		string						true	"Team ID"
//	@Param		request	body		authsdk.UpdateTeamRequest	true	"Fields to change"
//	@Success	200		{object}	authsdk.TeamResponse
//	@Failure	403		{object}	authsdk.APIError	"not_team_admin"
//	@Security	BearerAuth
//	@Router		/v1/teams/{team} [patch].
func (h *TeamHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.UpdateTeamRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	p, _ := httpx.PrincipalFrom(r.Context())
	team, _ := teamFrom(r.Context())
	updated, err := h.Teams.Update(r.Context(), team.ID, p.UserID, service.UpdateTeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.TeamResponse{Message: "Team updated successfully", Data: toTeam(updated)})
}

// HandleArchive godoc
//
//	@Summary	Archive team
//	@Tags		Teams
//	@Produce	json
//	@Param		team	path		string	true	"Team ID"
//	@Success	200		{object}	authsdk.MessageResponse
//	@Failure	403		{object}	authsdk.APIError	"not_team_owner"
//	@Security	BearerAuth
//	@Router		/v1/teams/{team} [delete].
func (h *TeamHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())
	team, _ := teamFrom(r.Context())
	if err := h.Teams.Archive(r.Context(), team.ID, p.UserID); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Team deleted successfully"})
}

// HandleMembers godoc
//
//	@Summary	List team members
//	@Tags		Teams
//	@Produce	json
//	@Param		team	path		string	true	"Team ID"
//	@Success	200		{object}	authsdk.MembersResponse
//	@Security	BearerAuth
//	@Router		/v1/teams/{team}/members [get].
func (h *TeamHandler) HandleMembers(w http.ResponseWriter, r *http.Request) {
	team, _ := teamFrom(r.Context())
	members, err := h.Members.ListMembers(r.Context(), team.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MembersResponse{Message: "Team members retrieved successfully", Data: toMembers(members)})
}

// HandleInvite godoc
//
//	@Summary		Invite to team
//	@Description	Inviting an address with an outstanding invitation returns the same token.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			team	path		string					true	"Team ID"
//	@Param			request	body		authsdk.InviteRequest	true	"Invitee"
//	@Success		200		{object}	authsdk.InviteResponse
//	@Failure		403		{object}	authsdk.APIError	"not_team_admin"
//	@Failure		409		{object}	authsdk.APIError	"already_team_member"
//	@Security		BearerAuth
//	@Router			/v1/teams/{team}/invite [post].
func (h *TeamHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	var req authsdk.InviteRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	p, _ := httpx.PrincipalFrom(r.Context())
	team, _ := teamFrom(r.Context())
	inv, err := h.Invites.Invite(r.Context(), team.ID, req.Email, p.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.InviteResponse{
		Message:         "Invitation sent successfully",
		InvitationToken: inv.Token,
		ExpiresAt:       inv.ExpiresAt,
	})
}

// HandleJoin godoc
//
//	@Summary	Join team
//	@Tags		Invitations
//	@Accept		json
//	@Produce	json
//	@Param		request	body		authsdk.JoinTeamRequest	true	"Invitation token"
//	@Success	200		{object}	authsdk.TeamResponse
//	@Failure	404		{object}	authsdk.APIError	"invitation_not_found"
//	@Failure	410		{object}	authsdk.APIError	"invitation_expired, invitation_already_used"
//	@Security	BearerAuth
//	@Router		/v1/teams/join [post].
func (h *TeamHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.JoinTeamRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	p, _ := httpx.PrincipalFrom(r.Context())
	inv, err := h.Invites.AcceptInvitation(r.Context(), req.Token, domain.User{ID: p.UserID, Email: p.Email})
	if err != nil {
		writeError(w, r, err)
		return
	}

	team, err := h.Teams.Get(r.Context(), inv.TeamID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.TeamResponse{Message: "Successfully joined team", Data: toTeam(team)})
}

// HandleLeave godoc
//
//	@Summary	Leave team
//	@Tags		Teams
//	@Produce	json
//	@Param		team	path		string	true	"Team ID"
//	@Success	200		{object}	authsdk.MessageResponse
//	@Failure	403		{object}	authsdk.APIError	"owner_cannot_leave_team"
//	@Security	BearerAuth
//	@Router		/v1/teams/{team}/leave [delete].
func (h *TeamHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())
	team, _ := teamFrom(r.Context())
	if err := h.Members.Leave(r.Context(), team.ID, p.UserID); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Successfully left team"})
}
