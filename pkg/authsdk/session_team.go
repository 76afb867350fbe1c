package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

func teamPath(teamID string, suffix string) string {
	return "/v1/teams/" + url.PathEscape(teamID) + suffix
}

// ListTeams returns the teams the session user belongs to.
func (s *Session) ListTeams(ctx context.Context) ([]TeamSummary, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/teams", nil)
	if err != nil {
		return nil, err
	}

	var out TeamListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreateTeam creates a team owned by the session user.
func (s *Session) CreateTeam(ctx context.Context, req CreateTeamRequest) (*Team, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/teams", req)
	if err != nil {
		return nil, err
	}

	var out TeamResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// GetTeam requires membership of the team.
func (s *Session) GetTeam(ctx context.Context, teamID string) (*Team, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, teamPath(teamID, ""), nil)
	if err != nil {
		return nil, err
	}

	var out TeamResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateTeam requires admin rights in the team.
func (s *Session) UpdateTeam(ctx context.Context, teamID string, req UpdateTeamRequest) (*Team, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPatch, teamPath(teamID, ""), req)
	if err != nil {
		return nil, err
	}

	var out TeamResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ArchiveTeam deactivates the team. Only the owner may do this.
func (s *Session) ArchiveTeam(ctx context.Context, teamID string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, teamPath(teamID, ""), nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// ListMembers requires membership of the team.
func (s *Session) ListMembers(ctx context.Context, teamID string) ([]Member, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, teamPath(teamID, "/members"), nil)
	if err != nil {
		return nil, err
	}

	var out MembersResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Invite requires admin rights. Inviting the same address again returns the
// outstanding token.
func (s *Session) Invite(ctx context.Context, teamID, email string) (*InviteResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, teamPath(teamID, "/invite"), InviteRequest{Email: email})
	if err != nil {
		return nil, err
	}

	var out InviteResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// JoinTeam redeems an invitation addressed to the session user.
func (s *Session) JoinTeam(ctx context.Context, token string) (*Team, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/teams/join", JoinTeamRequest{Token: token})
	if err != nil {
		return nil, err
	}

	var out TeamResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// LeaveTeam ends the session user's membership. Owners cannot leave.
func (s *Session) LeaveTeam(ctx context.Context, teamID string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, teamPath(teamID, "/leave"), nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}
