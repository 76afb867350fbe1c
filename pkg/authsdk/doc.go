/*
Package authsdk is a Go client for the chat authentication service.

# SDKClient vs Session

  - SDKClient: unauthenticated operations (register, login, refresh, health)
  - Session: authenticated operations, with automatic token refresh

	client := authsdk.NewSDKClient("http://localhost:8080")

	session, err := client.AuthenticateWithPassword(ctx, "ada@example.com", "secret-password")
	if err != nil {
		return err
	}

	team, err := session.CreateTeam(ctx, authsdk.CreateTeamRequest{Name: "Engineering"})
	invite, err := session.Invite(ctx, team.ID, "bob@example.com")

The invitee redeems the token from their own session:

	team, err := bobSession.JoinTeam(ctx, invite.InvitationToken)

# Token Refresh

Access tokens are short lived. A Session refreshes its token shortly before
it expires by calling POST /v1/auth/refresh with the current token. The
server revokes the replaced token, so a token copied out of a Session with
AccessToken stops working after the next refresh.

# Errors

Failed calls return *APIError, which carries the HTTP status and a stable
machine code:

	_, err := session.JoinTeam(ctx, token)
	if authsdk.HasCode(err, authsdk.CodeInvitationExpired) {
		// ask for a new invitation
	}

The server writes the same type, so the codes in this package are the full
list the API can return.
*/
package authsdk
