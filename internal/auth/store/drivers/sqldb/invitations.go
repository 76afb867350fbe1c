package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
)

type invitationsRepo struct {
	q *queries
}

const invitationColumns = `id, team_id, email, invited_by, token, expires_at, used, accepted_at, created_at, updated_at`

func scanInvitation(row interface{ Scan(...any) error }) (domain.Invitation, error) {
	var (
		inv        domain.Invitation
		acceptedAt sql.NullTime
	)
	err := row.Scan(
		&inv.ID,
		&inv.TeamID,
		&inv.Email,
		&inv.InvitedBy,
		&inv.Token,
		&inv.ExpiresAt,
		&inv.Used,
		&acceptedAt,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return domain.Invitation{}, err
	}
	inv.AcceptedAt = mapNullTimePtr(acceptedAt)
	return inv, nil
}

func (r *invitationsRepo) GetInvitationByToken(ctx context.Context, token string) (domain.Invitation, error) {
	inv, err := scanInvitation(r.q.queryRow(ctx,
		`SELECT `+invitationColumns+` FROM team_invitations WHERE token = ?`, token))
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) GetPendingInvitation(
	ctx context.Context,
	teamID, email string,
	now time.Time,
) (domain.Invitation, error) {
	inv, err := scanInvitation(r.q.queryRow(ctx, `
		SELECT `+invitationColumns+`
		FROM team_invitations
		WHERE team_id = ? AND email = ? AND used = FALSE AND expires_at > ?
		ORDER BY created_at DESC
		LIMIT 1`,
		teamID, email, now.UTC(),
	))
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) CountPendingInvitations(ctx context.Context, teamID string, now time.Time) (int, error) {
	var n int
	err := r.q.queryRow(ctx,
		`SELECT COUNT(*) FROM team_invitations WHERE team_id = ? AND used = FALSE AND expires_at > ?`,
		teamID, now.UTC(),
	).Scan(&n)
	return n, err
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	created := inv.CreatedAt.UTC()
	_, err := r.q.exec(ctx, `
		INSERT INTO team_invitations (id, team_id, email, invited_by, token, expires_at, used, accepted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, FALSE, NULL, ?, ?)`,
		inv.ID, inv.TeamID, inv.Email, inv.InvitedBy, inv.Token, inv.ExpiresAt.UTC(), created, created,
	)
	return r.q.mapWriteErr(err)
}

func (r *invitationsRepo) MarkInvitationUsed(ctx context.Context, token, email string, now time.Time) (bool, error) {
	at := now.UTC()
	res, err := r.q.exec(ctx, `
		UPDATE team_invitations
		SET used = TRUE, accepted_at = ?, updated_at = ?
		WHERE token = ? AND email = ? AND used = FALSE AND expires_at > ?`,
		at, at, token, email, at,
	)
	if err != nil {
		return false, err
	}
	return rowsAffectedOne(res)
}
