package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
)

type membershipsRepo struct {
	q *queries
}

func (r *membershipsRepo) GetActiveMembership(ctx context.Context, teamID, userID string) (domain.Membership, error) {
	var (
		m         domain.Membership
		role      string
		invitedBy sql.NullString
	)
	err := r.q.queryRow(ctx, `
		SELECT id, team_id, user_id, role, is_active, invited_by, joined_at, created_at, updated_at
		FROM team_members
		WHERE team_id = ? AND user_id = ? AND is_active = TRUE`,
		teamID, userID,
	).Scan(&m.ID, &m.TeamID, &m.UserID, &role, &m.Active, &invitedBy, &m.JoinedAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	m.Role = domain.TeamRole(role)
	m.InvitedBy = mapNullString(invitedBy)
	return m, nil
}

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	joined := m.JoinedAt.UTC()
	_, err := r.q.exec(ctx, `
		INSERT INTO team_members (id, team_id, user_id, role, is_active, invited_by, joined_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, TRUE, ?, ?, ?, ?)`,
		m.ID, m.TeamID, m.UserID, string(m.Role), mapStringNull(m.InvitedBy), joined, joined, joined,
	)
	return r.q.mapWriteErr(err)
}

func (r *membershipsRepo) DeactivateMembership(ctx context.Context, teamID, userID string, at time.Time) error {
	res, err := r.q.exec(ctx, `
		UPDATE team_members SET is_active = FALSE, updated_at = ?
		WHERE team_id = ? AND user_id = ? AND is_active = TRUE`,
		at.UTC(), teamID, userID,
	)
	if err != nil {
		return err
	}
	ok, err := rowsAffectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *membershipsRepo) CountActiveMembers(ctx context.Context, teamID string) (int, error) {
	var n int
	err := r.q.queryRow(ctx,
		`SELECT COUNT(*) FROM team_members WHERE team_id = ? AND is_active = TRUE`,
		teamID,
	).Scan(&n)
	return n, err
}

func (r *membershipsRepo) ListActiveMembers(ctx context.Context, teamID string) ([]domain.MemberProfile, error) {
	rows, err := r.q.query(ctx, `
		SELECT u.id, u.name, u.email, m.role, m.joined_at
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = ? AND m.is_active = TRUE
		ORDER BY m.joined_at, u.id`,
		teamID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MemberProfile
	for rows.Next() {
		var (
			p    domain.MemberProfile
			role string
		)
		if err := rows.Scan(&p.UserID, &p.Name, &p.Email, &role, &p.JoinedAt); err != nil {
			return nil, err
		}
		p.Role = domain.TeamRole(role)
		out = append(out, p)
	}
	return out, rows.Err()
}
