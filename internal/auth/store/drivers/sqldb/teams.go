package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
)

type teamsRepo struct {
	q *queries
}

const teamColumns = `t.id, t.name, t.slug, t.description, t.owner_id, t.is_active, t.created_at, t.updated_at`

func scanTeam(row interface{ Scan(...any) error }, extra ...any) (domain.Team, error) {
	var (
		t    domain.Team
		desc sql.NullString
	)
	dest := []any{&t.ID, &t.Name, &t.Slug, &desc, &t.OwnerID, &t.Active, &t.CreatedAt, &t.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.Team{}, err
	}
	t.Description = mapNullString(desc)
	return t, nil
}

func (r *teamsRepo) GetTeamByID(ctx context.Context, id string) (domain.Team, error) {
	t, err := scanTeam(r.q.queryRow(ctx, `SELECT `+teamColumns+` FROM teams t WHERE t.id = ?`, id))
	if err != nil {
		return domain.Team{}, mapNotFound(err)
	}
	return t, nil
}

func (r *teamsRepo) CreateTeam(ctx context.Context, t domain.Team) error {
	now := t.CreatedAt.UTC()
	_, err := r.q.exec(ctx, `
		INSERT INTO teams (id, name, slug, description, owner_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Slug, mapStringNull(t.Description), t.OwnerID, t.Active, now, now,
	)
	return r.q.mapWriteErr(err)
}

func (r *teamsRepo) UpdateTeam(ctx context.Context, t domain.Team) error {
	res, err := r.q.exec(ctx,
		`UPDATE teams SET name = ?, description = ?, updated_at = ? WHERE id = ? AND is_active = TRUE`,
		t.Name, mapStringNull(t.Description), t.UpdatedAt.UTC(), t.ID,
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

func (r *teamsRepo) ArchiveTeam(ctx context.Context, id string, at time.Time) error {
	res, err := r.q.exec(ctx,
		`UPDATE teams SET is_active = FALSE, updated_at = ? WHERE id = ? AND is_active = TRUE`,
		at.UTC(), id,
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

func (r *teamsRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	if err := r.q.queryRow(ctx, `SELECT COUNT(*) FROM teams WHERE slug = ?`, slug).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *teamsRepo) ListTeamsForUser(ctx context.Context, userID string) ([]domain.TeamSummary, error) {
	rows, err := r.q.query(ctx, `
		SELECT `+teamColumns+`, m.role,
			(SELECT COUNT(*) FROM team_members c WHERE c.team_id = t.id AND c.is_active = TRUE)
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = ? AND m.is_active = TRUE AND t.is_active = TRUE
		ORDER BY t.created_at, t.id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TeamSummary
	for rows.Next() {
		var (
			role  string
			count int
		)
		t, err := scanTeam(rows, &role, &count)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.TeamSummary{Team: t, Role: domain.TeamRole(role), MemberCount: count})
	}
	return out, rows.Err()
}
