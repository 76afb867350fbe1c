package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
)

type activityLogsRepo struct {
	q *queries
}

func (r *activityLogsRepo) CreateActivityLog(ctx context.Context, e domain.ActivityEntry) error {
	var metadata sql.NullString
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("encode activity metadata: %w", err)
		}
		metadata = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := r.q.exec(ctx, `
		INSERT INTO activity_logs (id, action, description, user_id, team_id, metadata, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.Action,
		e.Description,
		mapStringNull(e.UserID),
		mapStringNull(e.TeamID),
		metadata,
		mapStringNull(e.IPAddress),
		mapStringNull(e.UserAgent),
		e.CreatedAt.UTC(),
	)
	return err
}

func (r *activityLogsRepo) ListTeamActivity(ctx context.Context, teamID string, limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.q.query(ctx, `
		SELECT id, action, description, user_id, team_id, metadata, ip_address, user_agent, created_at
		FROM activity_logs
		WHERE team_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		teamID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ActivityEntry
	for rows.Next() {
		var (
			e                             domain.ActivityEntry
			userID, team, meta, ip, agent sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.Description, &userID, &team, &meta, &ip, &agent, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.UserID = mapNullString(userID)
		e.TeamID = mapNullString(team)
		e.IPAddress = mapNullString(ip)
		e.UserAgent = mapNullString(agent)
		if meta.Valid && meta.String != "" {
			if err := json.Unmarshal([]byte(meta.String), &e.Metadata); err != nil {
				return nil, fmt.Errorf("decode activity metadata: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *activityLogsRepo) DeleteActivityBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.q.exec(ctx, `DELETE FROM activity_logs WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
