package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
)

type usersRepo struct {
	q *queries
}

const userColumns = `id, email, name, first_name, last_name, password_hash, role, is_active, last_login_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u         domain.User
		role      string
		lastLogin sql.NullTime
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.FirstName,
		&u.LastName,
		&u.PasswordHash,
		&role,
		&u.Active,
		&lastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.Role = domain.UserRole(role)
	u.LastLoginAt = mapNullTimePtr(lastLogin)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := u.CreatedAt.UTC()
	_, err := r.q.exec(ctx, `
		INSERT INTO users (id, email, name, first_name, last_name, password_hash, role, is_active, last_login_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Email,
		u.Name,
		u.FirstName,
		u.LastName,
		u.PasswordHash,
		string(u.Role),
		u.Active,
		mapOptionalTime(u.LastLoginAt),
		now,
		now,
	)
	return r.q.mapWriteErr(err)
}

func (r *usersRepo) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.q.exec(ctx,
		`UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), at.UTC(), userID,
	)
	return err
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool) error {
	res, err := r.q.exec(ctx,
		`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), userID,
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
