package sqldb

import (
	"context"
	"time"
)

type revokedTokensRepo struct {
	q *queries
}

func (r *revokedTokensRepo) PutRevokedToken(ctx context.Context, fingerprint string, expiresAt time.Time) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO revoked_tokens (fingerprint, expires_at, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (fingerprint) DO UPDATE SET expires_at = excluded.expires_at`,
		fingerprint, expiresAt.UTC(), time.Now().UTC(),
	)
	return err
}

func (r *revokedTokensRepo) IsTokenRevoked(ctx context.Context, fingerprint string, now time.Time) (bool, error) {
	var n int
	err := r.q.queryRow(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE fingerprint = ? AND expires_at > ?`,
		fingerprint, now.UTC(),
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *revokedTokensRepo) DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
