package sqldb

import (
	"context"
	"database/sql"

	"github.com/Flamchu/Slack-like-backend/internal/auth/store"
)

type txStore struct {
	tx *sql.Tx
	q  *queries
}

func newTx(tx *sql.Tx, dialect Dialect) *txStore {
	return &txStore{
		tx: tx,
		q:  &queries{db: tx, dialect: dialect},
	}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller commits or rolls back; the pool stays open

// Ping is a no-op for transactions, the connection is already held.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                 { return &usersRepo{q: t.q} }
func (t *txStore) Teams() store.Teams                 { return &teamsRepo{q: t.q} }
func (t *txStore) Memberships() store.Memberships     { return &membershipsRepo{q: t.q} }
func (t *txStore) Invitations() store.Invitations     { return &invitationsRepo{q: t.q} }
func (t *txStore) RevokedTokens() store.RevokedTokens { return &revokedTokensRepo{q: t.q} }
func (t *txStore) ActivityLogs() store.ActivityLogs   { return &activityLogsRepo{q: t.q} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx is opened
