package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/store"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run
// against either.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Migrator applies the driver's embedded migrations to db.
type Migrator func(db *sql.DB) error

// Store implements store.Store on database/sql. The sqlite and postgres
// drivers construct it with their own Dialect and Migrator.
type Store struct {
	db      *sql.DB
	q       *queries
	migrate Migrator
}

func New(db *sql.DB, dialect Dialect, migrate Migrator) *Store {
	return &Store{
		db:      db,
		q:       &queries{db: db, dialect: dialect},
		migrate: migrate,
	}
}

// DB exposes the underlying pool for driver specific setup.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ApplyMigrations runs the driver's embedded migrations.
func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return errors.New("sqldb: no migrator configured")
	}
	return s.migrate(s.db)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx, s.q.dialect), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users                 { return &usersRepo{q: s.q} }
func (s *Store) Teams() store.Teams                 { return &teamsRepo{q: s.q} }
func (s *Store) Memberships() store.Memberships     { return &membershipsRepo{q: s.q} }
func (s *Store) Invitations() store.Invitations     { return &invitationsRepo{q: s.q} }
func (s *Store) RevokedTokens() store.RevokedTokens { return &revokedTokensRepo{q: s.q} }
func (s *Store) ActivityLogs() store.ActivityLogs   { return &activityLogsRepo{q: s.q} }

// queries binds a DBTX to a dialect so repositories only deal with '?' SQL.
type queries struct {
	db      DBTX
	dialect Dialect
}

func (q *queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.dialect.Rebind(query), args...)
}

func (q *queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.dialect.Rebind(query), args...)
}

func (q *queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.dialect.Rebind(query), args...)
}

// mapWriteErr turns driver unique violations into store.ErrAlreadyExists.
func (q *queries) mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if q.dialect.IsUniqueViolation != nil && q.dialect.IsUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// rowsAffectedOne reports whether a write touched exactly one row.
func rowsAffectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
