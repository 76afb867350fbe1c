package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Flamchu/Slack-like-backend/internal/auth/store/drivers/sqldb"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// memoryDSN is used when callers ask for ":memory:". A private in-memory
// database only exists on the connection that created it, so the pool is
// pinned to a single connection.
const memoryDSN = "file::memory:?_time_format=sqlite&_pragma=foreign_keys(1)"

// FileDSN builds the DSN used for an on-disk database: WAL, a busy timeout so
// concurrent writers queue instead of failing, and immediate transactions so
// a transaction takes the write lock up front.
func FileDSN(path string) string {
	return fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate&_time_format=sqlite",
		path,
	)
}

// NewStore opens a sqlite database. Pass ":memory:" for an ephemeral
// database (tests), or a DSN from FileDSN.
func NewStore(dsn string) (*sqldb.Store, error) {
	memory := dsn == ":memory:"
	if memory {
		dsn = memoryDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if memory {
		db.SetMaxOpenConns(1)
	}

	// Enforce FKs for DSNs that did not ask for it
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return sqldb.New(db, Dialect(), applyMigrations), nil
}

// Dialect describes sqlite for the shared sql repositories.
func Dialect() sqldb.Dialect {
	return sqldb.Dialect{
		Name:              "sqlite",
		Rebind:            sqldb.RebindQuestion,
		IsUniqueViolation: isUniqueViolation,
	}
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	// Older driver builds only surface the message.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
