package lsql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

var (
	ErrDatabaseEngineNotSupported = fmt.Errorf("database engine not supported")
	ErrTransactionContext         = fmt.Errorf("tried to use database with a transaction context")
	ErrNoTransactionContext       = fmt.Errorf("tried to use transaction without a transaction context")
	ErrNestedTransaction          = fmt.Errorf("can't nest transactions")
	ErrConstraintViolation        = errors.New("constraint violation")
	ErrMissingAddress             = errors.New("database address is required: set SQL_DB_ADDRESS")
	ErrInMemorySqlite             = errors.New("in-memory sqlite is not supported: set SQL_DB_ADDRESS to a file")
)

const postgresUniqueViolation = "23505"

// IsUniqueViolation reports whether err was raised by a UNIQUE constraint or index on any supported engine.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConstraintViolation) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == postgresUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlitelib.SQLITE_CONSTRAINT_UNIQUE || liteErr.Code() == sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	// go-sqlite3 only exposes typed errors when built with cgo
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
