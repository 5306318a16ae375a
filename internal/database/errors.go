package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a unique constraint failure from Postgres or SQLite.
func IsUniqueViolation(err error) bool {
	return matchConstraint(err, pgUniqueViolation, "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err is a foreign key failure from Postgres or SQLite.
func IsForeignKeyViolation(err error) bool {
	return matchConstraint(err, pgForeignKeyViolation, "FOREIGN KEY constraint failed")
}

func matchConstraint(err error, pgCode, sqliteMsg string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgCode
	}
	return strings.Contains(err.Error(), sqliteMsg)
}
