// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"strings"

	"mdd/internal/database"
	"mdd/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

// paginate applies limit/offset; a non-positive limit means no limit.
func paginate(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}

// lookupError maps a single-row lookup failure to NotFound or Internal.
func lookupError(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// uniqueViolation reports whether err is a unique-constraint failure and, if
// so, which constraint or column tripped it. Postgres reports the constraint
// name; SQLite reports "table.column".
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return pgErr.ConstraintName, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}
	const sqlitePrefix = "UNIQUE constraint failed: "
	if msg := err.Error(); strings.Contains(msg, sqlitePrefix) {
		return msg[strings.Index(msg, sqlitePrefix)+len(sqlitePrefix):], true
	}
	return "", false
}

// foreignKeyViolation reports whether err is a foreign-key failure, e.g. a
// delete blocked by rows that still reference the target.
func foreignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == foreignKeyViolationCode
	}
	return errors.Is(err, gorm.ErrForeignKeyViolated) ||
		strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
