// Package sqlc implements storage.Storage on database/sql for SQLite
// (mattn/go-sqlite3) and PostgreSQL (pgx stdlib) with one shared schema and
// query set.
package sqlc

import (
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"research-hub/internal/common/errors"
	"research-hub/internal/storage"
)

// BaseAdapter holds conversion helpers shared by the adapter methods
type BaseAdapter struct{}

// ToMillis converts t to epoch milliseconds
func (b *BaseAdapter) ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds to time.Time
func (b *BaseAdapter) FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// ConvertNullableMillis converts a nullable epoch-ms column to *time.Time
func (b *BaseAdapter) ConvertNullableMillis(val sql.NullInt64) *time.Time {
	if !val.Valid {
		return nil
	}
	t := time.UnixMilli(val.Int64)
	return &t
}

// ConvertStringToNullable converts an empty string to NULL
func (b *BaseAdapter) ConvertStringToNullable(val string) sql.NullString {
	return sql.NullString{String: val, Valid: val != ""}
}

func (b *BaseAdapter) toUser(r userRow) *storage.User {
	return &storage.User{
		ID:                  r.ID,
		Email:               r.Email,
		Username:            r.Username,
		PasswordHash:        r.PasswordHash,
		FailedLoginAttempts: int(r.FailedLoginAttempts),
		LockedUntil:         b.ConvertNullableMillis(r.LockedUntil),
		CreatedAt:           b.FromMillis(r.CreatedAt),
		UpdatedAt:           b.FromMillis(r.UpdatedAt),
	}
}

// MapError translates driver errors into AppErrors. Unique violations become
// conflicts, foreign key violations and missing rows become not found.
func (b *BaseAdapter) MapError(err error, resource, action string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFoundError(resource)
	}

	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return errors.ConflictError(resource+" already exists", err)
		case sqlite3.ErrConstraintForeignKey:
			return errors.NotFoundError("user")
		}
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return errors.ConflictError(resource+" already exists", err)
		case "23503":
			return errors.NotFoundError("user")
		}
	}

	return errors.PersistenceError("failed to "+action+" "+resource, err)
}
