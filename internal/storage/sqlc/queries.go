package sqlc

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// DBTX is satisfied by *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Dialect selects placeholder syntax and locking clauses
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Queries runs the shared query set against one dialect. Queries are written
// with ? placeholders and rebound to $n for PostgreSQL.
type Queries struct {
	db      DBTX
	dialect Dialect
}

func New(db DBTX, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect}
}

func (q *Queries) rebind(query string) string {
	if q.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// userRow mirrors the users table; timestamps are epoch milliseconds
type userRow struct {
	ID                  string
	Email               string
	Username            string
	PasswordHash        string
	FailedLoginAttempts int64
	LockedUntil         sql.NullInt64
	CreatedAt           int64
	UpdatedAt           int64
}

const userColumns = `id, email, username, password_hash, failed_login_attempts, locked_until, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (userRow, error) {
	var u userRow
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.FailedLoginAttempts,
		&u.LockedUntil,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (id, email, username, password_hash, failed_login_attempts, locked_until, created_at, updated_at)
VALUES (?, ?, ?, ?, 0, NULL, ?, ?)
RETURNING ` + userColumns

type CreateUserParams struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (userRow, error) {
	row := q.db.QueryRowContext(ctx, q.rebind(createUser),
		arg.ID,
		arg.Email,
		arg.Username,
		arg.PasswordHash,
		arg.CreatedAt,
		arg.CreatedAt,
	)
	return scanUser(row)
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, q.rebind(getUserByID), id))
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + ` FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, q.rebind(getUserByEmail), email))
}

type lockoutRow struct {
	FailedLoginAttempts int64
	LockedUntil         sql.NullInt64
}

const getLockoutState = `-- name: GetLockoutState :one
SELECT failed_login_attempts, locked_until FROM users WHERE id = ?`

func (q *Queries) GetLockoutState(ctx context.Context, id string) (lockoutRow, error) {
	var r lockoutRow
	err := q.db.QueryRowContext(ctx, q.rebind(getLockoutState), id).Scan(&r.FailedLoginAttempts, &r.LockedUntil)
	return r, err
}

// LockLockoutState reads the lockout columns and, on PostgreSQL, holds the
// row lock until the transaction ends. SQLite transactions are opened
// IMMEDIATE, which already serializes writers.
func (q *Queries) LockLockoutState(ctx context.Context, id string) (lockoutRow, error) {
	query := getLockoutState
	if q.dialect == DialectPostgres {
		query += " FOR UPDATE"
	}
	var r lockoutRow
	err := q.db.QueryRowContext(ctx, q.rebind(query), id).Scan(&r.FailedLoginAttempts, &r.LockedUntil)
	return r, err
}

// SET expressions see the pre-update row, so the lock is only written when
// this increment crosses the threshold on an unlocked account.
const recordFailedLogin = `-- name: RecordFailedLogin :one
UPDATE users SET
    failed_login_attempts = failed_login_attempts + 1,
    locked_until = CASE
        WHEN failed_login_attempts + 1 >= ? AND (locked_until IS NULL OR locked_until <= ?)
        THEN CAST(? AS BIGINT)
        ELSE locked_until
    END,
    updated_at = ?
WHERE id = ?
RETURNING failed_login_attempts, locked_until`

type RecordFailedLoginParams struct {
	ID          string
	MaxAttempts int64
	Now         int64
	LockUntil   int64
}

func (q *Queries) RecordFailedLogin(ctx context.Context, arg RecordFailedLoginParams) (lockoutRow, error) {
	var r lockoutRow
	err := q.db.QueryRowContext(ctx, q.rebind(recordFailedLogin),
		arg.MaxAttempts,
		arg.Now,
		arg.LockUntil,
		arg.Now,
		arg.ID,
	).Scan(&r.FailedLoginAttempts, &r.LockedUntil)
	return r, err
}

const resetLockout = `-- name: ResetLockout :execrows
UPDATE users SET failed_login_attempts = 0, locked_until = NULL, updated_at = ? WHERE id = ?`

func (q *Queries) ResetLockout(ctx context.Context, id string, updatedAt int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, q.rebind(resetLockout), updatedAt, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createWikiSubmission = `-- name: CreateWikiSubmission :exec
INSERT INTO wiki_submissions (id, user_id, title, content, source_url, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type CreateWikiSubmissionParams struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	SourceURL sql.NullString
	Status    string
	CreatedAt int64
}

func (q *Queries) CreateWikiSubmission(ctx context.Context, arg CreateWikiSubmissionParams) error {
	_, err := q.db.ExecContext(ctx, q.rebind(createWikiSubmission),
		arg.ID,
		arg.UserID,
		arg.Title,
		arg.Content,
		arg.SourceURL,
		arg.Status,
		arg.CreatedAt,
	)
	return err
}

const createSocialAccount = `-- name: CreateSocialAccount :exec
INSERT INTO social_accounts (id, user_id, provider, provider_account_id, handle, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

type CreateSocialAccountParams struct {
	ID                string
	UserID            string
	Provider          string
	ProviderAccountID string
	Handle            sql.NullString
	CreatedAt         int64
}

func (q *Queries) CreateSocialAccount(ctx context.Context, arg CreateSocialAccountParams) error {
	_, err := q.db.ExecContext(ctx, q.rebind(createSocialAccount),
		arg.ID,
		arg.UserID,
		arg.Provider,
		arg.ProviderAccountID,
		arg.Handle,
		arg.CreatedAt,
	)
	return err
}

const createPasswordReset = `-- name: CreatePasswordReset :exec
INSERT INTO password_resets (id, user_id, token, expires_at, created_at)
VALUES (?, ?, ?, ?, ?)`

type CreatePasswordResetParams struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt int64
	CreatedAt int64
}

func (q *Queries) CreatePasswordReset(ctx context.Context, arg CreatePasswordResetParams) error {
	_, err := q.db.ExecContext(ctx, q.rebind(createPasswordReset),
		arg.ID,
		arg.UserID,
		arg.Token,
		arg.ExpiresAt,
		arg.CreatedAt,
	)
	return err
}
