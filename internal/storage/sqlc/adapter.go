package sqlc

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"research-hub/internal/common/errors"
	"research-hub/internal/lockout"
	"research-hub/internal/storage"
)

// SQLCAdapter implements storage.Storage on database/sql
type SQLCAdapter struct {
	BaseAdapter
	db      *sql.DB
	queries *Queries
	dialect Dialect
}

// NewSQLCAdapter wraps an open, migrated database
func NewSQLCAdapter(db *sql.DB, dialect Dialect) *SQLCAdapter {
	return &SQLCAdapter{
		db:      db,
		queries: New(db, dialect),
		dialect: dialect,
	}
}

// Dialect reports the backing database engine
func (s *SQLCAdapter) Dialect() Dialect {
	return s.dialect
}

func (s *SQLCAdapter) Close() error {
	return s.db.Close()
}

func (s *SQLCAdapter) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

// User operations

// NormalizeEmail lowercases and trims an address before storage or lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *SQLCAdapter) CreateUser(ctx context.Context, email, username, password string) (*storage.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.InternalError("failed to hash password", err)
	}

	row, err := s.queries.CreateUser(ctx, CreateUserParams{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(email),
		Username:     strings.TrimSpace(username),
		PasswordHash: string(hash),
		CreatedAt:    s.ToMillis(time.Now()),
	})
	if err != nil {
		return nil, s.MapError(err, "user", "create")
	}
	return s.toUser(row), nil
}

func (s *SQLCAdapter) GetUser(ctx context.Context, userID string) (*storage.User, error) {
	row, err := s.queries.GetUserByID(ctx, userID)
	if err != nil {
		return nil, s.MapError(err, "user", "load")
	}
	return s.toUser(row), nil
}

func (s *SQLCAdapter) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	row, err := s.queries.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, s.MapError(err, "user", "load")
	}
	return s.toUser(row), nil
}

// Lockout operations

func (s *SQLCAdapter) GetLockoutState(ctx context.Context, accountID string) (lockout.State, error) {
	row, err := s.queries.GetLockoutState(ctx, accountID)
	if err != nil {
		return lockout.State{}, s.MapError(err, "user", "load lockout state of")
	}
	return s.toLockoutState(row), nil
}

// RecordFailedLogin increments the failure count under the row lock. The
// prior lock time read in the same transaction decides whether this call
// made the transition into LOCKED.
func (s *SQLCAdapter) RecordFailedLogin(ctx context.Context, accountID string, maxAttempts int, lockUntil, now time.Time) (lockout.State, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return lockout.State{}, false, errors.PersistenceError("failed to begin lockout transaction", err)
	}
	defer tx.Rollback()

	q := s.queries.WithTx(tx)

	prior, err := q.LockLockoutState(ctx, accountID)
	if err != nil {
		return lockout.State{}, false, s.MapError(err, "user", "lock")
	}

	row, err := q.RecordFailedLogin(ctx, RecordFailedLoginParams{
		ID:          accountID,
		MaxAttempts: int64(maxAttempts),
		Now:         s.ToMillis(now),
		LockUntil:   s.ToMillis(lockUntil),
	})
	if err != nil {
		return lockout.State{}, false, s.MapError(err, "user", "record failed login for")
	}

	if err := tx.Commit(); err != nil {
		return lockout.State{}, false, errors.PersistenceError("failed to commit lockout state", err)
	}

	state := s.toLockoutState(row)
	locked := state.FailedLoginAttempts >= maxAttempts && !s.toLockoutState(prior).IsLocked(now)
	return state, locked, nil
}

func (s *SQLCAdapter) ResetLockout(ctx context.Context, accountID string) error {
	n, err := s.queries.ResetLockout(ctx, accountID, s.ToMillis(time.Now()))
	if err != nil {
		return s.MapError(err, "user", "reset lockout of")
	}
	if n == 0 {
		return errors.NotFoundError("user")
	}
	return nil
}

func (s *SQLCAdapter) toLockoutState(r lockoutRow) lockout.State {
	return lockout.State{
		FailedLoginAttempts: int(r.FailedLoginAttempts),
		LockedUntil:         s.ConvertNullableMillis(r.LockedUntil),
	}
}

// Research content

func (s *SQLCAdapter) CreateWikiSubmission(ctx context.Context, submission *storage.WikiSubmission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.Status == "" {
		submission.Status = storage.SubmissionPending
	}
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now()
	}

	err := s.queries.CreateWikiSubmission(ctx, CreateWikiSubmissionParams{
		ID:        submission.ID,
		UserID:    submission.UserID,
		Title:     submission.Title,
		Content:   submission.Content,
		SourceURL: s.ConvertStringToNullable(submission.SourceURL),
		Status:    submission.Status,
		CreatedAt: s.ToMillis(submission.CreatedAt),
	})
	return s.MapError(err, "wiki submission", "create")
}

func (s *SQLCAdapter) LinkSocialAccount(ctx context.Context, account *storage.SocialAccount) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	err := s.queries.CreateSocialAccount(ctx, CreateSocialAccountParams{
		ID:                account.ID,
		UserID:            account.UserID,
		Provider:          strings.ToLower(account.Provider),
		ProviderAccountID: account.ProviderAccountID,
		Handle:            s.ConvertStringToNullable(account.Handle),
		CreatedAt:         s.ToMillis(account.CreatedAt),
	})
	return s.MapError(err, "social account", "link")
}

func (s *SQLCAdapter) CreatePasswordReset(ctx context.Context, reset *storage.PasswordReset) error {
	if reset.ID == "" {
		reset.ID = uuid.NewString()
	}
	if reset.CreatedAt.IsZero() {
		reset.CreatedAt = time.Now()
	}

	err := s.queries.CreatePasswordReset(ctx, CreatePasswordResetParams{
		ID:        reset.ID,
		UserID:    reset.UserID,
		Token:     reset.Token,
		ExpiresAt: s.ToMillis(reset.ExpiresAt),
		CreatedAt: s.ToMillis(reset.CreatedAt),
	})
	return s.MapError(err, "password reset", "create")
}

var _ storage.Storage = (*SQLCAdapter)(nil)
