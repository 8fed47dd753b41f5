package storage

import (
	"context"
	"time"

	"research-hub/internal/lockout"
)

type Storage interface {
	// Connection management
	Close() error
	Health() error

	// Users. CreateUser hashes the password; lookups return a not_found
	// AppError when no row matches.
	CreateUser(ctx context.Context, email, username, password string) (*User, error)
	GetUser(ctx context.Context, userID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// Lockout bookkeeping on the users table
	lockout.Repository

	// Research content
	CreateWikiSubmission(ctx context.Context, submission *WikiSubmission) error
	LinkSocialAccount(ctx context.Context, account *SocialAccount) error
	CreatePasswordReset(ctx context.Context, reset *PasswordReset) error
}

type StorageConfig interface {
	Validate() error
	GetType() string
	GetConnectionString() string
}

type User struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	Username            string     `json:"username"`
	PasswordHash        string     `json:"-"`
	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Submission statuses
const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// WikiSubmission is a proposed wiki entry awaiting review
type WikiSubmission struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	SourceURL string    `json:"source_url,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// SocialAccount links an external profile to a user. A provider account can
// be linked to one user only.
type SocialAccount struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Provider          string    `json:"provider"`
	ProviderAccountID string    `json:"provider_account_id"`
	Handle            string    `json:"handle,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// PasswordReset is an outstanding password reset request
type PasswordReset struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
