// Package lockout implements the failed-login state machine that temporarily
// locks an account after repeated credential failures.
//
// An account is ACTIVE while its lock time is absent or in the past and
// LOCKED while the lock time is in the future. Failures are counted by the
// persistence layer in one atomic statement so concurrent attempts against
// the same account never lose an increment.
package lockout

import (
	"context"
	"time"

	"research-hub/internal/common/logging"
	"research-hub/internal/common/validation"
)

const (
	DefaultMaxAttempts = 5
	DefaultDuration    = 15 * time.Minute
)

// State is the lockout bookkeeping stored on an account
type State struct {
	FailedLoginAttempts int        `json:"failed_login_attempts"`
	LockedUntil         *time.Time `json:"locked_until,omitempty"`
}

// IsLocked reports whether the lock is still in force at now. An elapsed
// lock time counts as unlocked even before it is cleared.
func (s State) IsLocked(now time.Time) bool {
	return s.LockedUntil != nil && s.LockedUntil.After(now)
}

// Config holds the lockout knobs
type Config struct {
	MaxAttempts int           `json:"max_attempts"`
	Duration    time.Duration `json:"duration"`
}

// DefaultConfig returns five attempts and a fifteen minute lock
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		Duration:    DefaultDuration,
	}
}

// Validate validates the configuration
func (c Config) Validate() error {
	return validation.NewValidatorWithPrefix("lockout").
		RequirePositive(c.MaxAttempts, "max attempts").
		RequireDurationRange(c.Duration, time.Second, 24*time.Hour, "duration").
		Error()
}

// Repository persists lockout state. Implementations must make
// RecordFailedLogin a single atomic read-modify-write per account.
type Repository interface {
	GetLockoutState(ctx context.Context, accountID string) (State, error)

	// RecordFailedLogin increments the failure count and, when the new count
	// reaches maxAttempts and the account is not locked at now, sets the lock
	// time to lockUntil. It returns the state after the update and whether
	// this call moved the account into LOCKED.
	RecordFailedLogin(ctx context.Context, accountID string, maxAttempts int, lockUntil, now time.Time) (State, bool, error)

	// ResetLockout clears the failure count and lock time
	ResetLockout(ctx context.Context, accountID string) error
}

// Outcome is the result of one credential check
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeInvalidCredentials
	OutcomeLocked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalidCredentials:
		return "invalid_credentials"
	case OutcomeLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// Service drives the lockout state machine
type Service struct {
	repo   Repository
	config Config
	now    func() time.Time
	logger logging.Logger
}

// Option customizes a Service
type Option func(*Service)

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a lockout service
func NewService(repo Repository, config Config, logger logging.Logger, opts ...Option) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	s := &Service{
		repo:   repo,
		config: config,
		now:    time.Now,
		logger: logger.WithFields(logging.String("component", "lockout")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the active configuration
func (s *Service) Config() Config {
	return s.config
}

// IsLocked reports whether the account is locked right now
func (s *Service) IsLocked(ctx context.Context, accountID string) (bool, error) {
	state, err := s.repo.GetLockoutState(ctx, accountID)
	if err != nil {
		return false, err
	}
	return state.IsLocked(s.now()), nil
}

// RecordFailedLogin counts one failed attempt and locks the account when the
// count reaches the maximum.
func (s *Service) RecordFailedLogin(ctx context.Context, accountID string) (State, error) {
	now := s.now()
	lockUntil := now.Add(s.config.Duration)

	state, locked, err := s.repo.RecordFailedLogin(ctx, accountID, s.config.MaxAttempts, lockUntil, now)
	if err != nil {
		return State{}, err
	}

	if locked {
		s.logger.WithContext(ctx).Warn("account locked",
			logging.String("account_id", accountID),
			logging.Int("failed_attempts", state.FailedLoginAttempts),
			logging.Time("locked_until", lockUntil),
		)
	}
	return state, nil
}

// RecordSuccessfulLogin clears the bookkeeping left by earlier failures,
// including any recorded while the credential check ran. Nothing is written
// for an account without failures.
func (s *Service) RecordSuccessfulLogin(ctx context.Context, accountID string) error {
	state, err := s.repo.GetLockoutState(ctx, accountID)
	if err != nil {
		return err
	}
	if state.FailedLoginAttempts == 0 && state.LockedUntil == nil {
		return nil
	}
	return s.repo.ResetLockout(ctx, accountID)
}

// Unlock clears an account's lock regardless of its state
func (s *Service) Unlock(ctx context.Context, accountID string) error {
	if err := s.repo.ResetLockout(ctx, accountID); err != nil {
		return err
	}
	s.logger.WithContext(ctx).Info("account unlocked", logging.String("account_id", accountID))
	return nil
}

// Attempt runs one credential check through the state machine. verify is
// never called while the account is locked. Bookkeeping failures are logged
// and never turn a failed check into a success.
func (s *Service) Attempt(ctx context.Context, accountID string, verify func() bool) Outcome {
	logger := s.logger.WithContext(ctx)

	state, err := s.repo.GetLockoutState(ctx, accountID)
	if err != nil {
		logger.Error("failed to load lockout state", err, logging.String("account_id", accountID))
		return OutcomeInvalidCredentials
	}

	if state.IsLocked(s.now()) {
		logger.Warn("login rejected: account locked", logging.String("account_id", accountID))
		return OutcomeLocked
	}

	if !verify() {
		if _, err := s.RecordFailedLogin(ctx, accountID); err != nil {
			logger.Error("failed to persist lockout state", err, logging.String("account_id", accountID))
		}
		return OutcomeInvalidCredentials
	}

	if err := s.RecordSuccessfulLogin(ctx, accountID); err != nil {
		logger.Error("failed to persist lockout state", err, logging.String("account_id", accountID))
	}
	return OutcomeSuccess
}
