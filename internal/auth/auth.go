package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"research-hub/internal/common/errors"
	"research-hub/internal/common/logging"
	"research-hub/internal/lockout"
	"research-hub/internal/storage"
)

// UserStore is the part of storage.Storage the authenticator reads
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*storage.User, error)
}

// Authenticator checks credentials through the lockout state machine
type Authenticator struct {
	users     UserStore
	lockout   *lockout.Service
	dummyHash []byte
	logger    logging.Logger
}

func New(users UserStore, lockoutService *lockout.Service, logger logging.Logger) (*Authenticator, error) {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	// Compared against for unknown emails so every login costs one bcrypt run.
	dummy, err := bcrypt.GenerateFromPassword([]byte("research-hub-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.InternalError("failed to prepare password hasher", err)
	}

	return &Authenticator{
		users:     users,
		lockout:   lockoutService,
		dummyHash: dummy,
		logger:    logger.WithFields(logging.String("component", "auth")),
	}, nil
}

// Login returns the user for a valid email and password. Unknown emails,
// wrong passwords and locked accounts all yield errors.InvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*storage.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.IsType(err, errors.ErrTypeNotFound) {
			a.logger.WithContext(ctx).Error("failed to load user for login", err)
		}
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
		return nil, errors.InvalidCredentials()
	}

	ctx = logging.ContextWithAccountID(ctx, user.ID)
	outcome := a.lockout.Attempt(ctx, user.ID, func() bool {
		return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
	})

	if outcome != lockout.OutcomeSuccess {
		a.logger.WithContext(ctx).Debug("login failed", logging.String("outcome", outcome.String()))
		return nil, errors.InvalidCredentials()
	}

	a.logger.WithContext(ctx).Info("login succeeded")
	return user, nil
}
