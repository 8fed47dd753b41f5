package app

import (
	"research-hub/internal/auth"
	"research-hub/internal/common/logging"
	"research-hub/internal/lockout"
)

func (app *App) initializeAuth() error {
	lockoutService, err := lockout.NewService(app.Storage, lockout.Config{
		MaxAttempts: app.Config.LockoutMaxAttemptsNumber(),
		Duration:    app.Config.LockoutDurationValue(),
	}, logging.GetGlobalLogger())
	if err != nil {
		return err
	}
	app.Lockout = lockoutService

	authenticator, err := auth.New(app.Storage, lockoutService, logging.GetGlobalLogger())
	if err != nil {
		return err
	}
	app.Auth = authenticator
	return nil
}
