package app

import (
	"research-hub/internal/auth"
	"research-hub/internal/common/logging"
	"research-hub/internal/common/ratelimit"
	"research-hub/internal/config"
	"research-hub/internal/lockout"
	"research-hub/internal/redis"
	"research-hub/internal/storage"
)

// App holds all the application dependencies
type App struct {
	Config      *config.Config
	Storage     storage.Storage
	RedisClient *redis.Client
	Limiter     *ratelimit.Limiter
	Lockout     *lockout.Service
	Auth        *auth.Authenticator
	Logger      logging.Logger
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.String("component", "app")),
	}

	if err := app.initializeStorage(); err != nil {
		return nil, err
	}

	if err := app.initializeRedis(); err != nil {
		// The shared store is optional; counters stay process-local.
		app.Logger.Warn("Redis initialization failed, rate limiting uses local counters only",
			logging.Err(err))
	}

	if err := app.initializeRateLimiter(); err != nil {
		app.Cleanup()
		return nil, err
	}

	if err := app.initializeAuth(); err != nil {
		app.Cleanup()
		return nil, err
	}

	return app, nil
}

// Cleanup releases all resources
func (app *App) Cleanup() {
	if app.Limiter != nil {
		app.Limiter.Close()
	}
	if app.Storage != nil {
		app.Storage.Close()
	}
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
