package app

import (
	"research-hub/internal/common/logging"
	"research-hub/internal/common/ratelimit"
)

func (app *App) initializeRateLimiter() error {
	builder := ratelimit.NewConfigBuilder().
		WithEnabled(app.Config.RateLimitEnabled).
		WithKeyPrefix(app.Config.RateLimitKeyPrefix).
		WithSharedTimeout(app.Config.RedisTimeoutDuration()).
		WithSweepInterval(app.Config.SweepIntervalDuration())

	if ratelimit.Runtime(app.Config.RateLimitRuntime) == ratelimit.RuntimeEdge {
		builder = builder.ForEdge()
	}

	cfg, err := builder.Build()
	if err != nil {
		return err
	}

	// A nil interface, not a nil *redis.Client, selects local-only mode.
	var shared ratelimit.SharedCounter
	if app.RedisClient != nil {
		shared = app.RedisClient
	}

	limiter, err := ratelimit.New(cfg, shared, logging.GetGlobalLogger())
	if err != nil {
		return err
	}

	app.Limiter = limiter
	app.Logger.Info("Rate Limiting: Configured",
		logging.Bool("enabled", cfg.Enabled),
		logging.String("runtime", string(cfg.Runtime)),
		logging.Bool("shared_store", shared != nil),
	)
	return nil
}
