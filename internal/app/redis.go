package app

import (
	"context"
	"time"

	"research-hub/internal/common/logging"
	"research-hub/internal/common/utils"
	"research-hub/internal/redis"
)

// redisConnectTimeout bounds every connection attempt at startup
const redisConnectTimeout = 10 * time.Second

func (app *App) initializeRedis() error {
	if !app.Config.RedisEnabled() {
		app.Logger.Info("Redis: Not configured (rate limit counters are process-local)")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()

	var redisClient *redis.Client
	err := utils.RetryWithBackoff(ctx, utils.DefaultRetryConfig(), func() error {
		client, err := redis.NewClient(&redis.Config{
			Address:  app.Config.RedisAddress,
			Password: app.Config.RedisPassword,
			DB:       app.Config.RedisDBNumber(),
			PoolSize: app.Config.RedisPoolSizeNumber(),
			Timeout:  app.Config.RedisTimeoutDuration(),
		})
		if err != nil {
			app.Logger.Debug("Redis connection attempt failed", logging.Err(err))
			return err
		}
		redisClient = client
		return nil
	})
	if err != nil {
		return err
	}

	app.RedisClient = redisClient
	app.Logger.Info("Redis: Connected", logging.String("address", app.Config.RedisAddress))
	return nil
}
