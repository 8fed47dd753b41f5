package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"research-hub/internal/common/errors"
)

type Client struct {
	rdb    *redis.Client
	config *Config
}

type Config struct {
	Address  string        `json:"address"`
	Password string        `json:"password"`
	DB       int           `json:"db"`
	PoolSize int           `json:"pool_size"`
	Timeout  time.Duration `json:"timeout"`
}

// incrementScript advances a fixed-window counter stored as a hash holding
// the count and the absolute reset time in epoch milliseconds. A window whose
// reset time is not after now is replaced, never extended.
//
// KEYS[1] counter key
// ARGV[1] now (ms), ARGV[2] window (ms), ARGV[3] reset for a new window (ms)
var incrementScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local reset = tonumber(redis.call('HGET', KEYS[1], 'reset') or '0')
if reset <= now then
	redis.call('DEL', KEYS[1])
	redis.call('HSET', KEYS[1], 'count', 1, 'reset', ARGV[3])
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
	return {1, tonumber(ARGV[3])}
end
local count = redis.call('HINCRBY', KEYS[1], 'count', 1)
return {count, reset}
`)

func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("redis config is required")
	}

	if config.Address == "" {
		config.Address = "localhost:6379"
	}
	if config.PoolSize == 0 {
		config.PoolSize = 10
	}
	if config.Timeout == 0 {
		config.Timeout = 2 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         config.Address,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		DialTimeout:  config.Timeout,
		ReadTimeout:  config.Timeout,
		WriteTimeout: config.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.ConnectionError("failed to connect to Redis", err).
			WithContext("address", config.Address)
	}

	return &Client{
		rdb:    rdb,
		config: config,
	}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

// IncrementWithExpiry records one attempt against key's fixed window and
// returns the post-increment count and the window's reset time.
func (c *Client) IncrementWithExpiry(ctx context.Context, key string, window time.Duration, now time.Time) (int64, time.Time, error) {
	windowMs := window.Milliseconds()
	if windowMs <= 0 {
		return 0, time.Time{}, fmt.Errorf("window must be at least 1ms, got %s", window)
	}
	nowMs := now.UnixMilli()

	res, err := incrementScript.Run(ctx, c.rdb, []string{key},
		nowMs, windowMs, nowMs+windowMs,
	).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to increment counter %s: %w", key, err)
	}

	count, resetMs, err := parseCounterReply(res)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to increment counter %s: %w", key, err)
	}

	return count, time.UnixMilli(resetMs), nil
}

func parseCounterReply(res interface{}) (int64, int64, error) {
	values, ok := res.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected script reply %v", res)
	}

	count, err := toInt64(values[0])
	if err != nil {
		return 0, 0, err
	}
	reset, err := toInt64(values[1])
	if err != nil {
		return 0, 0, err
	}
	return count, reset, nil
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected reply element %T", v)
	}
}
