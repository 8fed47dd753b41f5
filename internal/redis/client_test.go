package redis

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-hub/internal/common/errors"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	config := &Config{
		Address:  mr.Addr(),
		Password: "",
		DB:       0,
		PoolSize: 10,
	}

	client, err := NewClient(config)
	require.NoError(t, err)

	return client, mr
}

func TestNewClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	t.Run("successful connection applies defaults", func(t *testing.T) {
		config := &Config{Address: mr.Addr()}

		client, err := NewClient(config)
		require.NoError(t, err)
		defer client.Close()

		assert.Equal(t, 10, config.PoolSize)
		assert.Equal(t, 2*time.Second, config.Timeout)
	})

	t.Run("nil config", func(t *testing.T) {
		client, err := NewClient(nil)
		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "redis config is required")
	})

	t.Run("connection failure", func(t *testing.T) {
		client, err := NewClient(&Config{Address: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "failed to connect to Redis")
		assert.True(t, errors.IsType(err, errors.ErrTypeConnection))
	})
}

func TestClient_Health(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer client.Close()

	assert.NoError(t, client.Health())

	mr.Close()
	assert.Error(t, client.Health())
}

func TestClient_IncrementWithExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	window := time.Minute

	t.Run("first call opens a window", func(t *testing.T) {
		count, resetAt, err := client.IncrementWithExpiry(ctx, "rl:open", window, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.True(t, resetAt.Equal(now.Add(window)), "resetAt = %v", resetAt)
		assert.Equal(t, window, mr.TTL("rl:open"))
	})

	t.Run("calls inside the window keep the reset time", func(t *testing.T) {
		_, first, err := client.IncrementWithExpiry(ctx, "rl:same", window, now)
		require.NoError(t, err)

		for i := 2; i <= 4; i++ {
			count, resetAt, err := client.IncrementWithExpiry(ctx, "rl:same", window, now.Add(time.Duration(i)*time.Second))
			require.NoError(t, err)
			assert.Equal(t, int64(i), count)
			assert.True(t, resetAt.Equal(first))
		}
	})

	t.Run("expired window is replaced", func(t *testing.T) {
		_, _, err := client.IncrementWithExpiry(ctx, "rl:roll", window, now)
		require.NoError(t, err)
		_, _, err = client.IncrementWithExpiry(ctx, "rl:roll", window, now)
		require.NoError(t, err)

		later := now.Add(window + time.Millisecond)
		count, resetAt, err := client.IncrementWithExpiry(ctx, "rl:roll", window, later)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.True(t, resetAt.Equal(later.Add(window)))
	})

	t.Run("reset boundary starts a new window", func(t *testing.T) {
		_, resetAt, err := client.IncrementWithExpiry(ctx, "rl:edge", window, now)
		require.NoError(t, err)

		count, _, err := client.IncrementWithExpiry(ctx, "rl:edge", window, resetAt)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("keys are independent", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, _, err := client.IncrementWithExpiry(ctx, "rl:a", window, now)
			require.NoError(t, err)
		}
		count, _, err := client.IncrementWithExpiry(ctx, "rl:b", window, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("rejects sub-millisecond window", func(t *testing.T) {
		_, _, err := client.IncrementWithExpiry(ctx, "rl:zero", 0, now)
		assert.Error(t, err)
	})
}

func TestClient_IncrementWithExpiry_Concurrency(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	const workers = 50
	counts := make([]int, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			count, _, err := client.IncrementWithExpiry(ctx, "rl:concurrent", time.Minute, now)
			assert.NoError(t, err)
			counts[i] = int(count)
		}(i)
	}
	wg.Wait()

	sort.Ints(counts)
	for i, c := range counts {
		assert.Equal(t, i+1, c, "every increment must be observed exactly once")
	}
}

func TestClient_IncrementWithExpiry_ServerDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer client.Close()

	mr.Close()

	_, _, err := client.IncrementWithExpiry(context.Background(), "rl:down", time.Minute, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to increment counter rl:down")
}
