package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-hub/internal/common/errors"
	"research-hub/internal/common/logging"
)

func newTestLimiter(t *testing.T, cfg Config, shared SharedCounter, logger logging.Logger) (*Limiter, *fakeClock) {
	t.Helper()
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	clock := newFakeClock()
	l, err := New(cfg, shared, logger, WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l, clock
}

func TestLimiter_ConcreteScenario(t *testing.T) {
	for _, runtime := range []Runtime{RuntimeServer, RuntimeEdge} {
		t.Run(string(runtime), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Runtime = runtime
			cfg.PurgeEvery = 0
			l, clock := newTestLimiter(t, cfg, nil, nil)

			policy := Policy{Name: "scenario", Limit: 2, Window: 60000 * time.Millisecond}
			ctx := context.Background()

			d := l.CheckPolicy(ctx, "user1", policy)
			assert.Equal(t, []interface{}{true, 1}, []interface{}{d.Success, d.Remaining})

			d = l.CheckPolicy(ctx, "user1", policy)
			assert.Equal(t, []interface{}{true, 0}, []interface{}{d.Success, d.Remaining})

			d = l.CheckPolicy(ctx, "user1", policy)
			assert.Equal(t, []interface{}{false, 0}, []interface{}{d.Success, d.Remaining})

			clock.Advance(60001 * time.Millisecond)

			d = l.CheckPolicy(ctx, "user1", policy)
			assert.Equal(t, []interface{}{true, 1}, []interface{}{d.Success, d.Remaining})
		})
	}
}

func TestLimiter_SharedStoreScenario(t *testing.T) {
	client, _ := setupSharedCounter(t)
	l, clock := newTestLimiter(t, DefaultConfig(), client, nil)
	ctx := context.Background()
	policy := Policy{Name: "scenario", Limit: 2, Window: time.Minute}

	assert.True(t, l.CheckPolicy(ctx, "user1", policy).Success)
	assert.True(t, l.CheckPolicy(ctx, "user1", policy).Success)
	assert.False(t, l.CheckPolicy(ctx, "user1", policy).Success)

	clock.Advance(time.Minute + time.Millisecond)
	d := l.CheckPolicy(ctx, "user1", policy)
	assert.True(t, d.Success)
	assert.Equal(t, 1, d.Remaining)
	assert.Equal(t, 0, l.Stats()["local_keys"], "shared path must not touch the local table")
}

func TestLimiter_Check(t *testing.T) {
	l, _ := newTestLimiter(t, DefaultConfig(), nil, nil)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		d, err := l.Check(ctx, "10.0.0.1", PolicyAuth)
		require.NoError(t, err)
		assert.True(t, d.Success)
		assert.Equal(t, 5, d.Limit)
		assert.Equal(t, 5-i, d.Remaining)
	}

	d, err := l.Check(ctx, "10.0.0.1", PolicyAuth)
	require.NoError(t, err)
	assert.False(t, d.Success)

	_, err = l.Check(ctx, "10.0.0.1", PolicyName("nope"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestLimiter_PoliciesWithSameWindowDoNotShareQuota(t *testing.T) {
	l, _ := newTestLimiter(t, DefaultConfig(), nil, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := l.Check(ctx, "10.0.0.1", PolicySignup)
		require.NoError(t, err)
	}
	d, _ := l.Check(ctx, "10.0.0.1", PolicySignup)
	require.False(t, d.Success)

	d, err := l.Check(ctx, "10.0.0.1", PolicyPasswordReset)
	require.NoError(t, err)
	assert.True(t, d.Success)
	assert.Equal(t, 2, d.Remaining)

	d, err = l.Check(ctx, "10.0.0.1", PolicyWikiSubmission)
	require.NoError(t, err)
	assert.Equal(t, 9, d.Remaining)
}

func TestLimiter_IdentifiersAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, DefaultConfig(), nil, nil)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, _ = l.Check(ctx, "attacker", PolicyAuth)
	}

	d, err := l.Check(ctx, "bystander", PolicyAuth)
	require.NoError(t, err)
	assert.True(t, d.Success)
	assert.Equal(t, 4, d.Remaining)
}

func TestLimiter_Key(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeyPrefix = "rh:"
	l, _ := newTestLimiter(t, cfg, nil, nil)

	assert.Equal(t, "rh:auth:10.0.0.1", l.Key(PolicyAuth, "10.0.0.1"))
	assert.NotEqual(t, l.Key(PolicySignup, "x"), l.Key(PolicyWikiSubmission, "x"))
}

func TestLimiter_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	l, clock := newTestLimiter(t, cfg, nil, nil)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		d, err := l.Check(ctx, "10.0.0.1", PolicySignup)
		require.NoError(t, err)
		assert.True(t, d.Success)
		assert.Equal(t, 3, d.Remaining)
		assert.True(t, d.ResetTime.Equal(clock.Now().Add(time.Hour)))
	}
	assert.Equal(t, 0, l.Stats()["local_keys"])
}

func TestLimiter_LogsDenials(t *testing.T) {
	logger, buf := newBufferLogger(t)
	l, _ := newTestLimiter(t, DefaultConfig(), nil, logger)
	ctx := logging.ContextWithRequestID(context.Background(), "req-42")

	for i := 0; i < 3; i++ {
		_, _ = l.Check(ctx, "203.0.113.7", PolicyPasswordReset)
	}
	assert.NotContains(t, buf.String(), "rate limit exceeded")

	_, _ = l.Check(ctx, "203.0.113.7", PolicyPasswordReset)

	out := buf.String()
	assert.Contains(t, out, "rate limit exceeded")
	assert.Contains(t, out, "203.0.113.7")
	assert.Contains(t, out, "password_reset")
	assert.Contains(t, out, "req-42")
}

func TestLimiter_Runtimes(t *testing.T) {
	t.Run("server starts a sweeper", func(t *testing.T) {
		l, _ := newTestLimiter(t, DefaultConfig(), nil, nil)
		require.NotNil(t, l.sweeper)
		require.NoError(t, l.Start())
		assert.Equal(t, defaultServerPurgeEvery, l.config.PurgeEvery)
		require.NoError(t, l.Close())
	})

	t.Run("edge has no background work", func(t *testing.T) {
		cfg, err := NewConfigBuilder().ForEdge().Build()
		require.NoError(t, err)

		l, _ := newTestLimiter(t, cfg, nil, nil)
		assert.Nil(t, l.sweeper)
		assert.NoError(t, l.Start())
		assert.Equal(t, defaultEdgePurgeEvery, l.config.PurgeEvery)
		assert.Equal(t, "edge", l.Stats()["runtime"])
	})

	t.Run("edge purges in-line", func(t *testing.T) {
		cfg, err := NewConfigBuilder().ForEdge().Build()
		require.NoError(t, err)
		l, clock := newTestLimiter(t, cfg, nil, nil)
		ctx := context.Background()

		for i := 0; i < 10; i++ {
			l.CheckPolicy(ctx, string(rune('a'+i)), Policy{Name: "short", Limit: 1, Window: time.Second})
		}
		clock.Advance(2 * time.Second)

		for i := 0; i < defaultEdgePurgeEvery; i++ {
			l.CheckPolicy(ctx, "steady", Policy{Name: "long", Limit: 100, Window: time.Hour})
		}
		assert.Equal(t, 1, l.Stats()["local_keys"])
	})
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Runtime = "lambda"
	_, err := New(cfg, nil, logging.NewNopLogger())
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.SharedTimeout = 10 * time.Second
	_, err = New(cfg, nil, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestLimiter_Stats(t *testing.T) {
	client, _ := setupSharedCounter(t)
	l, _ := newTestLimiter(t, DefaultConfig(), client, nil)

	stats := l.Stats()
	assert.Equal(t, true, stats["enabled"])
	assert.Equal(t, "server", stats["runtime"])
	assert.Equal(t, true, stats["shared"])
	assert.Equal(t, "closed", stats["breaker_state"])
}
