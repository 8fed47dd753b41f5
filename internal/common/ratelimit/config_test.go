package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-hub/internal/circuitbreaker"
	"research-hub/internal/common/errors"
)

func TestPolicies(t *testing.T) {
	want := map[PolicyName]struct {
		limit  int
		window time.Duration
	}{
		PolicyAuth:           {5, 15 * time.Minute},
		PolicySignup:         {3, time.Hour},
		PolicyWikiSubmission: {10, time.Hour},
		PolicySocialConnect:  {20, time.Hour},
		PolicyPasswordReset:  {3, time.Hour},
	}

	policies := Policies()
	require.Len(t, policies, len(want))

	for i, p := range policies {
		w, ok := want[p.Name]
		require.True(t, ok, "unexpected policy %s", p.Name)
		assert.Equal(t, w.limit, p.Limit, p.Name.String())
		assert.Equal(t, w.window, p.Window, p.Name.String())
		if i > 0 {
			assert.Less(t, string(policies[i-1].Name), string(p.Name))
		}
	}

	assert.True(t, PolicyAuth.Valid())
	assert.False(t, PolicyName("").Valid())

	_, ok := Lookup("missing")
	assert.False(t, ok)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("fills runtime defaults", func(t *testing.T) {
		cfg := Config{}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, RuntimeServer, cfg.Runtime)
		assert.Equal(t, defaultServerPurgeEvery, cfg.PurgeEvery)
		assert.Equal(t, defaultSweepInterval, cfg.SweepInterval)
		assert.Equal(t, defaultShards, cfg.Shards)
		assert.Equal(t, defaultSharedTimeout, cfg.SharedTimeout)
		assert.Equal(t, circuitbreaker.SharedStoreConfig, cfg.Breaker)
	})

	t.Run("edge default", func(t *testing.T) {
		cfg := Config{Runtime: RuntimeEdge}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, defaultEdgePurgeEvery, cfg.PurgeEvery)
		assert.Zero(t, cfg.SweepInterval)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		cfg := Config{Runtime: RuntimeEdge, PurgeEvery: 5, Shards: 2, SharedTimeout: time.Second}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, 5, cfg.PurgeEvery)
		assert.Equal(t, 2, cfg.Shards)
		assert.Equal(t, time.Second, cfg.SharedTimeout)
	})

	t.Run("rejects unknown runtime", func(t *testing.T) {
		cfg := Config{Runtime: "worker"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
	})

	t.Run("rejects negative sizes", func(t *testing.T) {
		cfg := Config{PurgeEvery: -1, Shards: -4}
		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
		assert.Contains(t, err.Error(), "ratelimit: purge every must be non-negative")
		assert.Contains(t, err.Error(), "ratelimit: shards must be non-negative")
	})

	t.Run("rejects long shared timeout", func(t *testing.T) {
		cfg := Config{SharedTimeout: 6 * time.Second}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds maximum")
	})
}

func TestConfigBuilder(t *testing.T) {
	cfg, err := NewConfigBuilder().
		WithEnabled(false).
		WithKeyPrefix("rh:").
		WithSharedTimeout(500 * time.Millisecond).
		WithSweepInterval(30 * time.Second).
		Build()
	require.NoError(t, err)

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "rh:", cfg.KeyPrefix)
	assert.Equal(t, 500*time.Millisecond, cfg.SharedTimeout)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, RuntimeServer, cfg.Runtime)

	edge, err := NewConfigBuilder().ForEdge().Build()
	require.NoError(t, err)
	assert.Equal(t, RuntimeEdge, edge.Runtime)
	assert.Equal(t, defaultEdgePurgeEvery, edge.PurgeEvery)

	server, err := NewConfigBuilder().ForEdge().ForServer().Build()
	require.NoError(t, err)
	assert.Equal(t, defaultServerPurgeEvery, server.PurgeEvery)
	assert.Equal(t, defaultSweepInterval, server.SweepInterval)

	_, err = NewConfigBuilder().WithSharedTimeout(time.Minute).Build()
	assert.Error(t, err)
}
