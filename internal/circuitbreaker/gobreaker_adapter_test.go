package circuitbreaker

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-hub/internal/common/errors"
	"research-hub/internal/common/logging"
)

func TestGoBreakerAdapter(t *testing.T) {
	logger := logging.NewNopLogger()

	t.Run("basic operation", func(t *testing.T) {
		cb := NewGoBreaker("test-basic", Config{MaxFailures: 2, Timeout: 100 * time.Millisecond, MaxConcurrentRequests: 1}, logger)

		assert.Equal(t, "closed", cb.State())

		result, err := cb.Execute(func() (interface{}, error) { return 42, nil })
		require.NoError(t, err)
		assert.Equal(t, 42, result)
		assert.Equal(t, "closed", cb.State())
	})

	t.Run("circuit opens after consecutive failures", func(t *testing.T) {
		cb := NewGoBreaker("test-failures", Config{MaxFailures: 3, Timeout: time.Minute, MaxConcurrentRequests: 1}, logger)

		for i := 0; i < 3; i++ {
			_, err := cb.Execute(func() (interface{}, error) { return nil, fmt.Errorf("failure %d", i) })
			require.Error(t, err)
			assert.False(t, IsRejected(err))
		}

		assert.Equal(t, "open", cb.State())

		_, err := cb.Execute(func() (interface{}, error) {
			t.Fatal("should not be called while open")
			return nil, nil
		})
		require.Error(t, err)
		assert.True(t, IsRejected(err))
		assert.True(t, errors.IsType(err, errors.ErrTypeStoreUnavailable))
	})

	t.Run("half-open probe closes the circuit", func(t *testing.T) {
		cb := NewGoBreaker("test-recovery", Config{MaxFailures: 1, Timeout: 20 * time.Millisecond, MaxConcurrentRequests: 1}, logger)

		_, _ = cb.Execute(func() (interface{}, error) { return nil, fmt.Errorf("down") })
		require.Equal(t, "open", cb.State())

		time.Sleep(40 * time.Millisecond)

		_, err := cb.Execute(func() (interface{}, error) { return nil, nil })
		require.NoError(t, err)
		assert.Equal(t, "closed", cb.State())
	})

	t.Run("validation errors do not trip", func(t *testing.T) {
		cb := NewGoBreaker("test-client-errors", Config{MaxFailures: 1, Timeout: time.Minute, MaxConcurrentRequests: 1}, logger)

		for i := 0; i < 3; i++ {
			_, err := cb.Execute(func() (interface{}, error) { return nil, errors.ValidationError("bad key") })
			require.Error(t, err)
		}
		assert.Equal(t, "closed", cb.State())
		assert.Equal(t, 3, cb.Stats().Successes)
	})
}

func TestGoBreakerAdapter_InvalidConfigFallsBack(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewZapLogger(logging.LogConfig{Level: logging.DebugLevel, Output: &buf})
	require.NoError(t, err)

	cb := NewGoBreaker("test-invalid", Config{}, logger)
	require.NotNil(t, cb)
	assert.Contains(t, buf.String(), "Invalid circuit breaker config")

	// Defaults trip after five failures.
	for i := 0; i < 4; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, fmt.Errorf("down") })
	}
	assert.Equal(t, "closed", cb.State())
	_, _ = cb.Execute(func() (interface{}, error) { return nil, fmt.Errorf("down") })
	assert.Equal(t, "open", cb.State())
	assert.Contains(t, buf.String(), "circuit breaker state changed")
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, SharedStoreConfig.Validate())
	assert.Error(t, Config{MaxFailures: 0, Timeout: time.Second, MaxConcurrentRequests: 1}.Validate())
	assert.Error(t, Config{MaxFailures: 1, Timeout: 0, MaxConcurrentRequests: 1}.Validate())
	assert.Error(t, Config{MaxFailures: 1, Timeout: time.Second}.Validate())
}
