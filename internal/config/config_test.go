package config

import (
	"strings"
	"testing"
	"time"
)

var testEnvVars = []string{
	"PORT", "LOG_LEVEL", "LOG_FORMAT",
	"DATABASE_TYPE", "DATABASE_PATH",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_DB", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_SSL_MODE",
	"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB", "REDIS_POOL_SIZE", "REDIS_TIMEOUT",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_RUNTIME", "RATE_LIMIT_KEY_PREFIX", "RATE_LIMIT_SWEEP_INTERVAL",
	"LOCKOUT_MAX_ATTEMPTS", "LOCKOUT_DURATION",
}

// clearTestEnvVars blanks every variable Load reads for the duration of the test
func clearTestEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range testEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	clearTestEnvVars(t)

	config := Load()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"Port", config.Port, "8080"},
		{"LogLevel", config.LogLevel, "info"},
		{"LogFormat", config.LogFormat, "console"},
		{"DatabaseType", config.DatabaseType, "sqlite"},
		{"DatabasePath", config.DatabasePath, "./research_hub.db"},
		{"PostgresPort", config.PostgresPort, "5432"},
		{"RedisAddress", config.RedisAddress, ""},
		{"RedisDB", config.RedisDB, "0"},
		{"RedisPoolSize", config.RedisPoolSize, "10"},
		{"RedisTimeout", config.RedisTimeout, "2s"},
		{"RateLimitRuntime", config.RateLimitRuntime, "server"},
		{"RateLimitKeyPrefix", config.RateLimitKeyPrefix, "ratelimit:"},
		{"RateLimitSweepInterval", config.RateLimitSweepInterval, "1m"},
		{"LockoutMaxAttempts", config.LockoutMaxAttempts, "5"},
		{"LockoutDuration", config.LockoutDuration, "15m"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("Load() %s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if !config.RateLimitEnabled {
		t.Errorf("Load() RateLimitEnabled = %v, want true", config.RateLimitEnabled)
	}
	if config.RedisEnabled() {
		t.Error("RedisEnabled() should be false without REDIS_ADDRESS")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default configuration should validate, got %v", err)
	}
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDRESS", "redis:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_TIMEOUT", "500ms")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_RUNTIME", "edge")
	t.Setenv("LOCKOUT_MAX_ATTEMPTS", "3")
	t.Setenv("LOCKOUT_DURATION", "30m")

	config := Load()
	if err := config.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	if config.Port != "9090" {
		t.Errorf("Port = %v, want 9090", config.Port)
	}
	if config.RateLimitEnabled {
		t.Error("RateLimitEnabled should be false")
	}
	if !config.RedisEnabled() {
		t.Error("RedisEnabled() should be true")
	}
	if config.RedisDBNumber() != 3 {
		t.Errorf("RedisDBNumber() = %d, want 3", config.RedisDBNumber())
	}
	if config.RedisTimeoutDuration() != 500*time.Millisecond {
		t.Errorf("RedisTimeoutDuration() = %v, want 500ms", config.RedisTimeoutDuration())
	}
	if config.LockoutMaxAttemptsNumber() != 3 {
		t.Errorf("LockoutMaxAttemptsNumber() = %d, want 3", config.LockoutMaxAttemptsNumber())
	}
	if config.LockoutDurationValue() != 30*time.Minute {
		t.Errorf("LockoutDurationValue() = %v, want 30m", config.LockoutDurationValue())
	}
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"true string", "true", false, true},
		{"numeric one", "1", false, true},
		{"false string", "false", true, false},
		{"invalid falls back", "maybe", true, true},
		{"unset falls back", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL_VAR", tt.envValue)
			if got := getBoolEnv("TEST_BOOL_VAR", tt.defaultValue); got != tt.want {
				t.Errorf("getBoolEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:                   "8080",
			LogFormat:              "console",
			DatabaseType:           "sqlite",
			DatabasePath:           "./test.db",
			RedisAddress:           "localhost:6379",
			RedisDB:                "0",
			RedisPoolSize:          "10",
			RedisTimeout:           "2s",
			RateLimitRuntime:       "server",
			RateLimitSweepInterval: "1m",
			LockoutMaxAttempts:     "5",
			LockoutDuration:        "15m",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"invalid port", func(c *Config) { c.Port = "70000" }, "PORT must be a valid port"},
		{"invalid database type", func(c *Config) { c.DatabaseType = "mysql" }, "DATABASE_TYPE must be one of"},
		{"postgres requires host", func(c *Config) {
			c.DatabaseType = "postgres"
			c.PostgresPort = "5432"
			c.PostgresDB = "db"
			c.PostgresUser = "u"
		}, "POSTGRES_HOST is required"},
		{"redis db out of range", func(c *Config) { c.RedisDB = "16" }, "REDIS_DB must be a number between 0 and 15"},
		{"redis timeout above ceiling", func(c *Config) { c.RedisTimeout = "6s" }, "REDIS_TIMEOUT must be a duration"},
		{"redis settings ignored when disabled", func(c *Config) {
			c.RedisAddress = ""
			c.RedisTimeout = "1h"
		}, ""},
		{"unknown runtime", func(c *Config) { c.RateLimitRuntime = "lambda" }, "RATE_LIMIT_RUNTIME must be one of: server, edge"},
		{"zero lockout attempts", func(c *Config) { c.LockoutMaxAttempts = "0" }, "LOCKOUT_MAX_ATTEMPTS must be a positive number"},
		{"bad lockout duration", func(c *Config) { c.LockoutDuration = "forever" }, "LOCKOUT_DURATION must be a positive duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateReportsAllProblems(t *testing.T) {
	c := &Config{
		Port:                   "abc",
		LogFormat:              "console",
		DatabaseType:           "sqlite",
		DatabasePath:           "./x.db",
		RateLimitRuntime:       "server",
		RateLimitSweepInterval: "1m",
		LockoutMaxAttempts:     "-1",
		LockoutDuration:        "15m",
	}

	err := c.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"PORT", "LOCKOUT_MAX_ATTEMPTS"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}
