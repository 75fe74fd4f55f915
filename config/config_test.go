package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("RATE_LIMIT_WINDOW", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_WINDOW", "10s")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, 10*time.Second, cfg.RateLimitWindow)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("RATE_LIMIT_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 5432, cfg.DBPort)
	assert.True(t, cfg.RateLimitEnabled)
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost: "db", DBPort: 5432, DBUser: "u", DBPassword: "p",
		DBName: "n", DBSSLMode: "disable", DBTimeZone: "UTC",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable TimeZone=UTC", cfg.DSN())
}
