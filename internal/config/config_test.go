package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("AUTH_JWT_SECRET", "jwt-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Empty(t, cfg.Events.Brokers)
	assert.Equal(t, []string{"Content-Type", "Authorization"}, cfg.CORS.AllowedHeaders)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/test.db")
	t.Setenv("AUTH_JWT_SECRET", "jwt-secret")
	t.Setenv("LOOKUP_TIMEOUT", "2s")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("QUOTE_CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.Database.DSN())
	assert.Equal(t, 2*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.Brokers)
	assert.Equal(t, 6*time.Hour, cfg.Cache.TTL, "invalid durations fall back to the default")
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("missing db password", func(t *testing.T) {
		t.Setenv("DB_PASSWORD", "")
		t.Setenv("AUTH_JWT_SECRET", "jwt-secret")
		_, err := Load()
		assert.ErrorContains(t, err, "DB_PASSWORD")
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		t.Setenv("DB_PASSWORD", "secret")
		t.Setenv("AUTH_JWT_SECRET", "")
		_, err := Load()
		assert.ErrorContains(t, err, "AUTH_JWT_SECRET")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mysql")
		t.Setenv("AUTH_JWT_SECRET", "jwt-secret")
		_, err := Load()
		assert.ErrorContains(t, err, "unsupported DB_DRIVER")
	})

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "eighty")
		_, err := Load()
		assert.ErrorContains(t, err, "invalid SERVER_PORT")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{
		Driver:   "postgres",
		Host:     "db",
		Port:     5432,
		Username: "app",
		Password: "p@ss/word",
		Name:     "landedcost",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/landedcost?sslmode=disable", c.DSN())
}

func TestLogConfig_SlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogConfig{Level: "DEBUG"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "warning"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "whatever"}.SlogLevel())
}
