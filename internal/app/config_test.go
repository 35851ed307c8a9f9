package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/omnimarket/omnimarket/internal/platform/kv"
)

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	unsetenv(t, "STORE_DRIVER", "STORE_CODEC", "APP_ADDR", "APP_ENV", "RATE_LIMIT_PER_MINUTE", "LOG_FORMAT", "SQLITE_PATH")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, kv.DriverSQLite, cfg.StoreDriver)
	require.Equal(t, "json", cfg.StoreCodec)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, 300, cfg.RateLimitPerMinute)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnv(t *testing.T) {
	unsetenv(t, "REDIS_PREFIX", "LOG_FORMAT", "APP_ADDR")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("STORE_CODEC", "msgpack")
	t.Setenv("REDIS_ADDR", "10.0.0.5:6379")
	t.Setenv("APP_ENV", "production")
	cfg, err := LoadConfig()
	require.NoError(t, err)

	opts := cfg.StoreOptions()
	require.Equal(t, kv.DriverRedis, opts.Driver)
	require.Equal(t, "10.0.0.5:6379", opts.RedisAddr)
	require.Equal(t, "omnimarket:", opts.RedisPrefix)
	require.True(t, cfg.IsProduction())
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	base := func() Config {
		return Config{AppAddr: ":8080", LogFormat: "json", StoreDriver: "memory", StoreCodec: "json"}
	}
	cfg := base()
	require.NoError(t, cfg.Validate())

	cfg = base()
	cfg.StoreDriver = "mongo"
	require.ErrorContains(t, cfg.Validate(), "StoreDriver")

	cfg = base()
	cfg.StoreCodec = "gob"
	require.ErrorContains(t, cfg.Validate(), "StoreCodec")

	cfg = base()
	cfg.StoreDriver = kv.DriverSQLite
	require.ErrorContains(t, cfg.Validate(), "SQLITE_PATH")

	var nilCfg *Config
	require.Error(t, nilCfg.Validate())
}
