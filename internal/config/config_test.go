package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/device-info-service/internal/config"
)

var allVariables = []string{
	"APP_ENV", "STORE_DRIVER", "DATABASE", "DB_URL", "PORT", "CORS_ALLOWED_ORIGINS",
	"ENRICH_CONCURRENCY", "DB_CONNECT_RETRIES", "SENTRY_DSN",
}

// clearEnv blanks every variable Load reads. t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range allVariables {
		t.Setenv(v, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("database is required", func(t *testing.T) {
		clearEnv(t)

		_, err := config.Load()
		require.ErrorIs(t, err, config.ErrMissingRequiredValue)
	})

	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE", "postgres://localhost/devices")

		conf, err := config.Load()
		require.NoError(t, err)
		require.Equal(t, "postgres://localhost/devices", conf.DBURL)
		require.Equal(t, "4002", conf.Port)
		require.Equal(t, config.StoreDriverPostgres, conf.StoreDriver)
		require.Equal(t, []string{"*"}, conf.CORSAllowedOrigins)
		require.False(t, conf.CORSAllowCredentials())
		require.Equal(t, 8, conf.EnrichConcurrency)
		require.Equal(t, uint64(5), conf.DBConnectRetries)
		require.Equal(t, "development", conf.Environment)
		require.Empty(t, conf.SentryDSN)
	})

	t.Run("DB_URL fallback", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_URL", "postgres://fallback/devices")

		conf, err := config.Load()
		require.NoError(t, err)
		require.Equal(t, "postgres://fallback/devices", conf.DBURL)
	})

	t.Run("memory store needs no database", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORE_DRIVER", "memory")

		conf, err := config.Load()
		require.NoError(t, err)
		require.Equal(t, config.StoreDriverMemory, conf.StoreDriver)
	})

	t.Run("values are read correctly", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")
		t.Setenv("DATABASE", "postgres://db/devices")
		t.Setenv("PORT", "8080")
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com , https://b.example.com,")
		t.Setenv("ENRICH_CONCURRENCY", "16")
		t.Setenv("DB_CONNECT_RETRIES", "0")
		t.Setenv("SENTRY_DSN", "https://key@sentry.example.com/1")

		conf, err := config.Load()
		require.NoError(t, err)
		require.Equal(t, "production", conf.Environment)
		require.Equal(t, "8080", conf.Port)
		require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, conf.CORSAllowedOrigins)
		require.True(t, conf.CORSAllowCredentials())
		require.Equal(t, 16, conf.EnrichConcurrency)
		require.Equal(t, uint64(0), conf.DBConnectRetries)
		require.Equal(t, "https://key@sentry.example.com/1", conf.SentryDSN)

		require.NotContains(t, conf.NonSensitiveString(), "postgres://db/devices")
		require.NotContains(t, conf.NonSensitiveString(), "sentry.example.com")
	})

	t.Run("invalid values", func(t *testing.T) {
		for key, value := range map[string]string{
			"APP_ENV":            "prod",
			"STORE_DRIVER":       "mongo",
			"PORT":               "http",
			"ENRICH_CONCURRENCY": "0",
			"DB_CONNECT_RETRIES": "-1",
		} {
			t.Run(key, func(t *testing.T) {
				clearEnv(t)
				t.Setenv("DATABASE", "postgres://db/devices")
				t.Setenv(key, value)

				_, err := config.Load()
				require.ErrorIs(t, err, config.ErrInvalidValue)
			})
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is fine", func(t *testing.T) {
		t.Chdir(t.TempDir())
		require.NoError(t, config.LoadDotEnv())
	})

	t.Run("file is loaded", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DEVICE_INFO_DOTENV_TEST=loaded\n"), 0o600))
		t.Chdir(dir)
		t.Setenv("DEVICE_INFO_DOTENV_TEST", "")
		os.Unsetenv("DEVICE_INFO_DOTENV_TEST")

		require.NoError(t, config.LoadDotEnv())
		require.Equal(t, "loaded", os.Getenv("DEVICE_INFO_DOTENV_TEST"))
	})
}
