package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CATALOGBOT_TELEGRAM_TOKEN", "123:abc")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":50051", cfg.GRPCAddr)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, "mysql", cfg.Store.Driver)
	assert.Equal(t, "sql", cfg.Ledger.Backend)
	assert.Equal(t, 720*time.Hour, cfg.Ledger.TTL)
	assert.Equal(t, 2, cfg.Session.BatchSize)
	assert.Equal(t, 16, cfg.Session.QueueSize)
	assert.Equal(t, 5*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Assistant.Model)
	assert.False(t, cfg.Assistant.Enabled())
	assert.Empty(t, cfg.AdminIDs)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CATALOGBOT_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("CATALOGBOT_ADMIN_IDS", "10, 20")
	t.Setenv("CATALOGBOT_STORE_DRIVER", "sqlite3")
	t.Setenv("CATALOGBOT_PAGINATION_BATCH_SIZE", "5")
	t.Setenv("CATALOGBOT_LEDGER_BACKEND", "redis")
	t.Setenv("CATALOGBOT_ASSISTANT_API_KEY", "sk-test")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20}, cfg.AdminIDs)
	assert.Equal(t, "sqlite3", cfg.Store.Driver)
	assert.Equal(t, 5, cfg.Session.BatchSize)
	assert.Equal(t, "redis", cfg.Ledger.Backend)
	assert.True(t, cfg.Assistant.Enabled())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  token: "from-file"
admin:
  ids: [7, 8]
store:
  driver: sqlite3
  dsn: /tmp/catalog.db
session:
  idle_timeout: 1m
`), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Telegram.Token)
	assert.Equal(t, []int64{7, 8}, cfg.AdminIDs)
	assert.Equal(t, "/tmp/catalog.db", cfg.Store.DSN)
	assert.Equal(t, time.Minute, cfg.Session.IdleTimeout)
}

func TestLoad_Validation(t *testing.T) {
	_, err := Load(New(), "")
	assert.ErrorIs(t, err, ErrMissingToken)

	for key, value := range map[string]string{
		"CATALOGBOT_STORE_DRIVER":          "postgres",
		"CATALOGBOT_LEDGER_BACKEND":        "etcd",
		"CATALOGBOT_PAGINATION_BATCH_SIZE": "0",
		"CATALOGBOT_SESSION_QUEUE_SIZE":    "-1",
		"CATALOGBOT_ADMIN_IDS":             "root",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv("CATALOGBOT_TELEGRAM_TOKEN", "123:abc")
			t.Setenv(key, value)
			_, err := Load(New(), "")
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
