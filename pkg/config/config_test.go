package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_YAMLAndDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: gateway
  port: "9000"
database:
  driver: sqlite
  path: /tmp/gateway.db
webhook:
  timeout: 3s
scheduler:
  interval: 250ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gateway", cfg.App.Name)
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 3*time.Second, cfg.Webhook.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Scheduler.Interval)
	assert.Equal(t, 8, cfg.Webhook.Workers)
	assert.Equal(t, 1024, cfg.Webhook.QueueSize)
	assert.Equal(t, "WA-AKG-Webhook/1.0", cfg.Webhook.UserAgent)
	assert.Equal(t, "sqlite", cfg.Store.Dialect)
	assert.NotEmpty(t, cfg.Store.DSN)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
  host: yaml-host
  name: yaml-db
`)
	t.Setenv("DB_HOST", "env-host")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("APP_PORT", "7000")
	t.Setenv("WEBHOOK_WORKERS", "2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, "secret", cfg.Database.Pass)
	assert.Equal(t, "yaml-db", cfg.Database.Name)
	assert.Equal(t, "7000", cfg.App.Port)
	assert.Equal(t, 2, cfg.Webhook.Workers)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/x.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.App.Port)
	assert.Equal(t, 10*time.Second, cfg.Scheduler.Interval)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: mysql
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_PostgresRequiresHost(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
  name: db
`)
	_, err := Load(path)
	assert.Error(t, err)
}
