package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
narodmon:
  api_key: "abcdef123456"
  uuid: "0123456789abcdef"
  radius: 20

homeassistant:
  url: "http://hass.local:8123"
  token: "long-lived"

schedule:
  startup_delay: 5s
  interval: 10m

server:
  grpc_port: 6000
  host: "127.0.0.1"

database:
  driver: timescale
  host: "localhost"
  port: 5432
  name: "testdb"
  user: "testuser"
  password: "testpass"

logging:
  level: "debug"
  format: "text"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// Test loading configuration
	config, err := Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, config)

	// Verify loaded values
	assert.Equal(t, "abcdef123456", config.Narodmon.APIKey)
	assert.Equal(t, "0123456789abcdef", config.Narodmon.UUID)
	assert.Equal(t, 20, config.Narodmon.Radius)
	assert.Equal(t, "http://hass.local:8123", config.HomeAssistant.URL)
	assert.Equal(t, 5*time.Second, config.Schedule.StartupDelay)
	assert.Equal(t, 10*time.Minute, config.Schedule.Interval)
	assert.Equal(t, 6000, config.Server.GRPCPort)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, "timescale", config.Database.Driver)
	assert.Equal(t, "testdb", config.Database.Name)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "text", config.Logging.Format)
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("narodmon:\n  api_key: key\n"), 0644))

	config, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://api.narodmon.ru", config.Narodmon.URL)
	assert.Equal(t, "ru", config.Narodmon.Lang)
	assert.Equal(t, 10, config.Narodmon.Radius)
	assert.Equal(t, 3, config.Narodmon.UTCOffset)
	assert.Equal(t, 15*time.Second, config.Narodmon.NearbyTimeout)
	assert.Equal(t, 10*time.Second, config.Narodmon.CatalogTimeout)
	assert.Equal(t, 24*time.Hour, config.Narodmon.CatalogTTL)
	assert.Equal(t, "zone.home", config.HomeAssistant.Zone)
	assert.Equal(t, 30*time.Second, config.Schedule.StartupDelay)
	assert.Equal(t, 30*time.Minute, config.Schedule.Interval)
	assert.Equal(t, []string{"sensor.narodmon_", "sensor.test_", "input_text.narodmon_"}, config.Removal.Prefixes)
	assert.Equal(t, 100*time.Millisecond, config.Removal.Pause)
	assert.Equal(t, "", config.Database.Driver)
	assert.Equal(t, "json", config.Logging.Format)
}

func TestLoadWithEnvOverride(t *testing.T) {
	// Set environment variables
	t.Setenv("NARODMON_API_KEY", "from-env")
	t.Setenv("APP_DATABASE_HOST", "envhost")
	t.Setenv("APP_DATABASE_PORT", "5433")

	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
narodmon:
  api_key: ${NARODMON_API_KEY}

database:
  host: $APP_DATABASE_HOST
  port: $APP_DATABASE_PORT
  name: "testdb"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// Test loading configuration
	config, err := Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, config)

	// Verify environment variables override config file
	assert.Equal(t, "from-env", config.Narodmon.APIKey)
	assert.Equal(t, "envhost", config.Database.Host)
	assert.Equal(t, 5433, config.Database.Port)
}

func TestLoadDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("TEST_DOTENV_HASS_TOKEN=dotenv-token\n"), 0644))
	require.NoError(t, os.WriteFile(configPath, []byte("homeassistant:\n  token: $TEST_DOTENV_HASS_TOKEN\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("TEST_DOTENV_HASS_TOKEN") })

	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-token", config.HomeAssistant.Token)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestPostgresDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable", ConnectionTimeout: 5}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable connect_timeout=5", d.PostgresDSN())
}
