package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.UTC, cfg.Search.Location)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
  request_timeout: 3s
  cors_origins: ["https://map.example.com"]
database:
  driver: postgres
  host: db.internal
  name: transit
search:
  timezone: Europe/Moscow
  default_results: 5
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_HOST", "db.override")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db.override", cfg.Database.Host)
	assert.Equal(t, "transit", cfg.Database.Name)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Search.DefaultResults)
	assert.Equal(t, "Europe/Moscow", cfg.Search.Location.String())
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "UnknownDriver", env: map[string]string{"DB_DRIVER": "mysql"}},
		{name: "BadPort", env: map[string]string{"PORT": "http"}},
		{name: "BadLevel", env: map[string]string{"LOG_LEVEL": "loud"}},
		{name: "ShortSecret", env: map[string]string{"JWT_SECRET": "abc"}},
		{name: "AdminWithoutPassword", env: map[string]string{"ADMIN_EMAIL": "ops@example.com"}},
		{name: "UnknownTimeZone", env: map[string]string{"SEARCH_TIMEZONE": "Mars/Olympus"}},
		{name: "TooManyResults", env: map[string]string{"SEARCH_DEFAULT_RESULTS": "50"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestMalformedEnvKeepsDefault(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "lots")
	t.Setenv("LOG_STDOUT", "maybe")
	t.Setenv("REQUEST_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Log.Stdout)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
}

func TestDSN(t *testing.T) {
	d := Default().Database
	assert.Equal(t,
		"host=localhost user=postgres password=password dbname=bus_info port=5432 sslmode=disable TimeZone=UTC",
		d.DSN())
	assert.Equal(t, "postgres", d.Dialector().Name())
}
