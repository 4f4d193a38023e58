package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config lookups at empty temp dirs.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("ZSPACE_CONFIG", "")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.zspace.dev", c.API.BaseURL)
	assert.Equal(t, 30*time.Second, c.API.Timeout)
	assert.Equal(t, 5.0, c.API.RateLimit)
	assert.Equal(t, 2, c.API.Burst)
	assert.Equal(t, "https://zspace.dev", c.Web.BaseURL)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_DATA_HOME"), "zspace"), c.DataDir)
}

func TestLoadFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	data := `data_dir = "/tmp/zs"

[api]
base_url = "http://localhost:8080"
timeout = "5s"
burst = 4

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	t.Setenv("ZSPACE_CONFIG", path)

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", c.API.BaseURL)
	assert.Equal(t, 5*time.Second, c.API.Timeout)
	assert.Equal(t, 4, c.API.Burst)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "/tmp/zs", c.DataDir)
}

func TestLoadEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("ZSPACE_API_BASE_URL", "http://env.example")
	t.Setenv("ZSPACE_LOG_LEVEL", "warn")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://env.example", c.API.BaseURL)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	t.Setenv("ZSPACE_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestAPIClientConfig(t *testing.T) {
	c := Config{API: APIConfig{BaseURL: "http://x", Timeout: time.Second, RateLimit: 1, Burst: 3}}

	got := c.APIClientConfig("tok")
	assert.Equal(t, "http://x", got.BaseURL)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, time.Second, got.Timeout)
	assert.Equal(t, 1.0, got.RateLimit)
	assert.Equal(t, 3, got.Burst)
}
