package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, "badger", cfg.Store.Backend)
	assert.NotEmpty(t, cfg.Store.Badger.Path)
	assert.Equal(t, "http://127.0.0.1:7379", cfg.Store.Webdis.Host)
	assert.Equal(t, 7380, cfg.API.Port)
	assert.Equal(t, 30*time.Second, cfg.API.ReadTimeout)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestValidateDefaults(t *testing.T) {
	require.NoError(t, Validate(GetDefaultConfig()))
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "LOUD"
	assert.Error(t, Validate(cfg))

	cfg = GetDefaultConfig()
	cfg.Store.Backend = "etcd"
	assert.Error(t, Validate(cfg))

	cfg = GetDefaultConfig()
	cfg.API.Port = 99999
	assert.Error(t, Validate(cfg))

	cfg = GetDefaultConfig()
	cfg.Store.Backend = "webdis"
	cfg.Store.Webdis.Host = "not a url"
	assert.Error(t, Validate(cfg))
}

func TestValidateAuthSecret(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.API.Auth.Enabled = true
	cfg.API.Auth.Secret = "short"
	assert.Error(t, Validate(cfg))

	cfg.API.Auth.Secret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, Validate(cfg))
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Logging.Level = "DEBUG"
	cfg.Store.Backend = "webdis"
	cfg.Store.Webdis.Host = "http://localhost:7379"
	cfg.API.Port = 8080
	require.NoError(t, Save(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", loaded.Logging.Level)
	assert.Equal(t, "webdis", loaded.Store.Backend)
	assert.Equal(t, "http://localhost:7379", loaded.Store.Webdis.Host)
	assert.Equal(t, 8080, loaded.API.Port)

	// Unset fields come back defaulted.
	assert.Equal(t, 120*time.Second, loaded.API.IdleTimeout)
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "badger", cfg.Store.Backend)
}

func TestMustLoadMissingExplicitFile(t *testing.T) {
	_, err := MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config init")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("REDBIOM_LOGGING_LEVEL", "DEBUG")
	t.Setenv("REDBIOM_STORE_BACKEND", "webdis")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "webdis", cfg.Store.Backend)
}

func TestGetAuthSecretPrefersEnv(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.API.Auth.Secret = "from-file-0123456789abcdef012345"

	assert.Equal(t, "from-file-0123456789abcdef012345", cfg.API.GetAuthSecret())

	t.Setenv(EnvAuthSecret, "from-env-0123456789abcdef0123456")
	assert.Equal(t, "from-env-0123456789abcdef0123456", cfg.API.GetAuthSecret())
}

func TestDurationStringsInConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"api:\n  read_timeout: 15s\n  write_timeout: 1m\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.API.ReadTimeout)
	assert.Equal(t, time.Minute, cfg.API.WriteTimeout)
}
