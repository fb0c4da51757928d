package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every GHDOC_ env var that Load() reads.
var allConfigKeys = []string{
	"GHDOC_CONFIG",
	"GHDOC_GITHUB_TOKEN",
	"GHDOC_GITHUB_BASE_URL",
	"GHDOC_LISTEN_ADDR",
	"GHDOC_DB_PATH",
	"GHDOC_SCHEME",
	"GHDOC_LOG_LEVEL",
	"GHDOC_MESSAGE_LIMIT",
	"GHDOC_SHUTDOWN_TIMEOUT",
}

// isolateConfigEnv saves and unsets all GHDOC_ env vars so tests don't
// inherit values from the host environment.
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ghdoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "ghdoc.db", cfg.DBPath)
	assert.Equal(t, "gh", cfg.Scheme)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 50, cfg.MessageLimit)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.HasGitHubCredentials())
}

func TestLoad_Env(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GHDOC_GITHUB_TOKEN", "ghp_test123")
	t.Setenv("GHDOC_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("GHDOC_DB_PATH", "/tmp/test.db")
	t.Setenv("GHDOC_SCHEME", "ghdoc")
	t.Setenv("GHDOC_LOG_LEVEL", "debug")
	t.Setenv("GHDOC_MESSAGE_LIMIT", "5")
	t.Setenv("GHDOC_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()

	require.NoError(t, err)
	assert.True(t, cfg.HasGitHubCredentials())
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "ghdoc", cfg.Scheme)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 5, cfg.MessageLimit)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_FileBeneathEnv(t *testing.T) {
	isolateConfigEnv(t)
	path := writeConfigFile(t, `
github_token: from-file
listen_addr: 127.0.0.1:7000
db_path: /var/lib/ghdoc/state.db
log_level: warn
shutdown_timeout: 30s
`)
	t.Setenv("GHDOC_CONFIG", path)
	t.Setenv("GHDOC_LISTEN_ADDR", "127.0.0.1:7001")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.GitHubToken)
	assert.Equal(t, "127.0.0.1:7001", cfg.ListenAddr, "env wins over the file")
	assert.Equal(t, "/var/lib/ghdoc/state.db", cfg.DBPath)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "gh", cfg.Scheme, "unset keys keep their defaults")
}

func TestLoad_FileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "malformed yaml", content: "listen_addr: [", want: "parsing config file"},
		{name: "bad level", content: "log_level: loud", want: "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv("GHDOC_CONFIG", writeConfigFile(t, tt.content))

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GHDOC_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{key: "GHDOC_LOG_LEVEL", value: "loud"},
		{key: "GHDOC_MESSAGE_LIMIT", value: "many"},
		{key: "GHDOC_MESSAGE_LIMIT", value: "0"},
		{key: "GHDOC_SHUTDOWN_TIMEOUT", value: "soon"},
		{key: "GHDOC_SCHEME", value: "gh://"},
		{key: "GHDOC_SCHEME", value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
