package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CODEPAD_CONFIG_PATH",
	"CODEPAD_SERVER_HOST",
	"CODEPAD_SERVER_PORT",
	"CODEPAD_TRANSPORT",
	"CODEPAD_STORAGE_DRIVER",
	"CODEPAD_STORAGE_PATH",
	"CODEPAD_STORAGE_KEY",
	"CODEPAD_ID_SCHEME",
	"CODEPAD_RESET_ON_SWITCH",
	"CODEPAD_ASSISTANT_DELAY",
	"CODEPAD_LOG_LEVEL",
	"CODEPAD_LOG_PATH",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, TransportStdio, cfg.Transport.Mode)
	require.Equal(t, DriverSQLite, cfg.Storage.Driver)
	require.Equal(t, "mycoder-projects", cfg.Storage.Key)
	require.Equal(t, "codepad.db", filepath.Base(cfg.Storage.Path))
	require.Equal(t, IDSchemeUUID, cfg.IDs.Scheme)
	require.True(t, cfg.Workspace.ResetOnProjectSwitch)
	require.Equal(t, 600*time.Millisecond, cfg.Assistant.ReplyDelay)
	require.True(t, cfg.Assistant.Visible)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "codepad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
storage:
  driver: file
ids:
  scheme: timestamp
workspace:
  reset_on_project_switch: false
assistant:
  reply_delay: 1s
  visible: false
log:
  level: debug
`), 0o600))

	t.Setenv("CODEPAD_CONFIG_PATH", path)
	t.Setenv("CODEPAD_SERVER_PORT", "9100")
	t.Setenv("CODEPAD_ASSISTANT_DELAY", "250ms")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, DriverFile, cfg.Storage.Driver)
	require.Equal(t, "state.json", filepath.Base(cfg.Storage.Path))
	require.Equal(t, IDSchemeTimestamp, cfg.IDs.Scheme)
	require.False(t, cfg.Workspace.ResetOnProjectSwitch)
	require.Equal(t, 250*time.Millisecond, cfg.Assistant.ReplyDelay)
	require.False(t, cfg.Assistant.Visible)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CODEPAD_TRANSPORT", "http")
	t.Setenv("CODEPAD_STORAGE_PATH", "/tmp/x.db")
	t.Setenv("CODEPAD_STORAGE_KEY", "other")
	t.Setenv("CODEPAD_RESET_ON_SWITCH", "false")
	t.Setenv("CODEPAD_LOG_PATH", "/tmp/codepad.log")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, TransportHTTP, cfg.Transport.Mode)
	require.Equal(t, "/tmp/x.db", cfg.Storage.Path)
	require.Equal(t, "other", cfg.Storage.Key)
	require.False(t, cfg.Workspace.ResetOnProjectSwitch)
	require.Equal(t, "/tmp/codepad.log", cfg.Log.Path)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port", "CODEPAD_SERVER_PORT", "abc"},
		{"transport", "CODEPAD_TRANSPORT", "carrier-pigeon"},
		{"driver", "CODEPAD_STORAGE_DRIVER", "redis"},
		{"scheme", "CODEPAD_ID_SCHEME", "random"},
		{"reset", "CODEPAD_RESET_ON_SWITCH", "maybe"},
		{"delay", "CODEPAD_ASSISTANT_DELAY", "soon"},
		{"negative delay", "CODEPAD_ASSISTANT_DELAY", "-1s"},
		{"level", "CODEPAD_LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CODEPAD_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.Error(t, err)
}
