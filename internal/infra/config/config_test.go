package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"PRACTICUM_TOKEN", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "PRACTICUM_ENDPOINT",
	"REQUEST_TIMEOUT", "POLL_INTERVAL", "POLL_SCHEDULE", "MAX_CYCLES", "SEND_RATE_PER_SEC",
	"COMMANDS_ENABLED", "CURSOR_STORE", "CURSOR_NAME", "DATABASE_URL", "REDIS_ADDR",
	"REDIS_PASSWORD", "REDIS_DB", "LOG_LEVEL", "ENVIRONMENT",
}

// cleanEnv blanks every variable Load reads and points CONFIG_FILE at path.
func cleanEnv(t *testing.T, path string) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
	t.Setenv("CONFIG_FILE", path)
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, 600*time.Second, cfg.PollInterval)
	assert.Zero(t, cfg.RequestTimeout)
	assert.Empty(t, cfg.PollSchedule)
	assert.Zero(t, cfg.MaxCycles)
	assert.Equal(t, 1, cfg.SendRatePerSec)
	assert.False(t, cfg.CommandsEnabled)
	assert.Equal(t, CursorStoreMemory, cfg.CursorStore)
	assert.Equal(t, "default", cfg.CursorName)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.ErrorIs(t, cfg.Credentials.Validate(), ErrMissingCredential)
}

func TestLoad_EnvValues(t *testing.T) {
	cleanEnv(t, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PRACTICUM_TOKEN", "p-token")
	t.Setenv("TELEGRAM_TOKEN", "t-token")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234567890")
	t.Setenv("POLL_INTERVAL", "300")
	t.Setenv("REQUEST_TIMEOUT", "15s")
	t.Setenv("MAX_CYCLES", "3")
	t.Setenv("COMMANDS_ENABLED", "true")
	t.Setenv("CURSOR_STORE", "REDIS")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.NoError(t, cfg.Credentials.Validate())
	assert.Equal(t, "p-token", cfg.Credentials.PracticumToken)
	assert.Equal(t, "t-token", cfg.Credentials.TelegramToken)
	assert.Equal(t, "-1001234567890", cfg.Credentials.TelegramChatID)
	assert.Equal(t, 300*time.Second, cfg.PollInterval)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.MaxCycles)
	assert.True(t, cfg.CommandsEnabled)
	assert.Equal(t, CursorStoreRedis, cfg.CursorStore)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_ChatIDIsOpaque(t *testing.T) {
	cases := map[string]string{
		"channel name": "@homework_channel",
		"zero":         "0",
	}
	for name, chatID := range cases {
		t.Run(name, func(t *testing.T) {
			cleanEnv(t, filepath.Join(t.TempDir(), "missing.yaml"))
			t.Setenv("PRACTICUM_TOKEN", "p")
			t.Setenv("TELEGRAM_TOKEN", "t")
			t.Setenv("TELEGRAM_CHAT_ID", " "+chatID+" ")

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, chatID, cfg.Credentials.TelegramChatID)
			assert.NoError(t, cfg.Credentials.Validate())
		})
	}
}

func TestLoad_YAMLFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
practicum:
  endpoint: https://example.test/api/
poll:
  interval: 2m
  schedule: "@every 5m"
  max_cycles: 10
telegram:
  send_rate_per_sec: 5
  commands_enabled: true
cursor:
  store: postgres
  name: student-42
  database_url: postgres://bot@localhost/bot?sslmode=disable
log:
  level: warn
  environment: production
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	cleanEnv(t, path)
	t.Setenv("MAX_CYCLES", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/api/", cfg.Endpoint)
	assert.Equal(t, 2*time.Minute, cfg.PollInterval)
	assert.Equal(t, "@every 5m", cfg.PollSchedule)
	assert.Equal(t, 1, cfg.MaxCycles)
	assert.Equal(t, 5, cfg.SendRatePerSec)
	assert.True(t, cfg.CommandsEnabled)
	assert.Equal(t, CursorStorePostgres, cfg.CursorStore)
	assert.Equal(t, "student-42", cfg.CursorName)
	assert.Equal(t, "postgres://bot@localhost/bot?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"interval":       {"POLL_INTERVAL", "soon"},
		"zero interval":  {"POLL_INTERVAL", "0s"},
		"max cycles":     {"MAX_CYCLES", "-1"},
		"commands":       {"COMMANDS_ENABLED", "maybe"},
		"store":          {"CURSOR_STORE", "etcd"},
		"postgres no db": {"CURSOR_STORE", "postgres"},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			cleanEnv(t, filepath.Join(t.TempDir(), "missing.yaml"))
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_BrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("poll: [unclosed"), 0o600))
	cleanEnv(t, path)

	_, err := Load()
	assert.Error(t, err)
}

func TestCredentialsValidate(t *testing.T) {
	full := Credentials{PracticumToken: "p", TelegramToken: "t", TelegramChatID: "42"}
	require.NoError(t, full.Validate())

	cases := map[string]struct {
		creds Credentials
		name  string
	}{
		"practicum":  {Credentials{TelegramToken: "t", TelegramChatID: "42"}, "PRACTICUM_TOKEN"},
		"telegram":   {Credentials{PracticumToken: "p", TelegramChatID: "42"}, "TELEGRAM_TOKEN"},
		"chat":       {Credentials{PracticumToken: "p", TelegramToken: "t"}, "TELEGRAM_CHAT_ID"},
		"blank chat": {Credentials{PracticumToken: "p", TelegramToken: "t", TelegramChatID: "  "}, "TELEGRAM_CHAT_ID"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.creds.Validate()
			assert.ErrorIs(t, err, ErrMissingCredential)
			assert.Contains(t, err.Error(), tc.name)
		})
	}
}
