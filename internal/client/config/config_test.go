package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CHAT_SERVER_URL", "CHAT_TOKEN", "GEMINI_API_KEY", "GEMINI_MODEL", "CHAT_DB_PATH", "CONFIG"} {
		t.Setenv(k, "")
	}
}

func setArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"client"}, args...)
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:3000", c.ServerURL)
	assert.Equal(t, "gemini-2.5-flash", c.GeminiModel)
	assert.Equal(t, 14*time.Millisecond, c.RevealInterval)
	assert.Equal(t, "chat.db", c.DatabasePath)
	assert.Equal(t, time.Second, c.ListRetryDelay)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	clearEnv(t)
	setArgs(t)

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://localhost:3000", cfg.ServerURL)
	assert.Equal(t, 14*time.Millisecond, cfg.RevealInterval)
}

func TestLoadConfig_Precedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "client.json")
	b, err := json.Marshal(map[string]any{
		"server_url":       "http://json:3000",
		"token":            "json-token",
		"gemini_api_key":   "json-key",
		"reveal_interval":  "20ms",
		"list_retry_delay": "2s",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))

	t.Setenv("CHAT_TOKEN", "env-token")
	t.Setenv("GEMINI_API_KEY", "env-key")
	setArgs(t, "-c", path, "-k", "flag-key", "-i", "5")

	cfg := LoadConfig()

	want := &Config{
		ServerURL:      "http://json:3000",
		Token:          "env-token",
		GeminiAPIKey:   "flag-key",
		GeminiModel:    "gemini-2.5-flash",
		RevealInterval: 5 * time.Millisecond,
		DatabasePath:   "chat.db",
		ListRetryDelay: 2 * time.Second,
		LogLevel:       "warn",
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestParseFlags(t *testing.T) {
	setArgs(t, "-a", "http://h:1", "-t", "tok", "-k", "key", "-m", "gemini-x", "-i", "30", "-f", "/tmp/c.db", "-l", "debug", "-z", "ignored")

	cfg := &Config{}
	require.NotPanics(t, func() { parseFlags(cfg) })

	assert.Empty(t, cmp.Diff(&Config{
		ServerURL:      "http://h:1",
		Token:          "tok",
		GeminiAPIKey:   "key",
		GeminiModel:    "gemini-x",
		RevealInterval: 30 * time.Millisecond,
		DatabasePath:   "/tmp/c.db",
		LogLevel:       "debug",
	}, cfg))
}

func TestParseFlags_BadInterval(t *testing.T) {
	setArgs(t, "-i", "fast")
	require.Panics(t, func() { parseFlags(&Config{}) })
}

func TestParseJson_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ nope`), 0o600))
	setArgs(t, "-config", bad)
	require.Panics(t, func() { parseJson(&Config{}) })

	setArgs(t, "-config", filepath.Join(dir, "missing.json"))
	require.Panics(t, func() { parseJson(&Config{}) })
}

func TestParseEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHAT_SERVER_URL", "http://env:3000")
	t.Setenv("GEMINI_MODEL", "gemini-env")
	t.Setenv("CHAT_DB_PATH", "/var/lib/chat.db")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "http://env:3000", cfg.ServerURL)
	assert.Equal(t, "gemini-env", cfg.GeminiModel)
	assert.Equal(t, "/var/lib/chat.db", cfg.DatabasePath)
	assert.Empty(t, cfg.Token)
}

func TestValidate(t *testing.T) {
	var c Config
	c.LoadDefaults()
	require.ErrorContains(t, c.Validate(), "Gemini API key")

	c.GeminiAPIKey = "k"
	require.NoError(t, c.Validate())

	c.ServerURL = " "
	require.ErrorContains(t, c.Validate(), "server URL")
}
