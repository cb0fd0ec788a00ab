package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
	"github.com/dmitrijs2005/gophchat/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "14ms" or as integer nanoseconds.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	Token          string         `json:"token"`
	GeminiAPIKey   string         `json:"gemini_api_key"`
	GeminiModel    string         `json:"gemini_model"`
	RevealInterval timex.Duration `json:"reveal_interval"`
	DatabasePath   string         `json:"database_path"`
	ListRetryDelay timex.Duration `json:"list_retry_delay"`
	LogLevel       string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the file named by
// -c/-config or CONFIG. Absent fields keep their current values. Read or
// unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFile()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	for _, f := range []struct {
		dst *string
		v   string
	}{
		{&cfg.ServerURL, jc.ServerURL},
		{&cfg.Token, jc.Token},
		{&cfg.GeminiAPIKey, jc.GeminiAPIKey},
		{&cfg.GeminiModel, jc.GeminiModel},
		{&cfg.DatabasePath, jc.DatabasePath},
		{&cfg.LogLevel, jc.LogLevel},
	} {
		if f.v != "" {
			*f.dst = f.v
		}
	}
	if jc.RevealInterval.Duration > 0 {
		cfg.RevealInterval = jc.RevealInterval.Duration
	}
	if jc.ListRetryDelay.Duration > 0 {
		cfg.ListRetryDelay = jc.ListRetryDelay.Duration
	}
}
