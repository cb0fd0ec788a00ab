package config

import "os"

// parseEnv overlays CHAT_SERVER_URL, CHAT_TOKEN, GEMINI_API_KEY,
// GEMINI_MODEL and CHAT_DB_PATH. Empty variables are ignored.
func parseEnv(cfg *Config) {
	for key, dst := range map[string]*string{
		"CHAT_SERVER_URL": &cfg.ServerURL,
		"CHAT_TOKEN":      &cfg.Token,
		"GEMINI_API_KEY":  &cfg.GeminiAPIKey,
		"GEMINI_MODEL":    &cfg.GeminiModel,
		"CHAT_DB_PATH":    &cfg.DatabasePath,
	} {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
}
