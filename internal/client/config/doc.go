// Package config loads runtime configuration for the GophChat terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c/-config or the CONFIG variable.
//  3. Environment: CHAT_SERVER_URL, CHAT_TOKEN, GEMINI_API_KEY, GEMINI_MODEL, CHAT_DB_PATH.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// Intervals accept strings like "14ms" or integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:3000",
//	  "gemini_model": "gemini-2.5-flash",
//	  "reveal_interval": "14ms",
//	  "list_retry_delay": "1s",
//	  "database_path": "chat.db"
//	}
package config
