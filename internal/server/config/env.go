package config

import (
	"os"
	"strings"
)

// parseEnv overlays values from environment variables:
//
//	PORT            listen port, becomes ":PORT"
//	DATABASE_DSN    PostgreSQL DSN
//	AUTH_SECRET_KEY HMAC secret for bearer tokens
//	CLIENT_URL      CORS origin
//	S3_ACCESS_KEY   S3 access key
//	S3_SECRET_KEY   S3 secret key
//	S3_BUCKET       S3 bucket
//	S3_REGION       S3 region
//	S3_ENDPOINT     S3 base endpoint
//	LOG_LEVEL       log level
//
// Unset or empty variables leave the current value untouched.
func parseEnv(config *Config) {
	if port, ok := lookup("PORT"); ok {
		if strings.Contains(port, ":") {
			config.EndpointAddrHTTP = port
		} else {
			config.EndpointAddrHTTP = ":" + port
		}
	}

	setFromEnv(&config.DatabaseDSN, "DATABASE_DSN")
	setFromEnv(&config.SecretKey, "AUTH_SECRET_KEY")
	setFromEnv(&config.ClientURL, "CLIENT_URL")
	setFromEnv(&config.S3RootUser, "S3_ACCESS_KEY")
	setFromEnv(&config.S3RootPassword, "S3_SECRET_KEY")
	setFromEnv(&config.S3Bucket, "S3_BUCKET")
	setFromEnv(&config.S3Region, "S3_REGION")
	setFromEnv(&config.S3BaseEndpoint, "S3_ENDPOINT")
	setFromEnv(&config.LogLevel, "LOG_LEVEL")
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func setFromEnv(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}
