// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds runtime settings for the GophChat server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the REST API.
//   - DatabaseDSN: PostgreSQL DSN (pgx).
//   - SecretKey: HMAC secret shared with the identity provider (HS256 bearer tokens).
//   - ClientURL: origin allowed by CORS.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible media store.
//   - S3Bucket / S3Region / S3BaseEndpoint: media store settings.
//   - UploadURLValidity: lifetime of presigned upload URLs.
//   - TokenValidity: lifetime of tokens minted by cmd/tokengen.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrHTTP  string
	DatabaseDSN       string
	SecretKey         string
	ClientURL         string
	S3RootUser        string
	S3RootPassword    string
	S3Bucket          string
	S3Region          string
	S3BaseEndpoint    string
	UploadURLValidity time.Duration
	TokenValidity     time.Duration
	LogLevel          string
}

// LoadDefaults populates the optional settings. Secrets, the DSN and the
// media store location have no defaults and must be supplied.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":3000"
	c.ClientURL = "http://localhost:5173"
	c.S3Region = "us-east-1"
	c.UploadURLValidity = 15 * time.Minute
	c.TokenValidity = 60 * time.Minute
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate reports every required setting that is still empty.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"database DSN", c.DatabaseDSN},
		{"secret key", c.SecretKey},
		{"S3 access key", c.S3RootUser},
		{"S3 secret key", c.S3RootPassword},
		{"S3 bucket", c.S3Bucket},
		{"S3 endpoint", c.S3BaseEndpoint},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.UploadURLValidity <= 0 {
		return errors.New("upload URL validity must be positive")
	}
	return nil
}
