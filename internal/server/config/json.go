package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
	"github.com/dmitrijs2005/gophchat/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations use
// timex.Duration, so "15m" and integer nanoseconds are both accepted.
type JsonConfig struct {
	EndpointAddrHTTP  string         `json:"endpoint_addr_http"`
	DatabaseDSN       string         `json:"database_dsn"`
	SecretKey         string         `json:"secret_key"`
	ClientURL         string         `json:"client_url"`
	S3RootUser        string         `json:"s3_root_user"`
	S3RootPassword    string         `json:"s3_root_password"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
	UploadURLValidity timex.Duration `json:"upload_url_validity"`
	TokenValidity     timex.Duration `json:"token_validity"`
	LogLevel          string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config (or CONFIG) into config.
// Fields absent from the file keep their current values. A file that cannot
// be read or parsed panics, as a broken config must stop start-up.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.ClientURL, c.ClientURL)
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.LogLevel, c.LogLevel)

	if c.UploadURLValidity.Duration > 0 {
		config.UploadURLValidity = c.UploadURLValidity.Duration
	}
	if c.TokenValidity.Duration > 0 {
		config.TokenValidity = c.TokenValidity.Duration
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
