package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret", "-o", "https://chat.example",
			"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
			"-t", "5", "-r", "30", "-l", "debug",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrHTTP:  "127.0.0.1:9090",
				DatabaseDSN:       "db",
				SecretKey:         "secret",
				ClientURL:         "https://chat.example",
				S3RootUser:        "user",
				S3RootPassword:    "password",
				S3Bucket:          "bucket",
				S3Region:          "us-west-1",
				S3BaseEndpoint:    "http://endpoint",
				UploadURLValidity: 5 * time.Minute,
				TokenValidity:     30 * time.Minute,
				LogLevel:          "debug",
			}},
		{name: "foreign flags ignored", args: []string{"cmd", "-c", "cfg.json", "-x", "1", "-s", "k"},
			expected: &Config{SecretKey: "k"}},
		{name: "non-numeric duration panics", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
