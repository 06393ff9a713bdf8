package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseFlags(t *testing.T) {
	defaults := func() *Config {
		c := &Config{}
		c.LoadDefaults()
		return c
	}

	tests := []struct {
		expected    func() *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret",
				"-t", "60", "-o", "2", "-i", "1",
				"-x", "http://directory", "-k", "key", "-w", "500", "-secure",
			},
			expected: func() *Config {
				c := defaults()
				c.EndpointAddrHTTP = "127.0.0.1:9090"
				c.DatabaseDSN = "db"
				c.SecretKey = "secret"
				c.SessionValidityDuration = time.Hour
				c.OTPValidityDuration = 2 * time.Minute
				c.OTPCleanupInterval = time.Minute
				c.DirectoryBaseURL = "http://directory"
				c.DirectoryAPIKey = "key"
				c.DirectoryTimeout = 500 * time.Millisecond
				c.CookieSecure = true
				return c
			},
		},
		{
			name:     "no flags keeps defaults",
			args:     []string{},
			expected: defaults,
		},
		{
			name: "foreign flags are ignored",
			args: []string{"-c", "cfg.json", "-a", ":1", "-unknown", "x"},
			expected: func() *Config {
				c := defaults()
				c.EndpointAddrHTTP = ":1"
				return c
			},
		},
		{
			name: "trusted proxies",
			args: []string{"-p", "10.0.0.0/8, 192.0.2.1,"},
			expected: func() *Config {
				c := defaults()
				c.TrustedProxies = []string{"10.0.0.0/8", "192.0.2.1"}
				return c
			},
		},
		{
			name:        "non-numeric duration panics",
			args:        []string{"-t", "abc"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()

			if tt.expectPanic {
				assert.Panics(t, func() { parseFlags(c, tt.args) })
				return
			}

			parseFlags(c, tt.args)
			if diff := cmp.Diff(tt.expected(), c); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
