package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/staffgate/internal/flagx"
	"github.com/dmitrijs2005/staffgate/internal/timex"
)

// FileConfig is the on-disk shape of the configuration. Durations accept
// strings such as "5m" (see timex.Duration). Absent keys leave the current
// value untouched.
type FileConfig struct {
	EndpointAddrHTTP        *string         `json:"endpoint_addr_http" toml:"endpoint_addr_http"`
	DatabaseDSN             *string         `json:"database_dsn" toml:"database_dsn"`
	SecretKey               *string         `json:"secret_key" toml:"secret_key"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration" toml:"session_validity_duration"`
	OTPValidityDuration     *timex.Duration `json:"otp_validity_duration" toml:"otp_validity_duration"`
	OTPCleanupInterval      *timex.Duration `json:"otp_cleanup_interval" toml:"otp_cleanup_interval"`
	DirectoryBaseURL        *string         `json:"directory_base_url" toml:"directory_base_url"`
	DirectoryAPIKey         *string         `json:"directory_api_key" toml:"directory_api_key"`
	DirectoryTimeout        *timex.Duration `json:"directory_timeout" toml:"directory_timeout"`
	DirectoryRatePerSecond  *float64        `json:"directory_rate_per_second" toml:"directory_rate_per_second"`
	LoginRatePerSecond      *float64        `json:"login_rate_per_second" toml:"login_rate_per_second"`
	LoginRateBurst          *int            `json:"login_rate_burst" toml:"login_rate_burst"`
	CookieSecure            *bool           `json:"cookie_secure" toml:"cookie_secure"`
	TrustedProxies          []string        `json:"trusted_proxies" toml:"trusted_proxies"`
}

// parseFile loads the file named by -c/-config into config. Files ending in
// .toml are decoded as TOML, everything else as JSON. A missing flag means
// nothing is loaded; an unreadable or malformed file panics, matching flag
// parsing.
func parseFile(config *Config, argv []string) {
	path := flagx.ConfigFileFlag(argv)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, fc)
	} else {
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, fc.DatabaseDSN)
	setString(&config.SecretKey, fc.SecretKey)
	setString(&config.DirectoryBaseURL, fc.DirectoryBaseURL)
	setString(&config.DirectoryAPIKey, fc.DirectoryAPIKey)

	if fc.SessionValidityDuration != nil {
		config.SessionValidityDuration = fc.SessionValidityDuration.Duration
	}
	if fc.OTPValidityDuration != nil {
		config.OTPValidityDuration = fc.OTPValidityDuration.Duration
	}
	if fc.OTPCleanupInterval != nil {
		config.OTPCleanupInterval = fc.OTPCleanupInterval.Duration
	}
	if fc.DirectoryTimeout != nil {
		config.DirectoryTimeout = fc.DirectoryTimeout.Duration
	}
	if fc.DirectoryRatePerSecond != nil {
		config.DirectoryRatePerSecond = *fc.DirectoryRatePerSecond
	}
	if fc.LoginRatePerSecond != nil {
		config.LoginRatePerSecond = *fc.LoginRatePerSecond
	}
	if fc.LoginRateBurst != nil {
		config.LoginRateBurst = *fc.LoginRateBurst
	}
	if fc.CookieSecure != nil {
		config.CookieSecure = *fc.CookieSecure
	}
	if fc.TrustedProxies != nil {
		config.TrustedProxies = fc.TrustedProxies
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
