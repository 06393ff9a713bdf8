package config

import (
	"flag"
	"strings"
	"time"

	"github.com/dmitrijs2005/staffgate/internal/flagx"
)

// parseFlags overlays Config with command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN
//	-s string   session token HMAC secret
//	-t int      session validity, minutes
//	-o int      OTP validity, minutes
//	-i int      OTP cleanup interval, minutes
//	-x string   employee directory base URL
//	-k string   employee directory API key
//	-w int      employee directory timeout, milliseconds
//	-secure     mark the session cookie Secure
//	-p string   comma-separated trusted proxy IPs or CIDRs
//
// Only these flags are considered; anything else on the command line is
// left for other loaders.
func parseFlags(config *Config, argv []string) {
	args := flagx.FilterArgs(argv, []string{"-a", "-d", "-s", "-t", "-o", "-i", "-x", "-k", "-w", "-secure", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")
	otpValidity := fs.Int("o", int(config.OTPValidityDuration.Minutes()), "otp validity (in minutes)")
	otpCleanup := fs.Int("i", int(config.OTPCleanupInterval.Minutes()), "otp cleanup interval (in minutes)")

	fs.StringVar(&config.DirectoryBaseURL, "x", config.DirectoryBaseURL, "employee directory base URL")
	fs.StringVar(&config.DirectoryAPIKey, "k", config.DirectoryAPIKey, "employee directory API key")
	directoryTimeout := fs.Int("w", int(config.DirectoryTimeout.Milliseconds()), "employee directory timeout (in milliseconds)")

	fs.BoolVar(&config.CookieSecure, "secure", config.CookieSecure, "set Secure on the session cookie")
	proxies := fs.String("p", strings.Join(config.TrustedProxies, ","), "trusted proxies (comma-separated IPs or CIDRs)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
	config.OTPValidityDuration = time.Duration(*otpValidity) * time.Minute
	config.OTPCleanupInterval = time.Duration(*otpCleanup) * time.Minute
	config.DirectoryTimeout = time.Duration(*directoryTimeout) * time.Millisecond

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "p" {
			config.TrustedProxies = splitList(*proxies)
		}
	})
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
