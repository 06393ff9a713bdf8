package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/staffgate/internal/logging"
	"github.com/dmitrijs2005/staffgate/internal/server/metrics"
)

const defaultMaxBodyBytes = 1 << 16

// NewHandler assembles the routes and middleware.
func NewHandler(b Broker, o OtpManager, db Pinger, m *metrics.Metrics, logger logging.Logger, opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	h := &handler{
		broker:  b,
		otps:    o,
		db:      db,
		metrics: m,
		logger:  logger.With("module", "http"),
		opts:    opts,
	}

	// login and OTP traffic draw from separate buckets
	loginLimiter := NewIPRateLimiter(opts.LoginRatePerSecond, opts.LoginRateBurst)
	otpLimiter := NewIPRateLimiter(opts.LoginRatePerSecond, opts.LoginRateBurst)
	limited := func(route string, l *IPRateLimiter, fn http.HandlerFunc) http.Handler {
		return m.Instrument(route, RateLimit(MaxBodyBytes(fn, opts.MaxBodyBytes), l))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/auth/login", limited("/api/auth/login", loginLimiter, h.login))
	mux.Handle("POST /api/auth/logout", m.Instrument("/api/auth/logout", http.HandlerFunc(h.logout)))
	mux.Handle("GET /api/auth/check", m.Instrument("/api/auth/check", http.HandlerFunc(h.check)))
	mux.Handle("POST /api/otp/generate", limited("/api/otp/generate", otpLimiter, h.otpGenerate))
	mux.Handle("POST /api/otp/validate", limited("/api/otp/validate", otpLimiter, h.otpValidate))
	mux.Handle("GET /healthz", m.Instrument("/healthz", http.HandlerFunc(h.healthz)))
	mux.Handle("GET /metrics", m.Handler())

	return RequestID(ResolveClientIP(Logging(h.logger, mux), opts.TrustedProxies))
}
