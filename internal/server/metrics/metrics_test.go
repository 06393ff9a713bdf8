package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrument_CountsByRouteAndStatus(t *testing.T) {
	m := New()
	h := m.Instrument("/api/auth/login", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues(http.MethodPost, "/api/auth/login", "401")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
}

func TestInstrument_DefaultStatusIsOK(t *testing.T) {
	m := New()
	h := m.Instrument("/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues(http.MethodGet, "/healthz", "200")))
}

func TestDomainCounters(t *testing.T) {
	m := New()

	m.LoginOutcome("success")
	m.LoginOutcome("success")
	m.LoginOutcome("invalid_credentials")
	m.OtpOutcome("validate", "accepted")
	m.DirectoryOutcome("timeout")
	m.OtpsSwept(4)
	m.OtpsSwept(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("invalid_credentials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.otps.WithLabelValues("validate", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.directoryLookups.WithLabelValues("timeout")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.otpsSweptTotal))
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.LoginOutcome("success")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `staffgate_logins_total{outcome="success"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		a, b := New(), New()
		assert.NotSame(t, a.Registry(), b.Registry())
	})
}
