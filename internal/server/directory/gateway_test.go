package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/staffgate/internal/logging"
	"github.com/dmitrijs2005/staffgate/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcomes struct {
	mu   sync.Mutex
	seen []string
}

func (o *outcomes) observe(s string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, s)
}

func (o *outcomes) list() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.seen...)
}

func newGateway(t *testing.T, h http.HandlerFunc, cfg Config) (*HTTPGateway, *outcomes) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}
	o := &outcomes{}
	return NewHTTPGateway(cfg, logging.Discard(), WithObserver(o.observe)), o
}

func TestGetEmployeeByNumber_Found(t *testing.T) {
	g, o := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/employees/E100", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get(APIKeyHeader))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"employeeNo":"E100","fullName":"A B","departmentCode":"FIN","jobTitle":"Clerk","email":"u1@x.com"}`))
	}, Config{APIKey: "key-1"})

	rec, ok := g.GetEmployeeByNumber(context.Background(), "E100").Get()
	require.True(t, ok)
	assert.Equal(t, models.EmployeeRecord{
		EmployeeNo: "E100", FullName: "A B", DepartmentCode: "FIN", JobTitle: "Clerk", Email: "u1@x.com",
	}, rec)
	assert.Equal(t, []string{OutcomeFound}, o.list())
}

func TestGetEmployeeByNumber_FillsMissingEmployeeNo(t *testing.T) {
	g, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"fullName":"A B"}`))
	}, Config{})

	rec, ok := g.GetEmployeeByNumber(context.Background(), "E7").Get()
	require.True(t, ok)
	assert.Equal(t, "E7", rec.EmployeeNo)
}

func TestGetEmployeeByNumber_Absent(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		cfg     Config
		no      string
		outcome string
	}{
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
			no:      "E404",
			outcome: OutcomeNotFound,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			no:      "E500",
			outcome: OutcomeError,
		},
		{
			name:    "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"fullName":`)) },
			no:      "E1",
			outcome: OutcomeError,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			cfg:     Config{Timeout: 50 * time.Millisecond},
			no:      "E100",
			outcome: OutcomeTimeout,
		},
		{
			name: "empty number is not looked up",
			handler: func(w http.ResponseWriter, r *http.Request) {
				t.Errorf("unexpected request to %s", r.URL.Path)
			},
			no:      "  ",
			outcome: OutcomeSkipped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, o := newGateway(t, tt.handler, tt.cfg)

			start := time.Now()
			_, ok := g.GetEmployeeByNumber(context.Background(), tt.no).Get()
			assert.False(t, ok)
			assert.Less(t, time.Since(start), time.Second)
			assert.Equal(t, []string{tt.outcome}, o.list())
		})
	}
}

func TestGetEmployeeByNumber_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	g := NewHTTPGateway(Config{BaseURL: base, Timeout: time.Second}, logging.Discard())
	_, ok := g.GetEmployeeByNumber(context.Background(), "E100").Get()
	assert.False(t, ok)
}

func TestGetEmployeeByNumber_CallerDeadline(t *testing.T) {
	g, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, Config{Timeout: 5 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, ok := g.GetEmployeeByNumber(ctx, "E100").Get()
	assert.False(t, ok)
}

func TestGetEmployeeByNumber_Shed(t *testing.T) {
	var calls int
	var mu sync.Mutex
	g, o := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		_, _ = w.Write([]byte(`{"employeeNo":"E1"}`))
	}, Config{RatePerSecond: 0.001})

	_, ok := g.GetEmployeeByNumber(context.Background(), "E1").Get()
	assert.True(t, ok)
	_, ok = g.GetEmployeeByNumber(context.Background(), "E1").Get()
	assert.False(t, ok)

	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
	assert.Equal(t, []string{OutcomeFound, OutcomeShed}, o.list())
}

func TestNew(t *testing.T) {
	g := New(Config{}, logging.Discard())
	assert.IsType(t, Disabled{}, g)

	_, ok := g.GetEmployeeByNumber(context.Background(), "E100").Get()
	assert.False(t, ok)

	g = New(Config{BaseURL: "http://directory.local/"}, logging.Discard())
	hg, isHTTP := g.(*HTTPGateway)
	require.True(t, isHTTP)
	assert.Equal(t, "http://directory.local", hg.baseURL)
}
