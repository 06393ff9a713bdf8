// Package directory talks to the external employee directory (HR/ERP).
//
// Every failure is absorbed here: callers receive models.Absent() for a
// network error, a timeout, a missing record or a malformed reply, and the
// cause is logged together with the employee number. Lookups are never
// retried.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/staffgate/internal/common"
	"github.com/dmitrijs2005/staffgate/internal/logging"
	"github.com/dmitrijs2005/staffgate/internal/server/models"
	"golang.org/x/time/rate"
)

// Outcome labels passed to an Observer.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeTimeout  = "timeout"
	OutcomeError    = "error"
	OutcomeShed     = "shed"
	OutcomeSkipped  = "skipped"
)

// APIKeyHeader carries the directory API key.
const APIKeyHeader = "X-API-Key"

const maxResponseBytes = 1 << 20

// Gateway resolves employee numbers to directory records.
type Gateway interface {
	GetEmployeeByNumber(ctx context.Context, employeeNo string) models.EmployeeLookup
}

// Observer is told the outcome of every lookup.
type Observer func(outcome string)

// Config describes how to reach the directory.
type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RatePerSecond float64
}

// HTTPGateway queries GET {BaseURL}/employees/{no}.
type HTTPGateway struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logging.Logger
	observe    Observer
}

// Option customises an HTTPGateway.
type Option func(*HTTPGateway)

// WithObserver registers a callback for lookup outcomes.
func WithObserver(o Observer) Option {
	return func(g *HTTPGateway) { g.observe = o }
}

// New returns an HTTPGateway for cfg, or Disabled when no base URL is set.
func New(cfg Config, logger logging.Logger, opts ...Option) Gateway {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return Disabled{}
	}
	return NewHTTPGateway(cfg, logger, opts...)
}

// NewHTTPGateway builds a gateway. A non-positive RatePerSecond disables
// shedding.
func NewHTTPGateway(cfg Config, logger logging.Logger, opts ...Option) *HTTPGateway {
	g := &HTTPGateway{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
		logger:     logger.With("module", "directory"),
		observe:    func(string) {},
	}
	if cfg.RatePerSecond > 0 {
		burst := int(cfg.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.timeout > 0 {
		g.httpClient.Timeout = g.timeout
	}
	return g
}

// GetEmployeeByNumber never fails: anything short of a well-formed record is
// reported as absent.
func (g *HTTPGateway) GetEmployeeByNumber(ctx context.Context, employeeNo string) models.EmployeeLookup {
	employeeNo = strings.TrimSpace(employeeNo)
	if employeeNo == "" {
		g.observe(OutcomeSkipped)
		return models.Absent()
	}

	if g.limiter != nil && !g.limiter.Allow() {
		g.observe(OutcomeShed)
		g.logger.Warn(ctx, "directory lookup shed", "employee_no", employeeNo)
		return models.Absent()
	}

	rec, err := g.fetch(ctx, employeeNo)
	switch {
	case err == nil:
		g.observe(OutcomeFound)
		return models.Found(rec)
	case errors.Is(err, common.ErrorNotFound):
		g.observe(OutcomeNotFound)
		g.logger.Info(ctx, "employee not found in directory", "employee_no", employeeNo)
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		g.observe(OutcomeTimeout)
		g.logger.Warn(ctx, "directory lookup timed out", "employee_no", employeeNo, "timeout", g.timeout)
	default:
		g.observe(OutcomeError)
		g.logger.Warn(ctx, "directory lookup failed", "employee_no", employeeNo, "error", err)
	}
	return models.Absent()
}

func (g *HTTPGateway) fetch(ctx context.Context, employeeNo string) (models.EmployeeRecord, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	endpoint := g.baseURL + "/employees/" + url.PathEscape(employeeNo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.EmployeeRecord{}, fmt.Errorf("%w: %v", common.ErrExternalDirectoryUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		req.Header.Set(APIKeyHeader, g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return models.EmployeeRecord{}, fmt.Errorf("%w: %w", common.ErrExternalDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.EmployeeRecord{}, common.ErrorNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return models.EmployeeRecord{}, fmt.Errorf("%w: status %s", common.ErrExternalDirectoryUnavailable, resp.Status)
	}

	var rec models.EmployeeRecord
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&rec); err != nil {
		return models.EmployeeRecord{}, fmt.Errorf("%w: decode: %w", common.ErrExternalDirectoryUnavailable, err)
	}
	if rec.EmployeeNo == "" {
		rec.EmployeeNo = employeeNo
	}
	return rec, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// Disabled is used when no directory is configured; every lookup is absent.
type Disabled struct{}

func (Disabled) GetEmployeeByNumber(context.Context, string) models.EmployeeLookup {
	return models.Absent()
}
