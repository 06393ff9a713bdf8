// Package httpapi exposes the broker over HTTP: login, logout, session
// check, the OTP endpoints, health and metrics.
//
// The session token only ever travels in an HTTP-only cookie. Failures are
// reported with fixed, generic messages.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/staffgate/internal/common"
	"github.com/dmitrijs2005/staffgate/internal/logging"
	"github.com/dmitrijs2005/staffgate/internal/server/metrics"
	"github.com/dmitrijs2005/staffgate/internal/server/models"
	"github.com/dmitrijs2005/staffgate/internal/server/services"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidOtp         = "Invalid or expired code"
	msgBadRequest         = "Invalid request body"
	msgInternal           = "Internal server error"
)

// Metric outcome labels.
const (
	outcomeSuccess            = "success"
	outcomeInvalidCredentials = "invalid_credentials"
	outcomeBadRequest         = "bad_request"
	outcomeError              = "error"
	outcomeAccepted           = "accepted"
	outcomeRejected           = "rejected"
)

// Broker is the identity broker as seen by the transport.
type Broker interface {
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Logout(ctx context.Context, token string) error
	CheckAuth(ctx context.Context, token string) services.AuthStatus
}

// OtpManager is the OTP lifecycle as seen by the transport.
type OtpManager interface {
	GenerateOtp(ctx context.Context, email string) (string, error)
	ValidateOtp(ctx context.Context, email, code string) (bool, error)
}

// Pinger reports database liveness; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options tune cookies and limits.
type Options struct {
	CookieSecure       bool
	SessionMaxAge      time.Duration
	LoginRatePerSecond float64
	LoginRateBurst     int
	MaxBodyBytes       int64
	TrustedProxies     TrustedProxies
}

type handler struct {
	broker  Broker
	otps    OtpManager
	db      Pinger
	metrics *metrics.Metrics
	logger  logging.Logger
	opts    Options
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success       bool    `json:"success"`
	EmployeeNo    *string `json:"employeeNo"`
	EmployeeName  string  `json:"employeeName"`
	HasEmployeeNo bool    `json:"hasEmployeeNo"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type checkResponse struct {
	Authenticated bool           `json:"authenticated"`
	Claims        []models.Claim `json:"claims,omitempty"`
}

type otpGenerateRequest struct {
	Email string `json:"email"`
}

type otpValidateRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type otpValidateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" || req.Password == "" {
		h.metrics.LoginOutcome(outcomeBadRequest)
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Message: msgBadRequest})
		return
	}

	res, err := h.broker.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			h.metrics.LoginOutcome(outcomeInvalidCredentials)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Success: false, Message: msgInvalidCredentials})
			return
		}
		h.metrics.LoginOutcome(outcomeError)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Success: false, Message: msgInternal})
		return
	}

	h.metrics.LoginOutcome(outcomeSuccess)
	http.SetCookie(w, h.sessionCookie(res.Token, res.ExpiresAt))
	writeJSON(w, http.StatusOK, loginResponse{
		Success:       true,
		EmployeeNo:    res.Claims.EmployeeNo,
		EmployeeName:  res.EmployeeName,
		HasEmployeeNo: res.Claims.EmployeeNo != nil,
	})
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	err := h.broker.Logout(r.Context(), sessionToken(r))
	http.SetCookie(w, h.clearedCookie())

	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Success: false, Message: msgInternal})
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *handler) check(w http.ResponseWriter, r *http.Request) {
	st := h.broker.CheckAuth(r.Context(), sessionToken(r))
	if !st.Authenticated || st.Claims == nil {
		writeJSON(w, http.StatusOK, checkResponse{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{Authenticated: true, Claims: st.Claims.List()})
}

func (h *handler) otpGenerate(w http.ResponseWriter, r *http.Request) {
	var req otpGenerateRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Email) == "" {
		h.metrics.OtpOutcome("generate", outcomeBadRequest)
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Message: msgBadRequest})
		return
	}

	if _, err := h.otps.GenerateOtp(r.Context(), req.Email); err != nil {
		h.metrics.OtpOutcome("generate", outcomeError)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Success: false, Message: msgInternal})
		return
	}

	h.metrics.OtpOutcome("generate", outcomeSuccess)
	writeJSON(w, http.StatusAccepted, successResponse{Success: true})
}

func (h *handler) otpValidate(w http.ResponseWriter, r *http.Request) {
	var req otpValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.metrics.OtpOutcome("validate", outcomeBadRequest)
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Message: msgBadRequest})
		return
	}

	ok, err := h.otps.ValidateOtp(r.Context(), req.Email, req.Code)
	if err != nil {
		h.metrics.OtpOutcome("validate", outcomeError)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Success: false, Message: msgInternal})
		return
	}
	if !ok {
		h.metrics.OtpOutcome("validate", outcomeRejected)
		writeJSON(w, http.StatusBadRequest, otpValidateResponse{Valid: false, Message: msgInvalidOtp})
		return
	}

	h.metrics.OtpOutcome("validate", outcomeAccepted)
	writeJSON(w, http.StatusOK, otpValidateResponse{Valid: true})
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) sessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(h.opts.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *handler) clearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(common.SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
